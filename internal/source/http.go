package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tilestream/internal/geo"
)

// HTTPSource fetches tiles from a slippy-map HTTP endpoint. The URL
// template uses {z}, {x} and {y} placeholders.
type HTTPSource struct {
	template  string
	userAgent string
	client    *http.Client
}

func NewHTTPSource(template, userAgent string) (*HTTPSource, error) {
	if !strings.Contains(template, "{z}") || !strings.Contains(template, "{x}") || !strings.Contains(template, "{y}") {
		return nil, fmt.Errorf("tile url template must contain {z}, {x} and {y}: %q", template)
	}

	return &HTTPSource{
		template:  template,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *HTTPSource) url(id geo.TileID) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(id.Z),
		"{x}", strconv.Itoa(id.X),
		"{y}", strconv.Itoa(id.Y),
	)
	return r.Replace(s.template)
}

func (s *HTTPSource) Fetch(ctx context.Context, id geo.TileID) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(id), nil)
	if err != nil {
		return nil, err
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tile %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch tile %s: unexpected status %s", id, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch tile %s: %w", id, err)
	}
	return data, nil
}

func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
