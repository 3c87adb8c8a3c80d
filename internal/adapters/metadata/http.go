package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const maxLayoutBytes = 4 << 20

// HTTPProvider reads layouts from the CRUD service: GET {base}/space/{id}.
type HTTPProvider struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPProvider builds a provider. token, if set, is sent as a bearer
// credential on every request.
func NewHTTPProvider(baseURL, token string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) Space(ctx context.Context, id domain.SpaceID) (*domain.Space, error) {
	endpoint := p.baseURL + "/space/" + url.PathEscape(string(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("metadata request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("module", "metadata").Str("space", string(id)).Msg("fetch failed")
		return nil, fmt.Errorf("metadata fetch %s: %w", id, err)
	}
	defer resp.Body.Close()

	log.Debug().Str("module", "metadata").Str("space", string(id)).Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).Msg("fetched layout")

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", core.ErrSpaceNotFound, id)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("metadata fetch %s: unexpected status %d", id, resp.StatusCode)
	}

	var layout spaceLayout
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxLayoutBytes)).Decode(&layout); err != nil {
		return nil, fmt.Errorf("metadata decode %s: %w", id, err)
	}
	return layout.toDomain(id)
}
