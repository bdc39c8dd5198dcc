// Package fetcher runs rate queries against the external hotel search API
// and feeds the responses through matching, extraction, and classification.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/amills-vpmgmt/vpmgmt-rates/config"
)

// SearchClient is the external search collaborator: one query in, one raw
// response body out, or a transport error.
type SearchClient interface {
	Search(ctx context.Context, query string, checkIn, checkOut time.Time, adults int) ([]byte, error)
}

// SerpClient calls the SerpAPI Google Hotels engine.
type SerpClient struct {
	cfg    config.SerpAPIConfig
	client *http.Client
}

// NewSerpClient validates the credential at construction; a missing key is
// a hard failure before any request is attempted.
func NewSerpClient(cfg config.SerpAPIConfig, client *http.Client) (*SerpClient, error) {
	if cfg.Key == "" {
		return nil, fmt.Errorf("serpapi: SERPAPI_KEY not set")
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &SerpClient{cfg: cfg, client: client}, nil
}

func (c *SerpClient) Search(ctx context.Context, query string, checkIn, checkOut time.Time, adults int) ([]byte, error) {
	params := url.Values{}
	params.Set("engine", "google_hotels")
	params.Set("q", query)
	params.Set("check_in_date", checkIn.Format("2006-01-02"))
	params.Set("check_out_date", checkOut.Format("2006-01-02"))
	params.Set("adults", fmt.Sprintf("%d", adults))
	params.Set("currency", c.cfg.Currency)
	params.Set("gl", c.cfg.GL)
	params.Set("hl", c.cfg.HL)
	params.Set("api_key", c.cfg.Key)

	req, err := http.NewRequestWithContext(ctx, "GET", c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
