package httputil

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"time"

	"github.com/amills-vpmgmt/vpmgmt-rates/config"
)

type Clients struct {
	Scraping *http.Client // proxied, for brand booking sites
	API      *http.Client // direct, for SerpAPI
}

func NewClients(serpCfg config.SerpAPIConfig, proxyCfg config.ProxyConfig) *Clients {
	api := &http.Client{Timeout: serpCfg.Timeout}

	scraping := &http.Client{
		Timeout: 15 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	if proxyCfg.URL != "" {
		if proxyURL, err := url.Parse(proxyCfg.URL); err == nil {
			scraping.Transport = &http.Transport{
				Proxy:             http.ProxyURL(proxyURL),
				ForceAttemptHTTP2: false,
				TLSNextProto:      make(map[string]func(string, *tls.Conn) http.RoundTripper),
			}
		}
	}

	return &Clients{
		Scraping: scraping,
		API:      api,
	}
}
