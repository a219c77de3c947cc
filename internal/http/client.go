// ABOUTME: Shared HTTP client tuned for upstream data-source fetches
// ABOUTME: One client serves wiki, prices, hiscores, and dataset downloads

package http

import (
	"net/http"
	"time"
)

// NewClient builds the client every upstream collaborator shares. The
// overall timeout is configurable; per-phase limits keep a stalled upstream
// from pinning a connection for the whole request budget.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			IdleConnTimeout:       30 * time.Second,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
		},
	}
}
