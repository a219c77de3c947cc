// ABOUTME: Tests for the price client: quotes, null sides, unknown items, caching
// ABOUTME: Runs against a fake latest endpoint

package prices

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gielinor/osrsdex/internal/types"
)

func newTestClient(url string) *Client {
	return New(url, "osrsdex-test", http.DefaultClient, 30*time.Minute, 100, "fifo")
}

func TestLatest(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if got := r.URL.Query().Get("id"); got != "4151" {
			t.Errorf("id = %q; want 4151", got)
		}
		fmt.Fprint(w, `{"data":{"4151":{"high":1843560,"highTime":1717000000,"low":1825000,"lowTime":1716990000}}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	q, err := c.Latest(context.Background(), 4151)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if q.High == nil || *q.High != 1843560 {
		t.Errorf("high = %v; want 1843560", q.High)
	}
	if q.Low == nil || *q.Low != 1825000 {
		t.Errorf("low = %v; want 1825000", q.Low)
	}
	if q.HighTime == nil || *q.HighTime != 1717000000 {
		t.Errorf("high time = %v", q.HighTime)
	}

	// Repeat lookups hit the cache.
	if _, err := c.Latest(context.Background(), 4151); err != nil {
		t.Fatal(err)
	}
	if requests.Load() != 1 {
		t.Errorf("upstream requests = %d; want 1", requests.Load())
	}
}

func TestLatest_NullSides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"27":{"high":null,"highTime":null,"low":12,"lowTime":1717000000}}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	q, err := c.Latest(context.Background(), 27)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if q.High != nil {
		t.Errorf("high = %v; want nil for an untraded side", *q.High)
	}
	if q.Low == nil || *q.Low != 12 {
		t.Errorf("low = %v; want 12", q.Low)
	}
}

func TestLatest_UnknownItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Latest(context.Background(), 999999)
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("err = %v; want ErrNotFound", err)
	}
}

func TestLatest_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Latest(context.Background(), 4151)

	var ue *types.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v; want UpstreamError", err)
	}
	if ue.Status != http.StatusTooManyRequests {
		t.Errorf("status = %d; want 429", ue.Status)
	}
}
