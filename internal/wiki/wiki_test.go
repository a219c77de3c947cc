// ABOUTME: Tests for the MediaWiki client against a fake api.php endpoint
// ABOUTME: Covers envelope arms, snippet cleanup, caching, and error taxonomy

package wiki

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

func TestSearch(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		q := r.URL.Query()
		if q.Get("action") != "query" || q.Get("list") != "search" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("srsearch") != "abyssal whip" {
			t.Errorf("srsearch = %q", q.Get("srsearch"))
		}
		fmt.Fprint(w, `{"query":{"search":[
			{"title":"Abyssal whip","snippet":"A weapon from the <span class=\"searchmatch\">abyss</span>.","size":4000,"wordcount":600,"timestamp":"2024-05-01T00:00:00Z"}
		]}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	results, err := c.Search(context.Background(), "abyssal whip", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results; want 1", len(results))
	}
	r := results[0]
	if r.Title != "Abyssal whip" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Snippet != "A weapon from the abyss." {
		t.Errorf("snippet = %q; want highlight spans stripped", r.Snippet)
	}

	// Second identical search is a cache hit.
	if _, err := c.Search(context.Background(), "abyssal whip", 5); err != nil {
		t.Fatalf("cached Search: %v", err)
	}
	if requests.Load() != 1 {
		t.Errorf("upstream requests = %d; want 1", requests.Load())
	}
}

func TestSearch_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Search(context.Background(), "whip", 5)

	var ue *types.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v; want UpstreamError", err)
	}
	if ue.Status != http.StatusServiceUnavailable {
		t.Errorf("status = %d; want 503", ue.Status)
	}
}

func TestPageHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("action") != "parse" || q.Get("page") != "Abyssal whip" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"parse":{"title":"Abyssal whip","pageid":12774,"text":"<p>A one-handed melee weapon.</p>"}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	page, err := c.PageHTML(context.Background(), "Abyssal whip")
	if err != nil {
		t.Fatalf("PageHTML: %v", err)
	}
	if page.Title != "Abyssal whip" || page.PageID != 12774 {
		t.Errorf("page = %+v", page)
	}
	if page.HTML != "<p>A one-handed melee weapon.</p>" {
		t.Errorf("html = %q", page.HTML)
	}
}

func TestPageHTML_Missing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"code":"missingtitle","info":"The page you specified doesn't exist."}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.PageHTML(context.Background(), "Nonexistent page")
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("err = %v; want ErrNotFound", err)
	}
}

func TestPageHTML_InvalidTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"code":"invalidtitle","info":"Bad title."}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.PageHTML(context.Background(), "<bad>")
	if !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("err = %v; want ErrInvalidInput", err)
	}
}

func TestPageExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Query().Get("titles")
		if title == "Abyssal whip" {
			fmt.Fprint(w, `{"query":{"pages":[{"title":"Abyssal whip","pageid":12774}]}}`)
			return
		}
		fmt.Fprint(w, `{"query":{"pages":[{"title":"`+title+`","missing":true}]}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	found, err := c.PageExists(context.Background(), "Abyssal whip")
	if err != nil || !found {
		t.Errorf("PageExists(Abyssal whip) = %v, %v; want true", found, err)
	}

	found, err = c.PageExists(context.Background(), "Not a page")
	if err != nil || found {
		t.Errorf("PageExists(Not a page) = %v, %v; want false", found, err)
	}
}

func TestErrorsNotCached(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"query":{"search":[]}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.Search(context.Background(), "whip", 5); err == nil {
		t.Fatal("first search should fail")
	}
	if _, err := c.Search(context.Background(), "whip", 5); err != nil {
		t.Fatalf("second search should retry upstream: %v", err)
	}
	if requests.Load() != 2 {
		t.Errorf("upstream requests = %d; want 2 (failures are not cached)", requests.Load())
	}
}

func TestCacheStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query":{"search":[]}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.Search(context.Background(), "whip", 5); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Search(context.Background(), "whip", 5); err != nil {
		t.Fatal(err)
	}

	stats := c.CacheStats()
	if stats["wiki_search"].Hits != 1 {
		t.Errorf("search cache hits = %d; want 1", stats["wiki_search"].Hits)
	}
	if _, ok := stats["wiki_pages"]; !ok {
		t.Error("stats missing wiki_pages")
	}
}
