// ABOUTME: Tests for admin tools: dataset refresh flows and cache stat aggregation
// ABOUTME: Integrity rejections must fail hard and keep the previous data readable

package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gielinor/osrsdex/internal/bestiary"
	"github.com/gielinor/osrsdex/internal/datafile"
	"github.com/gielinor/osrsdex/internal/types"
)

// soundsDeps builds a store whose sounds table refreshes from a fake server
// returning the given JSON body.
func soundsDeps(t *testing.T, body string) *Deps {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	writeTable(t, dir, "items.tsv", itemsTable)
	writeTable(t, dir, "sounds.tsv", "1\tOld bell\n")
	writeTable(t, dir, "datasets.yaml", fmt.Sprintf(
		"datasets:\n  sounds:\n    file: sounds.tsv\n    refresh_url: %s/sounds.json\n", srv.URL))

	man, err := datafile.LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	store := datafile.NewStore(dir, man, time.Hour)
	return &Deps{
		Store:     store,
		Refresher: &datafile.Refresher{Store: store, Client: srv.Client(), Agent: "osrsdex-test"},
	}
}

func monsterDatasetJSON(n int) string {
	var b strings.Builder
	b.WriteString("{")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `"%d":{"id":%d,"name":"Monster %d","combat_level":%d,"hitpoints":10,"drops":[]}`,
			i, i, i, i%126+1)
	}
	b.WriteString("}")
	return b.String()
}

func TestRefreshData_SoundsRegeneratesTable(t *testing.T) {
	t.Parallel()

	d := soundsDeps(t, `[{"id":5,"name":"Bell toll"},{"id":1,"name":"Door creak"}]`)
	r := newTestRegistry(t, d)

	// Prime the old table into the snapshot cache so the refresh must
	// invalidate it.
	if _, err := d.Store.LineByID("sounds", 1); err != nil {
		t.Fatalf("priming store: %v", err)
	}

	got, err := r.Call(context.Background(), "refresh_data", map[string]any{"target": "sounds"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	resp := got.(map[string]any)
	if resp["records"] != 2 {
		t.Errorf("records = %v, want 2", resp["records"])
	}

	line, err := d.Store.LineByID("sounds", 1)
	if err != nil {
		t.Fatalf("LineByID after refresh: %v", err)
	}
	if line.Text != "1\tDoor creak" {
		t.Errorf("table not regenerated: %q", line.Text)
	}
	if line.Number != 1 {
		t.Errorf("ids not sorted ascending: line %d", line.Number)
	}
}

func TestRefreshData_SoundsEmptyPayloadRejected(t *testing.T) {
	t.Parallel()

	d := soundsDeps(t, `[]`)
	r := newTestRegistry(t, d)

	_, err := r.Call(context.Background(), "refresh_data", map[string]any{"target": "sounds"})
	if !errors.Is(err, types.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}

	line, err := d.Store.LineByID("sounds", 1)
	if err != nil || line.Text != "1\tOld bell" {
		t.Errorf("rejected refresh must keep the old table, got %q, %v", line.Text, err)
	}
}

func TestRefreshData_MonstersForcesFetch(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		fmt.Fprint(w, monsterDatasetJSON(1100))
	}))
	t.Cleanup(srv.Close)

	mgr := bestiary.New(t.TempDir(), srv.URL, 24*time.Hour, srv.Client(), "osrsdex-test")
	d := &Deps{Store: newTestStore(t), Bestiary: mgr}
	r := newTestRegistry(t, d)

	got, err := r.Call(context.Background(), "refresh_data", map[string]any{"target": "monsters"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	resp := got.(map[string]any)
	if resp["records"] != 1100 {
		t.Errorf("records = %v, want 1100", resp["records"])
	}

	// A second forced refresh must bypass the fresh in-memory snapshot.
	if _, err := r.Call(context.Background(), "refresh_data", map[string]any{"target": "monsters"}); err != nil {
		t.Fatalf("second Call: %v", err)
	}
	if hits != 2 {
		t.Errorf("upstream hits = %d, want 2", hits)
	}
}

func TestRefreshData_MonsterFetchFailureKeepsSnapshot(t *testing.T) {
	t.Parallel()

	d := &Deps{Store: newTestStore(t), Bestiary: bestiaryFixture(t)}
	r := newTestRegistry(t, d)

	// Load the disk snapshot first.
	if _, err := r.Call(context.Background(), "search_monsters", map[string]any{"query": "abyssal"}); err != nil {
		t.Fatalf("priming snapshot: %v", err)
	}

	// The fixture's remote URL is unreachable, so a forced refresh fails.
	got, err := r.Call(context.Background(), "refresh_data", map[string]any{"target": "monsters"})
	if err != nil {
		t.Fatalf("a failed fetch must not fail the call: %v", err)
	}
	payload, ok := got.(map[string]string)
	if !ok || !strings.Contains(payload["error"], "existing data kept") {
		t.Fatalf("expected an error payload, got %#v", got)
	}

	// The earlier snapshot still serves.
	again, err := r.Call(context.Background(), "search_monsters", map[string]any{"query": "abyssal"})
	if err != nil {
		t.Fatalf("search after failed refresh: %v", err)
	}
	if resp := again.(searchMonstersResponse); resp.Count != 2 {
		t.Errorf("snapshot lost after failed refresh: %+v", resp)
	}
}

func TestCacheStats_AggregatesAllTiers(t *testing.T) {
	t.Parallel()

	d := &Deps{
		Store:    newTestStore(t),
		Bestiary: bestiaryFixture(t),
		Wiki:     wikiFixture(t, map[string]string{}),
		Prices:   pricesFixture(t, nil),
		Hiscores: hiscoresFixture(t),
	}
	r := newTestRegistry(t, d)

	if _, err := r.Call(context.Background(), "search_ids", map[string]any{"dataset": "items", "query": "whip"}); err != nil {
		t.Fatalf("priming store: %v", err)
	}

	got, err := r.Call(context.Background(), "cache_stats", map[string]any{})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}

	stats := got.(map[string]any)
	for _, key := range []string{"datafiles", "monsters", "wiki_pages", "wiki_search", "wiki_exists", "prices", "hiscores"} {
		if _, ok := stats[key]; !ok {
			t.Errorf("missing tier %q in %v", key, stats)
		}
	}
	df := stats["datafiles"].(datafile.Stats)
	if df.Misses == 0 {
		t.Errorf("expected at least one store miss after priming: %+v", df)
	}
}
