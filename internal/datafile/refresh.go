// ABOUTME: Regenerates owned data tables from their remote sources
// ABOUTME: Atomic temp-file + rename replacement, then snapshot invalidation

package datafile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/gielinor/osrsdex/internal/log"
	"github.com/gielinor/osrsdex/internal/types"
)

// Doer is the HTTP collaborator contract; *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Refresher regenerates datasets that declare a refresh URL in the manifest.
type Refresher struct {
	Store  *Store
	Client Doer
	Agent  string
}

type idRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Refresh downloads the id/name list for dataset name, rewrites its table
// atomically, and invalidates the cached snapshot. Returns the record count.
// An empty download is rejected and leaves the existing table untouched.
func (r *Refresher) Refresh(ctx context.Context, name string) (int, error) {
	ds, ok := r.Store.Describe(name)
	if !ok {
		return 0, fmt.Errorf("unknown dataset %q: %w", name, types.ErrInvalidInput)
	}
	if ds.RefreshURL == "" {
		return 0, fmt.Errorf("dataset %q has no refresh source: %w", name, types.ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ds.RefreshURL, nil)
	if err != nil {
		return 0, fmt.Errorf("building refresh request: %w", err)
	}
	req.Header.Set("User-Agent", r.Agent)

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %w", ds.RefreshURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, &types.UpstreamError{Source: "refresh " + name, Status: resp.StatusCode}
	}

	var records []idRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return 0, fmt.Errorf("decoding %s refresh payload: %w", name, err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("refresh for %q produced no records: %w", name, types.ErrIntegrity)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	var buf bytes.Buffer
	for _, rec := range records {
		fmt.Fprintf(&buf, "%d\t%s\n", rec.ID, rec.Name)
	}

	path, err := r.Store.resolve(name)
	if err != nil {
		return 0, err
	}
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}

	r.Store.Invalidate(name)
	log.Info("refreshed dataset %s: %d records", name, len(records))
	return len(records), nil
}

// writeAtomic writes data to path via a temp file and rename, so readers
// never observe a partial table.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp table: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp table: %w", err)
	}
	return nil
}
