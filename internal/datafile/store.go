// ABOUTME: TTL-cached line snapshots of flat data files, keyed by dataset name
// ABOUTME: Snapshots replace wholesale; the derived id index dies with its snapshot

package datafile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gielinor/osrsdex/internal/log"
	"github.com/gielinor/osrsdex/internal/types"
)

// Store caches line snapshots of the manifest's data files. A snapshot is
// fresh while its age is under the TTL; a stale read replaces it wholesale.
// There is no capacity bound, only time-based staleness.
type Store struct {
	mu    sync.Mutex
	dir   string
	ttl   time.Duration
	man   *Manifest
	snaps map[string]*snapshot
	now   func() time.Time

	hits   uint64
	misses uint64
}

type snapshot struct {
	lines  []string
	index  map[int]int
	loaded time.Time
}

// Stats is a point-in-time snapshot of store counters.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Snapshots int    `json:"snapshots"`
}

// NewStore builds a Store over dir using the given manifest and TTL.
func NewStore(dir string, man *Manifest, ttl time.Duration) *Store {
	return &Store{
		dir:   dir,
		ttl:   ttl,
		man:   man,
		snaps: make(map[string]*snapshot),
		now:   time.Now,
	}
}

// Lines returns the line snapshot for dataset name. The slice is shared with
// the cache; callers must not modify it.
func (s *Store) Lines(name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.fresh(name)
	if err != nil {
		return nil, err
	}
	return snap.lines, nil
}

// Index returns the id→offset index for dataset name, building it lazily.
// The map is shared with the cache; callers must not modify it.
func (s *Store) Index(name string) (map[int]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.fresh(name)
	if err != nil {
		return nil, err
	}
	snap.ensureIndex()
	return snap.index, nil
}

// Invalidate drops the snapshot for name so the next read reloads from disk.
func (s *Store) Invalidate(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, name)
}

// InvalidateAll drops every snapshot.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = make(map[string]*snapshot)
}

// Snapshot returns current counters.
func (s *Store) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Hits: s.hits, Misses: s.misses, Snapshots: len(s.snaps)}
}

// Datasets returns the names this store can serve, sorted.
func (s *Store) Datasets() []string {
	return s.man.Names()
}

// Describe returns the manifest entry for name.
func (s *Store) Describe(name string) (Dataset, bool) {
	return s.man.Dataset(name)
}

// fresh returns a fresh snapshot for name, reloading when stale or absent.
// Caller holds s.mu.
func (s *Store) fresh(name string) (*snapshot, error) {
	if snap, ok := s.snaps[name]; ok && s.now().Sub(snap.loaded) < s.ttl {
		s.hits++
		return snap, nil
	}
	s.misses++

	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("dataset %q (%s): %w", name, path, types.ErrNotFound)
		}
		return nil, fmt.Errorf("reading dataset %q: %w", name, err)
	}

	snap := &snapshot{lines: splitLines(string(data)), loaded: s.now()}
	s.snaps[name] = snap
	log.Debug("datafile: loaded %s (%d lines)", name, len(snap.lines))
	return snap, nil
}

// resolve maps a dataset name to its file path. Reads only immutable fields,
// so it needs no lock.
func (s *Store) resolve(name string) (string, error) {
	ds, ok := s.man.Dataset(name)
	if !ok {
		return "", fmt.Errorf("unknown dataset %q: %w", name, types.ErrInvalidInput)
	}
	if filepath.IsAbs(ds.File) || strings.Contains(ds.File, "..") {
		return "", fmt.Errorf("dataset %q: illegal file path %q: %w", name, ds.File, types.ErrInvalidInput)
	}
	return filepath.Join(s.dir, ds.File), nil
}

// splitLines normalizes line endings: split on newline, strip trailing
// carriage returns, and drop the single empty line a final newline produces.
func splitLines(data string) []string {
	lines := strings.Split(data, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
