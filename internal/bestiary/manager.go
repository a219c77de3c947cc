// ABOUTME: Two-tier monster dataset cache: memory, disk snapshot, remote fetch
// ABOUTME: Integrity gate rejects implausibly small downloads without touching the snapshot

package bestiary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gielinor/osrsdex/internal/cache"
	"github.com/gielinor/osrsdex/internal/log"
	"github.com/gielinor/osrsdex/internal/types"
)

// minRecords gates acceptance of a fetched dataset. A full bestiary carries
// several thousand records; fewer signals a truncated or malformed download.
const minRecords = 1000

// SnapshotFile is the on-disk name of the persisted raw payload.
const SnapshotFile = "monsters.json"

// Doer is the HTTP collaborator contract; *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Manager owns the monster dataset cache. Resolution order: in-memory
// snapshot younger than maxAge, then a disk snapshot younger than maxAge,
// then a remote fetch persisted to disk. Fetch and parse failures degrade to
// an absent snapshot; only an integrity rejection is an error.
type Manager struct {
	path   string
	url    string
	maxAge time.Duration
	client Doer
	agent  string

	flight cache.Flight
	now    func() time.Time

	mu     sync.Mutex
	snap   *Snapshot
	loaded time.Time

	memHits   atomic.Int64
	diskLoads atomic.Int64
	fetches   atomic.Int64
	failures  atomic.Int64
	rejects   atomic.Int64
}

// New returns a manager persisting its snapshot under dataDir.
func New(dataDir, url string, maxAge time.Duration, client Doer, agent string) *Manager {
	return &Manager{
		path:   filepath.Join(dataDir, SnapshotFile),
		url:    url,
		maxAge: maxAge,
		client: client,
		agent:  agent,
		now:    time.Now,
	}
}

// Snapshot returns the current dataset view, loading it if needed. force
// skips both cache tiers. A nil, nil return means the dataset is unavailable
// and the caller should degrade.
func (m *Manager) Snapshot(ctx context.Context, force bool) (*Snapshot, error) {
	if !force {
		if s := m.fresh(); s != nil {
			return s, nil
		}
	}

	key := "load"
	if force {
		key = "reload"
	}
	s, _, err := cache.Do(&m.flight, key, func() (*Snapshot, error) {
		return m.load(ctx, force)
	})
	return s, err
}

// fresh returns the in-memory snapshot while it is younger than maxAge.
func (m *Manager) fresh() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap != nil && m.now().Sub(m.loaded) < m.maxAge {
		m.memHits.Add(1)
		return m.snap
	}
	return nil
}

func (m *Manager) load(ctx context.Context, force bool) (*Snapshot, error) {
	if !force {
		// Re-check after winning the flight; a coalesced predecessor may
		// have populated memory already.
		if s := m.fresh(); s != nil {
			return s, nil
		}
		if s := m.loadDisk(); s != nil {
			return s, nil
		}
	}
	return m.fetchRemote(ctx)
}

// loadDisk adopts the persisted snapshot when its modification age is under
// maxAge. Unreadable or implausibly small files fall through to a remote
// fetch rather than being served.
func (m *Manager) loadDisk() *Snapshot {
	info, err := os.Stat(m.path)
	if err != nil {
		return nil
	}
	if m.now().Sub(info.ModTime()) >= m.maxAge {
		return nil
	}

	raw, err := os.ReadFile(m.path)
	if err != nil {
		log.Warn("reading monster snapshot: %v", err)
		return nil
	}
	monsters, err := decodeDataset(raw)
	if err != nil {
		log.Warn("monster snapshot unreadable, refetching: %v", err)
		return nil
	}
	if len(monsters) < minRecords {
		log.Warn("monster snapshot has only %d records, refetching", len(monsters))
		return nil
	}

	s := buildSnapshot(monsters, m.now())
	m.adopt(s)
	m.diskLoads.Add(1)
	log.Info("loaded monster snapshot from disk: %d records", len(monsters))
	return s
}

func (m *Manager) fetchRemote(ctx context.Context) (*Snapshot, error) {
	raw, err := m.download(ctx)
	if err != nil {
		m.failures.Add(1)
		log.Warn("monster dataset fetch failed: %v", err)
		return nil, nil
	}
	monsters, err := decodeDataset(raw)
	if err != nil {
		m.failures.Add(1)
		log.Warn("monster dataset parse failed: %v", err)
		return nil, nil
	}
	if len(monsters) < minRecords {
		m.rejects.Add(1)
		return nil, fmt.Errorf("monster dataset has %d records, need at least %d: %w",
			len(monsters), minRecords, types.ErrIntegrity)
	}

	if err := m.persist(raw); err != nil {
		// The fetched data is good; a persist failure only costs the disk tier.
		log.Warn("persisting monster snapshot: %v", err)
	}

	s := buildSnapshot(monsters, m.now())
	m.adopt(s)
	m.fetches.Add(1)
	log.Info("fetched monster dataset: %d records", len(monsters))
	return s, nil
}

func (m *Manager) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building dataset request: %w", err)
	}
	req.Header.Set("User-Agent", m.agent)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", m.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &types.UpstreamError{Source: "monster dataset", Status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// persist writes the raw payload via a temp file and rename, so a crashed
// write never corrupts the prior snapshot.
func (m *Manager) persist(raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	tmpPath := m.path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o644); err != nil {
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, m.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp snapshot: %w", err)
	}
	return nil
}

func (m *Manager) adopt(s *Snapshot) {
	m.mu.Lock()
	m.snap = s
	m.loaded = s.built
	m.mu.Unlock()
}

// Stats reports cache-tier counters and the current snapshot size.
type Stats struct {
	Loaded     bool  `json:"loaded"`
	Monsters   int   `json:"monsters"`
	Items      int   `json:"items"`
	AgeSeconds int64 `json:"age_seconds"`
	MemoryHits int64 `json:"memory_hits"`
	DiskLoads  int64 `json:"disk_loads"`
	Fetches    int64 `json:"fetches"`
	Failures   int64 `json:"failures"`
	Rejections int64 `json:"rejections"`
}

// Stats returns a point-in-time view of the manager's counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	snap, loaded := m.snap, m.loaded
	m.mu.Unlock()

	st := Stats{
		MemoryHits: m.memHits.Load(),
		DiskLoads:  m.diskLoads.Load(),
		Fetches:    m.fetches.Load(),
		Failures:   m.failures.Load(),
		Rejections: m.rejects.Load(),
	}
	if snap != nil {
		st.Loaded = true
		st.Monsters = snap.Count()
		st.Items = snap.Items()
		st.AgeSeconds = int64(m.now().Sub(loaded).Seconds())
	}
	return st
}
