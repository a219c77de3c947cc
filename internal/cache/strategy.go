// ABOUTME: Eviction strategies for the response cache
// ABOUTME: FIFO by insertion order (default) and LRU backed by hashicorp simplelru

package cache

import (
	"container/list"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Eviction policy names accepted in configuration.
const (
	PolicyFIFO = "fifo"
	PolicyLRU  = "lru"
)

// Strategy tracks key order for a ResponseCache and picks eviction victims.
// Implementations are not safe for concurrent use; the cache serializes calls.
type Strategy interface {
	// Admit records an insertion. Re-admitting an existing key moves it to
	// the back of the eviction order.
	Admit(key string)
	// Touch records a read hit.
	Touch(key string)
	// Remove forgets a key after expiry or invalidation.
	Remove(key string)
	// Victim removes and returns the next eviction candidate.
	Victim() (string, bool)
	// Reset forgets all keys.
	Reset()
}

// NewStrategy returns the strategy for a policy name. Unknown names fall
// back to FIFO, which is the documented default.
func NewStrategy(policy string, maxEntries int) Strategy {
	if policy == PolicyLRU {
		return newLRUStrategy(maxEntries)
	}
	return newFIFOStrategy()
}

// fifoStrategy evicts in insertion order. Read hits deliberately do not
// reorder: a frequently read entry still ages out with its cohort, so a
// stampede of hot keys cannot pin the cache full of old responses.
type fifoStrategy struct {
	order *list.List
	elems map[string]*list.Element
}

func newFIFOStrategy() *fifoStrategy {
	return &fifoStrategy{
		order: list.New(),
		elems: make(map[string]*list.Element),
	}
}

func (s *fifoStrategy) Admit(key string) {
	if e, ok := s.elems[key]; ok {
		s.order.MoveToBack(e)
		return
	}
	s.elems[key] = s.order.PushBack(key)
}

func (s *fifoStrategy) Touch(string) {}

func (s *fifoStrategy) Remove(key string) {
	if e, ok := s.elems[key]; ok {
		s.order.Remove(e)
		delete(s.elems, key)
	}
}

func (s *fifoStrategy) Victim() (string, bool) {
	front := s.order.Front()
	if front == nil {
		return "", false
	}
	key := front.Value.(string)
	s.order.Remove(front)
	delete(s.elems, key)
	return key, true
}

func (s *fifoStrategy) Reset() {
	s.order.Init()
	s.elems = make(map[string]*list.Element)
}

// lruStrategy evicts the least recently used key. The cache always evicts
// before admitting at capacity, so the inner LRU never self-evicts.
type lruStrategy struct {
	lru *simplelru.LRU[string, struct{}]
}

func newLRUStrategy(maxEntries int) *lruStrategy {
	if maxEntries < 1 {
		maxEntries = 1
	}
	l, _ := simplelru.NewLRU[string, struct{}](maxEntries, nil)
	return &lruStrategy{lru: l}
}

func (s *lruStrategy) Admit(key string) {
	s.lru.Add(key, struct{}{})
}

func (s *lruStrategy) Touch(key string) {
	s.lru.Get(key)
}

func (s *lruStrategy) Remove(key string) {
	s.lru.Remove(key)
}

func (s *lruStrategy) Victim() (string, bool) {
	key, _, ok := s.lru.RemoveOldest()
	return key, ok
}

func (s *lruStrategy) Reset() {
	s.lru.Purge()
}
