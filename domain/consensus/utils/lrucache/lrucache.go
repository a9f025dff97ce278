package lrucache

import (
	"container/list"
	"sync"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/cespare/xxhash/v2"
)

const (
	maxShards        = 16
	minShardCapacity = 64
)

// entry stores the value + LRU metadata
type entry[V any] struct {
	key   externalapi.DomainHash
	value V
	elem  *list.Element
}

type shard[V any] struct {
	mu       sync.Mutex
	cache    map[externalapi.DomainHash]*entry[V]
	lru      *list.List
	capacity int
}

// LRUCache is a least-recently-used cache keyed by block hash. It's split
// into up to 16 shards, each guarded by its own mutex, so it's safe for
// concurrent use. Keys are assigned to shards by their xxhash.
type LRUCache[V any] struct {
	shards []*shard[V]
}

// New creates a new LRUCache holding up to capacity entries
func New[V any](capacity int, preallocate bool) *LRUCache[V] {
	numShards := maxShards
	for numShards > 1 && capacity/numShards < minShardCapacity {
		numShards /= 2
	}

	shards := make([]*shard[V], numShards)
	for i := range shards {
		shardCapacity := capacity / numShards
		if i < capacity%numShards {
			shardCapacity++
		}
		cache := make(map[externalapi.DomainHash]*entry[V])
		if preallocate {
			cache = make(map[externalapi.DomainHash]*entry[V], shardCapacity+1)
		}
		shards[i] = &shard[V]{
			cache:    cache,
			lru:      list.New(),
			capacity: shardCapacity,
		}
	}
	return &LRUCache[V]{shards: shards}
}

func (c *LRUCache[V]) shardOf(key *externalapi.DomainHash) *shard[V] {
	if len(c.shards) == 1 {
		return c.shards[0]
	}
	return c.shards[xxhash.Sum64(key.ByteSlice())%uint64(len(c.shards))]
}

// Add adds an entry (updates LRU position if already exists)
func (c *LRUCache[V]) Add(key *externalapi.DomainHash, value V) {
	s := c.shardOf(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.cache[*key]; ok {
		e.value = value
		s.lru.MoveToFront(e.elem)
		return
	}

	e := &entry[V]{
		key:   *key,
		value: value,
	}
	e.elem = s.lru.PushFront(e)
	s.cache[*key] = e

	if s.lru.Len() > s.capacity {
		s.evict()
	}
}

// Get returns the entry or (zero-value, false)
func (c *LRUCache[V]) Get(key *externalapi.DomainHash) (V, bool) {
	s := c.shardOf(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache[*key]
	if !ok {
		var zero V
		return zero, false
	}
	s.lru.MoveToFront(e.elem)
	return e.value, true
}

// Has checks existence (no LRU promotion)
func (c *LRUCache[V]) Has(key *externalapi.DomainHash) bool {
	s := c.shardOf(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.cache[*key]
	return ok
}

// Remove removes entry if exists
func (c *LRUCache[V]) Remove(key *externalapi.DomainHash) {
	s := c.shardOf(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache[*key]
	if !ok {
		return
	}
	s.lru.Remove(e.elem)
	delete(s.cache, *key)
}

// Len returns the number of cached entries
func (c *LRUCache[V]) Len() int {
	length := 0
	for _, s := range c.shards {
		s.mu.Lock()
		length += len(s.cache)
		s.mu.Unlock()
	}
	return length
}

// Clear empties the cache
func (c *LRUCache[V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.cache = make(map[externalapi.DomainHash]*entry[V], len(s.cache)/2+1)
		s.lru.Init()
		s.mu.Unlock()
	}
}

// evict removes the least recently used entry of s. s.mu must be held.
func (s *shard[V]) evict() {
	back := s.lru.Back()
	if back == nil {
		return
	}
	e := back.Value.(*entry[V])
	s.lru.Remove(back)
	delete(s.cache, e.key)
}
