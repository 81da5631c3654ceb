package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// LRU implements BlobCache with a byte capacity.
type LRU struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[string]*list.Element
	evictList *list.List
	admission AdmissionPolicy

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	name  string
	value []byte
}

// NewLRU creates a new LRU cache with the given capacity in bytes. A nil
// policy admits everything.
func NewLRU(capacity int64, policy AdmissionPolicy) *LRU {
	if policy == nil {
		policy = AdmitAll{}
	}
	return &LRU{
		capacity:  capacity,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
		admission: policy,
	}
}

// Get returns a cached blob.
func (c *LRU) Get(_ context.Context, name string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[name]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches a blob. Blobs larger than the capacity are never cached.
func (c *LRU) Set(_ context.Context, name string, b []byte) {
	itemSize := int64(len(b))
	if itemSize > c.capacity {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[name]; ok {
		c.evictList.MoveToFront(ent)
		c.size += itemSize - int64(len(ent.Value.(*entry).value))
		ent.Value.(*entry).value = b
		c.evict()
		return
	}

	if !c.admission.Admit(name, len(b)) {
		return
	}

	c.items[name] = c.evictList.PushFront(&entry{name, b})
	c.size += itemSize
	c.evict()
}

func (c *LRU) evict() {
	for c.size > c.capacity {
		element := c.evictList.Back()
		if element == nil {
			break
		}
		c.removeElement(element)
	}
}

// Stats implements BlobCache.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *LRU) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry)
	delete(c.items, kv.name)
	c.size -= int64(len(kv.value))
}

// Size returns the current size of the cache in bytes.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached blobs.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// SecondHit admits a blob the second time it is offered.
type SecondHit struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewSecondHit creates a SecondHit policy.
func NewSecondHit() *SecondHit {
	return &SecondHit{seen: make(map[string]struct{})}
}

// Admit implements AdmissionPolicy.
func (p *SecondHit) Admit(name string, _ int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[name]; ok {
		delete(p.seen, name)
		return true
	}
	p.seen[name] = struct{}{}
	return false
}
