// Package glyph caches tessellated glyph meshes per font and character.
//
// Tessellation is pure CPU work but not free, and text on screen repeats
// characters heavily, so meshes are built once and shared by reference.
// The cache is bounded: least recently used entries are dropped, but only
// between frames, so a mesh handed out during a frame is never invalidated
// under the renderer.
package glyph

import (
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/google/uuid"

	"github.com/vecglyph/vecglyph/engine/core"
	"github.com/vecglyph/vecglyph/engine/outline"
)

// Key identifies one cached mesh: a character in a particular font.
type Key struct {
	Font uuid.UUID
	Char rune
}

// DefaultCapacity bounds the cache when no explicit capacity is given.
const DefaultCapacity = 1024

// Cache is a bounded most-recently-used mesh store. Safe for use from
// multiple goroutines; eviction only happens in EndFrame.
type Cache struct {
	mu       sync.Mutex
	entries  *linkedhashmap.Map // Key -> *outline.Mesh, oldest first
	pending  map[Key]struct{}   // evictions deferred to EndFrame
	capacity int
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:  linkedhashmap.New(),
		pending:  make(map[Key]struct{}),
		capacity: capacity,
	}
}

// Get returns the cached mesh and refreshes its recency, or nil.
func (c *Cache) Get(k Key) *outline.Mesh {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries.Get(k)
	if !ok {
		return nil
	}
	// move to the back: most recently used
	c.entries.Remove(k)
	c.entries.Put(k, v)
	return v.(*outline.Mesh)
}

// GetOrInsert returns the cached mesh for k, calling build to produce it
// on a miss. The build result is cached even when empty, so a rejected
// outline is not re-tessellated every frame.
func (c *Cache) GetOrInsert(k Key, build func() *outline.Mesh) *outline.Mesh {
	if m := c.Get(k); m != nil {
		return m
	}
	m := build()
	if m == nil {
		m = &outline.Mesh{}
	}
	c.mu.Lock()
	c.entries.Put(k, m)
	c.mu.Unlock()
	return m
}

// Evict marks k for removal. The entry stays served until EndFrame, so a
// mesh handed out this frame is never invalidated mid-draw; the next
// GetOrInsert after EndFrame rebuilds it.
func (c *Cache) Evict(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries.Get(k); ok {
		c.pending[k] = struct{}{}
	}
}

// Len returns the number of cached meshes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Size()
}

// EndFrame removes entries marked by Evict, then drops least recently
// used entries until the cache fits its capacity. Call it after the
// frame's draw submission; meshes returned during the frame stay valid
// until then.
func (c *Cache) EndFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	evicted := 0
	for k := range c.pending {
		if _, ok := c.entries.Get(k); ok {
			c.entries.Remove(k)
			evicted++
		}
		delete(c.pending, k)
	}
	for c.entries.Size() > c.capacity {
		it := c.entries.Iterator()
		if !it.First() {
			break
		}
		c.entries.Remove(it.Key())
		evicted++
	}
	if evicted > 0 {
		core.LogDebug("glyph cache evicted %d meshes, %d cached", evicted, c.entries.Size())
	}
}
