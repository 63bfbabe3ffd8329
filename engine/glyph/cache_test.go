package glyph

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/vecglyph/vecglyph/engine/outline"
)

var testFont = uuid.MustParse("4b2ce1de-31ac-4e25-8572-3350f61e2a0f")

func key(r rune) Key { return Key{Font: testFont, Char: r} }

func mesh() *outline.Mesh {
	return &outline.Mesh{LineFill: []uint32{0, 1, 2}}
}

func TestGetOrInsertBuildsOnce(t *testing.T) {
	c := NewCache(8)
	builds := 0
	build := func() *outline.Mesh {
		builds++
		return mesh()
	}
	a := c.GetOrInsert(key('a'), build)
	b := c.GetOrInsert(key('a'), build)
	assert.Equal(t, 1, builds)
	assert.Same(t, a, b)
}

func TestDistinctFontsDistinctEntries(t *testing.T) {
	c := NewCache(8)
	other := uuid.MustParse("9f1a54e6-07d4-43c9-a8a0-61a6511beac1")
	a := c.GetOrInsert(Key{Font: testFont, Char: 'x'}, mesh)
	b := c.GetOrInsert(Key{Font: other, Char: 'x'}, mesh)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, c.Len())
}

func TestNilBuildCachedAsEmpty(t *testing.T) {
	c := NewCache(8)
	builds := 0
	m := c.GetOrInsert(key('?'), func() *outline.Mesh {
		builds++
		return nil
	})
	assert.True(t, m.Empty())
	c.GetOrInsert(key('?'), func() *outline.Mesh {
		builds++
		return nil
	})
	assert.Equal(t, 1, builds)
}

func TestEvictionOnlyInEndFrame(t *testing.T) {
	c := NewCache(2)
	c.GetOrInsert(key('a'), mesh)
	c.GetOrInsert(key('b'), mesh)
	c.GetOrInsert(key('c'), mesh)

	// over capacity mid-frame, nothing dropped yet
	assert.Equal(t, 3, c.Len())

	c.EndFrame()
	assert.Equal(t, 2, c.Len())
}

func TestEndFrameDropsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	c.GetOrInsert(key('a'), mesh)
	c.GetOrInsert(key('b'), mesh)
	c.Get(key('a')) // refresh a; b is now the oldest
	c.GetOrInsert(key('c'), mesh)
	c.EndFrame()

	assert.NotNil(t, c.Get(key('a')))
	assert.NotNil(t, c.Get(key('c')))
	assert.Nil(t, c.Get(key('b')))
}

func TestEvictDefersToEndFrame(t *testing.T) {
	c := NewCache(8)
	m := c.GetOrInsert(key('a'), mesh)
	c.Evict(key('a'))

	// still served until the frame boundary
	assert.Same(t, m, c.Get(key('a')))

	c.EndFrame()
	assert.Nil(t, c.Get(key('a')))

	builds := 0
	c.GetOrInsert(key('a'), func() *outline.Mesh {
		builds++
		return mesh()
	})
	assert.Equal(t, 1, builds)
}

func TestEvictUnknownKeyIsNoop(t *testing.T) {
	c := NewCache(8)
	c.GetOrInsert(key('a'), mesh)
	c.Evict(key('z'))
	c.EndFrame()
	assert.Equal(t, 1, c.Len())
}

func TestGetMissReturnsNil(t *testing.T) {
	c := NewCache(2)
	assert.Nil(t, c.Get(key('z')))
}
