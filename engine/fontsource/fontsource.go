// Package fontsource registers font binaries and extracts glyph outlines
// for the tessellator.
//
// Outlines leave this package already normalized: glyph coordinates are
// centered on the face's global bounding box and scaled by its height,
// so a full-height glyph spans roughly one unit regardless of the font's
// units-per-em. The y axis is flipped from the font's y-down convention
// to the renderer's y-up one.
package fontsource

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/vecglyph/vecglyph/engine/core"
	"github.com/vecglyph/vecglyph/engine/math"
	"github.com/vecglyph/vecglyph/engine/outline"
)

var ErrGlyphNotFound = errors.New("glyph not found in any registered font")

// Source is one registered font face.
type Source struct {
	id   uuid.UUID
	name string
	font *sfnt.Font

	mu  sync.Mutex
	buf sfnt.Buffer

	upem    fixed.Int26_6
	centerX float32
	centerY float32
	height  float32
}

func newSource(f *sfnt.Font) (*Source, error) {
	s := &Source{
		id:   uuid.New(),
		font: f,
		upem: fixed.I(int(f.UnitsPerEm())),
	}
	if name, err := f.Name(&s.buf, sfnt.NameIDFamily); err == nil {
		s.name = name
	}
	// global bounding box at ppem = upem: font units, 26.6 fixed
	bounds, err := f.Bounds(&s.buf, s.upem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("font bounds: %w", err)
	}
	minX, minY := fixedToFloat(bounds.Min.X), fixedToFloat(bounds.Min.Y)
	maxX, maxY := fixedToFloat(bounds.Max.X), fixedToFloat(bounds.Max.Y)
	s.centerX = (minX + maxX) / 2
	s.centerY = (minY + maxY) / 2
	s.height = maxY - minY
	if s.height <= 0 {
		return nil, errors.New("font has a degenerate bounding box")
	}
	return s, nil
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

func (s *Source) ID() uuid.UUID { return s.id }
func (s *Source) Name() string  { return s.name }

// Mesh tessellates the outline of r. The error is ErrGlyphNotFound when
// the face has no glyph for r; malformed outlines produce an empty mesh,
// not an error.
func (s *Source) Mesh(r rune) (*outline.Mesh, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gi, err := s.font.GlyphIndex(&s.buf, r)
	if err != nil {
		return nil, fmt.Errorf("glyph index %q: %w", r, err)
	}
	if gi == 0 {
		return nil, ErrGlyphNotFound
	}
	segments, err := s.font.LoadGlyph(&s.buf, gi, s.upem, nil)
	if err != nil {
		return nil, fmt.Errorf("load glyph %q: %w", r, err)
	}
	return outline.Tessellate(s.contours(segments), math.NewVec2(0, 0), 1), nil
}

// contours converts sfnt segments to tessellator contours. Zero-length
// segments are quantization artifacts of the font's integer grid and are
// skipped here; truly degenerate contours are left for the tessellator's
// validation to reject.
func (s *Source) contours(segments []sfnt.Segment) []outline.Contour {
	var contours []outline.Contour
	var cur []outline.Segment
	var pen math.Vec2
	flush := func() {
		if cur != nil {
			contours = append(contours, outline.Contour{Segments: cur})
			cur = nil
		}
	}
	line := func(end math.Vec2) {
		if end != pen {
			cur = append(cur, outline.Segment{Kind: outline.SegmentLine, Start: pen, End: end})
		}
		pen = end
	}
	quad := func(control, end math.Vec2) {
		if end != pen {
			cur = append(cur, outline.Segment{Kind: outline.SegmentQuadraticBezier, Start: pen, Control: control, End: end})
		}
		pen = end
	}
	for _, seg := range segments {
		p := s.point(seg.Args[0])
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			flush()
			pen = p
		case sfnt.SegmentOpLineTo:
			line(p)
		case sfnt.SegmentOpQuadTo:
			quad(p, s.point(seg.Args[1]))
		case sfnt.SegmentOpCubeTo:
			end := s.point(seg.Args[2])
			for _, q := range outline.FlattenCubic(pen, p, s.point(seg.Args[1]), end) {
				quad(q.Control, q.End)
			}
			pen = end
		}
	}
	flush()
	return contours
}

// point converts a segment point to normalized, y-up glyph space.
func (s *Source) point(p fixed.Point26_6) math.Vec2 {
	return math.NewVec2(
		(fixedToFloat(p.X)-s.centerX)/s.height,
		-(fixedToFloat(p.Y)-s.centerY)/s.height,
	)
}

// Advance returns the horizontal advance of r in normalized units.
func (s *Source) Advance(r rune) (float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gi, err := s.font.GlyphIndex(&s.buf, r)
	if err != nil || gi == 0 {
		return 0, ErrGlyphNotFound
	}
	adv, err := s.font.GlyphAdvance(&s.buf, gi, s.upem, font.HintingNone)
	if err != nil {
		return 0, fmt.Errorf("glyph advance %q: %w", r, err)
	}
	return fixedToFloat(adv) / s.height, nil
}

// Registry holds registered fonts in lookup order.
type Registry struct {
	mu      sync.RWMutex
	sources []*Source
	byID    map[uuid.UUID]*Source
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[uuid.UUID]*Source)}
}

// Register parses data as an OpenType font and adds it to the registry.
func (r *Registry) Register(data []byte) (*Source, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	s, err := newSource(f)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.sources = append(r.sources, s)
	r.byID[s.id] = s
	r.mu.Unlock()
	core.LogInfo("registered font %q (%s)", s.name, s.id)
	return s, nil
}

// RegisterFile reads and registers a font file.
func (r *Registry) RegisterFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	return r.Register(data)
}

// ByID returns the source registered under id, or nil.
func (r *Registry) ByID(id uuid.UUID) *Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// Lookup finds the first registered font containing a glyph for r,
// falling through fonts in registration order.
func (r *Registry) Lookup(ch rune) (*Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sources {
		s.mu.Lock()
		gi, err := s.font.GlyphIndex(&s.buf, ch)
		s.mu.Unlock()
		if err == nil && gi != 0 {
			return s, nil
		}
	}
	return nil, ErrGlyphNotFound
}
