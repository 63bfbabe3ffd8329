package vulkan

import (
	"encoding/binary"
	gomath "math"

	"github.com/vecglyph/vecglyph/engine/instance"
	"github.com/vecglyph/vecglyph/engine/outline"
	"github.com/vecglyph/vecglyph/engine/renderer"
)

// GPUVertexStride is the byte size of one packed glyph vertex:
// position vec2 followed by the role weight vec2.
const GPUVertexStride uint32 = 16

// DrawKind selects the triangle category a draw covers; the overlap
// fragment shader switches its coverage rule on it.
type DrawKind uint32

const (
	DrawBezierFill DrawKind = iota
	DrawBezierComplement
	DrawLineFill
)

// DrawRecord is one indexed, instanced draw inside the overlap subpass.
type DrawRecord struct {
	Kind          DrawKind
	IndexFirst    uint32
	IndexCount    uint32
	VertexOffset  int32
	InstanceFirst uint32
	InstanceCount uint32
}

// GeometryStream is a frame's glyph geometry flattened into the three
// byte streams the overlap pipeline binds, plus the draw list that
// walks them. Rebuilt from scratch every frame; meshes repeat across
// frames but the packed streams are frame-local.
type GeometryStream struct {
	Vertices  []byte
	Indices   []byte
	Instances []byte
	Draws     []DrawRecord
}

// BuildGeometryStream packs every draw group of the packet. Vertices
// and indices of one mesh are appended once and shared by the group's
// instances through instanced draws.
func BuildGeometryStream(packet *renderer.FramePacket) *GeometryStream {
	gs := &GeometryStream{}

	var vertexCount uint32
	var indexCount uint32
	var instanceCount uint32

	for _, group := range packet.Groups {
		if group.Mesh == nil || group.Mesh.Empty() || len(group.Instances) == 0 {
			continue
		}

		vertexOffset := int32(vertexCount)
		for _, v := range group.Mesh.Vertices {
			wait := v.Role.Wait()
			gs.Vertices = appendFloat32(gs.Vertices, v.Position.X)
			gs.Vertices = appendFloat32(gs.Vertices, v.Position.Y)
			gs.Vertices = appendFloat32(gs.Vertices, wait[0])
			gs.Vertices = appendFloat32(gs.Vertices, wait[1])
		}
		vertexCount += uint32(len(group.Mesh.Vertices))

		instanceFirst := instanceCount
		for _, raw := range group.Instances {
			gs.Instances = appendInstance(gs.Instances, raw)
		}
		instanceCount += uint32(len(group.Instances))

		categories := []struct {
			kind    DrawKind
			indices []uint32
		}{
			{DrawBezierFill, group.Mesh.BezierFill},
			{DrawBezierComplement, group.Mesh.BezierComplement},
			{DrawLineFill, group.Mesh.LineFill},
		}
		for _, cat := range categories {
			if len(cat.indices) == 0 {
				continue
			}
			first := indexCount
			for _, idx := range cat.indices {
				gs.Indices = appendUint32(gs.Indices, idx)
			}
			indexCount += uint32(len(cat.indices))

			gs.Draws = append(gs.Draws, DrawRecord{
				Kind:          cat.kind,
				IndexFirst:    first,
				IndexCount:    uint32(len(cat.indices)),
				VertexOffset:  vertexOffset,
				InstanceFirst: instanceFirst,
				InstanceCount: uint32(len(group.Instances)),
			})
		}
	}

	return gs
}

// Empty reports whether the frame draws no glyph geometry at all.
func (gs *GeometryStream) Empty() bool {
	return len(gs.Draws) == 0
}

func appendFloat32(b []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(b, gomath.Float32bits(v))
}

func appendUint32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

// appendInstance packs one instance record in the exact field order of
// instance.Raw; instance.RawStride bytes per record.
func appendInstance(b []byte, raw instance.Raw) []byte {
	for _, f := range raw.Model {
		b = appendFloat32(b, f)
	}
	for _, f := range raw.Color {
		b = appendFloat32(b, f)
	}
	b = appendUint32(b, raw.Motion)
	b = appendUint32(b, raw.StartTime)
	b = appendFloat32(b, raw.Gain)
	b = appendUint32(b, raw.Duration)
	return b
}
