package vulkan

// Accumulator storage layout, shared with the GLSL passes. Each pixel
// owns six 32-bit words: overlap count, coverage total in 16.16 fixed
// point, coverage sample count, and coverage-weighted RGB in the same
// fixed point. Integer addition keeps accumulation exact, so the final
// counts are independent of fragment scheduling order.
const (
	AccumWordsPerPixel uint32 = 6
	// AlphaFixedScale must match the software backend's fixed-point
	// domain; conformance tests compare the two paths bit for bit on
	// the count channel.
	AlphaFixedScale uint32 = 1 << 16
)

// Glyph layer storage layout: resolved RGBA, four floats per pixel.
const LayerWordsPerPixel uint32 = 4

// Temporal history layout: one parity bitmask word per pixel.
const HistoryWordsPerPixel uint32 = 1

// Geometry stream limits. The per-frame host-visible buffers start at
// these sizes and double when a frame outgrows them.
const (
	InitialVertexBufferSize   uint64 = 1 << 16
	InitialIndexBufferSize    uint64 = 1 << 16
	InitialInstanceBufferSize uint64 = 1 << 16
)
