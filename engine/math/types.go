package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

// Quaternion represents a rotational orientation.
type Quaternion Vec4

// Mat4 is a 4x4 matrix in column-major order (translation lives in
// elements 12..14), multiplying column vectors.
type Mat4 struct {
	Data [16]float32
}

// Extents2D represents the extents of a 2d object.
type Extents2D struct {
	Min Vec2
	Max Vec2
}
