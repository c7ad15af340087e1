package math

// Vec4 holds up to four channel values of a texel (R, G, B, A).
// Texels with fewer channels leave the trailing components at zero.
type Vec4 struct {
	X, Y, Z, W float32
}

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

// Vec4FromSlice loads the first len(s) components (at most four) from s.
func Vec4FromSlice(s []float32) Vec4 {
	var v Vec4
	switch len(s) {
	default:
		v.W = s[3]
		fallthrough
	case 3:
		v.Z = s[2]
		fallthrough
	case 2:
		v.Y = s[1]
		fallthrough
	case 1:
		v.X = s[0]
	case 0:
	}
	return v
}

// Store writes the first len(dst) components (at most four) into dst.
func (v Vec4) Store(dst []float32) {
	switch len(dst) {
	default:
		dst[3] = v.W
		fallthrough
	case 3:
		dst[2] = v.Z
		fallthrough
	case 2:
		dst[1] = v.Y
		fallthrough
	case 1:
		dst[0] = v.X
	case 0:
	}
}

func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z, W: v.W + other.W}
}

func (v Vec4) Sub(other Vec4) Vec4 {
	return Vec4{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z, W: v.W - other.W}
}

func (v Vec4) Mul(scalar float32) Vec4 {
	return Vec4{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar, W: v.W * scalar}
}
