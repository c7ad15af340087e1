package textures

import "texture-array/math"

// DefaultAlphaThreshold is the alpha below which a texel's color is ignored
// when building the first mip level.
const DefaultAlphaThreshold = 0.5

// MipmapConfig selects mip generation for an ArrayTexture. It is a value type:
// the With methods return modified copies.
type MipmapConfig struct {
	Enabled bool
	// AlphaThreshold in [0,1]; only used for four-channel formats.
	AlphaThreshold float32
}

// DefaultMipmapConfig has mipmaps disabled and the default threshold.
func DefaultMipmapConfig() MipmapConfig {
	return MipmapConfig{AlphaThreshold: DefaultAlphaThreshold}
}

func (c MipmapConfig) WithEnabled(enabled bool) MipmapConfig {
	c.Enabled = enabled
	return c
}

// WithAlphaThreshold returns c with the threshold clamped to [0,1].
func (c MipmapConfig) WithAlphaThreshold(t float32) MipmapConfig {
	c.AlphaThreshold = math.Clamp(t, 0, 1)
	return c
}

// Descriptor describes an allocated array texture. Extent and format are fixed
// for the lifetime of the GPU resource.
type Descriptor struct {
	Width  int
	Height int
	Layers int
	Format InternalFormat
	Mipmap MipmapConfig
}

// PixelFormat is the transfer format uploads must use.
func (d Descriptor) PixelFormat() PixelFormat {
	pf, _ := d.Format.PixelFormat()
	return pf
}

// Levels is the number of levels the resource is created with.
func (d Descriptor) Levels() int {
	if !d.Mipmap.Enabled {
		return 1
	}
	return LevelCount(d.Width, d.Height)
}

// SizeBytes is the host-equivalent size of every level of every layer.
func (d Descriptor) SizeBytes() int64 {
	bpp := int64(d.PixelFormat().BytesPerPixel())
	var total int64
	for i := 0; i < d.Levels(); i++ {
		w, h := LevelSize(d.Width, d.Height, i)
		total += int64(w) * int64(h) * int64(d.Layers) * bpp
	}
	return total
}

// Region addresses a box inside one mip level.
type Region struct {
	X, Y, Layer          int
	Width, Height, Depth int
}

// Within reports whether r fits a w x h x layers extent.
func (r Region) Within(w, h, layers int) bool {
	return r.X >= 0 && r.Y >= 0 && r.Layer >= 0 &&
		r.Width >= 1 && r.Height >= 1 && r.Depth >= 1 &&
		r.X+r.Width <= w && r.Y+r.Height <= h && r.Layer+r.Depth <= layers
}

// AtLevel maps a level-0 region to the same area of the given level.
func (r Region) AtLevel(level int) Region {
	r.X >>= level
	r.Y >>= level
	r.Width = max(1, r.Width>>level)
	r.Height = max(1, r.Height>>level)
	return r
}

// Filter is a texture sampling filter.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
	FilterLinearMipmapLinear
)

// Wrap is a texture coordinate wrap mode.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

// Sampling holds the sampler state applied at allocation.
type Sampling struct {
	MinFilter Filter
	MagFilter Filter
	WrapS     Wrap
	WrapT     Wrap
	WrapR     Wrap
}

// SamplingFor is linear magnification, repeat on every axis, and trilinear
// minification when the descriptor has more than one level.
func SamplingFor(d Descriptor) Sampling {
	s := Sampling{
		MinFilter: FilterLinear,
		MagFilter: FilterLinear,
		WrapS:     WrapRepeat,
		WrapT:     WrapRepeat,
		WrapR:     WrapRepeat,
	}
	if d.Mipmap.Enabled {
		s.MinFilter = FilterLinearMipmapLinear
	}
	return s
}
