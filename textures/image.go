package textures

import (
	"github.com/cockroachdb/errors"

	"texture-array/math"
)

// Image is a host-side pixel buffer of Depth layers, each Width x Height, stored
// row-major with layers back to back. Exactly one of U8, U16 and F32 is populated,
// selected by Format.Type.
//
// The mip pipeline never writes to an Image it did not create.
type Image struct {
	Width  int
	Height int
	Depth  int
	Format PixelFormat

	U8  []uint8
	U16 []uint16
	F32 []float32
}

// NewImage allocates a zeroed image.
func NewImage(width, height, depth int, format PixelFormat) (*Image, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if width < 1 || height < 1 || depth < 1 {
		return nil, errors.Mark(errors.Newf("invalid image extent %dx%dx%d", width, height, depth), ErrOutOfBounds)
	}
	im := &Image{Width: width, Height: height, Depth: depth, Format: format}
	n := im.Elements()
	switch format.Type {
	case U8:
		im.U8 = make([]uint8, n)
	case U16:
		im.U16 = make([]uint16, n)
	case F32:
		im.F32 = make([]float32, n)
	}
	return im, nil
}

// WrapU8 wraps an existing 8-bit buffer without copying.
func WrapU8(width, height, depth, channels int, pix []uint8) (*Image, error) {
	im := &Image{Width: width, Height: height, Depth: depth, Format: PixelFormat{channels, U8}, U8: pix}
	return im, im.checkLen(len(pix))
}

// WrapU16 wraps an existing 16-bit buffer without copying.
func WrapU16(width, height, depth, channels int, pix []uint16) (*Image, error) {
	im := &Image{Width: width, Height: height, Depth: depth, Format: PixelFormat{channels, U16}, U16: pix}
	return im, im.checkLen(len(pix))
}

// WrapF32 wraps an existing float buffer without copying.
func WrapF32(width, height, depth, channels int, pix []float32) (*Image, error) {
	im := &Image{Width: width, Height: height, Depth: depth, Format: PixelFormat{channels, F32}, F32: pix}
	return im, im.checkLen(len(pix))
}

func (im *Image) checkLen(n int) error {
	if err := im.Format.Validate(); err != nil {
		return err
	}
	if im.Width < 1 || im.Height < 1 || im.Depth < 1 {
		return errors.Mark(errors.Newf("invalid image extent %dx%dx%d", im.Width, im.Height, im.Depth), ErrOutOfBounds)
	}
	if n != im.Elements() {
		return errors.Mark(errors.Newf("buffer holds %d elements, %dx%dx%d %s needs %d",
			n, im.Width, im.Height, im.Depth, im.Format, im.Elements()), ErrOutOfBounds)
	}
	return nil
}

// bufferLen is the length of the slice Format.Type selects.
func (im *Image) bufferLen() int {
	switch im.Format.Type {
	case U8:
		return len(im.U8)
	case U16:
		return len(im.U16)
	case F32:
		return len(im.F32)
	}
	return 0
}

// Data returns the populated backing slice.
func (im *Image) Data() any {
	switch im.Format.Type {
	case U8:
		return im.U8
	case U16:
		return im.U16
	case F32:
		return im.F32
	}
	return nil
}

// Elements is the number of channel values in the image.
func (im *Image) Elements() int {
	return im.Width * im.Height * im.Depth * im.Format.Channels
}

func (im *Image) SizeBytes() int {
	return im.Elements() * im.Format.Type.Size()
}

func (im *Image) layerElements() int {
	return im.Width * im.Height * im.Format.Channels
}

// Layer returns a single-layer view sharing im's buffer.
func (im *Image) Layer(l int) *Image {
	n := im.layerElements()
	lo, hi := l*n, (l+1)*n
	v := &Image{Width: im.Width, Height: im.Height, Depth: 1, Format: im.Format}
	switch im.Format.Type {
	case U8:
		v.U8 = im.U8[lo:hi:hi]
	case U16:
		v.U16 = im.U16[lo:hi:hi]
	case F32:
		v.F32 = im.F32[lo:hi:hi]
	}
	return v
}

// Value returns element i normalized to [0,1] (floats as stored).
func (im *Image) Value(i int) float32 {
	switch im.Format.Type {
	case U8:
		return float32(im.U8[i]) / 255
	case U16:
		return float32(im.U16[i]) / 65535
	case F32:
		return im.F32[i]
	}
	return 0
}

// SetValue stores a normalized value at element i, rounding to nearest and
// clamping for integer element types.
func (im *Image) SetValue(i int, v float32) {
	switch im.Format.Type {
	case U8:
		im.U8[i] = uint8(math.Quantize(v, 255))
	case U16:
		im.U16[i] = uint16(math.Quantize(v, 65535))
	case F32:
		im.F32[i] = v
	}
}

func (im *Image) texelIndex(x, y, layer int) int {
	return ((layer*im.Height+y)*im.Width + x) * im.Format.Channels
}

// Texel returns the normalized channels of one pixel; missing channels are zero.
func (im *Image) Texel(x, y, layer int) math.Vec4 {
	i := im.texelIndex(x, y, layer)
	var c [4]float32
	for k := 0; k < im.Format.Channels; k++ {
		c[k] = im.Value(i + k)
	}
	return math.Vec4FromSlice(c[:im.Format.Channels])
}

func (im *Image) SetTexel(x, y, layer int, v math.Vec4) {
	i := im.texelIndex(x, y, layer)
	var c [4]float32
	v.Store(c[:im.Format.Channels])
	for k := 0; k < im.Format.Channels; k++ {
		im.SetValue(i+k, c[k])
	}
}

// Clone returns a deep copy.
func (im *Image) Clone() *Image {
	c := *im
	c.U8 = append([]uint8(nil), im.U8...)
	c.U16 = append([]uint16(nil), im.U16...)
	c.F32 = append([]float32(nil), im.F32...)
	return &c
}

// Blit copies all of src into im with its origin at (x, y, layer).
func (im *Image) Blit(src *Image, x, y, layer int) error {
	if src.Format != im.Format {
		return errors.Mark(errors.Newf("cannot blit %s into %s", src.Format, im.Format), ErrFormatMismatch)
	}
	if x < 0 || y < 0 || layer < 0 ||
		x+src.Width > im.Width || y+src.Height > im.Height || layer+src.Depth > im.Depth {
		return errors.Mark(errors.Newf("cannot blit %dx%dx%d at (%d,%d,%d) into %dx%dx%d",
			src.Width, src.Height, src.Depth, x, y, layer, im.Width, im.Height, im.Depth), ErrOutOfBounds)
	}
	row := src.Width * src.Format.Channels
	for l := 0; l < src.Depth; l++ {
		for r := 0; r < src.Height; r++ {
			s := src.texelIndex(0, r, l)
			d := im.texelIndex(x, y+r, layer+l)
			switch im.Format.Type {
			case U8:
				copy(im.U8[d:d+row], src.U8[s:s+row])
			case U16:
				copy(im.U16[d:d+row], src.U16[s:s+row])
			case F32:
				copy(im.F32[d:d+row], src.F32[s:s+row])
			}
		}
	}
	return nil
}

// Convert returns a copy of im in format. Extra channels are dropped, missing
// color channels are zero and a missing alpha channel is opaque.
func (im *Image) Convert(format PixelFormat) (*Image, error) {
	out, err := NewImage(im.Width, im.Height, im.Depth, format)
	if err != nil {
		return nil, err
	}
	for l := 0; l < im.Depth; l++ {
		for y := 0; y < im.Height; y++ {
			for x := 0; x < im.Width; x++ {
				v := im.Texel(x, y, l)
				if !im.Format.HasAlpha() {
					v.W = 1
				}
				out.SetTexel(x, y, l, v)
			}
		}
	}
	return out, nil
}

// StackLayers concatenates single- or multi-layer images of equal size and format
// into one image.
func StackLayers(layers []*Image) (*Image, error) {
	if len(layers) == 0 {
		return nil, errors.New("no layers to stack")
	}
	first := layers[0]
	depth := 0
	for _, l := range layers {
		if l.Width != first.Width || l.Height != first.Height || l.Format != first.Format {
			return nil, errors.Mark(errors.Newf("layer %dx%d %s does not match %dx%d %s",
				l.Width, l.Height, l.Format, first.Width, first.Height, first.Format), ErrFormatMismatch)
		}
		depth += l.Depth
	}
	out, err := NewImage(first.Width, first.Height, depth, first.Format)
	if err != nil {
		return nil, err
	}
	z := 0
	for _, l := range layers {
		if err := out.Blit(l, 0, 0, z); err != nil {
			return nil, err
		}
		z += l.Depth
	}
	return out, nil
}
