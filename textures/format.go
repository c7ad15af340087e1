package textures

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// ElementType is the storage type of one channel value.
type ElementType int

const (
	ElementInvalid ElementType = iota
	U8
	U16
	F32
)

var elementNames = map[ElementType]string{
	U8:  "u8",
	U16: "u16",
	F32: "f32",
}

func (t ElementType) String() string {
	if s, ok := elementNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ElementType(%d)", int(t))
}

// Valid reports whether t is one of U8, U16 or F32.
func (t ElementType) Valid() bool {
	_, ok := elementNames[t]
	return ok
}

// Size is the size of one element in bytes.
func (t ElementType) Size() int {
	switch t {
	case U8:
		return 1
	case U16:
		return 2
	case F32:
		return 4
	}
	return 0
}

// Max is the largest stored value, used to normalize integer elements to [0,1].
// Float elements are stored normalized already.
func (t ElementType) Max() float32 {
	switch t {
	case U8:
		return 255
	case U16:
		return 65535
	}
	return 1
}

// PixelFormat is a transfer format: how pixels are laid out in host memory.
type PixelFormat struct {
	Channels int
	Type     ElementType
}

var (
	FormatR8      = PixelFormat{1, U8}
	FormatRG8     = PixelFormat{2, U8}
	FormatRGB8    = PixelFormat{3, U8}
	FormatRGBA8   = PixelFormat{4, U8}
	FormatRGBA16  = PixelFormat{4, U16}
	FormatRGBA32F = PixelFormat{4, F32}
)

var channelNames = [...]string{"", "R", "RG", "RGB", "RGBA"}

func (f PixelFormat) String() string {
	if f.Channels >= 1 && f.Channels <= 4 {
		return channelNames[f.Channels] + "/" + f.Type.String()
	}
	return fmt.Sprintf("%dch/%s", f.Channels, f.Type)
}

// HasAlpha reports whether the last channel is alpha. Only four-channel formats
// carry alpha.
func (f PixelFormat) HasAlpha() bool {
	return f.Channels == 4
}

func (f PixelFormat) BytesPerPixel() int {
	return f.Channels * f.Type.Size()
}

// Validate checks the channel count and element type.
func (f PixelFormat) Validate() error {
	if !f.Type.Valid() {
		return errors.Mark(errors.Newf("unsupported element type %s", f.Type), ErrUnsupportedElementType)
	}
	if f.Channels < 1 || f.Channels > 4 {
		return errors.Mark(errors.Newf("unsupported channel count %d", f.Channels), ErrUnsupportedElementType)
	}
	return nil
}

// InternalFormat is the storage format of the texture resource on the GPU.
type InternalFormat int

const (
	InternalInvalid InternalFormat = iota
	R8
	RG8
	RGB8
	RGBA8
	R16
	RG16
	RGB16
	RGBA16
	R32F
	RG32F
	RGB32F
	RGBA32F
)

var internalFormats = map[InternalFormat]struct {
	name   string
	format PixelFormat
}{
	R8:      {"r8", PixelFormat{1, U8}},
	RG8:     {"rg8", PixelFormat{2, U8}},
	RGB8:    {"rgb8", PixelFormat{3, U8}},
	RGBA8:   {"rgba8", PixelFormat{4, U8}},
	R16:     {"r16", PixelFormat{1, U16}},
	RG16:    {"rg16", PixelFormat{2, U16}},
	RGB16:   {"rgb16", PixelFormat{3, U16}},
	RGBA16:  {"rgba16", PixelFormat{4, U16}},
	R32F:    {"r32f", PixelFormat{1, F32}},
	RG32F:   {"rg32f", PixelFormat{2, F32}},
	RGB32F:  {"rgb32f", PixelFormat{3, F32}},
	RGBA32F: {"rgba32f", PixelFormat{4, F32}},
}

func (f InternalFormat) String() string {
	if e, ok := internalFormats[f]; ok {
		return e.name
	}
	return fmt.Sprintf("InternalFormat(%d)", int(f))
}

// PixelFormat derives the transfer format matching the internal format.
func (f InternalFormat) PixelFormat() (PixelFormat, bool) {
	e, ok := internalFormats[f]
	return e.format, ok
}

// ParseInternalFormat parses names such as "rgba8" or "RGBA32F".
func ParseInternalFormat(s string) (InternalFormat, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for f, e := range internalFormats {
		if e.name == name {
			return f, nil
		}
	}
	return InternalInvalid, errors.Mark(errors.Newf("unknown internal format %q", s), ErrUnsupportedElementType)
}
