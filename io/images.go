package io

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/cockroachdb/errors"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"texture-array/math"
	"texture-array/textures"
)

// LoadImage reads an image file and returns it as a single-layer RGBA image
// with straight alpha. 16-bit sources keep their precision (RGBA/u16),
// everything else becomes RGBA/u8.
func LoadImage(path string) (*textures.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read image %q", path)
	}
	im, err := DecodeImage(data)
	if err != nil {
		return nil, errors.Wrapf(err, "image %q", path)
	}
	return im, nil
}

// DecodeImage decodes PNG, JPEG, BMP, TIFF or WebP bytes.
func DecodeImage(data []byte) (*textures.Image, error) {
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return nil, errors.Newf("not an image (detected %q)", kind.MIME.Value)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	return FromImage(img)
}

// FromImage converts img to a textures.Image with straight alpha. NRGBA sources
// are copied as is, so color under zero alpha survives.
func FromImage(img image.Image) (*textures.Image, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, errors.New("empty image")
	}

	switch src := img.(type) {
	case *image.NRGBA:
		pix := make([]uint8, w*h*4)
		for y := 0; y < h; y++ {
			copy(pix[y*w*4:(y+1)*w*4], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return textures.WrapU8(w, h, 1, 4, pix)
	case *image.NRGBA64:
		return wrapNRGBA64(src, b), nil
	case *image.RGBA64, *image.Gray16:
		dst := image.NewNRGBA64(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return wrapNRGBA64(dst, dst.Bounds()), nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return textures.WrapU8(w, h, 1, 4, dst.Pix)
}

func wrapNRGBA64(src *image.NRGBA64, b image.Rectangle) *textures.Image {
	w, h := b.Dx(), b.Dy()
	pix := make([]uint16, 0, w*h*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, y):]
		for i := 0; i < w*4; i++ {
			pix = append(pix, uint16(row[2*i])<<8|uint16(row[2*i+1]))
		}
	}
	im, _ := textures.WrapU16(w, h, 1, 4, pix)
	return im
}

// ToImage converts one layer of im for encoding. Single-channel images become
// gray, a missing alpha channel is opaque. U8 images map to NRGBA, the rest to
// NRGBA64.
func ToImage(im *textures.Image, layer int) image.Image {
	rect := image.Rect(0, 0, im.Width, im.Height)
	view := im.Layer(layer)
	texel := func(x, y int) math.Vec4 {
		v := view.Texel(x, y, 0)
		if im.Format.Channels == 1 {
			v.Y, v.Z = v.X, v.X
		}
		if !im.Format.HasAlpha() {
			v.W = 1
		}
		return v
	}

	if im.Format.Type == textures.U8 {
		out := image.NewNRGBA(rect)
		for y := 0; y < im.Height; y++ {
			for x := 0; x < im.Width; x++ {
				v := texel(x, y)
				i := out.PixOffset(x, y)
				out.Pix[i+0] = uint8(math.Quantize(v.X, 255))
				out.Pix[i+1] = uint8(math.Quantize(v.Y, 255))
				out.Pix[i+2] = uint8(math.Quantize(v.Z, 255))
				out.Pix[i+3] = uint8(math.Quantize(v.W, 255))
			}
		}
		return out
	}

	out := image.NewNRGBA64(rect)
	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			v := texel(x, y)
			i := out.PixOffset(x, y)
			for k, c := range [4]float32{v.X, v.Y, v.Z, v.W} {
				q := uint16(math.Quantize(c, 65535))
				out.Pix[i+2*k] = uint8(q >> 8)
				out.Pix[i+2*k+1] = uint8(q)
			}
		}
	}
	return out
}

// SavePNG encodes one layer of im as a PNG file.
func SavePNG(path string, im *textures.Image, layer int) error {
	if err := imgio.Save(path, ToImage(im, layer), imgio.PNGEncoder()); err != nil {
		return errors.Wrapf(err, "failed to save %q", path)
	}
	return nil
}

// DumpLevel writes every layer of a mip level to dir as
// <name>_L<level>_layer<n>.png and returns the written paths.
func DumpLevel(dir, name string, level int, im *textures.Image) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %q", dir)
	}
	paths := make([]string, 0, im.Depth)
	for l := 0; l < im.Depth; l++ {
		p := filepath.Join(dir, fmt.Sprintf("%s_L%d_layer%d.png", name, level, l))
		if err := SavePNG(p, im, l); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
