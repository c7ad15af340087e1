package textures

import (
	"math/bits"
	"runtime"

	"golang.org/x/sync/errgroup"

	"texture-array/math"
)

// LevelCount is the number of mip levels for a w x h image:
// max(1, floor(log2(min(w, h)))).
func LevelCount(w, h int) int {
	m := min(w, h)
	if m < 2 {
		return 1
	}
	return max(1, bits.Len(uint(m))-1)
}

// NextLevelSize halves both extents, never below 1.
func NextLevelSize(w, h int) (int, int) {
	return max(1, w/2), max(1, h/2)
}

// LevelSize is the extent of level i for a base of w x h.
func LevelSize(w, h, level int) (int, int) {
	return max(1, w>>level), max(1, h>>level)
}

// MipChain holds the levels of one upload; level 0 is the caller's image.
type MipChain []*Image

func (c MipChain) Levels() int { return len(c) }

// MipBuilder downsamples images with bilinear filtering that treats alpha as a
// validity weight: color from texels whose alpha is below a threshold is left out
// of the average, while alpha itself is always averaged with the plain weights.
//
// The zero value is ready to use and spreads rows over GOMAXPROCS goroutines.
type MipBuilder struct {
	// Workers bounds the goroutines used per level; <= 0 means GOMAXPROCS,
	// 1 runs inline.
	Workers int
}

func (b MipBuilder) workers() int {
	if b.Workers > 0 {
		return b.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Downsample resizes every layer of src to dstW x dstH, gating color with
// threshold. Gating only applies to four-channel images; threshold 0 is plain
// bilinear filtering. Destination extents below 1 are raised to 1.
func (b MipBuilder) Downsample(src *Image, dstW, dstH int, threshold float32) *Image {
	dstW, dstH = max(1, dstW), max(1, dstH)
	planes := make([]*plane, src.Depth)
	for l := range planes {
		planes[l] = b.resample(planeFromLayer(src, l), dstW, dstH, threshold)
	}
	return quantizePlanes(planes, src.Format)
}

// Chain builds the full chain for base, LevelCount(base.Width, base.Height) long.
func (b MipBuilder) Chain(base *Image, threshold float32) MipChain {
	return b.BuildChain(base, LevelCount(base.Width, base.Height), threshold)
}

// BuildChain builds levels images, starting with base itself. Each level is
// computed from the previous one, carried in float so that quantization error
// does not compound. Only the first step uses threshold; later steps filter
// without gating because alpha is already smooth by then.
func (b MipBuilder) BuildChain(base *Image, levels int, threshold float32) MipChain {
	chain := MipChain{base}
	if levels <= 1 {
		return chain
	}

	planes := make([]*plane, base.Depth)
	for l := range planes {
		planes[l] = planeFromLayer(base, l)
	}

	w, h := base.Width, base.Height
	for i := 1; i < levels; i++ {
		w, h = NextLevelSize(w, h)
		t := float32(0)
		if i == 1 {
			t = threshold
		}
		for l := range planes {
			planes[l] = b.resample(planes[l], w, h, t)
		}
		chain = append(chain, quantizePlanes(planes, base.Format))
	}
	return chain
}

func (b MipBuilder) resample(src *plane, dstW, dstH int, threshold float32) *plane {
	dst := newPlane(dstW, dstH, src.ch)
	gated := src.ch == 4 && threshold > 0

	workers := b.workers()
	if workers <= 1 || dstH < 2 {
		resampleRows(src, dst, 0, dstH, gated, threshold)
		return dst
	}

	chunk := (dstH + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < dstH; y0 += chunk {
		y1 := min(y0+chunk, dstH)
		g.Go(func() error {
			resampleRows(src, dst, y0, y1, gated, threshold)
			return nil
		})
	}
	_ = g.Wait()
	return dst
}

// resampleRows fills destination rows [y0, y1).
func resampleRows(src, dst *plane, y0, y1 int, gated bool, threshold float32) {
	scale := math.NewVec2(float32(src.w)/float32(dst.w), float32(src.h)/float32(dst.h))
	half := math.NewVec2(0.5, 0.5)

	for dy := y0; dy < y1; dy++ {
		for dx := 0; dx < dst.w; dx++ {
			// Map the destination pixel center back to source space.
			s := math.NewVec2(float32(dx), float32(dy)).Add(half).MulVec(scale).Sub(half)
			base, f := s.Floor(), s.Fract()

			x0 := math.ClampInt(int(base.X), 0, src.w-1)
			x1 := math.ClampInt(int(base.X)+1, 0, src.w-1)
			y0s := math.ClampInt(int(base.Y), 0, src.h-1)
			y1s := math.ClampInt(int(base.Y)+1, 0, src.h-1)

			taps := [4]math.Vec4{
				src.texel(x0, y0s),
				src.texel(x1, y0s),
				src.texel(x0, y1s),
				src.texel(x1, y1s),
			}
			weights := [4]float32{
				(1 - f.X) * (1 - f.Y),
				f.X * (1 - f.Y),
				(1 - f.X) * f.Y,
				f.X * f.Y,
			}

			if !gated {
				var out math.Vec4
				for i, t := range taps {
					out = out.Add(t.Mul(weights[i]))
				}
				dst.setTexel(dx, dy, out)
				continue
			}

			var color math.Vec4
			var alpha, sum float32
			for i, t := range taps {
				alpha += t.W * weights[i]
				if t.W < threshold {
					continue
				}
				color = color.Add(t.Mul(weights[i]))
				sum += weights[i]
			}
			if sum == 0 {
				dst.setTexel(dx, dy, math.Vec4{})
				continue
			}
			color = color.Mul(1 / sum)
			color.W = alpha
			dst.setTexel(dx, dy, color)
		}
	}
}

// plane is one layer in normalized float, the working format between levels.
type plane struct {
	w, h, ch int
	pix      []float32
}

func newPlane(w, h, ch int) *plane {
	return &plane{w: w, h: h, ch: ch, pix: make([]float32, w*h*ch)}
}

func planeFromLayer(im *Image, layer int) *plane {
	p := newPlane(im.Width, im.Height, im.Format.Channels)
	off := layer * im.layerElements()
	for i := range p.pix {
		p.pix[i] = im.Value(off + i)
	}
	return p
}

func (p *plane) texel(x, y int) math.Vec4 {
	i := (y*p.w + x) * p.ch
	return math.Vec4FromSlice(p.pix[i : i+p.ch])
}

func (p *plane) setTexel(x, y int, v math.Vec4) {
	i := (y*p.w + x) * p.ch
	v.Store(p.pix[i : i+p.ch])
}

// quantizePlanes converts same-sized planes into one image of the given format.
func quantizePlanes(planes []*plane, format PixelFormat) *Image {
	p0 := planes[0]
	im, err := NewImage(p0.w, p0.h, len(planes), format)
	if err != nil {
		panic(err) // format was validated when the source image was built
	}
	n := im.layerElements()
	for l, p := range planes {
		for i, v := range p.pix {
			im.SetValue(l*n+i, v)
		}
	}
	return im
}
