package textures

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texture-array/core"
)

func TestLevelCount(t *testing.T) {
	cases := []struct {
		w, h int
		want int
	}{
		{256, 256, 8},
		{1, 1, 1},
		{2, 2, 1},
		{3, 5, 1},
		{4, 4, 2},
		{512, 128, 7},
		{1024, 1, 1},
		{0, 0, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, LevelCount(c.w, c.h), "LevelCount(%d, %d)", c.w, c.h)
	}

	w, h := NextLevelSize(5, 1)
	assert.Equal(t, 2, w)
	assert.Equal(t, 1, h)

	w, h = LevelSize(256, 64, 7)
	assert.Equal(t, 2, w)
	assert.Equal(t, 1, h)
}

func randomImage(t *testing.T, rng *rand.Rand, w, h int, format PixelFormat, minAlpha float32) *Image {
	t.Helper()
	im, err := NewImage(w, h, 1, format)
	require.NoError(t, err)
	for i := 0; i < im.Elements(); i++ {
		v := rng.Float32()
		if format.HasAlpha() && i%4 == 3 {
			v = minAlpha + (1-minAlpha)*v
		}
		im.SetValue(i, v)
	}
	return im
}

// referenceBilinear is a direct float64 rendition of center-aligned bilinear
// resizing with clamp-to-edge sampling.
func referenceBilinear(src *Image, dstW, dstH int) []float64 {
	ch := src.Format.Channels
	out := make([]float64, dstW*dstH*ch)
	clamp := func(i, n int) int { return max(0, min(n-1, i)) }
	for dy := 0; dy < dstH; dy++ {
		for dx := 0; dx < dstW; dx++ {
			sx := float64(src.Width)*((float64(dx)+0.5)/float64(dstW)) - 0.5
			sy := float64(src.Height)*((float64(dy)+0.5)/float64(dstH)) - 0.5
			fx, fy := int(sx), int(sy)
			if sx < 0 {
				fx = -1
			}
			if sy < 0 {
				fy = -1
			}
			a, b := sx-float64(fx), sy-float64(fy)
			x0, x1 := clamp(fx, src.Width), clamp(fx+1, src.Width)
			y0, y1 := clamp(fy, src.Height), clamp(fy+1, src.Height)
			for c := 0; c < ch; c++ {
				v := func(x, y int) float64 { return float64(src.Value((y*src.Width+x)*ch + c)) }
				out[(dy*dstW+dx)*ch+c] = v(x0, y0)*(1-a)*(1-b) + v(x1, y0)*a*(1-b) +
					v(x0, y1)*(1-a)*b + v(x1, y1)*a*b
			}
		}
	}
	return out
}

func TestDownsampleMatchesBilinearWhenNothingIsGated(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, size := range [][4]int{{16, 16, 8, 8}, {9, 7, 4, 3}, {8, 1, 4, 1}} {
		src := randomImage(t, rng, size[0], size[1], FormatRGBA32F, 0.5)

		gated := MipBuilder{}.Downsample(src, size[2], size[3], 0.5)
		plain := MipBuilder{}.Downsample(src, size[2], size[3], 0)
		want := referenceBilinear(src, size[2], size[3])

		require.Len(t, gated.F32, len(want))
		for i := range want {
			assert.InDelta(t, want[i], gated.F32[i], 1e-5, "gated element %d", i)
			assert.InDelta(t, want[i], plain.F32[i], 1e-5, "plain element %d", i)
		}
	}
}

func TestDownsampleExcludesTransparentColor(t *testing.T) {
	src, err := WrapU8(2, 2, 1, 4, []uint8{
		200, 100, 50, 255, 0, 0, 0, 10,
		200, 100, 50, 255, 200, 100, 50, 255,
	})
	require.NoError(t, err)

	out := MipBuilder{}.Downsample(src, 1, 1, 0.5)
	require.Equal(t, 1, out.Width)
	require.Equal(t, 1, out.Height)

	// (3*255 + 10) / 4 = 193.75
	assert.Equal(t, []uint8{200, 100, 50, 194}, out.U8)
}

func TestDownsampleAllTransparentIsZero(t *testing.T) {
	src, err := WrapU8(2, 2, 1, 4, []uint8{
		255, 0, 0, 20, 0, 255, 0, 30,
		0, 0, 255, 40, 255, 255, 255, 102,
	})
	require.NoError(t, err)

	out := MipBuilder{}.Downsample(src, 1, 1, 0.5)
	assert.Equal(t, []uint8{0, 0, 0, 0}, out.U8)

	// Without gating the same block averages normally.
	plain := MipBuilder{}.Downsample(src, 1, 1, 0)
	assert.Equal(t, []uint8{128, 128, 128, 48}, plain.U8)
}

func TestDownsampleThresholdIsStrict(t *testing.T) {
	// alpha exactly at the threshold still contributes color
	src, err := WrapF32(2, 1, 1, 4, []float32{
		1, 0, 0, 0.5,
		0, 0, 1, 1,
	})
	require.NoError(t, err)

	out := MipBuilder{}.Downsample(src, 1, 1, 0.5)
	assert.InDeltaSlice(t, []float32{0.5, 0, 0.5, 0.75}, out.F32, 1e-6)
}

func TestDownsampleSinglePixelAxis(t *testing.T) {
	src, err := WrapU8(1, 4, 1, 1, []uint8{10, 30, 100, 200})
	require.NoError(t, err)

	out := MipBuilder{}.Downsample(src, 1, 2, 0.5)
	assert.Equal(t, []uint8{20, 150}, out.U8)

	same := MipBuilder{}.Downsample(src, 1, 4, 0)
	assert.Equal(t, src.U8, same.U8)
}

func TestDownsampleRaisesEmptyExtentToOne(t *testing.T) {
	src, err := WrapU8(2, 1, 1, 1, []uint8{10, 30})
	require.NoError(t, err)

	out := MipBuilder{}.Downsample(src, 0, -3, 0)
	assert.Equal(t, 1, out.Width)
	assert.Equal(t, 1, out.Height)
	assert.Equal(t, []uint8{20}, out.U8)
}

func TestDownsampleLeavesSourceUntouched(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	src := randomImage(t, rng, 8, 8, FormatRGBA8, 0)
	before := src.Clone()

	_ = MipBuilder{}.Chain(src, 0.5)
	assert.Equal(t, before.U8, src.U8)
}

func TestBuildChainLengthAndSizes(t *testing.T) {
	src, err := NewSolidImage(256, 256, 1, FormatRGBA8, core.ColorRed)
	require.NoError(t, err)

	chain := MipBuilder{}.Chain(src, 0.5)
	require.Equal(t, 8, chain.Levels())
	assert.Same(t, src, chain[0])
	for i, lvl := range chain {
		assert.Equal(t, 256>>i, lvl.Width, "level %d", i)
		assert.Equal(t, 256>>i, lvl.Height, "level %d", i)
	}

	one, err := NewSolidImage(1, 1, 1, FormatRGBA8, core.ColorRed)
	require.NoError(t, err)
	assert.Equal(t, 1, MipBuilder{}.Chain(one, 0.5).Levels())
}

func TestBuildChainGatesOnlyFirstLevel(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	src := randomImage(t, rng, 16, 16, FormatRGBA32F, 0)

	chain := MipBuilder{}.BuildChain(src, 4, 0.6)
	require.Equal(t, 4, chain.Levels())

	first := MipBuilder{}.Downsample(src, 8, 8, 0.6)
	assert.InDeltaSlice(t, first.F32, chain[1].F32, 1e-6)

	for i := 2; i < chain.Levels(); i++ {
		w, h := NextLevelSize(chain[i-1].Width, chain[i-1].Height)
		next := MipBuilder{}.Downsample(chain[i-1], w, h, 0)
		assert.InDeltaSlice(t, next.F32, chain[i].F32, 1e-6, "level %d", i)
	}
}

func TestBuildChainPerLayer(t *testing.T) {
	red, err := NewSolidImage(8, 8, 1, FormatRGBA8, core.ColorRed)
	require.NoError(t, err)
	blue, err := NewSolidImage(8, 8, 1, FormatRGBA8, core.ColorBlue)
	require.NoError(t, err)
	both, err := StackLayers([]*Image{red, blue})
	require.NoError(t, err)

	chain := MipBuilder{}.Chain(both, 0.5)
	require.Equal(t, 3, chain.Levels())
	last := chain[2]
	assert.Equal(t, 2, last.Depth)
	assert.Equal(t, core.ColorRed.Vec4(), last.Texel(0, 0, 0))
	assert.Equal(t, core.ColorBlue.Vec4(), last.Texel(1, 1, 1))
}

func TestBuilderWorkersDoNotChangeOutput(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	src := randomImage(t, rng, 64, 48, FormatRGBA16, 0)

	serial := MipBuilder{Workers: 1}.Chain(src, 0.3)
	parallel := MipBuilder{Workers: 7}.Chain(src, 0.3)
	require.Equal(t, serial.Levels(), parallel.Levels())
	for i := range serial {
		assert.Equal(t, serial[i].U16, parallel[i].U16, "level %d", i)
	}
}

func TestCutoutFirstLevelHasNoFringe(t *testing.T) {
	fg := core.Color{R: 1, G: 0.8, B: 0.2, A: 1}
	src, err := NewCutoutImage(32, FormatRGBA8, fg, core.ColorBlack)
	require.NoError(t, err)

	lvl := MipBuilder{}.Downsample(src, 16, 16, 0.5)
	want := MipBuilder{}.Downsample(src, 16, 16, 0)

	fringe := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := lvl.Texel(x, y, 0)
			if c.W == 0 {
				assert.Equal(t, core.ColorTransparent.Vec4(), c)
				continue
			}
			assert.InDelta(t, fg.R, c.X, 1.0/255, "(%d,%d)", x, y)
			assert.InDelta(t, fg.G, c.Y, 1.0/255, "(%d,%d)", x, y)
			assert.InDelta(t, fg.B, c.Z, 1.0/255, "(%d,%d)", x, y)
			assert.Equal(t, want.Texel(x, y, 0).W, c.W, "alpha at (%d,%d)", x, y)
			if p := want.Texel(x, y, 0); p.X < fg.R-0.01 {
				fringe++
			}
		}
	}
	// plain filtering darkens the edge
	assert.Positive(t, fringe)
}
