package textures

import (
	"texture-array/core"
)

// NewSolidImage creates a single-color image with depth layers.
func NewSolidImage(width, height, depth int, format PixelFormat, c core.Color) (*Image, error) {
	im, err := NewImage(width, height, depth, format)
	if err != nil {
		return nil, err
	}
	v := c.Vec4()
	for l := 0; l < depth; l++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				im.SetTexel(x, y, l, v)
			}
		}
	}
	return im, nil
}

// NewCheckerImage creates a size x size checkerboard of 8x8 cells.
func NewCheckerImage(size int, format PixelFormat, c1, c2 core.Color) (*Image, error) {
	im, err := NewImage(size, size, 1, format)
	if err != nil {
		return nil, err
	}
	blockSize := max(1, size/8)
	v1, v2 := c1.Vec4(), c2.Vec4()

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if ((x/blockSize)+(y/blockSize))%2 == 0 {
				im.SetTexel(x, y, 0, v1)
			} else {
				im.SetTexel(x, y, 0, v2)
			}
		}
	}
	return im, nil
}

// NewCutoutImage draws an opaque disc of color fg over a fully transparent
// background whose color channels hold bg. Box-filtered mipmaps of such images
// show bg as a dark fringe around the disc.
func NewCutoutImage(size int, format PixelFormat, fg, bg core.Color) (*Image, error) {
	im, err := NewImage(size, size, 1, format)
	if err != nil {
		return nil, err
	}
	inside := fg.Vec4()
	inside.W = 1
	outside := bg.Vec4()
	outside.W = 0

	c := float32(size) / 2
	r2 := (c * 0.75) * (c * 0.75)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float32(x)+0.5-c, float32(y)+0.5-c
			if dx*dx+dy*dy <= r2 {
				im.SetTexel(x, y, 0, inside)
			} else {
				im.SetTexel(x, y, 0, outside)
			}
		}
	}
	return im, nil
}
