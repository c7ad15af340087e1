package io

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texture-array/core"
	"texture-array/textures"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{0, 255, 0, 128})
	img.SetNRGBA(0, 1, color.NRGBA{0, 0, 255, 0})
	img.SetNRGBA(1, 1, color.NRGBA{10, 20, 30, 40})
	return img
}

func TestFromImageUnpremultiplies(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{128, 0, 0, 128})

	im, err := FromImage(src)
	require.NoError(t, err)
	assert.Equal(t, textures.FormatRGBA8, im.Format)
	assert.Equal(t, []uint8{255, 0, 0, 128}, im.U8)
}

func TestFromImageKeepsSixteenBits(t *testing.T) {
	src := image.NewNRGBA64(image.Rect(0, 0, 1, 1))
	src.SetNRGBA64(0, 0, color.NRGBA64{0x1234, 0, 0xffff, 0x8000})

	im, err := FromImage(src)
	require.NoError(t, err)
	assert.Equal(t, textures.FormatRGBA16, im.Format)
	assert.Equal(t, []uint16{0x1234, 0, 0xffff, 0x8000}, im.U16)
}

func TestDecodeImageRejectsNonImages(t *testing.T) {
	_, err := DecodeImage([]byte("definitely not pixels"))
	assert.Error(t, err)
}

func TestPNGRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "in.png")
	require.NoError(t, os.WriteFile(p, encodePNG(t, testImage()), 0644))

	im, err := LoadImage(p)
	require.NoError(t, err)
	assert.Equal(t, testImage().Pix, im.U8)

	out := filepath.Join(dir, "out.png")
	require.NoError(t, SavePNG(out, im, 0))
	back, err := LoadImage(out)
	require.NoError(t, err)
	assert.Equal(t, im.U8, back.U8)
}

func TestToImageExpandsChannels(t *testing.T) {
	gray, err := textures.WrapU8(1, 1, 1, 1, []uint8{77})
	require.NoError(t, err)
	img := ToImage(gray, 0).(*image.NRGBA)
	assert.Equal(t, []uint8{77, 77, 77, 255}, img.Pix)

	rgb, err := textures.WrapU16(1, 1, 2, 3, []uint16{1, 2, 3, 0xffff, 0, 0x0100})
	require.NoError(t, err)
	img64 := ToImage(rgb, 1).(*image.NRGBA64)
	assert.Equal(t, color.NRGBA64{0xffff, 0, 0x0100, 0xffff}, img64.NRGBA64At(0, 0))
}

func TestDumpLevel(t *testing.T) {
	im, err := textures.NewSolidImage(4, 2, 3, textures.FormatRGBA8, core.ColorGreen)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "dump")
	paths, err := DumpLevel(dir, "arr", 2, im)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(dir, "arr_L2_layer1.png"), paths[1])

	back, err := LoadImage(paths[2])
	require.NoError(t, err)
	assert.Equal(t, 4, back.Width)
	assert.Equal(t, core.ColorGreen.Vec4(), back.Texel(3, 1, 0))
}

func TestLoadGLTFImages(t *testing.T) {
	dir := t.TempDir()
	data := encodePNG(t, testImage())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ext.png"), data, 0644))

	doc := gltf.NewDocument()
	doc.Images = append(doc.Images,
		&gltf.Image{URI: "ext.png"},
		&gltf.Image{URI: "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)},
	)
	p := filepath.Join(dir, "scene.gltf")
	require.NoError(t, gltf.Save(doc, p))

	n, err := GLTFImageCount(p)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := LoadGLTFImages(p)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, testImage().Pix, all[0].U8)
	assert.Equal(t, testImage().Pix, all[1].U8)

	_, err = LoadGLTFImage(p, 2)
	assert.Error(t, err)
}

func TestLoadSource(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "in.png")
	require.NoError(t, os.WriteFile(p, encodePNG(t, testImage()), 0644))
	m := &Manifest{Width: 8, Height: 6, Layers: 1, Format: "rgba16"}

	solid, err := LoadSource(m, SourceData{Solid: "#0000ff", X: 2, Y: 1}, textures.FormatRGBA16)
	require.NoError(t, err)
	assert.Equal(t, 6, solid.Width)
	assert.Equal(t, 5, solid.Height)
	assert.Equal(t, core.ColorBlue.Vec4(), solid.Texel(5, 4, 0))

	checker, err := LoadSource(m, SourceData{Checker: [2]string{"#ffffff", "#000000"}}, textures.FormatRGBA16)
	require.NoError(t, err)
	assert.Equal(t, 6, checker.Width)

	file, err := LoadSource(m, SourceData{Path: p}, textures.FormatRGBA16)
	require.NoError(t, err)
	assert.Equal(t, textures.FormatRGBA16, file.Format)
	assert.Equal(t, uint16(0xffff), file.U16[0])

	_, err = LoadSource(m, SourceData{Solid: "#ffffff", X: 8}, textures.FormatRGBA16)
	assert.Error(t, err)
}
