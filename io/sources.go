package io

import (
	"github.com/cockroachdb/errors"

	"texture-array/core"
	"texture-array/textures"
)

// LoadSource produces the pixels of one manifest source in format pf. File and
// glTF images are converted; patterns are generated to fill the layer from the
// source's offset.
func LoadSource(m *Manifest, s SourceData, pf textures.PixelFormat) (*textures.Image, error) {
	w, h := m.Width-s.X, m.Height-s.Y
	if w < 1 || h < 1 {
		return nil, errors.Newf("source offset (%d,%d) outside %dx%d", s.X, s.Y, m.Width, m.Height)
	}

	switch s.Kind() {
	case SourceSolid:
		return textures.NewSolidImage(w, h, 1, pf, parseColor(s.Solid))
	case SourceChecker:
		return textures.NewCheckerImage(min(w, h), pf, parseColor(s.Checker[0]), parseColor(s.Checker[1]))
	case SourceCutout:
		return textures.NewCutoutImage(min(w, h), pf, parseColor(s.Cutout[0]), parseColor(s.Cutout[1]))
	}

	var im *textures.Image
	var err error
	if s.Kind() == SourceGLTF {
		im, err = LoadGLTFImage(s.Path, s.GLTFImage)
	} else {
		im, err = LoadImage(s.Path)
	}
	if err != nil {
		return nil, err
	}
	if im.Format == pf {
		return im, nil
	}
	return im.Convert(pf)
}

// parseColor parses a validated hex color; empty means black.
func parseColor(s string) core.Color {
	c, ok := core.ParseHexColor(s)
	if !ok {
		return core.ColorBlack
	}
	return c
}
