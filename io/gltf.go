package io

import (
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"texture-array/textures"
)

// GLTFImageCount opens a .gltf or .glb file and returns how many images it
// declares.
func GLTFImageCount(path string) (int, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "gltf open %q", path)
	}
	return len(doc.Images), nil
}

// LoadGLTFImage decodes image index of a glTF document. The pixels may live in
// a buffer view (GLB), a data URI or an external file next to the document.
func LoadGLTFImage(path string, index int) (*textures.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "gltf open %q", path)
	}
	return loadDocImage(doc, filepath.Dir(path), index)
}

// LoadGLTFImages decodes every image of a glTF document in declaration order.
func LoadGLTFImages(path string) ([]*textures.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "gltf open %q", path)
	}
	out := make([]*textures.Image, 0, len(doc.Images))
	for i := range doc.Images {
		im, err := loadDocImage(doc, filepath.Dir(path), i)
		if err != nil {
			return nil, err
		}
		out = append(out, im)
	}
	return out, nil
}

func loadDocImage(doc *gltf.Document, dir string, index int) (*textures.Image, error) {
	if index < 0 || index >= len(doc.Images) {
		return nil, errors.Newf("gltf: image %d out of range [0,%d)", index, len(doc.Images))
	}
	img := doc.Images[index]

	switch {
	case img.BufferView != nil:
		raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err != nil {
			return nil, errors.Wrapf(err, "gltf: image %d bufferview", index)
		}
		im, err := DecodeImage(raw)
		return im, errors.Wrapf(err, "gltf: image %d", index)
	case img.IsEmbeddedResource():
		raw, err := img.MarshalData()
		if err != nil {
			return nil, errors.Wrapf(err, "gltf: image %d data uri", index)
		}
		im, err := DecodeImage(raw)
		return im, errors.Wrapf(err, "gltf: image %d", index)
	case img.URI != "":
		return LoadImage(filepath.Join(dir, img.URI))
	}
	return nil, errors.Newf("gltf: image %d has no data", index)
}
