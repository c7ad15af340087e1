package io

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"texture-array/core"
	"texture-array/textures"
)

// Manifest describes an array texture and where each layer comes from. It is
// stored as JSON, TOML or YAML, chosen by file extension.
type Manifest struct {
	Version string       `json:"version" toml:"version" yaml:"version"`
	Name    string       `json:"name" toml:"name" yaml:"name"`
	Width   int          `json:"width" toml:"width" yaml:"width"`
	Height  int          `json:"height" toml:"height" yaml:"height"`
	Layers  int          `json:"layers" toml:"layers" yaml:"layers"`
	Format  string       `json:"format" toml:"format" yaml:"format"` // "rgba8", "rgb16", "rgba32f", ...
	Mipmap  MipmapData   `json:"mipmap" toml:"mipmap" yaml:"mipmap"`
	Sources []SourceData `json:"sources" toml:"sources" yaml:"sources"`
}

// MipmapData stores the mipmap settings; a missing threshold means the default.
type MipmapData struct {
	Enabled        bool     `json:"enabled" toml:"enabled" yaml:"enabled"`
	AlphaThreshold *float32 `json:"alpha_threshold,omitempty" toml:"alpha_threshold,omitempty" yaml:"alpha_threshold,omitempty"`
}

// SourceData is one upload: an image file, an image inside a glTF file, or a
// generated solid, checker or cutout pattern, placed at (X, Y) of Layer.
type SourceData struct {
	Path      string    `json:"path,omitempty" toml:"path,omitempty" yaml:"path,omitempty"`
	GLTFImage int       `json:"gltf_image,omitempty" toml:"gltf_image,omitempty" yaml:"gltf_image,omitempty"`
	Solid     string    `json:"solid,omitempty" toml:"solid,omitempty" yaml:"solid,omitempty"`     // "#rrggbbaa"
	Checker   [2]string `json:"checker,omitempty" toml:"checker,omitempty" yaml:"checker,omitempty"` // two colors
	Cutout    [2]string `json:"cutout,omitempty" toml:"cutout,omitempty" yaml:"cutout,omitempty"`    // disc, background
	Layer     int       `json:"layer" toml:"layer" yaml:"layer"`
	X         int       `json:"x,omitempty" toml:"x,omitempty" yaml:"x,omitempty"`
	Y         int       `json:"y,omitempty" toml:"y,omitempty" yaml:"y,omitempty"`
}

// SourceKind tells how a source produces its pixels.
type SourceKind int

const (
	SourceFile SourceKind = iota
	SourceGLTF
	SourceSolid
	SourceChecker
	SourceCutout
)

func (s SourceData) Kind() SourceKind {
	switch {
	case s.Solid != "":
		return SourceSolid
	case s.Checker[0] != "" || s.Checker[1] != "":
		return SourceChecker
	case s.Cutout[0] != "" || s.Cutout[1] != "":
		return SourceCutout
	case isGLTF(s.Path):
		return SourceGLTF
	}
	return SourceFile
}

func isGLTF(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".gltf" || ext == ".glb"
}

// InternalFormat parses the Format field.
func (m *Manifest) InternalFormat() (textures.InternalFormat, error) {
	return textures.ParseInternalFormat(m.Format)
}

// MipmapConfig converts the mipmap section.
func (m *Manifest) MipmapConfig() textures.MipmapConfig {
	cfg := textures.DefaultMipmapConfig().WithEnabled(m.Mipmap.Enabled)
	if m.Mipmap.AlphaThreshold != nil {
		cfg = cfg.WithAlphaThreshold(*m.Mipmap.AlphaThreshold)
	}
	return cfg
}

// Validate checks sizes, format, threshold and source placement.
func (m *Manifest) Validate() error {
	if m.Width < 1 || m.Height < 1 || m.Layers < 1 {
		return errors.Newf("manifest %q: invalid extent %dx%dx%d", m.Name, m.Width, m.Height, m.Layers)
	}
	if _, err := m.InternalFormat(); err != nil {
		return errors.Wrapf(err, "manifest %q", m.Name)
	}
	if t := m.Mipmap.AlphaThreshold; t != nil && (*t < 0 || *t > 1) {
		return errors.Newf("manifest %q: alpha_threshold %v outside [0,1]", m.Name, *t)
	}
	for i, s := range m.Sources {
		if s.Layer < 0 || s.Layer >= m.Layers {
			return errors.Newf("manifest %q: source %d: layer %d outside [0,%d)", m.Name, i, s.Layer, m.Layers)
		}
		if s.X < 0 || s.Y < 0 {
			return errors.Newf("manifest %q: source %d: negative offset", m.Name, i)
		}
		switch s.Kind() {
		case SourceFile, SourceGLTF:
			if s.Path == "" {
				return errors.Newf("manifest %q: source %d: no path or pattern", m.Name, i)
			}
		case SourceSolid:
			if _, ok := core.ParseHexColor(s.Solid); !ok {
				return errors.Newf("manifest %q: source %d: bad color %q", m.Name, i, s.Solid)
			}
		case SourceChecker, SourceCutout:
			for _, c := range append(s.Checker[:], s.Cutout[:]...) {
				if c == "" {
					continue
				}
				if _, ok := core.ParseHexColor(c); !ok {
					return errors.Newf("manifest %q: source %d: bad pattern color %q", m.Name, i, c)
				}
			}
		}
	}
	return nil
}

// DecodeManifest parses data in the format named by ext (".json", ".toml",
// ".yaml" or ".yml").
func DecodeManifest(data []byte, ext string) (*Manifest, error) {
	m := &Manifest{}
	var err error
	switch strings.ToLower(ext) {
	case ".json":
		err = json.Unmarshal(data, m)
	case ".toml":
		err = toml.Unmarshal(data, m)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, m)
	default:
		return nil, errors.Newf("unsupported manifest format %q", ext)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest")
	}
	return m, nil
}

// LoadManifest reads and validates a manifest. Source paths are expanded
// ("~/...") and made relative to the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to expand %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read manifest")
	}
	m, err := DecodeManifest(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	for i := range m.Sources {
		p := m.Sources[i].Path
		if p == "" {
			continue
		}
		if p, err = homedir.Expand(p); err != nil {
			return nil, errors.Wrapf(err, "source %d", i)
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		m.Sources[i].Path = p
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := m.checkGLTFSources(); err != nil {
		return nil, err
	}
	return m, nil
}

// checkGLTFSources verifies that every gltf_image index exists in its document.
func (m *Manifest) checkGLTFSources() error {
	counts := make(map[string]int)
	for i, s := range m.Sources {
		if s.Kind() != SourceGLTF {
			continue
		}
		n, ok := counts[s.Path]
		if !ok {
			var err error
			if n, err = GLTFImageCount(s.Path); err != nil {
				return errors.Wrapf(err, "manifest %q: source %d", m.Name, i)
			}
			counts[s.Path] = n
		}
		if s.GLTFImage < 0 || s.GLTFImage >= n {
			return errors.Newf("manifest %q: source %d: gltf_image %d outside [0,%d)", m.Name, i, s.GLTFImage, n)
		}
	}
	return nil
}

// SaveManifest writes m in the format named by path's extension.
func SaveManifest(path string, m *Manifest) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(m, "", "  ")
	case ".toml":
		data, err = toml.Marshal(m)
	case ".yaml", ".yml":
		data, err = yaml.Marshal(m)
	default:
		return errors.Newf("unsupported manifest format %q", filepath.Ext(path))
	}
	if err != nil {
		return errors.Wrap(err, "failed to marshal manifest")
	}
	return os.WriteFile(path, data, 0644)
}

// NewDefaultManifest creates a 256x256x4 RGBA8 manifest with mipmaps on, a
// checkerboard in layer 0 and a cutout disc in layer 1.
func NewDefaultManifest(name string) *Manifest {
	return &Manifest{
		Version: "1.0",
		Name:    name,
		Width:   256,
		Height:  256,
		Layers:  4,
		Format:  "rgba8",
		Mipmap:  MipmapData{Enabled: true},
		Sources: []SourceData{
			{Checker: [2]string{"#ffffffff", "#202020ff"}, Layer: 0},
			{Cutout: [2]string{"#ffcc33", "#000000"}, Layer: 1},
		},
	}
}
