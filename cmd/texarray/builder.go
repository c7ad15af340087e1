package main

import (
	"log/slog"
	"path/filepath"

	"github.com/c2h5oh/datasize"
	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"

	texio "texture-array/io"
	"texture-array/textures"
)

// builder turns a manifest into an allocated and filled array texture.
type builder struct {
	path     string
	manifest *texio.Manifest
	tex      *textures.ArrayTexture
	mem      *textures.MemoryBackend // nil unless headless
	dumpDir  string
	log      *slog.Logger
}

func newBuilder(path string, m *texio.Manifest, backend textures.Backend, mem *textures.MemoryBackend, workers int, logger *slog.Logger) *builder {
	tex := textures.NewArrayTexture(backend,
		textures.WithMipmap(m.MipmapConfig()),
		textures.WithWorkers(workers),
		textures.WithSink(textures.SlogSink{Logger: logger}),
	)
	return &builder{path: path, manifest: m, tex: tex, mem: mem, log: logger}
}

func (b *builder) pixelFormat() (textures.PixelFormat, error) {
	f, err := b.manifest.InternalFormat()
	if err != nil {
		return textures.PixelFormat{}, err
	}
	pf, _ := f.PixelFormat()
	return pf, nil
}

// build allocates the texture and uploads every source. A failing source does
// not stop the others.
func (b *builder) build() error {
	start := hrtime.Now()
	m := b.manifest
	f, err := m.InternalFormat()
	if err != nil {
		return err
	}
	b.tex.SetMipmap(m.MipmapConfig())
	if err := b.tex.Allocate(m.Width, m.Height, m.Layers, f); err != nil {
		return err
	}

	failed := 0
	for i := range m.Sources {
		if err := b.upload(i); err != nil {
			b.log.Error("source failed", "index", i, "err", err)
			failed++
		}
	}

	b.log.Info("array texture built",
		"name", m.Name,
		"levels", b.tex.Levels(),
		"size", datasize.ByteSize(b.tex.Descriptor().SizeBytes()).HumanReadable(),
		"elapsed", hrtime.Since(start))

	if err := b.dump(); err != nil {
		return err
	}
	if failed > 0 {
		return errors.Newf("%d of %d sources failed", failed, len(m.Sources))
	}
	return nil
}

func (b *builder) upload(i int) error {
	s := b.manifest.Sources[i]
	pf, err := b.pixelFormat()
	if err != nil {
		return err
	}
	im, err := texio.LoadSource(b.manifest, s, pf)
	if err != nil {
		return errors.Wrapf(err, "source %d", i)
	}

	start := hrtime.Now()
	if err := b.tex.Upload(im, s.X, s.Y, s.Layer); err != nil {
		return errors.Wrapf(err, "source %d", i)
	}
	b.log.Debug("source uploaded",
		"index", i,
		"layer", s.Layer,
		"size", datasize.ByteSize(im.SizeBytes()).HumanReadable(),
		"elapsed", hrtime.Since(start))
	return nil
}

// reload applies a set of changed files: a changed manifest rebuilds
// everything, otherwise only the sources reading a changed file are uploaded.
// A failing source does not stop the others.
func (b *builder) reload(changed map[string]bool) error {
	if changed[b.path] {
		m, err := texio.LoadManifest(b.path)
		if err != nil {
			return err
		}
		b.manifest = m
		return b.build()
	}

	n, failed := 0, 0
	for i, s := range b.manifest.Sources {
		if s.Path == "" || !changed[filepath.Clean(s.Path)] {
			continue
		}
		n++
		if err := b.upload(i); err != nil {
			b.log.Error("source failed", "index", i, "err", err)
			failed++
		}
	}
	if n == 0 {
		return nil
	}
	b.log.Info("sources reloaded", "count", n-failed)

	if err := b.dump(); err != nil {
		return err
	}
	if failed > 0 {
		return errors.Newf("%d of %d reloaded sources failed", failed, n)
	}
	return nil
}

// dump writes every level of a headless build to dumpDir.
func (b *builder) dump() error {
	if b.dumpDir == "" || b.mem == nil || !b.tex.Allocated() {
		return nil
	}
	name := b.manifest.Name
	if name == "" {
		name = "texture"
	}
	for level := 0; level < b.tex.Levels(); level++ {
		im, err := b.mem.ReadLevel(b.tex.Handle(), level)
		if err != nil {
			return err
		}
		if _, err := texio.DumpLevel(b.dumpDir, name, level, im); err != nil {
			return err
		}
	}
	b.log.Info("levels dumped", "dir", b.dumpDir, "levels", b.tex.Levels())
	return nil
}
