// Command texarray builds a 2D array texture from a manifest, optionally with
// alpha-aware mipmaps, on an OpenGL context or in memory.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/go-homedir"

	"texture-array/internal/opengl"
	texio "texture-array/io"
	"texture-array/textures"
)

type options struct {
	manifest string
	headless bool
	dump     string
	watch    bool
	workers  int
	verbose  bool
}

func main() {
	var opts options
	flag.StringVar(&opts.manifest, "manifest", "texarray.json", "manifest file (.json, .toml, .yaml)")
	flag.BoolVar(&opts.headless, "headless", false, "build in memory instead of on an OpenGL context")
	flag.StringVar(&opts.dump, "dump", "", "write every level and layer as PNG to this directory (headless only)")
	flag.BoolVar(&opts.watch, "watch", false, "re-upload sources when their files change")
	flag.IntVar(&opts.workers, "workers", 0, "mipmap workers (0 = GOMAXPROCS)")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	textures.SetLogger(logger)

	if err := run(opts, logger); err != nil {
		logger.Error("texarray failed", "err", err)
		os.Exit(1)
	}
}

func run(opts options, logger *slog.Logger) error {
	if opts.dump != "" && !opts.headless {
		return errors.New("-dump needs -headless: GL levels cannot be read back")
	}

	path, err := homedir.Expand(opts.manifest)
	if err != nil {
		return errors.Wrap(err, "manifest path")
	}
	if path, err = filepath.Abs(path); err != nil {
		return errors.Wrap(err, "manifest path")
	}
	m, err := texio.LoadManifest(path)
	if err != nil {
		return err
	}
	logger.Info("manifest loaded", "name", m.Name, "path", path, "sources", len(m.Sources))

	var (
		backend textures.Backend
		mem     *textures.MemoryBackend
		poll    func()
	)
	if opts.headless {
		mem = textures.NewMemoryBackend()
		backend = mem
	} else {
		window, err := opengl.NewContextWindow(opengl.DefaultWindowConfig())
		if err != nil {
			return err
		}
		defer window.Destroy()
		if backend, err = opengl.NewArrayBackend(); err != nil {
			return err
		}
		poll = window.PollEvents
	}

	b := newBuilder(path, m, backend, mem, opts.workers, logger)
	b.dumpDir = opts.dump
	defer b.tex.Release()

	buildErr := b.build()
	if !opts.watch {
		return buildErr
	}
	if buildErr != nil {
		logger.Warn("initial build incomplete", "err", buildErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return b.watch(ctx, poll)
}
