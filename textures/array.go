package textures

import (
	"github.com/c2h5oh/datasize"
	"github.com/cockroachdb/errors"
)

// ArrayTexture is a 2D array texture: Layers images of Width x Height sharing
// one GPU resource. It is allocated once and then updated region by region.
//
// When mipmaps are enabled, uploads of four-channel data build the lower levels
// with MipBuilder so transparent texels do not darken opaque edges; other formats
// fall back to the backend's own mipmap generation.
//
// An ArrayTexture is not safe for concurrent use.
type ArrayTexture struct {
	backend Backend
	sink    Sink
	builder MipBuilder
	mipmap  MipmapConfig

	desc      Descriptor
	format    PixelFormat
	handle    Handle
	levels    int
	allocated bool
}

// Option configures an ArrayTexture.
type Option func(t *ArrayTexture)

// WithMipmap sets the mipmap configuration used by the next Allocate.
func WithMipmap(cfg MipmapConfig) Option {
	return func(t *ArrayTexture) {
		t.mipmap = cfg
	}
}

// WithSink routes diagnostics to sink instead of the package logger.
func WithSink(sink Sink) Option {
	return func(t *ArrayTexture) {
		t.sink = sink
	}
}

// WithWorkers bounds the goroutines used to build each mip level.
func WithWorkers(n int) Option {
	return func(t *ArrayTexture) {
		t.builder.Workers = n
	}
}

func NewArrayTexture(backend Backend, opts ...Option) *ArrayTexture {
	t := &ArrayTexture{
		backend: backend,
		sink:    SlogSink{},
		mipmap:  DefaultMipmapConfig(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetMipmap replaces the mipmap configuration. It applies to later Allocate and
// Upload calls; content already on the GPU is not regenerated.
func (t *ArrayTexture) SetMipmap(cfg MipmapConfig) {
	t.mipmap = cfg
}

// EnableMipmapping is shorthand for SetMipmap with the given flag and threshold.
func (t *ArrayTexture) EnableMipmapping(enabled bool, alphaThreshold float32) {
	t.SetMipmap(t.mipmap.WithEnabled(enabled).WithAlphaThreshold(alphaThreshold))
}

func (t *ArrayTexture) Mipmap() MipmapConfig { return t.mipmap }

// Descriptor returns the allocated descriptor; zero when unallocated.
func (t *ArrayTexture) Descriptor() Descriptor { return t.desc }

func (t *ArrayTexture) Allocated() bool { return t.allocated }

// Levels is the number of levels of the current resource.
func (t *ArrayTexture) Levels() int { return t.levels }

// Handle is the backend handle of the current resource.
func (t *ArrayTexture) Handle() Handle { return t.handle }

// Allocate releases the current resource, if any, and creates a new one of
// width x height x layers in the given internal format. Invalid requests are
// reported and leave the current resource untouched.
func (t *ArrayTexture) Allocate(width, height, layers int, format InternalFormat) error {
	pf, ok := format.PixelFormat()
	if !ok {
		return t.fail(UnsupportedElementType, "allocate: unsupported internal format %s", format)
	}
	if width < 1 || height < 1 || layers < 1 {
		return t.fail(OutOfBounds, "allocate: invalid extent %dx%dx%d", width, height, layers)
	}

	t.Release()

	desc := Descriptor{
		Width:  width,
		Height: height,
		Layers: layers,
		Format: format,
		Mipmap: t.mipmap,
	}
	levels := desc.Levels()
	h, err := t.backend.Create(desc, levels)
	if err != nil {
		return t.failWith(BackendFailure, err, "allocate: create %dx%dx%d %s", width, height, layers, format)
	}

	t.backend.Bind(h)
	t.backend.SetSampling(h, SamplingFor(desc))
	t.backend.Unbind()

	t.desc = desc
	t.format = pf
	t.handle = h
	t.levels = levels
	t.allocated = true

	Logger().Info("allocated array texture",
		"width", width, "height", height, "layers", layers,
		"format", format.String(), "levels", levels,
		"size", datasize.ByteSize(desc.SizeBytes()).HumanReadable())
	return nil
}

// Release destroys the current resource. It is a no-op when unallocated.
func (t *ArrayTexture) Release() {
	if !t.allocated {
		return
	}
	t.backend.Destroy(t.handle)
	Logger().Info("released array texture", "handle", t.handle)
	t.desc = Descriptor{}
	t.format = PixelFormat{}
	t.handle = 0
	t.levels = 0
	t.allocated = false
}

// Upload writes src into level 0 with its origin at (xOffset, yOffset,
// layerOffset); src.Depth consecutive layers are written. With mipmaps enabled
// the lower levels of the same area are refreshed as well.
//
// The request is validated before any backend call. A mismatched format, a
// region outside the texture, or an unallocated texture is reported to the sink
// and returned, and nothing is written.
func (t *ArrayTexture) Upload(src *Image, xOffset, yOffset, layerOffset int) error {
	if !t.allocated {
		return t.fail(InvalidState, "upload: texture is not allocated")
	}
	if src == nil {
		return t.fail(InvalidState, "upload: nil image")
	}
	if err := src.Format.Validate(); err != nil {
		return t.failWith(UnsupportedElementType, err, "upload: source format %s", src.Format)
	}
	if src.Format != t.format {
		return t.fail(FormatMismatch, "upload: cannot upload %s data to %s texture", src.Format, t.format)
	}
	if err := src.checkLen(src.bufferLen()); err != nil {
		return t.failWith(OutOfBounds, err, "upload: malformed source image")
	}
	region := Region{
		X: xOffset, Y: yOffset, Layer: layerOffset,
		Width: src.Width, Height: src.Height, Depth: src.Depth,
	}
	if !region.Within(t.desc.Width, t.desc.Height, t.desc.Layers) {
		return t.fail(OutOfBounds, "upload: cannot upload %dx%dx%d at (%d,%d,%d) to %dx%dx%d texture",
			src.Width, src.Height, src.Depth, xOffset, yOffset, layerOffset,
			t.desc.Width, t.desc.Height, t.desc.Layers)
	}

	t.backend.Bind(t.handle)
	defer t.backend.Unbind()

	if err := t.backend.WriteLevel(t.handle, 0, region, src); err != nil {
		return t.failWith(BackendFailure, err, "upload: write level 0")
	}

	if !t.mipmap.Enabled || t.levels <= 1 {
		return nil
	}

	if !t.format.HasAlpha() {
		if err := t.backend.GenerateMipmap(t.handle); err != nil {
			return t.failWith(BackendFailure, err, "upload: generate mipmaps")
		}
		return nil
	}

	levels := min(LevelCount(src.Width, src.Height), t.levels)
	chain := t.builder.BuildChain(src, levels, t.mipmap.AlphaThreshold)
	for i := 1; i < chain.Levels(); i++ {
		lr := region.AtLevel(i)
		lvl := chain[i]
		lr.Width, lr.Height = lvl.Width, lvl.Height
		if err := t.backend.WriteLevel(t.handle, i, lr, lvl); err != nil {
			return t.failWith(BackendFailure, err, "upload: write level %d", i)
		}
		Logger().Debug("uploaded mip level", "level", i, "width", lvl.Width, "height", lvl.Height)
	}
	return nil
}

func (t *ArrayTexture) fail(kind Kind, format string, args ...any) error {
	err := errors.Mark(errors.Newf(format, args...), kind.sentinel())
	t.report(kind, err)
	return err
}

func (t *ArrayTexture) failWith(kind Kind, cause error, format string, args ...any) error {
	err := errors.Mark(errors.Wrapf(cause, format, args...), kind.sentinel())
	t.report(kind, err)
	return err
}

func (t *ArrayTexture) report(kind Kind, err error) {
	if t.sink != nil {
		t.sink.Report(kind, err.Error())
	}
}
