package opengl

import (
	"github.com/cockroachdb/errors"
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"texture-array/textures"
)

// glFormat is the GL enum triple for one internal format.
type glFormat struct {
	internal int32
	format   uint32
	xtype    uint32
}

var glFormats = map[textures.InternalFormat]glFormat{
	textures.R8:      {gl.R8, gl.RED, gl.UNSIGNED_BYTE},
	textures.RG8:     {gl.RG8, gl.RG, gl.UNSIGNED_BYTE},
	textures.RGB8:    {gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE},
	textures.RGBA8:   {gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE},
	textures.R16:     {gl.R16, gl.RED, gl.UNSIGNED_SHORT},
	textures.RG16:    {gl.RG16, gl.RG, gl.UNSIGNED_SHORT},
	textures.RGB16:   {gl.RGB16, gl.RGB, gl.UNSIGNED_SHORT},
	textures.RGBA16:  {gl.RGBA16, gl.RGBA, gl.UNSIGNED_SHORT},
	textures.R32F:    {gl.R32F, gl.RED, gl.FLOAT},
	textures.RG32F:   {gl.RG32F, gl.RG, gl.FLOAT},
	textures.RGB32F:  {gl.RGB32F, gl.RGB, gl.FLOAT},
	textures.RGBA32F: {gl.RGBA32F, gl.RGBA, gl.FLOAT},
}

type glTexture struct {
	id     uint32
	format glFormat
	levels int
}

// ArrayBackend implements textures.Backend with GL_TEXTURE_2D_ARRAY objects.
// Every method must be called on the thread whose GL context is current.
type ArrayBackend struct {
	textures map[textures.Handle]*glTexture
}

// NewArrayBackend loads the GL function pointers for the current context.
func NewArrayBackend() (*ArrayBackend, error) {
	if err := gl.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize OpenGL")
	}
	textures.Logger().Info("OpenGL initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)))
	return &ArrayBackend{textures: make(map[textures.Handle]*glTexture)}, nil
}

// Create allocates storage for every level with TexImage3D; glTexStorage3D is
// not part of the 4.1 core profile.
func (b *ArrayBackend) Create(desc textures.Descriptor, levels int) (textures.Handle, error) {
	f, ok := glFormats[desc.Format]
	if !ok {
		return 0, errors.Newf("no GL format for %s", desc.Format)
	}

	var maxSize, maxLayers int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxSize)
	gl.GetIntegerv(gl.MAX_ARRAY_TEXTURE_LAYERS, &maxLayers)
	textures.Logger().Debug("array texture limits", "max_size", maxSize, "max_layers", maxLayers)
	if int32(desc.Width) > maxSize || int32(desc.Height) > maxSize || int32(desc.Layers) > maxLayers {
		return 0, errors.Newf("%dx%dx%d exceeds device limit %dx%dx%d",
			desc.Width, desc.Height, desc.Layers, maxSize, maxSize, maxLayers)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, id)
	for level := 0; level < levels; level++ {
		w, h := textures.LevelSize(desc.Width, desc.Height, level)
		gl.TexImage3D(gl.TEXTURE_2D_ARRAY, int32(level), f.internal,
			int32(w), int32(h), int32(desc.Layers), 0, f.format, f.xtype, nil)
	}
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_BASE_LEVEL, 0)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAX_LEVEL, int32(levels-1))
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)

	if err := glError("TexImage3D"); err != nil {
		gl.DeleteTextures(1, &id)
		return 0, err
	}

	h := textures.Handle(id)
	b.textures[h] = &glTexture{id: id, format: f, levels: levels}
	return h, nil
}

func (b *ArrayBackend) Destroy(h textures.Handle) {
	tex, ok := b.textures[h]
	if !ok {
		return
	}
	gl.DeleteTextures(1, &tex.id)
	delete(b.textures, h)
}

func (b *ArrayBackend) Bind(h textures.Handle) {
	if tex, ok := b.textures[h]; ok {
		gl.BindTexture(gl.TEXTURE_2D_ARRAY, tex.id)
	}
}

func (b *ArrayBackend) Unbind() {
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)
}

// SetSampling applies s to the bound texture.
func (b *ArrayBackend) SetSampling(h textures.Handle, s textures.Sampling) {
	if _, ok := b.textures[h]; !ok {
		return
	}
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, glFilter(s.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, glFilter(s.MagFilter))
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_S, glWrap(s.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_T, glWrap(s.WrapT))
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_R, glWrap(s.WrapR))
}

// WriteLevel uploads img into the bound texture with TexSubImage3D.
func (b *ArrayBackend) WriteLevel(h textures.Handle, level int, r textures.Region, img *textures.Image) error {
	tex, ok := b.textures[h]
	if !ok {
		return errors.Newf("unknown texture %d", h)
	}
	if level >= tex.levels {
		return errors.Newf("level %d out of range [0,%d)", level, tex.levels)
	}

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, unpackAlignment(img.Width*img.Format.BytesPerPixel()))
	gl.TexSubImage3D(gl.TEXTURE_2D_ARRAY, int32(level),
		int32(r.X), int32(r.Y), int32(r.Layer),
		int32(r.Width), int32(r.Height), int32(r.Depth),
		tex.format.format, tex.format.xtype, gl.Ptr(img.Data()))
	return glError("TexSubImage3D")
}

func (b *ArrayBackend) GenerateMipmap(h textures.Handle) error {
	if _, ok := b.textures[h]; !ok {
		return errors.Newf("unknown texture %d", h)
	}
	gl.GenerateMipmap(gl.TEXTURE_2D_ARRAY)
	return glError("GenerateMipmap")
}

// unpackAlignment picks the largest row alignment GL can assume for rows of the
// given byte length.
func unpackAlignment(rowBytes int) int32 {
	switch {
	case rowBytes%8 == 0:
		return 8
	case rowBytes%4 == 0:
		return 4
	case rowBytes%2 == 0:
		return 2
	}
	return 1
}

func glFilter(f textures.Filter) int32 {
	switch f {
	case textures.FilterNearest:
		return gl.NEAREST
	case textures.FilterLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	}
	return gl.LINEAR
}

func glWrap(w textures.Wrap) int32 {
	switch w {
	case textures.WrapClampToEdge:
		return gl.CLAMP_TO_EDGE
	case textures.WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	}
	return gl.REPEAT
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return errors.Newf("%s: GL error 0x%04x", op, code)
	}
	return nil
}
