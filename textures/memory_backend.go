package textures

import (
	"encoding/binary"
	"hash/fnv"
	"sync"

	"github.com/cockroachdb/errors"
)

// MemoryBackend keeps texture levels in host memory. It stands in for the GPU in
// tests and headless tools and supports readback, which a GL context makes
// awkward.
type MemoryBackend struct {
	mu       sync.Mutex
	next     Handle
	bound    Handle
	textures map[Handle]*memTexture
	writes   int
}

type memTexture struct {
	desc     Descriptor
	levels   []*Image
	sampling Sampling
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{textures: make(map[Handle]*memTexture)}
}

func (m *MemoryBackend) Create(desc Descriptor, levels int) (Handle, error) {
	pf, ok := desc.Format.PixelFormat()
	if !ok {
		return 0, errors.Newf("memory backend: unsupported format %s", desc.Format)
	}
	if levels < 1 {
		return 0, errors.Newf("memory backend: invalid level count %d", levels)
	}
	tex := &memTexture{desc: desc}
	for i := 0; i < levels; i++ {
		w, h := LevelSize(desc.Width, desc.Height, i)
		im, err := NewImage(w, h, desc.Layers, pf)
		if err != nil {
			return 0, errors.Wrapf(err, "memory backend: level %d", i)
		}
		tex.levels = append(tex.levels, im)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.textures[m.next] = tex
	return m.next, nil
}

func (m *MemoryBackend) Destroy(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.textures, h)
	if m.bound == h {
		m.bound = 0
	}
}

func (m *MemoryBackend) Bind(h Handle) {
	m.mu.Lock()
	m.bound = h
	m.mu.Unlock()
}

func (m *MemoryBackend) Unbind() {
	m.mu.Lock()
	m.bound = 0
	m.mu.Unlock()
}

func (m *MemoryBackend) SetSampling(h Handle, s Sampling) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tex, ok := m.textures[h]; ok {
		tex.sampling = s
	}
}

func (m *MemoryBackend) WriteLevel(h Handle, level int, r Region, img *Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tex, ok := m.textures[h]
	if !ok {
		return errors.Newf("memory backend: unknown texture %d", h)
	}
	if m.bound != h {
		return errors.Newf("memory backend: texture %d is not bound", h)
	}
	if level < 0 || level >= len(tex.levels) {
		return errors.Newf("memory backend: level %d out of range [0,%d)", level, len(tex.levels))
	}
	if r.Width != img.Width || r.Height != img.Height || r.Depth != img.Depth {
		return errors.Newf("memory backend: region %dx%dx%d does not match image %dx%dx%d",
			r.Width, r.Height, r.Depth, img.Width, img.Height, img.Depth)
	}
	if err := tex.levels[level].Blit(img, r.X, r.Y, r.Layer); err != nil {
		return errors.Wrapf(err, "memory backend: level %d", level)
	}
	m.writes++
	return nil
}

// GenerateMipmap rebuilds every level from level 0 with plain bilinear
// filtering, like glGenerateMipmap.
func (m *MemoryBackend) GenerateMipmap(h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tex, ok := m.textures[h]
	if !ok {
		return errors.Newf("memory backend: unknown texture %d", h)
	}
	chain := MipBuilder{Workers: 1}.BuildChain(tex.levels[0], len(tex.levels), 0)
	for i := 1; i < len(chain); i++ {
		tex.levels[i] = chain[i]
	}
	return nil
}

// ReadLevel returns a copy of one level (all layers).
func (m *MemoryBackend) ReadLevel(h Handle, level int) (*Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tex, ok := m.textures[h]
	if !ok {
		return nil, errors.Newf("memory backend: unknown texture %d", h)
	}
	if level < 0 || level >= len(tex.levels) {
		return nil, errors.Newf("memory backend: level %d out of range [0,%d)", level, len(tex.levels))
	}
	return tex.levels[level].Clone(), nil
}

// Levels is the number of levels of a texture, or 0 if h is unknown.
func (m *MemoryBackend) Levels(h Handle) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tex, ok := m.textures[h]; ok {
		return len(tex.levels)
	}
	return 0
}

func (m *MemoryBackend) Sampling(h Handle) (Sampling, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tex, ok := m.textures[h]
	if !ok {
		return Sampling{}, false
	}
	return tex.sampling, true
}

// Checksum hashes the content of every level of a texture.
func (m *MemoryBackend) Checksum(h Handle) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash := fnv.New64a()
	tex, ok := m.textures[h]
	if !ok {
		return 0
	}
	for _, lvl := range tex.levels {
		_ = binary.Write(hash, binary.LittleEndian, lvl.Data())
	}
	return hash.Sum64()
}

// Live is the number of textures not yet destroyed.
func (m *MemoryBackend) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.textures)
}

// Writes counts successful WriteLevel calls.
func (m *MemoryBackend) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
