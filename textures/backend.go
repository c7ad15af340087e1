package textures

// Handle identifies a texture resource owned by a Backend. Zero is never a
// valid handle.
type Handle uint32

// Backend is the graphics API an ArrayTexture drives. Implementations must be
// used from one goroutine, the one that owns the graphics context.
type Backend interface {
	// Create allocates a layered resource with the given number of levels.
	Create(desc Descriptor, levels int) (Handle, error)
	// Destroy releases the resource; unknown handles are ignored.
	Destroy(h Handle)

	Bind(h Handle)
	Unbind()

	SetSampling(h Handle, s Sampling)

	// WriteLevel copies img into region r of the given level. img's extent
	// equals r's.
	WriteLevel(h Handle, level int, r Region, img *Image) error

	// GenerateMipmap fills every level past 0 from level 0 using the
	// backend's own (not alpha-aware) filter.
	GenerateMipmap(h Handle) error
}
