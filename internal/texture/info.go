// Package texture tracks the textures referenced during display-list
// interpretation and converts them from the console's native texel
// formats to the indexed-color layout the target palette hardware reads.
package texture

// Source texel formats, as encoded in the graphics command stream.
const (
	FmtRGBA = 0
	FmtCI   = 2
	FmtIA   = 3
	FmtI    = 4
)

// Source bit sizes.
const (
	Siz4b  = 0
	Siz8b  = 1
	Siz16b = 2
)

// Info describes one distinct referenced texture: where its pixels and
// palette live in segment space, its source format, and (after
// conversion) the packed output pixels and CLUT.
type Info struct {
	ImgAddr  uint32
	Fmt      uint8
	Siz      uint8
	Width    int
	Height   int
	TlutAddr uint32

	// Filled by the converter.
	Pixels    []byte
	CLUT      []byte
	FourBit   bool
	NumColors int
}

// Key deduplicates textures by image address and tile dimensions.
type Key struct {
	Addr   uint32
	Width  int
	Height int
}

// Registry holds every distinct texture seen during interpretation, in
// first-seen order, with dedup by (address, width, height).
type Registry struct {
	Textures []*Info
	byKey    map[Key]int
}

// NewRegistry returns an empty texture registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[Key]int)}
}

// Lookup returns the id previously registered for key.
func (r *Registry) Lookup(key Key) (int, bool) {
	id, ok := r.byKey[key]
	return id, ok
}

// Register appends a texture under key and returns its id.
func (r *Registry) Register(key Key, info *Info) int {
	id := len(r.Textures)
	r.Textures = append(r.Textures, info)
	r.byKey[key] = id
	return id
}

// Len returns the number of registered textures.
func (r *Registry) Len() int {
	return len(r.Textures)
}
