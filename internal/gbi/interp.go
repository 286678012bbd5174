package gbi

import (
	"encoding/binary"

	"oot-psx-extract/internal/geom"
	"oot-psx-extract/internal/segment"
	"oot-psx-extract/internal/texture"
)

// Stats counts what one interpreter saw across all of its walks.
type Stats struct {
	VtxCmds  int
	Tri1Cmds int
	Tri2Cmds int
	DLCalls  int
	Unknown  map[uint8]int
}

// Interpreter walks display lists out of one primary segment, appending
// vertices and triangles into the current mesh and registering every
// distinct texture it encounters. All mutable walk state lives here; one
// instance serves one extraction run.
type Interpreter struct {
	segs    *segment.Table
	primary int
	data    []byte

	cur   *geom.Mesh
	cache [cacheSize]int // cache slot -> index into cur, -1 when unset

	// Texture pipeline registers.
	imgAddr  uint32
	imgFmt   uint8
	imgSiz   uint8
	tlutAddr uint32
	tile0Fmt uint8
	tile0Siz uint8
	curTex   uint8

	Textures *texture.Registry
	Stats    Stats
}

// New returns an interpreter resolving display-list and vertex addresses
// against the given primary segment.
func New(segs *segment.Table, primary int) *Interpreter {
	ip := &Interpreter{
		segs:     segs,
		primary:  primary,
		data:     segs.Buffer(primary),
		curTex:   NoTexture,
		Textures: texture.NewRegistry(),
	}
	ip.Stats.Unknown = make(map[uint8]int)
	return ip
}

// Begin makes m the current mesh and resets the vertex cache. Texture
// pipeline registers persist across containers, matching the hardware.
func (ip *Interpreter) Begin(m *geom.Mesh) {
	ip.cur = m
	for i := range ip.cache {
		ip.cache[i] = -1
	}
}

// Walk interprets the display list at addr into the current mesh.
func (ip *Interpreter) Walk(addr uint32) {
	ip.walk(addr, 0)
}

func (ip *Interpreter) walk(addr uint32, depth int) {
	off, ok := ip.segs.Resolve(addr, ip.primary)
	if !ok || depth > maxDepth {
		return
	}
	for off+8 <= len(ip.data) {
		w0 := binary.BigEndian.Uint32(ip.data[off:])
		w1 := binary.BigEndian.Uint32(ip.data[off+4:])
		off += 8
		op := uint8(w0 >> 24)

		switch op {
		case OpVtx:
			n := int(w0>>12) & 0xFF
			v0 := int(w0>>1)&0x7F - n
			ip.loadVerts(w1, n, v0)
			ip.Stats.VtxCmds++

		case OpTri1:
			ip.emitTri(triSlots(w0))
			ip.Stats.Tri1Cmds++

		case OpTri2:
			ip.emitTri(triSlots(w0))
			ip.emitTri(triSlots(w1))
			ip.Stats.Tri2Cmds++

		case OpSetTImg:
			ip.imgAddr = w1
			ip.imgFmt = uint8(w0>>21) & 0x07
			ip.imgSiz = uint8(w0>>19) & 0x03

		case OpLoadTLUT:
			// The palette loads from whatever image address is pending.
			ip.tlutAddr = ip.imgAddr

		case OpSetTile:
			if tile := w1 >> 24 & 0x07; tile == 0 {
				ip.tile0Fmt = uint8(w0>>21) & 0x07
				ip.tile0Siz = uint8(w0>>19) & 0x03
			}

		case OpSetTileSize:
			ip.onSetTileSize(w0, w1)

		case OpDL:
			if w0>>16&0xFF == 0 {
				// Call: recurse and resume here.
				ip.walk(w1, depth+1)
				ip.Stats.DLCalls++
			} else if newOff, ok := ip.segs.Resolve(w1, ip.primary); ok {
				// Branch: jump within this walk, no return.
				off = newOff
			}

		case OpEndDL:
			return

		default:
			if !skipOpcodes[op] {
				ip.Stats.Unknown[op]++
			}
		}
	}
}

// loadVerts reads count 16-byte vertex records, appends them to the
// current mesh and binds cache slots [v0, v0+count) to the new indices.
// UVs are signed fixed-point, reduced to 0-255 texel coordinates.
func (ip *Interpreter) loadVerts(addr uint32, count, v0 int) {
	off, ok := ip.segs.Resolve(addr, ip.primary)
	if !ok || ip.cur == nil {
		return
	}
	for i := 0; i < count; i++ {
		vo := off + i*16
		if vo+16 > len(ip.data) {
			break
		}
		x := int16(binary.BigEndian.Uint16(ip.data[vo:]))
		y := int16(binary.BigEndian.Uint16(ip.data[vo+2:]))
		z := int16(binary.BigEndian.Uint16(ip.data[vo+4:]))
		s := int16(binary.BigEndian.Uint16(ip.data[vo+8:]))
		t := int16(binary.BigEndian.Uint16(ip.data[vo+10:]))
		u := uint8(s >> 5)
		v := uint8(t >> 5)
		r := ip.data[vo+12]
		g := ip.data[vo+13]
		b := ip.data[vo+14]
		a := ip.data[vo+15]

		idx := ip.cur.AddVert([3]int16{x, y, z}, [4]uint8{r, g, b, a}, [2]uint8{u, v})
		if slot := v0 + i; slot >= 0 && slot < cacheSize {
			ip.cache[slot] = idx
		}
	}
}

// emitTri appends a triangle when all three cache slots resolve; a stale
// or never-loaded slot drops the triangle silently.
func (ip *Interpreter) emitTri(s0, s1, s2 int) {
	if ip.cur == nil {
		return
	}
	g0 := ip.slot(s0)
	g1 := ip.slot(s1)
	g2 := ip.slot(s2)
	if g0 < 0 || g1 < 0 || g2 < 0 {
		return
	}
	ip.cur.Tris = append(ip.cur.Tris, geom.Tri{A: g0, B: g1, C: g2, Tex: ip.curTex})
}

// triSlots unpacks the three cache-slot references of one triangle word.
// The stream stores each slot doubled.
func triSlots(w uint32) (int, int, int) {
	return int(w>>16&0xFF) / 2, int(w>>8&0xFF) / 2, int(w&0xFF) / 2
}

func (ip *Interpreter) slot(s int) int {
	if s < 0 || s >= cacheSize {
		return -1
	}
	return ip.cache[s]
}

// onSetTileSize computes the tile dimensions from the 10.2 fixed-point
// rectangle corners and registers (or rebinds) the texture keyed by
// (image address, width, height).
func (ip *Interpreter) onSetTileSize(w0, w1 uint32) {
	if tile := w1 >> 24 & 0x07; tile != 0 {
		return
	}
	uls := int(w0>>12) & 0xFFF
	ult := int(w0) & 0xFFF
	lrs := int(w1>>12) & 0xFFF
	lrt := int(w1) & 0xFFF
	width := lrs>>2 - uls>>2 + 1
	height := lrt>>2 - ult>>2 + 1
	if width <= 0 || height <= 0 {
		return
	}

	key := texture.Key{Addr: ip.imgAddr, Width: width, Height: height}
	if id, ok := ip.Textures.Lookup(key); ok {
		ip.curTex = uint8(id)
		return
	}

	var info *texture.Info
	if !ip.segs.Registered(segment.ID(ip.imgAddr)) {
		// Image lives in a segment this run never loads (e.g. one filled
		// in at game runtime); register a placeholder descriptor.
		info = &texture.Info{ImgAddr: ip.imgAddr, Fmt: texture.FmtCI, Siz: texture.Siz8b, Width: 2, Height: 2}
	} else {
		info = &texture.Info{
			ImgAddr:  ip.imgAddr,
			Fmt:      ip.tile0Fmt,
			Siz:      ip.tile0Siz,
			Width:    width,
			Height:   height,
			TlutAddr: ip.tlutAddr,
		}
	}
	ip.curTex = uint8(ip.Textures.Register(key, info))
}
