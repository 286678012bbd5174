package gbi

import (
	"encoding/binary"
	"testing"

	"oot-psx-extract/internal/geom"
	"oot-psx-extract/internal/segment"
	"oot-psx-extract/internal/texture"
)

const testSegment = 3

// putCmd writes one 8-byte command at off and returns the next offset.
func putCmd(buf []byte, off int, w0, w1 uint32) int {
	binary.BigEndian.PutUint32(buf[off:], w0)
	binary.BigEndian.PutUint32(buf[off+4:], w1)
	return off + 8
}

// putVert writes one 16-byte vertex record at off.
func putVert(buf []byte, off int, x, y, z, s, t int16, r, g, b, a uint8) {
	binary.BigEndian.PutUint16(buf[off:], uint16(x))
	binary.BigEndian.PutUint16(buf[off+2:], uint16(y))
	binary.BigEndian.PutUint16(buf[off+4:], uint16(z))
	binary.BigEndian.PutUint16(buf[off+8:], uint16(s))
	binary.BigEndian.PutUint16(buf[off+10:], uint16(t))
	buf[off+12] = r
	buf[off+13] = g
	buf[off+14] = b
	buf[off+15] = a
}

// vtxCmd encodes a vertex load of count records into cache slots
// [v0, v0+count).
func vtxCmd(count, v0 int) uint32 {
	return uint32(OpVtx)<<24 | uint32(count)<<12 | uint32(v0+count)<<1
}

// triWord packs three cache slots, doubled as the stream stores them.
func triWord(op uint8, a, b, c int) uint32 {
	return uint32(op)<<24 | uint32(a*2)<<16 | uint32(b*2)<<8 | uint32(c*2)
}

func newTestInterp(buf []byte) *Interpreter {
	segs := segment.NewTable()
	segs.Register(testSegment, buf)
	return New(segs, testSegment)
}

func TestWalkVertsAndTris(t *testing.T) {
	buf := make([]byte, 0x200)
	// Quad at offset 0.
	putVert(buf, 0x00, 0, 0, 0, 0, 0, 255, 0, 0, 255)
	putVert(buf, 0x10, 10, 0, 0, 32, 0, 0, 255, 0, 255)
	putVert(buf, 0x20, 0, 10, 0, 0, 32, 0, 0, 255, 255)
	putVert(buf, 0x30, 10, 10, 0, 32, 32, 255, 255, 255, 255)

	// Sub list at 0x180: two triangles in one command.
	off := putCmd(buf, 0x180, triWord(OpTri2, 1, 2, 3), triWord(0, 0, 2, 3))
	putCmd(buf, off, uint32(OpEndDL)<<24, 0)

	// Main list at 0x100: load quad, one triangle, call sub list.
	off = putCmd(buf, 0x100, vtxCmd(4, 0), 0x03000000)
	off = putCmd(buf, off, triWord(OpTri1, 0, 1, 2), 0)
	off = putCmd(buf, off, uint32(OpDL)<<24, 0x03000180)
	putCmd(buf, off, uint32(OpEndDL)<<24, 0)

	ip := newTestInterp(buf)
	m := &geom.Mesh{}
	ip.Begin(m)
	ip.Walk(0x03000100)

	if len(m.Verts) != 4 {
		t.Fatalf("got %d verts, want 4", len(m.Verts))
	}
	if m.Verts[1] != [3]int16{10, 0, 0} {
		t.Errorf("vert 1: got %v", m.Verts[1])
	}
	if m.Colors[0] != [4]uint8{255, 0, 0, 255} {
		t.Errorf("color 0: got %v", m.Colors[0])
	}
	// s=32 is 1 texel in the 10.5 vertex fixed-point.
	if m.UVs[1] != [2]uint8{1, 0} {
		t.Errorf("uv 1: got %v", m.UVs[1])
	}

	want := []geom.Tri{
		{A: 0, B: 1, C: 2, Tex: NoTexture},
		{A: 1, B: 2, C: 3, Tex: NoTexture},
		{A: 0, B: 2, C: 3, Tex: NoTexture},
	}
	if len(m.Tris) != len(want) {
		t.Fatalf("got %d tris, want %d", len(m.Tris), len(want))
	}
	for i, w := range want {
		if m.Tris[i] != w {
			t.Errorf("tri %d: got %+v, want %+v", i, m.Tris[i], w)
		}
	}

	st := ip.Stats
	if st.VtxCmds != 1 || st.Tri1Cmds != 1 || st.Tri2Cmds != 1 || st.DLCalls != 1 {
		t.Errorf("stats: %+v", st)
	}
	if len(st.Unknown) != 0 {
		t.Errorf("unexpected unknown opcodes: %v", st.Unknown)
	}
}

func TestWalkDropsUnresolvedSlots(t *testing.T) {
	buf := make([]byte, 0x100)
	putVert(buf, 0x00, 0, 0, 0, 0, 0, 0, 0, 0, 255)

	off := putCmd(buf, 0x40, vtxCmd(1, 0), 0x03000000)
	// Slots 1 and 2 were never loaded.
	off = putCmd(buf, off, triWord(OpTri1, 0, 1, 2), 0)
	putCmd(buf, off, uint32(OpEndDL)<<24, 0)

	ip := newTestInterp(buf)
	m := &geom.Mesh{}
	ip.Begin(m)
	ip.Walk(0x03000040)

	if len(m.Tris) != 0 {
		t.Errorf("got %d tris, want 0 (unresolved slots)", len(m.Tris))
	}
	if len(m.Verts) != 1 {
		t.Errorf("got %d verts, want 1", len(m.Verts))
	}
}

func TestBeginResetsCache(t *testing.T) {
	buf := make([]byte, 0x100)
	putVert(buf, 0x00, 1, 2, 3, 0, 0, 0, 0, 0, 255)
	putVert(buf, 0x10, 4, 5, 6, 0, 0, 0, 0, 0, 255)
	putVert(buf, 0x20, 7, 8, 9, 0, 0, 0, 0, 0, 255)

	off := putCmd(buf, 0x40, vtxCmd(3, 0), 0x03000000)
	putCmd(buf, off, uint32(OpEndDL)<<24, 0)

	// Second list reuses the stale slots without reloading.
	off = putCmd(buf, 0x60, triWord(OpTri1, 0, 1, 2), 0)
	putCmd(buf, off, uint32(OpEndDL)<<24, 0)

	ip := newTestInterp(buf)
	first := &geom.Mesh{}
	ip.Begin(first)
	ip.Walk(0x03000040)

	second := &geom.Mesh{}
	ip.Begin(second)
	ip.Walk(0x03000060)

	if len(second.Tris) != 0 {
		t.Errorf("stale cache slots survived Begin: %d tris", len(second.Tris))
	}
}

func TestTextureRegistration(t *testing.T) {
	buf := make([]byte, 0x200)
	putVert(buf, 0x00, 0, 0, 0, 0, 0, 0, 0, 0, 255)
	putVert(buf, 0x10, 1, 0, 0, 0, 0, 0, 0, 0, 255)
	putVert(buf, 0x20, 0, 1, 0, 0, 0, 0, 0, 0, 255)

	setTImg := uint32(OpSetTImg)<<24 | uint32(texture.FmtCI)<<21 | uint32(texture.Siz8b)<<19
	setTile := uint32(OpSetTile)<<24 | uint32(texture.FmtCI)<<21 | uint32(texture.Siz8b)<<19
	// 8x8 tile: lower-right corner (7,7) in 10.2 fixed point.
	tileSize := uint32(7<<2)<<12 | uint32(7<<2)

	off := putCmd(buf, 0x100, setTImg, 0x03000040)
	off = putCmd(buf, off, setTile, 0)
	off = putCmd(buf, off, uint32(OpSetTileSize)<<24, tileSize)
	off = putCmd(buf, off, vtxCmd(3, 0), 0x03000000)
	off = putCmd(buf, off, triWord(OpTri1, 0, 1, 2), 0)
	// Re-binding the same tile must not register a second texture.
	off = putCmd(buf, off, uint32(OpSetTileSize)<<24, tileSize)
	putCmd(buf, off, uint32(OpEndDL)<<24, 0)

	ip := newTestInterp(buf)
	m := &geom.Mesh{}
	ip.Begin(m)
	ip.Walk(0x03000100)

	if ip.Textures.Len() != 1 {
		t.Fatalf("got %d textures, want 1", ip.Textures.Len())
	}
	tex := ip.Textures.Textures[0]
	if tex.Width != 8 || tex.Height != 8 || tex.Fmt != texture.FmtCI || tex.Siz != texture.Siz8b {
		t.Errorf("texture: %+v", tex)
	}
	if len(m.Tris) != 1 || m.Tris[0].Tex != 0 {
		t.Errorf("triangle not bound to texture 0: %+v", m.Tris)
	}
}

func TestTexturePlaceholderForUnloadedSegment(t *testing.T) {
	buf := make([]byte, 0x100)
	setTImg := uint32(OpSetTImg)<<24 | uint32(texture.FmtRGBA)<<21 | uint32(texture.Siz16b)<<19
	tileSize := uint32(31<<2)<<12 | uint32(31<<2)

	// Image address tags segment 8, which this run never registers.
	off := putCmd(buf, 0x40, setTImg, 0x08000000)
	off = putCmd(buf, off, uint32(OpSetTileSize)<<24, tileSize)
	putCmd(buf, off, uint32(OpEndDL)<<24, 0)

	ip := newTestInterp(buf)
	ip.Begin(&geom.Mesh{})
	ip.Walk(0x03000040)

	if ip.Textures.Len() != 1 {
		t.Fatalf("got %d textures, want 1", ip.Textures.Len())
	}
	tex := ip.Textures.Textures[0]
	if tex.Width != 2 || tex.Height != 2 || tex.Fmt != texture.FmtCI || tex.Siz != texture.Siz8b {
		t.Errorf("placeholder: %+v", tex)
	}
}

func TestWalkBranch(t *testing.T) {
	buf := make([]byte, 0x100)
	putVert(buf, 0x00, 0, 0, 0, 0, 0, 0, 0, 0, 255)
	putVert(buf, 0x10, 1, 0, 0, 0, 0, 0, 0, 0, 255)
	putVert(buf, 0x20, 0, 1, 0, 0, 0, 0, 0, 0, 255)

	// Branch (not call): byte 2 of w0 nonzero jumps without returning,
	// so the triangle after the branch never runs.
	off := putCmd(buf, 0x40, vtxCmd(3, 0), 0x03000000)
	off = putCmd(buf, off, uint32(OpDL)<<24|1<<16, 0x03000070)
	putCmd(buf, off, triWord(OpTri1, 0, 1, 2), 0)

	putCmd(buf, 0x70, uint32(OpEndDL)<<24, 0)

	ip := newTestInterp(buf)
	m := &geom.Mesh{}
	ip.Begin(m)
	ip.Walk(0x03000040)

	if len(m.Tris) != 0 {
		t.Errorf("branch fell through: %d tris", len(m.Tris))
	}
	if ip.Stats.DLCalls != 0 {
		t.Errorf("branch counted as call")
	}
}
