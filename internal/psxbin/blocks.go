// Package psxbin holds the block encodings shared by both output
// containers: per-container geometry data and texture descriptors.
// Everything is little-endian regardless of the big-endian source.
package psxbin

import (
	"encoding/binary"

	"oot-psx-extract/internal/geom"
	"oot-psx-extract/internal/texture"
)

// TexDescSize is the fixed stride of a texture descriptor row.
const TexDescSize = 12

// Align4 rounds n up to a 4-byte boundary.
func Align4(n int) int {
	return (n + 3) &^ 3
}

// MeshDataSize returns the encoded size of one container's geometry:
// positions nv*8, colors nv*4, UVs nv*2 padded to 4, triangles nt*4.
func MeshDataSize(m *geom.Mesh) int {
	nv := len(m.Verts)
	return nv*8 + nv*4 + Align4(nv*2) + len(m.Tris)*4
}

// PutMeshData packs one container's geometry into buf. Positions are
// four s16 each, the fourth always zero, reserved for hardware
// alignment.
func PutMeshData(buf []byte, m *geom.Mesh) {
	nv := len(m.Verts)
	for j, v := range m.Verts {
		o := j * 8
		binary.LittleEndian.PutUint16(buf[o:], uint16(v[0]))
		binary.LittleEndian.PutUint16(buf[o+2:], uint16(v[1]))
		binary.LittleEndian.PutUint16(buf[o+4:], uint16(v[2]))
		binary.LittleEndian.PutUint16(buf[o+6:], 0)
	}
	colBase := nv * 8
	for j, c := range m.Colors {
		copy(buf[colBase+j*4:], c[:])
	}
	uvBase := colBase + nv*4
	for j, uv := range m.UVs {
		copy(buf[uvBase+j*2:], uv[:])
	}
	triBase := uvBase + Align4(nv*2)
	for j, t := range m.Tris {
		o := triBase + j*4
		buf[o] = uint8(t.A)
		buf[o+1] = uint8(t.B)
		buf[o+2] = uint8(t.C)
		buf[o+3] = t.Tex
	}
}

// PutTexDesc packs one texture descriptor row: width, height, bit-depth
// flag (0 = 4-bit, 1 = 8-bit), live color count (256 wraps to 0), pad,
// then the data offset within the texture blob area.
func PutTexDesc(buf []byte, t *texture.Info, offset int) {
	binary.LittleEndian.PutUint16(buf[0:], uint16(t.Width))
	binary.LittleEndian.PutUint16(buf[2:], uint16(t.Height))
	if t.FourBit {
		buf[4] = 0
	} else {
		buf[4] = 1
	}
	buf[5] = uint8(t.NumColors)
	binary.LittleEndian.PutUint16(buf[6:], 0)
	binary.LittleEndian.PutUint32(buf[8:], uint32(offset))
}
