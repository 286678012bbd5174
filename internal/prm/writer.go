// Package prm serializes room geometry and textures into the PRM v2
// container the target renderer loads verbatim. Every multi-byte field
// is little-endian; every section start is 4-byte aligned.
package prm

import (
	"encoding/binary"
	"fmt"
	"os"

	"oot-psx-extract/internal/geom"
	"oot-psx-extract/internal/psxbin"
	"oot-psx-extract/internal/texture"
)

// Container layout:
//
//	header (20 B): magic "PRM\x02", u16 chunk/vert/tri/texture counts,
//	               u32 data start, u32 texture section start
//	chunk table:   16 B per chunk (sphere center+radius, counts, offset)
//	chunk data:    geometry blocks (psxbin layout), sequential
//	texture table: 12 B per texture
//	texture data:  pixel bytes then CLUT bytes, contiguous per texture
const (
	headerSize    = 20
	chunkDescSize = 16
)

var magic = [4]byte{'P', 'R', 'M', 2}

// Encode lays out the full container and returns its bytes.
func Encode(chunks []*geom.Chunk, textures []*texture.Info) []byte {
	totalV, totalT := 0, 0
	chunkOffsets := make([]int, len(chunks))
	dataSize := 0
	for i, c := range chunks {
		chunkOffsets[i] = dataSize
		dataSize += psxbin.MeshDataSize(&c.Mesh)
		totalV += len(c.Verts)
		totalT += len(c.Tris)
	}

	dataStart := psxbin.Align4(headerSize + len(chunks)*chunkDescSize)
	texStart := psxbin.Align4(dataStart + dataSize)

	texOffsets := make([]int, len(textures))
	texDataSize := 0
	for i, t := range textures {
		texOffsets[i] = texDataSize
		texDataSize += len(t.Pixels) + len(t.CLUT)
	}
	texDataSize = psxbin.Align4(texDataSize)

	buf := make([]byte, texStart+len(textures)*psxbin.TexDescSize+texDataSize)

	copy(buf, magic[:])
	binary.LittleEndian.PutUint16(buf[4:], uint16(len(chunks)))
	binary.LittleEndian.PutUint16(buf[6:], uint16(totalV))
	binary.LittleEndian.PutUint16(buf[8:], uint16(totalT))
	binary.LittleEndian.PutUint16(buf[10:], uint16(len(textures)))
	binary.LittleEndian.PutUint32(buf[12:], uint32(dataStart))
	binary.LittleEndian.PutUint32(buf[16:], uint32(texStart))

	for i, c := range chunks {
		off := headerSize + i*chunkDescSize
		binary.LittleEndian.PutUint16(buf[off:], uint16(c.Cx))
		binary.LittleEndian.PutUint16(buf[off+2:], uint16(c.Cy))
		binary.LittleEndian.PutUint16(buf[off+4:], uint16(c.Cz))
		binary.LittleEndian.PutUint16(buf[off+6:], uint16(c.Radius))
		binary.LittleEndian.PutUint16(buf[off+8:], uint16(len(c.Verts)))
		binary.LittleEndian.PutUint16(buf[off+10:], uint16(len(c.Tris)))
		binary.LittleEndian.PutUint32(buf[off+12:], uint32(chunkOffsets[i]))
	}

	for i, c := range chunks {
		psxbin.PutMeshData(buf[dataStart+chunkOffsets[i]:], &c.Mesh)
	}

	for i, t := range textures {
		psxbin.PutTexDesc(buf[texStart+i*psxbin.TexDescSize:], t, texOffsets[i])
	}
	texDataBase := texStart + len(textures)*psxbin.TexDescSize
	for i, t := range textures {
		off := texDataBase + texOffsets[i]
		copy(buf[off:], t.Pixels)
		copy(buf[off+len(t.Pixels):], t.CLUT)
	}

	return buf
}

// Write encodes and writes the container to path, printing a summary.
func Write(path string, chunks []*geom.Chunk, textures []*texture.Info) error {
	buf := Encode(chunks, textures)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("prm: write %s: %w", path, err)
	}

	totalV, totalT := 0, 0
	maxV, maxT := 0, 0
	for _, c := range chunks {
		totalV += len(c.Verts)
		totalT += len(c.Tris)
		if len(c.Verts) > maxV {
			maxV = len(c.Verts)
		}
		if len(c.Tris) > maxT {
			maxT = len(c.Tris)
		}
	}
	fmt.Printf("  PRM v2: %d bytes (%.1f KB)\n", len(buf), float64(len(buf))/1024)
	fmt.Printf("    %d chunks, %d verts, %d tris, %d textures\n", len(chunks), totalV, totalT, len(textures))
	fmt.Printf("    max chunk: %d verts, %d tris\n", maxV, maxT)
	return nil
}
