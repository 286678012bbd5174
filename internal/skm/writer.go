// Package skm serializes a skeleton, its per-limb meshes, animations and
// textures into the SKM container. Layout mirrors PRM for geometry and
// texture blocks; limb descriptors replace the chunk table and an
// animation section sits between meshes and textures.
package skm

import (
	"encoding/binary"
	"fmt"
	"os"

	"oot-psx-extract/internal/geom"
	"oot-psx-extract/internal/psxbin"
	"oot-psx-extract/internal/skeleton"
	"oot-psx-extract/internal/texture"
)

// Container layout:
//
//	header (20 B):  magic "SKM\x01", u8 limb count, u8 anim count,
//	                u16 texture count, u32 mesh/anim/texture starts
//	limb table:     12 B per limb (joint, child/sibling, counts)
//	mesh data:      geometry blocks (psxbin layout), sequential per limb
//	anim table:     8 B per animation (frame count, loop flag, offset)
//	anim data:      concatenated fixed-size frames
//	texture table:  12 B per texture
//	texture data:   pixel then CLUT bytes, each texture padded to 4 B
const (
	headerSize   = 20
	limbDescSize = 12
	animDescSize = 8
)

var magic = [4]byte{'S', 'K', 'M', 1}

// Encode lays out the full container and returns its bytes. Limbs and
// meshes run parallel; frameSize is the fixed animation frame stride.
func Encode(limbs []skeleton.Limb, meshes []*geom.Mesh, anims []skeleton.Animation,
	textures []*texture.Info, frameSize int) []byte {

	meshStart := psxbin.Align4(headerSize + len(limbs)*limbDescSize)
	meshOffsets := make([]int, len(meshes))
	meshDataSize := 0
	for i, m := range meshes {
		meshOffsets[i] = meshDataSize
		meshDataSize += psxbin.MeshDataSize(m)
	}

	animStart := psxbin.Align4(meshStart + meshDataSize)
	animOffsets := make([]int, len(anims))
	animDataSize := 0
	for i, a := range anims {
		animOffsets[i] = animDataSize
		animDataSize += len(a.Data) * frameSize
	}

	texStart := psxbin.Align4(animStart + len(anims)*animDescSize + animDataSize)
	texOffsets := make([]int, len(textures))
	texDataSize := 0
	for i, t := range textures {
		texOffsets[i] = texDataSize
		texDataSize = psxbin.Align4(texDataSize + len(t.Pixels) + len(t.CLUT))
	}

	buf := make([]byte, texStart+len(textures)*psxbin.TexDescSize+texDataSize)

	copy(buf, magic[:])
	buf[4] = uint8(len(limbs))
	buf[5] = uint8(len(anims))
	binary.LittleEndian.PutUint16(buf[6:], uint16(len(textures)))
	binary.LittleEndian.PutUint32(buf[8:], uint32(meshStart))
	binary.LittleEndian.PutUint32(buf[12:], uint32(animStart))
	binary.LittleEndian.PutUint32(buf[16:], uint32(texStart))

	for i, limb := range limbs {
		off := headerSize + i*limbDescSize
		binary.LittleEndian.PutUint16(buf[off:], uint16(limb.Joint[0]))
		binary.LittleEndian.PutUint16(buf[off+2:], uint16(limb.Joint[1]))
		binary.LittleEndian.PutUint16(buf[off+4:], uint16(limb.Joint[2]))
		buf[off+6] = limb.Child
		buf[off+7] = limb.Sibling
		if i < len(meshes) {
			binary.LittleEndian.PutUint16(buf[off+8:], uint16(len(meshes[i].Verts)))
			binary.LittleEndian.PutUint16(buf[off+10:], uint16(len(meshes[i].Tris)))
		}
	}

	for i, m := range meshes {
		psxbin.PutMeshData(buf[meshStart+meshOffsets[i]:], m)
	}

	for i, a := range anims {
		off := animStart + i*animDescSize
		binary.LittleEndian.PutUint16(buf[off:], uint16(a.Frames))
		if a.Loop {
			buf[off+2] = 1
		}
		binary.LittleEndian.PutUint32(buf[off+4:], uint32(animOffsets[i]))
	}
	animDataBase := animStart + len(anims)*animDescSize
	for i, a := range anims {
		off := animDataBase + animOffsets[i]
		for _, frame := range a.Data {
			copy(buf[off:], frame)
			off += frameSize
		}
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
func Write(path string, limbs []skeleton.Limb, meshes []*geom.Mesh,
	anims []skeleton.Animation, textures []*texture.Info, frameSize int) error {

	buf := Encode(limbs, meshes, anims, textures, frameSize)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("skm: write %s: %w", path, err)
	}

	totalV, totalT, totalF := 0, 0, 0
	for _, m := range meshes {
		totalV += len(m.Verts)
		totalT += len(m.Tris)
	}
	for _, a := range anims {
		totalF += len(a.Data)
	}
	fmt.Printf("  SKM: %d bytes (%.1f KB)\n", len(buf), float64(len(buf))/1024)
	fmt.Printf("    %d limbs, %d verts, %d tris\n", len(limbs), totalV, totalT)
	fmt.Printf("    %d anims, %d frames, %d textures\n", len(anims), totalF, len(textures))
	return nil
}
