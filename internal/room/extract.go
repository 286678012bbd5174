// Package room drives the display-list interpreter over a room file's
// shape entries, producing bounded chunks of geometry.
package room

import (
	"encoding/binary"
	"fmt"
	"os"

	"oot-psx-extract/internal/gbi"
	"oot-psx-extract/internal/geom"
	"oot-psx-extract/internal/segment"
)

// Segment ids a room extraction registers.
const (
	Segment      = 3 // the room file itself
	SceneSegment = 2 // the owning scene, shared palette source
)

// Room header commands.
const (
	cmdRoomShape = 0x0A
	cmdEnd       = 0x14
)

// Extractor accumulates the chunks of one room.
type Extractor struct {
	segs   *segment.Table
	data   []byte
	interp *gbi.Interpreter
	Chunks []*geom.Chunk
}

// New builds an extractor over a segment table that has the room data
// registered under Segment (and optionally the scene under SceneSegment).
func New(segs *segment.Table) *Extractor {
	return &Extractor{
		segs:   segs,
		data:   segs.Buffer(Segment),
		interp: gbi.New(segs, Segment),
	}
}

// Interp exposes the interpreter for stats and texture registry access.
func (e *Extractor) Interp() *gbi.Interpreter {
	return e.interp
}

// Extract walks the room's 8-byte header commands, parsing each shape
// entry list, and returns the finished chunks.
func (e *Extractor) Extract() []*geom.Chunk {
	for off := 0; off+8 <= len(e.data); off += 8 {
		switch e.data[off] {
		case cmdEnd:
			return e.Chunks
		case cmdRoomShape:
			e.parseShape(binary.BigEndian.Uint32(e.data[off+4:]))
		}
	}
	return e.Chunks
}

func (e *Extractor) parseShape(ptr uint32) {
	off, ok := e.segs.Resolve(ptr, Segment)
	if !ok || off+8 > len(e.data) {
		return
	}
	shapeType := e.data[off]
	numEntries := int(e.data[off+1])
	entriesPtr := binary.BigEndian.Uint32(e.data[off+4:])
	eoff, ok := e.segs.Resolve(entriesPtr, Segment)
	if !ok {
		return
	}

	switch shapeType {
	case 2:
		// Culled shape: 16-byte entries carrying an authored bounding
		// sphere plus opaque and translucent list pointers.
		for i := 0; i < numEntries; i++ {
			eo := eoff + i*16
			if eo+16 > len(e.data) {
				break
			}
			cx := int16(binary.BigEndian.Uint16(e.data[eo:]))
			cy := int16(binary.BigEndian.Uint16(e.data[eo+2:]))
			cz := int16(binary.BigEndian.Uint16(e.data[eo+4:]))
			radius := int16(binary.BigEndian.Uint16(e.data[eo+6:]))
			opa := binary.BigEndian.Uint32(e.data[eo+8:])
			xlu := binary.BigEndian.Uint32(e.data[eo+12:])

			c := &geom.Chunk{Cx: cx, Cy: cy, Cz: cz, Radius: radius}
			e.walkEntry(&c.Mesh, opa, xlu)
			e.closeChunk(c, true)
		}
	case 0:
		// Plain shape: 8-byte entries, sphere computed from geometry.
		for i := 0; i < numEntries; i++ {
			eo := eoff + i*8
			if eo+8 > len(e.data) {
				break
			}
			opa := binary.BigEndian.Uint32(e.data[eo:])
			xlu := binary.BigEndian.Uint32(e.data[eo+4:])

			c := &geom.Chunk{}
			e.walkEntry(&c.Mesh, opa, xlu)
			e.closeChunk(c, false)
		}
	default:
		fmt.Fprintf(os.Stderr, "  [WARN] unsupported room shape type %d\n", shapeType)
	}
}

func (e *Extractor) walkEntry(m *geom.Mesh, opa, xlu uint32) {
	e.interp.Begin(m)
	if opa != 0 {
		e.interp.Walk(opa)
	}
	if xlu != 0 {
		e.interp.Walk(xlu)
	}
}

// closeChunk discards empty chunks, keeps in-budget ones (computing the
// sphere unless an authored one was read from the room data) and splits
// oversized ones into freshly bounded sub-chunks.
func (e *Extractor) closeChunk(c *geom.Chunk, authoredBounds bool) {
	if c.Empty() {
		return
	}
	if len(c.Verts) <= geom.MaxVerts {
		if !authoredBounds {
			c.ComputeBounds()
		}
		e.Chunks = append(e.Chunks, c)
		return
	}
	e.Chunks = append(e.Chunks, geom.Split(&c.Mesh)...)
}
