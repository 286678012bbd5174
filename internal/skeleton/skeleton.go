// Package skeleton parses the flex-skeleton hierarchy out of a character
// object file and extracts each limb's far-LOD geometry.
package skeleton

import (
	"encoding/binary"
	"fmt"
	"os"

	"oot-psx-extract/internal/gbi"
	"oot-psx-extract/internal/geom"
	"oot-psx-extract/internal/segment"
)

// Segment ids a skeleton extraction registers.
const (
	ObjectSegment = 6 // character object file
	AnimSegment   = 7 // animation data file
)

// NoLimb marks an absent child or sibling link.
const NoLimb = 0xFF

// Limb is one node of the hierarchy: a joint offset relative to its
// parent, child/sibling links and the far-LOD display list it draws.
type Limb struct {
	Joint   [3]int16
	Child   uint8
	Sibling uint8
	FarDL   uint32
}

// Skeleton holds the parsed limbs and their extracted meshes, index
// aligned.
type Skeleton struct {
	Limbs  []Limb
	Meshes []*geom.Mesh

	segs   *segment.Table
	data   []byte
	interp *gbi.Interpreter
}

// New builds a skeleton parser over a segment table with the object file
// registered under ObjectSegment.
func New(segs *segment.Table) *Skeleton {
	return &Skeleton{
		segs:   segs,
		data:   segs.Buffer(ObjectSegment),
		interp: gbi.New(segs, ObjectSegment),
	}
}

// Interp exposes the interpreter for stats and texture registry access.
func (s *Skeleton) Interp() *gbi.Interpreter {
	return s.interp
}

// Parse reads the flex header at headerOff: a pointer to the limb table,
// the limb count and the display-list count. Each limb table slot points
// at a record holding the joint offset (3 s16), child and sibling bytes,
// and the far display list pointer at +12. Unresolvable limb pointers
// yield an inert limb so indices stay aligned with the table.
func (s *Skeleton) Parse(headerOff, wantLimbs int) error {
	if headerOff+9 > len(s.data) {
		return fmt.Errorf("skeleton: header offset %#x past end of object (%d bytes)", headerOff, len(s.data))
	}
	tablePtr := binary.BigEndian.Uint32(s.data[headerOff:])
	limbCount := int(s.data[headerOff+4])
	dlistCount := int(s.data[headerOff+8])

	tableOff, ok := s.segs.Resolve(tablePtr, ObjectSegment)
	if !ok {
		return fmt.Errorf("skeleton: cannot resolve limb table pointer %#010x", tablePtr)
	}

	fmt.Printf("  flex header @ %#x: limbCount=%d dListCount=%d table @ %#x\n",
		headerOff, limbCount, dlistCount, tableOff)
	if wantLimbs > 0 && limbCount != wantLimbs {
		fmt.Printf("  [WARN] expected %d limbs, got %d\n", wantLimbs, limbCount)
	}

	for i := 0; i < limbCount; i++ {
		po := tableOff + i*4
		if po+4 > len(s.data) {
			break
		}
		ptr := binary.BigEndian.Uint32(s.data[po:])
		off, ok := s.segs.Resolve(ptr, ObjectSegment)
		if !ok || off+16 > len(s.data) {
			s.Limbs = append(s.Limbs, Limb{Child: NoLimb, Sibling: NoLimb})
			continue
		}
		s.Limbs = append(s.Limbs, Limb{
			Joint: [3]int16{
				int16(binary.BigEndian.Uint16(s.data[off:])),
				int16(binary.BigEndian.Uint16(s.data[off+2:])),
				int16(binary.BigEndian.Uint16(s.data[off+4:])),
			},
			Child:   s.data[off+6],
			Sibling: s.data[off+7],
			// LOD limb: dLists[0] is near, dLists[1] far.
			FarDL: binary.BigEndian.Uint32(s.data[off+12:]),
		})
	}
	return nil
}

// ExtractMeshes walks each limb's far display list into its own mesh,
// resetting the vertex cache per limb. Limbs without a list get an empty
// mesh to keep indices aligned. Limb meshes are never split, so a limb
// past the 8-bit index ceiling would corrupt its triangle indices on
// export; that gets a warning here.
func (s *Skeleton) ExtractMeshes() {
	for i, limb := range s.Limbs {
		m := &geom.Mesh{}
		s.interp.Begin(m)
		if limb.FarDL != 0 {
			s.interp.Walk(limb.FarDL)
		}
		if len(m.Verts) > geom.MaxVerts {
			fmt.Fprintf(os.Stderr, "  [WARN] limb %d: %d verts exceeds the %d index ceiling\n",
				i, len(m.Verts), geom.MaxVerts)
		}
		s.Meshes = append(s.Meshes, m)
		fmt.Printf("  %2d  %3dv %3dt  joint=(%5d,%5d,%5d) ch=%3d sib=%3d\n",
			i, len(m.Verts), len(m.Tris), limb.Joint[0], limb.Joint[1], limb.Joint[2],
			limb.Child, limb.Sibling)
	}
}
