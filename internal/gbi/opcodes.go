// Package gbi walks the binary display-list command stream of the source
// console's graphics microcode, recovering vertices, triangles and
// texture references.
package gbi

// Opcodes acted on by the walk.
const (
	OpVtx         = 0x01
	OpTri1        = 0x05
	OpTri2        = 0x06
	OpDL          = 0xDE
	OpEndDL       = 0xDF
	OpSetTImg     = 0xFD
	OpSetTile     = 0xF5
	OpSetTileSize = 0xF2
	OpLoadTLUT    = 0xF0
)

// Opcodes with no bearing on extraction, skipped without diagnostics.
var skipOpcodes = map[uint8]bool{
	0xE7: true, // pipe sync
	0xE6: true, // load sync
	0xE5: true, // tile sync
	0xFC: true, // set combine
	0xD9: true, // geometry mode
	0xFA: true, // prim color
	0xFB: true, // env color
	0xD7: true, // texture scale
	0xE2: true, // othermode L
	0xE3: true, // othermode H
	0xF3: true, // load block
	0xF4: true, // load tile
	0xED: true,
	0xF6: true,
	0xF7: true,
	0xF8: true,
	0xF9: true,
	0xFF: true,
	0xFE: true,
}

// maxDepth caps sub-list recursion so cyclic or malformed streams always
// terminate.
const maxDepth = 16

// cacheSize is the microcode's transient vertex cache capacity.
const cacheSize = 64

// NoTexture marks triangles emitted before any texture was bound.
const NoTexture = 0xFF
