// Package geom holds the extracted geometry containers and the splitter
// that keeps them under the 8-bit index ceiling of the output format.
package geom

import "math"

// MaxVerts is the vertex ceiling per container: triangle indices in the
// output format are a single byte.
const MaxVerts = 255

// Tri is one triangle: three local vertex indices plus the texture bound
// when it was emitted (0xFF = none).
type Tri struct {
	A, B, C int
	Tex     uint8
}

// Mesh accumulates vertices and triangles emitted by the display-list
// interpreter. Attribute slices run parallel to Verts.
type Mesh struct {
	Verts  [][3]int16
	Colors [][4]uint8
	UVs    [][2]uint8
	Tris   []Tri
}

// AddVert appends a vertex and returns its local index.
func (m *Mesh) AddVert(pos [3]int16, color [4]uint8, uv [2]uint8) int {
	m.Verts = append(m.Verts, pos)
	m.Colors = append(m.Colors, color)
	m.UVs = append(m.UVs, uv)
	return len(m.Verts) - 1
}

// Empty reports whether the mesh holds no vertices and no triangles.
func (m *Mesh) Empty() bool {
	return len(m.Verts) == 0 && len(m.Tris) == 0
}

// Chunk is a spatially bounded grouping of room geometry with a bounding
// sphere for culling.
type Chunk struct {
	Mesh
	Cx, Cy, Cz int16
	Radius     int16
}

// ComputeBounds fills in the bounding sphere: center is the floored
// midpoint of the axis-aligned extents, radius the distance to the
// farthest vertex plus one, capped at 32767.
func (c *Chunk) ComputeBounds() {
	if len(c.Verts) == 0 {
		return
	}
	var min, max [3]int
	for i := 0; i < 3; i++ {
		min[i] = int(c.Verts[0][i])
		max[i] = int(c.Verts[0][i])
	}
	for _, v := range c.Verts {
		for i := 0; i < 3; i++ {
			if int(v[i]) < min[i] {
				min[i] = int(v[i])
			}
			if int(v[i]) > max[i] {
				max[i] = int(v[i])
			}
		}
	}
	// Arithmetic shift floors on negative sums; plain division would
	// truncate toward zero and shift the center by one unit.
	cx := (min[0] + max[0]) >> 1
	cy := (min[1] + max[1]) >> 1
	cz := (min[2] + max[2]) >> 1

	maxR2 := 0
	for _, v := range c.Verts {
		dx := int(v[0]) - cx
		dy := int(v[1]) - cy
		dz := int(v[2]) - cz
		r2 := dx*dx + dy*dy + dz*dz
		if r2 > maxR2 {
			maxR2 = r2
		}
	}
	r := int(math.Sqrt(float64(maxR2))) + 1
	if r > 32767 {
		r = 32767
	}
	c.Cx, c.Cy, c.Cz = int16(cx), int16(cy), int16(cz)
	c.Radius = int16(r)
}
