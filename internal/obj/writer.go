// Package obj writes the plain-text debug mesh dump. Not authoritative
// output; byte-exact reproducibility is not required here.
package obj

import (
	"bufio"
	"fmt"
	"os"

	"oot-psx-extract/internal/geom"
)

// Write dumps all chunks as one OBJ: vertex lines carry position plus
// normalized color, faces are 1-based across the whole file, one group
// per chunk.
func Write(path string, chunks []*geom.Chunk) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("obj: create %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	totalV, totalT := 0, 0
	for _, c := range chunks {
		totalV += len(c.Verts)
		totalT += len(c.Tris)
	}
	fmt.Fprintf(w, "# %d verts, %d tris, %d chunks\n\n", totalV, totalT, len(chunks))

	vertOffset := 0
	for ci, c := range chunks {
		fmt.Fprintf(w, "g chunk_%d\n", ci)
		for j, v := range c.Verts {
			col := c.Colors[j]
			fmt.Fprintf(w, "v %d %d %d %.4f %.4f %.4f\n",
				v[0], v[1], v[2],
				float64(col[0])/255, float64(col[1])/255, float64(col[2])/255)
		}
		for _, t := range c.Tris {
			fmt.Fprintf(w, "f %d %d %d\n", vertOffset+t.A+1, vertOffset+t.B+1, vertOffset+t.C+1)
		}
		vertOffset += len(c.Verts)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("obj: write %s: %w", path, err)
	}
	fmt.Printf("  OBJ: %s (%d verts, %d tris)\n", path, totalV, totalT)
	return nil
}
