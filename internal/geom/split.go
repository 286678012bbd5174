package geom

// Split partitions an oversized mesh into chunks that each satisfy the
// MaxVerts ceiling while preserving every triangle's vertex content,
// color and UV association.
//
// Pending triangles form a worklist scanned in original order. A triangle
// moves into the sub-chunk being built when its not-yet-present vertices
// fit under the ceiling; otherwise it stays pending for a later chunk.
// When a full scan moves nothing, the sub-chunk is closed (bounding
// sphere computed) and a fresh one started, until the worklist drains.
// Each sub-chunk keeps its own source-index remap table so indices never
// alias across chunks.
func Split(m *Mesh) []*Chunk {
	pending := make([]int, len(m.Tris))
	for i := range pending {
		pending[i] = i
	}

	var chunks []*Chunk
	for len(pending) > 0 {
		sub := &Chunk{}
		remap := make(map[int]int)
		var deferred []int

		for _, ti := range pending {
			tri := m.Tris[ti]
			corners := [3]int{tri.A, tri.B, tri.C}
			need := 0
			for i, v := range corners {
				if _, ok := remap[v]; ok {
					continue
				}
				dup := false
				for j := 0; j < i; j++ {
					if corners[j] == v {
						dup = true
						break
					}
				}
				if !dup {
					need++
				}
			}
			if len(sub.Verts)+need > MaxVerts {
				deferred = append(deferred, ti)
				continue
			}
			for _, v := range corners {
				if _, ok := remap[v]; !ok {
					remap[v] = sub.AddVert(m.Verts[v], m.Colors[v], m.UVs[v])
				}
			}
			sub.Tris = append(sub.Tris, Tri{A: remap[tri.A], B: remap[tri.B], C: remap[tri.C], Tex: tri.Tex})
		}

		if len(sub.Tris) == 0 {
			// No progress: remaining triangles can never fit (should not
			// happen with a 255 ceiling and 3 vertices per triangle).
			break
		}
		sub.ComputeBounds()
		chunks = append(chunks, sub)
		pending = deferred
	}
	return chunks
}
