package texture

import (
	"encoding/binary"
	"sort"
)

// luminance is the approximate brightness metric used to order colors
// before subsampling an oversized palette.
func luminance(c uint16) int {
	r := int(c & 0x1F)
	g := int(c>>5) & 0x1F
	b := int(c>>10) & 0x1F
	return r*3 + g*6 + b
}

// buildIndexed turns a flat list of output-format colors into indexed
// pixels plus a CLUT, choosing 4-bit packing when 16 or fewer colors
// remain.
//
// Colors deduplicate in first-seen order. Past 256 distinct colors the
// palette is sorted by luminance and subsampled to exactly 256 by even
// stride; pixels whose color was dropped resolve to the nearest retained
// color by Manhattan distance over the three 5-bit channels, memoized.
func buildIndexed(tex *Info, colors []uint16) {
	npix := len(colors)

	var palette []uint16
	index := make(map[uint16]int)
	for _, c := range colors {
		if _, ok := index[c]; !ok {
			index[c] = len(palette)
			palette = append(palette, c)
		}
	}

	if len(palette) > 256 {
		sort.SliceStable(palette, func(i, j int) bool {
			return luminance(palette[i]) < luminance(palette[j])
		})
		step := float64(len(palette)) / 256
		sub := make([]uint16, 256)
		for i := 0; i < 256; i++ {
			sub[i] = palette[int(float64(i)*step)]
		}
		palette = sub
		index = make(map[uint16]int, len(palette))
		for i, c := range palette {
			// First occurrence wins when subsampling kept duplicates.
			if _, ok := index[c]; !ok {
				index[c] = i
			}
		}
	}

	nearest := func(c uint16) int {
		if i, ok := index[c]; ok {
			return i
		}
		r := int(c & 0x1F)
		g := int(c>>5) & 0x1F
		b := int(c>>10) & 0x1F
		best, bestD := 0, 1<<30
		for pi, pc := range palette {
			pr := int(pc & 0x1F)
			pg := int(pc>>5) & 0x1F
			pb := int(pc>>10) & 0x1F
			d := abs(r-pr) + abs(g-pg) + abs(b-pb)
			if d < bestD {
				bestD = d
				best = pi
			}
		}
		index[c] = best
		return best
	}

	if len(palette) <= 16 {
		packed := make([]byte, npix/2)
		for j := 0; j+1 < npix; j += 2 {
			lo := nearest(colors[j])
			hi := nearest(colors[j+1])
			packed[j/2] = byte(lo) | byte(hi)<<4
		}
		tex.Pixels = packed
		tex.FourBit = true
	} else {
		pixels := make([]byte, npix)
		for j, c := range colors {
			pixels[j] = byte(nearest(c))
		}
		tex.Pixels = pixels
		tex.FourBit = false
	}

	tex.NumColors = len(palette)
	clut := make([]byte, len(palette)*2)
	for i, c := range palette {
		binary.LittleEndian.PutUint16(clut[i*2:], c)
	}
	tex.CLUT = clut
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
