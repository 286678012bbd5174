package texture

// ConvertColor rearranges a source RGBA5551 pixel (5 bits each R/G/B from
// the high end down, alpha in bit 0) into the output ABGR1555 layout
// (alpha in bit 15, then 5 bits each B/G/R). Applied uniformly wherever a
// raw source color is converted.
func ConvertColor(c uint16) uint16 {
	r := (c >> 11) & 0x1F
	g := (c >> 6) & 0x1F
	b := (c >> 1) & 0x1F
	a := c & 1
	return a<<15 | b<<10 | g<<5 | r
}

// GreyColor is the single CLUT entry of fallback textures: opaque
// mid-grey in the output layout.
const GreyColor = uint16(1<<15 | 16<<10 | 16<<5 | 16)
