package texture

import (
	"encoding/binary"
	"fmt"
	"os"

	"oot-psx-extract/internal/segment"
)

// Converter turns every registered texture into output pixel data and a
// CLUT. It runs once, after all geometry extraction for an asset.
type Converter struct {
	Segments *segment.Table
	// FallbackSize is the edge length of the grey placeholder substituted
	// when a texture's source data cannot be reached.
	FallbackSize int
	// Quiet suppresses the per-texture progress lines (batch runs).
	Quiet bool
}

type fmtKey struct {
	fmt uint8
	siz uint8
}

// Conversion dispatch, keyed on (format, bit size). Unlisted pairs get
// the fallback.
var converters = map[fmtKey]func(*Converter, *Info) bool{
	{FmtCI, Siz8b}:    (*Converter).convertCI8,
	{FmtCI, Siz4b}:    (*Converter).convertCI4,
	{FmtRGBA, Siz16b}: (*Converter).convertRGBA16,
	{FmtIA, Siz16b}:   (*Converter).convertIA16,
	{FmtIA, Siz8b}:    (*Converter).convertIA8,
	{FmtI, Siz8b}:     (*Converter).convertI8,
}

// FinalizeAll converts every texture in the registry. Conversion never
// fails a run: unreachable or unsupported textures degrade to the grey
// placeholder and processing continues.
func (c *Converter) FinalizeAll(reg *Registry) {
	for i, tex := range reg.Textures {
		if !c.Segments.Registered(segment.ID(tex.ImgAddr)) {
			c.fallback(tex)
		} else if fn, ok := converters[fmtKey{tex.Fmt, tex.Siz}]; ok {
			if !fn(c, tex) {
				c.fallback(tex)
			}
		} else {
			fmt.Fprintf(os.Stderr, "  [WARN] tex %d: unsupported fmt=%d siz=%d\n", i, tex.Fmt, tex.Siz)
			c.fallback(tex)
		}
		if c.Quiet {
			continue
		}
		bpp := "8bit"
		if tex.FourBit {
			bpp = "4bit"
		}
		fmt.Printf("  tex %2d: %3dx%-3d fmt=%d siz=%d -> %s %d colors, %d px bytes\n",
			i, tex.Width, tex.Height, tex.Fmt, tex.Siz, bpp, tex.NumColors, len(tex.Pixels))
	}
}

func (c *Converter) fallback(tex *Info) {
	n := c.FallbackSize
	if n <= 0 {
		n = 2
	}
	tex.Width = n
	tex.Height = n
	tex.FourBit = true
	tex.NumColors = 1
	tex.Pixels = make([]byte, n*n/2)
	clut := make([]byte, 2)
	binary.LittleEndian.PutUint16(clut, GreyColor)
	tex.CLUT = clut
}

// readTLUT builds the output CLUT by looking up each of the given source
// palette indices and converting its color. Entries past the end of the
// palette buffer stay zero.
func (c *Converter) readTLUT(tex *Info, indices []int) ([]byte, bool) {
	buf, off, ok := c.Segments.ResolveAny(tex.TlutAddr)
	if !ok {
		return nil, false
	}
	clut := make([]byte, len(indices)*2)
	for ci, idx := range indices {
		p := off + idx*2
		if p+2 <= len(buf) {
			src := binary.BigEndian.Uint16(buf[p:])
			binary.LittleEndian.PutUint16(clut[ci*2:], ConvertColor(src))
		}
	}
	return clut, true
}

// convertCI8 packs 8-bit palette indices. When 16 or fewer distinct
// indices are live they are renumbered densely (ascending) and packed two
// per byte; otherwise the indices pass through and a full 256-entry CLUT
// is built.
func (c *Converter) convertCI8(tex *Info) bool {
	buf, off, ok := c.Segments.ResolveAny(tex.ImgAddr)
	if !ok {
		return false
	}
	npix := tex.Width * tex.Height
	if off+npix > len(buf) {
		return false
	}
	raw := buf[off : off+npix]

	var seen [256]bool
	for _, b := range raw {
		seen[b] = true
	}
	var live []int
	for i, s := range seen {
		if s {
			live = append(live, i)
		}
	}

	if len(live) <= 16 {
		var remap [256]byte
		for newIdx, old := range live {
			remap[old] = byte(newIdx)
		}
		packed := make([]byte, npix/2)
		for j := 0; j+1 < npix; j += 2 {
			packed[j/2] = remap[raw[j]] | remap[raw[j+1]]<<4
		}
		clut, ok := c.readTLUT(tex, live)
		if !ok {
			return false
		}
		tex.Pixels = packed
		tex.FourBit = true
		tex.NumColors = len(live)
		tex.CLUT = clut
		return true
	}

	all := make([]int, 256)
	for i := range all {
		all[i] = i
	}
	clut, ok := c.readTLUT(tex, all)
	if !ok {
		return false
	}
	tex.Pixels = append([]byte(nil), raw...)
	tex.FourBit = false
	tex.NumColors = 256
	tex.CLUT = clut
	return true
}

// convertCI4 keeps 4-bit indices but swaps nibble order: the source packs
// the first sample in the high nibble, the output wants it low.
func (c *Converter) convertCI4(tex *Info) bool {
	buf, off, ok := c.Segments.ResolveAny(tex.ImgAddr)
	if !ok {
		return false
	}
	npix := tex.Width * tex.Height
	nbytes := (npix + 1) / 2
	if off+nbytes > len(buf) {
		return false
	}
	raw := buf[off : off+nbytes]
	pixels := make([]byte, nbytes)
	for i, b := range raw {
		pixels[i] = b>>4 | b<<4
	}

	idx := make([]int, 16)
	for i := range idx {
		idx[i] = i
	}
	clut, ok := c.readTLUT(tex, idx)
	if !ok {
		return false
	}
	tex.Pixels = pixels
	tex.FourBit = true
	tex.NumColors = 16
	tex.CLUT = clut
	return true
}

func (c *Converter) convertRGBA16(tex *Info) bool {
	buf, off, ok := c.Segments.ResolveAny(tex.ImgAddr)
	if !ok {
		return false
	}
	npix := tex.Width * tex.Height
	if off+npix*2 > len(buf) {
		return false
	}
	colors := make([]uint16, npix)
	for j := 0; j < npix; j++ {
		colors[j] = ConvertColor(binary.BigEndian.Uint16(buf[off+j*2:]))
	}
	buildIndexed(tex, colors)
	return true
}

// convertIA16 expands 8-bit intensity + 8-bit alpha pairs into grey
// output colors; the opacity bit comes from thresholding alpha at 128.
func (c *Converter) convertIA16(tex *Info) bool {
	buf, off, ok := c.Segments.ResolveAny(tex.ImgAddr)
	if !ok {
		return false
	}
	npix := tex.Width * tex.Height
	if off+npix*2 > len(buf) {
		return false
	}
	colors := make([]uint16, npix)
	for j := 0; j < npix; j++ {
		i8 := buf[off+j*2]
		a8 := buf[off+j*2+1]
		g5 := uint16(i8 >> 3)
		var a uint16
		if a8 >= 128 {
			a = 1
		}
		colors[j] = a<<15 | g5<<10 | g5<<5 | g5
	}
	buildIndexed(tex, colors)
	return true
}

// convertIA8 unpacks 4-bit intensity + 4-bit alpha per byte. Intensity
// expands to 5 bits by bit replication; alpha thresholds at 8.
func (c *Converter) convertIA8(tex *Info) bool {
	buf, off, ok := c.Segments.ResolveAny(tex.ImgAddr)
	if !ok {
		return false
	}
	npix := tex.Width * tex.Height
	if off+npix > len(buf) {
		return false
	}
	colors := make([]uint16, npix)
	for j := 0; j < npix; j++ {
		b := buf[off+j]
		i4 := uint16(b >> 4)
		a4 := b & 0x0F
		g5 := i4<<1 | i4>>3
		var a uint16
		if a4 >= 8 {
			a = 1
		}
		colors[j] = a<<15 | g5<<10 | g5<<5 | g5
	}
	buildIndexed(tex, colors)
	return true
}

func (c *Converter) convertI8(tex *Info) bool {
	buf, off, ok := c.Segments.ResolveAny(tex.ImgAddr)
	if !ok {
		return false
	}
	npix := tex.Width * tex.Height
	if off+npix > len(buf) {
		return false
	}
	colors := make([]uint16, npix)
	for j := 0; j < npix; j++ {
		g5 := uint16(buf[off+j] >> 3)
		colors[j] = 1<<15 | g5<<10 | g5<<5 | g5
	}
	buildIndexed(tex, colors)
	return true
}
