package texture

import (
	"bytes"
	"encoding/binary"
	"testing"

	"oot-psx-extract/internal/segment"
)

func TestConvertColor(t *testing.T) {
	tests := []struct {
		src, want uint16
	}{
		{0x0000, 0x0000},
		{0x0001, 0x8000},                          // alpha only
		{0xF800, 0x001F},                          // pure red
		{0x07C0, 0x03E0},                          // pure green
		{0x003E, 0x7C00},                          // pure blue
		{0xFFFF, 0xFFFF},                          // white opaque
		{0xF801, 0x801F},                          // red + alpha
	}
	for _, tc := range tests {
		if got := ConvertColor(tc.src); got != tc.want {
			t.Errorf("ConvertColor(%#04x): got %#04x, want %#04x", tc.src, got, tc.want)
		}
	}
}

// testConverter registers a single buffer under segment 6 and returns a
// converter over it.
func testConverter(buf []byte) Converter {
	segs := segment.NewTable()
	segs.Register(6, buf)
	return Converter{Segments: segs, FallbackSize: 4, Quiet: true}
}

func TestConvertCI8Dense(t *testing.T) {
	// 4x2 image using palette indices 3 and 7 only: live indices get
	// renumbered densely and packed two per nibble.
	buf := make([]byte, 0x100)
	pixels := []byte{3, 7, 7, 3, 3, 3, 7, 7}
	copy(buf[0x00:], pixels)
	// Palette at 0x40: index 3 = pure red, index 7 = pure blue.
	binary.BigEndian.PutUint16(buf[0x40+3*2:], 0xF801)
	binary.BigEndian.PutUint16(buf[0x40+7*2:], 0x003F)

	tex := &Info{ImgAddr: 0x06000000, Fmt: FmtCI, Siz: Siz8b, Width: 4, Height: 2, TlutAddr: 0x06000040}
	conv := testConverter(buf)
	conv.FinalizeAll(wrapRegistry(tex))

	if !tex.FourBit || tex.NumColors != 2 {
		t.Fatalf("got FourBit=%v NumColors=%d, want 4-bit with 2 colors", tex.FourBit, tex.NumColors)
	}
	// 3 -> 0, 7 -> 1 after dense renumbering; low nibble first.
	want := []byte{0x10, 0x01, 0x00, 0x11}
	if !bytes.Equal(tex.Pixels, want) {
		t.Errorf("pixels: got %v, want %v", tex.Pixels, want)
	}

	c0 := binary.LittleEndian.Uint16(tex.CLUT[0:])
	c1 := binary.LittleEndian.Uint16(tex.CLUT[2:])
	if c0 != ConvertColor(0xF801) || c1 != ConvertColor(0x003F) {
		t.Errorf("CLUT: got %#04x %#04x", c0, c1)
	}
}

func TestConvertCI4NibbleSwap(t *testing.T) {
	buf := make([]byte, 0x100)
	// 4x1 image: source packs the first sample high.
	buf[0] = 0x12
	buf[1] = 0x34

	tex := &Info{ImgAddr: 0x06000000, Fmt: FmtCI, Siz: Siz4b, Width: 4, Height: 1, TlutAddr: 0x06000040}
	conv := testConverter(buf)
	conv.FinalizeAll(wrapRegistry(tex))

	if !tex.FourBit || tex.NumColors != 16 {
		t.Fatalf("got FourBit=%v NumColors=%d", tex.FourBit, tex.NumColors)
	}
	want := []byte{0x21, 0x43}
	if !bytes.Equal(tex.Pixels, want) {
		t.Errorf("pixels: got %v, want %v", tex.Pixels, want)
	}
	if len(tex.CLUT) != 32 {
		t.Errorf("CLUT size: got %d, want 32", len(tex.CLUT))
	}
}

func TestConvertRGBA16FewColors(t *testing.T) {
	// 2x2 image with two distinct colors packs 4-bit.
	buf := make([]byte, 0x100)
	binary.BigEndian.PutUint16(buf[0:], 0xF801)
	binary.BigEndian.PutUint16(buf[2:], 0xF801)
	binary.BigEndian.PutUint16(buf[4:], 0x07C1)
	binary.BigEndian.PutUint16(buf[6:], 0x07C1)

	tex := &Info{ImgAddr: 0x06000000, Fmt: FmtRGBA, Siz: Siz16b, Width: 2, Height: 2}
	conv := testConverter(buf)
	conv.FinalizeAll(wrapRegistry(tex))

	if !tex.FourBit || tex.NumColors != 2 {
		t.Fatalf("got FourBit=%v NumColors=%d", tex.FourBit, tex.NumColors)
	}
	// First-seen order: red then green, low nibble first.
	want := []byte{0x00, 0x11}
	if !bytes.Equal(tex.Pixels, want) {
		t.Errorf("pixels: got %v, want %v", tex.Pixels, want)
	}
	// With no palette pressure the CLUT holds the converted source
	// colors exactly.
	c0 := binary.LittleEndian.Uint16(tex.CLUT[0:])
	c1 := binary.LittleEndian.Uint16(tex.CLUT[2:])
	if c0 != ConvertColor(0xF801) || c1 != ConvertColor(0x07C1) {
		t.Errorf("CLUT: got %#04x %#04x, want %#04x %#04x",
			c0, c1, ConvertColor(0xF801), ConvertColor(0x07C1))
	}
}

func TestConvertI8Greyscale(t *testing.T) {
	buf := make([]byte, 0x100)
	buf[0] = 0x00
	buf[1] = 0xFF
	buf[2] = 0x80
	buf[3] = 0x80

	tex := &Info{ImgAddr: 0x06000000, Fmt: FmtI, Siz: Siz8b, Width: 2, Height: 2}
	conv := testConverter(buf)
	conv.FinalizeAll(wrapRegistry(tex))

	if tex.NumColors != 3 {
		t.Fatalf("got %d colors, want 3", tex.NumColors)
	}
	c1 := binary.LittleEndian.Uint16(tex.CLUT[2:])
	if c1 != uint16(1<<15|31<<10|31<<5|31) {
		t.Errorf("white entry: got %#04x", c1)
	}
}

func TestFallbackForUnreachableSegment(t *testing.T) {
	// Image in segment 8, never registered: grey placeholder.
	tex := &Info{ImgAddr: 0x08000000, Fmt: FmtRGBA, Siz: Siz16b, Width: 32, Height: 32}
	conv := testConverter(make([]byte, 0x10))
	conv.FinalizeAll(wrapRegistry(tex))

	if tex.Width != 4 || tex.Height != 4 || !tex.FourBit || tex.NumColors != 1 {
		t.Fatalf("fallback: %+v", tex)
	}
	if len(tex.Pixels) != 4*4/2 {
		t.Errorf("pixel bytes: got %d, want 8", len(tex.Pixels))
	}
	if binary.LittleEndian.Uint16(tex.CLUT) != GreyColor {
		t.Errorf("CLUT: got %#04x, want grey", binary.LittleEndian.Uint16(tex.CLUT))
	}
}

func TestBuildIndexedSubsamplesOversizedPalette(t *testing.T) {
	// 300 distinct colors must shrink to a 256-entry palette with every
	// pixel mapped to some retained entry.
	colors := make([]uint16, 300)
	for i := range colors {
		r := uint16(i % 32)
		g := uint16(i / 32 % 32)
		b := uint16(i / 64 % 32)
		colors[i] = 1<<15 | b<<10 | g<<5 | r
	}
	tex := &Info{Width: 30, Height: 10}
	buildIndexed(tex, colors)

	if tex.FourBit {
		t.Fatal("oversized palette packed 4-bit")
	}
	if tex.NumColors != 256 {
		t.Fatalf("got %d colors, want 256", tex.NumColors)
	}
	if len(tex.Pixels) != 300 {
		t.Fatalf("pixel count: got %d", len(tex.Pixels))
	}
	if len(tex.CLUT) != 512 {
		t.Fatalf("CLUT bytes: got %d, want 512", len(tex.CLUT))
	}

	// Every pixel must resolve to a retained color at the minimum
	// Manhattan distance over the whole palette.
	palette := make([]uint16, 256)
	for i := range palette {
		palette[i] = binary.LittleEndian.Uint16(tex.CLUT[i*2:])
	}
	manhattan := func(a, b uint16) int {
		d := abs(int(a&0x1F) - int(b&0x1F))
		d += abs(int(a>>5&0x1F) - int(b>>5&0x1F))
		d += abs(int(a>>10&0x1F) - int(b>>10&0x1F))
		return d
	}
	for i, p := range tex.Pixels {
		got := manhattan(colors[i], palette[p])
		best := got
		for _, pc := range palette {
			if d := manhattan(colors[i], pc); d < best {
				best = d
			}
		}
		if got != best {
			t.Fatalf("pixel %d: assigned color at distance %d, nearest is %d", i, got, best)
		}
	}
}

func wrapRegistry(tex *Info) *Registry {
	reg := NewRegistry()
	reg.Register(Key{Addr: tex.ImgAddr, Width: tex.Width, Height: tex.Height}, tex)
	return reg
}
