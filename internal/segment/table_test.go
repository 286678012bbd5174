package segment

import "testing"

func TestAddrParts(t *testing.T) {
	addr := Addr(0x03001234)
	if ID(addr) != 3 {
		t.Errorf("ID: got %d, want 3", ID(addr))
	}
	if Offset(addr) != 0x1234 {
		t.Errorf("Offset: got %#x, want 0x1234", Offset(addr))
	}
}

func TestResolve(t *testing.T) {
	tbl := NewTable()
	tbl.Register(3, make([]byte, 0x100))

	if off, ok := tbl.Resolve(0x030000FF, 3); !ok || off != 0xFF {
		t.Errorf("Resolve in-range: got (%#x, %v)", off, ok)
	}
	if _, ok := tbl.Resolve(0x03000100, 3); ok {
		t.Error("Resolve accepted offset past buffer end")
	}
	if _, ok := tbl.Resolve(0x02000000, 3); ok {
		t.Error("Resolve accepted address tagging another segment")
	}
	if _, ok := tbl.Resolve(0x06000000, 6); ok {
		t.Error("Resolve accepted unregistered segment")
	}
}

func TestResolveAny(t *testing.T) {
	tbl := NewTable()
	roomBuf := make([]byte, 0x10)
	sceneBuf := make([]byte, 0x10)
	tbl.Register(3, roomBuf)
	tbl.Register(2, sceneBuf)

	off, ok := tbl.Resolve(0x02000008, 2)
	if !ok || off != 8 {
		t.Fatalf("Resolve scene: got (%#x, %v)", off, ok)
	}

	b, off2, ok := tbl.ResolveAny(0x02000008)
	if !ok || off2 != 8 || &b[0] != &sceneBuf[0] {
		t.Error("ResolveAny did not pick the tagged segment's buffer")
	}
	if _, _, ok := tbl.ResolveAny(0x07000000); ok {
		t.Error("ResolveAny accepted unregistered segment")
	}
}
