package rom

import (
	"encoding/binary"
	"errors"
	"testing"
)

// buildROM lays out a directory table at tableOff with the given rows,
// terminated by an all-zero row.
func buildROM(tableOff int, rows [][4]uint32, size int) []byte {
	data := make([]byte, size)
	off := tableOff
	for _, r := range rows {
		for i, v := range r {
			binary.BigEndian.PutUint32(data[off+i*4:], v)
		}
		off += 16
	}
	return data
}

func TestLoadDirectory(t *testing.T) {
	rows := [][4]uint32{
		{0x000, 0x010, 0x100, 0x110},
		{0x010, 0x030, 0x110, 0},
		{0x030, 0x040, 0, 0},
	}
	data := buildROM(0x40, rows, 0x200)
	names := []string{"makerom", "boot"}

	dir := LoadDirectory(data, names, 0x40)
	if dir.Len() != 3 {
		t.Fatalf("got %d entries, want 3", dir.Len())
	}

	got := dir.Names()
	want := []string{"makerom", "boot", "seg_2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d: got %q, want %q", i, got[i], want[i])
		}
	}

	e, err := dir.Lookup("boot")
	if err != nil {
		t.Fatal(err)
	}
	if e.VromSize() != 0x20 {
		t.Errorf("VromSize: got %#x, want 0x20", e.VromSize())
	}
}

func TestDirectoryStopsAtZeroRow(t *testing.T) {
	rows := [][4]uint32{
		{0x000, 0x010, 0, 0},
		{0, 0, 0, 0},
		{0x020, 0x030, 0, 0}, // past the terminator, must not appear
	}
	data := buildROM(0, rows, 0x100)

	dir := LoadDirectory(data, nil, 0)
	if dir.Len() != 1 {
		t.Errorf("got %d entries, want 1", dir.Len())
	}
}

func TestLookupNotFound(t *testing.T) {
	rows := [][4]uint32{
		{0x000, 0x010, 0, 0},
		{0x010, 0x020, 0, 0},
	}
	data := buildROM(0, rows, 0x100)
	dir := LoadDirectory(data, []string{"spot04_room_0", "spot04_scene"}, 0)

	_, err := dir.Lookup("spot04_room_9")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	near := dir.Nearest("spot04_room_9", 8)
	if len(near) != 2 {
		t.Fatalf("Nearest: got %v, want both spot04 entries", near)
	}
}

func TestLoadPhysicalFallback(t *testing.T) {
	// RomStart/RomEnd zero: slice by the virtual range instead.
	data := make([]byte, 0x40)
	copy(data[0x10:], "payload!")
	e := Entry{VromStart: 0x10, VromEnd: 0x18}

	d := &Directory{}
	got := d.Load(data, e)
	if string(got) != "payload!" {
		t.Errorf("got %q, want %q", got, "payload!")
	}
}

func TestLoadDecompresses(t *testing.T) {
	comp := make([]byte, 16+2)
	copy(comp, "Yaz0")
	binary.BigEndian.PutUint32(comp[4:], 1)
	comp[16] = 0x80 // one literal
	comp[17] = 'z'

	data := make([]byte, 0x40)
	copy(data[0x20:], comp)
	e := Entry{VromStart: 0, VromEnd: 1, RomStart: 0x20, RomEnd: 0x20 + uint32(len(comp))}

	d := &Directory{}
	got := d.Load(data, e)
	if len(got) != 1 || got[0] != 'z' {
		t.Errorf("got %v, want [z]", got)
	}
}
