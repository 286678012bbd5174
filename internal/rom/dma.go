package rom

import (
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DefaultTableOffset is where the file directory lives in the supported
// ROM revision.
const DefaultTableOffset = 0x7960

// ErrNotFound is returned when a named entry is absent from the directory.
var ErrNotFound = errors.New("rom: entry not found")

// Entry describes one file embedded in the ROM: its virtual address range
// and its physical (possibly compressed) range.
type Entry struct {
	Name      string
	VromStart uint32
	VromEnd   uint32
	RomStart  uint32
	RomEnd    uint32
}

// VromSize returns the size of the file once loaded.
func (e Entry) VromSize() uint32 {
	return e.VromEnd - e.VromStart
}

// Directory maps file names to their directory entries, preserving
// directory order for listing.
type Directory struct {
	entries map[string]Entry
	order   []string
}

// LoadNames reads the ordered name list that accompanies the directory
// table. The file is a CSV whose first column is the name; the header row
// is skipped. Rows align positionally with directory rows.
func LoadNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rom: read names %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("rom: parse names %s: %w", path, err)
	}

	var names []string
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) > 0 {
			names = append(names, row[0])
		} else {
			names = append(names, "")
		}
	}
	return names, nil
}

// LoadDirectory reads 16-byte directory rows (vromStart, vromEnd, romStart,
// romEnd, all big-endian) starting at tableOff, stopping at the first
// all-zero row. Rows are named positionally from names; rows past the end
// of the list get a synthetic seg_<n> name.
func LoadDirectory(data []byte, names []string, tableOff int) *Directory {
	d := &Directory{entries: make(map[string]Entry)}
	off := tableOff
	for idx := 0; off+16 <= len(data); idx++ {
		vs := binary.BigEndian.Uint32(data[off:])
		ve := binary.BigEndian.Uint32(data[off+4:])
		rs := binary.BigEndian.Uint32(data[off+8:])
		re := binary.BigEndian.Uint32(data[off+12:])
		if vs == 0 && ve == 0 && rs == 0 && re == 0 {
			break
		}
		name := fmt.Sprintf("seg_%d", idx)
		if idx < len(names) && names[idx] != "" {
			name = names[idx]
		}
		d.entries[name] = Entry{Name: name, VromStart: vs, VromEnd: ve, RomStart: rs, RomEnd: re}
		d.order = append(d.order, name)
		off += 16
	}
	return d
}

// Lookup returns the entry for name. On a miss the error wraps ErrNotFound
// and lists the nearest directory names.
func (d *Directory) Lookup(name string) (Entry, error) {
	e, ok := d.entries[name]
	if !ok {
		near := d.Nearest(name, 8)
		if len(near) > 0 {
			return Entry{}, fmt.Errorf("%w: %q (similar: %s)", ErrNotFound, name, strings.Join(near, ", "))
		}
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return e, nil
}

// Names returns all entry names in directory order.
func (d *Directory) Names() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Len returns the number of directory entries.
func (d *Directory) Len() int {
	return len(d.order)
}

// Nearest returns up to limit directory names sharing the first
// underscore-delimited token of name, sorted.
func (d *Directory) Nearest(name string, limit int) []string {
	token := name
	if i := strings.IndexByte(name, '_'); i > 0 {
		token = name[:i]
	}
	var matches []string
	for _, n := range d.order {
		if strings.Contains(n, token) {
			matches = append(matches, n)
		}
	}
	sort.Strings(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Load slices the ROM at the entry's physical range (falling back to the
// virtual range when the physical fields are zero) and decompresses the
// slice when it carries the compression magic.
func (d *Directory) Load(data []byte, e Entry) []byte {
	rs := e.RomStart
	if rs == 0 {
		rs = e.VromStart
	}
	re := e.RomEnd
	if re == 0 {
		re = rs + e.VromSize()
	}
	if int(rs) > len(data) {
		return nil
	}
	if int(re) > len(data) {
		re = uint32(len(data))
	}
	raw := data[rs:re]
	if IsCompressed(raw) {
		return Decompress(raw)
	}
	return raw
}
