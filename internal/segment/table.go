// Package segment resolves segment-tagged virtual addresses against the
// buffers loaded for one extraction run. A tagged address keeps the
// segment id in its top bits and a byte offset in the low 24.
package segment

// Addr is a 32-bit segment-tagged address.
type Addr = uint32

// ID extracts the segment id from a tagged address.
func ID(addr Addr) int {
	return int(addr>>24) & 0x0F
}

// Offset extracts the byte offset from a tagged address.
func Offset(addr Addr) int {
	return int(addr & 0x00FFFFFF)
}

// Table maps segment ids (1-15) to the byte buffers registered for the
// current run. Buffers are owned by the loader; the table only reads.
type Table struct {
	bufs map[int][]byte
}

// NewTable returns an empty segment table.
func NewTable() *Table {
	return &Table{bufs: make(map[int][]byte)}
}

// Register binds a buffer to a segment id, replacing any previous binding.
func (t *Table) Register(id int, buf []byte) {
	t.bufs[id] = buf
}

// Registered reports whether a buffer is bound to the segment id.
func (t *Table) Registered(id int) bool {
	_, ok := t.bufs[id]
	return ok
}

// Buffer returns the buffer bound to id, or nil.
func (t *Table) Buffer(id int) []byte {
	return t.bufs[id]
}

// Resolve maps addr to an offset in the buffer bound to the given segment
// id. It fails when the address tags a different segment or the offset is
// past the end of that buffer.
func (t *Table) Resolve(addr Addr, id int) (int, bool) {
	if ID(addr) != id {
		return 0, false
	}
	buf, ok := t.bufs[id]
	if !ok {
		return 0, false
	}
	off := Offset(addr)
	if off >= len(buf) {
		return 0, false
	}
	return off, true
}

// ResolveAny maps addr through whichever segment it tags, returning the
// buffer and offset. Used where data may legitimately live in a secondary
// segment, such as a shared palette source.
func (t *Table) ResolveAny(addr Addr) ([]byte, int, bool) {
	buf, ok := t.bufs[ID(addr)]
	if !ok {
		return nil, 0, false
	}
	off := Offset(addr)
	if off >= len(buf) {
		return nil, 0, false
	}
	return buf, off, true
}
