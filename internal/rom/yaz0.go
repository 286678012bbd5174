package rom

import "encoding/binary"

const yaz0Magic = "Yaz0"

// IsCompressed reports whether data starts with the Yaz0 magic.
func IsCompressed(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == yaz0Magic
}

// Decompress decodes a Yaz0 stream. The output size comes from the 32-bit
// big-endian field at offset 4; the payload starts at offset 16.
//
// Each control byte is consumed bit 7 first. A set bit copies one literal
// byte; a clear bit reads a two-byte token holding a 12-bit backward
// distance and a 4-bit length nibble (nibble 0 means a third byte follows
// and the run length is that byte + 0x12, otherwise nibble + 2). Runs are
// copied byte-by-byte so self-overlapping references work.
//
// Decoding stops once the output is full. If the input runs out first the
// remainder of the output stays zero.
func Decompress(data []byte) []byte {
	if len(data) < 16 {
		return nil
	}
	size := binary.BigEndian.Uint32(data[4:8])
	out := make([]byte, size)
	src := 16
	dst := 0

	for dst < len(out) {
		if src >= len(data) {
			break
		}
		ctrl := data[src]
		src++
		for bit := 7; bit >= 0 && dst < len(out); bit-- {
			if ctrl&(1<<uint(bit)) != 0 {
				if src >= len(data) {
					return out
				}
				out[dst] = data[src]
				src++
				dst++
				continue
			}
			if src+2 > len(data) {
				return out
			}
			b1, b2 := data[src], data[src+1]
			src += 2
			dist := int(b1&0x0F)<<8 | int(b2)
			cp := dst - dist - 1
			n := int(b1 >> 4)
			if n == 0 {
				if src >= len(data) {
					return out
				}
				n = int(data[src]) + 0x12
				src++
			} else {
				n += 2
			}
			for ; n > 0 && dst < len(out); n-- {
				if cp >= 0 && cp < len(out) {
					out[dst] = out[cp]
				}
				cp++
				dst++
			}
		}
	}
	return out
}
