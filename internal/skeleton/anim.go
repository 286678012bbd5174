package skeleton

import (
	"encoding/binary"
	"fmt"
	"os"
)

// AnimEntry names one animation to pull out of the animation data file.
type AnimEntry struct {
	Name   string
	Frames int
	Offset int
	Loop   bool
}

// Animation is one extracted animation: fixed-size frames, already
// byte-swapped to the output byte order.
type Animation struct {
	Name   string
	Frames int
	Loop   bool
	Data   [][]byte
}

// ExtractAnimations reads the requested animations from the raw
// animation buffer. Each frame is frameSize bytes of big-endian s16
// values (root translation, per-limb rotation triples, face value),
// rewritten little-endian. Truncated frames end that animation early
// with a warning; the run continues.
func ExtractAnimations(animData []byte, entries []AnimEntry, frameSize int) []Animation {
	nvals := frameSize / 2
	anims := make([]Animation, 0, len(entries))
	for _, e := range entries {
		a := Animation{Name: e.Name, Frames: e.Frames, Loop: e.Loop}
		for f := 0; f < e.Frames; f++ {
			fo := e.Offset + f*frameSize
			if fo+frameSize > len(animData) {
				fmt.Fprintf(os.Stderr, "  [WARN] anim %q frame %d truncated\n", e.Name, f)
				break
			}
			frame := make([]byte, frameSize)
			for j := 0; j < nvals; j++ {
				v := binary.BigEndian.Uint16(animData[fo+j*2:])
				binary.LittleEndian.PutUint16(frame[j*2:], v)
			}
			a.Data = append(a.Data, frame)
		}
		loop := ""
		if a.Loop {
			loop = " (loop)"
		}
		fmt.Printf("  %q: %d frames%s\n", a.Name, len(a.Data), loop)
		anims = append(anims, a)
	}
	return anims
}
