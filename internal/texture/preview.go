package texture

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

// Decode expands a converted texture back to RGBA through its CLUT, for
// visual inspection. The output's 5-bit channels widen by replication;
// the opacity bit maps to alpha 255/0.
func Decode(tex *Info) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, tex.Width, tex.Height))
	npix := tex.Width * tex.Height

	clutColor := func(idx int) color.NRGBA {
		p := idx * 2
		if p+2 > len(tex.CLUT) {
			return color.NRGBA{}
		}
		c := binary.LittleEndian.Uint16(tex.CLUT[p:])
		r := uint8(c & 0x1F)
		g := uint8(c>>5) & 0x1F
		b := uint8(c>>10) & 0x1F
		var a uint8
		if c&0x8000 != 0 {
			a = 255
		}
		return color.NRGBA{R: r<<3 | r>>2, G: g<<3 | g>>2, B: b<<3 | b>>2, A: a}
	}

	for i := 0; i < npix; i++ {
		var idx int
		if tex.FourBit {
			if i/2 >= len(tex.Pixels) {
				break
			}
			b := tex.Pixels[i/2]
			if i%2 == 0 {
				idx = int(b & 0x0F)
			} else {
				idx = int(b >> 4)
			}
		} else {
			if i >= len(tex.Pixels) {
				break
			}
			idx = int(tex.Pixels[i])
		}
		img.SetNRGBA(i%tex.Width, i/tex.Width, clutColor(idx))
	}
	return img
}

// WritePreviews dumps every converted texture in the registry into dir as
// <prefix>_tex<n>.<format>, upscaled so small textures stay readable.
// Format is "webp" or "tga". Failures are reported per texture and do not
// stop the run.
func WritePreviews(reg *Registry, dir, prefix, format string, scale int) int {
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "  [WARN] preview dir: %v\n", err)
		return 0
	}
	if scale < 1 {
		scale = 1
	}

	written := 0
	for i, tex := range reg.Textures {
		src := Decode(tex)
		var out image.Image = src
		if scale > 1 {
			dst := image.NewNRGBA(image.Rect(0, 0, tex.Width*scale, tex.Height*scale))
			draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
			out = dst
		}

		path := filepath.Join(dir, fmt.Sprintf("%s_tex%d.%s", prefix, i, format))
		if err := writeImage(path, out, format); err != nil {
			fmt.Fprintf(os.Stderr, "  [WARN] preview %s: %v\n", path, err)
			continue
		}
		written++
	}
	return written
}

func writeImage(path string, img image.Image, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case "tga":
		return tga.Encode(f, img)
	default:
		return nativewebp.Encode(f, img, nil)
	}
}
