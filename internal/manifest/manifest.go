// Package manifest describes a skeleton extraction target: which ROM
// files hold the object and animation data, where the flex header sits,
// and which animations to pull. The built-in default targets the adult
// player character; a YAML file swaps in any other skeleton.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"oot-psx-extract/internal/skeleton"
)

// Animation names one animation inside the animation data file.
type Animation struct {
	Name   string `yaml:"name"`
	Frames int    `yaml:"frames"`
	Offset int    `yaml:"offset"`
	Loop   bool   `yaml:"loop"`
}

// Skeleton holds everything needed to locate and extract one skeleton.
type Skeleton struct {
	ObjectFile string      `yaml:"object_file"`
	AnimFile   string      `yaml:"anim_file"`
	HeaderOff  int         `yaml:"header_offset"`
	LimbCount  int         `yaml:"limb_count"`
	FrameSize  int         `yaml:"frame_size"`
	Animations []Animation `yaml:"animations"`
}

// Default returns the built-in adult player skeleton target: 21 LOD
// limbs, 134-byte frames (22 rotation triples plus a face value).
func Default() Skeleton {
	return Skeleton{
		ObjectFile: "object_link_boy",
		AnimFile:   "link_animetion",
		HeaderOff:  0x377F4,
		LimbCount:  21,
		FrameSize:  134,
		Animations: []Animation{
			{Name: "idle", Frames: 89, Offset: 0x1C3030, Loop: true},
			{Name: "walk", Frames: 29, Offset: 0x1F5050, Loop: true},
			{Name: "run", Frames: 20, Offset: 0x1B3600, Loop: true},
		},
	}
}

// Load reads a YAML skeleton manifest. Omitted fields fall back to the
// default target's values.
func Load(path string) (Skeleton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Skeleton{}, fmt.Errorf("manifest: read %s: %w", path, err)
	}

	m := Default()
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Skeleton{}, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	if m.FrameSize%2 != 0 || m.FrameSize <= 0 {
		return Skeleton{}, fmt.Errorf("manifest: frame_size %d must be a positive even number", m.FrameSize)
	}
	return m, nil
}

// AnimEntries converts the manifest's animation list into extraction
// entries.
func (s Skeleton) AnimEntries() []skeleton.AnimEntry {
	entries := make([]skeleton.AnimEntry, 0, len(s.Animations))
	for _, a := range s.Animations {
		entries = append(entries, skeleton.AnimEntry{
			Name:   a.Name,
			Frames: a.Frames,
			Offset: a.Offset,
			Loop:   a.Loop,
		})
	}
	return entries
}
