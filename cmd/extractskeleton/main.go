package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"oot-psx-extract/internal/config"
	"oot-psx-extract/internal/manifest"
	"oot-psx-extract/internal/rom"
	"oot-psx-extract/internal/segment"
	"oot-psx-extract/internal/skeleton"
	"oot-psx-extract/internal/skm"
	"oot-psx-extract/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	romPath := flag.String("rom", "", "Path to the ROM image")
	namesCSV := flag.String("names", "", "Path to the directory name CSV (default: segments.csv next to ROM)")
	manifestPath := flag.String("manifest", "", "YAML skeleton manifest (default: built-in player skeleton)")
	skmPath := flag.String("skm", "", "SKM output path (default: <output>/<object>.skm)")
	preview := flag.Bool("preview", false, "Write texture preview images")
	outputDir := flag.String("output", "", "Output directory (default: current directory)")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		RomPath:   *romPath,
		NamesCSV:  *namesCSV,
		OutputDir: *outputDir,
	})

	if cfg.RomPath == "" {
		fmt.Fprintln(os.Stderr, "Error: no ROM given. Use -rom or config.json.")
		os.Exit(1)
	}

	target := manifest.Default()
	if *manifestPath != "" {
		var err error
		target, err = manifest.Load(*manifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	romData, err := os.ReadFile(cfg.RomPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ROM: %v\n", err)
		os.Exit(1)
	}

	names, err := rom.LoadNames(cfg.NamesCSV)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using synthetic names)\n", err)
	}
	dir := rom.LoadDirectory(romData, names, cfg.DMATableOffset)
	fmt.Printf("ROM: %s (%.1f MB, %d directory entries)\n",
		cfg.RomPath, float64(len(romData))/(1024*1024), dir.Len())

	objData, err := loadFile(romData, dir, target.ObjectFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	animData, err := loadFile(romData, dir, target.AnimFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Object: %s (%d bytes), anim data: %s (%d bytes)\n",
		target.ObjectFile, len(objData), target.AnimFile, len(animData))
	fmt.Println("------------------------------------------------------------")

	segs := segment.NewTable()
	segs.Register(skeleton.ObjectSegment, objData)
	segs.Register(skeleton.AnimSegment, animData)

	sk := skeleton.New(segs)
	if err := sk.Parse(target.HeaderOff, target.LimbCount); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sk.ExtractMeshes()

	conv := texture.Converter{Segments: segs, FallbackSize: 4}
	conv.FinalizeAll(sk.Interp().Textures)

	anims := skeleton.ExtractAnimations(animData, target.AnimEntries(), target.FrameSize)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output dir: %v\n", err)
		os.Exit(1)
	}
	out := *skmPath
	if out == "" {
		out = filepath.Join(cfg.OutputDir, target.ObjectFile+".skm")
	}
	if err := skm.Write(out, sk.Limbs, sk.Meshes, anims, sk.Interp().Textures.Textures, target.FrameSize); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *preview {
		dir := cfg.PreviewDir
		if dir == "" {
			dir = filepath.Join(cfg.OutputDir, "previews")
		}
		n := texture.WritePreviews(sk.Interp().Textures, dir, target.ObjectFile, cfg.PreviewFormat, cfg.PreviewScale)
		fmt.Printf("  previews: %d images in %s\n", n, dir)
	}
}

func loadFile(romData []byte, dir *rom.Directory, name string) ([]byte, error) {
	entry, err := dir.Lookup(name)
	if err != nil {
		return nil, err
	}
	data := dir.Load(romData, entry)
	if len(data) == 0 {
		return nil, fmt.Errorf("rom: %q: empty or out-of-range file", name)
	}
	return data, nil
}
