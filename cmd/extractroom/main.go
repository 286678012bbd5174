package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"oot-psx-extract/internal/batch"
	"oot-psx-extract/internal/config"
	"oot-psx-extract/internal/obj"
	"oot-psx-extract/internal/prm"
	"oot-psx-extract/internal/rom"
	"oot-psx-extract/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	romPath := flag.String("rom", "", "Path to the ROM image")
	namesCSV := flag.String("names", "", "Path to the directory name CSV (default: segments.csv next to ROM)")
	roomName := flag.String("room", "", "Room file to extract (e.g. spot04_room_0)")
	sceneName := flag.String("scene", "", "Scene file override (default: derived from room name)")
	all := flag.Bool("all", false, "Extract every room in the ROM")
	prmPath := flag.String("prm", "", "PRM output path (default: <output>/<room>.prm)")
	objPath := flag.String("obj", "", "Also write a debug OBJ dump to this path")
	preview := flag.Bool("preview", false, "Write texture preview images")
	outputDir := flag.String("output", "", "Output directory (default: current directory)")
	workers := flag.Int("workers", 0, "Worker goroutines for -all (default: NumCPU)")

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
		Workers:   *workers,
	})

	if cfg.RomPath == "" {
		fmt.Fprintln(os.Stderr, "Error: no ROM given. Use -rom or config.json.")
		os.Exit(1)
	}
	if !*all && *roomName == "" {
		fmt.Fprintln(os.Stderr, "Error: give a -room name or -all.")
		os.Exit(1)
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

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if *all {
		runBatch(cfg, romData, dir)
		return
	}

	scene := *sceneName
	if scene == "" {
		scene = batch.SceneName(*roomName)
	}
	fmt.Printf("Room: %s", *roomName)
	if scene != "" {
		fmt.Printf(" (scene: %s)", scene)
	}
	fmt.Println()
	fmt.Println("------------------------------------------------------------")

	ext, err := batch.ExtractRoom(romData, dir, *roomName, scene, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stats := ext.Stats
	fmt.Printf("  display lists: %d vtx, %d tri1, %d tri2, %d calls\n",
		stats.VtxCmds, stats.Tri1Cmds, stats.Tri2Cmds, stats.DLCalls)
	for op, n := range stats.Unknown {
		fmt.Printf("  [WARN] unknown opcode %#02x seen %d times\n", op, n)
	}

	out := *prmPath
	if out == "" {
		out = filepath.Join(cfg.OutputDir, *roomName+".prm")
	}
	if err := prm.Write(out, ext.Chunks, ext.Textures.Textures); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *objPath != "" {
		if err := obj.Write(*objPath, ext.Chunks); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	if *preview {
		dir := cfg.PreviewDir
		if dir == "" {
			dir = filepath.Join(cfg.OutputDir, "previews")
		}
		n := texture.WritePreviews(ext.Textures, dir, *roomName, cfg.PreviewFormat, cfg.PreviewScale)
		fmt.Printf("  previews: %d images in %s\n", n, dir)
	}
}

func runBatch(cfg config.Config, romData []byte, dir *rom.Directory) {
	names := batch.RoomNames(dir)
	if len(names) == 0 {
		fmt.Println("No rooms found in directory.")
		os.Exit(0)
	}

	fmt.Printf("Rooms: %d, Workers: %d\n", len(names), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(batch.Config{
		RomData:   romData,
		Dir:       dir,
		OutputDir: cfg.OutputDir,
		Workers:   cfg.Workers,
	}, names)
	elapsed := time.Since(start)

	ok, failed := 0, 0
	var failures []string
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failed++
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Error))
		}
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs: %d ok, %d failed\n", elapsed.Seconds(), ok, failed)
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "Failures:\n  %s\n", strings.Join(failures, "\n  "))
		os.Exit(1)
	}
}
