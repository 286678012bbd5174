package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"oot-psx-extract/internal/config"
	"oot-psx-extract/internal/rom"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	romPath := flag.String("rom", "", "Path to the ROM image")
	namesCSV := flag.String("names", "", "Path to the directory name CSV (default: segments.csv next to ROM)")
	find := flag.String("find", "", "List only entries whose name contains this substring")
	rooms := flag.Bool("rooms", false, "List only room files")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{RomPath: *romPath, NamesCSV: *namesCSV})

	if cfg.RomPath == "" {
		fmt.Fprintln(os.Stderr, "Error: no ROM given. Use -rom or config.json.")
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

	fmt.Printf("ROM: %s (%.1f MB)\n", cfg.RomPath, float64(len(romData))/(1024*1024))
	fmt.Printf("Directory: %d entries @ %#x\n", dir.Len(), cfg.DMATableOffset)
	fmt.Println("------------------------------------------------------------")

	listed, compressed := 0, 0
	var totalSize uint64
	for _, name := range dir.Names() {
		if *find != "" && !strings.Contains(name, *find) {
			continue
		}
		if *rooms && !strings.Contains(name, "_room_") {
			continue
		}
		entry, err := dir.Lookup(name)
		if err != nil {
			continue
		}

		comp := ""
		rs := entry.RomStart
		if rs == 0 {
			rs = entry.VromStart
		}
		if int(rs)+4 <= len(romData) && rom.IsCompressed(romData[rs:]) {
			comp = "  yaz0"
			compressed++
		}
		fmt.Printf("  %-32s vrom %08x-%08x  %7d B%s\n",
			name, entry.VromStart, entry.VromEnd, entry.VromSize(), comp)
		listed++
		totalSize += uint64(entry.VromSize())
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("%d entries listed (%d compressed), %.1f MB decompressed\n",
		listed, compressed, float64(totalSize)/(1024*1024))

	if *find != "" && listed == 0 {
		near := dir.Nearest(*find, 8)
		if len(near) > 0 {
			fmt.Printf("No match. Similar names: %s\n", strings.Join(near, ", "))
		}
	}
}
