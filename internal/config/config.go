package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"oot-psx-extract/internal/rom"
)

// Config holds all configurable paths and extraction settings.
type Config struct {
	// Paths
	RomPath   string `json:"rom"`
	NamesCSV  string `json:"names_csv"`
	OutputDir string `json:"output_dir"`

	// ROM layout
	DMATableOffset int `json:"dma_table_offset"`

	// Texture previews
	PreviewDir    string `json:"preview_dir"`
	PreviewFormat string `json:"preview_format"`
	PreviewScale  int    `json:"preview_scale"`

	// Batch extraction
	Workers int `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	RomPath   string
	NamesCSV  string
	OutputDir string
	Workers   int
}

// Resolve fills in any empty fields with defaults. CLI flags take
// priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.RomPath != "" {
		c.RomPath = flags.RomPath
	}
	if flags.NamesCSV != "" {
		c.NamesCSV = flags.NamesCSV
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.NamesCSV == "" {
		c.NamesCSV = findNamesCSV(c.RomPath)
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.DMATableOffset <= 0 {
		c.DMATableOffset = rom.DefaultTableOffset
	}
	if c.PreviewFormat == "" {
		c.PreviewFormat = "webp"
	}
	if c.PreviewScale <= 0 {
		c.PreviewScale = 4
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// findNamesCSV looks for segments.csv next to the ROM, then in the
// working directory.
func findNamesCSV(romPath string) string {
	candidates := []string{
		filepath.Join(filepath.Dir(romPath), "segments.csv"),
		"segments.csv",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return candidates[0]
}
