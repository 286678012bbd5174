// Package batch extracts every room in the ROM directory in one run.
// Each item gets its own independent pipeline (segment table,
// interpreter, texture registry); workers never share mutable state.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"oot-psx-extract/internal/gbi"
	"oot-psx-extract/internal/geom"
	"oot-psx-extract/internal/prm"
	"oot-psx-extract/internal/room"
	"oot-psx-extract/internal/rom"
	"oot-psx-extract/internal/segment"
	"oot-psx-extract/internal/texture"
)

// roomNameRE matches room file names and captures the scene stem.
var roomNameRE = regexp.MustCompile(`^(.+)_room_\d+$`)

// SceneName derives the owning scene's directory name from a room name,
// or "" when the name is not a room.
func SceneName(roomName string) string {
	m := roomNameRE.FindStringSubmatch(roomName)
	if m == nil {
		return ""
	}
	return m[1] + "_scene"
}

// RoomNames returns every directory entry that looks like a room, in
// directory order.
func RoomNames(dir *rom.Directory) []string {
	var names []string
	for _, n := range dir.Names() {
		if roomNameRE.MatchString(n) {
			names = append(names, n)
		}
	}
	return names
}

// Extraction is the output of one room pipeline run.
type Extraction struct {
	Chunks   []*geom.Chunk
	Textures *texture.Registry
	Segments *segment.Table
	Stats    gbi.Stats
}

// ExtractRoom runs the full pipeline for one room: load and decompress
// the room (and its scene, when present, for the shared palette
// source), interpret the shape entries, convert textures.
func ExtractRoom(romData []byte, dir *rom.Directory, roomName, sceneName string, quiet bool) (*Extraction, error) {
	entry, err := dir.Lookup(roomName)
	if err != nil {
		return nil, err
	}
	roomBuf := dir.Load(romData, entry)
	if len(roomBuf) == 0 {
		return nil, fmt.Errorf("rom: %q: empty or out-of-range file", roomName)
	}

	segs := segment.NewTable()
	segs.Register(room.Segment, roomBuf)

	if sceneName != "" {
		if sceneEntry, err := dir.Lookup(sceneName); err == nil {
			segs.Register(room.SceneSegment, dir.Load(romData, sceneEntry))
		}
	}

	ex := room.New(segs)
	chunks := ex.Extract()

	conv := texture.Converter{Segments: segs, FallbackSize: 2, Quiet: quiet}
	conv.FinalizeAll(ex.Interp().Textures)

	return &Extraction{
		Chunks:   chunks,
		Textures: ex.Interp().Textures,
		Segments: segs,
		Stats:    ex.Interp().Stats,
	}, nil
}

// Config holds shared resources for a batch run.
type Config struct {
	RomData   []byte
	Dir       *rom.Directory
	OutputDir string
	Workers   int
}

// Result holds the outcome of processing one room.
type Result struct {
	Name    string
	Chunks  int
	Success bool
	Error   string
}

// Run extracts all named rooms to <output>/<name>.prm using a worker
// pool, reporting progress every two seconds.
func Run(cfg Config, names []string) []Result {
	total := len(names)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					fmt.Printf("  [%d/%d] %.1f rooms/sec\n", p, total, rate)
				}
			}
		}
	}()

	work := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = processRoom(cfg, names[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range names {
		work <- i
	}
	close(work)

	wg.Wait()
	close(done)

	return results
}

func processRoom(cfg Config, name string) Result {
	ext, err := ExtractRoom(cfg.RomData, cfg.Dir, name, SceneName(name), true)
	if err != nil {
		return Result{Name: name, Error: err.Error()}
	}

	buf := prm.Encode(ext.Chunks, ext.Textures.Textures)
	outPath := filepath.Join(cfg.OutputDir, name+".prm")
	if err := os.WriteFile(outPath, buf, 0644); err != nil {
		return Result{Name: name, Error: err.Error()}
	}
	return Result{Name: name, Chunks: len(ext.Chunks), Success: true}
}
