// mapinspect decodes a terrain tile file and prints what it carries, with
// optional point queries against the decoded data. With -config, tiles are
// resolved through the engine configuration and probed through the full
// cache, including the game-data tables.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"terragrid/internal/config"
	"terragrid/internal/gamedata"
	"terragrid/internal/logger"
	"terragrid/internal/terrain"
	"terragrid/internal/terrain/tile"
)

func main() {
	var (
		cfgPath  = flag.String("config", "", "engine config (terrain.yaml); enables -map/-gx/-gy resolution")
		tilePath = flag.String("tile", "", "path to tile file (.map or .map.zst)")
		mapID    = flag.Uint("map", 0, "map id")
		gx       = flag.Int("gx", -1, "tile x coordinate (requires -config)")
		gy       = flag.Int("gy", -1, "tile y coordinate (requires -config)")
		probe    = flag.String("probe", "", "world point to query, as x,y,z")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.Nop()
	if *cfgPath != "" {
		log = logger.New(cfg.Log.Level, cfg.Log.File)
	}
	defer log.Sync()

	path := *tilePath
	if path == "" {
		if *gx < 0 || *gy < 0 {
			fmt.Fprintln(os.Stderr, "need -tile, or -map/-gx/-gy with -config")
			os.Exit(2)
		}
		path = terrain.TilePath(cfg.DataRoot, uint32(*mapID), *gx, *gy)
	}

	t, err := tile.Decode(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "decode:", err)
		os.Exit(1)
	}

	fmt.Println("tile:", path)
	if t.Empty() {
		fmt.Println("  empty (file absent or all sections omitted)")
	} else {
		printSections(t)
	}

	if *probe == "" {
		return
	}
	x, y, z, err := parsePoint(*probe)
	if err != nil {
		fmt.Fprintln(os.Stderr, "probe:", err)
		os.Exit(2)
	}

	var db *gamedata.Store
	if cfg.GameDataDB != "" {
		db, err = gamedata.OpenSQLite(cfg.GameDataDB)
		if err != nil {
			fmt.Fprintln(os.Stderr, "gamedata:", err)
			os.Exit(1)
		}
		log.Debug("game-data tables loaded", zap.String("db", cfg.GameDataDB))
	}

	c := terrain.NewTileCache(uint32(*mapID), terrain.OptionsFromConfig(cfg, log, db, nil, nil))

	fmt.Printf("probe (%.2f, %.2f, %.2f):\n", x, y, z)
	fmt.Printf("  height       %.3f\n", t.Height(x, y))
	fmt.Printf("  area flag    %d\n", t.Area(x, y))
	fmt.Printf("  area name    %s\n", c.AreaName(x, y, z, cfg.DefaultLocale))
	fmt.Printf("  liquid level %.3f\n", t.LiquidLevel(x, y))
	fmt.Printf("  terrain type 0x%02x\n", t.TerrainType(x, y))

	var data tile.LiquidData
	status := t.LiquidStatus(db, uint32(*mapID), x, y, z, tile.LiquidTypeAll, &data, tile.DefaultCollisionHeight)
	fmt.Printf("  liquid       %s", status)
	if status != tile.LiquidNoWater {
		fmt.Printf(" entry=%d flags=0x%02x level=%.3f depth=%.3f", data.Entry, data.TypeFlags, data.Level, data.DepthLevel)
	}
	fmt.Println()
}

func printSections(t *tile.Tile) {
	if t.HasAreaGrid() {
		fmt.Println("  area: per-cell grid")
	} else {
		fmt.Printf("  area: uniform flag %d\n", t.GridArea())
	}

	fmt.Printf("  height: %s encoding\n", t.HeightEncoding())

	if t.HasHoles() {
		fmt.Println("  holes: present")
	}

	switch {
	case t.HasLiquidSamples():
		offX, offY, w, h := t.LiquidWindow()
		fmt.Printf("  liquid: sample window %dx%d at (%d, %d)", w, h, offX, offY)
		if t.HasLiquidGrid() {
			fmt.Print(", per-cell types")
		}
		fmt.Println()
	case t.HasLiquidGrid():
		fmt.Println("  liquid: per-cell types, scalar level")
	default:
		fmt.Println("  liquid: scalar fallback only")
	}
}

func parsePoint(s string) (x, y, z float32, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("want x,y,z, got %q", s)
	}
	vals := make([]float32, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("bad coordinate %q: %v", p, err)
		}
		vals[i] = float32(v)
	}
	return vals[0], vals[1], vals[2], nil
}
