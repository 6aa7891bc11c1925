// Package terrain manages loaded terrain tiles per map: load-on-demand with
// reference counting and lazy eviction (TileCache), a registry of caches
// keyed by map id (Registry), and the fused queries that combine grid data
// with the collision- and navigation-mesh engines.
package terrain

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"terragrid/internal/gamedata"
	"terragrid/internal/terrain/mesh"
	"terragrid/internal/terrain/tile"
)

// DefaultCleanupInterval is the sweep cadence when none is configured.
const DefaultCleanupInterval = time.Minute

// Options wires a Registry (and its caches) to the rest of the server.
type Options struct {
	// DataRoot holds maps/ and vmaps/.
	DataRoot string
	// Locale indexes localized names in the game-data tables.
	Locale int
	// GridUnload gates Registry.Unload; when false caches stay resident.
	GridUnload bool
	// CleanupInterval overrides DefaultCleanupInterval.
	CleanupInterval time.Duration

	Log       *zap.Logger
	GameData  *gamedata.Store
	Collision mesh.CollisionMesh
	Nav       mesh.NavMesh
}

func (o Options) withDefaults() Options {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Collision == nil {
		o.Collision = mesh.DisabledCollisionMesh{}
	}
	if o.Nav == nil {
		o.Nav = mesh.DisabledNavMesh{}
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = DefaultCleanupInterval
	}
	return o
}

// tileSlot is one cell of the cache: at most one tile, a hold count, and a
// marker preventing failed-load retry storms on the query path.
type tileSlot struct {
	mu        sync.Mutex // serializes populate and evict for this cell
	tile      atomic.Pointer[tile.Tile]
	refs      atomic.Int32
	attempted atomic.Bool
}

// TileCache owns every loaded tile of one map. Queries load tiles on demand;
// holders pin tiles via Acquire/Release; Sweep evicts unreferenced tiles on
// a timer. All methods are safe for concurrent use.
type TileCache struct {
	mapID uint32
	opts  Options

	slots [tile.TilesPerSide][tile.TilesPerSide]tileSlot

	sweepMu sync.Mutex
	timer   intervalTimer
}

// NewTileCache builds the cache for one map. Normally reached through
// Registry.GetOrCreate.
func NewTileCache(mapID uint32, opts Options) *TileCache {
	opts = opts.withDefaults()
	return &TileCache{
		mapID: mapID,
		opts:  opts,
		timer: newSweepTimer(opts.CleanupInterval),
	}
}

// MapID returns the map this cache serves.
func (c *TileCache) MapID() uint32 { return c.mapID }

func validTileCoord(gx, gy int) bool {
	return gx >= 0 && gx < tile.TilesPerSide && gy >= 0 && gy < tile.TilesPerSide
}

// TilePath names the tile file for (mapID, gx, gy) under dataRoot.
func TilePath(dataRoot string, mapID uint32, gx, gy int) string {
	return filepath.Join(dataRoot, "maps", fmt.Sprintf("%03d%02d%02d.map", mapID, gx, gy))
}

// ExistsTile checks that a well-formed tile file exists for the coordinate.
func ExistsTile(dataRoot string, mapID uint32, gx, gy int) bool {
	return tile.CheckHeader(TilePath(dataRoot, mapID, gx, gy)) == nil
}

// Acquire pins the tile at (gx, gy) and returns it, loading on demand.
// mapOnly skips mesh-engine registration (warm-up fast path); a later full
// Acquire upgrades the slot. Returns nil only when the coordinate is out of
// range or the tile file is malformed. Pair every Acquire with a Release.
func (c *TileCache) Acquire(gx, gy int, mapOnly bool) *tile.Tile {
	if !validTileCoord(gx, gy) {
		return nil
	}
	// Reference before looking at the slot so a concurrent sweep can
	// never evict what we are about to return.
	s := &c.slots[gx][gy]
	s.refs.Add(1)

	t := s.tile.Load()
	if t == nil || (!t.FullyLoaded() && !mapOnly) {
		t = c.loadTile(gx, gy, mapOnly)
	}
	return t
}

// Release drops one hold on (gx, gy). The tile stays resident until a sweep
// visits the unreferenced slot.
func (c *TileCache) Release(gx, gy int) {
	if !validTileCoord(gx, gy) {
		return
	}
	s := &c.slots[gx][gy]
	for {
		v := s.refs.Load()
		if v <= 0 {
			return
		}
		if s.refs.CompareAndSwap(v, v-1) {
			return
		}
	}
}

// IsReferenced reports whether any slot still has outstanding holds.
func (c *TileCache) IsReferenced() bool {
	for gx := 0; gx < tile.TilesPerSide; gx++ {
		for gy := 0; gy < tile.TilesPerSide; gy++ {
			if c.slots[gx][gy].refs.Load() > 0 {
				return true
			}
		}
	}
	return false
}

// grid resolves the tile containing world (x, y) for a query, loading it on
// demand but taking no reference. A slot whose load already failed is left
// alone until the next sweep clears the marker.
func (c *TileCache) grid(x, y float32, loadOnlyMap bool) *tile.Tile {
	gx := int(tile.CenterTile - x/tile.TileSize)
	gy := int(tile.CenterTile - y/tile.TileSize)
	if !validTileCoord(gx, gy) {
		return nil
	}

	s := &c.slots[gx][gy]
	t := s.tile.Load()
	if t == nil && s.attempted.Load() {
		return nil
	}
	if t == nil || (!t.FullyLoaded() && !loadOnlyMap) {
		t = c.loadTile(gx, gy, loadOnlyMap)
	}
	return t
}

// loadTile populates the slot (decode under the per-slot lock) and, unless
// mapOnly, registers the region with both mesh engines. Decoding happens at
// most once per populated slot even under concurrent callers.
func (c *TileCache) loadTile(gx, gy int, mapOnly bool) *tile.Tile {
	s := &c.slots[gx][gy]

	if t := s.tile.Load(); t != nil && mapOnly {
		return t
	}
	if c.opts.Collision.IsTileLoaded(c.mapID, gx, gy) && c.opts.Nav.IsTileLoaded(c.mapID, gx, gy) {
		// Meshes already resident; the grid tile (or its absence after a
		// failed decode) is the final answer.
		if t := s.tile.Load(); t != nil {
			t.SetFullyLoaded()
			return t
		}
		return nil
	}

	s.mu.Lock()
	t := s.tile.Load()
	if t == nil {
		path := TilePath(c.opts.DataRoot, c.mapID, gx, gy)
		decoded, err := tile.Decode(path)
		if err != nil {
			c.opts.Log.Error("failed to load terrain tile",
				zap.Uint32("map", c.mapID), zap.Int("gx", gx), zap.Int("gy", gy),
				zap.Error(err))
		} else {
			t = decoded
			s.tile.Store(decoded)
			c.opts.Log.Debug("loaded terrain tile",
				zap.Uint32("map", c.mapID), zap.Int("gx", gx), zap.Int("gy", gy),
				zap.Bool("empty", decoded.Empty()))
		}
		s.attempted.Store(true)
	}
	s.mu.Unlock()

	if mapOnly || t == nil {
		return t
	}
	c.registerMeshes(gx, gy)
	t.SetFullyLoaded()
	return t
}

// registerMeshes loads the collision and navigation meshes for one tile;
// both engines are idempotent against already-loaded regions.
func (c *TileCache) registerMeshes(gx, gy int) {
	if !c.opts.Collision.IsTileLoaded(c.mapID, gx, gy) {
		mapName := "<unnamed>"
		if m := c.opts.GameData.MapByID(c.mapID); m != nil {
			if n := m.Name(c.opts.Locale); n != "" {
				mapName = n
			}
		}
		res := c.opts.Collision.LoadTile(filepath.Join(c.opts.DataRoot, "vmaps"), c.mapID, gx, gy)
		switch res {
		case mesh.LoadResultOK:
			c.opts.Log.Debug("collision mesh loaded",
				zap.String("map_name", mapName), zap.Uint32("map", c.mapID),
				zap.Int("gx", gx), zap.Int("gy", gy))
		case mesh.LoadResultError:
			c.opts.Log.Warn("collision mesh failed to load",
				zap.String("map_name", mapName), zap.Uint32("map", c.mapID),
				zap.Int("gx", gx), zap.Int("gy", gy))
		case mesh.LoadResultIgnored:
			c.opts.Log.Debug("collision mesh ignored",
				zap.String("map_name", mapName), zap.Uint32("map", c.mapID),
				zap.Int("gx", gx), zap.Int("gy", gy))
		}
	}
	if !c.opts.Nav.IsTileLoaded(c.mapID, gx, gy) {
		c.opts.Nav.LoadTile(c.mapID, gx, gy)
	}
}

// Sweep advances the eviction timer by elapsed and, once the interval has
// passed, frees every populated slot with zero holds, releasing the mesh
// engines' per-tile resources as well. This is the only place tiles are
// freed, so query paths never race an eviction they can observe.
func (c *TileCache) Sweep(elapsed time.Duration) {
	c.sweepMu.Lock()
	c.timer.update(elapsed)
	if !c.timer.passed() {
		c.sweepMu.Unlock()
		return
	}
	c.timer.reset()
	c.sweepMu.Unlock()

	evicted := 0
	for gx := 0; gx < tile.TilesPerSide; gx++ {
		for gy := 0; gy < tile.TilesPerSide; gy++ {
			s := &c.slots[gx][gy]
			if s.refs.Load() != 0 || s.tile.Load() == nil {
				continue
			}
			s.mu.Lock()
			if s.refs.Load() == 0 && s.tile.Load() != nil {
				s.tile.Store(nil)
				s.attempted.Store(false)
				s.mu.Unlock()
				c.opts.Collision.UnloadTile(c.mapID, gx, gy)
				c.opts.Nav.UnloadTile(c.mapID, gx, gy)
				evicted++
			} else {
				s.mu.Unlock()
			}
		}
	}

	if evicted > 0 {
		c.opts.Log.Debug("evicted unreferenced terrain tiles",
			zap.Uint32("map", c.mapID), zap.Int("count", evicted))
	}
}

// shutdown releases the mesh engines' whole-map resources. Called by the
// registry when the cache is dropped.
func (c *TileCache) shutdown() {
	c.opts.Collision.UnloadMap(c.mapID)
	c.opts.Nav.UnloadMap(c.mapID)
}
