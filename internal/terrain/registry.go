package terrain

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"terragrid/internal/config"
	"terragrid/internal/gamedata"
	"terragrid/internal/terrain/mesh"
)

// OptionsFromConfig maps the engine configuration onto cache options. The
// mesh engines and game-data store are passed in by the embedding server;
// nil collaborators select the built-in disabled/empty stand-ins.
func OptionsFromConfig(cfg config.Config, log *zap.Logger, db *gamedata.Store, cm mesh.CollisionMesh, nm mesh.NavMesh) Options {
	return Options{
		DataRoot:        cfg.DataRoot,
		Locale:          cfg.DefaultLocale,
		GridUnload:      cfg.GridUnload,
		CleanupInterval: time.Duration(cfg.CleanupIntervalSec) * time.Second,
		Log:             log,
		GameData:        db,
		Collision:       cm,
		Nav:             nm,
	}
}

// Registry hands out the one TileCache per map id. Caches are created on
// first use and shared by every map instance running on the same terrain, so
// tile data is decoded once regardless of how many instances reference it.
type Registry struct {
	opts Options

	mu     sync.Mutex
	caches map[uint32]*TileCache
}

// NewRegistry builds an empty registry; opts is inherited by every cache it
// creates.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:   opts.withDefaults(),
		caches: make(map[uint32]*TileCache),
	}
}

// GetOrCreate returns the cache for mapID, creating it on first use.
func (r *Registry) GetOrCreate(mapID uint32) *TileCache {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.caches[mapID]; ok {
		return c
	}
	c := NewTileCache(mapID, r.opts)
	r.caches[mapID] = c
	r.opts.Log.Debug("terrain cache created", zap.Uint32("map", mapID))
	return c
}

// Get returns the cache for mapID, nil when none exists yet.
func (r *Registry) Get(mapID uint32) *TileCache {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.caches[mapID]
}

// Unload drops the cache for mapID and releases its mesh-engine resources.
// A no-op when unloading is disabled by configuration or while any tile of
// the map is still referenced.
func (r *Registry) Unload(mapID uint32) {
	if !r.opts.GridUnload {
		return
	}

	r.mu.Lock()
	c, ok := r.caches[mapID]
	if ok && c.IsReferenced() {
		r.mu.Unlock()
		return
	}
	delete(r.caches, mapID)
	r.mu.Unlock()

	if ok {
		c.shutdown()
		r.opts.Log.Debug("terrain cache unloaded", zap.Uint32("map", mapID))
	}
}

// Update forwards elapsed time to every cache's eviction sweep. Call it from
// the world update loop.
func (r *Registry) Update(elapsed time.Duration) {
	r.mu.Lock()
	caches := make([]*TileCache, 0, len(r.caches))
	for _, c := range r.caches {
		caches = append(caches, c)
	}
	r.mu.Unlock()

	for _, c := range caches {
		c.Sweep(elapsed)
	}
}

// UnloadAll drops every cache regardless of references or configuration.
// For shutdown only.
func (r *Registry) UnloadAll() {
	r.mu.Lock()
	caches := r.caches
	r.caches = make(map[uint32]*TileCache)
	r.mu.Unlock()

	for _, c := range caches {
		c.shutdown()
	}
}
