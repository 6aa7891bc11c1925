// Package mesh defines the boundary to the external geometry providers the
// terrain engine fuses with its grid data: the collision mesh ("vmap") for
// line-of-sight height/area/liquid probes and the navigation mesh ("mmap")
// for pathfinding tiles. Both are supplied by the embedding server; the
// Disabled implementations let the engine run grid-only.
package mesh

// LoadResult reports the outcome of a collision-mesh tile load.
type LoadResult int

const (
	LoadResultOK LoadResult = iota
	LoadResultError
	LoadResultIgnored
)

func (r LoadResult) String() string {
	switch r {
	case LoadResultOK:
		return "ok"
	case LoadResultError:
		return "error"
	case LoadResultIgnored:
		return "ignored"
	}
	return "unknown"
}

// AreaInfo is the collision mesh's answer for an interior (WMO) volume.
type AreaInfo struct {
	Flags   uint32
	AdtID   int32
	RootID  int32
	GroupID int32
}

// InvalidMeshHeight is returned by height probes that found no surface.
const InvalidMeshHeight float32 = -200000.0

// CollisionMesh is the vmap engine boundary.
type CollisionMesh interface {
	// IsTileLoaded reports whether the mesh for (mapID, x, y) is resident.
	IsTileLoaded(mapID uint32, x, y int) bool
	// LoadTile loads the mesh tile from dataRoot; idempotent for resident
	// tiles.
	LoadTile(dataRoot string, mapID uint32, x, y int) LoadResult
	// UnloadTile releases one mesh tile.
	UnloadTile(mapID uint32, x, y int)
	// UnloadMap releases every mesh tile of a map.
	UnloadMap(mapID uint32)

	// Height probes for a surface below z within maxSearchDist (negative
	// for an upward probe); InvalidMeshHeight when none is found.
	Height(mapID uint32, x, y, z, maxSearchDist float32) float32
	// GetAreaInfo resolves the interior volume containing (x, y, *z),
	// adjusting *z to the volume's floor.
	GetAreaInfo(mapID uint32, x, y float32, z *float32) (AreaInfo, bool)
	// GetLiquidLevel probes mesh liquid data matching reqTypeMask.
	GetLiquidLevel(mapID uint32, x, y, z float32, reqTypeMask uint8) (level, ground float32, liquidType uint32, ok bool)

	// HeightCalcEnabled reports whether mesh height probes are active.
	HeightCalcEnabled() bool
	// TileLoadingEnabled reports whether mesh tiles are loaded at all.
	TileLoadingEnabled() bool
	// ExistsTile checks the mesh asset for (mapID, x, y) under dataRoot.
	ExistsTile(dataRoot string, mapID uint32, x, y int) bool
	// TileFileName names the mesh asset, for diagnostics.
	TileFileName(mapID uint32, x, y int) string
}

// NavMesh is the mmap engine boundary.
type NavMesh interface {
	LoadTile(mapID uint32, x, y int) bool
	UnloadTile(mapID uint32, x, y int)
	UnloadMap(mapID uint32)
	IsTileLoaded(mapID uint32, x, y int) bool
}

// DisabledCollisionMesh answers every probe with "no data".
type DisabledCollisionMesh struct{}

func (DisabledCollisionMesh) IsTileLoaded(uint32, int, int) bool { return false }
func (DisabledCollisionMesh) LoadTile(string, uint32, int, int) LoadResult {
	return LoadResultIgnored
}
func (DisabledCollisionMesh) UnloadTile(uint32, int, int) {}
func (DisabledCollisionMesh) UnloadMap(uint32)            {}
func (DisabledCollisionMesh) Height(uint32, float32, float32, float32, float32) float32 {
	return InvalidMeshHeight
}
func (DisabledCollisionMesh) GetAreaInfo(uint32, float32, float32, *float32) (AreaInfo, bool) {
	return AreaInfo{}, false
}
func (DisabledCollisionMesh) GetLiquidLevel(uint32, float32, float32, float32, uint8) (float32, float32, uint32, bool) {
	return InvalidMeshHeight, InvalidMeshHeight, 0, false
}
func (DisabledCollisionMesh) HeightCalcEnabled() bool                  { return false }
func (DisabledCollisionMesh) TileLoadingEnabled() bool                 { return false }
func (DisabledCollisionMesh) ExistsTile(string, uint32, int, int) bool { return true }
func (DisabledCollisionMesh) TileFileName(mapID uint32, x, y int) string {
	return ""
}

// DisabledNavMesh loads nothing and reports nothing loaded.
type DisabledNavMesh struct{}

func (DisabledNavMesh) LoadTile(uint32, int, int) bool     { return false }
func (DisabledNavMesh) UnloadTile(uint32, int, int)        {}
func (DisabledNavMesh) UnloadMap(uint32)                   {}
func (DisabledNavMesh) IsTileLoaded(uint32, int, int) bool { return false }
