package terrain

import (
	"fmt"
	"sync"

	"terragrid/internal/terrain/mesh"
)

// fakeCollision is a scriptable CollisionMesh for cache and fusion tests.
type fakeCollision struct {
	mu     sync.Mutex
	loaded map[[3]int]bool

	heightEnabled bool
	heightFn      func(z, maxSearchDist float32) float32

	liquidOK    bool
	liquidLevel float32
	liquidGround float32
	liquidType  uint32

	areaOK   bool
	areaInfo mesh.AreaInfo
	areaZ    float32

	loadResult  mesh.LoadResult
	loads       int
	tileUnloads int
	mapUnloads  int
}

func newFakeCollision() *fakeCollision {
	return &fakeCollision{loaded: map[[3]int]bool{}, loadResult: mesh.LoadResultOK}
}

func (f *fakeCollision) key(mapID uint32, x, y int) [3]int { return [3]int{int(mapID), x, y} }

func (f *fakeCollision) IsTileLoaded(mapID uint32, x, y int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded[f.key(mapID, x, y)]
}

func (f *fakeCollision) LoadTile(dataRoot string, mapID uint32, x, y int) mesh.LoadResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadResult == mesh.LoadResultOK {
		f.loaded[f.key(mapID, x, y)] = true
	}
	return f.loadResult
}

func (f *fakeCollision) UnloadTile(mapID uint32, x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tileUnloads++
	delete(f.loaded, f.key(mapID, x, y))
}

func (f *fakeCollision) UnloadMap(mapID uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mapUnloads++
	for k := range f.loaded {
		if k[0] == int(mapID) {
			delete(f.loaded, k)
		}
	}
}

func (f *fakeCollision) Height(mapID uint32, x, y, z, maxSearchDist float32) float32 {
	if f.heightFn != nil {
		return f.heightFn(z, maxSearchDist)
	}
	return mesh.InvalidMeshHeight
}

func (f *fakeCollision) GetAreaInfo(mapID uint32, x, y float32, z *float32) (mesh.AreaInfo, bool) {
	if !f.areaOK {
		return mesh.AreaInfo{}, false
	}
	*z = f.areaZ
	return f.areaInfo, true
}

func (f *fakeCollision) GetLiquidLevel(mapID uint32, x, y, z float32, reqTypeMask uint8) (float32, float32, uint32, bool) {
	if !f.liquidOK {
		return mesh.InvalidMeshHeight, mesh.InvalidMeshHeight, 0, false
	}
	return f.liquidLevel, f.liquidGround, f.liquidType, true
}

func (f *fakeCollision) HeightCalcEnabled() bool  { return f.heightEnabled }
func (f *fakeCollision) TileLoadingEnabled() bool { return true }

func (f *fakeCollision) ExistsTile(dataRoot string, mapID uint32, x, y int) bool { return true }

func (f *fakeCollision) TileFileName(mapID uint32, x, y int) string {
	return fmt.Sprintf("%03d_%02d_%02d.vmtile", mapID, x, y)
}

// fakeNav counts NavMesh traffic.
type fakeNav struct {
	mu     sync.Mutex
	loaded map[[3]int]bool

	loads       int
	tileUnloads int
	mapUnloads  int
}

func newFakeNav() *fakeNav { return &fakeNav{loaded: map[[3]int]bool{}} }

func (f *fakeNav) LoadTile(mapID uint32, x, y int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	f.loaded[[3]int{int(mapID), x, y}] = true
	return true
}

func (f *fakeNav) UnloadTile(mapID uint32, x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tileUnloads++
	delete(f.loaded, [3]int{int(mapID), x, y})
}

func (f *fakeNav) UnloadMap(mapID uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mapUnloads++
}

func (f *fakeNav) IsTileLoaded(mapID uint32, x, y int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded[[3]int{int(mapID), x, y}]
}
