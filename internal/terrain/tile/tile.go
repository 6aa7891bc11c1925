package tile

import (
	"fmt"
	"sync/atomic"
)

type heightKind uint8

const (
	heightFlat heightKind = iota
	heightFloat32
	heightUint8
	heightUint16
)

func (k heightKind) String() string {
	switch k {
	case heightFlat:
		return "flat"
	case heightFloat32:
		return "float32"
	case heightUint8:
		return "uint8"
	case heightUint16:
		return "uint16"
	}
	return "unknown"
}

// Tile is one decoded terrain tile. Every section is either fully present or
// fully absent; queries on an empty tile return the documented sentinels.
// A Tile is immutable once decoded (only the fully-loaded marker flips), so
// it is safe to share between query threads.
type Tile struct {
	// Area section.
	gridArea uint16
	areaMap  []uint16 // CellRes*CellRes, nil when the tile is uniform

	// Height section. Exactly one encoding is active; the others' arrays
	// stay nil for the tile's lifetime.
	heightKind heightKind
	gridHeight float32 // flat height, and quantization base
	maxHeight  float32 // quantization ceiling, kept for re-encoding
	multiplier float32 // quantized raw -> world units
	v9f        []float32
	v8f        []float32
	v9b        []uint8
	v8b        []uint8
	v9s        []uint16
	v8s        []uint16

	// Holes section.
	holes *[CellRes][CellRes]uint16

	// Liquid section: scalar fallback plus optional per-cell types and an
	// optional per-sample level sub-window.
	liquidGlobalEntry uint16
	liquidGlobalFlags uint8
	liquidOffX        uint8
	liquidOffY        uint8
	liquidWidth       uint8
	liquidHeight      uint8
	liquidLevel       float32
	liquidEntry       []uint16 // CellRes*CellRes
	liquidFlags       []uint8  // CellRes*CellRes
	liquidMap         []float32

	// Set once the collision and navigation meshes for this tile's region
	// are registered too, distinguishing the map-only fast path.
	fullyLoaded atomic.Bool
}

// New returns an empty tile: all sections absent, flat invalid height.
func New() *Tile {
	return &Tile{
		heightKind:  heightFlat,
		gridHeight:  InvalidHeightValue,
		liquidLevel: InvalidHeightValue,
	}
}

// SetFullyLoaded marks the tile as backed by mesh-engine data as well.
func (t *Tile) SetFullyLoaded() { t.fullyLoaded.Store(true) }

// FullyLoaded reports whether the tile was loaded in full (not map-only) mode.
func (t *Tile) FullyLoaded() bool { return t.fullyLoaded.Load() }

// SetAreaUniform installs an area section with a single tile-wide area flag.
func (t *Tile) SetAreaUniform(gridArea uint16) {
	t.gridArea = gridArea
	t.areaMap = nil
}

// SetAreaGrid installs a per-cell area section.
func (t *Tile) SetAreaGrid(cells []uint16) error {
	if len(cells) != CellRes*CellRes {
		return fmt.Errorf("area grid must have %d cells, got %d", CellRes*CellRes, len(cells))
	}
	t.areaMap = cells
	return nil
}

// SetFlatHeight installs a height section with a single tile-wide height.
func (t *Tile) SetFlatHeight(h float32) {
	t.heightKind = heightFlat
	t.gridHeight = h
	t.v9f, t.v8f, t.v9b, t.v8b, t.v9s, t.v8s = nil, nil, nil, nil, nil, nil
}

// SetHeightFloat32 installs dense float height grids: v9 is the 129x129
// corner lattice, v8 the 128x128 center lattice.
func (t *Tile) SetHeightFloat32(v9, v8 []float32) error {
	if err := checkGridSizes(len(v9), len(v8)); err != nil {
		return err
	}
	t.heightKind = heightFloat32
	t.v9f, t.v8f = v9, v8
	t.v9b, t.v8b, t.v9s, t.v8s = nil, nil, nil, nil
	return nil
}

// SetHeightUint8 installs 8-bit quantized height grids; samples decode as
// raw*(max-base)/255 + base.
func (t *Tile) SetHeightUint8(v9, v8 []uint8, base, max float32) error {
	if err := checkGridSizes(len(v9), len(v8)); err != nil {
		return err
	}
	t.heightKind = heightUint8
	t.gridHeight = base
	t.maxHeight = max
	t.multiplier = (max - base) / 255
	t.v9b, t.v8b = v9, v8
	t.v9f, t.v8f, t.v9s, t.v8s = nil, nil, nil, nil
	return nil
}

// SetHeightUint16 installs 16-bit quantized height grids; samples decode as
// raw*(max-base)/65535 + base.
func (t *Tile) SetHeightUint16(v9, v8 []uint16, base, max float32) error {
	if err := checkGridSizes(len(v9), len(v8)); err != nil {
		return err
	}
	t.heightKind = heightUint16
	t.gridHeight = base
	t.maxHeight = max
	t.multiplier = (max - base) / 65535
	t.v9s, t.v8s = v9, v8
	t.v9f, t.v8f, t.v9b, t.v8b = nil, nil, nil, nil
	return nil
}

func checkGridSizes(n9, n8 int) error {
	if n9 != (HeightRes+1)*(HeightRes+1) {
		return fmt.Errorf("corner grid must have %d samples, got %d", (HeightRes+1)*(HeightRes+1), n9)
	}
	if n8 != HeightRes*HeightRes {
		return fmt.Errorf("center grid must have %d samples, got %d", HeightRes*HeightRes, n8)
	}
	return nil
}

// SetHoles installs the hole masks, one 16-bit mask per macro cell.
func (t *Tile) SetHoles(holes [CellRes][CellRes]uint16) {
	cp := holes
	t.holes = &cp
}

// SetLiquidFallback installs the tile-wide liquid scalar fallback.
func (t *Tile) SetLiquidFallback(entry uint16, typeFlags uint8, level float32) {
	t.liquidGlobalEntry = entry
	t.liquidGlobalFlags = typeFlags
	t.liquidLevel = level
}

// SetLiquidGrid installs per-cell liquid entries and type flags.
func (t *Tile) SetLiquidGrid(entries []uint16, flags []uint8) error {
	if len(entries) != CellRes*CellRes || len(flags) != CellRes*CellRes {
		return fmt.Errorf("liquid grid must have %d cells, got %d/%d",
			CellRes*CellRes, len(entries), len(flags))
	}
	t.liquidEntry = entries
	t.liquidFlags = flags
	return nil
}

// SetLiquidWindow positions the per-sample liquid level rectangle within the
// tile. samples may be nil when only the window bounds apply (scalar level).
func (t *Tile) SetLiquidWindow(offX, offY, width, height uint8, samples []float32) error {
	if samples != nil && len(samples) != int(width)*int(height) {
		return fmt.Errorf("liquid window must have %d samples, got %d",
			int(width)*int(height), len(samples))
	}
	t.liquidOffX = offX
	t.liquidOffY = offY
	t.liquidWidth = width
	t.liquidHeight = height
	t.liquidMap = samples
	return nil
}

// cellIndex maps a world coordinate pair to the CellRes-resolution cell.
func cellIndex(x, y float32) (int, int) {
	cx := float32(CellRes) * (CenterTile - x/TileSize)
	cy := float32(CellRes) * (CenterTile - y/TileSize)
	return int(cx) & (CellRes - 1), int(cy) & (CellRes - 1)
}

// Area returns the area flag at (x, y): the uniform tile value when no area
// grid is present, otherwise the per-cell lookup.
func (t *Tile) Area(x, y float32) uint16 {
	if t.areaMap == nil {
		return t.gridArea
	}
	lx, ly := cellIndex(x, y)
	return t.areaMap[lx*CellRes+ly]
}

// IsHole reports whether the 2x2 sub-cell containing height sample
// (row, col) is marked as a hole.
func (t *Tile) IsHole(row, col int) bool {
	if t.holes == nil {
		return false
	}
	cellRow := row / 8 // 8 height samples per macro cell
	cellCol := col / 8
	holeRow := row % 8 / 2
	holeCol := (col - cellCol*8) / 2

	hole := t.holes[cellRow][cellCol]
	return hole&holetabH[holeCol]&holetabV[holeRow] != 0
}

// LiquidLevel returns the liquid surface height at (x, y): the scalar
// fallback when no per-sample window exists, the nearest sample inside the
// window, or InvalidHeightValue outside it. No blending between samples.
func (t *Tile) LiquidLevel(x, y float32) float32 {
	if t.liquidMap == nil {
		return t.liquidLevel
	}

	cx := float32(HeightRes) * (CenterTile - x/TileSize)
	cy := float32(HeightRes) * (CenterTile - y/TileSize)

	// The window origin swaps axes relative to the sample lattice.
	lx := (int(cx) & (HeightRes - 1)) - int(t.liquidOffY)
	ly := (int(cy) & (HeightRes - 1)) - int(t.liquidOffX)

	if lx < 0 || lx >= int(t.liquidHeight) {
		return InvalidHeightValue
	}
	if ly < 0 || ly >= int(t.liquidWidth) {
		return InvalidHeightValue
	}
	return t.liquidMap[lx*int(t.liquidWidth)+ly]
}

// TerrainType returns the liquid type flags at (x, y), or the tile-wide
// fallback when no per-cell grid exists.
func (t *Tile) TerrainType(x, y float32) uint8 {
	if t.liquidFlags == nil {
		return t.liquidGlobalFlags
	}
	lx, ly := cellIndex(x, y)
	return t.liquidFlags[lx*CellRes+ly]
}

// Inspection accessors, used by tooling and the cache's logging.

// HasAreaGrid reports whether a per-cell area grid is present.
func (t *Tile) HasAreaGrid() bool { return t.areaMap != nil }

// GridArea returns the uniform area flag used when no area grid is present.
func (t *Tile) GridArea() uint16 { return t.gridArea }

// HeightEncoding names the active height encoding.
func (t *Tile) HeightEncoding() string { return t.heightKind.String() }

// HasHoles reports whether a holes section is present.
func (t *Tile) HasHoles() bool { return t.holes != nil }

// HasLiquidGrid reports whether per-cell liquid types are present.
func (t *Tile) HasLiquidGrid() bool { return t.liquidFlags != nil }

// HasLiquidSamples reports whether a per-sample liquid window is present.
func (t *Tile) HasLiquidSamples() bool { return t.liquidMap != nil }

// LiquidWindow returns the liquid sub-window placement.
func (t *Tile) LiquidWindow() (offX, offY, width, height int) {
	return int(t.liquidOffX), int(t.liquidOffY), int(t.liquidWidth), int(t.liquidHeight)
}

// Empty reports whether every section is absent.
func (t *Tile) Empty() bool {
	return t.areaMap == nil && t.gridArea == 0 &&
		t.heightKind == heightFlat && t.gridHeight == InvalidHeightValue &&
		t.holes == nil &&
		t.liquidFlags == nil && t.liquidMap == nil && t.liquidGlobalFlags == 0
}
