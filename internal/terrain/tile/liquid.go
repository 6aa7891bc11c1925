package tile

import "terragrid/internal/gamedata"

// LiquidStatus classifies the point (x, y, z) against the tile's liquid
// data. The per-cell type (or the tile-wide fallback) is resolved through
// the liquid-type table, applying any area-specific liquid override, then
// matched against the caller's required-type mask. Points outside the liquid
// sub-window, below ground, or more than 2 units under ground are dry.
//
// The classification ladder relative to delta = level - z is load-bearing:
// delta > collisionHeight is under water, > 0 in water, > -1 water-walk,
// anything else above water.
func (t *Tile) LiquidStatus(db *gamedata.Store, mapID uint32, x, y, z float32, reqTypeMask uint8, data *LiquidData, collisionHeight float32) LiquidStatus {
	if t.liquidFlags == nil && t.liquidGlobalFlags == 0 {
		return LiquidNoWater
	}

	cx := float32(HeightRes) * (CenterTile - x/TileSize)
	cy := float32(HeightRes) * (CenterTile - y/TileSize)
	ix := int(cx) & (HeightRes - 1)
	iy := int(cy) & (HeightRes - 1)

	// Liquid-type cells are 8x8 height samples.
	idx := (ix>>3)*CellRes + (iy >> 3)
	typeFlags := t.liquidGlobalFlags
	entry := uint32(t.liquidGlobalEntry)
	if t.liquidFlags != nil {
		typeFlags = t.liquidFlags[idx]
	}
	if t.liquidEntry != nil {
		entry = uint32(t.liquidEntry[idx])
	}

	if liq := db.LiquidTypeByID(entry); liq != nil {
		entry = liq.ID
		typeFlags &= LiquidTypeDeepWater
		liqTypeIdx := liq.Type
		if entry < 21 {
			if area := db.AreaByFlagAndMap(t.Area(x, y), mapID); area != nil {
				override := area.LiquidOverrideFor(entry)
				if override == 0 && area.Zone != 0 {
					override = db.AreaByID(area.Zone).LiquidOverrideFor(entry)
				}
				if liq := db.LiquidTypeByID(override); liq != nil {
					entry = override
					liqTypeIdx = liq.Type
				}
			}
		}
		typeFlags |= (1 << liqTypeIdx) | (typeFlags & LiquidTypeDeepWater)
	}

	if typeFlags == 0 {
		return LiquidNoWater
	}
	if reqTypeMask != 0 && reqTypeMask&typeFlags == 0 {
		return LiquidNoWater
	}

	// Same axis swap as LiquidLevel: the window origin is stored transposed
	// relative to the sample lattice.
	lx := ix - int(t.liquidOffY)
	if lx < 0 || lx >= int(t.liquidHeight) {
		return LiquidNoWater
	}
	ly := iy - int(t.liquidOffX)
	if ly < 0 || ly >= int(t.liquidWidth) {
		return LiquidNoWater
	}

	level := t.liquidLevel
	if t.liquidMap != nil {
		level = t.liquidMap[lx*int(t.liquidWidth)+ly]
	}

	groundLevel := t.Height(x, y)
	if level < groundLevel || z < groundLevel-2 {
		return LiquidNoWater
	}

	if data != nil {
		data.Entry = entry
		data.TypeFlags = typeFlags
		data.Level = level
		data.DepthLevel = groundLevel
	}

	delta := level - z
	switch {
	case delta > collisionHeight:
		return LiquidUnderWater
	case delta > 0:
		return LiquidInWater
	case delta > -1:
		return LiquidWaterWalk
	default:
		return LiquidAboveWater
	}
}
