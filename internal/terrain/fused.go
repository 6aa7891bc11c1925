package terrain

import (
	"math"

	"terragrid/internal/gamedata"
	"terragrid/internal/terrain/mesh"
	"terragrid/internal/terrain/tile"
)

// Fused queries: grid tile data combined with the collision-mesh engine.
// Callers that only ever need raw grid answers can use the tile package
// directly; everything position-sensitive in a running server goes through
// these.

// Height returns the floor height at (x, y) near z. The grid surface and a
// collision-mesh probe are fused: the mesh wins when the point is already
// under the grid surface or the mesh floor lies above it, since either means
// the point is inside modeled geometry. useMesh false restricts the answer to
// grid data. maxSearchDist bounds the initial downward mesh probe; pass
// tile.DefaultHeightSearch when in doubt.
func (c *TileCache) Height(x, y, z float32, useMesh bool, maxSearchDist float32) float32 {
	mapHeight := tile.InvalidHeightValue
	if t := c.grid(x, y, false); t != nil {
		mapHeight = t.Height(x, y)
	}

	meshHeight := mesh.InvalidMeshHeight
	if useMesh && c.opts.Collision.HeightCalcEnabled() {
		z2 := z + 2

		// When the grid surface is far below z the mesh probe must reach at
		// least that far, or a unit standing high above ground would miss
		// the floor entirely.
		if mapHeight > tile.InvalidHeight && z2-mapHeight > maxSearchDist {
			maxSearchDist = z2 - mapHeight + 1
		}

		meshHeight = c.opts.Collision.Height(c.mapID, x, y, z2, maxSearchDist)

		// Not in range: retry unbounded (far above a modeled floor that is
		// still below the grid surface).
		if meshHeight <= tile.InvalidHeight {
			meshHeight = c.opts.Collision.Height(c.mapID, x, y, z2, 10000)
		}

		// Probe upward when the grid surface is well above us.
		if meshHeight <= tile.InvalidHeight && mapHeight > z2 && abs32(z2-mapHeight) > 30 {
			meshHeight = c.opts.Collision.Height(c.mapID, x, y, z2, -maxSearchDist)
		}

		// Last resort: probe just above the grid surface.
		if meshHeight <= tile.InvalidHeight && mapHeight > tile.InvalidHeight && z2 < mapHeight {
			meshHeight = c.opts.Collision.Height(c.mapID, x, y, mapHeight+2, tile.DefaultHeightSearch)
		}
	}

	if meshHeight > tile.InvalidHeight {
		if mapHeight > tile.InvalidHeight {
			if z < mapHeight || meshHeight > mapHeight {
				return meshHeight
			}
			return mapHeight
		}
		return meshHeight
	}
	return mapHeight
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

// CanCheckLiquidLevel reports whether any data source can answer liquid
// queries at (x, y).
func (c *TileCache) CanCheckLiquidLevel(x, y float32) bool {
	if c.opts.Collision.HeightCalcEnabled() {
		return true
	}
	return c.grid(x, y, false) != nil
}

// LiquidStatus classifies (x, y, z) against both liquid sources. A mesh
// (interior) liquid volume wins when present; otherwise the grid tile
// answers, with its surface checked against the fused ground height so a
// liquid level under the real floor never counts.
func (c *TileCache) LiquidStatus(x, y, z float32, reqTypeMask uint8, data *tile.LiquidData, collisionHeight float32) tile.LiquidStatus {
	result := tile.LiquidNoWater
	groundLevel := c.Height(x, y, z, true, tile.DefaultWaterSearch)

	if level, ground, liquidType, ok := c.opts.Collision.GetLiquidLevel(c.mapID, x, y, z, reqTypeMask); ok {
		groundLevel = ground
		if level > groundLevel && z > groundLevel-2 {
			if data != nil {
				var typeIdx uint8
				if liq := c.opts.GameData.LiquidTypeByID(liquidType); liq != nil {
					typeIdx = liq.Type
				}
				if liquidType != 0 && liquidType < 21 {
					if area := c.opts.GameData.AreaByFlagAndMap(c.AreaFlag(x, y, z, nil), c.mapID); area != nil {
						override := area.LiquidOverrideFor(liquidType)
						if override == 0 && area.Zone != 0 {
							override = c.opts.GameData.AreaByID(area.Zone).LiquidOverrideFor(liquidType)
						}
						if liq := c.opts.GameData.LiquidTypeByID(override); liq != nil {
							liquidType = override
							typeIdx = liq.Type
						}
					}
				}

				data.Entry = liquidType
				data.TypeFlags = 1 << typeIdx
				data.Level = level
				data.DepthLevel = groundLevel
			}

			delta := level - z
			switch {
			case delta > collisionHeight:
				return tile.LiquidUnderWater
			case delta > 0:
				return tile.LiquidInWater
			case delta > -1:
				return tile.LiquidWaterWalk
			}
			result = tile.LiquidAboveWater
		}
	} else if t := c.grid(x, y, false); t != nil {
		var gridData tile.LiquidData
		gridResult := t.LiquidStatus(c.opts.GameData, c.mapID, x, y, z, reqTypeMask, &gridData, collisionHeight)
		// Keep an above-water verdict over the grid's no-water.
		if gridResult != tile.LiquidNoWater && gridData.Level > groundLevel {
			if data != nil {
				*data = gridData
			}
			return gridResult
		}
	}
	return result
}

// outdoorWMO reports whether an interior volume's flags still count as
// outdoors; map 530 honors an extra flyable bit.
func outdoorWMO(flags uint32, mapID uint32) bool {
	if mapID == 530 {
		return flags&0x8008 != 0
	}
	return flags&0x8000 != 0
}

// IsOutdoors reports whether (x, y, z) is in the open: no interior volume,
// or one flagged as open air.
func (c *TileCache) IsOutdoors(x, y, z float32) bool {
	info, ok := c.AreaInfo(x, y, z)
	if !ok {
		return true
	}
	return outdoorWMO(info.Flags, c.mapID)
}

// AreaInfo resolves the interior volume at (x, y, z) via the collision mesh.
// A hit is rejected when the grid surface lies between z and the volume's
// floor: the point is then above ground that occludes the interior.
func (c *TileCache) AreaInfo(x, y, z float32) (info mesh.AreaInfo, ok bool) {
	vz := z
	info, ok = c.opts.Collision.GetAreaInfo(c.mapID, x, y, &vz)
	if !ok {
		return info, false
	}
	if t := c.grid(x, y, false); t != nil {
		if mapHeight := t.Height(x, y); z+2 > mapHeight && mapHeight > vz {
			return info, false
		}
	}
	return info, true
}

// UnknownAreaName is returned when no table carries a name for the position.
const UnknownAreaName = "<unknown>"

// AreaName resolves the localized area name at (x, y, z): interior (WMO)
// tables first, then the grid area flag against the area table.
func (c *TileCache) AreaName(x, y, z float32, locale int) string {
	if info, ok := c.AreaInfo(x, y, z); ok {
		wmoEntries := c.opts.GameData.WMOAreasByTriple(info.RootID, info.AdtID, info.GroupID)
		if len(wmoEntries) > 0 {
			if name := wmoEntries[0].Name(locale); name != "" {
				return name
			}
			// Unnamed WMO rows defer to their parent area.
			if name := c.opts.GameData.AreaByID(wmoEntries[0].AreaID).Name(locale); name != "" {
				return name
			}
		}
	}

	if t := c.grid(x, y, true); t != nil {
		entry := c.opts.GameData.AreaByFlagAndMap(t.Area(x, y), c.mapID)
		if name := entry.Name(locale); name != "" {
			return name
		}
	}
	return UnknownAreaName
}

// AreaFlag resolves the area flag at (x, y, z): an interior volume's area
// row when the mesh identifies one on this map, else the grid tile, else the
// map table's fallback flag (maps shipped without tile files). When
// isOutdoors is non-nil it receives the open-air verdict as a side product.
func (c *TileCache) AreaFlag(x, y, z float32, isOutdoors *bool) uint16 {
	var atEntry *gamedata.AreaEntry
	haveAreaInfo := false
	var wmoFlags uint32

	if info, ok := c.AreaInfo(x, y, z); ok {
		haveAreaInfo = true
		wmoFlags = info.Flags
		for _, wmoEntry := range c.opts.GameData.WMOAreasByTriple(info.RootID, info.AdtID, info.GroupID) {
			if areaEntry := c.opts.GameData.AreaByID(wmoEntry.AreaID); areaEntry != nil && areaEntry.MapID == c.mapID {
				atEntry = areaEntry
			}
		}
	}

	var areaFlag uint16
	switch {
	case atEntry != nil:
		areaFlag = atEntry.ExploreFlag
	default:
		if t := c.grid(x, y, true); t != nil {
			areaFlag = t.Area(x, y)
		} else if m := c.opts.GameData.MapByID(c.mapID); m != nil {
			areaFlag = m.AreaFlag
		}
	}

	if isOutdoors != nil {
		*isOutdoors = !haveAreaInfo || outdoorWMO(wmoFlags, c.mapID)
	}
	return areaFlag
}

// TerrainType returns the grid liquid type flags at (x, y), 0 when no tile
// covers the point.
func (c *TileCache) TerrainType(x, y float32) uint8 {
	if t := c.grid(x, y, false); t != nil {
		return t.TerrainType(x, y)
	}
	return 0
}

// AreaID resolves the area table id at (x, y, z), 0 when unknown.
func (c *TileCache) AreaID(x, y, z float32) uint32 {
	return AreaIDByFlag(c.opts.GameData, c.AreaFlag(x, y, z, nil), c.mapID)
}

// ZoneID resolves the enclosing zone id at (x, y, z), 0 when unknown.
func (c *TileCache) ZoneID(x, y, z float32) uint32 {
	return ZoneIDByFlag(c.opts.GameData, c.AreaFlag(x, y, z, nil), c.mapID)
}

// ZoneAndArea resolves both ids in one area-flag lookup.
func (c *TileCache) ZoneAndArea(x, y, z float32) (zoneID, areaID uint32) {
	return ZoneAndAreaIDByFlag(c.opts.GameData, c.AreaFlag(x, y, z, nil), c.mapID)
}

// AreaIDByFlag maps an area flag to its area table id, 0 when absent.
func AreaIDByFlag(db *gamedata.Store, flag uint16, mapID uint32) uint32 {
	if entry := db.AreaByFlagAndMap(flag, mapID); entry != nil {
		return entry.ID
	}
	return 0
}

// ZoneIDByFlag maps an area flag to its enclosing zone id: the area's parent
// zone, or the area itself when it is a top-level zone.
func ZoneIDByFlag(db *gamedata.Store, flag uint16, mapID uint32) uint32 {
	if entry := db.AreaByFlagAndMap(flag, mapID); entry != nil {
		if entry.Zone != 0 {
			return entry.Zone
		}
		return entry.ID
	}
	return 0
}

// ZoneAndAreaIDByFlag resolves both ids from one lookup.
func ZoneAndAreaIDByFlag(db *gamedata.Store, flag uint16, mapID uint32) (zoneID, areaID uint32) {
	entry := db.AreaByFlagAndMap(flag, mapID)
	if entry == nil {
		return 0, 0
	}
	areaID = entry.ID
	zoneID = entry.ID
	if entry.Zone != 0 {
		zoneID = entry.Zone
	}
	return zoneID, areaID
}

// IsInWater reports whether (x, y, z) touches any liquid. data, when
// non-nil, receives the classification details.
func (c *TileCache) IsInWater(x, y, z float32, data *tile.LiquidData) bool {
	if !c.CanCheckLiquidLevel(x, y) {
		return false
	}
	var scratch tile.LiquidData
	if data == nil {
		data = &scratch
	}
	return c.LiquidStatus(x, y, z, tile.LiquidTypeAll, data, tile.DefaultCollisionHeight) != tile.LiquidNoWater
}

// IsSwimmable reports whether a unit of the given radius has enough liquid
// depth to swim at (x, y, z).
func (c *TileCache) IsSwimmable(x, y, z, radius float32, data *tile.LiquidData) bool {
	if !c.CanCheckLiquidLevel(x, y) {
		return false
	}
	var scratch tile.LiquidData
	if data == nil {
		data = &scratch
	}
	if c.LiquidStatus(x, y, z, tile.LiquidTypeAll, data, tile.DefaultCollisionHeight) != tile.LiquidNoWater {
		return data.Level-data.DepthLevel > radius
	}
	return false
}

// IsUnderWater reports whether (x, y, z) is fully submerged in water or
// ocean, returning the surface level on a hit.
func (c *TileCache) IsUnderWater(x, y, z float32) (waterZ float32, under bool) {
	if !c.CanCheckLiquidLevel(x, y) {
		return 0, false
	}
	var data tile.LiquidData
	status := c.LiquidStatus(x, y, z, tile.LiquidTypeWater|tile.LiquidTypeOcean, &data, tile.DefaultCollisionHeight)
	if status&tile.LiquidUnderWater != 0 {
		return data.Level, true
	}
	return 0, false
}

// WaterLevel returns the liquid surface height at (x, y) near z, or
// InvalidHeightValue when the point is dry. ground, when non-nil, receives
// the fused ground height used for the check.
func (c *TileCache) WaterLevel(x, y, z float32, ground *float32) float32 {
	if !c.CanCheckLiquidLevel(x, y) {
		return tile.InvalidHeightValue
	}

	groundZ := c.Height(x, y, z, true, tile.DefaultWaterSearch)
	if ground != nil {
		*ground = groundZ
	}

	var data tile.LiquidData
	if c.LiquidStatus(x, y, groundZ, tile.LiquidTypeAll, &data, tile.DefaultCollisionHeight) == tile.LiquidNoWater {
		return tile.InvalidHeightValue
	}
	return data.Level
}

// WaterOrGroundLevel returns the walk/swim reference height at (x, y) for a
// precomputed groundZ: the liquid surface when the point is wet, the ground
// otherwise. With swim set, deep water answers just below the surface so a
// bottom-walking unit is not flagged as swimming; shallow water (less than
// minWaterDeep) answers the ground under it.
func (c *TileCache) WaterOrGroundLevel(x, y, groundZ float32, swim bool, minWaterDeep float32) float32 {
	if !c.CanCheckLiquidLevel(x, y) {
		return tile.InvalidHeightValue
	}

	var data tile.LiquidData
	if c.LiquidStatus(x, y, groundZ, tile.LiquidTypeAll, &data, tile.DefaultCollisionHeight) == tile.LiquidNoWater {
		return groundZ
	}
	if swim {
		if data.Level-groundZ > minWaterDeep {
			return data.Level - minWaterDeep
		}
		return groundZ
	}
	return data.Level
}
