// Package gamedata holds the static lookup tables the terrain engine consults
// when classifying liquids and resolving area identity: liquid types, area
// records, map records and WMO area records. The tables are read-only after
// construction; they can be filled in memory or loaded from a sqlite database.
package gamedata

// LiquidTypeEntry classifies one liquid entry id.
type LiquidTypeEntry struct {
	ID   uint32
	Name string
	// Type is the classification index; the engine turns it into a type
	// flag bit via 1<<Type (0=water, 1=ocean, 2=magma, 3=slime).
	Type uint8
}

// AreaEntry is one row of the area table. Names are indexed by locale.
type AreaEntry struct {
	ID          uint32
	MapID       uint32
	Zone        uint32 // parent zone area id, 0 for top-level zones
	ExploreFlag uint16
	Flags       uint32
	Names       []string
	// LiquidOverrides maps liquid entry id-1 to a replacement liquid entry.
	// Only entries below 21 are overridable; missing slots mean no override.
	LiquidOverrides []uint32
}

// Name returns the locale-specific area name, or "" when absent.
func (a *AreaEntry) Name(locale int) string {
	if a == nil || locale < 0 || locale >= len(a.Names) {
		return ""
	}
	return a.Names[locale]
}

// LiquidOverrideFor returns the override liquid entry for the given liquid
// entry id, or 0 when none is configured.
func (a *AreaEntry) LiquidOverrideFor(entry uint32) uint32 {
	if a == nil || entry == 0 || int(entry-1) >= len(a.LiquidOverrides) {
		return 0
	}
	return a.LiquidOverrides[entry-1]
}

// MapEntry is one row of the map table.
type MapEntry struct {
	ID       uint32
	AreaFlag uint16 // fallback area flag when no tile data exists
	Names    []string
}

// Name returns the locale-specific map name, or "" when absent.
func (m *MapEntry) Name(locale int) string {
	if m == nil || locale < 0 || locale >= len(m.Names) {
		return ""
	}
	return m.Names[locale]
}

// WMOAreaEntry names an interior area identified by the collision mesh
// (rootID, adtID, groupID) triple.
type WMOAreaEntry struct {
	RootID  int32
	AdtID   int32
	GroupID int32
	AreaID  uint32
	Names   []string
}

// Name returns the locale-specific WMO area name, or "" when absent.
func (w *WMOAreaEntry) Name(locale int) string {
	if w == nil || locale < 0 || locale >= len(w.Names) {
		return ""
	}
	return w.Names[locale]
}

type areaFlagKey struct {
	flag  uint16
	mapID uint32
}

type wmoTriple struct {
	rootID  int32
	adtID   int32
	groupID int32
}

// Store is the immutable-after-fill table set.
type Store struct {
	liquids     map[uint32]*LiquidTypeEntry
	areasByID   map[uint32]*AreaEntry
	areasByFlag map[areaFlagKey]*AreaEntry
	maps        map[uint32]*MapEntry
	wmoAreas    map[wmoTriple][]*WMOAreaEntry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		liquids:     map[uint32]*LiquidTypeEntry{},
		areasByID:   map[uint32]*AreaEntry{},
		areasByFlag: map[areaFlagKey]*AreaEntry{},
		maps:        map[uint32]*MapEntry{},
		wmoAreas:    map[wmoTriple][]*WMOAreaEntry{},
	}
}

// AddLiquidType registers one liquid type row.
func (s *Store) AddLiquidType(e LiquidTypeEntry) {
	cp := e
	s.liquids[e.ID] = &cp
}

// AddArea registers one area row under both its id and (flag, map) keys.
func (s *Store) AddArea(e AreaEntry) {
	cp := e
	s.areasByID[e.ID] = &cp
	s.areasByFlag[areaFlagKey{flag: e.ExploreFlag, mapID: e.MapID}] = &cp
}

// AddMap registers one map row.
func (s *Store) AddMap(e MapEntry) {
	cp := e
	s.maps[e.ID] = &cp
}

// AddWMOArea registers one WMO area row.
func (s *Store) AddWMOArea(e WMOAreaEntry) {
	cp := e
	k := wmoTriple{rootID: e.RootID, adtID: e.AdtID, groupID: e.GroupID}
	s.wmoAreas[k] = append(s.wmoAreas[k], &cp)
}

// LiquidTypeByID looks up a liquid type row, nil when absent.
func (s *Store) LiquidTypeByID(id uint32) *LiquidTypeEntry {
	if s == nil {
		return nil
	}
	return s.liquids[id]
}

// AreaByID looks up an area row by id, nil when absent.
func (s *Store) AreaByID(id uint32) *AreaEntry {
	if s == nil {
		return nil
	}
	return s.areasByID[id]
}

// AreaByFlagAndMap looks up an area row by its explore flag and map id,
// nil when absent.
func (s *Store) AreaByFlagAndMap(flag uint16, mapID uint32) *AreaEntry {
	if s == nil {
		return nil
	}
	return s.areasByFlag[areaFlagKey{flag: flag, mapID: mapID}]
}

// MapByID looks up a map row, nil when absent.
func (s *Store) MapByID(id uint32) *MapEntry {
	if s == nil {
		return nil
	}
	return s.maps[id]
}

// WMOAreasByTriple returns all WMO area rows for a (root, adt, group) triple.
func (s *Store) WMOAreasByTriple(rootID, adtID, groupID int32) []*WMOAreaEntry {
	if s == nil {
		return nil
	}
	return s.wmoAreas[wmoTriple{rootID: rootID, adtID: adtID, groupID: groupID}]
}
