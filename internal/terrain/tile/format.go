// Package tile decodes one binary terrain tile file into memory and answers
// the grid-only spatial queries: ground height, area identity, holes, liquid
// level and liquid classification. One tile covers a TileSize x TileSize
// square of the world; a map is a 64x64 arrangement of tiles.
package tile

// World/grid geometry. Continuous world coordinates map to tile coordinates
// with coord = TilesPerSide/2 - world/TileSize; sub-tile addressing masks
// against the (power of two) resolution.
const (
	TilesPerSide = 64
	CenterTile   = TilesPerSide / 2
	TileSize     = 533.33333 // world units per tile side

	HeightRes = 128 // center height samples per tile side (corner grid is 129)
	CellRes   = 16  // area / liquid-type cells per tile side
)

// Height sentinels. InvalidHeightValue is what queries return for holes and
// absent data; InvalidHeight is the threshold callers compare against ("is
// this a real height").
const (
	InvalidHeight      float32 = -100000.0
	InvalidHeightValue float32 = -200000.0
)

// Search distances for fused height/liquid probes.
const (
	DefaultHeightSearch    float32 = 10.0
	DefaultWaterSearch     float32 = 50.0
	DefaultCollisionHeight float32 = 2.03128
)

// File layout tags. The version tag is versioned independently of the format
// tag: bumping the layout of any section bumps the version only.
var (
	fileMagic    = [4]byte{'M', 'A', 'P', 'S'}
	versionMagic = [4]byte{'v', '1', '.', '4'}
	areaMagic    = [4]byte{'A', 'R', 'E', 'A'}
	heightMagic  = [4]byte{'M', 'H', 'G', 'T'}
	holesMagic   = [4]byte{'M', 'H', 'O', 'L'}
	liquidMagic  = [4]byte{'M', 'L', 'I', 'Q'}
)

// Section flag bits.
const (
	areaFlagNoArea uint16 = 0x0001

	heightFlagNoHeight uint32 = 0x0001
	heightFlagAsInt16  uint32 = 0x0002
	heightFlagAsInt8   uint32 = 0x0004

	liquidFlagNoType   uint8 = 0x0001
	liquidFlagNoHeight uint8 = 0x0002
)

// Liquid type flag bits, as stored per cell and matched against a caller's
// required-type mask.
const (
	LiquidTypeNoWater   uint8 = 0x00
	LiquidTypeWater     uint8 = 0x01
	LiquidTypeOcean     uint8 = 0x02
	LiquidTypeMagma     uint8 = 0x04
	LiquidTypeSlime     uint8 = 0x08
	LiquidTypeAll       uint8 = 0x0F
	LiquidTypeDarkWater uint8 = 0x10
	LiquidTypeDeepWater uint8 = 0x40
)

// LiquidStatus classifies a point relative to a liquid surface. The values
// form a bitmask so callers can test families of states in one AND.
type LiquidStatus uint8

const (
	LiquidNoWater    LiquidStatus = 0x00
	LiquidAboveWater LiquidStatus = 0x01
	LiquidWaterWalk  LiquidStatus = 0x02
	LiquidInWater    LiquidStatus = 0x04
	LiquidUnderWater LiquidStatus = 0x08
)

func (s LiquidStatus) String() string {
	switch s {
	case LiquidNoWater:
		return "no_water"
	case LiquidAboveWater:
		return "above_water"
	case LiquidWaterWalk:
		return "water_walk"
	case LiquidInWater:
		return "in_water"
	case LiquidUnderWater:
		return "under_water"
	}
	return "unknown"
}

// LiquidData carries the details of a successful liquid classification.
type LiquidData struct {
	Entry      uint32  // liquid entry id (after any area override)
	TypeFlags  uint8   // LiquidType* bits
	Level      float32 // liquid surface height
	DepthLevel float32 // ground height under the liquid
}

// Hole sub-cell selectors: each 8x8-sample macro cell carries a 16-bit mask
// where one bit marks one 2x2-sample hole. Nibble-per-row layout.
var (
	holetabH = [4]uint16{0x1111, 0x2222, 0x4444, 0x8888}
	holetabV = [4]uint16{0x000F, 0x00F0, 0x0F00, 0xF000}
)

// On-disk header shapes (little-endian, written field by field).

type fileHeader struct {
	MapMagic     [4]byte
	VersionMagic [4]byte
	AreaOffset   uint32
	AreaSize     uint32
	HeightOffset uint32
	HeightSize   uint32
	LiquidOffset uint32
	LiquidSize   uint32
	HolesOffset  uint32
	HolesSize    uint32
}

type areaHeader struct {
	Fourcc   [4]byte
	Flags    uint16
	GridArea uint16
}

type heightHeader struct {
	Fourcc        [4]byte
	Flags         uint32
	GridHeight    float32
	GridMaxHeight float32
}

type holesHeader struct {
	Fourcc [4]byte
	Flags  uint32 // reserved
}

type liquidHeader struct {
	Fourcc      [4]byte
	Flags       uint8
	LiquidFlags uint8
	LiquidType  uint16
	OffsetX     uint8
	OffsetY     uint8
	Width       uint8
	Height      uint8
	LiquidLevel float32
}
