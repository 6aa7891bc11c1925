package tile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Encode writes the tile to path in the binary tile format, the exact
// inverse of Decode. A path ending in ".zst" produces a zstd-compressed
// file. Present sections are laid out after the file header in load order:
// area, holes, height, liquid.
func Encode(path string, t *Tile) error {
	raw, err := encodeBytes(t)
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".zst") {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		raw = enc.EncodeAll(raw, nil)
		if err := enc.Close(); err != nil {
			return err
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, raw, 0o644)
}

func encodeBytes(t *Tile) ([]byte, error) {
	hdr := fileHeader{
		MapMagic:     fileMagic,
		VersionMagic: versionMagic,
	}

	var body bytes.Buffer
	// Section payloads start right after the fixed file header.
	base := uint32(binary.Size(&hdr))

	put := func(v any) error { return binary.Write(&body, binary.LittleEndian, v) }

	if t.hasAreaSection() {
		hdr.AreaOffset = base + uint32(body.Len())
		ah := areaHeader{Fourcc: areaMagic, GridArea: t.gridArea}
		if t.areaMap == nil {
			ah.Flags |= areaFlagNoArea
		}
		if err := put(&ah); err != nil {
			return nil, err
		}
		if t.areaMap != nil {
			if err := put(t.areaMap); err != nil {
				return nil, err
			}
		}
		hdr.AreaSize = base + uint32(body.Len()) - hdr.AreaOffset
	}

	if t.holes != nil {
		hdr.HolesOffset = base + uint32(body.Len())
		if err := put(&holesHeader{Fourcc: holesMagic}); err != nil {
			return nil, err
		}
		if err := put(t.holes); err != nil {
			return nil, err
		}
		hdr.HolesSize = base + uint32(body.Len()) - hdr.HolesOffset
	}

	if t.hasHeightSection() {
		hdr.HeightOffset = base + uint32(body.Len())
		hh := heightHeader{
			Fourcc:        heightMagic,
			GridHeight:    t.gridHeight,
			GridMaxHeight: t.maxHeight,
		}
		var grids []any
		switch t.heightKind {
		case heightFlat:
			hh.Flags |= heightFlagNoHeight
		case heightUint16:
			hh.Flags |= heightFlagAsInt16
			grids = []any{t.v9s, t.v8s}
		case heightUint8:
			hh.Flags |= heightFlagAsInt8
			grids = []any{t.v9b, t.v8b}
		case heightFloat32:
			grids = []any{t.v9f, t.v8f}
		default:
			return nil, fmt.Errorf("unknown height encoding %d", t.heightKind)
		}
		if err := put(&hh); err != nil {
			return nil, err
		}
		for _, g := range grids {
			if err := put(g); err != nil {
				return nil, err
			}
		}
		hdr.HeightSize = base + uint32(body.Len()) - hdr.HeightOffset
	}

	if t.hasLiquidSection() {
		hdr.LiquidOffset = base + uint32(body.Len())
		lh := liquidHeader{
			Fourcc:      liquidMagic,
			LiquidFlags: t.liquidGlobalFlags,
			LiquidType:  t.liquidGlobalEntry,
			OffsetX:     t.liquidOffX,
			OffsetY:     t.liquidOffY,
			Width:       t.liquidWidth,
			Height:      t.liquidHeight,
			LiquidLevel: t.liquidLevel,
		}
		if t.liquidFlags == nil {
			lh.Flags |= liquidFlagNoType
		}
		if t.liquidMap == nil {
			lh.Flags |= liquidFlagNoHeight
		}
		if err := put(&lh); err != nil {
			return nil, err
		}
		if t.liquidFlags != nil {
			if err := put(t.liquidEntry); err != nil {
				return nil, err
			}
			if err := put(t.liquidFlags); err != nil {
				return nil, err
			}
		}
		if t.liquidMap != nil {
			if err := put(t.liquidMap); err != nil {
				return nil, err
			}
		}
		hdr.LiquidSize = base + uint32(body.Len()) - hdr.LiquidOffset
	}

	var out bytes.Buffer
	if err := binary.Write(&out, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if _, err := body.WriteTo(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (t *Tile) hasAreaSection() bool {
	return t.areaMap != nil || t.gridArea != 0
}

func (t *Tile) hasHeightSection() bool {
	return t.heightKind != heightFlat || t.gridHeight != InvalidHeightValue
}

func (t *Tile) hasLiquidSection() bool {
	return t.liquidFlags != nil || t.liquidMap != nil ||
		t.liquidGlobalFlags != 0 || t.liquidLevel != InvalidHeightValue
}
