package tile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// FormatError reports a malformed tile file: a format/version tag mismatch
// on the file header, a wrong section tag, or a short read. Fatal to that
// tile's load, never to the process.
type FormatError struct {
	Path    string
	Section string // "file", "area", "height", "holes", "liquid"
	Detail  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("tile %s: %s section: %s", e.Path, e.Section, e.Detail)
}

func sectionErr(path, section, format string, args ...any) error {
	return &FormatError{Path: path, Section: section, Detail: fmt.Sprintf(format, args...)}
}

// Decode reads the tile file at path. A missing file is not an error: the
// region may still be covered by mesh-engine data, so Decode returns an
// empty tile. A file named path+".zst" is accepted as a zstd-compressed
// variant when the plain file is absent.
func Decode(path string) (*Tile, error) {
	raw, found, err := readTileBytes(path)
	if err != nil {
		return nil, err
	}
	if !found {
		return New(), nil
	}
	return decodeBytes(raw, path)
}

// CheckHeader validates that a tile file exists and carries the expected
// format and version tags, without decoding any section.
func CheckHeader(path string) error {
	raw, found, err := readTileBytes(path)
	if err != nil {
		return err
	}
	if !found {
		return fs.ErrNotExist
	}

	var hdr fileHeader
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &hdr); err != nil {
		return sectionErr(path, "file", "short header: %v", err)
	}
	if hdr.MapMagic != fileMagic {
		return sectionErr(path, "file", "bad format tag %q, want %q", hdr.MapMagic, fileMagic)
	}
	if hdr.VersionMagic != versionMagic {
		return sectionErr(path, "file", "incompatible version tag %q, want %q", hdr.VersionMagic, versionMagic)
	}
	return nil
}

func readTileBytes(path string) (raw []byte, found bool, err error) {
	raw, err = os.ReadFile(path)
	if err == nil {
		if strings.HasSuffix(path, ".zst") {
			raw, err = decompress(raw)
			if err != nil {
				return nil, false, sectionErr(path, "file", "zstd: %v", err)
			}
		}
		return raw, true, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}
	if strings.HasSuffix(path, ".zst") {
		return nil, false, nil
	}

	raw, zerr := os.ReadFile(path + ".zst")
	if zerr != nil {
		if errors.Is(zerr, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, zerr
	}
	raw, err = decompress(raw)
	if err != nil {
		return nil, false, sectionErr(path+".zst", "file", "zstd: %v", err)
	}
	return raw, true, nil
}

func decompress(raw []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(raw, nil)
}

func decodeBytes(raw []byte, path string) (*Tile, error) {
	r := bytes.NewReader(raw)

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, sectionErr(path, "file", "short header: %v", err)
	}
	if hdr.MapMagic != fileMagic {
		return nil, sectionErr(path, "file", "bad format tag %q, want %q", hdr.MapMagic, fileMagic)
	}
	if hdr.VersionMagic != versionMagic {
		return nil, sectionErr(path, "file", "incompatible version tag %q, want %q", hdr.VersionMagic, versionMagic)
	}

	t := New()
	if hdr.AreaOffset != 0 {
		if err := decodeArea(r, t, path, hdr.AreaOffset); err != nil {
			return nil, err
		}
	}
	if hdr.HolesOffset != 0 {
		if err := decodeHoles(r, t, path, hdr.HolesOffset); err != nil {
			return nil, err
		}
	}
	if hdr.HeightOffset != 0 {
		if err := decodeHeight(r, t, path, hdr.HeightOffset); err != nil {
			return nil, err
		}
	}
	if hdr.LiquidOffset != 0 {
		if err := decodeLiquid(r, t, path, hdr.LiquidOffset); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func seekTo(r *bytes.Reader, off uint32) {
	// bytes.Reader never fails absolute in-range seeks; out-of-range
	// offsets surface as a short read at the next binary.Read.
	_, _ = r.Seek(int64(off), io.SeekStart)
}

func decodeArea(r *bytes.Reader, t *Tile, path string, off uint32) error {
	seekTo(r, off)
	var h areaHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return sectionErr(path, "area", "short header: %v", err)
	}
	if h.Fourcc != areaMagic {
		return sectionErr(path, "area", "bad tag %q, want %q", h.Fourcc, areaMagic)
	}

	t.gridArea = h.GridArea
	if h.Flags&areaFlagNoArea == 0 {
		cells := make([]uint16, CellRes*CellRes)
		if err := binary.Read(r, binary.LittleEndian, cells); err != nil {
			return sectionErr(path, "area", "short grid: %v", err)
		}
		t.areaMap = cells
	}
	return nil
}

func decodeHoles(r *bytes.Reader, t *Tile, path string, off uint32) error {
	seekTo(r, off)
	var h holesHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return sectionErr(path, "holes", "short header: %v", err)
	}
	if h.Fourcc != holesMagic {
		return sectionErr(path, "holes", "bad tag %q, want %q", h.Fourcc, holesMagic)
	}

	var holes [CellRes][CellRes]uint16
	if err := binary.Read(r, binary.LittleEndian, &holes); err != nil {
		return sectionErr(path, "holes", "short grid: %v", err)
	}
	t.SetHoles(holes)
	return nil
}

func decodeHeight(r *bytes.Reader, t *Tile, path string, off uint32) error {
	seekTo(r, off)
	var h heightHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return sectionErr(path, "height", "short header: %v", err)
	}
	if h.Fourcc != heightMagic {
		return sectionErr(path, "height", "bad tag %q, want %q", h.Fourcc, heightMagic)
	}

	switch {
	case h.Flags&heightFlagNoHeight != 0:
		t.SetFlatHeight(h.GridHeight)
		t.maxHeight = h.GridMaxHeight

	case h.Flags&heightFlagAsInt16 != 0:
		v9 := make([]uint16, (HeightRes+1)*(HeightRes+1))
		v8 := make([]uint16, HeightRes*HeightRes)
		if err := binary.Read(r, binary.LittleEndian, v9); err != nil {
			return sectionErr(path, "height", "short corner grid: %v", err)
		}
		if err := binary.Read(r, binary.LittleEndian, v8); err != nil {
			return sectionErr(path, "height", "short center grid: %v", err)
		}
		_ = t.SetHeightUint16(v9, v8, h.GridHeight, h.GridMaxHeight)

	case h.Flags&heightFlagAsInt8 != 0:
		v9 := make([]uint8, (HeightRes+1)*(HeightRes+1))
		v8 := make([]uint8, HeightRes*HeightRes)
		if err := binary.Read(r, binary.LittleEndian, v9); err != nil {
			return sectionErr(path, "height", "short corner grid: %v", err)
		}
		if err := binary.Read(r, binary.LittleEndian, v8); err != nil {
			return sectionErr(path, "height", "short center grid: %v", err)
		}
		_ = t.SetHeightUint8(v9, v8, h.GridHeight, h.GridMaxHeight)

	default:
		v9 := make([]float32, (HeightRes+1)*(HeightRes+1))
		v8 := make([]float32, HeightRes*HeightRes)
		if err := binary.Read(r, binary.LittleEndian, v9); err != nil {
			return sectionErr(path, "height", "short corner grid: %v", err)
		}
		if err := binary.Read(r, binary.LittleEndian, v8); err != nil {
			return sectionErr(path, "height", "short center grid: %v", err)
		}
		_ = t.SetHeightFloat32(v9, v8)
		t.gridHeight = h.GridHeight
		t.maxHeight = h.GridMaxHeight
	}
	return nil
}

func decodeLiquid(r *bytes.Reader, t *Tile, path string, off uint32) error {
	seekTo(r, off)
	var h liquidHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return sectionErr(path, "liquid", "short header: %v", err)
	}
	if h.Fourcc != liquidMagic {
		return sectionErr(path, "liquid", "bad tag %q, want %q", h.Fourcc, liquidMagic)
	}

	t.liquidGlobalEntry = h.LiquidType
	t.liquidGlobalFlags = h.LiquidFlags
	t.liquidOffX = h.OffsetX
	t.liquidOffY = h.OffsetY
	t.liquidWidth = h.Width
	t.liquidHeight = h.Height
	t.liquidLevel = h.LiquidLevel

	if h.Flags&liquidFlagNoType == 0 {
		entries := make([]uint16, CellRes*CellRes)
		flags := make([]uint8, CellRes*CellRes)
		if err := binary.Read(r, binary.LittleEndian, entries); err != nil {
			return sectionErr(path, "liquid", "short entry grid: %v", err)
		}
		if err := binary.Read(r, binary.LittleEndian, flags); err != nil {
			return sectionErr(path, "liquid", "short flag grid: %v", err)
		}
		t.liquidEntry = entries
		t.liquidFlags = flags
	}

	if h.Flags&liquidFlagNoHeight == 0 {
		m := make([]float32, int(h.Width)*int(h.Height))
		if err := binary.Read(r, binary.LittleEndian, m); err != nil {
			return sectionErr(path, "liquid", "short level grid: %v", err)
		}
		t.liquidMap = m
	}
	return nil
}
