package tile

import (
	"errors"
	"io/fs"
	"path/filepath"
	"reflect"
	"testing"
)

// fullTile populates every section so a round trip exercises the whole
// layout.
func fullTile(t *testing.T) *Tile {
	t.Helper()
	tl := New()

	cells := make([]uint16, CellRes*CellRes)
	for i := range cells {
		cells[i] = uint16(1000 + i)
	}
	if err := tl.SetAreaGrid(cells); err != nil {
		t.Fatalf("SetAreaGrid: %v", err)
	}

	v9 := make([]uint16, (HeightRes+1)*(HeightRes+1))
	v8 := make([]uint16, HeightRes*HeightRes)
	for i := range v9 {
		v9[i] = uint16(i % 5000)
	}
	for i := range v8 {
		v8[i] = uint16(i % 4000)
	}
	if err := tl.SetHeightUint16(v9, v8, -120.5, 480.25); err != nil {
		t.Fatalf("SetHeightUint16: %v", err)
	}

	var holes [CellRes][CellRes]uint16
	holes[2][3] = 0x0041
	holes[15][15] = 0xFFFF
	tl.SetHoles(holes)

	entries := make([]uint16, CellRes*CellRes)
	flags := make([]uint8, CellRes*CellRes)
	for i := range entries {
		entries[i] = uint16(i)
		flags[i] = uint8(i % 16)
	}
	if err := tl.SetLiquidGrid(entries, flags); err != nil {
		t.Fatalf("SetLiquidGrid: %v", err)
	}
	tl.SetLiquidFallback(4, LiquidTypeOcean, 31.75)
	samples := make([]float32, 40*24)
	for i := range samples {
		samples[i] = float32(i) / 4
	}
	if err := tl.SetLiquidWindow(10, 20, 24, 40, samples); err != nil {
		t.Fatalf("SetLiquidWindow: %v", err)
	}
	return tl
}

func sameTile(t *testing.T, got, want *Tile) {
	t.Helper()
	if got.heightKind != want.heightKind {
		t.Fatalf("height encoding %v, want %v", got.heightKind, want.heightKind)
	}
	if got.gridHeight != want.gridHeight || got.maxHeight != want.maxHeight || got.multiplier != want.multiplier {
		t.Fatalf("height scale (%v, %v, %v), want (%v, %v, %v)",
			got.gridHeight, got.maxHeight, got.multiplier,
			want.gridHeight, want.maxHeight, want.multiplier)
	}
	if got.gridArea != want.gridArea || !reflect.DeepEqual(got.areaMap, want.areaMap) {
		t.Fatal("area section differs after round trip")
	}
	if !reflect.DeepEqual(got.v9s, want.v9s) || !reflect.DeepEqual(got.v8s, want.v8s) ||
		!reflect.DeepEqual(got.v9b, want.v9b) || !reflect.DeepEqual(got.v8b, want.v8b) ||
		!reflect.DeepEqual(got.v9f, want.v9f) || !reflect.DeepEqual(got.v8f, want.v8f) {
		t.Fatal("height grids differ after round trip")
	}
	if !reflect.DeepEqual(got.holes, want.holes) {
		t.Fatal("holes differ after round trip")
	}
	if got.liquidGlobalEntry != want.liquidGlobalEntry || got.liquidGlobalFlags != want.liquidGlobalFlags ||
		got.liquidLevel != want.liquidLevel ||
		got.liquidOffX != want.liquidOffX || got.liquidOffY != want.liquidOffY ||
		got.liquidWidth != want.liquidWidth || got.liquidHeight != want.liquidHeight {
		t.Fatal("liquid header differs after round trip")
	}
	if !reflect.DeepEqual(got.liquidEntry, want.liquidEntry) ||
		!reflect.DeepEqual(got.liquidFlags, want.liquidFlags) ||
		!reflect.DeepEqual(got.liquidMap, want.liquidMap) {
		t.Fatal("liquid grids differ after round trip")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := fullTile(t)
	path := filepath.Join(t.TempDir(), "0013232.map")

	if err := Encode(path, want); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	sameTile(t, got, want)
}

func TestEncodeDecodeCompressed(t *testing.T) {
	want := fullTile(t)
	dir := t.TempDir()

	// Explicit .zst path.
	zpath := filepath.Join(dir, "0013232.map.zst")
	if err := Encode(zpath, want); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(zpath)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	sameTile(t, got, want)

	// Plain path falls back to the .zst sibling.
	got, err = Decode(filepath.Join(dir, "0013232.map"))
	if err != nil {
		t.Fatalf("Decode via fallback: %v", err)
	}
	sameTile(t, got, want)
}

func TestDecodeMissingFile(t *testing.T) {
	got, err := Decode(filepath.Join(t.TempDir(), "0010101.map"))
	if err != nil {
		t.Fatalf("Decode missing file: %v", err)
	}
	if !got.Empty() {
		t.Fatal("missing file should decode to an empty tile")
	}
}

func TestDecodeBadMagic(t *testing.T) {
	raw, err := encodeBytes(fullTile(t))
	if err != nil {
		t.Fatalf("encodeBytes: %v", err)
	}

	bad := append([]byte(nil), raw...)
	bad[0] = 'X'
	var ferr *FormatError
	if _, err := decodeBytes(bad, "t.map"); !errors.As(err, &ferr) || ferr.Section != "file" {
		t.Fatalf("corrupt format tag: err = %v, want file FormatError", err)
	}

	bad = append([]byte(nil), raw...)
	bad[5] = '9' // version tag
	if _, err := decodeBytes(bad, "t.map"); !errors.As(err, &ferr) || ferr.Section != "file" {
		t.Fatalf("corrupt version tag: err = %v, want file FormatError", err)
	}
}

func TestDecodeBadSectionTag(t *testing.T) {
	tl := fullTile(t)
	raw, err := encodeBytes(tl)
	if err != nil {
		t.Fatalf("encodeBytes: %v", err)
	}

	// The area section is laid out first, directly after the file header.
	bad := append([]byte(nil), raw...)
	bad[40] = 'X'
	var ferr *FormatError
	if _, err := decodeBytes(bad, "t.map"); !errors.As(err, &ferr) || ferr.Section != "area" {
		t.Fatalf("corrupt area tag: err = %v, want area FormatError", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	raw, err := encodeBytes(fullTile(t))
	if err != nil {
		t.Fatalf("encodeBytes: %v", err)
	}
	var ferr *FormatError
	if _, err := decodeBytes(raw[:len(raw)/2], "t.map"); !errors.As(err, &ferr) {
		t.Fatalf("truncated file: err = %v, want FormatError", err)
	}
}

func TestCheckHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0013030.map")

	if err := CheckHeader(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("missing file: err = %v, want fs.ErrNotExist", err)
	}

	if err := Encode(path, fullTile(t)); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := CheckHeader(path); err != nil {
		t.Fatalf("CheckHeader: %v", err)
	}
}
