package tile

// Height sampling works on a diamond-subdivided mesh: the 129x129 corner
// lattice (v9) and the 128x128 center lattice (v8) together split every cell
// into four triangles sharing the doubled center sample.
//
//	+--------------> X
//	| h1-------h2     h1 (0,0)  h2 (0,1)
//	| | \  1  / |     h3 (1,0)  h4 (1,1)
//	| | 2  h5 3 |     h5 (1/2,1/2), stored once per cell in v8
//	| |  /   \  |
//	| | /  4  \ |     The sampled height solves h = a*fx + b*fy + c for the
//	| h3-------h4     plane through the selected triangle's three points.
//	v Y
//
// The coefficient formulas differ per triangle; they are deliberately kept
// in the same long-hand form for all encodings so the quantized variants can
// run them in the sample's native integer domain before rescaling.

// Height returns the interpolated ground height at (x, y), or
// InvalidHeightValue over a hole or when no height data exists.
func (t *Tile) Height(x, y float32) float32 {
	switch t.heightKind {
	case heightFloat32:
		return t.heightFromFloat32(x, y)
	case heightUint8:
		return t.heightFromUint8(x, y)
	case heightUint16:
		return t.heightFromUint16(x, y)
	default:
		return t.gridHeight
	}
}

// heightCell splits (x, y) into integer cell indices and fractional
// remainders at HeightRes resolution, masked into the valid range.
func heightCell(x, y float32) (ix, iy int, fx, fy float32) {
	x = float32(HeightRes) * (CenterTile - x/TileSize)
	y = float32(HeightRes) * (CenterTile - y/TileSize)

	ix = int(x)
	iy = int(y)
	fx = x - float32(ix)
	fy = y - float32(iy)
	ix &= HeightRes - 1
	iy &= HeightRes - 1
	return ix, iy, fx, fy
}

func (t *Tile) heightFromFloat32(x, y float32) float32 {
	if t.v8f == nil || t.v9f == nil {
		return InvalidHeightValue
	}

	ix, iy, fx, fy := heightCell(x, y)
	if t.IsHole(ix, iy) {
		return InvalidHeightValue
	}

	i9 := ix*(HeightRes+1) + iy

	var a, b, c float32
	if fx+fy < 1 {
		if fx > fy {
			// Triangle 1: h1, h2, h5.
			h1 := t.v9f[i9]
			h2 := t.v9f[i9+129]
			h5 := 2 * t.v8f[ix*HeightRes+iy]
			a = h2 - h1
			b = h5 - h1 - h2
			c = h1
		} else {
			// Triangle 2: h1, h3, h5.
			h1 := t.v9f[i9]
			h3 := t.v9f[i9+1]
			h5 := 2 * t.v8f[ix*HeightRes+iy]
			a = h5 - h1 - h3
			b = h3 - h1
			c = h1
		}
	} else {
		if fx > fy {
			// Triangle 3: h2, h4, h5.
			h2 := t.v9f[i9+129]
			h4 := t.v9f[i9+130]
			h5 := 2 * t.v8f[ix*HeightRes+iy]
			a = h2 + h4 - h5
			b = h4 - h2
			c = h5 - h4
		} else {
			// Triangle 4: h3, h4, h5.
			h3 := t.v9f[i9+1]
			h4 := t.v9f[i9+130]
			h5 := 2 * t.v8f[ix*HeightRes+iy]
			a = h4 - h3
			b = h3 + h4 - h5
			c = h5 - h4
		}
	}

	return a*fx + b*fy + c
}

func (t *Tile) heightFromUint8(x, y float32) float32 {
	if t.v8b == nil || t.v9b == nil {
		return t.gridHeight
	}

	ix, iy, fx, fy := heightCell(x, y)
	if t.IsHole(ix, iy) {
		return InvalidHeightValue
	}

	i9 := ix*(HeightRes+1) + iy

	// Same planar fit as the float variant, run on the raw quantized
	// samples and rescaled at the end.
	var a, b, c int32
	if fx+fy < 1 {
		if fx > fy {
			h1 := int32(t.v9b[i9])
			h2 := int32(t.v9b[i9+129])
			h5 := 2 * int32(t.v8b[ix*HeightRes+iy])
			a = h2 - h1
			b = h5 - h1 - h2
			c = h1
		} else {
			h1 := int32(t.v9b[i9])
			h3 := int32(t.v9b[i9+1])
			h5 := 2 * int32(t.v8b[ix*HeightRes+iy])
			a = h5 - h1 - h3
			b = h3 - h1
			c = h1
		}
	} else {
		if fx > fy {
			h2 := int32(t.v9b[i9+129])
			h4 := int32(t.v9b[i9+130])
			h5 := 2 * int32(t.v8b[ix*HeightRes+iy])
			a = h2 + h4 - h5
			b = h4 - h2
			c = h5 - h4
		} else {
			h3 := int32(t.v9b[i9+1])
			h4 := int32(t.v9b[i9+130])
			h5 := 2 * int32(t.v8b[ix*HeightRes+iy])
			a = h4 - h3
			b = h3 + h4 - h5
			c = h5 - h4
		}
	}

	return (float32(a)*fx+float32(b)*fy+float32(c))*t.multiplier + t.gridHeight
}

func (t *Tile) heightFromUint16(x, y float32) float32 {
	if t.v8s == nil || t.v9s == nil {
		return t.gridHeight
	}

	ix, iy, fx, fy := heightCell(x, y)
	if t.IsHole(ix, iy) {
		return InvalidHeightValue
	}

	i9 := ix*(HeightRes+1) + iy

	var a, b, c int32
	if fx+fy < 1 {
		if fx > fy {
			h1 := int32(t.v9s[i9])
			h2 := int32(t.v9s[i9+129])
			h5 := 2 * int32(t.v8s[ix*HeightRes+iy])
			a = h2 - h1
			b = h5 - h1 - h2
			c = h1
		} else {
			h1 := int32(t.v9s[i9])
			h3 := int32(t.v9s[i9+1])
			h5 := 2 * int32(t.v8s[ix*HeightRes+iy])
			a = h5 - h1 - h3
			b = h3 - h1
			c = h1
		}
	} else {
		if fx > fy {
			h2 := int32(t.v9s[i9+129])
			h4 := int32(t.v9s[i9+130])
			h5 := 2 * int32(t.v8s[ix*HeightRes+iy])
			a = h2 + h4 - h5
			b = h4 - h2
			c = h5 - h4
		} else {
			h3 := int32(t.v9s[i9+1])
			h4 := int32(t.v9s[i9+130])
			h5 := 2 * int32(t.v8s[ix*HeightRes+iy])
			a = h4 - h3
			b = h3 + h4 - h5
			c = h5 - h4
		}
	}

	return (float32(a)*fx+float32(b)*fy+float32(c))*t.multiplier + t.gridHeight
}
