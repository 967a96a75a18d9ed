package aci

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Reserved indices that do not name a palette entry.
const (
	ByBlock    = 0
	ByLayer    = 256
	ByBlockAlt = 257
)

// palette holds the RGB triples for indices 0-255. Entry 0 is unused.
var palette [256][3]uint8

// Standard entries 1-9.
var standard = [...][3]uint8{
	1: {255, 0, 0},
	2: {255, 255, 0},
	3: {0, 255, 0},
	4: {0, 255, 255},
	5: {0, 0, 255},
	6: {255, 0, 255},
	7: {255, 255, 255},
	8: {128, 128, 128},
	9: {192, 192, 192},
}

// Gray ramp 250-255.
var grays = [...]uint8{51, 80, 105, 130, 190, 255}

// Brightness steps used by the 24 hue rows (indices 10-249).
var levels = [...]float64{255, 189, 129, 104, 79}

func init() {
	copy(palette[:len(standard)], standard[:])

	// Indices 10-249 come in rows of ten per 15 degree hue step.
	// Even columns are saturated, odd columns are the pastel variant
	// of the same brightness.
	for i := 10; i < 250; i++ {
		row, col := (i-10)/10, (i-10)%10
		full := colorful.Hsv(float64(row)*15, 1, 1)
		level := levels[col/2]
		pastel := col%2 == 1
		palette[i] = [3]uint8{
			channel(full.R, level, pastel),
			channel(full.G, level, pastel),
			channel(full.B, level, pastel),
		}
	}

	for i, g := range grays {
		palette[250+i] = [3]uint8{g, g, g}
	}
}

func channel(c, level float64, pastel bool) uint8 {
	v := c * level
	if pastel {
		v = level*2/3 + c*level/3
	}
	return uint8(math.Floor(v + 1e-9))
}
