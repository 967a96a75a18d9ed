// Package aci resolves drafting color specifications (the 256-entry indexed
// palette plus the by-layer and by-block meta indices) into concrete RGB.
//
// Every function here is pure and safe for concurrent use.
package aci

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a resolved color.
type Color struct {
	Index int     `json:"index"`
	Hex   string  `json:"hex"`
	R     uint8   `json:"r"`
	G     uint8   `json:"g"`
	B     uint8   `json:"b"`
	A     float64 `json:"a"`
}

// Default is returned for 0, 256, 257 and out-of-range indices when no
// override applies.
var Default = Color{Index: 7, Hex: "#ffffff", R: 255, G: 255, B: 255, A: 1}

// RGB is a 24-bit color packed as 0xRRGGBB.
type RGB int

// Overrides supplies the colors the meta indices stand for. A nil field
// leaves the corresponding index on the default fallback.
type Overrides struct {
	ByLayer *RGB
	ByBlock *RGB
}

// IsMeta reports whether index is one of the by-layer/by-block values.
func IsMeta(index int) bool {
	return index == ByBlock || index == ByLayer || index == ByBlockAlt
}

// Resolve maps a palette index to its color. Anything outside 1-255
// resolves to Default.
func Resolve(index int) Color {
	if index < 1 || index > 255 {
		return Default
	}
	p := palette[index]
	return fromBytes(index, p[0], p[1], p[2])
}

// ResolveWith is Resolve with caller-supplied meta index colors.
func ResolveWith(index int, o Overrides) Color {
	switch index {
	case ByLayer:
		if o.ByLayer != nil {
			return FromRGB(*o.ByLayer)
		}
	case ByBlock, ByBlockAlt:
		if o.ByBlock != nil {
			return FromRGB(*o.ByBlock)
		}
	}
	return Resolve(index)
}

// FromRGB builds a color from a packed true-color value. The index is
// reported as -1.
func FromRGB(v RGB) Color {
	return fromBytes(-1, uint8(v>>16), uint8(v>>8), uint8(v))
}

// ParseHex parses "#rrggbb".
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return fromBytes(-1, r, g, b), nil
}

// Packed returns the color as 0xRRGGBB.
func (c Color) Packed() RGB {
	return RGB(int(c.R)<<16 | int(c.G)<<8 | int(c.B))
}

// Float returns the channels scaled to [0, 1].
func (c Color) Float() (r, g, b float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255
}

// Contrast swaps index 7 to black when drawn over a light background.
// Other colors are returned unchanged.
func Contrast(c Color, background Color) Color {
	if c.Index != 7 {
		return c
	}
	lum := 0.2126*float64(background.R) + 0.7152*float64(background.G) + 0.0722*float64(background.B)
	if lum > 127 {
		return fromBytes(7, 0, 0, 0)
	}
	return c
}

func fromBytes(index int, r, g, b uint8) Color {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	return Color{Index: index, Hex: c.Hex(), R: r, G: g, B: b, A: 1}
}
