// Package geom holds the planar geometry shared by every entity builder:
// bulge arcs, path tessellation and the measurement helpers that work on
// vertex lists.
package geom

import "seehuhn.de/go/geom/vec"

// Vertex is a point in document space.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PathVertex is a path corner. Bulge encodes a circular arc to the next
// vertex (tan of a quarter of the included angle, positive is
// counter-clockwise). Widths interpolate linearly along the outgoing segment.
type PathVertex struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Bulge      float64 `json:"bulge,omitempty"`
	StartWidth float64 `json:"startWidth,omitempty"`
	EndWidth   float64 `json:"endWidth,omitempty"`
}

// Path is an ordered, possibly closed, sequence of path vertices.
type Path struct {
	Vertices []PathVertex `json:"vertices"`
	Closed   bool         `json:"closed"`
}

// Segments returns the number of vertex pairs walked for the path.
func (p Path) Segments() int {
	n := len(p.Vertices)
	if n < 2 {
		return 0
	}
	if p.Closed {
		return n
	}
	return n - 1
}

// HasWidth reports whether any vertex carries a non-zero width.
func (p Path) HasWidth() bool {
	for _, v := range p.Vertices {
		if v.StartWidth > 0 || v.EndWidth > 0 {
			return true
		}
	}
	return false
}

// HasBulge reports whether any segment is an arc.
func (p Path) HasBulge() bool {
	for _, v := range p.Vertices {
		if v.Bulge != 0 {
			return true
		}
	}
	return false
}

func (v PathVertex) vec() vec.Vec2 { return vec.Vec2{X: v.X, Y: v.Y} }

func at(p vec.Vec2, z float64) Vertex { return Vertex{X: p.X, Y: p.Y, Z: z} }
