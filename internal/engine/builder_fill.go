package engine

import (
	"math"

	"github.com/inamate/draftview/backend-go/internal/document"
	"github.com/inamate/draftview/backend-go/internal/geom"
)

type hatchBuilder struct{ *buildKit }

func (b *hatchBuilder) BuildGeometry(e *document.Entity) *Shape {
	if !renderable(e) {
		return nil
	}
	d, ok := document.Decode[document.HatchData](e)
	if !ok || len(d.Paths) == 0 {
		return nil
	}

	s := &Shape{}
	var outer []geom.Vertex
	var outerArea float64
	for _, p := range d.Paths {
		p.Closed = true
		res := b.tessellate(p, e.Elevation)
		if res == nil {
			continue
		}
		s.add(linePrimitive(res.Points, true))
		if a := math.Abs(geom.SignedArea(res.Points)); a > outerArea {
			outer, outerArea = res.Points, a
		}
	}

	// Solid fill covers the largest loop only; islands are drawn as outlines.
	if d.Solid && outer != nil {
		if idx := earClip(outer); len(idx) > 0 {
			s.add(trianglesPrimitive(outer, idx))
		}
	}
	return s.orNil()
}

func (b *hatchBuilder) BuildMaterial(e *document.Entity) MaterialSpec { return b.lineMaterial(e) }

// wipeoutBuilder fills its boundary with the background color so it masks
// whatever lies beneath.
type wipeoutBuilder struct{ *buildKit }

func (b *wipeoutBuilder) BuildGeometry(e *document.Entity) *Shape {
	if !renderable(e) {
		return nil
	}
	d, ok := document.Decode[document.WipeoutData](e)
	if !ok || len(d.Boundary) < 3 {
		return nil
	}
	pts := elevate(d.Boundary, e.Elevation)
	idx := earClip(pts)
	if len(idx) == 0 {
		return nil
	}

	s := &Shape{}
	fill := trianglesPrimitive(pts, idx)
	fill.Color = b.opts.Background.Hex
	s.add(fill)
	if d.Frame {
		s.add(linePrimitive(pts, true))
	}
	return s.orNil()
}

func (b *wipeoutBuilder) BuildMaterial(e *document.Entity) MaterialSpec { return b.lineMaterial(e) }
