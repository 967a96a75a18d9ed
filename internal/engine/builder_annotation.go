package engine

import (
	"math"

	"github.com/inamate/draftview/backend-go/internal/document"
	"github.com/inamate/draftview/backend-go/internal/geom"
)

const defaultArrowSize = 2.5

type leaderBuilder struct{ *buildKit }

func (b *leaderBuilder) BuildGeometry(e *document.Entity) *Shape {
	if !renderable(e) {
		return nil
	}
	d, ok := document.Decode[document.LeaderData](e)
	if !ok || len(d.Vertices) < 2 {
		return nil
	}
	pts := elevate(d.Vertices, e.Elevation)

	s := &Shape{}
	s.add(linePrimitive(pts, false))
	if d.Arrowhead {
		size := d.ArrowSize
		if size <= 0 {
			size = defaultArrowSize
		}
		if tri := arrowhead(pts[0], pts[1], size); tri != nil {
			s.add(trianglesPrimitive(tri, []uint32{0, 1, 2}))
		}
	}
	return s.orNil()
}

func (b *leaderBuilder) BuildMaterial(e *document.Entity) MaterialSpec { return b.lineMaterial(e) }

// dimensionBuilder draws aligned linear dimensions: two extension lines,
// the dimension line through DimLinePoint and an arrowhead at each end.
type dimensionBuilder struct{ *buildKit }

func (b *dimensionBuilder) BuildGeometry(e *document.Entity) *Shape {
	if !renderable(e) {
		return nil
	}
	d, ok := document.Decode[document.DimensionData](e)
	if !ok {
		return nil
	}
	p1, p2, q := d.DefPoint1, d.DefPoint2, d.DimLinePoint
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return nil
	}
	ux, uy := dx/l, dy/l
	nx, ny := -uy, ux
	offset := (q.X-p1.X)*nx + (q.Y-p1.Y)*ny

	z := p1.Z + e.Elevation
	d1 := geom.Vertex{X: p1.X + nx*offset, Y: p1.Y + ny*offset, Z: z}
	d2 := geom.Vertex{X: p2.X + nx*offset, Y: p2.Y + ny*offset, Z: z}
	a := geom.Vertex{X: p1.X, Y: p1.Y, Z: z}
	c := geom.Vertex{X: p2.X, Y: p2.Y, Z: z}

	s := &Shape{}
	s.add(segmentsPrimitive(a, d1, c, d2, d1, d2))

	size := d.ArrowSize
	if size <= 0 {
		size = defaultArrowSize
	}
	var arrows []geom.Vertex
	arrows = append(arrows, arrowhead(d1, d2, size)...)
	arrows = append(arrows, arrowhead(d2, d1, size)...)
	if len(arrows) == 6 {
		s.add(trianglesPrimitive(arrows, []uint32{0, 1, 2, 3, 4, 5}))
	}
	return s.orNil()
}

func (b *dimensionBuilder) BuildMaterial(e *document.Entity) MaterialSpec { return b.lineMaterial(e) }
