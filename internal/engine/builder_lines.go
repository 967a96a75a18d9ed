package engine

import (
	"math"

	"github.com/inamate/draftview/backend-go/internal/document"
	"github.com/inamate/draftview/backend-go/internal/geom"
)

// renderable is the gate every builder applies before looking at data.
func renderable(e *document.Entity) bool {
	return e != nil && e.Visible
}

type lineBuilder struct{ *buildKit }

func (b *lineBuilder) BuildGeometry(e *document.Entity) *Shape {
	if !renderable(e) {
		return nil
	}
	d, ok := document.Decode[document.LineData](e)
	if !ok {
		return nil
	}
	s := &Shape{}
	s.add(segmentsPrimitive(d.Start, d.End))
	return s.orNil()
}

func (b *lineBuilder) BuildMaterial(e *document.Entity) MaterialSpec { return b.lineMaterial(e) }

type polylineBuilder struct{ *buildKit }

func (b *polylineBuilder) BuildGeometry(e *document.Entity) *Shape {
	if !renderable(e) {
		return nil
	}
	d, ok := document.Decode[document.PolylineData](e)
	if !ok || len(d.Vertices) < 2 {
		return nil
	}

	if d.Is3D {
		pts := make([]geom.Vertex, len(d.Vertices))
		for i, v := range d.Vertices {
			pts[i] = geom.Vertex{X: v.X, Y: v.Y, Z: v.Z}
		}
		s := &Shape{}
		s.add(linePrimitive(pts, d.Closed))
		return s.orNil()
	}

	path := d.Path()
	res := b.tessellate(path, e.Elevation)
	if res == nil {
		return nil
	}
	s := &Shape{}
	s.add(linePrimitive(res.Points, d.Closed))
	if b.opts.WidePolylines && res.Widths != nil {
		if pos, idx := geom.Ribbon(res); pos != nil {
			s.add(trianglesPrimitive(pos, idx))
		}
	}
	return s.orNil()
}

func (b *polylineBuilder) BuildMaterial(e *document.Entity) MaterialSpec { return b.lineMaterial(e) }

type circleBuilder struct{ *buildKit }

func (b *circleBuilder) BuildGeometry(e *document.Entity) *Shape {
	if !renderable(e) {
		return nil
	}
	d, ok := document.Decode[document.CircleData](e)
	if !ok || d.Radius <= 0 {
		return nil
	}
	segs := b.opts.CircleSegments
	pts := arcPoints(d.Center.X, d.Center.Y, d.Center.Z+e.Elevation, d.Radius, 0, 2*math.Pi, segs)
	s := &Shape{}
	s.add(linePrimitive(pts[:segs], true))
	return s.orNil()
}

func (b *circleBuilder) BuildMaterial(e *document.Entity) MaterialSpec { return b.lineMaterial(e) }

type arcBuilder struct{ *buildKit }

func (b *arcBuilder) BuildGeometry(e *document.Entity) *Shape {
	if !renderable(e) {
		return nil
	}
	d, ok := document.Decode[document.ArcData](e)
	if !ok || d.Radius <= 0 {
		return nil
	}
	start := d.StartAngle * math.Pi / 180
	sweep := math.Mod(d.EndAngle-d.StartAngle, 360)
	if sweep <= 0 {
		sweep += 360
	}
	sweep = sweep * math.Pi / 180
	segs := max(4, int(math.Ceil(float64(b.opts.CircleSegments)*sweep/(2*math.Pi))))
	pts := arcPoints(d.Center.X, d.Center.Y, d.Center.Z+e.Elevation, d.Radius, start, sweep, segs)
	s := &Shape{}
	s.add(linePrimitive(pts, false))
	return s.orNil()
}

func (b *arcBuilder) BuildMaterial(e *document.Entity) MaterialSpec { return b.lineMaterial(e) }

type ellipseBuilder struct{ *buildKit }

func (b *ellipseBuilder) BuildGeometry(e *document.Entity) *Shape {
	if !renderable(e) {
		return nil
	}
	d, ok := document.Decode[document.EllipseData](e)
	if !ok {
		return nil
	}
	major := math.Hypot(d.MajorAxis.X, d.MajorAxis.Y)
	if major == 0 || d.Ratio <= 0 {
		return nil
	}

	sweep := d.EndParam - d.StartParam
	full := sweep == 0 || math.Abs(math.Abs(sweep)-2*math.Pi) < 1e-9
	if full {
		sweep = 2 * math.Pi
	} else if sweep < 0 {
		sweep += 2 * math.Pi
	}
	segs := max(4, int(math.Ceil(float64(b.opts.CircleSegments)*sweep/(2*math.Pi))))

	mx, my := d.MajorAxis.X, d.MajorAxis.Y
	nx, ny := -my*d.Ratio, mx*d.Ratio
	z := d.Center.Z + e.Elevation
	count := segs + 1
	if full {
		count = segs
	}
	pts := make([]geom.Vertex, 0, count)
	for i := 0; i < count; i++ {
		t := d.StartParam + sweep*float64(i)/float64(segs)
		c, sn := math.Cos(t), math.Sin(t)
		pts = append(pts, geom.Vertex{X: d.Center.X + mx*c + nx*sn, Y: d.Center.Y + my*c + ny*sn, Z: z})
	}
	s := &Shape{}
	s.add(linePrimitive(pts, full))
	return s.orNil()
}

func (b *ellipseBuilder) BuildMaterial(e *document.Entity) MaterialSpec { return b.lineMaterial(e) }

type pointBuilder struct{ *buildKit }

func (b *pointBuilder) BuildGeometry(e *document.Entity) *Shape {
	if !renderable(e) {
		return nil
	}
	d, ok := document.Decode[document.PointData](e)
	if !ok {
		return nil
	}
	p := d.Position
	p.Z += e.Elevation
	s := &Shape{}
	s.add(Primitive{Kind: NodePoints, Buffers: Buffers{Positions: flatten([]geom.Vertex{p})}})
	return s.orNil()
}

func (b *pointBuilder) BuildMaterial(e *document.Entity) MaterialSpec {
	size := 1.0
	if d, ok := document.Decode[document.PointData](e); ok && d.Size > 0 {
		size = d.Size
	}
	return MaterialSpec{
		Kind:       MaterialPoint,
		Color:      b.color(e),
		Opacity:    1,
		DepthTest:  true,
		DepthWrite: true,
		PointSize:  size,
	}
}
