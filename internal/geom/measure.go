package geom

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// Length sums straight chords between consecutive vertices, including the
// closing chord of a closed path. Bulges are ignored.
func Length(p Path) float64 {
	var total float64
	n := len(p.Vertices)
	for i := 0; i < p.Segments(); i++ {
		total += p.Vertices[(i+1)%n].vec().Sub(p.Vertices[i].vec()).Length()
	}
	return total
}

// ArcLength is Length with every bulged segment measured along its arc.
func ArcLength(p Path) float64 {
	var total float64
	n := len(p.Vertices)
	for i := 0; i < p.Segments(); i++ {
		a, b := p.Vertices[i], p.Vertices[(i+1)%n]
		if arc := SolveBulge(a.vec(), b.vec(), a.Bulge); arc != nil {
			total += arc.Length()
			continue
		}
		total += b.vec().Sub(a.vec()).Length()
	}
	return total
}

// PolylineLength sums the distances between consecutive points, adding the
// closing edge when closed is set.
func PolylineLength(pts []Vertex, closed bool) float64 {
	if len(pts) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(pts); i++ {
		total += dist(pts[i-1], pts[i])
	}
	if closed {
		total += dist(pts[len(pts)-1], pts[0])
	}
	return total
}

// Area returns the unsigned shoelace area of the path's vertices.
func Area(p Path) float64 {
	n := len(p.Vertices)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a, b := p.Vertices[i], p.Vertices[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}

// SignedArea is the shoelace area of pts projected onto XY. Positive for
// counter-clockwise winding.
func SignedArea(pts []Vertex) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// Centroid returns the vertex average. ok is false for an empty list.
func Centroid(pts []Vertex) (c Vertex, ok bool) {
	if len(pts) == 0 {
		return Vertex{}, false
	}
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
		c.Z += p.Z
	}
	n := float64(len(pts))
	return Vertex{X: c.X / n, Y: c.Y / n, Z: c.Z / n}, true
}

// Bounds returns the axis-aligned box of pts. ok is false for an empty list.
func Bounds(pts []Vertex) (lo, hi Vertex, ok bool) {
	if len(pts) == 0 {
		return Vertex{}, Vertex{}, false
	}
	lo, hi = pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = Vertex{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = Vertex{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return lo, hi, true
}

// DistanceToPolyline is the shortest XY distance from q to the polyline
// through pts. It is +Inf when pts is empty.
func DistanceToPolyline(pts []Vertex, closed bool, q Vertex) float64 {
	switch len(pts) {
	case 0:
		return math.Inf(1)
	case 1:
		return math.Hypot(q.X-pts[0].X, q.Y-pts[0].Y)
	}
	best := math.Inf(1)
	pv := vec.Vec2{X: q.X, Y: q.Y}
	edges := len(pts) - 1
	if closed {
		edges = len(pts)
	}
	for i := 0; i < edges; i++ {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		best = min(best, segmentDistance(pv, vec.Vec2{X: a.X, Y: a.Y}, vec.Vec2{X: b.X, Y: b.Y}))
	}
	return best
}

// DistanceToPath measures from q to p with bulged segments followed along
// their arcs. It is +Inf for a path with no vertices.
func DistanceToPath(p Path, q Vertex) float64 {
	switch len(p.Vertices) {
	case 0:
		return math.Inf(1)
	case 1:
		v := p.Vertices[0]
		return math.Hypot(q.X-v.X, q.Y-v.Y)
	}
	res := Tessellate(p, TessellateOptions{})
	return DistanceToPolyline(res.Points, res.Closed, q)
}

func segmentDistance(p, a, b vec.Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return p.Sub(a.Add(ab.Mul(t))).Length()
}

func dist(a, b Vertex) float64 {
	dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
