package geom

import "math"

// Ribbon expands a tessellated path that carries widths into a triangle
// strip. Each point contributes a left and a right vertex offset by half
// its width along the averaged segment normal. Indices describe two
// triangles per edge. It returns nil when r has no widths.
func Ribbon(r *Result) (positions []Vertex, indices []uint32) {
	if r == nil || r.Widths == nil || len(r.Points) < 2 {
		return nil, nil
	}
	n := len(r.Points)
	positions = make([]Vertex, 0, 2*n)
	for i, p := range r.Points {
		nx, ny := pointNormal(r.Points, r.Closed, i)
		h := r.Widths[i] / 2
		positions = append(positions,
			Vertex{X: p.X + nx*h, Y: p.Y + ny*h, Z: p.Z},
			Vertex{X: p.X - nx*h, Y: p.Y - ny*h, Z: p.Z},
		)
	}

	edges := n - 1
	if r.Closed {
		edges = n
	}
	indices = make([]uint32, 0, edges*6)
	for i := 0; i < edges; i++ {
		j := (i + 1) % n
		l0, r0 := uint32(2*i), uint32(2*i+1)
		l1, r1 := uint32(2*j), uint32(2*j+1)
		indices = append(indices, l0, r0, l1, l1, r0, r1)
	}
	return positions, indices
}

// pointNormal returns the unit left normal at point i, averaged over the
// incoming and outgoing edges.
func pointNormal(pts []Vertex, closed bool, i int) (float64, float64) {
	n := len(pts)
	var dx, dy float64
	if i > 0 || closed {
		prev := pts[(i-1+n)%n]
		ex, ey := unit(pts[i].X-prev.X, pts[i].Y-prev.Y)
		dx, dy = dx+ex, dy+ey
	}
	if i < n-1 || closed {
		next := pts[(i+1)%n]
		ex, ey := unit(next.X-pts[i].X, next.Y-pts[i].Y)
		dx, dy = dx+ex, dy+ey
	}
	dx, dy = unit(dx, dy)
	return -dy, dx
}

func unit(x, y float64) (float64, float64) {
	l := math.Hypot(x, y)
	if l == 0 {
		return 0, 0
	}
	return x / l, y / l
}
