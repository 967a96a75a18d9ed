package geom

import "seehuhn.de/go/geom/vec"

// TessellateOptions controls path flattening.
type TessellateOptions struct {
	// SegmentsPerArc overrides the solver's suggested sample count when > 0.
	SegmentsPerArc int
	// Elevation is the Z given to every emitted point.
	Elevation float64
	// CollectArcs records the arcs consumed in Result.Arcs.
	CollectArcs bool
}

// Result is a flattened path.
type Result struct {
	Points []Vertex
	// Widths holds the interpolated width at each point. Nil unless the
	// path carries widths.
	Widths []float64
	Arcs   []ArcSegment
	Closed bool
}

// Tessellate flattens p into a point sequence. A straight path yields
// exactly one point per vertex; each arc adds its interior samples. For a
// closed path the closing point is not repeated.
//
// Paths with fewer than two vertices return nil.
func Tessellate(p Path, opts TessellateOptions) *Result {
	n := len(p.Vertices)
	if n < 2 {
		return nil
	}

	res := &Result{
		Points: make([]Vertex, 0, n),
		Closed: p.Closed,
	}
	withWidth := p.HasWidth()
	if withWidth {
		res.Widths = make([]float64, 0, n)
	}

	first := p.Vertices[0]
	res.Points = append(res.Points, at(first.vec(), opts.Elevation))
	if withWidth {
		res.Widths = append(res.Widths, first.StartWidth)
	}

	segments := p.Segments()
	for i := 0; i < segments; i++ {
		cur := p.Vertices[i]
		next := p.Vertices[(i+1)%n]
		closing := p.Closed && i == segments-1

		arc := SolveBulge(cur.vec(), next.vec(), cur.Bulge)
		if arc == nil {
			if closing {
				break
			}
			res.Points = append(res.Points, at(next.vec(), opts.Elevation))
			if withWidth {
				res.Widths = append(res.Widths, cur.EndWidth)
			}
			continue
		}

		count := arc.SegmentCount
		if opts.SegmentsPerArc > 0 {
			count = opts.SegmentsPerArc
			arc.SegmentCount = count
		}
		if opts.CollectArcs {
			res.Arcs = append(res.Arcs, *arc)
		}

		last := count
		if closing {
			last = count - 1
		}
		for k := 1; k <= last; k++ {
			var pt vec.Vec2
			if k == count {
				pt = next.vec()
			} else {
				pt = arc.PointAt(float64(k) / float64(count))
			}
			res.Points = append(res.Points, at(pt, opts.Elevation))
			if withWidth {
				t := float64(k) / float64(count)
				res.Widths = append(res.Widths, cur.StartWidth+(cur.EndWidth-cur.StartWidth)*t)
			}
		}
	}

	return res
}
