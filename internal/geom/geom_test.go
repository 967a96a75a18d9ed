package geom

import (
	"math"
	"testing"

	"seehuhn.de/go/geom/vec"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func square(closed bool) Path {
	return Path{
		Vertices: []PathVertex{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
		Closed:   closed,
	}
}

func TestSolveBulgeZero(t *testing.T) {
	pairs := [][2]vec.Vec2{
		{{X: 0, Y: 0}, {X: 1, Y: 0}},
		{{X: -3, Y: 2}, {X: 5, Y: 7}},
	}
	for _, p := range pairs {
		if arc := SolveBulge(p[0], p[1], 0); arc != nil {
			t.Errorf("SolveBulge(%v, %v, 0) = %+v, want nil", p[0], p[1], arc)
		}
	}
}

func TestSolveBulgeDegenerate(t *testing.T) {
	a := vec.Vec2{X: 3, Y: 3}
	if arc := SolveBulge(a, a, 0.5); arc != nil {
		t.Errorf("zero chord produced arc %+v", arc)
	}
	if arc := SolveBulge(a, vec.Vec2{X: 4, Y: 3}, math.Inf(1)); arc != nil {
		t.Errorf("infinite bulge produced arc %+v", arc)
	}
	if arc := SolveBulge(a, vec.Vec2{X: 4, Y: 3}, math.NaN()); arc != nil {
		t.Errorf("NaN bulge produced arc %+v", arc)
	}
}

func TestSolveBulgeSemicircle(t *testing.T) {
	arc := SolveBulge(vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 2, Y: 0}, 1)
	if arc == nil {
		t.Fatal("nil arc")
	}
	if !near(arc.CenterPoint.X, 1) || !near(arc.CenterPoint.Y, 0) {
		t.Errorf("center = %v, want (1,0)", arc.CenterPoint)
	}
	if !near(arc.Radius, 1) {
		t.Errorf("radius = %v, want 1", arc.Radius)
	}
	if !near(arc.SweepAngle, math.Pi) {
		t.Errorf("sweep = %v, want pi", arc.SweepAngle)
	}
	if !arc.IsCounterClockwise {
		t.Error("positive bulge should be counter-clockwise")
	}
	// Counter-clockwise from (0,0) to (2,0) passes below the chord.
	mid := arc.PointAt(0.5)
	if !near(mid.X, 1) || !near(mid.Y, -1) {
		t.Errorf("midpoint = %v, want (1,-1)", mid)
	}
}

func TestSolveBulgeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		a, b  vec.Vec2
		bulge float64
	}{
		{"quarter ccw", vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 10, Y: 0}, 0.41421356},
		{"quarter cw", vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 10, Y: 0}, -0.41421356},
		{"small", vec.Vec2{X: 1, Y: 2}, vec.Vec2{X: 4, Y: 6}, 0.05},
		{"large", vec.Vec2{X: -5, Y: 1}, vec.Vec2{X: 3, Y: -2}, 3},
		{"large cw", vec.Vec2{X: -5, Y: 1}, vec.Vec2{X: 3, Y: -2}, -2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arc := SolveBulge(tt.a, tt.b, tt.bulge)
			if arc == nil {
				t.Fatal("nil arc")
			}
			start, end := arc.PointAt(0), arc.PointAt(1)
			if start.Sub(tt.a).Length() > 1e-7 {
				t.Errorf("start = %v, want %v", start, tt.a)
			}
			if end.Sub(tt.b).Length() > 1e-7 {
				t.Errorf("end = %v, want %v", end, tt.b)
			}
			if !near(arc.SweepAngle, 4*math.Atan(tt.bulge)) {
				t.Errorf("sweep = %v", arc.SweepAngle)
			}
			halfChord := tt.b.Sub(tt.a).Length() / 2
			if !near(arc.Radius, math.Abs(halfChord/math.Sin(arc.SweepAngle/2))) {
				t.Errorf("radius = %v", arc.Radius)
			}
			if arc.IsCounterClockwise != (tt.bulge > 0) {
				t.Errorf("ccw = %v", arc.IsCounterClockwise)
			}
			if !near(BulgeFromArc(arc.SweepAngle), tt.bulge) {
				t.Errorf("BulgeFromArc = %v", BulgeFromArc(arc.SweepAngle))
			}
		})
	}
}

func TestTessellateStraight(t *testing.T) {
	for _, closed := range []bool{false, true} {
		res := Tessellate(square(closed), TessellateOptions{Elevation: 5})
		if res == nil {
			t.Fatal("nil result")
		}
		if len(res.Points) != 4 {
			t.Fatalf("closed=%v: %d points, want 4", closed, len(res.Points))
		}
		for i, v := range square(closed).Vertices {
			p := res.Points[i]
			if p.X != v.X || p.Y != v.Y || p.Z != 5 {
				t.Errorf("point %d = %+v, want (%v,%v,5)", i, p, v.X, v.Y)
			}
		}
		if res.Widths != nil {
			t.Error("widths should be nil")
		}
	}
}

func TestTessellateArcs(t *testing.T) {
	p := Path{Vertices: []PathVertex{{X: 0, Y: 0, Bulge: 1}, {X: 2, Y: 0}}}
	res := Tessellate(p, TessellateOptions{SegmentsPerArc: 8, CollectArcs: true})
	if len(res.Points) != 9 {
		t.Fatalf("%d points, want 9", len(res.Points))
	}
	if len(res.Arcs) != 1 || res.Arcs[0].SegmentCount != 8 {
		t.Fatalf("arcs = %+v", res.Arcs)
	}
	last := res.Points[8]
	if last.X != 2 || last.Y != 0 {
		t.Errorf("last point = %+v, want exact end vertex", last)
	}
	for _, pt := range res.Points {
		if r := math.Hypot(pt.X-1, pt.Y); !near(r, 1) {
			t.Errorf("point %+v off circle (r=%v)", pt, r)
		}
	}

	// Closing arc does not repeat the first vertex.
	closed := Path{
		Vertices: []PathVertex{{X: 0, Y: 0, Bulge: 1}, {X: 2, Y: 0, Bulge: 1}},
		Closed:   true,
	}
	res = Tessellate(closed, TessellateOptions{SegmentsPerArc: 4})
	if len(res.Points) != 8 {
		t.Fatalf("closed circle: %d points, want 8", len(res.Points))
	}
	if len(res.Points) < len(closed.Vertices) {
		t.Error("fewer points than vertices")
	}
}

func TestTessellateDegenerate(t *testing.T) {
	if Tessellate(Path{}, TessellateOptions{}) != nil {
		t.Error("empty path should give nil")
	}
	if Tessellate(Path{Vertices: []PathVertex{{X: 1, Y: 1}}}, TessellateOptions{}) != nil {
		t.Error("single vertex should give nil")
	}
	// Coincident vertices with a bulge fall back to a straight segment.
	res := Tessellate(Path{Vertices: []PathVertex{{X: 1, Y: 1, Bulge: 1}, {X: 1, Y: 1}}}, TessellateOptions{})
	if res == nil || len(res.Points) != 2 {
		t.Errorf("coincident pair = %+v", res)
	}
}

func TestTessellateWidths(t *testing.T) {
	p := Path{Vertices: []PathVertex{
		{X: 0, Y: 0, StartWidth: 1, EndWidth: 3},
		{X: 10, Y: 0, StartWidth: 2, EndWidth: 2},
		{X: 10, Y: 10},
	}}
	res := Tessellate(p, TessellateOptions{})
	want := []float64{1, 3, 2}
	if len(res.Widths) != len(want) {
		t.Fatalf("widths = %v", res.Widths)
	}
	for i := range want {
		if res.Widths[i] != want[i] {
			t.Errorf("width %d = %v, want %v", i, res.Widths[i], want[i])
		}
	}

	pos, idx := Ribbon(res)
	if len(pos) != 6 || len(idx) != 12 {
		t.Fatalf("ribbon: %d positions, %d indices", len(pos), len(idx))
	}
	// First point: half width 0.5 along +Y.
	if !near(pos[0].Y, 0.5) || !near(pos[1].Y, -0.5) {
		t.Errorf("first pair = %+v %+v", pos[0], pos[1])
	}
	if pos2, _ := Ribbon(Tessellate(square(false), TessellateOptions{})); pos2 != nil {
		t.Error("ribbon without widths should be nil")
	}
}

func TestLengthAndArea(t *testing.T) {
	if got := Length(square(false)); got != 30 {
		t.Errorf("open length = %v, want 30", got)
	}
	if got := Length(square(true)); got != 40 {
		t.Errorf("closed length = %v, want 40", got)
	}
	if got := Area(square(true)); got != 100 {
		t.Errorf("area = %v, want 100", got)
	}
	if got := Length(Path{}); got != 0 {
		t.Errorf("empty length = %v", got)
	}

	semi := Path{Vertices: []PathVertex{{X: 0, Y: 0, Bulge: 1}, {X: 2, Y: 0}}}
	if got := Length(semi); got != 2 {
		t.Errorf("chord length = %v, want 2", got)
	}
	if got := ArcLength(semi); !near(got, math.Pi) {
		t.Errorf("arc length = %v, want pi", got)
	}

	res := Tessellate(semi, TessellateOptions{SegmentsPerArc: 64})
	if got := PolylineLength(res.Points, false); got > math.Pi || got < math.Pi-0.01 {
		t.Errorf("tessellated length = %v", got)
	}
}

func TestCentroidBoundsDistance(t *testing.T) {
	pts := Tessellate(square(true), TessellateOptions{}).Points

	c, ok := Centroid(pts)
	if !ok || c.X != 5 || c.Y != 5 {
		t.Errorf("centroid = %+v %v", c, ok)
	}
	if _, ok := Centroid(nil); ok {
		t.Error("empty centroid ok")
	}

	lo, hi, ok := Bounds(pts)
	if !ok || lo.X != 0 || lo.Y != 0 || hi.X != 10 || hi.Y != 10 {
		t.Errorf("bounds = %+v %+v", lo, hi)
	}
	if _, _, ok := Bounds(nil); ok {
		t.Error("empty bounds ok")
	}

	if d := DistanceToPolyline(pts, true, Vertex{X: 5, Y: -2}); !near(d, 2) {
		t.Errorf("distance = %v, want 2", d)
	}
	if d := DistanceToPolyline(pts, true, Vertex{X: -3, Y: 5}); !near(d, 3) {
		t.Errorf("closed distance = %v, want 3", d)
	}
	if d := DistanceToPolyline(pts, false, Vertex{X: -3, Y: 5}); !near(d, math.Sqrt(34)) {
		t.Errorf("open distance = %v, want sqrt(34)", d)
	}
	if d := DistanceToPolyline(nil, false, Vertex{}); !math.IsInf(d, 1) {
		t.Errorf("empty distance = %v, want +Inf", d)
	}
	if d := DistanceToPath(Path{}, Vertex{}); !math.IsInf(d, 1) {
		t.Errorf("empty path distance = %v, want +Inf", d)
	}

	// Semicircle bulging below the chord from (0,0) to (10,0).
	arc := Path{Vertices: []PathVertex{{X: 0, Y: 0, Bulge: 1}, {X: 10, Y: 0}}}
	if d := DistanceToPath(arc, Vertex{X: 5, Y: 0}); math.Abs(d-5) > 0.05 {
		t.Errorf("distance to arc = %v, want about 5", d)
	}
	if a := SignedArea(pts); a != 100 {
		t.Errorf("signed area = %v", a)
	}
}
