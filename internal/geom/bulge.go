package geom

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// DefaultArcSegments is the sample count suggested for one bulge arc.
const DefaultArcSegments = 16

const (
	chordEpsilon = 1e-12
	bulgeEpsilon = 1e-12
	// Above this the included angle is within ~1e-6 rad of a full turn and
	// the radius blows up.
	maxBulge = 1e6
)

// ArcSegment is the circular arc a non-zero bulge describes between two
// vertices.
type ArcSegment struct {
	StartPoint         vec.Vec2
	EndPoint           vec.Vec2
	CenterPoint        vec.Vec2
	Radius             float64
	StartAngle         float64
	SweepAngle         float64
	IsCounterClockwise bool
	SegmentCount       int
}

// EndAngle returns StartAngle + SweepAngle.
func (a *ArcSegment) EndAngle() float64 { return a.StartAngle + a.SweepAngle }

// PointAt evaluates the arc at t in [0, 1].
func (a *ArcSegment) PointAt(t float64) vec.Vec2 {
	theta := a.StartAngle + a.SweepAngle*t
	return vec.Vec2{
		X: a.CenterPoint.X + a.Radius*math.Cos(theta),
		Y: a.CenterPoint.Y + a.Radius*math.Sin(theta),
	}
}

// Length returns the arc length.
func (a *ArcSegment) Length() float64 { return math.Abs(a.SweepAngle) * a.Radius }

// SolveBulge resolves the arc between start and end for the given bulge.
// It returns nil for a straight segment: zero bulge, a zero-length chord,
// or a bulge so large the arc degenerates into a full circle.
func SolveBulge(start, end vec.Vec2, bulge float64) *ArcSegment {
	if math.IsNaN(bulge) || math.Abs(bulge) < bulgeEpsilon || math.Abs(bulge) > maxBulge {
		return nil
	}
	d := end.Sub(start)
	chord := d.Length()
	if chord < chordEpsilon || math.IsNaN(chord) || math.IsInf(chord, 0) {
		return nil
	}

	sweep := 4 * math.Atan(bulge)
	s := math.Sin(sweep / 2)
	if math.Abs(s) < 1e-12 {
		return nil
	}
	radius := math.Abs(chord / (2 * s))

	// Offset from the chord midpoint to the center along the left normal:
	// (chord/2) * cot(sweep/2) = chord * (1 - b^2) / (4b).
	mid := start.Add(end).Mul(0.5)
	normal := vec.Vec2{X: -d.Y, Y: d.X}
	center := mid.Add(normal.Mul((1 - bulge*bulge) / (4 * bulge)))

	startAngle := math.Atan2(start.Y-center.Y, start.X-center.X)

	return &ArcSegment{
		StartPoint:         start,
		EndPoint:           end,
		CenterPoint:        center,
		Radius:             radius,
		StartAngle:         startAngle,
		SweepAngle:         sweep,
		IsCounterClockwise: bulge > 0,
		SegmentCount:       DefaultArcSegments,
	}
}

// BulgeFromArc returns the bulge of an arc with the given signed sweep.
func BulgeFromArc(sweep float64) float64 {
	return math.Tan(sweep / 4)
}
