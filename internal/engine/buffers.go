package engine

import (
	"hash/fnv"
	"math"

	"github.com/inamate/draftview/backend-go/internal/geom"
)

// Buffers are the flat arrays a builder produces for one primitive.
type Buffers struct {
	Positions []float32
	Normals   []float32
	Colors    []float32
	UVs       []float32
	Indices   []uint32
}

func (b *Buffers) geometry() *Geometry {
	return &Geometry{
		Positions: b.Positions,
		Normals:   b.Normals,
		Colors:    b.Colors,
		UVs:       b.UVs,
		Indices:   b.Indices,
	}
}

// Primitive is one drawable part of a shape. An empty Material or Color
// inherits the entity's material.
type Primitive struct {
	Kind     NodeKind
	Buffers  Buffers
	Material MaterialKind
	Color    string
}

// Shape is a builder's geometry output. More than one primitive produces a
// group node.
type Shape struct {
	Primitives []Primitive
}

func (s *Shape) add(p Primitive) {
	if len(p.Buffers.Positions) == 0 {
		return
	}
	s.Primitives = append(s.Primitives, p)
}

// orNil returns nil for a shape without primitives.
func (s *Shape) orNil() *Shape {
	if s == nil || len(s.Primitives) == 0 {
		return nil
	}
	return s
}

func flatten(pts []geom.Vertex) []float32 {
	out := make([]float32, 0, len(pts)*3)
	for _, p := range pts {
		out = append(out, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return out
}

func linePrimitive(pts []geom.Vertex, closed bool) Primitive {
	kind := NodeLine
	if closed {
		kind = NodeLineLoop
	}
	return Primitive{Kind: kind, Buffers: Buffers{Positions: flatten(pts)}}
}

func segmentsPrimitive(pairs ...geom.Vertex) Primitive {
	return Primitive{Kind: NodeLineSegments, Buffers: Buffers{Positions: flatten(pairs)}}
}

func trianglesPrimitive(pts []geom.Vertex, indices []uint32) Primitive {
	pos := flatten(pts)
	return Primitive{
		Kind:     NodeMesh,
		Material: MaterialSurface,
		Buffers: Buffers{
			Positions: pos,
			Normals:   computeNormals(pos, indices),
			Indices:   indices,
		},
	}
}

// fanIndices triangulates a convex face. Three indices pass through
// unchanged, four become two triangles.
func fanIndices(face []uint32) []uint32 {
	if len(face) < 3 {
		return nil
	}
	out := make([]uint32, 0, (len(face)-2)*3)
	for i := 1; i < len(face)-1; i++ {
		out = append(out, face[0], face[i], face[i+1])
	}
	return out
}

// computeNormals accumulates area-weighted face normals per vertex.
func computeNormals(positions []float32, indices []uint32) []float32 {
	normals := make([]float32, len(positions))
	vc := uint32(len(positions) / 3)
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if a >= vc || b >= vc || c >= vc {
			continue
		}
		ax, ay, az := vertexAt(positions, a)
		bx, by, bz := vertexAt(positions, b)
		cx, cy, cz := vertexAt(positions, c)
		ux, uy, uz := bx-ax, by-ay, bz-az
		vx, vy, vz := cx-ax, cy-ay, cz-az
		nx, ny, nz := uy*vz-uz*vy, uz*vx-ux*vz, ux*vy-uy*vx
		for _, idx := range [3]uint32{a, b, c} {
			normals[idx*3] += float32(nx)
			normals[idx*3+1] += float32(ny)
			normals[idx*3+2] += float32(nz)
		}
	}
	for i := 0; i+2 < len(normals); i += 3 {
		x, y, z := float64(normals[i]), float64(normals[i+1]), float64(normals[i+2])
		l := math.Sqrt(x*x + y*y + z*z)
		if l == 0 {
			normals[i+2] = 1
			continue
		}
		normals[i], normals[i+1], normals[i+2] = float32(x/l), float32(y/l), float32(z/l)
	}
	return normals
}

func vertexAt(p []float32, i uint32) (float64, float64, float64) {
	return float64(p[i*3]), float64(p[i*3+1]), float64(p[i*3+2])
}

// earClip triangulates a simple polygon given in either winding. It returns
// nil for fewer than three points.
func earClip(pts []geom.Vertex) []uint32 {
	n := len(pts)
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	ccw := geom.SignedArea(pts) >= 0

	out := make([]uint32, 0, (n-2)*3)
	guard := 0
	for len(idx) > 3 && guard < n*n {
		guard++
		clipped := false
		for i := range idx {
			prev, cur, next := idx[(i-1+len(idx))%len(idx)], idx[i], idx[(i+1)%len(idx)]
			if !isEar(pts, idx, prev, cur, next, ccw) {
				continue
			}
			out = append(out, uint32(prev), uint32(cur), uint32(next))
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Self-intersecting input; fan the remainder.
			break
		}
	}
	for i := 1; i+1 < len(idx); i++ {
		out = append(out, uint32(idx[0]), uint32(idx[i]), uint32(idx[i+1]))
	}
	return out
}

func isEar(pts []geom.Vertex, idx []int, a, b, c int, ccw bool) bool {
	cross := orient(pts[a], pts[b], pts[c])
	if (ccw && cross <= 0) || (!ccw && cross >= 0) {
		return false
	}
	for _, j := range idx {
		if j == a || j == b || j == c {
			continue
		}
		if inTriangle(pts[j], pts[a], pts[b], pts[c]) {
			return false
		}
	}
	return true
}

func orient(a, b, c geom.Vertex) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func inTriangle(p, a, b, c geom.Vertex) bool {
	d1, d2, d3 := orient(a, b, p), orient(b, c, p), orient(c, a, p)
	neg := d1 < 0 || d2 < 0 || d3 < 0
	pos := d1 > 0 || d2 > 0 || d3 > 0
	return !(neg && pos)
}

// arcPoints samples a circle from start sweeping by sweep radians,
// inclusive of both ends.
func arcPoints(cx, cy, z, r, start, sweep float64, segments int) []geom.Vertex {
	if segments < 1 {
		segments = 1
	}
	pts := make([]geom.Vertex, 0, segments+1)
	for i := 0; i <= segments; i++ {
		a := start + sweep*float64(i)/float64(segments)
		pts = append(pts, geom.Vertex{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a), Z: z})
	}
	return pts
}

// arrowhead returns a filled triangle with its tip at tip, pointing away
// from from.
func arrowhead(tip, from geom.Vertex, size float64) []geom.Vertex {
	dx, dy := tip.X-from.X, tip.Y-from.Y
	l := math.Hypot(dx, dy)
	if l == 0 || size <= 0 {
		return nil
	}
	ux, uy := dx/l, dy/l
	bx, by := tip.X-ux*size, tip.Y-uy*size
	hw := size / 6
	return []geom.Vertex{
		tip,
		{X: bx - uy*hw, Y: by + ux*hw, Z: tip.Z},
		{X: bx + uy*hw, Y: by - ux*hw, Z: tip.Z},
	}
}

// signature hashes the inputs that determine an entity's geometry.
func signature(parts ...[]byte) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write(p)
		h.Write([]byte{0})
	}
	return h.Sum64()
}
