package engine

import (
	"github.com/inamate/draftview/backend-go/internal/document"
	"github.com/inamate/draftview/backend-go/internal/geom"
)

// solidBuilder fills SOLID and TRACE entities. Their corners come in
// DXF order, so the outline is 1-2-4-3.
type solidBuilder struct{ *buildKit }

func (b *solidBuilder) BuildGeometry(e *document.Entity) *Shape {
	if !renderable(e) {
		return nil
	}
	d, ok := document.Decode[document.CornerData](e)
	if !ok || len(d.Corners) < 3 {
		return nil
	}
	pts := elevate(d.Corners, e.Elevation)
	indices := []uint32{0, 1, 2}
	if len(pts) >= 4 && pts[3] != pts[2] {
		pts = pts[:4]
		indices = append(indices, 1, 3, 2)
	} else {
		pts = pts[:3]
	}
	s := &Shape{}
	s.add(trianglesPrimitive(pts, indices))
	return s.orNil()
}

func (b *solidBuilder) BuildMaterial(e *document.Entity) MaterialSpec { return b.surfaceMaterial(e) }

// faceBuilder draws the visible edges of a 3DFACE.
type faceBuilder struct{ *buildKit }

func (b *faceBuilder) BuildGeometry(e *document.Entity) *Shape {
	if !renderable(e) {
		return nil
	}
	d, ok := document.Decode[document.CornerData](e)
	if !ok || len(d.Corners) < 3 {
		return nil
	}
	corners := elevate(d.Corners, e.Elevation)
	if len(corners) > 4 {
		corners = corners[:4]
	}
	if len(corners) == 4 && corners[3] == corners[2] {
		corners = corners[:3]
	}

	var pairs []geom.Vertex
	for i := range corners {
		if d.InvisibleEdges&(1<<i) != 0 {
			continue
		}
		pairs = append(pairs, corners[i], corners[(i+1)%len(corners)])
	}
	if len(pairs) == 0 {
		return nil
	}
	s := &Shape{}
	s.add(segmentsPrimitive(pairs...))
	return s.orNil()
}

func (b *faceBuilder) BuildMaterial(e *document.Entity) MaterialSpec { return b.lineMaterial(e) }

// meshBuilder handles MESH and POLYFACE records.
type meshBuilder struct{ *buildKit }

func (b *meshBuilder) BuildGeometry(e *document.Entity) *Shape {
	if !renderable(e) {
		return nil
	}
	d, ok := document.Decode[document.MeshData](e)
	if !ok || len(d.Vertices) < 3 || len(d.Faces) == 0 {
		return nil
	}

	vc := len(d.Vertices)
	var indices []uint32
	for _, face := range d.Faces {
		resolved := make([]uint32, 0, len(face))
		for _, raw := range face {
			i := raw
			if i < 0 {
				i = -i
			}
			if d.OneBased {
				i--
			}
			if i < 0 || i >= vc {
				continue
			}
			resolved = append(resolved, uint32(i))
		}
		indices = append(indices, fanIndices(resolved)...)
	}
	if len(indices) == 0 {
		return nil
	}

	pos := flatten(elevate(d.Vertices, e.Elevation))
	buf := Buffers{Positions: pos, Indices: indices}
	if len(d.Normals) == vc {
		buf.Normals = flatten(d.Normals)
	} else {
		buf.Normals = computeNormals(pos, indices)
	}
	if len(d.Colors) == 3*vc {
		buf.Colors = make([]float32, len(d.Colors))
		for i, c := range d.Colors {
			buf.Colors[i] = float32(c)
		}
	}

	s := &Shape{}
	s.add(Primitive{Kind: NodeMesh, Material: MaterialSurface, Buffers: buf})
	return s.orNil()
}

func (b *meshBuilder) BuildMaterial(e *document.Entity) MaterialSpec { return b.surfaceMaterial(e) }

func elevate(pts []geom.Vertex, elevation float64) []geom.Vertex {
	out := make([]geom.Vertex, len(pts))
	for i, p := range pts {
		p.Z += elevation
		out[i] = p
	}
	return out
}
