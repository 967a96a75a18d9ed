package engine

import (
	"github.com/inamate/draftview/backend-go/internal/aci"
	"github.com/inamate/draftview/backend-go/internal/document"
	"github.com/inamate/draftview/backend-go/internal/geom"
)

// rasterBuilder places IMAGE and UNDERLAY entities as textured quads. An
// entity whose source cannot be resolved produces nothing.
type rasterBuilder struct{ *buildKit }

func (b *rasterBuilder) resolve(e *document.Entity) (*document.RasterData, string, bool) {
	d, ok := document.Decode[document.RasterData](e)
	if !ok || d.Source == "" || d.Width <= 0 || d.Height <= 0 {
		return nil, "", false
	}
	if b.opts.Sources == nil {
		return nil, "", false
	}
	src, ok := b.opts.Sources.Resolve(d.Source)
	if !ok {
		return nil, "", false
	}
	return d, src, true
}

func (b *rasterBuilder) BuildGeometry(e *document.Entity) *Shape {
	if !renderable(e) {
		return nil
	}
	d, _, ok := b.resolve(e)
	if !ok {
		return nil
	}
	o := d.Origin
	o.Z += e.Elevation
	ux, uy, uz := d.U.X*d.Width, d.U.Y*d.Width, d.U.Z*d.Width
	vx, vy, vz := d.V.X*d.Height, d.V.Y*d.Height, d.V.Z*d.Height
	pts := []geom.Vertex{
		o,
		{X: o.X + ux, Y: o.Y + uy, Z: o.Z + uz},
		{X: o.X + ux + vx, Y: o.Y + uy + vy, Z: o.Z + uz + vz},
		{X: o.X + vx, Y: o.Y + vy, Z: o.Z + vz},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	pos := flatten(pts)

	s := &Shape{}
	s.add(Primitive{
		Kind:     NodeMesh,
		Material: MaterialSurface,
		Buffers: Buffers{
			Positions: pos,
			Normals:   computeNormals(pos, indices),
			UVs:       []float32{0, 0, 1, 0, 1, 1, 0, 1},
			Indices:   indices,
		},
	})
	return s.orNil()
}

func (b *rasterBuilder) BuildMaterial(e *document.Entity) MaterialSpec {
	spec := MaterialSpec{
		Kind:        MaterialSurface,
		Color:       aci.Default,
		Opacity:     1,
		DepthTest:   true,
		DepthWrite:  true,
		DoubleSided: true,
	}
	d, src, ok := b.resolve(e)
	if !ok {
		return spec
	}
	if d.Opacity > 0 && d.Opacity < 1 {
		spec.Opacity = d.Opacity
		spec.DepthWrite = false
	}
	spec.Texture = &Texture{Source: src, Placeholder: true}
	return spec
}
