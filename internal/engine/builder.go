package engine

import (
	"github.com/inamate/draftview/backend-go/internal/aci"
	"github.com/inamate/draftview/backend-go/internal/document"
	"github.com/inamate/draftview/backend-go/internal/geom"
)

// Builder maps one entity kind to geometry and a material request.
// BuildGeometry returns nil when there is nothing to render: invisible
// entity, missing data, or a kind-specific invisibility flag.
type Builder interface {
	BuildGeometry(e *document.Entity) *Shape
	BuildMaterial(e *document.Entity) MaterialSpec
}

// MaterialSpec is the material a builder asks for. Each node instantiates
// its own copy.
type MaterialSpec struct {
	Kind        MaterialKind
	Color       aci.Color
	Opacity     float64
	DepthTest   bool
	DepthWrite  bool
	LineWidth   float64
	PointSize   float64
	DoubleSided bool
	Texture     *Texture
}

// instantiate builds a fresh material, applying a primitive's overrides.
func (s MaterialSpec) instantiate(kind MaterialKind, color string) *Material {
	if kind == "" {
		kind = s.Kind
	}
	if color == "" {
		color = s.Color.Hex
	}
	opacity := s.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	m := &Material{
		Kind:        kind,
		Color:       color,
		Opacity:     opacity,
		Transparent: opacity < 1,
		DepthTest:   s.DepthTest,
		DepthWrite:  s.DepthWrite,
		DoubleSided: s.DoubleSided,
	}
	switch kind {
	case MaterialLine:
		m.LineWidth = s.LineWidth
		if m.LineWidth <= 0 {
			m.LineWidth = 1
		}
	case MaterialPoint:
		m.PointSize = s.PointSize
		if m.PointSize <= 0 {
			m.PointSize = 1
		}
	}
	if s.Texture != nil {
		t := *s.Texture
		m.Texture = &t
	}
	return m
}

// ColorFunc resolves the color an entity draws with.
type ColorFunc func(e *document.Entity) aci.Color

// EntityColor resolves true color first, then the palette index, with no
// by-layer or by-block override.
func EntityColor(e *document.Entity) aci.Color {
	if e.Color.RGB != nil {
		return aci.FromRGB(aci.RGB(*e.Color.RGB))
	}
	return aci.Resolve(e.Color.Index)
}

// SourceResolver reports whether a raster source can be found.
type SourceResolver interface {
	Resolve(source string) (string, bool)
}

// BuildOptions configures the default builders.
type BuildOptions struct {
	ArcSegments    int
	CircleSegments int
	WidePolylines  bool
	Color          ColorFunc
	Sources        SourceResolver
	// Background is the fill color of masking entities.
	Background aci.Color
}

// DefaultBuildOptions returns the options used when none are configured.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		ArcSegments:    geom.DefaultArcSegments,
		CircleSegments: 64,
		WidePolylines:  true,
		Color:          EntityColor,
		Background:     aci.FromRGB(0),
	}
}

// buildKit is shared by every default builder.
type buildKit struct {
	opts BuildOptions
}

func (k *buildKit) tessellate(p geom.Path, elevation float64) *geom.Result {
	return geom.Tessellate(p, geom.TessellateOptions{
		SegmentsPerArc: k.opts.ArcSegments,
		Elevation:      elevation,
	})
}

func (k *buildKit) color(e *document.Entity) aci.Color {
	if k.opts.Color == nil {
		return EntityColor(e)
	}
	return k.opts.Color(e)
}

func (k *buildKit) lineMaterial(e *document.Entity) MaterialSpec {
	return MaterialSpec{
		Kind:       MaterialLine,
		Color:      k.color(e),
		Opacity:    1,
		DepthTest:  true,
		DepthWrite: true,
		LineWidth:  1,
	}
}

func (k *buildKit) surfaceMaterial(e *document.Entity) MaterialSpec {
	return MaterialSpec{
		Kind:        MaterialSurface,
		Color:       k.color(e),
		Opacity:     1,
		DepthTest:   true,
		DepthWrite:  true,
		DoubleSided: true,
	}
}

// DefaultBuilders returns a builder for every supported entity kind.
func DefaultBuilders(opts BuildOptions) map[document.EntityType]Builder {
	if opts.ArcSegments <= 0 {
		opts.ArcSegments = geom.DefaultArcSegments
	}
	if opts.CircleSegments <= 0 {
		opts.CircleSegments = 64
	}
	if opts.Background.Hex == "" {
		opts.Background = aci.FromRGB(0)
	}
	k := &buildKit{opts: opts}
	poly := &polylineBuilder{k}
	solid := &solidBuilder{k}
	mesh := &meshBuilder{k}
	raster := &rasterBuilder{k}
	return map[document.EntityType]Builder{
		document.EntityLine:       &lineBuilder{k},
		document.EntityLWPolyline: poly,
		document.EntityPolyline:   poly,
		document.EntityCircle:     &circleBuilder{k},
		document.EntityArc:        &arcBuilder{k},
		document.EntityEllipse:    &ellipseBuilder{k},
		document.EntityPoint:      &pointBuilder{k},
		document.EntitySolid:      solid,
		document.EntityTrace:      solid,
		document.Entity3DFace:     &faceBuilder{k},
		document.EntityMesh:       mesh,
		document.EntityPolyface:   mesh,
		document.EntityHatch:      &hatchBuilder{k},
		document.EntityWipeout:    &wipeoutBuilder{k},
		document.EntityLeader:     &leaderBuilder{k},
		document.EntityDimension:  &dimensionBuilder{k},
		document.EntityImage:      raster,
		document.EntityUnderlay:   raster,
	}
}
