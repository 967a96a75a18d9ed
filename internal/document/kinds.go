package document

import (
	"encoding/json"

	"github.com/inamate/draftview/backend-go/internal/geom"
)

// Point is a document-space coordinate.
type Point = geom.Vertex

type LineData struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

type PolylineVertex struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Bulge      float64 `json:"bulge,omitempty"`
	StartWidth float64 `json:"startWidth,omitempty"`
	EndWidth   float64 `json:"endWidth,omitempty"`
}

type PolylineData struct {
	Vertices      []PolylineVertex `json:"vertices"`
	Closed        bool             `json:"closed"`
	ConstantWidth float64          `json:"constantWidth,omitempty"`
	Is3D          bool             `json:"is3d,omitempty"`
}

// Path converts the vertex list to a geom.Path, spreading a constant width
// over vertices that carry none.
func (p *PolylineData) Path() geom.Path {
	path := geom.Path{Vertices: make([]geom.PathVertex, len(p.Vertices)), Closed: p.Closed}
	for i, v := range p.Vertices {
		pv := geom.PathVertex{X: v.X, Y: v.Y, Bulge: v.Bulge, StartWidth: v.StartWidth, EndWidth: v.EndWidth}
		if p.ConstantWidth > 0 && pv.StartWidth == 0 && pv.EndWidth == 0 {
			pv.StartWidth, pv.EndWidth = p.ConstantWidth, p.ConstantWidth
		}
		path.Vertices[i] = pv
	}
	return path
}

type CircleData struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// ArcData angles are in degrees, counter-clockwise from +X.
type ArcData struct {
	Center     Point   `json:"center"`
	Radius     float64 `json:"radius"`
	StartAngle float64 `json:"startAngle"`
	EndAngle   float64 `json:"endAngle"`
}

// EllipseData params are in radians. MajorAxis is relative to Center.
type EllipseData struct {
	Center     Point   `json:"center"`
	MajorAxis  Point   `json:"majorAxis"`
	Ratio      float64 `json:"ratio"`
	StartParam float64 `json:"startParam"`
	EndParam   float64 `json:"endParam"`
}

type PointData struct {
	Position Point   `json:"position"`
	Size     float64 `json:"size,omitempty"`
}

// CornerData holds SOLID/TRACE corners in DXF order (1, 2, 4, 3 form the
// outline) and 3DFACE corners in outline order.
type CornerData struct {
	Corners        []Point `json:"corners"`
	InvisibleEdges int     `json:"invisibleEdges,omitempty"` // bit i hides edge i
}

type MeshData struct {
	Vertices []Point   `json:"vertices"`
	Faces    [][]int   `json:"faces"`
	Normals  []Point   `json:"normals,omitempty"`
	OneBased bool      `json:"oneBased,omitempty"`
	Colors   []float64 `json:"colors,omitempty"`
}

type HatchData struct {
	Paths   []geom.Path `json:"paths"`
	Solid   bool        `json:"solid"`
	Pattern string      `json:"pattern,omitempty"`
}

type WipeoutData struct {
	Boundary []Point `json:"boundary"`
	Frame    bool    `json:"frame,omitempty"`
}

type LeaderData struct {
	Vertices  []Point `json:"vertices"`
	Arrowhead bool    `json:"arrowhead"`
	ArrowSize float64 `json:"arrowSize,omitempty"`
}

type DimensionData struct {
	DefPoint1    Point   `json:"defPoint1"`
	DefPoint2    Point   `json:"defPoint2"`
	DimLinePoint Point   `json:"dimLinePoint"`
	ArrowSize    float64 `json:"arrowSize,omitempty"`
	Measurement  float64 `json:"measurement,omitempty"`
}

// RasterData places an image by its insertion point and the vectors of
// one pixel along U and V.
type RasterData struct {
	Origin  Point   `json:"origin"`
	U       Point   `json:"u"`
	V       Point   `json:"v"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Source  string  `json:"source"`
	Opacity float64 `json:"opacity,omitempty"`
}

// Decode unmarshals an entity's data payload. It returns false for a
// missing or malformed payload.
func Decode[T any](e *Entity) (*T, bool) {
	if e == nil || len(e.Data) == 0 {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// ParseEntity decodes a single serialized entity record.
func ParseEntity(raw []byte) (*Entity, error) {
	var e Entity
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
