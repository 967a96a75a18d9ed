package document

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/draftview/backend-go/internal/geom"
)

func NewSampleDocument(id string) *Document {
	doc := NewEmptyDocument(id, "Sample")
	doc.Layers["WALLS"] = Layer{Name: "WALLS", Color: 1}
	doc.Layers["ANNO"] = Layer{Name: "ANNO", Color: 3}
	doc.Layers["HIDDEN"] = Layer{Name: "HIDDEN", Color: 8, Off: true}

	next := 0x20
	add := func(t EntityType, layer string, color int, data any) {
		raw, err := json.Marshal(data)
		if err != nil {
			panic(fmt.Sprintf("sample entity %s: %v", t, err))
		}
		doc.Entities = append(doc.Entities, Entity{
			Handle:  fmt.Sprintf("%X", next),
			Type:    t,
			Visible: true,
			Layer:   layer,
			Color:   ColorRef{Index: color},
			Data:    raw,
		})
		next++
	}

	// Outer wall with a rounded corner.
	add(EntityLWPolyline, "WALLS", 256, PolylineData{
		Closed: true,
		Vertices: []PolylineVertex{
			{X: 0, Y: 0},
			{X: 100, Y: 0},
			{X: 100, Y: 40, Bulge: 0.41421356},
			{X: 80, Y: 60},
			{X: 0, Y: 60},
		},
	})

	// Wide polyline with tapering segment.
	add(EntityLWPolyline, "WALLS", 1, PolylineData{
		Vertices: []PolylineVertex{
			{X: 10, Y: 10, StartWidth: 0.5, EndWidth: 2},
			{X: 40, Y: 10, StartWidth: 2, EndWidth: 2},
			{X: 40, Y: 30},
		},
	})

	add(EntityLine, "0", 5, LineData{Start: Point{X: 0, Y: -10}, End: Point{X: 100, Y: -10}})
	add(EntityCircle, "0", 2, CircleData{Center: Point{X: 60, Y: 30}, Radius: 8})
	add(EntityArc, "0", 4, ArcData{Center: Point{X: 20, Y: 45}, Radius: 6, StartAngle: 0, EndAngle: 180})
	add(EntitySolid, "0", 6, CornerData{Corners: []Point{{X: 70, Y: 5}, {X: 90, Y: 5}, {X: 70, Y: 15}, {X: 90, Y: 15}}})

	add(EntityHatch, "0", 9, HatchData{
		Solid: true,
		Paths: []geom.Path{{
			Closed: true,
			Vertices: []geom.PathVertex{
				{X: 50, Y: 45}, {X: 70, Y: 45}, {X: 70, Y: 55}, {X: 50, Y: 55},
			},
		}},
	})

	add(EntityDimension, "ANNO", 256, DimensionData{
		DefPoint1:    Point{X: 0, Y: 0},
		DefPoint2:    Point{X: 100, Y: 0},
		DimLinePoint: Point{X: 50, Y: -20},
		ArrowSize:    2.5,
	})

	add(EntityLeader, "ANNO", 256, LeaderData{
		Vertices:  []Point{{X: 60, Y: 30}, {X: 75, Y: 70}, {X: 90, Y: 70}},
		Arrowhead: true,
		ArrowSize: 2.5,
	})

	add(EntityPoint, "HIDDEN", 256, PointData{Position: Point{X: 5, Y: 5}})

	return doc
}
