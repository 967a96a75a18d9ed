package engine

import (
	"encoding/json"
	"math"
	"slices"
	"testing"

	"github.com/inamate/draftview/backend-go/internal/document"
	"github.com/inamate/draftview/backend-go/internal/geom"
)

func newEntity(t *testing.T, handle string, kind document.EntityType, color int, data any) *document.Entity {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", kind, err)
	}
	return &document.Entity{
		Handle:  handle,
		Type:    kind,
		Visible: true,
		Layer:   "0",
		Color:   document.ColorRef{Index: color},
		Data:    raw,
	}
}

func square(size float64) document.PolylineData {
	return document.PolylineData{
		Closed: true,
		Vertices: []document.PolylineVertex{
			{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size},
		},
	}
}

func points(g *Geometry) []geom.Vertex {
	var out []geom.Vertex
	for i := 0; i+2 < len(g.Positions); i += 3 {
		out = append(out, geom.Vertex{X: float64(g.Positions[i]), Y: float64(g.Positions[i+1]), Z: float64(g.Positions[i+2])})
	}
	return out
}

func TestRenderClosedSquare(t *testing.T) {
	r := NewRegistry()
	scene := NewScene()

	e := newEntity(t, "1A", document.EntityLWPolyline, 1, square(10))
	e.Elevation = 2.5
	n := r.Render(e, scene)
	if n == nil {
		t.Fatal("expected a node")
	}
	if n.Kind != NodeLineLoop {
		t.Errorf("kind = %s, want %s", n.Kind, NodeLineLoop)
	}
	if got := n.Geometry.VertexCount(); got != 4 {
		t.Errorf("vertex count = %d, want 4", got)
	}
	if n.Material.Color != "#ff0000" {
		t.Errorf("color = %s, want #ff0000", n.Material.Color)
	}
	want := []geom.Vertex{{X: 0, Y: 0, Z: 2.5}, {X: 10, Y: 0, Z: 2.5}, {X: 10, Y: 10, Z: 2.5}, {X: 0, Y: 10, Z: 2.5}}
	if got := points(n.Geometry); !slices.Equal(got, want) {
		t.Errorf("vertices = %v, want %v", got, want)
	}
	if got := geom.PolylineLength(points(n.Geometry), true); math.Abs(got-40) > 1e-9 {
		t.Errorf("length = %v, want 40", got)
	}
	if len(scene.Children) != 1 || scene.Children[0] != n {
		t.Errorf("node not attached to container")
	}
	if n.Handle != "1A" {
		t.Errorf("handle = %q", n.Handle)
	}
}

func TestRenderNothing(t *testing.T) {
	r := NewRegistry()
	scene := NewScene()

	if n := r.Render(nil, scene); n != nil {
		t.Error("nil entity rendered")
	}

	hidden := newEntity(t, "1", document.EntityLine, 7, document.LineData{End: document.Point{X: 1}})
	hidden.Visible = false
	if n := r.Render(hidden, scene); n != nil {
		t.Error("invisible entity rendered")
	}

	unknown := newEntity(t, "2", "SPLINE", 7, map[string]any{})
	if n := r.Render(unknown, scene); n != nil {
		t.Error("unknown kind rendered")
	}

	face := newEntity(t, "3", document.Entity3DFace, 7, document.CornerData{
		Corners:        []document.Point{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1}},
		InvisibleEdges: 0xF,
	})
	if n := r.Render(face, scene); n != nil {
		t.Error("face with all edges hidden rendered")
	}

	empty := newEntity(t, "4", document.EntityLWPolyline, 7, document.PolylineData{})
	if n := r.Render(empty, scene); n != nil {
		t.Error("empty polyline rendered")
	}

	if len(scene.Children) != 0 || r.Len() != 0 {
		t.Errorf("scene children = %d, registry = %d, want 0/0", len(scene.Children), r.Len())
	}
}

func TestRenderTwiceReturnsCached(t *testing.T) {
	r := NewRegistry()
	scene := NewScene()
	e := newEntity(t, "1", document.EntityCircle, 2, document.CircleData{Radius: 5})

	first := r.Render(e, scene)
	second := r.Render(e, scene)
	if first == nil || first != second {
		t.Fatalf("second render returned %p, want %p", second, first)
	}
	if len(scene.Children) != 1 {
		t.Errorf("scene children = %d, want 1", len(scene.Children))
	}
}

func TestRenderReattachesHiddenNode(t *testing.T) {
	r := NewRegistry()
	scene := NewScene()
	e := newEntity(t, "1", document.EntityCircle, 2, document.CircleData{Radius: 5})
	n := r.Render(e, scene)

	hidden := *e
	hidden.Visible = false
	r.Update(&hidden, scene)
	if got := r.Render(&hidden, scene); got != n || n.Parent != nil {
		t.Fatal("invisible render should return the detached node")
	}

	if got := r.Render(e, scene); got != n {
		t.Fatalf("render returned %p, want %p", got, n)
	}
	if !n.Visible || n.Parent != scene || len(scene.Children) != 1 {
		t.Errorf("visible %v, attached %v, children %d", n.Visible, n.Parent == scene, len(scene.Children))
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	r := NewRegistry()
	scene := NewScene()
	e := newEntity(t, "1", document.EntityLWPolyline, 1, square(10))
	n := r.Render(e, scene)

	if !r.Dispose(e, scene) {
		t.Fatal("first dispose returned false")
	}
	if r.Dispose(e, scene) {
		t.Error("second dispose returned true")
	}
	if !n.Geometry.Disposed() || !n.Material.Disposed() {
		t.Error("resources not released")
	}
	if len(scene.Children) != 0 {
		t.Error("node still attached")
	}
	if r.GetByHandle("1") != nil {
		t.Error("handle still registered")
	}
	if r.Dispose(nil, scene) {
		t.Error("nil dispose returned true")
	}
}

func TestSetVisibility(t *testing.T) {
	r := NewRegistry()
	scene := NewScene()
	e := newEntity(t, "1", document.EntityLWPolyline, 1, square(10))
	n := r.Render(e, scene)

	if !r.SetVisibility(e, scene, false) {
		t.Fatal("hide returned false")
	}
	if len(scene.Children) != 0 {
		t.Error("hidden node still attached")
	}
	if n.Visible {
		t.Error("hidden node reports visible")
	}
	if r.GetByHandle("1") != n {
		t.Error("hidden node dropped from registry")
	}

	if !r.SetVisibility(e, scene, true) {
		t.Fatal("show returned false")
	}
	if len(scene.Children) != 1 || !n.Visible {
		t.Error("shown node not attached")
	}
	if n.Geometry.Disposed() {
		t.Error("visibility toggle disposed geometry")
	}

	if r.SetHandleVisibility("missing", scene, true) {
		t.Error("unknown handle returned true")
	}
}

func TestUpdate(t *testing.T) {
	r := NewRegistry()
	scene := NewScene()

	t.Run("unknown handle", func(t *testing.T) {
		e := newEntity(t, "X", document.EntityLine, 1, document.LineData{End: document.Point{X: 1}})
		if r.Update(e, scene) {
			t.Error("update of unknown handle returned true")
		}
		if r.Update(nil, scene) {
			t.Error("update of nil returned true")
		}
	})

	e := newEntity(t, "1", document.EntityLWPolyline, 1, square(10))
	n := r.Render(e, scene)
	id := n.ID

	t.Run("material only", func(t *testing.T) {
		geo := n.Geometry
		e2 := *e
		e2.Color = document.ColorRef{Index: 3}
		if !r.Update(&e2, scene) {
			t.Fatal("update returned false")
		}
		if n.Geometry != geo {
			t.Error("geometry rebuilt for a color change")
		}
		if n.Material.Color != "#00ff00" {
			t.Errorf("color = %s, want #00ff00", n.Material.Color)
		}
	})

	t.Run("geometry", func(t *testing.T) {
		e3 := newEntity(t, "1", document.EntityLWPolyline, 1, document.PolylineData{
			Vertices: []document.PolylineVertex{{X: 0}, {X: 1}, {X: 2}, {X: 3}, {X: 4}},
		})
		if !r.Update(e3, scene) {
			t.Fatal("update returned false")
		}
		got := r.GetByHandle("1")
		if got != n || got.ID != id {
			t.Error("update replaced the node")
		}
		if n.Kind != NodeLine || n.Geometry.VertexCount() != 5 {
			t.Errorf("kind %s, vertices %d; want line with 5", n.Kind, n.Geometry.VertexCount())
		}
		if len(scene.Children) != 1 {
			t.Errorf("scene children = %d, want 1", len(scene.Children))
		}
	})

	t.Run("becomes invisible", func(t *testing.T) {
		e4 := *e
		e4.Visible = false
		if !r.Update(&e4, scene) {
			t.Fatal("update returned false")
		}
		if len(scene.Children) != 0 || r.Len() != 1 {
			t.Error("invisible update should detach and keep the entry")
		}
		if !r.Update(e, scene) {
			t.Fatal("update returned false")
		}
		if len(scene.Children) != 1 || !n.Visible {
			t.Error("visible update should re-attach")
		}
	})
}

func TestTransformApplied(t *testing.T) {
	r := NewRegistry()
	scene := NewScene()
	e := newEntity(t, "1", document.EntityLine, 7, document.LineData{End: document.Point{X: 1}})
	m := Translation(5, 6, 7).Multiply(RotationZ(math.Pi / 2))
	e.Transform = m.ToSlice()

	n := r.Render(e, scene)
	if n.Matrix != m {
		t.Errorf("matrix = %v, want %v", n.Matrix, m)
	}
	if n.Position[0] != 5 || n.Position[1] != 6 || n.Position[2] != 7 {
		t.Errorf("position = %v", n.Position)
	}
	if math.Abs(n.Rotation[2]-math.Pi/2) > 1e-9 {
		t.Errorf("rotation z = %v", n.Rotation[2])
	}

	bad := newEntity(t, "2", document.EntityLine, 7, document.LineData{End: document.Point{X: 1}})
	bad.Transform = []float64{1, 2, 3}
	if n := r.Render(bad, scene); n == nil || !n.Matrix.IsIdentity() {
		t.Error("malformed transform should fall back to identity")
	}
}

func TestWidePolylineIsGroup(t *testing.T) {
	r := NewRegistry()
	scene := NewScene()
	e := newEntity(t, "1", document.EntityLWPolyline, 1, document.PolylineData{
		Vertices: []document.PolylineVertex{
			{X: 0, Y: 0, StartWidth: 1, EndWidth: 1},
			{X: 10, Y: 0, StartWidth: 1, EndWidth: 1},
			{X: 10, Y: 10},
		},
	})
	n := r.Render(e, scene)
	if n == nil || n.Kind != NodeGroup {
		t.Fatalf("want group node, got %+v", n)
	}
	if len(n.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(n.Children))
	}
	if n.Children[0].Kind != NodeLine || n.Children[1].Kind != NodeMesh {
		t.Errorf("child kinds = %s, %s", n.Children[0].Kind, n.Children[1].Kind)
	}
	if n.Children[0].Material == n.Children[1].Material {
		t.Error("children share a material")
	}

	children := append([]*Node(nil), n.Children...)
	r.Dispose(e, scene)
	for _, c := range children {
		if !c.Geometry.Disposed() {
			t.Error("child geometry not disposed")
		}
	}
}

func TestClear(t *testing.T) {
	r := NewRegistry()
	scene := NewScene()
	for _, h := range []string{"B", "A", "C"} {
		r.Render(newEntity(t, h, document.EntityCircle, 1, document.CircleData{Radius: 1}), scene)
	}
	if got := r.Handles(); len(got) != 3 || got[0] != "A" || got[2] != "C" {
		t.Errorf("handles = %v", got)
	}
	r.Clear(scene)
	if r.Len() != 0 || len(scene.Children) != 0 {
		t.Error("clear left nodes behind")
	}
}
