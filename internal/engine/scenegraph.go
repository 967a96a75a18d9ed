package engine

import (
	"golang.org/x/image/math/f64"

	"github.com/inamate/draftview/backend-go/internal/typeid"
)

// NodeKind is the primitive a node asks the host runtime to draw.
type NodeKind string

const (
	NodeGroup        NodeKind = "group"
	NodeLine         NodeKind = "line"         // strip
	NodeLineLoop     NodeKind = "lineLoop"     // closed strip
	NodeLineSegments NodeKind = "lineSegments" // disjoint pairs
	NodeMesh         NodeKind = "mesh"
	NodePoints       NodeKind = "points"
)

// Geometry holds the flat buffers of one primitive. Positions and normals
// have stride 3, colors stride 3, UVs stride 2.
type Geometry struct {
	Positions []float32
	Normals   []float32
	Colors    []float32
	UVs       []float32
	Indices   []uint32

	disposed bool
}

// VertexCount is len(Positions)/3.
func (g *Geometry) VertexCount() int {
	if g == nil {
		return 0
	}
	return len(g.Positions) / 3
}

// Dispose releases the buffers.
func (g *Geometry) Dispose() {
	if g == nil {
		return
	}
	g.Positions, g.Normals, g.Colors, g.UVs, g.Indices = nil, nil, nil, nil, nil
	g.disposed = true
}

// Disposed reports whether Dispose was called.
func (g *Geometry) Disposed() bool { return g != nil && g.disposed }

type MaterialKind string

const (
	MaterialLine    MaterialKind = "line"
	MaterialPoint   MaterialKind = "point"
	MaterialSurface MaterialKind = "surface"
)

// Texture references a raster source. Placeholder is true until the source
// has been decoded.
type Texture struct {
	Source      string `json:"source"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Placeholder bool   `json:"placeholder"`

	disposed bool
}

func (t *Texture) Dispose() {
	if t != nil {
		t.disposed = true
	}
}

// Material is the resolved material request for one primitive.
type Material struct {
	Kind         MaterialKind `json:"kind"`
	Color        string       `json:"color"`
	Opacity      float64      `json:"opacity"`
	Transparent  bool         `json:"transparent"`
	DepthTest    bool         `json:"depthTest"`
	DepthWrite   bool         `json:"depthWrite"`
	LineWidth    float64      `json:"lineWidth,omitempty"`
	PointSize    float64      `json:"pointSize,omitempty"`
	DoubleSided  bool         `json:"doubleSided,omitempty"`
	VertexColors bool         `json:"vertexColors,omitempty"`
	Texture      *Texture     `json:"texture,omitempty"`

	disposed bool
}

// Dispose releases the material and its texture.
func (m *Material) Dispose() {
	if m == nil {
		return
	}
	m.Texture.Dispose()
	m.disposed = true
}

// Disposed reports whether Dispose was called.
func (m *Material) Disposed() bool { return m != nil && m.disposed }

// Node is a renderable unit: a group, or a primitive owning its geometry
// and material.
type Node struct {
	ID     string
	Handle string
	Kind   NodeKind

	Geometry *Geometry
	Material *Material

	Matrix   Matrix4
	Position f64.Vec3
	Rotation f64.Vec3
	Scale    f64.Vec3

	Visible bool

	Parent   *Node
	Children []*Node
}

// NewNode creates a detached, visible node with an identity transform.
func NewNode(kind NodeKind, handle string) *Node {
	return &Node{
		ID:      typeid.NewNodeID(),
		Handle:  handle,
		Kind:    kind,
		Matrix:  Identity4(),
		Scale:   f64.Vec3{1, 1, 1},
		Visible: true,
	}
}

// NewScene creates an empty root container.
func NewScene() *Node {
	return NewNode(NodeGroup, "")
}

// Add attaches child, detaching it from any previous parent. Adding a child
// that is already attached here is a no-op.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.Parent == n {
		return
	}
	if child.Parent != nil {
		child.Parent.Remove(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Remove detaches child. It returns false when child is not attached here.
func (n *Node) Remove(child *Node) bool {
	if child == nil || child.Parent != n {
		return false
	}
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return true
		}
	}
	return false
}

// Traverse visits n and all descendants depth first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// Dispose releases the geometry and material of n and every descendant.
func (n *Node) Dispose() {
	n.Traverse(func(c *Node) {
		c.Geometry.Dispose()
		c.Material.Dispose()
	})
}

// SetMatrix stores m and its decomposition.
func (n *Node) SetMatrix(m Matrix4) {
	n.Matrix = m
	n.Position, n.Rotation, n.Scale = m.Decompose()
}

// Textures returns every texture under n.
func (n *Node) Textures() []*Texture {
	var out []*Texture
	n.Traverse(func(c *Node) {
		if c.Material != nil && c.Material.Texture != nil {
			out = append(out, c.Material.Texture)
		}
	})
	return out
}
