package engine

import (
	"encoding/json"

	"golang.org/x/image/math/f64"
)

// DrawCommand is one primitive for the host runtime to draw. Matrix is the
// node's world transform, column-major.
type DrawCommand struct {
	NodeID    string    `json:"nodeId"`
	Handle    string    `json:"handle"`
	Kind      NodeKind  `json:"kind"`
	Matrix    []float64 `json:"matrix"`
	Positions []float32 `json:"positions"`
	Normals   []float32 `json:"normals,omitempty"`
	Colors    []float32 `json:"colors,omitempty"`
	UVs       []float32 `json:"uvs,omitempty"`
	Indices   []uint32  `json:"indices,omitempty"`
	Material  *Material `json:"material"`
}

// CompileDrawCommands flattens the visible primitives under root in
// traversal order.
func CompileDrawCommands(root *Node) []DrawCommand {
	if root == nil {
		return nil
	}
	var commands []DrawCommand
	compileNode(root, Identity4(), &commands)
	return commands
}

func compileNode(node *Node, parent Matrix4, commands *[]DrawCommand) {
	if node == nil || !node.Visible {
		return
	}
	world := parent.Multiply(node.Matrix)

	g := node.Geometry
	if g != nil && !g.Disposed() && g.VertexCount() > 0 && node.Kind != NodeGroup {
		*commands = append(*commands, DrawCommand{
			NodeID:    node.ID,
			Handle:    node.Handle,
			Kind:      node.Kind,
			Matrix:    world.ToSlice(),
			Positions: g.Positions,
			Normals:   g.Normals,
			Colors:    g.Colors,
			UVs:       g.UVs,
			Indices:   g.Indices,
			Material:  node.Material,
		})
	}

	for _, child := range node.Children {
		compileNode(child, world, commands)
	}
}

// DrawCommandsToJSON serializes commands, encoding nil as an empty array.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NodeInfo is the lookup view of a live node.
type NodeInfo struct {
	ID          string     `json:"id"`
	Handle      string     `json:"handle"`
	Kind        NodeKind   `json:"kind"`
	Visible     bool       `json:"visible"`
	Attached    bool       `json:"attached"`
	Position    f64.Vec3   `json:"position"`
	Rotation    f64.Vec3   `json:"rotation"`
	Scale       f64.Vec3   `json:"scale"`
	VertexCount int        `json:"vertexCount"`
	Material    *Material  `json:"material,omitempty"`
	Children    []NodeInfo `json:"children,omitempty"`
}

// Info describes n and its children. The material is copied.
func (n *Node) Info() NodeInfo {
	info := NodeInfo{
		ID:          n.ID,
		Handle:      n.Handle,
		Kind:        n.Kind,
		Visible:     n.Visible,
		Attached:    n.Parent != nil,
		Position:    n.Position,
		Rotation:    n.Rotation,
		Scale:       n.Scale,
		VertexCount: n.Geometry.VertexCount(),
	}
	if n.Material != nil {
		m := *n.Material
		if m.Texture != nil {
			t := *m.Texture
			m.Texture = &t
		}
		info.Material = &m
	}
	for _, c := range n.Children {
		info.Children = append(info.Children, c.Info())
	}
	return info
}
