package engine

import (
	"log/slog"
	"slices"
	"strconv"

	"github.com/inamate/draftview/backend-go/internal/document"
)

// Registry keeps at most one live node per entity handle and implements the
// render/update/dispose/visibility lifecycle for every entity kind.
//
// A Registry is not safe for concurrent use; hosts that share one across
// goroutines must serialize access.
type Registry struct {
	builders map[document.EntityType]Builder
	entries  map[string]*entry
	logger   *slog.Logger
}

type entry struct {
	node      *Node
	kind      document.EntityType
	signature uint64
	styles    []styled
}

// styled remembers the material overrides a primitive node was built with.
type styled struct {
	node  *Node
	kind  MaterialKind
	color string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry's logger.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBuilder registers or replaces the builder for one entity kind.
func WithBuilder(kind document.EntityType, b Builder) RegistryOption {
	return func(r *Registry) { r.builders[kind] = b }
}

// WithBuildOptions replaces all builders with the defaults built from opts.
func WithBuildOptions(opts BuildOptions) RegistryOption {
	return func(r *Registry) {
		for k, b := range DefaultBuilders(opts) {
			r.builders[k] = b
		}
	}
}

// NewRegistry creates a registry with the default builders.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		builders: DefaultBuilders(DefaultBuildOptions()),
		entries:  make(map[string]*entry),
		logger:   discardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render builds and attaches a node for e. It returns nil, without touching
// container, when e is nil, invisible, of an unknown kind or has nothing to
// render. A handle that is already live returns its existing node without
// rebuilding it; a hidden node is re-attached when e is visible.
func (r *Registry) Render(e *document.Entity, container *Node) *Node {
	if e == nil || e.Handle == "" || container == nil {
		return nil
	}
	if existing, ok := r.entries[e.Handle]; ok {
		node := existing.node
		if e.Visible && (!node.Visible || node.Parent != container) {
			node.Visible = true
			container.Add(node)
		}
		return node
	}
	b, ok := r.builders[e.Type]
	if !ok {
		r.logger.Debug("no builder for entity", "handle", e.Handle, "kind", e.Type)
		return nil
	}
	shape := b.BuildGeometry(e)
	if shape == nil {
		return nil
	}

	node := NewNode(NodeGroup, e.Handle)
	styles := r.populate(node, shape, b.BuildMaterial(e))
	r.applyTransform(node, e)
	container.Add(node)

	r.entries[e.Handle] = &entry{node: node, kind: e.Type, signature: geometrySignature(e), styles: styles}
	r.logger.Debug("rendered entity", "handle", e.Handle, "kind", e.Type, "node", node.ID)
	return node
}

// Update rebuilds the live node for e in place. It returns false when no
// node exists for the handle. Geometry is rebuilt only when the inputs that
// shape it changed; material and transform are always refreshed. An
// entity that became invisible, or lost its geometry, is detached from
// container but stays registered.
func (r *Registry) Update(e *document.Entity, container *Node) bool {
	if e == nil {
		return false
	}
	ent, ok := r.entries[e.Handle]
	if !ok {
		return false
	}
	b, ok := r.builders[e.Type]
	if !ok {
		r.logger.Debug("no builder for entity", "handle", e.Handle, "kind", e.Type)
		return false
	}
	node := ent.node

	if !e.Visible {
		r.hide(node, container)
		return true
	}

	sig := geometrySignature(e)
	mat := b.BuildMaterial(e)
	if sig != ent.signature || ent.kind != e.Type || node.Geometry.Disposed() {
		shape := b.BuildGeometry(e)
		if shape == nil {
			r.hide(node, container)
			return true
		}
		r.clear(node)
		ent.styles = r.populate(node, shape, mat)
		ent.signature, ent.kind = sig, e.Type
	} else {
		r.restyle(ent.styles, mat)
	}
	r.applyTransform(node, e)

	node.Visible = true
	if container != nil && node.Parent != container {
		container.Add(node)
	}
	return true
}

// Dispose detaches the node for e and releases its resources. It returns
// false when no node exists for the handle, so repeated calls are safe.
func (r *Registry) Dispose(e *document.Entity, container *Node) bool {
	if e == nil {
		return false
	}
	return r.DisposeHandle(e.Handle, container)
}

// DisposeHandle is Dispose keyed by handle.
func (r *Registry) DisposeHandle(handle string, container *Node) bool {
	ent, ok := r.entries[handle]
	if !ok {
		return false
	}
	node := ent.node
	if container != nil {
		container.Remove(node)
	}
	if node.Parent != nil {
		node.Parent.Remove(node)
	}
	node.Dispose()
	delete(r.entries, handle)
	r.logger.Debug("disposed entity", "handle", handle, "node", node.ID)
	return true
}

// SetVisibility shows or hides the node for e without rebuilding it.
// Hiding detaches the node from container; showing re-attaches it.
func (r *Registry) SetVisibility(e *document.Entity, container *Node, visible bool) bool {
	if e == nil {
		return false
	}
	return r.SetHandleVisibility(e.Handle, container, visible)
}

// SetHandleVisibility is SetVisibility keyed by handle.
func (r *Registry) SetHandleVisibility(handle string, container *Node, visible bool) bool {
	ent, ok := r.entries[handle]
	if !ok {
		return false
	}
	if !visible {
		r.hide(ent.node, container)
		return true
	}
	ent.node.Visible = true
	if container != nil {
		container.Add(ent.node)
	}
	return true
}

// GetByHandle returns the live node for handle, or nil.
func (r *Registry) GetByHandle(handle string) *Node {
	if ent, ok := r.entries[handle]; ok {
		return ent.node
	}
	return nil
}

// Len returns the number of registered handles.
func (r *Registry) Len() int { return len(r.entries) }

// Handles returns the registered handles in sorted order.
func (r *Registry) Handles() []string {
	out := make([]string, 0, len(r.entries))
	for h := range r.entries {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

// Clear disposes every registered node.
func (r *Registry) Clear(container *Node) {
	for _, h := range r.Handles() {
		r.DisposeHandle(h, container)
	}
}

func (r *Registry) hide(node *Node, container *Node) {
	node.Visible = false
	if container != nil {
		container.Remove(node)
	}
	if node.Parent != nil {
		node.Parent.Remove(node)
	}
}

// populate fills node from shape. A single primitive is drawn by node
// itself; several become children, each with its own material.
func (r *Registry) populate(node *Node, shape *Shape, spec MaterialSpec) []styled {
	if len(shape.Primitives) == 1 {
		p := shape.Primitives[0]
		node.Kind = p.Kind
		node.Geometry = p.Buffers.geometry()
		node.Material = spec.instantiate(p.Material, p.Color)
		node.Material.VertexColors = len(p.Buffers.Colors) > 0
		return []styled{{node: node, kind: p.Material, color: p.Color}}
	}
	node.Kind = NodeGroup
	styles := make([]styled, 0, len(shape.Primitives))
	for i, p := range shape.Primitives {
		child := NewNode(p.Kind, node.Handle+"#"+strconv.Itoa(i))
		child.Geometry = p.Buffers.geometry()
		child.Material = spec.instantiate(p.Material, p.Color)
		child.Material.VertexColors = len(p.Buffers.Colors) > 0
		node.Add(child)
		styles = append(styles, styled{node: child, kind: p.Material, color: p.Color})
	}
	return styles
}

// clear releases node's geometry and children but keeps node itself.
func (r *Registry) clear(node *Node) {
	node.Geometry.Dispose()
	node.Material.Dispose()
	node.Geometry, node.Material = nil, nil
	for _, c := range slices.Clone(node.Children) {
		node.Remove(c)
		c.Dispose()
	}
}

// restyle swaps in fresh materials. A texture whose source is unchanged is
// carried over so a decoded image is not reloaded.
func (r *Registry) restyle(styles []styled, spec MaterialSpec) {
	for _, st := range styles {
		old := st.node.Material
		m := spec.instantiate(st.kind, st.color)
		if old != nil {
			m.VertexColors = old.VertexColors
			if old.Texture != nil && m.Texture != nil && old.Texture.Source == m.Texture.Source {
				m.Texture = old.Texture
				old.Texture = nil
			}
			old.Dispose()
		}
		st.node.Material = m
	}
}

func (r *Registry) applyTransform(node *Node, e *document.Entity) {
	if len(e.Transform) == 0 {
		node.SetMatrix(Identity4())
		return
	}
	m, ok := MatrixFromSlice(e.Transform)
	if !ok {
		r.logger.Warn("ignoring malformed transform", "handle", e.Handle, "len", len(e.Transform))
	}
	node.SetMatrix(m)
}

// geometrySignature hashes everything geometry depends on.
func geometrySignature(e *document.Entity) uint64 {
	return signature(
		[]byte(e.Type),
		e.Data,
		[]byte(strconv.FormatFloat(e.Elevation, 'g', -1, 64)),
	)
}
