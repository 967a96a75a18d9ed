package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/inamate/draftview/backend-go/internal/aci"
	"github.com/inamate/draftview/backend-go/internal/document"
	"github.com/inamate/draftview/backend-go/internal/geom"
)

const pendingBuffer = 64

// Config configures an Engine. The zero value is usable.
type Config struct {
	ArcSegments    int
	CircleSegments int
	WidePolylines  bool
	// ByLayerColors resolves index 256 through the entity's layer.
	ByLayerColors bool
	Sources       SourceResolver
	Loader        TextureLoader
	Logger        *slog.Logger
}

// DefaultConfig mirrors DefaultBuildOptions.
func DefaultConfig() Config {
	o := DefaultBuildOptions()
	return Config{
		ArcSegments:    o.ArcSegments,
		CircleSegments: o.CircleSegments,
		WidePolylines:  o.WidePolylines,
	}
}

// Engine owns one document, its scene and the registry of live nodes.
// It processes entity operations from the host and returns draw commands.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	doc      *document.Document
	scene    *Node
	registry *Registry

	ctx      context.Context
	cancel   context.CancelFunc
	pending  chan textureResult
	inflight map[string]bool
	loaded   map[string][2]int
}

// NewEngine creates an engine with an empty document.
func NewEngine(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		cfg:      cfg,
		logger:   logger,
		scene:    NewScene(),
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(chan textureResult, pendingBuffer),
		inflight: make(map[string]bool),
		loaded:   make(map[string][2]int),
	}
	e.reset(document.NewEmptyDocument("", "Untitled"))
	return e
}

// Close abandons outstanding texture loads.
func (e *Engine) Close() {
	e.cancel()
}

// --- Documents ---

// LoadDocument replaces the document from JSON and renders every entity.
func (e *Engine) LoadDocument(jsonData string) error {
	var doc document.Document
	if err := json.Unmarshal([]byte(jsonData), &doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	e.SetDocument(&doc)
	return nil
}

// LoadSampleDocument loads the built-in sample drawing.
func (e *Engine) LoadSampleDocument(id string) {
	e.SetDocument(document.NewSampleDocument(id))
}

// SetDocument replaces the document and renders every entity.
func (e *Engine) SetDocument(doc *document.Document) {
	if doc == nil {
		doc = document.NewEmptyDocument("", "Untitled")
	}
	e.reset(doc)
	rendered := 0
	for i := range doc.Entities {
		if e.render(&doc.Entities[i]) != nil {
			rendered++
		}
	}
	e.logger.Info("document loaded", "id", doc.ID, "entities", len(doc.Entities), "rendered", rendered)
}

// Document returns the current document.
func (e *Engine) Document() *document.Document { return e.doc }

// GetDocument returns the current document as JSON.
func (e *Engine) GetDocument() string {
	data, err := json.Marshal(e.doc)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func (e *Engine) reset(doc *document.Document) {
	if e.registry != nil {
		e.registry.Clear(e.scene)
	}
	e.doc = doc
	if e.doc.Layers == nil {
		e.doc.Layers = map[string]document.Layer{}
	}
	e.registry = NewRegistry(WithLogger(e.logger), WithBuildOptions(e.buildOptions()))
}

func (e *Engine) buildOptions() BuildOptions {
	o := DefaultBuildOptions()
	if e.cfg.ArcSegments > 0 {
		o.ArcSegments = e.cfg.ArcSegments
	}
	if e.cfg.CircleSegments > 0 {
		o.CircleSegments = e.cfg.CircleSegments
	}
	o.WidePolylines = e.cfg.WidePolylines
	o.Sources = e.cfg.Sources
	o.Color = e.colorFor
	if bg, err := aci.ParseHex(e.doc.Background); err == nil {
		o.Background = bg
	}
	return o
}

// colorFor resolves true color first, then the palette, optionally routing
// by-layer through the entity's layer. White flips to black over a light
// background.
func (e *Engine) colorFor(ent *document.Entity) aci.Color {
	if ent.Color.RGB != nil {
		return aci.FromRGB(aci.RGB(*ent.Color.RGB))
	}
	var o aci.Overrides
	if e.cfg.ByLayerColors && ent.Color.Index == aci.ByLayer {
		if rgb, idx, ok := e.doc.LayerColor(ent.Layer); ok {
			v := aci.RGB(rgb)
			if idx > 0 {
				v = aci.Resolve(idx).Packed()
			}
			o.ByLayer = &v
		}
	}
	c := aci.ResolveWith(ent.Color.Index, o)
	if bg, err := aci.ParseHex(e.doc.Background); err == nil {
		c = aci.Contrast(c, bg)
	}
	return c
}

// effective returns ent as the registry should see it: an entity on a layer
// that is off or frozen is invisible.
func (e *Engine) effective(ent *document.Entity) *document.Entity {
	l, ok := e.doc.Layers[ent.Layer]
	if !ok || (!l.Off && !l.Frozen) {
		return ent
	}
	c := *ent
	c.Visible = false
	return &c
}

// --- Entity operations ---

// RenderEntity renders ent and records it in the document. A handle that is
// already live returns the existing node, re-attached if ent is visible.
func (e *Engine) RenderEntity(ent *document.Entity) *Node {
	if ent == nil {
		return nil
	}
	if e.registry.GetByHandle(ent.Handle) != nil {
		if stored, ok := e.doc.Entity(ent.Handle); ok && ent.Visible {
			stored.Visible = true
		}
		return e.registry.Render(e.effective(ent), e.scene)
	}
	if ent.Handle != "" {
		e.doc.Upsert(*ent)
	}
	return e.render(ent)
}

func (e *Engine) render(ent *document.Entity) *Node {
	n := e.registry.Render(e.effective(ent), e.scene)
	if n != nil {
		e.requestTextures(n)
	}
	return n
}

// UpdateEntity rebuilds the live node for ent. It returns false when the
// handle has no live node.
func (e *Engine) UpdateEntity(ent *document.Entity) bool {
	if ent == nil || !e.registry.Update(e.effective(ent), e.scene) {
		return false
	}
	e.doc.Upsert(*ent)
	if n := e.registry.GetByHandle(ent.Handle); n != nil {
		e.requestTextures(n)
	}
	return true
}

// DisposeEntity disposes the node for ent and drops it from the document.
func (e *Engine) DisposeEntity(ent *document.Entity) bool {
	if ent == nil {
		return false
	}
	return e.DisposeHandle(ent.Handle)
}

// DisposeHandle disposes the node for handle and drops the entity from the
// document. It returns false, leaving the document alone, when the handle
// has no live node.
func (e *Engine) DisposeHandle(handle string) bool {
	if !e.registry.DisposeHandle(handle, e.scene) {
		return false
	}
	e.doc.Remove(handle)
	return true
}

// SetVisibility shows or hides a live node without rebuilding it.
func (e *Engine) SetVisibility(handle string, visible bool) bool {
	if !e.registry.SetHandleVisibility(handle, e.scene, visible) {
		return false
	}
	if ent, ok := e.doc.Entity(handle); ok {
		ent.Visible = visible
	}
	return true
}

// Node returns the live node for handle, or nil.
func (e *Engine) Node(handle string) *Node { return e.registry.GetByHandle(handle) }

// Handles returns every live handle, sorted.
func (e *Engine) Handles() []string { return e.registry.Handles() }

// Scene returns the root container.
func (e *Engine) Scene() *Node { return e.scene }

// --- Serialized entry points ---

// RenderEntityJSON decodes one entity record and renders it. Malformed
// input yields nil.
func (e *Engine) RenderEntityJSON(raw string) *Node {
	ent, err := document.ParseEntity([]byte(raw))
	if err != nil {
		e.logger.Debug("malformed entity", "error", err)
		return nil
	}
	return e.RenderEntity(ent)
}

// UpdateEntityJSON decodes one entity record and updates its node.
func (e *Engine) UpdateEntityJSON(raw string) bool {
	ent, err := document.ParseEntity([]byte(raw))
	if err != nil {
		e.logger.Debug("malformed entity", "error", err)
		return false
	}
	return e.UpdateEntity(ent)
}

// DisposeEntityJSON decodes one entity record and disposes its node.
func (e *Engine) DisposeEntityJSON(raw string) bool {
	ent, err := document.ParseEntity([]byte(raw))
	if err != nil {
		e.logger.Debug("malformed entity", "error", err)
		return false
	}
	return e.DisposeEntity(ent)
}

// --- Queries ---

// DrawCommands compiles every visible primitive.
func (e *Engine) DrawCommands() []DrawCommand {
	return CompileDrawCommands(e.scene)
}

// RenderJSON returns the draw commands as JSON.
func (e *Engine) RenderJSON() string {
	result, err := DrawCommandsToJSON(e.DrawCommands())
	if err != nil {
		e.logger.Error("encode draw commands", "error", err)
		return "[]"
	}
	return result
}

// Extents returns the world-space bounds of every visible primitive.
func (e *Engine) Extents() (lo, hi geom.Vertex, ok bool) {
	var pts []geom.Vertex
	for _, cmd := range e.DrawCommands() {
		m, _ := MatrixFromSlice(cmd.Matrix)
		for i := 0; i+2 < len(cmd.Positions); i += 3 {
			x, y, z := m.TransformPoint(float64(cmd.Positions[i]), float64(cmd.Positions[i+1]), float64(cmd.Positions[i+2]))
			pts = append(pts, geom.Vertex{X: x, Y: y, Z: z})
		}
	}
	return geom.Bounds(pts)
}

// --- Textures ---

func (e *Engine) requestTextures(n *Node) {
	if e.cfg.Loader == nil {
		return
	}
	for _, t := range n.Textures() {
		if !t.Placeholder || e.inflight[t.Source] {
			continue
		}
		if dims, ok := e.loaded[t.Source]; ok {
			t.Width, t.Height, t.Placeholder = dims[0], dims[1], false
			continue
		}
		e.inflight[t.Source] = true
		go e.loadTexture(t.Source)
	}
}

func (e *Engine) loadTexture(source string) {
	w, h, err := e.cfg.Loader.Load(e.ctx, source)
	select {
	case e.pending <- textureResult{source: source, width: w, height: h, err: err}:
	case <-e.ctx.Done():
	}
}

// ApplyPending upgrades placeholder textures whose loads have completed and
// returns how many textures changed. Textures of disposed nodes are skipped.
func (e *Engine) ApplyPending() int {
	upgraded := 0
	for {
		select {
		case res := <-e.pending:
			delete(e.inflight, res.source)
			if res.err != nil {
				e.logger.Warn("texture load failed", "source", res.source, "error", res.err)
				continue
			}
			e.loaded[res.source] = [2]int{res.width, res.height}
			for _, h := range e.registry.Handles() {
				for _, t := range e.registry.GetByHandle(h).Textures() {
					if t.Source != res.source || !t.Placeholder || t.disposed {
						continue
					}
					t.Width, t.Height, t.Placeholder = res.width, res.height, false
					upgraded++
				}
			}
		default:
			return upgraded
		}
	}
}
