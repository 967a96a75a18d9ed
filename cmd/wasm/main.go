//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/draftview/backend-go/internal/engine"
)

var eng *engine.Engine

// browserSources accepts every raster source; the page fetches images itself.
type browserSources struct{}

func (browserSources) Resolve(source string) (string, bool) { return source, source != "" }

func main() {
	cfg := engine.DefaultConfig()
	cfg.Sources = browserSources{}
	eng = engine.NewEngine(cfg)

	draftEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	draftEngine.Set("loadDocument", js.FuncOf(loadDocument))
	draftEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	draftEngine.Set("renderEntity", js.FuncOf(renderEntity))
	draftEngine.Set("updateEntity", js.FuncOf(updateEntity))
	draftEngine.Set("disposeEntity", js.FuncOf(disposeEntity))
	draftEngine.Set("setVisibility", js.FuncOf(setVisibility))

	// --- Queries (frontend ← backend) ---
	draftEngine.Set("render", js.FuncOf(render))
	draftEngine.Set("getNode", js.FuncOf(getNode))
	draftEngine.Set("getHandles", js.FuncOf(getHandles))
	draftEngine.Set("getExtents", js.FuncOf(getExtents))
	draftEngine.Set("getDocument", js.FuncOf(getDocument))

	js.Global().Set("draftEngine", draftEngine)
	js.Global().Set("draftWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}
	if err := eng.LoadDocument(args[0].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	id := "doc_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		id = args[0].String()
	}
	eng.LoadSampleDocument(id)
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// renderEntity returns the node as JSON, or null when there is nothing to
// render.
func renderEntity(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.Null()
	}
	n := eng.RenderEntityJSON(args[0].String())
	if n == nil {
		return js.Null()
	}
	return nodeJSON(n)
}

func updateEntity(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.UpdateEntityJSON(args[0].String()))
}

func disposeEntity(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.DisposeEntityJSON(args[0].String()))
}

func setVisibility(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.SetVisibility(args[0].String(), args[1].Bool()))
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.RenderJSON())
}

func getNode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.Null()
	}
	n := eng.Node(args[0].String())
	if n == nil {
		return js.Null()
	}
	return nodeJSON(n)
}

func getHandles(this js.Value, args []js.Value) interface{} {
	data, _ := json.Marshal(eng.Handles())
	return js.ValueOf(string(data))
}

func getExtents(this js.Value, args []js.Value) interface{} {
	lo, hi, ok := eng.Extents()
	if !ok {
		return js.Null()
	}
	data, _ := json.Marshal(map[string]interface{}{"min": lo, "max": hi})
	return js.ValueOf(string(data))
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDocument())
}

func nodeJSON(n *engine.Node) js.Value {
	data, err := json.Marshal(n.Info())
	if err != nil {
		return js.Null()
	}
	return js.ValueOf(string(data))
}
