// Package api exposes documents and their entity lifecycle over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inamate/draftview/backend-go/internal/document"
	"github.com/inamate/draftview/backend-go/internal/engine"
	"github.com/inamate/draftview/backend-go/internal/export"
	"github.com/inamate/draftview/backend-go/internal/geom"
	"github.com/inamate/draftview/backend-go/internal/session"
	"github.com/inamate/draftview/backend-go/internal/store"
	"github.com/inamate/draftview/backend-go/internal/typeid"
)

const maxBodySize = 16 << 20

type Handler struct {
	docs store.Store
	hub  *session.Hub
}

func NewHandler(docs store.Store, hub *session.Hub) *Handler {
	return &Handler{docs: docs, hub: hub}
}

// Routes registers every document route on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/documents", h.List).Methods("GET")
	r.HandleFunc("/documents", h.Create).Methods("POST")
	r.HandleFunc("/documents/sample", h.CreateSample).Methods("POST")
	r.HandleFunc("/documents/{id}", h.Get).Methods("GET")
	r.HandleFunc("/documents/{id}", h.Delete).Methods("DELETE")
	r.HandleFunc("/documents/{id}/render", h.Render).Methods("GET")
	r.HandleFunc("/documents/{id}/extents", h.Extents).Methods("GET")
	r.HandleFunc("/documents/{id}/export.obj", h.ExportOBJ).Methods("GET")
	r.HandleFunc("/documents/{id}/entities", h.RenderEntity).Methods("POST")
	r.HandleFunc("/documents/{id}/entities/{handle}", h.GetEntity).Methods("GET")
	r.HandleFunc("/documents/{id}/entities/{handle}", h.UpdateEntity).Methods("PUT")
	r.HandleFunc("/documents/{id}/entities/{handle}", h.DisposeEntity).Methods("DELETE")
	r.HandleFunc("/documents/{id}/entities/{handle}/visibility", h.SetVisibility).Methods("PATCH")
}

type createResponse struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
}

type visibilityRequest struct {
	Visible *bool `json:"visible"`
}

type extentsResponse struct {
	Empty bool         `json:"empty"`
	Min   *geom.Vertex `json:"min,omitempty"`
	Max   *geom.Vertex `json:"max,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.docs.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var doc document.Document
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document"})
		return
	}
	if doc.ID == "" {
		doc.ID = typeid.NewDocumentID()
	}
	if doc.Name == "" {
		doc.Name = "Untitled"
	}
	if len(doc.Layers) == 0 {
		doc.Layers = document.NewEmptyDocument(doc.ID, doc.Name).Layers
	}
	if doc.Entities == nil {
		doc.Entities = []document.Entity{}
	}
	h.save(w, r, &doc)
}

func (h *Handler) CreateSample(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, document.NewSampleDocument(typeid.NewDocumentID()))
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, doc *document.Document) {
	if err := h.docs.Put(r.Context(), doc); err != nil {
		handleServiceError(w, err)
		return
	}
	h.hub.Replace(doc)
	writeJSON(w, http.StatusCreated, createResponse{ID: doc.ID, Version: doc.Version})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docs.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.docs.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}
	h.hub.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	var (
		data string
		err  error
	)
	room.View(func(eng *engine.Engine) {
		eng.ApplyPending()
		data, err = engine.DrawCommandsToJSON(eng.DrawCommands())
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, data)
}

func (h *Handler) Extents(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	var resp extentsResponse
	room.View(func(eng *engine.Engine) {
		lo, hi, ok := eng.Extents()
		if !ok {
			resp.Empty = true
			return
		}
		resp.Min, resp.Max = &lo, &hi
	})
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ExportOBJ(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	room.View(func(eng *engine.Engine) {
		export.ServeOBJ(w, eng.Document().Name, eng.DrawCommands())
	})
}

func (h *Handler) RenderEntity(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	payload, err := json.Marshal(session.EntityPayload{Entity: body})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entity"})
		return
	}

	res, err := h.hub.Apply(r.Context(), room, &session.Message{Type: session.TypeEntityRender, Payload: payload})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !res.OK {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, res.Node)
}

func (h *Handler) GetEntity(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	handle := mux.Vars(r)["handle"]
	var info *engine.NodeInfo
	room.View(func(eng *engine.Engine) {
		if n := eng.Node(handle); n != nil {
			i := n.Info()
			info = &i
		}
	})
	if info == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no live node"})
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) UpdateEntity(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	handle := mux.Vars(r)["handle"]
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	ent, err := document.ParseEntity(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entity"})
		return
	}
	if ent.Handle == "" {
		ent.Handle = handle
	}
	if ent.Handle != handle {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "handle mismatch"})
		return
	}
	raw, _ := json.Marshal(ent)
	payload, _ := json.Marshal(session.EntityPayload{Entity: raw})

	h.applyToNode(w, r, room, &session.Message{Type: session.TypeEntityUpdate, Payload: payload}, http.StatusOK)
}

func (h *Handler) DisposeEntity(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	payload, _ := json.Marshal(session.HandlePayload{Handle: mux.Vars(r)["handle"]})
	h.applyToNode(w, r, room, &session.Message{Type: session.TypeEntityDispose, Payload: payload}, http.StatusNoContent)
}

func (h *Handler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	room, ok := h.room(w, r)
	if !ok {
		return
	}
	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Visible == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "visible is required"})
		return
	}
	payload, _ := json.Marshal(session.VisibilityPayload{Handle: mux.Vars(r)["handle"], Visible: *req.Visible})
	h.applyToNode(w, r, room, &session.Message{Type: session.TypeEntityVisibility, Payload: payload}, http.StatusOK)
}

// applyToNode runs an operation that needs a live node, answering 404 when
// the handle has none.
func (h *Handler) applyToNode(w http.ResponseWriter, r *http.Request, room *session.Room, msg *session.Message, status int) {
	res, err := h.hub.Apply(r.Context(), room, msg)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !res.OK {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no live node"})
		return
	}
	if status == http.StatusNoContent || res.Node == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, status, res.Node)
}

func (h *Handler) room(w http.ResponseWriter, r *http.Request) (*session.Room, bool) {
	room, err := h.hub.Open(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handleServiceError(w, err)
		return nil, false
	}
	return room, true
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, session.ErrBadPayload), errors.Is(err, session.ErrUnknownType):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
