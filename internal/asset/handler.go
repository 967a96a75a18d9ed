package asset

import (
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/inamate/draftview/backend-go/internal/typeid"
)

const maxUploadSize = 20 << 20 // 20MB

var supportedFormats = map[string]bool{
	"png": true, "jpeg": true, "gif": true, "bmp": true, "tiff": true, "webp": true,
}

// UploadResponse is returned from the upload endpoint.
type UploadResponse struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Name   string `json:"name"`
}

// Handler serves raster upload and retrieval endpoints.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Upload handles POST /assets/upload (multipart form with a "file" field).
// Every accepted format is stored as PNG.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 20MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		http.Error(w, "invalid image: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !supportedFormats[format] {
		http.Error(w, "unsupported image format: "+format, http.StatusBadRequest)
		return
	}

	assetID := typeid.NewAssetID()
	filename := assetID + ".png"
	filePath := filepath.Join(h.store.Dir(), filename)

	out, err := os.Create(filePath)
	if err != nil {
		slog.Error("create asset file", "error", err)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		slog.Error("encode png", "error", err)
		os.Remove(filePath)
		http.Error(w, "failed to encode image", http.StatusInternalServerError)
		return
	}

	bounds := img.Bounds()
	resp := UploadResponse{
		ID:     assetID,
		Source: filename,
		URL:    URLPrefix + filename,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
		Name:   header.Filename,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// InfoResponse describes a stored raster source.
type InfoResponse struct {
	Source string `json:"source"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Info handles GET /assets/{source}/info, reading only the image header.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	source := mux.Vars(r)["source"]
	url, ok := h.store.Resolve(source)
	if !ok {
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}
	width, height, err := h.store.Load(r.Context(), source)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "asset not found", http.StatusNotFound)
			return
		}
		slog.Error("read asset header", "error", err, "source", source)
		http.Error(w, "unreadable asset", http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(InfoResponse{Source: source, URL: url, Width: width, Height: height})
}

// Delete handles DELETE /assets/{source}. Drawings that still reference the
// source stop rendering it on their next load.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Remove(mux.Vars(r)["source"]); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "asset not found", http.StatusNotFound)
			return
		}
		slog.Error("remove asset", "error", err)
		http.Error(w, "failed to remove asset", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Serve returns an http.Handler that serves stored files with caching headers.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.store.Dir()))
	return http.StripPrefix(URLPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Asset IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}
