package session

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ServeWS upgrades GET /ws/documents/{id} and joins the document's room.
// originPatterns are host patterns accepted for cross-origin upgrades.
func (h *Hub) ServeWS(originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		documentID := mux.Vars(r)["id"]
		if documentID == "" {
			http.Error(w, "missing document id", http.StatusBadRequest)
			return
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "Viewer"
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			h.logger.Error("websocket accept", "error", err)
			return
		}

		client := NewClient(h, conn, documentID, uuid.NewString(), name)
		h.Register(client)

		ctx := r.Context()
		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}
}
