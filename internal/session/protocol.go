package session

import (
	"encoding/json"

	"github.com/inamate/draftview/backend-go/internal/engine"
)

// Message is the websocket envelope. Ref is chosen by the client and echoed
// on the reply to the message that carried it.
type Message struct {
	Type       string          `json:"type"`
	DocumentID string          `json:"documentId,omitempty"`
	ClientID   string          `json:"clientId,omitempty"`
	Seq        int64           `json:"seq,omitempty"`
	Ref        string          `json:"ref,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client to server
	TypeEntityRender     = "entity.render"
	TypeEntityUpdate     = "entity.update"
	TypeEntityDispose    = "entity.dispose"
	TypeEntityVisibility = "entity.visibility"
	TypeSceneSync        = "scene.sync"

	// Server to clients
	TypeNodeUpsert = "node.upsert"
	TypeNodeRemove = "node.remove"
	TypeSceneState = "scene.state"
	TypeError      = "error"

	// Both directions
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
)

// EntityPayload carries one serialized entity record.
type EntityPayload struct {
	Entity json.RawMessage `json:"entity"`
}

type HandlePayload struct {
	Handle string `json:"handle"`
}

type VisibilityPayload struct {
	Handle  string `json:"handle"`
	Visible bool   `json:"visible"`
}

type NodeUpsertPayload struct {
	Handle   string               `json:"handle"`
	Node     engine.NodeInfo      `json:"node"`
	Commands []engine.DrawCommand `json:"commands"`
}

// NodeRemovePayload reports a node leaving the scene. Disposed is false
// when the node was only hidden.
type NodeRemovePayload struct {
	Handle   string `json:"handle"`
	Disposed bool   `json:"disposed"`
}

type SceneStatePayload struct {
	Version  int                  `json:"version"`
	Handles  []string             `json:"handles"`
	Commands []engine.DrawCommand `json:"commands"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// PresencePayload is a viewer's cursor and selection in drawing units.
type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

func newMessage(typ string, payload any) *Message {
	raw, _ := json.Marshal(payload)
	return &Message{Type: typ, Payload: raw}
}

func errorMessage(ref, text string) *Message {
	m := newMessage(TypeError, ErrorPayload{Message: text})
	m.Ref = ref
	return m
}
