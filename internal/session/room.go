package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/inamate/draftview/backend-go/internal/document"
	"github.com/inamate/draftview/backend-go/internal/engine"
)

var (
	ErrBadPayload  = errors.New("malformed payload")
	ErrUnknownType = errors.New("unknown message type")
)

// Result is the outcome of one applied operation. OK mirrors the engine's
// return: false for nothing to render or an unknown handle.
type Result struct {
	OK        bool
	Node      *engine.NodeInfo
	Broadcast []*Message
}

// Room holds the live engine for one document. The engine is not safe for
// concurrent use; mu serializes every operation on it.
type Room struct {
	documentID string
	clients    map[string]*Client // clientID -> client, guarded by Hub.mu
	presence   *PresenceManager

	mu     sync.Mutex
	engine *engine.Engine
	seq    int64
	dirty  bool
}

func newRoom(doc *document.Document, eng *engine.Engine) *Room {
	eng.SetDocument(doc)
	return &Room{
		documentID: doc.ID,
		clients:    make(map[string]*Client),
		presence:   NewPresenceManager(),
		engine:     eng,
	}
}

// DocumentID returns the ID of the room's document.
func (r *Room) DocumentID() string { return r.documentID }

// Apply runs one entity operation against the room's engine.
func (r *Room) Apply(msg *Message) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.applyLocked(msg)
	if err != nil || !res.OK {
		return res, err
	}
	r.dirty = true
	r.seq++
	for _, m := range res.Broadcast {
		m.Seq = r.seq
		m.DocumentID = r.documentID
		m.Ref = msg.Ref
	}
	if r.engine.ApplyPending() > 0 {
		res.Broadcast = append(res.Broadcast, r.stateLocked())
	}
	return res, nil
}

func (r *Room) applyLocked(msg *Message) (Result, error) {
	switch msg.Type {
	case TypeEntityRender:
		ent, err := decodeEntity(msg.Payload)
		if err != nil {
			return Result{}, err
		}
		n := r.engine.RenderEntity(ent)
		if n == nil {
			return Result{}, nil
		}
		return r.placed(n.Handle), nil

	case TypeEntityUpdate:
		ent, err := decodeEntity(msg.Payload)
		if err != nil {
			return Result{}, err
		}
		if !r.engine.UpdateEntity(ent) {
			return Result{}, nil
		}
		return r.placed(ent.Handle), nil

	case TypeEntityDispose:
		var p HandlePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.Handle == "" {
			return Result{}, ErrBadPayload
		}
		if !r.engine.DisposeHandle(p.Handle) {
			return Result{}, nil
		}
		res := Result{OK: true, Broadcast: []*Message{
			newMessage(TypeNodeRemove, NodeRemovePayload{Handle: p.Handle, Disposed: true}),
		}}
		if r.presence.Deselect(p.Handle) {
			if m := r.presence.StateMessage(); m != nil {
				res.Broadcast = append(res.Broadcast, m)
			}
		}
		return res, nil

	case TypeEntityVisibility:
		var p VisibilityPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.Handle == "" {
			return Result{}, ErrBadPayload
		}
		if !r.engine.SetVisibility(p.Handle, p.Visible) {
			return Result{}, nil
		}
		return r.placed(p.Handle), nil
	}
	return Result{}, fmt.Errorf("%w: %s", ErrUnknownType, msg.Type)
}

// placed reports a node after update or visibility: an upsert when it is in
// the scene, a removal when it was detached.
func (r *Room) placed(handle string) Result {
	n := r.engine.Node(handle)
	if n == nil {
		return Result{OK: true}
	}
	if n.Parent == nil || !n.Visible {
		info := n.Info()
		return Result{OK: true, Node: &info, Broadcast: []*Message{
			newMessage(TypeNodeRemove, NodeRemovePayload{Handle: handle}),
		}}
	}
	return r.upsert(n)
}

func (r *Room) upsert(n *engine.Node) Result {
	info := n.Info()
	return Result{OK: true, Node: &info, Broadcast: []*Message{
		newMessage(TypeNodeUpsert, NodeUpsertPayload{
			Handle:   n.Handle,
			Node:     info,
			Commands: engine.CompileDrawCommands(n),
		}),
	}}
}

// live reports whether handle has a node in the room's scene registry.
func (r *Room) live(handle string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Node(handle) != nil
}

// State returns a scene.state message for the current scene.
func (r *Room) State() *Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.ApplyPending()
	return r.stateLocked()
}

func (r *Room) stateLocked() *Message {
	m := newMessage(TypeSceneState, SceneStatePayload{
		Version:  r.engine.Document().Version,
		Handles:  r.engine.Handles(),
		Commands: r.engine.DrawCommands(),
	})
	m.Seq = r.seq
	m.DocumentID = r.documentID
	return m
}

// View runs fn with exclusive access to the engine. fn must not retain the
// engine or anything it returns.
func (r *Room) View(fn func(eng *engine.Engine)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.engine)
}

// Replace swaps in a new document and returns the resulting scene state.
func (r *Room) Replace(doc *document.Document) *Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.SetDocument(doc)
	r.dirty = false
	r.seq++
	return r.stateLocked()
}

// save persists the document if it changed since the last save.
func (r *Room) save(ctx context.Context, saver Saver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.dirty || saver == nil {
		return nil
	}
	if err := saver(ctx, r.engine.Document()); err != nil {
		return fmt.Errorf("save document %s: %w", r.documentID, err)
	}
	r.dirty = false
	return nil
}

func (r *Room) applyPending() *Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.engine.ApplyPending() == 0 {
		return nil
	}
	return r.stateLocked()
}

func (r *Room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.Close()
}

func decodeEntity(payload json.RawMessage) (*document.Entity, error) {
	var p EntityPayload
	if err := json.Unmarshal(payload, &p); err != nil || len(p.Entity) == 0 {
		return nil, ErrBadPayload
	}
	ent, err := document.ParseEntity(p.Entity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return ent, nil
}
