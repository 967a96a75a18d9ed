// Package session shares live documents between websocket clients. Each
// document gets a room that owns its engine; entity operations from any
// client are applied in order and the resulting node changes are broadcast
// to everyone in the room.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/draftview/backend-go/internal/document"
	"github.com/inamate/draftview/backend-go/internal/engine"
	"github.com/inamate/draftview/backend-go/internal/store"
)

const pendingInterval = 250 * time.Millisecond

type (
	Loader        func(ctx context.Context, id string) (*document.Document, error)
	Saver         func(ctx context.Context, doc *document.Document) error
	EngineFactory func() *engine.Engine
)

type HubConfig struct {
	Load      Loader
	Save      Saver
	NewEngine EngineFactory
	Logger    *slog.Logger
}

type registration struct {
	client *Client
	done   chan struct{}
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room // documentID -> room

	register   chan registration
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	load      Loader
	save      Saver
	newEngine EngineFactory
	logger    *slog.Logger
}

func NewHub(cfg HubConfig) *Hub {
	h := &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan registration),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		load:       cfg.Load,
		save:       cfg.Save,
		newEngine:  cfg.NewEngine,
		logger:     cfg.Logger,
	}
	if h.newEngine == nil {
		h.newEngine = func() *engine.Engine { return engine.NewEngine(engine.DefaultConfig()) }
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

func (h *Hub) Run() {
	ticker := time.NewTicker(pendingInterval)
	defer ticker.Stop()
	for {
		select {
		case reg := <-h.register:
			h.addClient(reg.client)
			close(reg.done)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ticker.C:
			h.applyPending()
		case <-h.done:
			return
		}
	}
}

// Stop ends Run, saves every changed document and closes all rooms.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for id, room := range h.rooms {
		rooms = append(rooms, room)
		delete(h.rooms, id)
	}
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, room := range rooms {
		if err := room.save(ctx, h.save); err != nil {
			h.logger.Error("save on shutdown", "error", err)
		}
		room.close()
	}
}

// Register adds client to its document's room and returns once the client
// has received the initial state.
func (h *Hub) Register(client *Client) {
	reg := registration{client: client, done: make(chan struct{})}
	select {
	case h.register <- reg:
		<-reg.done
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Open returns the room for id, loading the document if no room is live.
func (h *Hub) Open(ctx context.Context, id string) (*Room, error) {
	h.mu.RLock()
	room, ok := h.rooms[id]
	h.mu.RUnlock()
	if ok {
		return room, nil
	}
	if h.load == nil {
		return nil, store.ErrNotFound
	}
	doc, err := h.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return h.adopt(doc), nil
}

// Replace installs doc in its live room, if any, and broadcasts the new
// scene to the room's clients.
func (h *Hub) Replace(doc *document.Document) {
	h.mu.RLock()
	room, ok := h.rooms[doc.ID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.broadcastToRoom(doc.ID, room.Replace(doc), "")
}

// Close drops the live room for id without saving it.
func (h *Hub) Close(id string) {
	h.mu.Lock()
	room, ok := h.rooms[id]
	delete(h.rooms, id)
	h.mu.Unlock()
	if ok {
		room.close()
	}
}

// Apply runs msg in room, broadcasts the resulting changes and saves the
// document.
func (h *Hub) Apply(ctx context.Context, room *Room, msg *Message) (Result, error) {
	res, err := room.Apply(msg)
	if err != nil {
		return res, err
	}
	for _, m := range res.Broadcast {
		h.broadcastToRoom(room.documentID, m, "")
	}
	if res.OK {
		if err := room.save(ctx, h.save); err != nil {
			h.logger.Error("save document", "error", err)
		}
	}
	return res, nil
}

func (h *Hub) adopt(doc *document.Document) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[doc.ID]; ok {
		return room
	}
	room := newRoom(doc, h.newEngine())
	h.rooms[doc.ID] = room
	return room
}

func (h *Hub) addClient(client *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	room, err := h.Open(ctx, client.DocumentID)
	if errors.Is(err, store.ErrNotFound) {
		room, err = h.adopt(document.NewEmptyDocument(client.DocumentID, "Untitled")), nil
	}
	if err != nil {
		h.logger.Error("open document", "error", err, "document", client.DocumentID)
		client.Send(errorMessage("", "document unavailable"))
		return
	}

	h.mu.Lock()
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	client.Send(room.State())
	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		ClientID:    client.ClientID,
		DisplayName: client.DisplayName,
	})
	h.broadcastToRoom(client.DocumentID, &Message{
		Type:     TypePresenceJoin,
		ClientID: client.ClientID,
		Payload:  joinPayload,
	}, client.ClientID)

	h.logger.Info("client joined", "client", client.ClientID, "document", client.DocumentID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DocumentID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, member := room.clients[client.ClientID]; !member {
		h.mu.Unlock()
		return
	}
	delete(room.clients, client.ClientID)
	client.close()
	room.presence.Remove(client.ClientID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.DocumentID)
	}
	h.mu.Unlock()

	if empty {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := room.save(ctx, h.save); err != nil {
			h.logger.Error("save on last leave", "error", err)
		}
		cancel()
		room.close()
	} else {
		leavePayload, _ := json.Marshal(PresenceLeavePayload{ClientID: client.ClientID})
		h.broadcastToRoom(client.DocumentID, &Message{
			Type:     TypePresenceLeave,
			ClientID: client.ClientID,
			Payload:  leavePayload,
		}, "")
	}

	h.logger.Info("client left", "client", client.ClientID, "document", client.DocumentID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	h.mu.RLock()
	room, ok := h.rooms[sender.DocumentID]
	h.mu.RUnlock()
	if !ok {
		sender.Send(errorMessage(msg.Ref, "not in a document"))
		return
	}

	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, room, msg)
	case TypeSceneSync:
		state := room.State()
		state.Ref = msg.Ref
		sender.Send(state)
	case TypeEntityRender, TypeEntityUpdate, TypeEntityDispose, TypeEntityVisibility:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := h.Apply(ctx, room, msg); err != nil {
			h.logger.Warn("operation rejected", "type", msg.Type, "client", sender.ClientID, "error", err)
			sender.Send(errorMessage(msg.Ref, err.Error()))
		}
	default:
		h.logger.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		sender.Send(errorMessage(msg.Ref, "unknown message type: "+msg.Type))
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, room *Room, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		h.logger.Warn("invalid presence payload", "error", err)
		return
	}
	presence.DisplayName = sender.DisplayName
	room.presence.Update(sender.ClientID, &presence, room.live)

	outPayload, _ := json.Marshal(presence)
	h.broadcastToRoom(sender.DocumentID, &Message{
		Type:     TypePresenceUpdate,
		ClientID: sender.ClientID,
		Payload:  outPayload,
	}, sender.ClientID)
}

// applyPending pushes a fresh scene to rooms whose textures finished loading
// and to clients that dropped messages.
func (h *Hub) applyPending() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	var stale []*Client
	for _, room := range h.rooms {
		rooms = append(rooms, room)
		for _, c := range room.clients {
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, room := range rooms {
		if state := room.applyPending(); state != nil {
			h.broadcastToRoom(room.documentID, state, "")
		}
	}
	for _, c := range stale {
		if !c.takeStale() {
			continue
		}
		h.mu.RLock()
		room, ok := h.rooms[c.DocumentID]
		h.mu.RUnlock()
		if ok {
			c.Send(room.State())
		}
	}
}

func (h *Hub) broadcastToRoom(documentID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[documentID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
