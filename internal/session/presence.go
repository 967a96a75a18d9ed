package session

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
)

// PresenceManager tracks each viewer's cursor and selected handles.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // clientID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

// Update records p for clientID, keeping only selected handles for which
// live reports true.
func (pm *PresenceManager) Update(clientID string, p *PresencePayload, live func(handle string) bool) {
	if live != nil {
		p.Selection = slices.DeleteFunc(p.Selection, func(h string) bool { return !live(h) })
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[clientID] = p
}

func (pm *PresenceManager) Remove(clientID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, clientID)
}

// Deselect drops handle from every selection and reports whether any
// selection changed.
func (pm *PresenceManager) Deselect(handle string) bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	changed := false
	for id, p := range pm.presences {
		if !slices.Contains(p.Selection, handle) {
			continue
		}
		c := *p
		c.Selection = slices.DeleteFunc(slices.Clone(p.Selection), func(h string) bool { return h == handle })
		pm.presences[id] = &c
		changed = true
	}
	return changed
}

// Snapshot returns the current presences. Entries are replaced rather than
// mutated, so the returned pointers are safe to read.
func (pm *PresenceManager) Snapshot() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	out := make(map[string]*PresencePayload, len(pm.presences))
	for k, v := range pm.presences {
		out[k] = v
	}
	return out
}

func (pm *PresenceManager) StateMessage() *Message {
	payload, err := json.Marshal(PresenceStatePayload{Presences: pm.Snapshot()})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{Type: TypePresenceState, Payload: payload}
}
