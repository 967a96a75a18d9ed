package document

import "encoding/json"

type Document struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Version    int              `json:"version"`
	Units      string           `json:"units"`
	Background string           `json:"background"`
	Layers     map[string]Layer `json:"layers"`
	Entities   []Entity         `json:"entities"`
}

type Layer struct {
	Name   string `json:"name"`
	Color  int    `json:"color"`
	RGB    *int   `json:"rgb,omitempty"`
	Off    bool   `json:"off"`
	Frozen bool   `json:"frozen"`
}

type EntityType string

const (
	EntityLine       EntityType = "LINE"
	EntityLWPolyline EntityType = "LWPOLYLINE"
	EntityPolyline   EntityType = "POLYLINE"
	EntityCircle     EntityType = "CIRCLE"
	EntityArc        EntityType = "ARC"
	EntityEllipse    EntityType = "ELLIPSE"
	EntityPoint      EntityType = "POINT"
	EntitySolid      EntityType = "SOLID"
	EntityTrace      EntityType = "TRACE"
	Entity3DFace     EntityType = "3DFACE"
	EntityMesh       EntityType = "MESH"
	EntityPolyface   EntityType = "POLYFACE"
	EntityHatch      EntityType = "HATCH"
	EntityWipeout    EntityType = "WIPEOUT"
	EntityLeader     EntityType = "LEADER"
	EntityDimension  EntityType = "DIMENSION"
	EntityImage      EntityType = "IMAGE"
	EntityUnderlay   EntityType = "UNDERLAY"
)

// ColorRef is an entity's color: a palette index, optionally with an
// explicit 24-bit true color that takes precedence.
type ColorRef struct {
	Index int  `json:"index"`
	RGB   *int `json:"rgb,omitempty"`
}

type Entity struct {
	Handle    string          `json:"handle"`
	Type      EntityType      `json:"type"`
	Visible   bool            `json:"visible"`
	Layer     string          `json:"layer"`
	Color     ColorRef        `json:"color"`
	Transform []float64       `json:"transform,omitempty"` // 16 elements, column-major
	Elevation float64         `json:"elevation"`
	Data      json.RawMessage `json:"data"`
}

// UnmarshalJSON decodes an entity record. A record without a "visible" key
// is visible.
func (e *Entity) UnmarshalJSON(data []byte) error {
	type plain Entity
	p := plain{Visible: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Entity(p)
	return nil
}

// Entity looks up an entity by handle.
func (d *Document) Entity(handle string) (*Entity, bool) {
	for i := range d.Entities {
		if d.Entities[i].Handle == handle {
			return &d.Entities[i], true
		}
	}
	return nil, false
}

// Upsert replaces the entity with the same handle or appends it.
func (d *Document) Upsert(e Entity) {
	for i := range d.Entities {
		if d.Entities[i].Handle == e.Handle {
			d.Entities[i] = e
			return
		}
	}
	d.Entities = append(d.Entities, e)
}

// Remove deletes the entity with the given handle.
func (d *Document) Remove(handle string) bool {
	for i := range d.Entities {
		if d.Entities[i].Handle == handle {
			d.Entities = append(d.Entities[:i], d.Entities[i+1:]...)
			return true
		}
	}
	return false
}

// LayerColor returns the packed RGB a by-layer entity on the named layer
// should use. ok is false when the layer is unknown or has a meta color.
func (d *Document) LayerColor(name string) (rgb int, index int, ok bool) {
	l, found := d.Layers[name]
	if !found {
		return 0, 0, false
	}
	if l.RGB != nil {
		return *l.RGB, -1, true
	}
	if l.Color < 1 || l.Color > 255 {
		return 0, 0, false
	}
	return 0, l.Color, true
}

// NewEmptyDocument creates a document with a single default layer.
func NewEmptyDocument(id, name string) *Document {
	return &Document{
		ID:         id,
		Name:       name,
		Version:    1,
		Units:      "mm",
		Background: "#1a1a2e",
		Layers: map[string]Layer{
			"0": {Name: "0", Color: 7},
		},
		Entities: []Entity{},
	}
}
