package document

import (
	"encoding/json"
	"testing"
)

func TestEntityVisibleDefault(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"missing", `{"handle":"1","type":"LINE","data":{}}`, true},
		{"explicit true", `{"handle":"1","type":"LINE","visible":true}`, true},
		{"explicit false", `{"handle":"1","type":"LINE","visible":false}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseEntity([]byte(tt.raw))
			if err != nil {
				t.Fatal(err)
			}
			if e.Visible != tt.want {
				t.Errorf("visible = %v, want %v", e.Visible, tt.want)
			}
		})
	}

	if _, err := ParseEntity([]byte(`{"handle":`)); err == nil {
		t.Error("malformed record parsed")
	}
}

func TestDocumentEntitiesDefaultVisible(t *testing.T) {
	var doc Document
	if err := json.Unmarshal([]byte(`{"id":"d","entities":[{"handle":"1","type":"LINE"},{"handle":"2","type":"LINE","visible":false}]}`), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Entities) != 2 || !doc.Entities[0].Visible || doc.Entities[1].Visible {
		t.Errorf("entities = %+v", doc.Entities)
	}
}
