package typeid

import (
	"strings"
	"testing"
)

func TestNewAndValidate(t *testing.T) {
	tests := []struct {
		gen    func() string
		prefix string
	}{
		{NewDocumentID, PrefixDocument},
		{NewNodeID, PrefixNode},
		{NewSessionID, PrefixSession},
		{NewAssetID, PrefixAsset},
	}
	for _, tt := range tests {
		id := tt.gen()
		if !strings.HasPrefix(id, tt.prefix+"_") {
			t.Errorf("id %q lacks prefix %q", id, tt.prefix)
		}
		if err := Validate(id, tt.prefix); err != nil {
			t.Errorf("Validate(%q) = %v", id, err)
		}
	}

	if err := Validate(NewNodeID(), PrefixDocument); err == nil {
		t.Error("wrong prefix accepted")
	}
	if err := Validate("not-an-id", PrefixNode); err == nil {
		t.Error("garbage accepted")
	}
	if NewNodeID() == NewNodeID() {
		t.Error("ids collide")
	}
}
