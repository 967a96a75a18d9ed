package export

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/inamate/draftview/backend-go/internal/engine"
)

func TestWriteOBJ(t *testing.T) {
	cmds := []engine.DrawCommand{
		{
			Handle:    "1A",
			Kind:      engine.NodeLineLoop,
			Matrix:    engine.Translation(1, 0, 0).ToSlice(),
			Positions: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0},
		},
		{
			Handle:    "1B",
			Kind:      engine.NodeMesh,
			Matrix:    engine.Identity4().ToSlice(),
			Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
			Indices:   []uint32{0, 1, 2},
		},
		{
			Handle:    "1C",
			Kind:      engine.NodeLineSegments,
			Matrix:    engine.Identity4().ToSlice(),
			Positions: []float32{0, 0, 0, 2, 0, 0},
		},
	}

	var buf bytes.Buffer
	st, err := WriteOBJ(&buf, "test", cmds)
	if err != nil {
		t.Fatal(err)
	}
	if st.Objects != 3 || st.Vertices != 8 || st.Faces != 1 || st.Lines != 2 {
		t.Errorf("stats = %+v", st)
	}

	out := buf.String()
	for _, want := range []string{
		"o 1A_lineLoop\n",
		"v 1 0 0\n",   // translated first vertex
		"l 1 2 3 1\n", // closed loop
		"f 4 5 6\n",   // indices offset past the loop
		"l 7 8\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestServeOBJ(t *testing.T) {
	rec := httptest.NewRecorder()
	ServeOBJ(rec, "floor plan", nil)
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="floor-plan.obj"` {
		t.Errorf("disposition = %q", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "# floor-plan") {
		t.Errorf("body = %q", rec.Body.String())
	}
}
