// Package export writes compiled scene geometry to interchange formats.
package export

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/inamate/draftview/backend-go/internal/engine"
)

// Stats counts what WriteOBJ emitted.
type Stats struct {
	Objects  int
	Vertices int
	Faces    int
	Lines    int
	Points   int
}

// WriteOBJ writes every draw command as a Wavefront OBJ object, with
// positions in world space. Meshes become faces, line primitives become
// polylines and point primitives become points.
func WriteOBJ(w io.Writer, name string, cmds []engine.DrawCommand) (Stats, error) {
	bw := bufio.NewWriter(w)
	var st Stats

	fmt.Fprintf(bw, "# %s\n", name)
	base := 1 // OBJ indices are 1-based and global
	for _, cmd := range cmds {
		m, _ := engine.MatrixFromSlice(cmd.Matrix)
		n := len(cmd.Positions) / 3
		if n == 0 {
			continue
		}
		st.Objects++

		fmt.Fprintf(bw, "o %s_%s\n", sanitize(cmd.Handle), cmd.Kind)
		for i := 0; i < n; i++ {
			x, y, z := m.TransformPoint(float64(cmd.Positions[3*i]), float64(cmd.Positions[3*i+1]), float64(cmd.Positions[3*i+2]))
			fmt.Fprintf(bw, "v %s %s %s\n", num(x), num(y), num(z))
		}
		st.Vertices += n

		switch cmd.Kind {
		case engine.NodeMesh:
			for i := 0; i+2 < len(cmd.Indices); i += 3 {
				fmt.Fprintf(bw, "f %d %d %d\n",
					base+int(cmd.Indices[i]), base+int(cmd.Indices[i+1]), base+int(cmd.Indices[i+2]))
				st.Faces++
			}
		case engine.NodeLine, engine.NodeLineLoop:
			var sb strings.Builder
			sb.WriteString("l")
			for i := 0; i < n; i++ {
				sb.WriteString(" " + strconv.Itoa(base+i))
			}
			if cmd.Kind == engine.NodeLineLoop {
				sb.WriteString(" " + strconv.Itoa(base))
			}
			fmt.Fprintln(bw, sb.String())
			st.Lines++
		case engine.NodeLineSegments:
			for i := 0; i+1 < n; i += 2 {
				fmt.Fprintf(bw, "l %d %d\n", base+i, base+i+1)
				st.Lines++
			}
		case engine.NodePoints:
			for i := 0; i < n; i++ {
				fmt.Fprintf(bw, "p %d\n", base+i)
				st.Points++
			}
		}
		base += n
	}
	return st, bw.Flush()
}

// ServeOBJ writes cmds as an OBJ attachment.
func ServeOBJ(w http.ResponseWriter, name string, cmds []engine.DrawCommand) {
	if name == "" {
		name = "drawing"
	}
	name = sanitize(name)
	w.Header().Set("Content-Type", "model/obj")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.obj"`, name))
	st, err := WriteOBJ(w, name, cmds)
	if err != nil {
		slog.Error("write obj", "error", err, "name", name)
		return
	}
	slog.Info("obj exported", "name", name, "objects", st.Objects, "vertices", st.Vertices)
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
