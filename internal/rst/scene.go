package rst

import (
	"fmt"
	"io"
	"path"
	"strings"

	"gddoc/internal/scene"
)

// WriteScenePage renders one resolved scene: its node tree as an RST
// line block and its signal connections as a table.
func (r *Renderer) WriteScenePage(w io.Writer, g *scene.Graph) {
	title := strings.TrimSuffix(path.Base(g.Path), path.Ext(g.Path))
	fmt.Fprintf(w, ".. _scene_%s:\n\n", SceneSlug(g.Path))
	writeHeading(w, title, '=')
	fmt.Fprintf(w, "**Scene:** ``%s``\n\n", g.Path)

	writeHeading(w, "Node Tree", '-')
	WriteSceneTree(w, g)
	fmt.Fprint(w, "\n")

	r.writeConnections(w, g)
}

// WriteSceneTree renders the node hierarchy as an RST line block, one
// node per line, three dashes per nesting level. Bound nodes link their
// class page; unbound ones show their raw type.
func WriteSceneTree(w io.Writer, g *scene.Graph) {
	g.Walk(func(id scene.NodeID, depth int) {
		n := g.At(id)
		fmt.Fprint(w, "|")
		if depth > 0 {
			fmt.Fprintf(w, " %s", strings.Repeat("-", 3*depth))
		}
		label := n.Name
		if n.Class != nil {
			label += fmt.Sprintf(" (:ref:`%s<class_%s>`)", n.Class.Name, n.Class.Name)
		} else if n.Type != "" {
			label += fmt.Sprintf(" (%s)", n.Type)
		}
		if n.Deprecated != nil {
			label += " *(deprecated)*"
		}
		if n.Experimental != nil {
			label += " *(experimental)*"
		}
		fmt.Fprintf(w, " %s\n", label)
	})
}

// writeConnections renders the connection table. A resolved signal links
// its definition anchor on the emitter's class page.
func (r *Renderer) writeConnections(w io.Writer, g *scene.Graph) {
	if len(g.Connections) == 0 {
		return
	}
	writeHeading(w, "Connections", '-')

	rows := [][]string{{"Signal", "From", "To", "Handler"}}
	for _, name := range sortedKeys(g.Connections) {
		conn := g.Connections[name]
		signal := "``" + name + "``"
		if conn.Def != nil {
			if owner := signalOwner(g, conn); owner != "" {
				signal = fmt.Sprintf(":ref:`%s<class_%s_signal_%s>`", name, owner, name)
			}
		}

		froms := make([]string, 0, len(conn.Emitters))
		for _, id := range conn.Emitters {
			froms = append(froms, g.At(id).Path)
		}
		for _, recv := range conn.Receivers {
			rows = append(rows, []string{
				signal,
				strings.Join(froms, ", "),
				g.At(recv.Node).Path,
				recv.Method,
			})
		}
	}
	WriteTable(w, rows, true)
}

// signalOwner finds the class whose signal definition a connection
// resolved to, scanning emitters the way the binder did.
func signalOwner(g *scene.Graph, conn *scene.Connection) string {
	for _, id := range conn.Emitters {
		cls := g.At(id).Class
		if cls == nil {
			continue
		}
		if _, ok := cls.Signals[conn.Signal]; ok {
			return cls.Name
		}
	}
	return ""
}

// SceneSlug turns a scene path into an anchor- and filename-safe
// identifier.
func SceneSlug(p string) string {
	slug := strings.TrimSuffix(p, path.Ext(p))
	slug = strings.NewReplacer("/", "_", ".", "_", " ", "_").Replace(slug)
	return slug
}
