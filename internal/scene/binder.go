package scene

import (
	"os"
	"path/filepath"

	"gddoc/internal/diag"
	"gddoc/internal/symbols"
)

// Binder attaches documented classes to scene nodes and resolves signal
// connections against them. Binding runs after every scene has settled,
// mutating graphs in place.
type Binder struct {
	table *symbols.Table
	diags *diag.Reporter
	root  string // project root for reading script headers off disk
}

// NewBinder creates a binder over the symbol table. root is the project
// directory script paths are relative to.
func NewBinder(table *symbols.Table, diags *diag.Reporter, root string) *Binder {
	return &Binder{table: table, diags: diags, root: root}
}

// Bind walks the tree depth-first, binding each scripted node, then
// resolves every connection against its emitters' bound classes. A node
// whose script cannot be resolved keeps its prior type; the failure is a
// non-fatal error. Connections whose signal no emitter documents stay
// unresolved without a diagnostic, matching the lenient endpoint policy.
func (b *Binder) Bind(g *Graph) {
	if g.Root != NoNode {
		b.bindNode(g, g.Root)
	}
	for _, conn := range g.Connections {
		b.resolveConnection(g, conn)
	}
}

func (b *Binder) bindNode(g *Graph, id NodeID) {
	n := g.At(id)
	if n.Script != nil {
		if cls := b.resolveScript(g, n); cls != nil {
			n.Type = cls.Name
			n.Class = cls
			n.Deprecated = cls.Deprecated
			n.Experimental = cls.Experimental
		}
	}
	for _, child := range g.At(id).Children {
		b.bindNode(g, child)
	}
}

// resolveScript finds the class documenting a node's script: first by
// script path in the symbol table, then by reading the script header off
// disk and resolving its declared class name.
func (b *Binder) resolveScript(g *Graph, n *Node) *symbols.Class {
	path := n.Script.Path
	if cls, ok := b.table.ByScriptPath(path); ok {
		return cls
	}

	f, err := os.Open(filepath.Join(b.root, filepath.FromSlash(path)))
	if err != nil {
		b.diags.Errorf("%s: node %q: cannot read script %s: %v", g.Path, n.Path, path, err)
		return nil
	}
	name, ok := symbols.ExtractClassName(f)
	f.Close()
	if !ok {
		b.diags.Errorf("%s: node %q: script %s declares no class name", g.Path, n.Path, path)
		return nil
	}
	cls, ok := b.table.Class(name)
	if !ok {
		b.diags.Errorf("%s: node %q: script class %q is not documented", g.Path, n.Path, name)
		return nil
	}
	return cls
}

// resolveConnection attaches the signal definition from the first
// emitter whose bound class documents the signal.
func (b *Binder) resolveConnection(g *Graph, conn *Connection) {
	for _, id := range conn.Emitters {
		cls := g.At(id).Class
		if cls == nil {
			continue
		}
		if sig, ok := cls.Signals[conn.Signal]; ok {
			conn.Def = sig
			return
		}
	}
}
