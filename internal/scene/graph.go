// Package scene parses the line-oriented scene serialization format into
// node trees, resolves resource tables and instance overrides, and binds
// script classes onto nodes once every scene has settled.
//
// Scenes may reference other scenes that have not been resolved yet; the
// parser reports those as not-ready rather than failing, and the driver
// retries the remaining batch until it settles or stalls.
package scene

import (
	"sort"

	"gddoc/internal/symbols"
)

// NodeID indexes into a Graph's node arena.
type NodeID int

// NoNode is the absent NodeID.
const NoNode NodeID = -1

// Resource is one declared scene resource. External resources carry a
// file path; internal (sub) resources are generated inside the scene
// file. Ids are unique within their own namespace per scene.
type Resource struct {
	ID       string
	Type     string
	Path     string // external resources only, without the res:// prefix
	External bool
	Nested   []*Resource
	Scene    *Graph // bound when the type denotes a packed sub-scene
}

// Receiver is one (node, handler) endpoint of a connection.
type Receiver struct {
	Node   NodeID
	Method string
}

// Connection accumulates every connection line sharing one signal name.
// Def is attached by the binder when the emitter's script documents the
// signal.
type Connection struct {
	Signal    string
	Emitters  []NodeID
	Receivers []Receiver
	Def       *symbols.Signal
}

// Node is one record in the scene tree. Tree links are arena indices;
// Path is the computed tree path, unique within the scene.
type Node struct {
	Name     string
	Type     string
	Path     string
	Parent   NodeID
	Children []NodeID

	Resources []*Resource
	Script    *Resource
	Instance  *Resource // set when the node instances an external scene

	// Filled in by the binder.
	Class        *symbols.Class
	Deprecated   *string
	Experimental *string
}

// Graph is one resolved scene: node arena, connection table, resource
// tables, and the external scenes this file depends on. A Graph is
// registered only after a fully successful parse and is mutated in place
// by the binder afterwards.
type Graph struct {
	Path string

	nodes  []Node
	byPath map[string]NodeID
	Root   NodeID

	Connections  map[string]*Connection
	ExtResources map[string]*Resource
	SubResources map[string]*Resource
	Dependencies []string
}

// NewGraph creates an empty graph for a scene file path.
func NewGraph(path string) *Graph {
	return &Graph{
		Path:         path,
		byPath:       make(map[string]NodeID),
		Root:         NoNode,
		Connections:  make(map[string]*Connection),
		ExtResources: make(map[string]*Resource),
		SubResources: make(map[string]*Resource),
	}
}

// At returns the node stored at id. The pointer stays valid only until
// the next allocation, so callers must not hold it across inserts.
func (g *Graph) At(id NodeID) *Node {
	return &g.nodes[id]
}

// ByPath returns the id of the node at a tree path.
func (g *Graph) ByPath(path string) (NodeID, bool) {
	id, ok := g.byPath[path]
	return id, ok
}

// Len returns the number of live node records.
func (g *Graph) Len() int { return len(g.byPath) }

// Paths returns every live tree path, sorted.
func (g *Graph) Paths() []string {
	paths := make([]string, 0, len(g.byPath))
	for p := range g.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// childPath computes the tree path of a child: the root is ".", children
// of the root are their own name, everything deeper is parent/name.
func childPath(parentPath, name string) string {
	if parentPath == "." {
		return name
	}
	return parentPath + "/" + name
}

// alloc appends a node to the arena and indexes it by path.
func (g *Graph) alloc(n Node) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.byPath[n.Path] = id
	return id
}

// insertOutcome distinguishes a fresh insert from an override of an
// existing path. Overrides are normal: a scene that instances another
// scene re-declares nodes to change parts of the embedded tree.
type insertOutcome int

const (
	inserted insertOutcome = iota
	overridden
)

// insert places a node under parent. When the computed path is already
// occupied, the prior record is structurally copied and the new
// declaration's content is re-applied onto the copy in place, keeping the
// record's position in the tree.
func (g *Graph) insert(n Node, parent NodeID) (NodeID, insertOutcome) {
	if prev, ok := g.byPath[n.Path]; ok {
		merged := g.nodes[prev] // structural copy
		if n.Type != "" {
			merged.Type = n.Type
		}
		if n.Script != nil {
			merged.Script = n.Script
		}
		if n.Instance != nil {
			merged.Instance = n.Instance
		}
		merged.Resources = append(merged.Resources, n.Resources...)
		g.nodes[prev] = merged
		return prev, overridden
	}

	n.Parent = parent
	id := g.alloc(n)
	if parent == NoNode {
		g.Root = id
	} else {
		g.nodes[parent].Children = append(g.nodes[parent].Children, id)
	}
	return id, inserted
}

// graft mounts a shallow copy of another graph's root content onto the
// node at mount, then clones the source's subtree underneath, reassigning
// every descendant's path relative to the mount point. The clone is an
// index-remapping copy: the two graphs share no mutable node records.
func (g *Graph) graft(mount NodeID, src *Graph) {
	srcRoot := src.At(src.Root)
	m := &g.nodes[mount]
	m.Type = srcRoot.Type
	m.Script = srcRoot.Script
	m.Deprecated = srcRoot.Deprecated
	m.Experimental = srcRoot.Experimental
	m.Resources = append(m.Resources, srcRoot.Resources...)

	mountPath := m.Path
	for _, child := range srcRoot.Children {
		g.cloneSubtree(src, child, mount, mountPath)
	}
}

// cloneSubtree copies src's subtree rooted at srcID under parent,
// recomputing paths and reinserting each record into the path map.
func (g *Graph) cloneSubtree(src *Graph, srcID NodeID, parent NodeID, parentPath string) NodeID {
	orig := src.At(srcID)

	n := Node{
		Name:         orig.Name,
		Type:         orig.Type,
		Path:         childPath(parentPath, orig.Name),
		Parent:       parent,
		Script:       orig.Script,
		Instance:     orig.Instance,
		Deprecated:   orig.Deprecated,
		Experimental: orig.Experimental,
	}
	n.Resources = append(n.Resources, orig.Resources...)

	id := g.alloc(n)
	g.nodes[parent].Children = append(g.nodes[parent].Children, id)

	for _, child := range orig.Children {
		g.cloneSubtree(src, child, id, g.nodes[id].Path)
	}
	return id
}

// Walk visits the tree depth-first from the root, children in declaration
// order.
func (g *Graph) Walk(visit func(id NodeID, depth int)) {
	if g.Root == NoNode {
		return
	}
	g.walk(g.Root, 0, visit)
}

func (g *Graph) walk(id NodeID, depth int, visit func(NodeID, int)) {
	visit(id, depth)
	for _, child := range g.nodes[id].Children {
		g.walk(child, depth+1, visit)
	}
}
