package scene

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"gddoc/internal/diag"
	"gddoc/internal/errors"
)

// supportedFormat is the scene serialization format version this parser
// understands. Files declaring any other format are rejected outright.
const supportedFormat = "3"

// resPathPrefix is the project-root prefix on resource paths inside
// scene files. Stored paths are project-relative, without it.
const resPathPrefix = "res://"

// Status is the outcome class of a single parse attempt.
type Status int

const (
	// Ready means the scene parsed completely and may be registered.
	Ready Status = iota
	// NotReady means the scene references an external scene that is not
	// registered yet. The file should be retried after more scenes
	// resolve; no partial state is kept between attempts.
	NotReady
	// Failed means a fatal per-file diagnostic was reported. The file is
	// consumed and never retried.
	Failed
)

// Outcome is the tagged result of Parser.Parse. Graph is set only when
// Status is Ready. Missing names the unregistered dependency for
// NotReady. Err carries the fatal cause for Failed.
type Outcome struct {
	Status  Status
	Graph   *Graph
	Missing string
	Err     error
}

// Parser turns scene source text into graphs, consulting the registry
// for instanced sub-scenes.
//
// Ignore, when set, filters out any node whose name matches the whole
// pattern, together with its entire declared subtree. Connections
// naming a filtered node lose that endpoint like any other missing path.
type Parser struct {
	registry *Registry
	diags    *diag.Reporter

	Ignore *regexp.Regexp
}

// NewParser creates a parser over a shared registry and reporter.
func NewParser(registry *Registry, diags *diag.Reporter) *Parser {
	return &Parser{registry: registry, diags: diags}
}

var (
	extRefPattern = regexp.MustCompile(`ExtResource\(\s*"?([^")]+?)"?\s*\)`)
	subRefPattern = regexp.MustCompile(`SubResource\(\s*"?([^")]+?)"?\s*\)`)
)

// Parse reads one scene file's text. Sections arrive in order: header,
// external resources, internal resources, nodes, connections. Property
// lines under a node or internal resource run until the next blank line.
func (p *Parser) Parse(source, path string) Outcome {
	g := NewGraph(path)
	sawHeader := false
	curNode := NoNode
	var curSub *Resource
	ignored := make(map[string]bool)

	sc := bufio.NewScanner(strings.NewReader(source))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			curNode = NoNode
			curSub = nil
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			curNode = NoNode
			curSub = nil
			name, attrs := parseSectionLine(line)

			if !sawHeader {
				if name != "gd_scene" {
					return p.fail(path, errors.New(errors.UnsupportedSceneFormat,
						fmt.Sprintf("%s: expected scene header, found [%s]", path, name)))
				}
				if format := attrs["format"]; format != supportedFormat {
					return p.fail(path, errors.New(errors.UnsupportedSceneFormat,
						fmt.Sprintf("%s: unsupported scene format %q", path, format)))
				}
				sawHeader = true
				continue
			}

			switch name {
			case "ext_resource":
				if out, ok := p.parseExtResource(g, attrs, path); !ok {
					return out
				}
			case "sub_resource":
				res := &Resource{ID: attrs["id"], Type: attrs["type"]}
				g.SubResources[res.ID] = res
				curSub = res
			case "node":
				id, out, ok := p.parseNode(g, attrs, path, ignored)
				if !ok {
					return out
				}
				curNode = id
			case "connection":
				p.parseConnection(g, attrs)
			}
			continue
		}

		// Property line attached to the most recent node or internal
		// resource.
		switch {
		case curSub != nil:
			if err := p.attachRefs(g, line, &curSub.Nested, path); err != nil {
				return p.fail(path, err)
			}
		case curNode != NoNode:
			if err := p.attachNodeProperty(g, curNode, line, path); err != nil {
				return p.fail(path, err)
			}
		}
	}

	if !sawHeader {
		return p.fail(path, errors.New(errors.UnsupportedSceneFormat,
			fmt.Sprintf("%s: no scene header found", path)))
	}
	if g.Root == NoNode {
		return p.fail(path, errors.New(errors.MissingRootNode,
			fmt.Sprintf("%s: scene declares no root node", path)))
	}
	return Outcome{Status: Ready, Graph: g}
}

func (p *Parser) fail(path string, err error) Outcome {
	p.diags.Errorf("%v", err)
	return Outcome{Status: Failed, Err: err}
}

// parseExtResource records an external resource. Packed sub-scenes must
// already be registered; an unregistered one makes the whole file
// not-ready. The false return carries the early outcome.
func (p *Parser) parseExtResource(g *Graph, attrs map[string]string, path string) (Outcome, bool) {
	res := &Resource{
		ID:       attrs["id"],
		Type:     attrs["type"],
		Path:     strings.TrimPrefix(attrs["path"], resPathPrefix),
		External: true,
	}
	g.ExtResources[res.ID] = res

	if res.Type == "PackedScene" {
		g.Dependencies = append(g.Dependencies, res.Path)
		dep, ok := p.registry.Lookup(res.Path)
		if !ok {
			return Outcome{Status: NotReady, Missing: res.Path}, false
		}
		res.Scene = dep
	}
	return Outcome{}, true
}

// parseNode inserts one node declaration, grafting an instanced scene's
// tree when the declaration cites one.
func (p *Parser) parseNode(g *Graph, attrs map[string]string, path string, ignored map[string]bool) (NodeID, Outcome, bool) {
	name := attrs["name"]
	parentAttr, hasParent := attrs["parent"]

	n := Node{Name: name, Type: attrs["type"]}
	if !hasParent {
		n.Path = "."
	} else {
		n.Path = childPath(parentAttr, name)
	}
	if (p.Ignore != nil && matchesWhole(p.Ignore, name)) || (hasParent && ignored[parentAttr]) {
		ignored[n.Path] = true
		return NoNode, Outcome{}, true
	}

	parent := NoNode
	if hasParent {
		id, ok := g.ByPath(parentAttr)
		if !ok {
			err := errors.New(errors.UnresolvedReference,
				fmt.Sprintf("%s: node %q declares unknown parent path %q", path, name, parentAttr))
			out := p.fail(path, err)
			return NoNode, out, false
		}
		parent = id
	}

	id, _ := g.insert(n, parent)

	if instance, ok := attrs["instance"]; ok {
		m := extRefPattern.FindStringSubmatch(instance)
		if m == nil {
			err := errors.New(errors.UnresolvedResource,
				fmt.Sprintf("%s: node %q has malformed instance reference %q", path, name, instance))
			out := p.fail(path, err)
			return NoNode, out, false
		}
		res, ok := g.ExtResources[m[1]]
		if !ok || res.Scene == nil {
			err := errors.New(errors.UnresolvedResource,
				fmt.Sprintf("%s: node %q instances unknown scene resource %q", path, name, m[1]))
			out := p.fail(path, err)
			return NoNode, out, false
		}
		g.At(id).Instance = res
		g.graft(id, res.Scene)
	}
	return id, Outcome{}, true
}

// parseConnection accumulates a connection line into the per-signal
// record. Endpoint paths missing from the node map are dropped from the
// record without a diagnostic, but counted.
func (p *Parser) parseConnection(g *Graph, attrs map[string]string) {
	signal := attrs["signal"]
	conn := g.Connections[signal]
	if conn == nil {
		conn = &Connection{Signal: signal}
		g.Connections[signal] = conn
	}

	if from, ok := g.ByPath(attrs["from"]); ok {
		conn.Emitters = append(conn.Emitters, from)
	} else {
		p.diags.DroppedEndpoint()
	}
	if to, ok := g.ByPath(attrs["to"]); ok {
		conn.Receivers = append(conn.Receivers, Receiver{Node: to, Method: attrs["method"]})
	} else {
		p.diags.DroppedEndpoint()
	}
}

// attachNodeProperty handles one trailing line under a node declaration:
// a script assignment binds the script resource, any other line only
// matters for the resource references embedded in its value.
func (p *Parser) attachNodeProperty(g *Graph, id NodeID, line, path string) error {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return nil
	}
	if strings.TrimSpace(key) == "script" {
		m := extRefPattern.FindStringSubmatch(value)
		if m == nil {
			return nil
		}
		res, ok := g.ExtResources[m[1]]
		if !ok {
			return errors.New(errors.UnresolvedResource,
				fmt.Sprintf("%s: node %q references unknown script resource %q", path, g.At(id).Path, m[1]))
		}
		g.At(id).Script = res
		return nil
	}
	return p.attachRefs(g, value, &g.At(id).Resources, path)
}

// attachRefs appends every resource referenced in a property value to
// dst. An id with no matching declaration is a hard parse error.
func (p *Parser) attachRefs(g *Graph, value string, dst *[]*Resource, path string) error {
	for _, m := range extRefPattern.FindAllStringSubmatch(value, -1) {
		res, ok := g.ExtResources[m[1]]
		if !ok {
			return errors.New(errors.UnresolvedResource,
				fmt.Sprintf("%s: unknown external resource id %q", path, m[1]))
		}
		*dst = append(*dst, res)
	}
	for _, m := range subRefPattern.FindAllStringSubmatch(value, -1) {
		res, ok := g.SubResources[m[1]]
		if !ok {
			return errors.New(errors.UnresolvedResource,
				fmt.Sprintf("%s: unknown internal resource id %q", path, m[1]))
		}
		*dst = append(*dst, res)
	}
	return nil
}

// parseSectionLine splits a bracketed section line into its name and
// attribute map. Values are quoted strings, bare integers, or resource
// reference calls; quotes are stripped, everything else kept raw.
func parseSectionLine(line string) (string, map[string]string) {
	body := strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
	name := body
	rest := ""
	if i := strings.IndexByte(body, ' '); i >= 0 {
		name = body[:i]
		rest = body[i+1:]
	}

	attrs := make(map[string]string)
	for len(rest) > 0 {
		rest = strings.TrimLeft(rest, " ")
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			break
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			end := closingQuote(rest)
			if end < 0 {
				value = strings.Trim(rest, `"`)
				rest = ""
			} else {
				value = rest[1:end]
				rest = rest[end+1:]
			}
		} else {
			end := strings.IndexByte(rest, ' ')
			if end < 0 {
				value = rest
				rest = ""
			} else {
				value = rest[:end]
				rest = rest[end+1:]
			}
		}
		attrs[key] = value
	}
	return name, attrs
}

// matchesWhole reports whether the pattern matches s in its entirety.
func matchesWhole(re *regexp.Regexp, s string) bool {
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

// closingQuote finds the index of the quote ending a leading quoted
// value, honoring backslash escapes.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
