// Package symbols holds the project-wide symbol table: one document per
// class, listing its methods, properties, signals, constants, enums and
// theme items. The table is built upstream (from the engine's XML doc
// dump) and is read-only to the transpiler and the scene binder.
package symbols

import (
	"sort"
	"strings"
)

// GlobalScope is the reserved class searched as a last resort when an
// unqualified constant reference does not resolve in its context class.
const GlobalScope = "@GlobalScope"

// TypeName is a named type. Enums and bitfields link differently from
// plain class types, so the distinction is carried along.
type TypeName struct {
	Name       string
	Enum       string
	IsBitfield bool
}

// Definition carries the fields shared by every documented entity.
// Deprecated and Experimental are nil when absent; an empty string means
// the notice is present with no custom message.
type Definition struct {
	Kind         string
	Name         string
	Deprecated   *string
	Experimental *string
}

// Parameter documents a single method or signal parameter.
type Parameter struct {
	Definition
	Type    TypeName
	Default string
}

// Method documents a method, constructor, or operator.
type Method struct {
	Definition
	ReturnType  TypeName
	Parameters  []Parameter
	Description string
	Qualifiers  string
}

// Property documents a class member variable.
type Property struct {
	Definition
	Type     TypeName
	Setter   string
	Getter   string
	Default  string
	Overrides string
	Text     string
}

// Signal documents a signal and its parameters.
type Signal struct {
	Definition
	Parameters  []Parameter
	Description string
}

// Constant documents a class constant or an enum value.
type Constant struct {
	Definition
	Value      string
	Text       string
	IsBitfield bool
}

// Enum documents an enum and its values, keyed by value name.
type Enum struct {
	Definition
	IsBitfield bool
	Values     map[string]*Constant
}

// Annotation documents a script annotation.
type Annotation struct {
	Definition
	Parameters  []Parameter
	Description string
	Qualifiers  string
}

// ThemeItem documents a theme property. DataName is the theme data type
// ("color", "font", ...) and qualifies the generated anchor.
type ThemeItem struct {
	Definition
	Type     TypeName
	DataName string
	Text     string
	Default  string
}

// Class is a single class document.
type Class struct {
	Definition
	Inherits    string
	ScriptPath  string // project-relative script path, empty for engine classes
	Brief       string
	Description string

	Constructors map[string]*Method
	Methods      map[string]*Method
	Operators    map[string]*Method
	Properties   map[string]*Property
	Signals      map[string]*Signal
	Constants    map[string]*Constant
	Enums        map[string]*Enum
	Annotations  map[string]*Annotation
	ThemeItems   map[string]*ThemeItem
}

// NewClass creates an empty class document.
func NewClass(name string) *Class {
	return &Class{
		Definition:   Definition{Kind: "class", Name: name},
		Constructors: make(map[string]*Method),
		Methods:      make(map[string]*Method),
		Operators:    make(map[string]*Method),
		Properties:   make(map[string]*Property),
		Signals:      make(map[string]*Signal),
		Constants:    make(map[string]*Constant),
		Enums:        make(map[string]*Enum),
		Annotations:  make(map[string]*Annotation),
		ThemeItems:   make(map[string]*ThemeItem),
	}
}

// Table maps class name to class document.
type Table struct {
	classes map[string]*Class
	scripts map[string]*Class // keyed by project-relative script path
}

// NewTable creates an empty symbol table.
func NewTable() *Table {
	return &Table{
		classes: make(map[string]*Class),
		scripts: make(map[string]*Class),
	}
}

// Add registers a class document. A class with a script path is also
// indexed by that path for the scene binder.
func (t *Table) Add(c *Class) {
	t.classes[c.Name] = c
	if c.ScriptPath != "" {
		t.scripts[c.ScriptPath] = c
	}
}

// Class returns the document for a class name.
func (t *Table) Class(name string) (*Class, bool) {
	c, ok := t.classes[name]
	return c, ok
}

// Has reports whether a class name is documented.
func (t *Table) Has(name string) bool {
	_, ok := t.classes[name]
	return ok
}

// ByScriptPath returns the class document whose script lives at the
// given project-relative path.
func (t *Table) ByScriptPath(path string) (*Class, bool) {
	c, ok := t.scripts[path]
	return c, ok
}

// Names returns all documented class names, sorted case-insensitively.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.classes))
	for name := range t.classes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// Len returns the number of documented classes.
func (t *Table) Len() int { return len(t.classes) }
