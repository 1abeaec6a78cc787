// Package rst renders class documents and resolved scenes as
// reStructuredText pages. All description text runs through the markup
// transpiler, so pages carry the same resolved crosslinks and
// diagnostics as any other transpiled text.
package rst

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gddoc/internal/diag"
	"gddoc/internal/markup"
	"gddoc/internal/symbols"
)

// Renderer writes documentation pages for one project's symbol table.
type Renderer struct {
	tr    *markup.Transpiler
	table *symbols.Table
	diags *diag.Reporter
}

// NewRenderer creates a renderer over the symbol table.
func NewRenderer(table *symbols.Table, diags *diag.Reporter) *Renderer {
	return &Renderer{
		tr:    markup.New(table, diags),
		table: table,
		diags: diags,
	}
}

// WriteClassPage renders one class document as a full page: header and
// inheritance, brief and long descriptions, member summary tables, then
// per-member detail sections with their reference anchors.
func (r *Renderer) WriteClassPage(w io.Writer, cls *symbols.Class) {
	ctx := markup.Context{Class: cls.Name, Kind: "class", Name: cls.Name}

	fmt.Fprintf(w, ".. _class_%s:\n\n", cls.Name)
	writeHeading(w, cls.Name, '=')

	if cls.Inherits != "" {
		fmt.Fprintf(w, "**Inherits:** %s\n\n", r.tr.MakeType(cls.Inherits, ctx))
	}
	r.writeNotices(w, cls.Kind, cls.Deprecated, cls.Experimental, ctx)

	if brief := strings.TrimSpace(cls.Brief); brief != "" {
		fmt.Fprintf(w, "%s\n\n", r.tr.Transpile(brief, ctx))
	}
	if desc := strings.TrimSpace(cls.Description); desc != "" {
		writeHeading(w, "Description", '-')
		fmt.Fprintf(w, "%s\n\n", r.tr.Transpile(desc, ctx))
	}

	r.writePropertyTable(w, cls, ctx)
	r.writeMethodTable(w, cls, ctx)
	r.writeSignals(w, cls, ctx)
	r.writeEnums(w, cls, ctx)
	r.writeConstants(w, cls, ctx)
	r.writeAnnotations(w, cls, ctx)
	r.writeThemeItems(w, cls, ctx)
	r.writePropertyDescriptions(w, cls, ctx)
	r.writeMethodDescriptions(w, cls, ctx)
}

func writeHeading(w io.Writer, title string, underline byte) {
	fmt.Fprintf(w, "%s\n%s\n\n", title, strings.Repeat(string(underline), len(title)))
}

// writeNotices renders the deprecated/experimental admonitions. An empty
// message falls back to the stock notice for the item kind.
func (r *Renderer) writeNotices(w io.Writer, kind string, deprecated, experimental *string, ctx markup.Context) {
	notice := func(prefix string, msg *string) {
		if msg == nil {
			return
		}
		text := strings.TrimSpace(*msg)
		if text == "" {
			fmt.Fprintf(w, "**%s** This %s may be changed or removed in future versions.\n\n", prefix, kind)
			return
		}
		fmt.Fprintf(w, "**%s** %s\n\n", prefix, r.tr.Transpile(text, ctx))
	}
	notice("Deprecated:", deprecated)
	notice("Experimental:", experimental)
}

func (r *Renderer) typeRef(tn symbols.TypeName, ctx markup.Context) string {
	if tn.Enum != "" {
		return r.tr.MakeEnum(tn.Enum, tn.IsBitfield, ctx)
	}
	if tn.Name == "" || tn.Name == "void" {
		return "void"
	}
	return r.tr.MakeType(tn.Name, ctx)
}

func (r *Renderer) writePropertyTable(w io.Writer, cls *symbols.Class, ctx markup.Context) {
	if len(cls.Properties) == 0 {
		return
	}
	writeHeading(w, "Properties", '-')

	rows := make([][]string, 0, len(cls.Properties))
	for _, name := range sortedKeys(cls.Properties) {
		p := cls.Properties[name]
		ref := fmt.Sprintf(":ref:`%s<class_%s_property_%s>`", name, cls.Name, name)
		rows = append(rows, []string{r.typeRef(p.Type, ctx), ref, p.Default})
	}
	WriteTable(w, rows, true)
}

// signature renders a parameter list the way the summaries and detail
// sections both need it.
func (r *Renderer) signature(params []symbols.Parameter, ctx markup.Context) string {
	if len(params) == 0 {
		return " **)**"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		part := fmt.Sprintf("%s %s", r.typeRef(p.Type, ctx), p.Name)
		if p.Default != "" {
			part += "=" + p.Default
		}
		parts[i] = part
	}
	return " " + strings.Join(parts, ", ") + " **)**"
}

func (r *Renderer) methodRef(cls *symbols.Class, m *symbols.Method) string {
	kind := "method"
	if strings.HasPrefix(m.Name, "_") {
		kind = "private_method"
	}
	return fmt.Sprintf(":ref:`%s<class_%s_%s_%s>`", m.Name, cls.Name, kind, m.Name)
}

func (r *Renderer) writeMethodTable(w io.Writer, cls *symbols.Class, ctx markup.Context) {
	if len(cls.Methods) == 0 {
		return
	}
	writeHeading(w, "Methods", '-')

	rows := make([][]string, 0, len(cls.Methods))
	for _, name := range sortedKeys(cls.Methods) {
		m := cls.Methods[name]
		sig := r.methodRef(cls, m) + " **(**" + r.signature(m.Parameters, ctx)
		if m.Qualifiers != "" {
			sig += " |" + strings.ReplaceAll(m.Qualifiers, " ", "| |") + "|"
		}
		rows = append(rows, []string{r.typeRef(m.ReturnType, ctx), sig})
	}
	WriteTable(w, rows, true)
}

func (r *Renderer) writeSignals(w io.Writer, cls *symbols.Class, ctx markup.Context) {
	if len(cls.Signals) == 0 {
		return
	}
	writeHeading(w, "Signals", '-')

	for _, name := range sortedKeys(cls.Signals) {
		s := cls.Signals[name]
		fmt.Fprintf(w, ".. _class_%s_signal_%s:\n\n", cls.Name, name)
		fmt.Fprintf(w, "- **%s** **(**%s\n\n", name, r.signature(s.Parameters, ctx))
		sctx := markup.Context{Class: cls.Name, Kind: "signal", Name: name}
		r.writeNotices(w, "signal", s.Deprecated, s.Experimental, sctx)
		if desc := strings.TrimSpace(s.Description); desc != "" {
			fmt.Fprintf(w, "%s\n\n", r.tr.Transpile(desc, sctx))
		}
	}
}

func (r *Renderer) writeEnums(w io.Writer, cls *symbols.Class, ctx markup.Context) {
	if len(cls.Enums) == 0 {
		return
	}
	writeHeading(w, "Enumerations", '-')

	for _, name := range sortedKeys(cls.Enums) {
		e := cls.Enums[name]
		fmt.Fprintf(w, ".. _enum_%s_%s:\n\n", cls.Name, name)
		kind := "enum"
		if e.IsBitfield {
			kind = "flags"
		}
		fmt.Fprintf(w, "%s **%s**:\n\n", kind, name)
		for _, vname := range sortedKeys(e.Values) {
			v := e.Values[vname]
			fmt.Fprintf(w, ".. _class_%s_constant_%s:\n\n", cls.Name, vname)
			fmt.Fprintf(w, "- **%s** = **%s**", vname, v.Value)
			if text := strings.TrimSpace(v.Text); text != "" {
				vctx := markup.Context{Class: cls.Name, Kind: "constant", Name: vname}
				fmt.Fprintf(w, " --- %s", r.tr.Transpile(text, vctx))
			}
			fmt.Fprint(w, "\n\n")
		}
	}
}

func (r *Renderer) writeConstants(w io.Writer, cls *symbols.Class, ctx markup.Context) {
	if len(cls.Constants) == 0 {
		return
	}
	writeHeading(w, "Constants", '-')

	for _, name := range sortedKeys(cls.Constants) {
		c := cls.Constants[name]
		fmt.Fprintf(w, ".. _class_%s_constant_%s:\n\n", cls.Name, name)
		fmt.Fprintf(w, "- **%s** = **%s**", name, c.Value)
		if text := strings.TrimSpace(c.Text); text != "" {
			cctx := markup.Context{Class: cls.Name, Kind: "constant", Name: name}
			fmt.Fprintf(w, " --- %s", r.tr.Transpile(text, cctx))
		}
		fmt.Fprint(w, "\n\n")
	}
}

func (r *Renderer) writeAnnotations(w io.Writer, cls *symbols.Class, ctx markup.Context) {
	if len(cls.Annotations) == 0 {
		return
	}
	writeHeading(w, "Annotations", '-')

	for _, name := range sortedKeys(cls.Annotations) {
		a := cls.Annotations[name]
		fmt.Fprintf(w, ".. _class_%s_annotation_%s:\n\n", cls.Name, name)
		fmt.Fprintf(w, "- **%s** **(**%s\n\n", name, r.signature(a.Parameters, ctx))
		if desc := strings.TrimSpace(a.Description); desc != "" {
			actx := markup.Context{Class: cls.Name, Kind: "annotation", Name: name}
			fmt.Fprintf(w, "%s\n\n", r.tr.Transpile(desc, actx))
		}
	}
}

func (r *Renderer) writeThemeItems(w io.Writer, cls *symbols.Class, ctx markup.Context) {
	if len(cls.ThemeItems) == 0 {
		return
	}
	writeHeading(w, "Theme Properties", '-')

	for _, name := range sortedKeys(cls.ThemeItems) {
		item := cls.ThemeItems[name]
		fmt.Fprintf(w, ".. _class_%s_theme_%s_%s:\n\n", cls.Name, item.DataName, name)
		fmt.Fprintf(w, "- %s **%s**", r.typeRef(item.Type, ctx), name)
		if item.Default != "" {
			fmt.Fprintf(w, " = **%s**", item.Default)
		}
		fmt.Fprint(w, "\n\n")
		if text := strings.TrimSpace(item.Text); text != "" {
			tctx := markup.Context{Class: cls.Name, Kind: "theme_item", Name: name}
			fmt.Fprintf(w, "%s\n\n", r.tr.Transpile(text, tctx))
		}
	}
}

func (r *Renderer) writePropertyDescriptions(w io.Writer, cls *symbols.Class, ctx markup.Context) {
	if len(cls.Properties) == 0 {
		return
	}
	writeHeading(w, "Property Descriptions", '-')

	for _, name := range sortedKeys(cls.Properties) {
		p := cls.Properties[name]
		fmt.Fprintf(w, ".. _class_%s_property_%s:\n\n", cls.Name, name)
		fmt.Fprintf(w, "- %s **%s**\n\n", r.typeRef(p.Type, ctx), name)

		var rows [][]string
		if p.Default != "" {
			rows = append(rows, []string{"*Default*", "``" + p.Default + "``"})
		}
		if p.Setter != "" {
			rows = append(rows, []string{"*Setter*", p.Setter + "(value)"})
		}
		if p.Getter != "" {
			rows = append(rows, []string{"*Getter*", p.Getter + "()"})
		}
		WriteTable(w, rows, false)

		pctx := markup.Context{Class: cls.Name, Kind: "property", Name: name}
		r.writeNotices(w, "property", p.Deprecated, p.Experimental, pctx)
		if text := strings.TrimSpace(p.Text); text != "" {
			fmt.Fprintf(w, "%s\n\n", r.tr.Transpile(text, pctx))
		}
	}
}

func (r *Renderer) writeMethodDescriptions(w io.Writer, cls *symbols.Class, ctx markup.Context) {
	if len(cls.Methods) == 0 {
		return
	}
	writeHeading(w, "Method Descriptions", '-')

	for _, name := range sortedKeys(cls.Methods) {
		m := cls.Methods[name]
		kind := "method"
		if strings.HasPrefix(name, "_") {
			kind = "private_method"
		}
		fmt.Fprintf(w, ".. _class_%s_%s_%s:\n\n", cls.Name, kind, name)
		fmt.Fprintf(w, "- %s **%s** **(**%s\n\n", r.typeRef(m.ReturnType, ctx), name, r.signature(m.Parameters, ctx))

		mctx := markup.Context{Class: cls.Name, Kind: "method", Name: name}
		r.writeNotices(w, "method", m.Deprecated, m.Experimental, mctx)
		if desc := strings.TrimSpace(m.Description); desc != "" {
			fmt.Fprintf(w, "%s\n\n", r.tr.Transpile(desc, mctx))
		}
	}
}

// sortedKeys returns a map's keys in sorted order so page content is
// deterministic run to run.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
