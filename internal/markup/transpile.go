package markup

import (
	"fmt"
	"strings"

	"gddoc/internal/diag"
	"gddoc/internal/symbols"
)

// Context names the documentation body being transpiled, for diagnostics
// and for defaulting unqualified crosslink targets.
type Context struct {
	Class string // class whose page is being generated
	Kind  string // "method", "signal", "property", ... ("" for unknown)
	Name  string // member name
}

func (c Context) describe() string {
	if c.Kind == "" {
		return "unknown context"
	}
	return fmt.Sprintf("%s %q description", c.Kind, c.Name)
}

// Transpiler converts documentation markup into RST against a fixed
// symbol table. It is cheap to construct and safe to reuse across texts.
type Transpiler struct {
	table *symbols.Table
	diags *diag.Reporter
}

// New creates a Transpiler.
func New(table *symbols.Table, diags *diag.Reporter) *Transpiler {
	return &Transpiler{table: table, diags: diags}
}

const codeWarningHint = "If this is intended, use [code skip-lint]...[/code]."

// scanState is the per-text state of the resolution pass.
type scanState struct {
	insideCode         bool
	insideCodeTag      string
	insideCodeTabs     bool
	ignoreCodeWarnings bool

	hasTabGDScript bool
	hasTabCSharp   bool

	tagDepth int

	pendingSeparator bool // "\ " owed before the next token
	trimLeadingSpace bool // [br] strips spaces that followed it
	firstRun         bool // full escaping applies before the first tag
}

// Transpile converts one documentation body to RST. All problems are
// reported through the shared Reporter; the return value is always usable.
func (t *Transpiler) Transpile(text string, ctx Context) string {
	text = t.normalizeParagraphs(text, ctx)
	if text == "" {
		return ""
	}

	lx := newLexer(text)
	out := &output{}
	st := &scanState{firstRun: true}

	for {
		tok, ok := lx.next()
		if !ok {
			break
		}

		if st.pendingSeparator {
			if b, ok := tok.firstByte(); ok && strings.IndexByte(allowedSubsequent, b) < 0 {
				out.writeString("\\ ")
			}
			st.pendingSeparator = false
		}

		if tok.kind == textToken {
			t.emitText(out, st, tok.text)
			st.firstRun = false
			continue
		}
		st.trimLeadingSpace = false

		if stop := t.emitTag(lx, out, st, tok.text, ctx); stop {
			break
		}
		st.firstRun = false
	}

	if st.tagDepth != 0 {
		t.diags.Errorf("%s.xml: Tag depth mismatch: too many (or too few) open/close tags in %s.",
			ctx.Class, ctx.describe())
	}

	return out.String()
}

func (t *Transpiler) emitText(out *output, st *scanState, run string) {
	if st.trimLeadingSpace {
		run = strings.TrimLeft(run, " ")
		st.trimLeadingSpace = false
	}
	switch {
	case st.insideCode:
		out.writeString(run)
	case st.firstRun:
		out.writeString(escapeFull(run))
	default:
		out.writeString(escapeMarkers(run))
	}
}

// emitTag resolves a single bracket span. The returned flag stops the scan
// (only an unterminated [url] does that).
func (t *Transpiler) emitTag(lx *lexer, out *output, st *scanState, tagText string, ctx Context) bool {
	// A bare documented class name is a crosslink all by itself.
	if !st.insideCode && t.table.Has(tagText) {
		var sub string
		if tagText == ctx.Class {
			// No self-links; render the page's own class as emphasis.
			sub = "**" + tagText + "**"
		} else {
			sub = t.MakeType(tagText, ctx)
		}
		out.writeSeparated(sub)
		st.pendingSeparator = true
		return false
	}

	tag := parseTag(tagText)

	if st.insideCode {
		t.emitTagInsideCode(out, st, tag, ctx)
		return false
	}

	switch {
	case tag.Name == "codeblocks":
		if tag.Closing {
			if !st.hasTabGDScript || !st.hasTabCSharp {
				t.diags.Warnf("%s.xml: Only one script language sample found in [codeblocks] in %s.",
					ctx.Class, ctx.describe())
			}
			st.hasTabGDScript = false
			st.hasTabCSharp = false
			st.insideCodeTabs = false
			st.tagDepth--
		} else {
			st.insideCodeTabs = true
			st.tagDepth++
			out.writeString("\n.. tabs::")
		}

	case codeblockTags[tag.Name]:
		st.tagDepth++
		switch tag.Name {
		case "gdscript":
			if !st.insideCodeTabs {
				t.diags.Errorf("%s.xml: GDScript code block is used outside of [codeblocks] in %s.",
					ctx.Class, ctx.describe())
			} else {
				st.hasTabGDScript = true
			}
			out.writeString("\n .. code-tab:: gdscript\n")
		case "csharp":
			if !st.insideCodeTabs {
				t.diags.Errorf("%s.xml: C# code block is used outside of [codeblocks] in %s.",
					ctx.Class, ctx.describe())
			} else {
				st.hasTabCSharp = true
			}
			out.writeString("\n .. code-tab:: csharp\n")
		default:
			t.diags.Warnf("%s.xml: Code sample is formatted with [codeblock] where [codeblocks] should be used in %s.",
				ctx.Class, ctx.describe())
			out.writeString("\n::\n")
		}
		st.insideCode = true
		st.insideCodeTag = tag.Name
		st.ignoreCodeWarnings = tag.hasArg("skip-lint")

	case tag.Name == "code":
		out.writeSeparated("``")
		st.tagDepth++
		st.insideCode = true
		st.insideCodeTag = "code"
		st.ignoreCodeWarnings = tag.hasArg("skip-lint")

	case crosslinkTags[tag.Name]:
		t.emitCrosslink(out, st, tag, ctx)

	case tag.Name == "url":
		return t.emitURL(lx, out, st, tag, ctx)

	case tag.Name == "br":
		// RST is not linebreak friendly; start a new paragraph instead.
		out.writeString("\n\n")
		st.trimLeadingSpace = true

	case tag.Name == "center":
		if tag.Closing {
			st.tagDepth--
		} else {
			st.tagDepth++
		}

	case tag.Name == "i":
		t.emitPaired(out, st, tag, "*", "*")

	case tag.Name == "b":
		t.emitPaired(out, st, tag, "**", "**")

	case tag.Name == "u":
		t.emitPaired(out, st, tag, "", "")

	case tag.Name == "kbd":
		t.emitPaired(out, st, tag, ":kbd:`", "`")

	default:
		if tag.Closing {
			t.diags.Errorf("%s.xml: Unrecognized closing tag \"[%s]\" in %s.",
				ctx.Class, tag.Raw, ctx.describe())
			out.writeString("[" + tagText + "]")
		} else {
			t.diags.Errorf("%s.xml: Unrecognized opening tag \"[%s]\" in %s.",
				ctx.Class, tag.Raw, ctx.describe())
			out.writeSeparated("``" + tagText + "``")
			st.pendingSeparator = true
		}
	}

	return false
}

// emitPaired handles the symmetric formatting tags. The opening form gets
// the preceding separator, the closing form owes one to what follows.
func (t *Transpiler) emitPaired(out *output, st *scanState, tag Tag, open, close string) {
	if tag.Closing {
		st.tagDepth--
		out.writeString(close)
		st.pendingSeparator = true
	} else {
		st.tagDepth++
		out.writeSeparated(open)
	}
}

// emitTagInsideCode passes bracket content through verbatim. Only a close
// of the active code tag ends the span; other closing-looking tags are a
// lint warning unless suppressed.
func (t *Transpiler) emitTagInsideCode(out *output, st *scanState, tag Tag, ctx Context) {
	if tag.Closing && tag.Name == st.insideCodeTag {
		if codeblockTags[tag.Name] {
			st.tagDepth--
			st.insideCode = false
			st.ignoreCodeWarnings = false
			// Drop the newline when the close tag sat alone on its line.
			out.trimTrailingNewline()
			return
		}
		if tag.Name == "code" {
			st.tagDepth--
			st.insideCode = false
			st.ignoreCodeWarnings = false
			out.writeString("``")
			st.pendingSeparator = true
			return
		}
	}

	if tag.Closing && !st.ignoreCodeWarnings {
		t.diags.Warnf("%s.xml: Found a code string that looks like a closing tag \"[%s]\" in %s. %s",
			ctx.Class, tag.Raw, ctx.describe(), codeWarningHint)
	}
	out.writeString("[" + tag.Raw + "]")
}

// emitURL owns the full [url]...[/url] span: the link title sits between
// the tags, so the lexer hands the body over raw. An unterminated url ends
// the scan with the remainder passed through untouched.
func (t *Transpiler) emitURL(lx *lexer, out *output, st *scanState, tag Tag, ctx Context) bool {
	target := tag.arg()
	if target == "" {
		t.diags.Errorf("%s.xml: Misformatted [url] tag \"[%s]\" in %s.",
			ctx.Class, tag.Raw, ctx.describe())
		out.writeString(tag.Raw)
		return false
	}

	title, ok := lx.consumeUntil("[/url]")
	if !ok {
		t.diags.Errorf("%s.xml: Tag depth mismatch for [url]: no closing [/url] in %s.",
			ctx.Class, ctx.describe())
		out.writeString("[" + tag.Raw + "]")
		out.writeString(lx.rest())
		return true
	}

	out.writeSeparated(MakeLink(target, title))
	st.pendingSeparator = true
	return false
}

// emitCrosslink resolves one crosslink tag against the symbol table and
// emits either an RST reference or literal fallback text.
func (t *Transpiler) emitCrosslink(out *output, st *scanState, tag Tag, ctx Context) {
	linkTarget := tag.arg()
	if linkTarget == "" {
		t.diags.Errorf("%s.xml: Empty cross-reference link \"[%s]\" in %s.",
			ctx.Class, tag.Raw, ctx.describe())
		return
	}

	var sub string
	switch tag.Name {
	case "enum":
		sub = t.MakeEnum(linkTarget, false, ctx)
	case "param":
		sub = "``" + linkTarget + "``"
	default:
		sub = t.resolveCrosslink(tag, linkTarget, ctx)
	}

	out.writeSeparated(sub)
	st.pendingSeparator = true
}

// resolveCrosslink handles the member-style crosslink tags. Each tag kind
// has its own existence check; anchors take the form
// class_<Class>_<kind>_<name>, with member, private method, and theme_item
// shaping the kind segment specially.
func (t *Transpiler) resolveCrosslink(tag Tag, linkTarget string, ctx Context) string {
	targetClass, targetName := splitLinkTarget(linkTarget, ctx.Class)
	if strings.Count(linkTarget, ".") > 1 {
		t.diags.Errorf("%s.xml: Bad reference \"%s\" in %s.",
			ctx.Class, linkTarget, ctx.describe())
	}

	refType := "_" + tag.Name
	resolved := false

	classDef, classKnown := t.table.Class(targetClass)
	if classKnown {
		switch tag.Name {
		case "method":
			if strings.HasPrefix(targetName, "_") {
				refType = "_private_method"
			}
			_, resolved = classDef.Methods[targetName]
		case "constructor":
			_, resolved = classDef.Constructors[targetName]
		case "operator":
			_, resolved = classDef.Operators[targetName]
		case "member":
			refType = "_property"
			_, resolved = classDef.Properties[targetName]
		case "signal":
			_, resolved = classDef.Signals[targetName]
		case "annotation":
			_, resolved = classDef.Annotations[targetName]
		case "theme_item":
			if item, ok := classDef.ThemeItems[targetName]; ok {
				// Anchors for theme properties carry the theme data type.
				refType = "_theme_" + item.DataName
				resolved = true
			}
		case "constant":
			targetClass, resolved = t.findConstant(classDef, targetName, strings.Contains(linkTarget, "."))
		}

		if !resolved {
			t.diags.Errorf("%s.xml: Unresolved %s reference \"%s\" in %s.",
				ctx.Class, tag.Name, linkTarget, ctx.describe())
		}
	} else {
		t.diags.Errorf("%s.xml: Unresolved type reference \"%s\" in %s reference \"%s\" in %s.",
			ctx.Class, targetClass, tag.Name, linkTarget, ctx.describe())
	}

	if !resolved {
		return "``" + linkTarget + "``"
	}

	replText := targetName
	if targetClass != ctx.Class {
		replText = targetClass + "." + targetName
	}
	return fmt.Sprintf(":ref:`%s<class_%s%s_%s>`", replText, targetClass, refType, targetName)
}

// findConstant searches a class's constants and enum values; unqualified
// references fall back to @GlobalScope as a last resort. Returns the class
// that actually owns the constant.
func (t *Transpiler) findConstant(classDef *symbols.Class, name string, qualified bool) (string, bool) {
	searchDefs := []*symbols.Class{classDef}
	if !qualified {
		if global, ok := t.table.Class(symbols.GlobalScope); ok {
			searchDefs = append(searchDefs, global)
		}
	}

	owner := classDef.Name
	found := false
	for _, def := range searchDefs {
		if _, ok := def.Constants[name]; ok {
			owner = def.Name
			found = true
			continue
		}
		for _, enum := range def.Enums {
			if _, ok := enum.Values[name]; ok {
				owner = def.Name
				found = true
				break
			}
		}
	}
	return owner, found
}

// splitLinkTarget splits "Class.member" into its parts, defaulting the
// class to the transpilation context for bare "member" targets.
func splitLinkTarget(linkTarget, contextClass string) (class, member string) {
	if i := strings.IndexByte(linkTarget, '.'); i >= 0 {
		rest := linkTarget[i+1:]
		// Malformed multi-dot targets keep their first two segments.
		if j := strings.IndexByte(rest, '.'); j >= 0 {
			rest = rest[:j]
		}
		return linkTarget[:i], rest
	}
	return contextClass, linkTarget
}
