package markup

import (
	"strings"
	"testing"

	"gddoc/internal/diag"
	"gddoc/internal/symbols"
)

// testTable builds the fixed symbol table shared by transpiler tests:
// class Foo with a handful of members, class Enemy, and @GlobalScope.
func testTable() *symbols.Table {
	table := symbols.NewTable()

	foo := symbols.NewClass("Foo")
	foo.Methods["bar"] = &symbols.Method{Definition: symbols.Definition{Kind: "method", Name: "bar"}}
	foo.Methods["_secret"] = &symbols.Method{Definition: symbols.Definition{Kind: "method", Name: "_secret"}}
	foo.Properties["speed"] = &symbols.Property{Definition: symbols.Definition{Kind: "property", Name: "speed"}}
	foo.Signals["hit"] = &symbols.Signal{Definition: symbols.Definition{Kind: "signal", Name: "hit"}}
	foo.Constants["MAX_HEALTH"] = &symbols.Constant{Definition: symbols.Definition{Kind: "constant", Name: "MAX_HEALTH"}}
	foo.Enums["Mode"] = &symbols.Enum{
		Definition: symbols.Definition{Kind: "enum", Name: "Mode"},
		Values: map[string]*symbols.Constant{
			"MODE_A": {Definition: symbols.Definition{Kind: "constant", Name: "MODE_A"}},
		},
	}
	foo.ThemeItems["bar_color"] = &symbols.ThemeItem{
		Definition: symbols.Definition{Kind: "theme property", Name: "bar_color"},
		DataName:   "color",
	}
	table.Add(foo)

	table.Add(symbols.NewClass("Enemy"))

	global := symbols.NewClass(symbols.GlobalScope)
	global.Constants["PI"] = &symbols.Constant{Definition: symbols.Definition{Kind: "constant", Name: "PI"}}
	table.Add(global)

	return table
}

func newTestTranspiler() (*Transpiler, *diag.Reporter) {
	diags := diag.NewReporter(nil)
	return New(testTable(), diags), diags
}

var fooCtx = Context{Class: "Foo", Kind: "method", Name: "bar"}

func TestPlainTextUnchanged(t *testing.T) {
	tr, diags := newTestTranspiler()

	texts := []string{
		"A sentence with nothing special.",
		"Numbers 1 2 3 and words.",
		"",
	}
	for _, text := range texts {
		if got := tr.Transpile(text, fooCtx); got != text {
			t.Errorf("Transpile(%q) = %q, want unchanged", text, got)
		}
	}
	if diags.Errors() != 0 || diags.Warnings() != 0 {
		t.Errorf("plain text produced diagnostics: %+v", diags.Snapshot())
	}
}

func TestEscaping(t *testing.T) {
	tr, _ := newTestTranspiler()

	tests := []struct {
		in, want string
	}{
		{"2 * 3", `2 \* 3`},
		{`back\slash`, `back\\slash`},
		{"use snake_case_ here", `use snake_case\_ here`},
		{"word_", `word\_`},
	}
	for _, tt := range tests {
		if got := tr.Transpile(tt.in, fooCtx); got != tt.want {
			t.Errorf("Transpile(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCrosslinkResolution(t *testing.T) {
	tr, diags := newTestTranspiler()

	got := tr.Transpile("See [method bar] and [method Baz.qux].", fooCtx)
	want := "See :ref:`bar<class_Foo_method_bar>` and ``Baz.qux``."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if diags.Errors() != 1 {
		t.Errorf("expected exactly one unresolved-reference error, got %d", diags.Errors())
	}
}

func TestCrosslinkKinds(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		errs int
	}{
		{"private method", "[method _secret]", ":ref:`_secret<class_Foo_private_method__secret>`", 0},
		{"member is property anchor", "[member speed]", ":ref:`speed<class_Foo_property_speed>`", 0},
		{"signal", "[signal hit]", ":ref:`hit<class_Foo_signal_hit>`", 0},
		{"qualified from other class", "[signal Foo.hit]", ":ref:`hit<class_Foo_signal_hit>`", 0},
		{"theme item data type anchor", "[theme_item bar_color]", ":ref:`bar_color<class_Foo_theme_color_bar_color>`", 0},
		{"constant", "[constant MAX_HEALTH]", ":ref:`MAX_HEALTH<class_Foo_constant_MAX_HEALTH>`", 0},
		{"enum value constant", "[constant MODE_A]", ":ref:`MODE_A<class_Foo_constant_MODE_A>`", 0},
		{"global scope constant fallback", "[constant PI]", ":ref:`@GlobalScope.PI<class_@GlobalScope_constant_PI>`", 0},
		{"enum", "[enum Mode]", ":ref:`Mode<enum_Foo_Mode>`", 0},
		{"param", "[param amount]", "``amount``", 0},
		{"unresolved member", "[member missing]", "``missing``", 1},
		{"empty argument", "[method ]", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, diags := newTestTranspiler()
			got := tr.Transpile(tt.in, fooCtx)
			if got != tt.want {
				t.Errorf("Transpile(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if diags.Errors() != tt.errs {
				t.Errorf("Transpile(%q) errors = %d, want %d", tt.in, diags.Errors(), tt.errs)
			}
		})
	}
}

func TestAnchorDeterminism(t *testing.T) {
	tr, _ := newTestTranspiler()
	const text = "[method bar] then [member speed] then [enum Mode]"

	first := tr.Transpile(text, fooCtx)
	for i := 0; i < 5; i++ {
		if got := tr.Transpile(text, fooCtx); got != first {
			t.Fatalf("pass %d differs: %q vs %q", i, got, first)
		}
	}
}

func TestBareClassReference(t *testing.T) {
	tr, _ := newTestTranspiler()

	got := tr.Transpile("[Foo] fights [Enemy]", fooCtx)
	want := "**Foo** fights :ref:`Enemy<class_Enemy>`"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormattingTags(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"[i]x[/i]", "*x*"},
		{"[b]x[/b]", "**x**"},
		{"[u]x[/u]", "x"},
		{"[kbd]Ctrl + C[/kbd]", ":kbd:`Ctrl + C`"},
		{"a[br] b", "a\n\nb"},
		{"[center]x[/center]", "x"},
		// Substitutions fuse with adjacent word characters unless separated.
		{"[i]x[/i]s", "*x*\\ s"},
		{"a[b]x[/b]", "a\\ **x**"},
	}
	for _, tt := range tests {
		tr, diags := newTestTranspiler()
		if got := tr.Transpile(tt.in, fooCtx); got != tt.want {
			t.Errorf("Transpile(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if diags.Errors() != 0 {
			t.Errorf("Transpile(%q) produced %d errors", tt.in, diags.Errors())
		}
	}
}

func TestDepthMismatchReportedOnce(t *testing.T) {
	tests := []string{
		"[b]never closed",
		"[i][b]two open[/b]",
		"stray close[/b]",
		strings.Repeat("x", 500) + "[u]tail",
	}
	for _, text := range tests {
		tr, diags := newTestTranspiler()
		tr.Transpile(text, fooCtx)
		if diags.Errors() != 1 {
			t.Errorf("Transpile(%q): %d errors, want exactly 1 depth mismatch", text, diags.Errors())
		}
	}
}

func TestBalancedTagsNoDiagnostic(t *testing.T) {
	tr, diags := newTestTranspiler()
	tr.Transpile("[b][i]both[/i][/b] and [u]one[/u]", fooCtx)
	if diags.Errors() != 0 {
		t.Errorf("balanced tags produced %d errors", diags.Errors())
	}
}

func TestInlineCode(t *testing.T) {
	tr, diags := newTestTranspiler()

	got := tr.Transpile("run [code]a*b[/code] now", fooCtx)
	want := "run ``a*b`` now"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if diags.Errors() != 0 || diags.Warnings() != 0 {
		t.Errorf("unexpected diagnostics: %+v", diags.Snapshot())
	}
}

func TestCodeClosingLookalikeWarns(t *testing.T) {
	tr, diags := newTestTranspiler()
	tr.Transpile("[code]x[/b]y[/code]", fooCtx)
	if diags.Warnings() != 1 {
		t.Errorf("expected 1 closing-lookalike warning, got %d", diags.Warnings())
	}

	tr2, diags2 := newTestTranspiler()
	tr2.Transpile("[code skip-lint]x[/b]y[/code]", fooCtx)
	if diags2.Warnings() != 0 {
		t.Errorf("skip-lint should suppress the warning, got %d", diags2.Warnings())
	}
}

func TestCodeblocksParity(t *testing.T) {
	tr, diags := newTestTranspiler()
	got := tr.Transpile("[codeblocks][gdscript]x[/gdscript][/codeblocks]", fooCtx)

	if !strings.Contains(got, ".. tabs::") || !strings.Contains(got, ".. code-tab:: gdscript") {
		t.Errorf("tabbed block not rendered: %q", got)
	}
	if diags.Warnings() != 1 {
		t.Errorf("missing language parity should warn once, got %d warnings", diags.Warnings())
	}

	tr2, diags2 := newTestTranspiler()
	tr2.Transpile("[codeblocks][gdscript]x[/gdscript][csharp]y[/csharp][/codeblocks]", fooCtx)
	if diags2.Warnings() != 0 {
		t.Errorf("both languages present, got %d warnings", diags2.Warnings())
	}
}

func TestLoneCodeblockRecommendsWrapper(t *testing.T) {
	tr, diags := newTestTranspiler()
	got := tr.Transpile("[codeblock]print(1)[/codeblock]", fooCtx)

	if !strings.Contains(got, "\n::\n") {
		t.Errorf("codeblock not rendered as literal block: %q", got)
	}
	if diags.Warnings() != 1 {
		t.Errorf("lone codeblock should warn once, got %d", diags.Warnings())
	}
}

func TestParagraphNormalization(t *testing.T) {
	tr, _ := newTestTranspiler()

	got := tr.Transpile("First line.\n\tSecond para.", fooCtx)
	want := "First line.\n\nSecond para."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCodeblockExtraction(t *testing.T) {
	tr, diags := newTestTranspiler()

	in := "Example:\n\t[codeblock]\n\tprint(1)\n\t\tover\n\t[/codeblock]"
	got := tr.Transpile(in, fooCtx)

	want := "Example:\n\n::\n\n    print(1)\n    over"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	// One error for the over-indented line, one warning recommending
	// [codeblocks].
	if diags.Errors() != 1 {
		t.Errorf("over-indent errors = %d, want 1", diags.Errors())
	}
	if diags.Warnings() != 1 {
		t.Errorf("wrapper warnings = %d, want 1", diags.Warnings())
	}
}

func TestUnterminatedCodeblockEmptiesText(t *testing.T) {
	tr, diags := newTestTranspiler()

	got := tr.Transpile("Example:\n\t[codeblock]\n\tprint(1)", fooCtx)
	if got != "" {
		t.Errorf("unterminated codeblock should yield empty text, got %q", got)
	}
	if diags.Errors() != 1 {
		t.Errorf("errors = %d, want 1", diags.Errors())
	}
}

func TestURLTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		errs int
	}{
		{
			"external with title",
			"[url=https://example.com]site[/url]",
			"`site <https://example.com>`__", 0,
		},
		{
			"docs page with title",
			"[url=$DOCS_URL/tutorials/math.html]Math[/url]",
			":doc:`Math <../tutorials/math>`", 0,
		},
		{
			"docs page bare",
			"[url=$DOCS_URL/tutorials/math.html][/url]",
			":doc:`../tutorials/math`", 0,
		},
		{
			"docs fragment",
			"[url=$DOCS_URL/tutorials/math.html#section]Title[/url]",
			"`Title <../tutorials/math.html#section>`__", 0,
		},
		{
			// Both the open and the close report as misformatted.
			"missing argument",
			"[url]x[/url]",
			"urlx/url", 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, diags := newTestTranspiler()
			got := tr.Transpile(tt.in, fooCtx)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if diags.Errors() != tt.errs {
				t.Errorf("errors = %d, want %d", diags.Errors(), tt.errs)
			}
		})
	}
}

func TestUnterminatedURLPassesRemainderThrough(t *testing.T) {
	tr, diags := newTestTranspiler()

	got := tr.Transpile("see [url=https://x]rest of text", fooCtx)
	want := "see [url=https://x]rest of text"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if diags.Errors() != 1 {
		t.Errorf("errors = %d, want 1", diags.Errors())
	}
}

func TestUnrecognizedTags(t *testing.T) {
	tr, diags := newTestTranspiler()
	got := tr.Transpile("a [bogus] b", fooCtx)
	if got != "a ``bogus`` b" {
		t.Errorf("opening fallback wrong: %q", got)
	}
	if diags.Errors() != 1 {
		t.Errorf("errors = %d, want 1", diags.Errors())
	}

	tr2, diags2 := newTestTranspiler()
	got2 := tr2.Transpile("a [/bogus] b", fooCtx)
	if got2 != "a [/bogus] b" {
		t.Errorf("closing fallback wrong: %q", got2)
	}
	if diags2.Errors() != 1 {
		t.Errorf("errors = %d, want 1", diags2.Errors())
	}
}

func TestTagsInsideCodeVerbatim(t *testing.T) {
	tr, _ := newTestTranspiler()

	got := tr.Transpile("[code skip-lint]call([b]x[/b])[/code]", fooCtx)
	want := "``call([b]x[/b])``"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
