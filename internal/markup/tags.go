// Package markup transpiles the inline bracket-tag documentation language
// into reStructuredText, resolving crosslinks against the project symbol
// table. Transpilation never fails: malformed tags and unresolved
// references become diagnostics plus best-effort substitutions.
package markup

import "strings"

// Tag sets from the documentation markup taxonomy. Anything outside these
// sets is an unrecognized tag, reported and rendered literally.
var (
	formattingTags = map[string]bool{
		"i": true, "b": true, "u": true, "code": true,
		"kbd": true, "center": true, "url": true, "br": true,
	}

	codeblockTags = map[string]bool{
		"codeblock": true, "gdscript": true, "csharp": true,
	}

	crosslinkTags = map[string]bool{
		"method": true, "constructor": true, "operator": true,
		"member": true, "signal": true, "constant": true,
		"enum": true, "annotation": true, "theme_item": true,
		"param": true,
	}
)

// Tag is a parsed bracket tag: name, arguments, closing flag, and the raw
// inner text for diagnostics. Tags only live for the duration of one
// transpile pass.
type Tag struct {
	Raw     string
	Name    string
	Args    []string
	Closing bool
}

// parseTag splits the inner text of a bracket span into a tag name and
// arguments. Both "[url=target]" and "[method target]" argument forms are
// accepted; everything after the separator is a single argument.
func parseTag(tagText string) Tag {
	name := tagText
	var args []string

	if i := strings.IndexByte(tagText, '='); i >= 0 {
		name = tagText[:i]
		args = []string{strings.TrimSpace(tagText[i+1:])}
	} else if i := strings.IndexByte(tagText, ' '); i >= 0 {
		name = tagText[:i]
		args = []string{strings.TrimSpace(tagText[i+1:])}
	}

	closing := false
	if strings.HasPrefix(name, "/") {
		name = name[1:]
		closing = true
	}

	return Tag{Raw: tagText, Name: name, Args: args, Closing: closing}
}

// hasArg reports whether the tag carries the given argument.
func (t Tag) hasArg(arg string) bool {
	for _, a := range t.Args {
		if a == arg {
			return true
		}
	}
	return false
}

// arg returns the first argument, or "" when the tag has none.
func (t Tag) arg() string {
	if len(t.Args) == 0 {
		return ""
	}
	return t.Args[0]
}
