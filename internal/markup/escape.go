package markup

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Characters after which (or before which) a substituted RST role needs no
// explicit "\ " separator.
const (
	allowedPrecedent  = " -:/'\"<([{"
	allowedSubsequent = " -.,:;!?\\/'\")]}>"
)

// escapeFull escapes backslash, asterisk, and word-final underscore.
// Applied to the text preceding the first tag.
func escapeFull(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	return escapeMarkers(text)
}

// escapeMarkers escapes asterisk and word-final underscore. Applied to
// every text run between tag substitutions, outside code spans.
func escapeMarkers(text string) string {
	text = strings.ReplaceAll(text, "*", `\*`)

	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '_' {
			b.WriteByte(c)
			continue
		}
		// Escape only a trailing underscore; within snake_case the
		// underscore is followed by an alphanumeric and stays as is.
		if !alnumAt(text, i+1) {
			b.WriteString(`\_`)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// alnumAt reports whether the rune starting at byte offset i is a letter
// or digit. End of text counts as non-alphanumeric.
func alnumAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// output accumulates resolved text. It is a thin wrapper over a byte
// slice because codeblock close tags need to retract a trailing newline.
type output struct {
	buf []byte
}

func (o *output) writeString(s string) {
	o.buf = append(o.buf, s...)
}

func (o *output) lastByte() (byte, bool) {
	if len(o.buf) == 0 {
		return 0, false
	}
	return o.buf[len(o.buf)-1], true
}

func (o *output) trimTrailingNewline() {
	if b, ok := o.lastByte(); ok && b == '\n' {
		o.buf = o.buf[:len(o.buf)-1]
	}
}

func (o *output) String() string {
	return string(o.buf)
}

// writeSeparated writes a tag substitution, inserting the "\ " separator
// when the preceding output character would otherwise fuse with the RST
// role markup.
func (o *output) writeSeparated(sub string) {
	if b, ok := o.lastByte(); ok && strings.IndexByte(allowedPrecedent, b) < 0 {
		o.writeString("\\ ")
	}
	o.writeString(sub)
}
