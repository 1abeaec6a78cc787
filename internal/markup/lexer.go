package markup

import "strings"

// tokenKind distinguishes plain text runs from bracket tag spans.
type tokenKind int

const (
	textToken tokenKind = iota
	tagToken
)

// token is one lexed unit: either a text run, or the inner text of a
// bracket span (without the brackets).
type token struct {
	kind tokenKind
	text string
}

// firstByte returns the first raw source byte of the token, used by the
// emitter to decide whether an RST separator is needed.
func (t token) firstByte() (byte, bool) {
	if t.kind == tagToken {
		return '[', true
	}
	if t.text == "" {
		return 0, false
	}
	return t.text[0], true
}

// lexer yields a finite sequence of (text-run | tag) tokens over the
// source. Scanning mechanics live here; all semantic dispatch happens in
// the resolution pass.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

// next returns the next token, or ok=false at end of input. A "[" with no
// matching "]" is not a tag; the remainder is yielded as text.
func (l *lexer) next() (token, bool) {
	if l.pos >= len(l.src) {
		return token{}, false
	}

	open := strings.IndexByte(l.src[l.pos:], '[')
	if open < 0 {
		tok := token{kind: textToken, text: l.src[l.pos:]}
		l.pos = len(l.src)
		return tok, true
	}
	open += l.pos

	if open > l.pos {
		tok := token{kind: textToken, text: l.src[l.pos:open]}
		l.pos = open
		return tok, true
	}

	end := strings.IndexByte(l.src[open+1:], ']')
	if end < 0 {
		tok := token{kind: textToken, text: l.src[l.pos:]}
		l.pos = len(l.src)
		return tok, true
	}
	end += open + 1

	tok := token{kind: tagToken, text: l.src[open+1 : end]}
	l.pos = end + 1
	return tok, true
}

// consumeUntil returns the raw source up to the next occurrence of marker
// and advances past it. Used by [url] handling, which owns its span in
// full because the link title sits between open and close tags.
func (l *lexer) consumeUntil(marker string) (string, bool) {
	i := strings.Index(l.src[l.pos:], marker)
	if i < 0 {
		return "", false
	}
	body := l.src[l.pos : l.pos+i]
	l.pos += i + len(marker)
	return body, true
}

// rest returns the unscanned remainder and exhausts the lexer.
func (l *lexer) rest() string {
	r := l.src[l.pos:]
	l.pos = len(l.src)
	return r
}
