package markup

import "strings"

// codeblockOpensAt reports whether text opens with a codeblock-family tag,
// with or without arguments.
func codeblockOpensAt(text string) bool {
	for name := range codeblockTags {
		if strings.HasPrefix(text, "["+name+"]") || strings.HasPrefix(text, "["+name+" ") {
			return true
		}
	}
	return false
}

// normalizeParagraphs rewrites line breaks followed by tab indentation into
// paragraph breaks. When the indented content opens a codeblock-family tag,
// the block is handed to the codeblock extractor instead, which consumes
// up to the matching close tag and canonicalizes its indentation.
func (t *Transpiler) normalizeParagraphs(text string, ctx Context) string {
	pos := 0
	for {
		nl := strings.Index(text[pos:], "\n")
		if nl < 0 {
			break
		}
		nl += pos

		preText := text[:nl]
		indentLevel := 0
		for nl+indentLevel+1 < len(text) && text[nl+indentLevel+1] == '\t' {
			indentLevel++
		}
		postText := text[nl+indentLevel+1:]

		if codeblockOpensAt(postText) {
			tagText, _, _ := strings.Cut(postText[1:], "]")
			tag := parseTag(tagText)
			block, consumed, ok := t.extractCodeblock(tag, postText, indentLevel, ctx)
			if !ok {
				return ""
			}
			text = preText + block
			pos = len(preText) + consumed
		} else {
			text = preText + "\n\n" + postText
			pos = nl + 2
		}
	}
	return text
}

// extractCodeblock consumes a codeblock-family block up to its matching
// close tag and re-indents the body to a canonical 4-space unit. Lines
// indented deeper than the surrounding nesting level are a formatting
// error. Returns the rewritten suffix, the number of bytes of it that are
// settled (the block itself), and ok=false when the close tag is missing.
func (t *Transpiler) extractCodeblock(tag Tag, postText string, indentLevel int, ctx Context) (string, int, bool) {
	endPos := strings.Index(postText, "[/"+tag.Name+"]")
	if endPos < 0 {
		t.diags.Errorf("%s.xml: Tag depth mismatch for [%s]: no closing [/%s].",
			ctx.Class, tag.Name, tag.Name)
		return "", 0, false
	}

	opening := tag.Name
	if len(tag.Args) > 0 {
		opening += " " + strings.Join(tag.Args, " ")
	}

	codeText := postText[len(opening)+2 : endPos]
	postText = postText[endPos:]

	pos := 0
	for {
		nl := strings.Index(codeText[pos:], "\n")
		if nl < 0 {
			break
		}
		nl += pos

		skip := 0
		for nl+skip+1 < len(codeText) && codeText[nl+skip+1] == '\t' {
			skip++
		}

		if skip > indentLevel {
			t.diags.Errorf("%s.xml: Four spaces should be used for indentation within [%s].",
				ctx.Class, tag.Name)
		}

		rest := codeText[nl+skip+1:]
		if len(rest) == 0 {
			codeText = codeText[:nl] + "\n"
			pos = nl + 1
		} else {
			codeText = codeText[:nl] + "\n    " + rest
			pos = nl + 5 - skip
			if pos <= nl {
				pos = nl + 1
			}
		}
	}

	block := "\n[" + opening + "]" + codeText
	return block + postText, len(block), true
}
