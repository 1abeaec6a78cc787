package symbols

import (
	"bufio"
	"io"
	"strings"
)

// ExtractClassName scans the head of a GDScript source for its declared
// class name. Comment lines are skipped; the scan stops at the first
// non-comment, non-directive line since class_name must appear in the
// script header.
func ExtractClassName(r io.Reader) (string, bool) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "@"):
			// Annotations like @tool and @icon may precede class_name.
			continue
		case strings.HasPrefix(line, "class_name"):
			rest := strings.TrimSpace(strings.TrimPrefix(line, "class_name"))
			// "class_name Foo extends Node" keeps everything on one line.
			if i := strings.IndexAny(rest, " \t"); i >= 0 {
				rest = rest[:i]
			}
			rest = strings.TrimSuffix(rest, ":")
			if rest == "" {
				return "", false
			}
			return rest, true
		case strings.HasPrefix(line, "extends"):
			// extends may legally precede class_name.
			continue
		default:
			return "", false
		}
	}
	return "", false
}
