package rst

import (
	"fmt"
	"io"
	"strings"
)

// WriteTable renders rows as a grid table under a ".. table::" directive
// with automatic column widths. Cell content is padded by one space on
// each side; consecutive rows share one border line. Columns that are
// empty in every row can be omitted entirely.
func WriteTable(w io.Writer, rows [][]string, removeEmptyColumns bool) {
	if len(rows) == 0 {
		return
	}

	fmt.Fprint(w, ".. table::\n")
	fmt.Fprint(w, "   :widths: auto\n\n")

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sep strings.Builder
	for _, size := range widths {
		if size == 0 && removeEmptyColumns {
			continue
		}
		sep.WriteString("+")
		sep.WriteString(strings.Repeat("-", size+2))
	}
	sep.WriteString("+\n")

	fmt.Fprintf(w, "   %s", sep.String())
	for _, row := range rows {
		var line strings.Builder
		line.WriteString("|")
		for i, cell := range row {
			if widths[i] == 0 && removeEmptyColumns {
				continue
			}
			line.WriteString(fmt.Sprintf(" %-*s |", widths[i], cell))
		}
		line.WriteString("\n")
		fmt.Fprintf(w, "   %s", line.String())
		fmt.Fprintf(w, "   %s", sep.String())
	}
	fmt.Fprint(w, "\n")
}
