package rst

import (
	"strings"
	"testing"
)

func TestWriteTable(t *testing.T) {
	var sb strings.Builder
	WriteTable(&sb, [][]string{
		{"int", "one"},
		{"String", "two"},
	}, false)

	want := ".. table::\n" +
		"   :widths: auto\n" +
		"\n" +
		"   +--------+-----+\n" +
		"   | int    | one |\n" +
		"   +--------+-----+\n" +
		"   | String | two |\n" +
		"   +--------+-----+\n" +
		"\n"
	if sb.String() != want {
		t.Errorf("table output:\n%q\nwant:\n%q", sb.String(), want)
	}
}

func TestWriteTableRemovesEmptyColumns(t *testing.T) {
	var sb strings.Builder
	WriteTable(&sb, [][]string{
		{"a", "", "x"},
		{"bb", "", "y"},
	}, true)

	got := sb.String()
	if strings.Contains(got, "|  |") {
		t.Errorf("empty column not removed:\n%s", got)
	}
	if !strings.Contains(got, "| a  | x |") {
		t.Errorf("unexpected row layout:\n%s", got)
	}
	if !strings.Contains(got, "+----+---+") {
		t.Errorf("unexpected separator:\n%s", got)
	}
}

func TestWriteTableEmpty(t *testing.T) {
	var sb strings.Builder
	WriteTable(&sb, nil, false)
	if sb.Len() != 0 {
		t.Errorf("empty table wrote %q", sb.String())
	}
}
