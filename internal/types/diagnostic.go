package types

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

var newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// RenderDiagnostic formats err with a caret snippet of source pointing at the error
// location, with one line of context around it. Errors without a location are
// rendered as their message alone.
func RenderDiagnostic(err error, source string) string {
	span, ok := SpanOf(err)
	if !ok {
		return err.Error()
	}

	lines := strings.Split(newlineReplacer.Replace(source), "\n")
	line := span.Loc.Start.Line
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}

	first, last := line-1, line+1
	if first < 1 {
		first = 1
	}
	if last > len(lines) {
		last = len(lines)
	}
	width := len(fmt.Sprint(last))

	var b strings.Builder
	b.WriteString(err.Error())
	b.WriteString("\n\n")
	for n := first; n <= last; n++ {
		fmt.Fprintf(&b, "%*d | %s\n", width, n, lines[n-1])
		if n == line {
			col := span.Loc.Start.Column
			if limit := len([]rune(lines[n-1])); col > limit {
				col = limit
			}
			fmt.Fprintf(&b, "%s | %s^\n", strings.Repeat(" ", width), caretPadding(lines[n-1], col))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// caretPadding pads by display width so the caret lines up under wide emoji. Tabs are
// kept as they are.
func caretPadding(line string, col int) string {
	var b strings.Builder
	for i, r := range []rune(line) {
		if i == col {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
	}
	return b.String()
}
