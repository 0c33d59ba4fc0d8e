package types

import "fmt"

// Position is a line/column pair. Line is 1-based and Column is a 0-based count of
// code points from the start of the line, following the ESTree location convention.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column+1)
}

type SourceLocation struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Span is a half-open byte range [Start, End) of the UTF-8 source with its line/column
// location. It is embedded into tokens and AST nodes, and flattens into the acorn-style
// "start", "end" and "loc" properties when encoded as JSON.
type Span struct {
	Start int            `json:"start"`
	End   int            `json:"end"`
	Loc   SourceLocation `json:"loc"`
}

func (s Span) Range() Span {
	return s
}

// To returns the span from the beginning of s to the end of end.
func (s Span) To(end Span) Span {
	return Span{
		Start: s.Start,
		End:   end.End,
		Loc: SourceLocation{
			Start: s.Loc.Start,
			End:   end.Loc.End,
		},
	}
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Loc.Start, s.Loc.End)
}
