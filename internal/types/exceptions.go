package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type ErrorTag string

const (
	ConfigErrorTag        ErrorTag = "ConfigError"
	EvalErrorTag          ErrorTag = "EvalError"
	LexErrorTag           ErrorTag = "LexError"
	ParseErrorTag         ErrorTag = "ParseError"
	ResourceLimitErrorTag ErrorTag = "ResourceLimitError"
)

// Exception is an error with a JSON-friendly payload describing it.
type Exception interface {
	error
	Exception() any
}

type Error struct {
	Tag   ErrorTag
	Err   error
	Extra map[string]any
}

var _ Exception = (*Error)(nil)

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Tag)
	}

	var b strings.Builder
	b.WriteString(string(e.Tag))
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Exception() any {
	tags := []any{e.Tag}
	for err := errors.Unwrap(error(e)); err != nil; err = errors.Unwrap(err) {
		if e, ok := err.(*Error); ok {
			tags = append(tags, e.Tag)
		}
	}

	o := map[string]any{
		"tags": tags,
	}
	if e.Err != nil {
		o["message"] = e.Err.Error()
	}
	if len(e.Extra) != 0 {
		o = lo.Assign(o, e.Extra)
	}
	return o
}

// LexError reports source text that no lexical production accepts.
type LexError struct {
	Text   string
	Reason string
	Span   Span
}

var _ Exception = (*LexError)(nil)

func (e *LexError) Error() string {
	return fmt.Sprintf("%s at %s: %s %q", LexErrorTag, e.Span.Loc.Start, e.Reason, e.Text)
}

func (e *LexError) Exception() any {
	return map[string]any{
		"tags":    []any{LexErrorTag},
		"message": e.Reason,
		"text":    e.Text,
		"line":    e.Span.Loc.Start.Line,
		"column":  e.Span.Loc.Start.Column + 1,
	}
}

// ParseError reports a token that cannot start or continue the active production.
type ParseError struct {
	Lexeme     string
	Terminal   string
	Production string
	Expected   string
	Message    string
	Span       Span
}

var _ Exception = (*ParseError)(nil)

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(string(ParseErrorTag))
	b.WriteString(" at ")
	b.WriteString(e.Span.Loc.Start.String())
	b.WriteString(": ")
	switch {
	case e.Message != "":
		b.WriteString(e.Message)
	case e.Lexeme == "":
		b.WriteString("unexpected end of input")
	default:
		fmt.Fprintf(&b, "unexpected %s %q", e.Terminal, e.Lexeme)
	}
	fmt.Fprintf(&b, " in %s", e.Production)
	if e.Expected != "" {
		fmt.Fprintf(&b, " (expected %s)", e.Expected)
	}
	return b.String()
}

func (e *ParseError) Exception() any {
	o := map[string]any{
		"tags":       []any{ParseErrorTag},
		"lexeme":     e.Lexeme,
		"terminal":   e.Terminal,
		"production": e.Production,
		"line":       e.Span.Loc.Start.Line,
		"column":     e.Span.Loc.Start.Column + 1,
	}
	if e.Expected != "" {
		o["expected"] = e.Expected
	}
	if e.Message != "" {
		o["message"] = e.Message
	}
	return o
}

// LimitError reports that a nesting budget was exhausted while parsing.
type LimitError struct {
	Limit int
	Span  Span
}

var _ Exception = (*LimitError)(nil)

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s at %s: nesting depth exceeds %d", ResourceLimitErrorTag, e.Span.Loc.Start, e.Limit)
}

func (e *LimitError) Exception() any {
	return map[string]any{
		"tags":   []any{ResourceLimitErrorTag},
		"limit":  e.Limit,
		"line":   e.Span.Loc.Start.Line,
		"column": e.Span.Loc.Start.Column + 1,
	}
}

// SpanOf extracts the source span carried by err, if any.
func SpanOf(err error) (Span, bool) {
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		return lexErr.Span, true
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Span, true
	}
	var limitErr *LimitError
	if errors.As(err, &limitErr) {
		return limitErr.Span, true
	}
	return Span{}, false
}
