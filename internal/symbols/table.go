package symbols

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/karupanerura/emojiscript/internal/types"
	"github.com/samber/lo"
)

// VariationSelector16 requests emoji presentation of the preceding code point.
// It is optional everywhere in a lexeme.
const VariationSelector16 = '\uFE0F'

// Entry binds a lexeme to a terminal.
type Entry struct {
	Lexeme   string   `json:"lexeme"`
	Terminal Terminal `json:"terminal"`
	// Text is the canonical spelling, e.g. "true" for a BooleanLiteral or "10" for a
	// NumberLiteral. It defaults to Terminal.Text().
	Text string `json:"text"`
}

// Match is the result of a successful lookup.
type Match struct {
	Entry
	// Length is the number of source bytes consumed, including skipped selectors.
	Length int
}

type trieNode struct {
	children map[rune]*trieNode
	entry    *Entry
}

// Table is an immutable lexeme dictionary. It is safe for concurrent use.
type Table struct {
	root    *trieNode
	words   map[string]Entry
	entries map[string]Entry
}

func New(entries []Entry) (*Table, error) {
	t := &Table{
		root:    &trieNode{},
		words:   map[string]Entry{},
		entries: make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		if err := t.add(e); err != nil {
			return nil, &types.Error{Tag: types.ConfigErrorTag, Err: err}
		}
	}
	return t, nil
}

func MustNew(entries []Entry) *Table {
	t, err := New(entries)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) add(e Entry) error {
	if !e.Terminal.Bindable() {
		return fmt.Errorf("lexeme %q: terminal %s cannot be bound to a lexeme", e.Lexeme, e.Terminal)
	}

	key := normalizeLexeme(e.Lexeme)
	if key == "" {
		return fmt.Errorf("empty lexeme for terminal %s", e.Terminal)
	}
	if !utf8.ValidString(key) {
		return fmt.Errorf("lexeme %q is not valid UTF-8", e.Lexeme)
	}

	text, err := canonicalText(e)
	if err != nil {
		return fmt.Errorf("lexeme %q: %w", e.Lexeme, err)
	}
	e.Text = text

	if prev, ok := t.entries[key]; ok {
		if prev.Terminal != e.Terminal || prev.Text != e.Text {
			return fmt.Errorf("lexeme %q is bound to both %s(%s) and %s(%s)", e.Lexeme, prev.Terminal, prev.Text, e.Terminal, e.Text)
		}
		return nil // synonym registered twice
	}

	first, _ := utf8.DecodeRuneInString(key)
	switch {
	case unicode.IsSpace(first), first == '"', first == '\'', '0' <= first && first <= '9':
		return fmt.Errorf("lexeme %q must not start with %q", e.Lexeme, first)
	case IsIdentifierStart(first):
		if strings.IndexFunc(key, func(r rune) bool { return !IsIdentifierPart(r) }) != -1 {
			return fmt.Errorf("lexeme %q mixes identifier characters with symbols", e.Lexeme)
		}
		t.words[key] = e
	default:
		t.insert(key, e)
	}

	t.entries[key] = e
	return nil
}

func (t *Table) insert(key string, e Entry) {
	n := t.root
	for _, r := range key {
		if n.children == nil {
			n.children = map[rune]*trieNode{}
		}
		child, ok := n.children[r]
		if !ok {
			child = &trieNode{}
			n.children[r] = child
		}
		n = child
	}
	n.entry = &e
}

// Lookup finds the longest registered symbol lexeme starting at offset of src.
// Emoji presentation selectors in src are consumed as part of the match.
func (t *Table) Lookup(src string, offset int) (Match, bool) {
	n := t.root
	var best *Entry
	bestEnd := -1
	for i := offset; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r == VariationSelector16 {
			if i == offset {
				break
			}
			i += size
			if n.entry != nil && n.entry == best {
				bestEnd = i
			}
			continue
		}

		child, ok := n.children[r]
		if !ok {
			break
		}
		n = child
		i += size
		if n.entry != nil {
			best = n.entry
			bestEnd = i
		}
	}

	if best == nil {
		return Match{}, false
	}
	return Match{Entry: *best, Length: bestEnd - offset}, true
}

// LookupWord finds a symbol spelled with identifier characters, such as a keyword
// registered by a configuration overlay. The word must match exactly.
func (t *Table) LookupWord(word string) (Entry, bool) {
	e, ok := t.words[word]
	return e, ok
}

// Entries returns all registered entries ordered by terminal and lexeme.
func (t *Table) Entries() []Entry {
	entries := lo.Values(t.entries)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Terminal != entries[j].Terminal {
			return entries[i].Terminal < entries[j].Terminal
		}
		return entries[i].Lexeme < entries[j].Lexeme
	})
	return entries
}

// Lexemes returns the lexemes registered for terminal.
func (t *Table) Lexemes(terminal Terminal) []string {
	return lo.Map(lo.Filter(t.Entries(), func(e Entry, _ int) bool {
		return e.Terminal == terminal
	}), func(e Entry, _ int) string {
		return e.Lexeme
	})
}

// Extend returns a new table with the entries of overlay added. An overlay lexeme that is
// already registered replaces the old binding.
func (t *Table) Extend(overlay []Entry) (*Table, error) {
	overlayTable, err := New(overlay)
	if err != nil {
		return nil, err
	}

	merged := lo.Assign(map[string]Entry{}, t.entries, overlayTable.entries)
	return New(lo.Values(merged))
}

func normalizeLexeme(lexeme string) string {
	return strings.ReplaceAll(lexeme, string(VariationSelector16), "")
}

func canonicalText(e Entry) (string, error) {
	switch e.Terminal {
	case BooleanLiteral:
		switch e.Text {
		case "true", "false":
			return e.Text, nil
		default:
			return "", fmt.Errorf("boolean literal must be true or false but got %q", e.Text)
		}

	case NumberLiteral:
		v, err := strconv.ParseFloat(e.Text, 64)
		if err != nil {
			return "", fmt.Errorf("invalid number literal %q: %w", e.Text, err)
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil

	default:
		if e.Text != "" && e.Text != e.Terminal.Text() {
			return "", fmt.Errorf("terminal %s is spelled %q, not %q", e.Terminal, e.Terminal.Text(), e.Text)
		}
		return e.Terminal.Text(), nil
	}
}

func IsIdentifierStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func IsIdentifierPart(r rune) bool {
	return IsIdentifierStart(r) || unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc)
}
