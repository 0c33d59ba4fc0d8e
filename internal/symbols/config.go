package symbols

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/karupanerura/emojiscript/internal/types"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// Config is a symbol overlay, typically written in YAML:
//
//	symbols:
//	  Print: ["🖨️"]
//	  Function: ["λ"]
//	literals:
//	  "🍩": "0"
type Config struct {
	// Symbols maps a terminal name to additional lexemes.
	Symbols map[string][]string `json:"symbols" mapstructure:"symbols"`
	// Literals maps a lexeme to the literal it stands for: true, false, null or a number.
	Literals map[string]string `json:"literals" mapstructure:"literals"`
}

func (c *Config) Entries() ([]Entry, error) {
	var entries []Entry
	names := lo.Keys(c.Symbols)
	sort.Strings(names)
	for _, name := range names {
		terminal, ok := ParseTerminal(name)
		if !ok {
			return nil, fmt.Errorf("symbols: unknown terminal %q", name)
		}
		for _, lexeme := range c.Symbols[name] {
			entries = append(entries, Entry{Lexeme: lexeme, Terminal: terminal})
		}
	}

	lexemes := lo.Keys(c.Literals)
	sort.Strings(lexemes)
	for _, lexeme := range lexemes {
		text := c.Literals[lexeme]
		var terminal Terminal
		switch text {
		case "true", "false":
			terminal = BooleanLiteral
		case "null":
			terminal = NullLiteral
		default:
			if _, err := strconv.ParseFloat(text, 64); err != nil {
				return nil, fmt.Errorf("literals: %q is not a boolean, null or number", text)
			}
			terminal = NumberLiteral
		}
		entries = append(entries, Entry{Lexeme: lexeme, Terminal: terminal, Text: text})
	}
	return entries, nil
}

type ConfigFormat string

const (
	JSONConfigFormat ConfigFormat = "json"
	YAMLConfigFormat ConfigFormat = "yaml"
)

func LoadConfig(r io.Reader, format ConfigFormat) (*Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	switch format {
	case JSONConfigFormat:
		// ok
	case YAMLConfigFormat:
		b, err = yaml.YAMLToJSON(b)
		if err != nil {
			return nil, &types.Error{Tag: types.ConfigErrorTag, Err: fmt.Errorf("yaml.YAMLToJSON: %w", err)}
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	var raw map[string]any
	decoder := json.NewDecoder(bytes.NewReader(b))
	if err := decoder.Decode(&raw); err != nil {
		return nil, &types.Error{Tag: types.ConfigErrorTag, Err: fmt.Errorf("json.Decode: %w", err)}
	}

	var config Config
	mapDecoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &config,
	})
	if err != nil {
		return nil, fmt.Errorf("mapstructure.NewDecoder: %w", err)
	}
	if err := mapDecoder.Decode(raw); err != nil {
		return nil, &types.Error{Tag: types.ConfigErrorTag, Err: fmt.Errorf("mapstructure.Decode: %w", err)}
	}
	return &config, nil
}

func LoadConfigFile(filePath string) (*Config, error) {
	var format ConfigFormat
	switch filepath.Ext(filePath) {
	case ".json":
		format = JSONConfigFormat
	case ".yaml", ".yml":
		format = YAMLConfigFormat
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%q): %w", filePath, err)
	}
	defer f.Close()

	config, err := LoadConfig(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return config, nil
}

// ExtendWithConfig applies the overlay described by config to t.
func (t *Table) ExtendWithConfig(config *Config) (*Table, error) {
	entries, err := config.Entries()
	if err != nil {
		return nil, &types.Error{Tag: types.ConfigErrorTag, Err: err}
	}
	return t.Extend(entries)
}
