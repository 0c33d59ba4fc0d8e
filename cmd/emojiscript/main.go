package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/jessevdk/go-flags"
	"github.com/karupanerura/emojiscript/internal/ast"
	"github.com/karupanerura/emojiscript/internal/codegen"
	"github.com/karupanerura/emojiscript/internal/defaults"
	"github.com/karupanerura/emojiscript/internal/evaluator"
	"github.com/karupanerura/emojiscript/internal/lexer"
	"github.com/karupanerura/emojiscript/internal/parser"
	"github.com/karupanerura/emojiscript/internal/server"
	"github.com/karupanerura/emojiscript/internal/symbols"
	"github.com/karupanerura/emojiscript/internal/types"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"
)

const (
	emitRun     = "run"
	emitJS      = "js"
	emitAST     = "ast"
	emitASTYAML = "ast-yaml"
	emitTokens  = "tokens"
)

type Option struct {
	Emit        string        `short:"e" long:"emit" description:"[OPTIONAL] What to output" choice:"run" choice:"js" choice:"ast" choice:"ast-yaml" choice:"tokens" default:"run"`
	Symbols     string        `short:"s" long:"symbols" description:"[OPTIONAL] Symbol table overlay (YAML or JSON)" required:"false"`
	Timeout     time.Duration `short:"t" long:"timeout" description:"[OPTIONAL] Execution timeout (0 means no limit)" default:"0s"`
	Debug       bool          `long:"debug" description:"[OPTIONAL] Trace parser decisions"`
	ListSymbols bool          `long:"list-symbols" description:"[OPTIONAL] Print the symbol table and exit"`
	REPL        bool          `long:"repl" description:"[OPTIONAL] Start an interactive session"`
	Listen      string        `short:"l" long:"listen" description:"[OPTIONAL] Listen host and port to serve the HTTP API" required:"false"`
	Args        struct {
		Files []string `positional-arg-name:"FILE"`
	} `positional-args:"yes"`
}

// unit is one source file going through the pipeline.
type unit struct {
	path    string
	source  string
	tokens  []lexer.Token
	program *ast.Program
	code    string
}

type unitError struct {
	unit *unit
	err  error
}

func (e *unitError) Error() string {
	return fmt.Sprintf("%s: %v", e.unit.path, e.err)
}

func (e *unitError) Unwrap() error {
	return e.err
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opt Option
	flagParser := flags.NewParser(&opt, flags.Default)
	flagParser.Usage = "[OPTIONS] FILE..."
	_, err := flagParser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		} else {
			flagParser.WriteHelp(os.Stdout)
			return 1
		}
	}
	if opt.Listen != "" && (opt.REPL || len(opt.Args.Files) != 0) {
		flagParser.WriteHelp(os.Stdout)
		return 1
	}

	loader := func() (*symbols.Table, error) {
		return loadSymbolTable(opt.Symbols)
	}
	table, err := loader()
	if err != nil {
		printError(os.Stderr, err, "")
		return 1
	}

	switch {
	case opt.ListSymbols:
		if err = dumpJSON(os.Stdout, table.Entries()); err != nil {
			log.Printf("failed to dump symbol table: %v", err)
			return 1
		}
		return 0

	case opt.Listen != "":
		// server mode
		if err = serve(opt.Listen, loader, opt.Timeout); err != nil {
			log.Printf("failed to serve: %v", err)
			return 1
		}
		return 0

	case opt.REPL:
		return repl(table, &opt)

	case len(opt.Args.Files) == 0:
		flagParser.WriteHelp(os.Stdout)
		return 1
	}

	units, err := compile(table, opt.Args.Files, &opt)
	if err != nil {
		var ue *unitError
		if errors.As(err, &ue) {
			fmt.Fprintf(os.Stderr, "%s:\n", ue.unit.path)
			printError(os.Stderr, ue.err, ue.unit.source)
		} else {
			log.Printf("failed to compile: %v", err)
		}
		return 1
	}

	for _, u := range units {
		if err := emit(u, &opt); err != nil {
			printError(os.Stderr, err, u.source)
			return 1
		}
	}
	return 0
}

func loadSymbolTable(filePath string) (*symbols.Table, error) {
	if filePath == "" {
		return defaults.DefaultSymbolTable, nil
	}

	config, err := symbols.LoadConfigFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("symbols.LoadConfigFile: %w", err)
	}
	table, err := defaults.DefaultSymbolTable.ExtendWithConfig(config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return table, nil
}

// compile runs the front end over every file concurrently. The result keeps the order of
// paths.
func compile(table *symbols.Table, paths []string, opt *Option) ([]*unit, error) {
	parseOpts := []parser.Option{parser.WithDebugOutput(opt.Debug)}

	units := make([]*unit, len(paths))
	eg := errgroup.Group{}
	for i, path := range paths {
		u := &unit{path: path}
		units[i] = u
		eg.Go(func() error {
			b, err := os.ReadFile(u.path)
			if err != nil {
				return fmt.Errorf("os.ReadFile(%q): %w", u.path, err)
			}
			u.source = string(b)

			u.tokens, err = lexer.Tokenize(table, u.source)
			if err != nil {
				return &unitError{unit: u, err: err}
			}
			if opt.Emit == emitTokens {
				return nil
			}

			u.program, err = parser.Parse(u.source, u.tokens, parseOpts...)
			if err != nil {
				return &unitError{unit: u, err: err}
			}
			if opt.Emit == emitAST || opt.Emit == emitASTYAML {
				return nil
			}

			u.code, err = codegen.Generate(u.program)
			if err != nil {
				return &unitError{unit: u, err: err}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

func emit(u *unit, opt *Option) error {
	switch opt.Emit {
	case emitTokens:
		return dumpJSON(os.Stdout, u.tokens)

	case emitAST:
		return dumpJSON(os.Stdout, u.program)

	case emitASTYAML:
		b, err := json.Marshal(u.program)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		y, err := yaml.JSONToYAML(b)
		if err != nil {
			return fmt.Errorf("yaml.JSONToYAML: %w", err)
		}
		_, err = os.Stdout.Write(y)
		return err

	case emitJS:
		_, err := fmt.Println(u.code)
		return err

	case emitRun:
		fmt.Printf("\nコード生成結果:\n%s\n-----------------\n実行結果:\n", u.code)
		e := evaluator.New(evaluator.WithStdout(os.Stdout), evaluator.WithTimeout(opt.Timeout))
		return e.Run(context.Background(), u.code)

	default:
		return fmt.Errorf("unknown emit target: %s", opt.Emit)
	}
}

// printError writes a caret diagnostic when the error points into source, followed by the
// exception payload.
func printError(w io.Writer, err error, source string) {
	var exception types.Exception
	if !errors.As(err, &exception) {
		log.Printf("error: %v", err)
		return
	}

	if _, ok := types.SpanOf(err); ok {
		fmt.Fprintln(w, types.RenderDiagnostic(err, source))
	} else {
		fmt.Fprintln(w, exception.Error())
	}
	if err := dumpJSON(w, exception.Exception()); err != nil {
		log.Printf("failed to dump error as JSON: %v", err)
	}
}

func serve(listen string, loader func() (*symbols.Table, error), timeout time.Duration) error {
	handler, err := server.NewHTTPHandler(loader, timeout)
	if err != nil {
		return err
	}

	srv := http.Server{
		Handler: handler,
		Addr:    listen,
	}

	log.Printf("Listen HTTP on %s", listen)
	if err := srv.ListenAndServe(); errors.Is(err, http.ErrServerClosed) {
		return nil
	} else if err != nil {
		return err
	}
	return nil
}

func dumpJSON(w io.Writer, v any) error {
	opts := []json.EncodeOptionFunc{json.DisableHTMLEscape()}
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		if isatty.IsTerminal(f.Fd()) {
			opts = append(opts, json.Colorize(json.DefaultColorScheme))
		}
	}

	b, err := json.MarshalIndentWithOption(v, "", "\t", opts...)
	if err != nil {
		return fmt.Errorf("json.MarshalIndentWithOption: %w", err)
	}

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
