package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/karupanerura/emojiscript/internal/codegen"
	"github.com/karupanerura/emojiscript/internal/evaluator"
	"github.com/karupanerura/emojiscript/internal/parser"
	"github.com/karupanerura/emojiscript/internal/symbols"
	"github.com/peterh/liner"
)

const (
	promptMain  = "🙂 "
	promptCont  = "…  "
	historyFile = ".emojiscript_history"
)

func repl(table *symbols.Table, opt *Option) int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	session := evaluator.New(evaluator.WithStdout(os.Stdout), evaluator.WithTimeout(opt.Timeout)).NewSession()
	for {
		source, ok := readStatements(ln, table)
		if !ok {
			fmt.Println()
			return 0
		}
		if strings.TrimSpace(source) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(source, "\n", " "))

		program, err := parser.ParseSource(table, source, parser.WithDebugOutput(opt.Debug))
		if err != nil {
			printError(os.Stderr, err, source)
			continue
		}
		code, err := codegen.Generate(program)
		if err != nil {
			printError(os.Stderr, err, source)
			continue
		}
		if opt.Debug {
			fmt.Fprintln(os.Stderr, code)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		result, err := session.Run(ctx, code)
		stop()
		if err != nil {
			printError(os.Stderr, err, source)
			continue
		}
		if result != "" {
			fmt.Println(result)
		}
	}
}

// readStatements reads lines until they form a complete program or a definite error.
func readStatements(ln *liner.State, table *symbols.Table) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() != 0 {
			prompt = promptCont
		}

		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() != 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		source := b.String()
		if _, err := parser.ParseSource(table, source); parser.IsIncomplete(err) {
			continue
		}
		return source, true
	}
}
