// Package evaluator executes generated JavaScript.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/karupanerura/emojiscript/internal/types"
)

type Option func(*Evaluator)

func WithStdout(w io.Writer) Option {
	return func(e *Evaluator) {
		e.stdout = w
	}
}

// WithTimeout bounds the wall time of a single run. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		e.timeout = d
	}
}

type Evaluator struct {
	stdout  io.Writer
	timeout time.Duration
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{stdout: os.Stdout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes code in a fresh runtime.
func (e *Evaluator) Run(ctx context.Context, code string) error {
	_, err := e.NewSession().Run(ctx, code)
	return err
}

// Session is a runtime whose globals survive between runs.
type Session struct {
	evaluator *Evaluator
	mu        sync.Mutex
	vm        *goja.Runtime
}

func (e *Evaluator) NewSession() *Session {
	vm := goja.New()
	console := vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		texts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			texts[i] = format(arg, true)
		}
		fmt.Fprintln(e.stdout, strings.Join(texts, " "))
		return goja.Undefined()
	})
	_ = vm.Set("console", console)

	return &Session{evaluator: e, vm: vm}
}

// Run executes code and returns the formatted completion value, or "" for undefined.
func (s *Session) Run(ctx context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.evaluator.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.evaluator.timeout)
		defer cancel()
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			s.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	value, err := s.vm.RunString(code)
	close(done)
	<-stopped
	s.vm.ClearInterrupt()
	if err != nil {
		return "", wrapError(err)
	}
	if value == nil || goja.IsUndefined(value) {
		return "", nil
	}
	return format(value, false), nil
}

func wrapError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return &types.Error{
			Tag: types.ResourceLimitErrorTag,
			Err: fmt.Errorf("execution interrupted: %w", err),
		}
	}

	extra := map[string]any{}
	var exception *goja.Exception
	if errors.As(err, &exception) {
		extra["stack"] = exception.String()
	}
	return &types.Error{
		Tag:   types.EvalErrorTag,
		Err:   err,
		Extra: extra,
	}
}
