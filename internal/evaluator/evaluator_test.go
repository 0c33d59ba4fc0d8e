package evaluator_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/emojiscript/internal/codegen"
	"github.com/karupanerura/emojiscript/internal/defaults"
	"github.com/karupanerura/emojiscript/internal/evaluator"
	"github.com/karupanerura/emojiscript/internal/parser"
	"github.com/karupanerura/emojiscript/internal/types"
)

func errorTag(err error) types.ErrorTag {
	var e *types.Error
	if errors.As(err, &e) {
		return e.Tag
	}
	return ""
}

func TestRun(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		code        string
		expected    string
		expectedTag types.ErrorTag
	}{
		{
			code:     `console.log(1 + 2);`,
			expected: "3\n",
		},
		{
			code:     `console.log(0.1 + 0.2);`,
			expected: "0.30000000000000004\n",
		},
		{
			code:     `console.log("a", [1, "b"], {x: 1}, [], {});`,
			expected: "a [ 1, 'b' ] { x: 1 } [] {}\n",
		},
		{
			code:     `console.log(null, undefined, true);`,
			expected: "null undefined true\n",
		},
		{
			code:     `function f() {} console.log(f);`,
			expected: "[Function: f]\n",
		},
		{
			code:     `console.log([[[[1]]]]);`,
			expected: "[ [ [ [Array] ] ] ]\n",
		},
		{
			code:     `console.log();`,
			expected: "\n",
		},
		{
			code:        `throw new Error("boom");`,
			expectedTag: types.EvalErrorTag,
		},
		{
			code:        `undefinedVariable.x;`,
			expectedTag: types.EvalErrorTag,
		},
		{
			code:        `var = ;`,
			expectedTag: types.EvalErrorTag,
		},
		{
			code:        `while (true) {}`,
			expectedTag: types.ResourceLimitErrorTag,
		},
	} {
		tt := tt
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			var stdout bytes.Buffer
			e := evaluator.New(evaluator.WithStdout(&stdout), evaluator.WithTimeout(100*time.Millisecond))
			err := e.Run(context.Background(), tt.code)
			if err != nil {
				if tt.expectedTag != "" {
					if tag := errorTag(err); tag != tt.expectedTag {
						t.Errorf("expect to %s but got %s (%v)", tt.expectedTag, tag, err)
					}
					return
				}
				t.Fatal(err)
			}
			if tt.expectedTag != "" {
				t.Fatalf("should be %s", tt.expectedTag)
			}

			if diff := cmp.Diff(tt.expected, stdout.String()); diff != "" {
				t.Errorf("(-expected, +actual)\n%s", diff)
			}
		})
	}
}

func TestRunCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := evaluator.New().Run(ctx, `for (;;) {}`)
	if tag := errorTag(err); tag != types.ResourceLimitErrorTag {
		t.Errorf("expect to %s but got %s (%v)", types.ResourceLimitErrorTag, tag, err)
	}
}

func TestRunGeneratedCode(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		source   string
		expected string
	}{
		{
			source:   `📦 x ⬅️ 1🔚 📦 y ⬅️ 2🔚 📢 x ➕ y🔚`,
			expected: "3\n",
		},
		{
			source:   `🔧 fib🌛n🌜 📖 🤔 🌛n ◀️ 2🌜 🔙 n🔚 🔙 fib🌛n ➖ 1🌜 ➕ fib🌛n ➖ 2🌜🔚 📕 📢 fib🌛🔟🌜🔚`,
			expected: "55\n",
		},
		{
			source:   `🔂 🌛📌 i ⬅️ 0🔚 i ◀️ 5🔚 i ➕⬅️ 1🌜 📖 🤔 🌛i 🟰 3🌜 🛑🔚 🤔 🌛i ✂️ 2 🟰 1🌜 ⏭️🔚 📢 i🔚 📕`,
			expected: "0\n2\n",
		},
		{
			source:   `📦 s ⬅️ "emoji"🔚 📢 s 👉 length 🔸 📥s 🔸 💯📤🔚`,
			expected: "5 [ 'emoji', 100 ]\n",
		},
		{
			source:   `📦 n ⬅️ 0🔚 🔁 🌛n ◀️ 3🌜 n ➕⬅️ 1🔚 📢 n 🤝 🚫 👎🔚`,
			expected: "true\n",
		},
	} {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			program, err := parser.ParseSource(defaults.DefaultSymbolTable, tt.source)
			if err != nil {
				t.Fatal(types.RenderDiagnostic(err, tt.source))
			}
			code, err := codegen.Generate(program)
			if err != nil {
				t.Fatal(err)
			}

			var stdout bytes.Buffer
			if err := evaluator.New(evaluator.WithStdout(&stdout)).Run(context.Background(), code); err != nil {
				t.Fatalf("%v\n%s", err, code)
			}
			if diff := cmp.Diff(tt.expected, stdout.String()); diff != "" {
				t.Errorf("(-expected, +actual)\n%s\n%s", diff, code)
			}
		})
	}
}

func TestSession(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	session := evaluator.New(evaluator.WithStdout(&stdout)).NewSession()

	for _, tt := range []struct {
		code     string
		expected string
	}{
		{code: `var a = 1;`, expected: ""},
		{code: `a + 1;`, expected: "2"},
		{code: `"x" + a;`, expected: "'x1'"},
		{code: `console.log(a);`, expected: ""},
	} {
		result, err := session.Run(context.Background(), tt.code)
		if err != nil {
			t.Fatal(err)
		}
		if result != tt.expected {
			t.Errorf("%s: expect to %q but got %q", tt.code, tt.expected, result)
		}
	}

	if stdout.String() != "1\n" {
		t.Errorf("unexpected output: %q", stdout.String())
	}
}
