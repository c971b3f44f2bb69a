package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/goplus/ilnative/internal/config"
	"github.com/goplus/ilnative/internal/runner"
)

const (
	testLauncher   = "corerun"
	testTranspiler = "ILToCPP.exe"
	testCompiler   = "cc"
)

// fakeRunner records every invocation and plays the transpiler and compiler
// by writing the file named after -out / -o. Hooks may replace either tool.
type fakeRunner struct {
	mu    sync.Mutex
	calls []*runner.Command

	transpile func(c *runner.Command) (*runner.Result, error)
	link      func(c *runner.Command) (*runner.Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, c *runner.Command) (*runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return &runner.Result{ExitCode: -1}, err
	}
	switch c.Path {
	case testLauncher:
		if f.transpile != nil {
			return f.transpile(c)
		}
		return writeArg(c, "-out", "// generated from "+c.Args[len(c.Args)-1]+"\n")
	case testCompiler:
		if f.link != nil {
			return f.link(c)
		}
		return writeArg(c, "-o", "\x7fELF native\n")
	}
	return &runner.Result{ExitCode: 127, Stderr: "unknown tool " + c.Path}, &runner.ExitError{Code: 127}
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRunner) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		out = append(out, c.Path)
	}
	return out
}

// argAfter returns the argument following flag.
func argAfter(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func writeArg(c *runner.Command, flag, content string) (*runner.Result, error) {
	out := argAfter(c.Args, flag)
	if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
		return &runner.Result{ExitCode: 1, Stderr: err.Error()}, &runner.ExitError{Code: 1}
	}
	return &runner.Result{}, nil
}

func failWith(code int, stderr string) func(*runner.Command) (*runner.Result, error) {
	return func(*runner.Command) (*runner.Result, error) {
		return &runner.Result{ExitCode: code, Stderr: stderr}, &runner.ExitError{Code: code}
	}
}

// testConfig returns a config rooted in a temp install with a real shim.
func testConfig(t *testing.T) *config.Context {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default(root)
	cfg.Launcher = testLauncher
	cfg.Transpiler = testTranspiler
	cfg.Compiler = testCompiler
	writeTestFile(t, cfg.Shim, "// stubs\n")
	return cfg
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// testAssembly creates an assembly file named name in a fresh directory.
func testAssembly(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	writeTestFile(t, path, "MZ fake assembly")
	return path
}
