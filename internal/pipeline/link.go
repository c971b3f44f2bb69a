// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goplus/ilnative/internal/config"
	"github.com/goplus/ilnative/internal/runner"
	"github.com/qiniu/x/log"
)

// Linker compiles an intermediate source file against the support libraries
// into a native executable.
type Linker struct {
	cfg    *config.Context
	runner runner.Runner
}

// NewLinker returns a Linker using the toolchain named in cfg.
func NewLinker(cfg *config.Context, r runner.Runner) *Linker {
	return &Linker{cfg: cfg, runner: r}
}

// shimDir is the subdirectory of the run's scratch dir owned by the link
// stage. Nothing else writes there, so the staged shim cannot clash with the
// intermediate source.
const shimDir = "shim"

// StageDir returns where the shim is staged for a run using workDir.
func StageDir(workDir string) string {
	return filepath.Join(workDir, shimDir)
}

// Command returns the compiler invocation building source into out. The
// shim staging dir below workDir becomes the working directory and is on the
// include path.
func (l *Linker) Command(source, out, workDir string) *runner.Command {
	stage := StageDir(workDir)
	args := make([]string, 0, len(l.cfg.CFlags)+len(l.cfg.IncludeDirs)+len(l.cfg.Sources)+len(l.cfg.Libraries)+5)
	args = append(args, l.cfg.CFlags...)
	for _, dir := range l.cfg.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	args = append(args, "-I"+stage)
	args = append(args, l.cfg.Sources...)
	args = append(args, source)
	args = append(args, l.cfg.Libraries...)
	args = append(args, "-o", out)
	return &runner.Command{Path: l.cfg.Compiler, Args: args, Dir: stage, Env: l.cfg.Env}
}

// Link removes any stale file at out, stages the shim below workDir, runs the
// compiler and marks the result owner-executable.
func (l *Linker) Link(ctx context.Context, source, out, workDir string) (string, error) {
	cmd := l.Command(source, out, workDir)
	fail := func(err error) (string, error) {
		return "", &NativeLinkError{ToolError{Command: cmd.String(), Err: err}}
	}

	if err := removeStale(out); err != nil {
		return fail(err)
	}
	if err := os.MkdirAll(cmd.Dir, 0o700); err != nil {
		return fail(fmt.Errorf("create shim dir: %w", err))
	}
	if l.cfg.Shim != "" {
		dst := filepath.Join(cmd.Dir, filepath.Base(l.cfg.Shim))
		if err := copyFile(dst, l.cfg.Shim); err != nil {
			return fail(fmt.Errorf("stage shim: %w", err))
		}
	}

	log.Debug("link:", cmd)
	res, err := l.runner.Run(ctx, cmd)
	if err != nil {
		return "", &NativeLinkError{ToolError{
			Command:     cmd.String(),
			ExitCode:    res.ExitCode,
			Diagnostics: res.Diagnostics(),
			Err:         err,
		}}
	}
	info, err := producedFile(out)
	if err != nil {
		return "", &NativeLinkError{ToolError{
			Command:     cmd.String(),
			Diagnostics: res.Diagnostics(),
			Err:         fmt.Errorf("no native artifact: %w", err),
		}}
	}
	if err := os.Chmod(out, info.Mode().Perm()|0o700); err != nil {
		return fail(err)
	}
	if res.Stdout != "" {
		log.Debugf("compiler output (%v):\n%s", res.Duration, res.Stdout)
	}
	return out, nil
}

func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, in); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
