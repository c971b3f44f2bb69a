// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goplus/ilnative/internal/config"
	"github.com/goplus/ilnative/internal/runner"
	"github.com/qiniu/x/log"
)

// Transpiler runs the IL-to-source transpiler through the runtime launcher.
type Transpiler struct {
	cfg    *config.Context
	runner runner.Runner
}

// NewTranspiler returns a Transpiler using the tools named in cfg.
func NewTranspiler(cfg *config.Context, r runner.Runner) *Transpiler {
	return &Transpiler{cfg: cfg, runner: r}
}

// Command returns the launcher invocation that transpiles assembly into out.
func (t *Transpiler) Command(assembly, out string) *runner.Command {
	args := []string{t.cfg.Transpiler}
	args = append(args, referenceArgs(t.cfg.References)...)
	if t.cfg.Backend != "" {
		args = append(args, t.cfg.Backend)
	}
	args = append(args, "-out", out, assembly)
	return &runner.Command{Path: t.cfg.Launcher, Args: args, Env: t.cfg.Env}
}

// Transpile removes any stale file at out, runs the transpiler and returns
// out once the tool exited cleanly and the file exists.
func (t *Transpiler) Transpile(ctx context.Context, assembly, out string) (string, error) {
	cmd := t.Command(assembly, out)
	if err := removeStale(out); err != nil {
		return "", &TranspileError{ToolError{Command: cmd.String(), Err: err}}
	}

	log.Debug("transpile:", cmd)
	res, err := t.runner.Run(ctx, cmd)
	if err != nil {
		return "", &TranspileError{ToolError{
			Command:     cmd.String(),
			ExitCode:    res.ExitCode,
			Diagnostics: res.Diagnostics(),
			Err:         err,
		}}
	}
	if _, err := producedFile(out); err != nil {
		return "", &TranspileError{ToolError{
			Command:     cmd.String(),
			Diagnostics: res.Diagnostics(),
			Err:         fmt.Errorf("no intermediate artifact: %w", err),
		}}
	}
	if res.Stdout != "" {
		log.Debugf("transpiler output (%v):\n%s", res.Duration, res.Stdout)
	}
	return out, nil
}

// referenceArgs expands each pattern the way a shell would: every match
// becomes its own -r pair and a pattern without matches is passed as is.
func referenceArgs(patterns []string) []string {
	var args []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			matches = []string{pattern}
		}
		for _, m := range matches {
			args = append(args, "-r", m)
		}
	}
	return args
}

// removeStale deletes the file at path if there is one. A directory is never
// removed.
func removeStale(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove stale artifact: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("remove stale artifact: %s is a directory", path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale artifact: %w", err)
	}
	return nil
}

// producedFile checks that a tool left a regular file at path.
func producedFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	return info, nil
}
