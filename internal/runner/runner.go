// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runner invokes external tools and captures everything they print.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"
)

// Command describes one external tool invocation.
type Command struct {
	Path string
	Args []string
	Dir  string            // working directory, inherited if empty
	Env  map[string]string // merged over the current environment
}

// String renders the invocation in a form that can be pasted into a shell.
func (c *Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, s := range append([]string{c.Path}, c.Args...) {
		if s == "" || strings.ContainsAny(s, " \t\n\"'$\\") {
			s = "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// Result is what a finished invocation left behind.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Diagnostics returns the captured error stream, falling back to standard
// output for tools that report errors there.
func (r *Result) Diagnostics() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Runner runs external commands to completion.
//
// Run always returns a non-nil Result. The error is non-nil if the command
// could not be started, was cancelled, or exited with a non-zero status; in
// the last case it is an *ExitError.
type Runner interface {
	Run(ctx context.Context, cmd *Command) (*Result, error)
}

// ExitError reports a non-zero exit status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Exec runs commands as child processes of the current process.
type Exec struct {
	// WaitDelay bounds how long Run waits for output pipes after the child
	// was killed on cancellation.
	WaitDelay time.Duration
}

// New returns a Runner backed by os/exec.
func New() *Exec {
	return &Exec{WaitDelay: 5 * time.Second}
}

func (e *Exec) Run(ctx context.Context, c *Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	if len(c.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), c.Env)
	}
	cmd.WaitDelay = e.WaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err == nil {
		return res, nil
	}

	res.ExitCode = -1
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		if res.ExitCode >= 0 {
			return res, &ExitError{Code: res.ExitCode}
		}
	}
	return res, err
}

// mergeEnv applies override to base. Overridden variables keep their
// position in base; new ones are appended in key order.
func mergeEnv(base []string, override map[string]string) []string {
	out := make([]string, 0, len(base)+len(override))
	done := make(map[string]bool, len(override))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if v, ok := override[k]; ok {
			if done[k] {
				continue
			}
			done[k] = true
			kv = k + "=" + v
		}
		out = append(out, kv)
	}
	for _, k := range slices.Sorted(maps.Keys(override)) {
		if !done[k] {
			out = append(out, k+"="+override[k])
		}
	}
	return out
}
