// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidInputError reports a source assembly path that is missing, not a
// regular file, or not readable.
type InvalidInputError struct {
	Path string
	Err  error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid il assembly path %q: %v", e.Path, e.Err)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

// ToolError carries everything needed to reproduce a failed external tool
// invocation by hand.
type ToolError struct {
	Command     string // shell-quoted command line
	ExitCode    int    // -1 if the tool did not exit normally
	Diagnostics string // captured error output
	Err         error
}

func (e *ToolError) describe(what string) string {
	var b strings.Builder
	b.WriteString(what)
	switch {
	case e.Err != nil:
		fmt.Fprintf(&b, ": %v", e.Err)
	case e.ExitCode != 0:
		fmt.Fprintf(&b, ": exit status %d", e.ExitCode)
	}
	return b.String()
}

// TranspileError reports a transpiler failure or a missing intermediate
// artifact.
type TranspileError struct {
	ToolError
}

func (e *TranspileError) Error() string { return e.describe("transpile failed") }

func (e *TranspileError) Unwrap() error { return e.Err }

// NativeLinkError reports a native toolchain failure or a missing native
// artifact.
type NativeLinkError struct {
	ToolError
}

func (e *NativeLinkError) Error() string { return e.describe("native link failed") }

func (e *NativeLinkError) Unwrap() error { return e.Err }

// Stage identifies a step of the pipeline.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageResolve   Stage = "resolve"
	StageTranspile Stage = "transpile"
	StageLink      Stage = "link"
)

// PipelineError is returned by Pipeline.Run. Err is the failing stage's
// error, one of *InvalidInputError, *TranspileError or *NativeLinkError for
// the validate, transpile and link stages.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Diagnostics returns the captured tool output carried by err, if any.
func Diagnostics(err error) string {
	var te *TranspileError
	if errors.As(err, &te) {
		return te.Diagnostics
	}
	var le *NativeLinkError
	if errors.As(err, &le) {
		return le.Diagnostics
	}
	return ""
}

// Command returns the command line of the failed tool invocation in err, if
// any.
func Command(err error) string {
	var te *TranspileError
	if errors.As(err, &te) {
		return te.Command
	}
	var le *NativeLinkError
	if errors.As(err, &le) {
		return le.Command
	}
	return ""
}
