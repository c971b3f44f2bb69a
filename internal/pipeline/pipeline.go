// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline turns an IL assembly into a native executable in two
// sequential stages: the assembly is transpiled to intermediate source, then
// that source is compiled and linked against the runtime support libraries.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goplus/ilnative/internal/config"
	"github.com/goplus/ilnative/internal/env"
	"github.com/goplus/ilnative/internal/runner"
	"github.com/qiniu/x/log"
)

// State is the position of a run in Start → Validated → Transpiled →
// Linked → Done. Failed is reachable from every state before Done.
type State int

const (
	StateStart State = iota
	StateValidated
	StateTranspiled
	StateLinked
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateValidated:
		return "validated"
	case StateTranspiled:
		return "transpiled"
	case StateLinked:
		return "linked"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options configures a Pipeline.
type Options struct {
	// OutputDir receives the native artifact. Defaults to the current
	// working directory.
	OutputDir string

	// ScratchBase is where per-run scratch directories are created.
	// Defaults to the system temp directory.
	ScratchBase string

	// RunID names the scratch directory. A fresh id is generated for every
	// run if empty; a fixed id must not be shared by concurrent runs.
	RunID string

	// KeepScratch keeps the scratch directory after a successful run.
	// It is always kept after a failure.
	KeepScratch bool

	// Runner starts the external tools. Defaults to runner.New().
	Runner runner.Runner
}

// Pipeline compiles IL assemblies to native executables.
type Pipeline struct {
	cfg        *config.Context
	opts       Options
	transpiler *Transpiler
	linker     *Linker
}

// New returns a Pipeline bound to a private copy of cfg.
func New(cfg *config.Context, opts Options) *Pipeline {
	if opts.Runner == nil {
		opts.Runner = runner.New()
	}
	cfg = cfg.Clone()
	return &Pipeline{
		cfg:        cfg,
		opts:       opts,
		transpiler: NewTranspiler(cfg, opts.Runner),
		linker:     NewLinker(cfg, opts.Runner),
	}
}

// Result describes a finished run, successful or not.
type Result struct {
	RunID      string
	State      State
	Failed     Stage // set when State is StateFailed
	ScratchDir string
	Paths      Paths
}

// Run compiles the assembly at path. On success the returned Result's
// Paths.Native is the executable. Any failure stops the run at once and is
// returned as a *PipelineError; nothing is retried.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	res := &Result{RunID: p.opts.RunID, State: StateStart}
	if res.RunID == "" {
		res.RunID = env.RunID()
	}
	fail := func(stage Stage, err error) (*Result, error) {
		res.State = StateFailed
		res.Failed = stage
		return res, &PipelineError{Stage: stage, Err: err}
	}

	assembly, err := ValidateInput(path)
	if err != nil {
		return fail(StageValidate, err)
	}
	res.State = StateValidated

	outputDir, err := p.outputDir()
	if err != nil {
		return fail(StageResolve, err)
	}
	scratch, err := env.ScratchDir(p.opts.ScratchBase, res.RunID)
	if err != nil {
		return fail(StageResolve, fmt.Errorf("create scratch dir: %w", err))
	}
	res.ScratchDir = scratch
	log.Debugf("run %s: scratch %s, output %s", res.RunID, scratch, outputDir)

	res.Paths, err = ResolvePaths(assembly, scratch, outputDir, p.cfg.IntermediateExt, p.cfg.AssemblyExts)
	if err != nil {
		p.cleanup(scratch)
		res.ScratchDir = ""
		return fail(StageResolve, err)
	}

	if _, err := p.transpiler.Transpile(ctx, res.Paths.Assembly, res.Paths.Intermediate); err != nil {
		log.Infof("run %s: transpile failed, scratch kept at %s", res.RunID, scratch)
		return fail(StageTranspile, err)
	}
	res.State = StateTranspiled

	if _, err := p.linker.Link(ctx, res.Paths.Intermediate, res.Paths.Native, scratch); err != nil {
		log.Infof("run %s: link failed, scratch kept at %s", res.RunID, scratch)
		return fail(StageLink, err)
	}
	res.State = StateLinked

	if !p.opts.KeepScratch {
		p.cleanup(scratch)
		res.ScratchDir = ""
	}
	res.State = StateDone
	return res, nil
}

func (p *Pipeline) outputDir() (string, error) {
	dir := p.opts.OutputDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("output directory %s is not a directory", abs)
	}
	return abs, nil
}

func (p *Pipeline) cleanup(scratch string) {
	if err := env.RemoveScratch(scratch); err != nil {
		log.Warnf("remove scratch dir %s: %v", scratch, err)
	}
}
