// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goplus/ilnative/internal/config"
	"github.com/goplus/ilnative/internal/pipeline"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

const usage = "ilnative {path to il assembly}"

// usageError marks failures that are answered with the usage line.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

type rootOptions struct {
	config   string
	output   string
	keepTemp bool
	verbose  bool
}

// NewRootCommand creates the ilnative command.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   usage,
		Short: "ilnative compiles an IL assembly to a native executable",
		Long: `ilnative transpiles an IL assembly to C++ with ILToCpp, then compiles and links
the result against the runtime support libraries into a standalone executable
placed in the output directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{fmt.Errorf("expected 1 argument, got %d", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, opts, args[0])
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	flags := cmd.Flags()
	flags.StringVarP(&opts.config, "config", "c", "", "config file (.shprops or .yaml), defaults to "+config.DefaultFile)
	flags.StringVarP(&opts.output, "output", "o", "", "output directory, defaults to the current directory")
	flags.BoolVar(&opts.keepTemp, "keep-temp", false, "keep the scratch directory after a successful build")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every tool invocation")
	return cmd
}

func runCompile(cmd *cobra.Command, opts *rootOptions, assembly string) error {
	if opts.verbose {
		log.SetOutputLevel(log.Ldebug)
	} else {
		log.SetOutputLevel(log.Linfo)
	}

	if _, err := pipeline.ValidateInput(assembly); err != nil {
		return &usageError{err}
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	log.Debugf("install root %s, compiler %s", cfg.InstallRoot, cfg.Compiler)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, pipeline.Options{
		OutputDir:   opts.output,
		KeepScratch: opts.keepTemp,
	})

	fmt.Fprintf(cmd.OutOrStdout(), "Converting %s to native\n", assembly)
	res, err := p.Run(ctx, assembly)
	if err != nil {
		return err
	}
	if res.ScratchDir != "" {
		log.Infof("scratch kept at %s", res.ScratchDir)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Native Output: %s\n", res.Paths.Native)
	return nil
}

// report prints err the way a user should see it: one line, then the
// captured tool diagnostics, if any.
func report(w io.Writer, err error) {
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(w, "Error:", ue.err)
		fmt.Fprintln(w, usage)
		return
	}
	fmt.Fprintln(w, "Error:", err)
	if c := pipeline.Command(err); c != "" {
		fmt.Fprintln(w, "Command:", c)
	}
	if d := pipeline.Diagnostics(err); d != "" {
		fmt.Fprintln(w, d)
	}
}

// run executes the command with args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		report(stderr, err)
		return 1
	}
	return 0
}

// Execute runs the root command on the process arguments and exits with a
// non-zero status on failure.
func Execute() {
	if code := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}
