// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config resolves the tool paths, flags and support libraries used by
// a native compilation run.
package config

import (
	"errors"
	"maps"
	"path/filepath"
	"slices"
)

// DefaultInstallRoot is where the native compilation package is installed.
const DefaultInstallRoot = "/usr/share/dotnet-compile-native"

// Context is the resolved configuration of one pipeline run. It is built once
// at startup and must not be modified after it is handed to the pipeline.
type Context struct {
	InstallRoot string

	// Transpile stage.
	Launcher   string   // runtime launcher hosting the transpiler
	Transpiler string   // IL-to-source transpiler assembly
	References []string // reference assemblies, globs allowed
	Backend    string   // backend selection flag

	// Native link stage.
	Compiler    string
	CFlags      []string
	IncludeDirs []string
	Sources     []string // translation units built into every executable
	Libraries   []string // support-library archives
	Shim        string   // stub source staged next to the build

	// Env is merged over the process environment of both tools.
	Env map[string]string

	IntermediateExt string
	AssemblyExts    []string
}

// Default returns the configuration of a standard installation at root.
func Default(root string) *Context {
	c := &Context{
		Backend:         "-llvm",
		Compiler:        "clang-3.5",
		CFlags:          []string{"-g", "-lstdc++", "-lrt", "-Wno-invalid-offsetof"},
		IntermediateExt: ".cpp",
		AssemblyExts:    []string{".dll", ".exe"},
	}
	c.setRoot(root)
	return c
}

// setRoot derives every install-relative path from root.
func (c *Context) setRoot(root string) {
	native := filepath.Join(root, "native")
	inc := filepath.Join(native, "inc")

	c.InstallRoot = root
	c.Launcher = filepath.Join(root, "coreclr", "corerun")
	c.Transpiler = filepath.Join(native, "ILToCpp", "ILToCPP.exe")
	c.References = []string{
		filepath.Join(native, "lib", "Unix", "*.dll"),
		filepath.Join(native, "lib", "*.dll"),
	}
	c.IncludeDirs = []string{inc, filepath.Join(inc, "GC"), filepath.Join(inc, "GC", "env")}
	c.Sources = []string{filepath.Join(inc, "lxstubs.cpp"), filepath.Join(inc, "main.cpp")}
	c.Libraries = []string{
		filepath.Join(native, "sharedlibs", "libSystem.Native.a"),
		filepath.Join(native, "sharedlibs", "libclrgc.a"),
	}
	c.Shim = filepath.Join(root, "inc", "stubs.cpp")
	c.Env = map[string]string{"CORE_ROOT": filepath.Join(root, "coreclr")}
}

// Clone returns a deep copy of c.
func (c *Context) Clone() *Context {
	n := *c
	n.References = slices.Clone(c.References)
	n.CFlags = slices.Clone(c.CFlags)
	n.IncludeDirs = slices.Clone(c.IncludeDirs)
	n.Sources = slices.Clone(c.Sources)
	n.Libraries = slices.Clone(c.Libraries)
	n.AssemblyExts = slices.Clone(c.AssemblyExts)
	n.Env = maps.Clone(c.Env)
	return &n
}

// Validate reports whether c carries everything a run needs.
func (c *Context) Validate() error {
	var errs []error
	if c.Launcher == "" {
		errs = append(errs, errors.New("runtime launcher is not set"))
	}
	if c.Transpiler == "" {
		errs = append(errs, errors.New("transpiler is not set"))
	}
	if c.Compiler == "" {
		errs = append(errs, errors.New("native compiler is not set"))
	}
	if c.IntermediateExt == "" {
		errs = append(errs, errors.New("intermediate extension is not set"))
	}
	return errors.Join(errs...)
}
