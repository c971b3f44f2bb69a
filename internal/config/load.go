// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the props file shipped with a standard installation.
var DefaultFile = filepath.Join(DefaultInstallRoot, "config", "config.shprops")

// Environment overrides, applied after the config file.
const (
	EnvInstallRoot = "ILNATIVE_INSTALL_ROOT"
	EnvCompiler    = "ILNATIVE_CC"
)

// overlay holds the settings a config file may provide. Empty fields keep
// the value derived from the install root.
type overlay struct {
	InstallRoot string            `yaml:"install_root"`
	Launcher    string            `yaml:"launcher"`
	Transpiler  string            `yaml:"transpiler"`
	References  []string          `yaml:"references"`
	Backend     string            `yaml:"backend"`
	Compiler    string            `yaml:"compiler"`
	CFlags      []string          `yaml:"cflags"`
	IncludeDirs []string          `yaml:"include_dirs"`
	Sources     []string          `yaml:"sources"`
	Libraries   []string          `yaml:"libraries"`
	Shim        string            `yaml:"shim"`
	Env         map[string]string `yaml:"env"`
}

// Load resolves the configuration context. If path is empty, DefaultFile is
// read when it exists and the built-in defaults are used otherwise.
func Load(path string) (*Context, error) {
	var ov overlay
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		var err error
		ov, err = readFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	root := DefaultInstallRoot
	if ov.InstallRoot != "" {
		root = ov.InstallRoot
	}
	if v := os.Getenv(EnvInstallRoot); v != "" {
		root = v
	}

	c := Default(root)
	ov.apply(c)
	if v := os.Getenv(EnvCompiler); v != "" {
		c.Compiler = v
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func readFile(path string) (overlay, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return readYAML(path)
	}
	return readProps(path)
}

func readYAML(path string) (ov overlay, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ov, err
	}
	if err = yaml.Unmarshal(data, &ov); err != nil {
		return ov, fmt.Errorf("parse yaml: %w", err)
	}
	return ov, nil
}

// readProps reads a shell-style KEY=VALUE file. List values are separated by
// whitespace.
func readProps(path string) (ov overlay, err error) {
	props, err := godotenv.Read(path)
	if err != nil {
		return ov, err
	}
	list := func(key string) []string {
		return strings.Fields(props[key])
	}
	ov = overlay{
		InstallRoot: props["INSTALL_ROOT"],
		Launcher:    props["CORERUN"],
		Transpiler:  props["IL_TO_CPP"],
		References:  list("IL_TO_CPP_REFS"),
		Backend:     props["IL_TO_CPP_BACKEND"],
		Compiler:    props["CC"],
		CFlags:      list("CFLAGS"),
		IncludeDirs: list("INCLUDE_DIRS"),
		Sources:     list("SOURCES"),
		Libraries:   list("LIBS"),
		Shim:        props["STUBS"],
	}
	for _, kv := range list("ENV") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return ov, fmt.Errorf("ENV: malformed entry %q, want KEY=VALUE", kv)
		}
		if ov.Env == nil {
			ov.Env = make(map[string]string)
		}
		ov.Env[k] = v
	}
	return ov, nil
}

func (ov *overlay) apply(c *Context) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setList := func(dst *[]string, v []string) {
		if len(v) > 0 {
			*dst = v
		}
	}
	set(&c.Launcher, ov.Launcher)
	set(&c.Transpiler, ov.Transpiler)
	set(&c.Backend, ov.Backend)
	set(&c.Compiler, ov.Compiler)
	set(&c.Shim, ov.Shim)
	setList(&c.References, ov.References)
	setList(&c.CFlags, ov.CFlags)
	setList(&c.IncludeDirs, ov.IncludeDirs)
	setList(&c.Sources, ov.Sources)
	setList(&c.Libraries, ov.Libraries)
	if len(ov.Env) > 0 && c.Env == nil {
		c.Env = make(map[string]string, len(ov.Env))
	}
	maps.Copy(c.Env, ov.Env)
}
