// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Paths are the artifacts of one run.
type Paths struct {
	Assembly     string // validated input, never written
	Intermediate string // transpiler output in the scratch dir
	Native       string // final executable in the output dir
}

// TrimExt removes ext from the end of name if it is the whole trailing
// token, compared case-insensitively. Any other suffix is left alone.
func TrimExt(name string, exts ...string) string {
	for _, ext := range exts {
		if ext == "" || len(name) <= len(ext) {
			continue
		}
		if strings.EqualFold(name[len(name)-len(ext):], ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// ResolvePaths derives the intermediate and native artifact paths of
// assembly. The intermediate lives in scratchDir as <base><intermediateExt>;
// the native artifact lives in outputDir and is named after the
// intermediate with intermediateExt removed. Exactly one of assemblyExts is
// stripped from the assembly name.
func ResolvePaths(assembly, scratchDir, outputDir, intermediateExt string, assemblyExts []string) (Paths, error) {
	if scratchDir == "" {
		return Paths{}, errors.New("no scratch directory")
	}
	if outputDir == "" {
		return Paths{}, errors.New("no output directory")
	}
	if intermediateExt == "" {
		return Paths{}, errors.New("no intermediate extension")
	}

	base := TrimExt(filepath.Base(assembly), assemblyExts...)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return Paths{}, fmt.Errorf("cannot derive an artifact name from %q", assembly)
	}
	p := Paths{
		Assembly:     assembly,
		Intermediate: filepath.Join(scratchDir, base+intermediateExt),
	}
	p.Native = filepath.Join(outputDir, TrimExt(filepath.Base(p.Intermediate), intermediateExt))

	if sameFile(p.Native, assembly) || sameFile(p.Intermediate, assembly) {
		return Paths{}, fmt.Errorf("artifact path would overwrite the input %q", assembly)
	}
	if sameFile(p.Native, StageDir(scratchDir)) {
		return Paths{}, fmt.Errorf("native artifact %s would replace the shim dir", p.Native)
	}
	return p, nil
}

func sameFile(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
