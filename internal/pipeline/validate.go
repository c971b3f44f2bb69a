// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"os"
	"path/filepath"
)

var (
	errEmptyPath  = errors.New("no path given")
	errNotRegular = errors.New("not a regular file")
)

// ValidateInput checks that path names an existing, readable regular file
// and returns its absolute form. It never starts a process.
func ValidateInput(path string) (string, error) {
	if path == "" {
		return "", &InvalidInputError{Path: path, Err: errEmptyPath}
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", &InvalidInputError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return "", &InvalidInputError{Path: path, Err: errNotRegular}
	}
	if err := readable(path); err != nil {
		return "", &InvalidInputError{Path: path, Err: err}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &InvalidInputError{Path: path, Err: err}
	}
	return abs, nil
}
