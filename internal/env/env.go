// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package env

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// scratchPrefix names every per-run scratch directory under the temp area.
const scratchPrefix = "ilnative-"

// RunID returns a new token identifying one pipeline run.
func RunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ScratchDir creates the scratch directory of run id below base, or below
// the system temp area if base is empty. Concurrent runs with distinct ids
// never share a directory.
func ScratchDir(base, id string) (string, error) {
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, scratchPrefix+id)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// RemoveScratch deletes a directory created by ScratchDir.
func RemoveScratch(dir string) error {
	return os.RemoveAll(dir)
}
