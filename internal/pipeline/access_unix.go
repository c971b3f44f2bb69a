// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package pipeline

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// readable asks the kernel whether the real user may read path.
func readable(path string) error {
	if err := unix.Access(path, unix.R_OK); err != nil {
		return fmt.Errorf("not readable: %w", err)
	}
	return nil
}
