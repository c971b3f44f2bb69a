// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "github.com/goplus/ilnative/cmd/ilnative/internal"

func main() {
	internal.Execute()
}
