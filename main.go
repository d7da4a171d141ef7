// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/acervohiphopdf/acervomapa/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
