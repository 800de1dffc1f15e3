// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jamaicageo/jamlocate/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
