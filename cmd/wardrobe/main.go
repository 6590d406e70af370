// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package main is the entry point of the wardrobe command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/holomush/wardrobe/pkg/errutil"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitFailure  = 1
	exitRejected = 2
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode separates a bundle or action the rules rejected from a failure
// to run the command.
func exitCode(err error) int {
	switch errutil.Code(err) {
	case "BUNDLE_NEEDS_REPAIR", "ACTION_INVALID":
		return exitRejected
	default:
		return exitFailure
	}
}
