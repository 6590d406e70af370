// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Command gen-schema writes the JSON Schema of global state bundles.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/holomush/wardrobe/internal/state"
	"github.com/holomush/wardrobe/internal/xdg"
)

func main() {
	outPath := filepath.Join("schemas", "wardrobe-state.schema.json")
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	schema, err := state.GenerateSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}
	if err := xdg.EnsureDir(filepath.Dir(outPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, schema, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %s\n", outPath)
}
