// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/logging"
	"github.com/holomush/wardrobe/internal/state"
)

// loadedBundle is a bundle file after load repair.
type loadedBundle struct {
	catalog *asset.Catalog
	state   *state.GlobalState
	repairs []logging.Entry
}

// loadBundle schema-checks a bundle file and loads it, collecting the
// repairs loading made.
func (a *app) loadBundle(cmd *cobra.Command, path string, seed uint64) (*loadedBundle, error) {
	catalog, err := a.catalog()
	if err != nil {
		return nil, err
	}
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	b, err := state.ParseBundle(data)
	if err != nil {
		return nil, oops.With("path", path).With("detail", state.FormatSchemaError(err)).Wrap(err)
	}
	collector := logging.NewCollector(slog.LevelWarn, a.logger.Handler())
	g := state.LoadGlobalState(a.loadContext(catalog, slog.New(collector), seededRand(seed)), b)
	return &loadedBundle{catalog: catalog, state: g, repairs: collector.Entries()}, nil
}

func printRepairs(w io.Writer, repairs []logging.Entry) {
	for _, r := range repairs {
		keys := slices.Sorted(maps.Keys(r.Attrs))
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+r.Attrs[k])
		}
		_, _ = fmt.Fprintf(w, "- %s %s\n", r.Message, strings.Join(parts, " "))
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <bundle.json|->",
		Short: "Check a global state bundle against the catalog",
		Long: `Validate checks a bundle against the bundle schema and loads it with the
configured catalog. Every repair loading would make is reported; the bundle
is valid when none is needed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := a.loadBundle(cmd, args[0], 0)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(loaded.repairs) == 0 {
				_, _ = fmt.Fprintln(out, "bundle is valid")
				return nil
			}
			_, _ = fmt.Fprintf(out, "bundle needs %d repairs:\n", len(loaded.repairs))
			printRepairs(out, loaded.repairs)
			return oops.Code("BUNDLE_NEEDS_REPAIR").With("repairs", len(loaded.repairs)).
				Errorf("bundle needs %d repairs", len(loaded.repairs))
		},
	}
}

func newRepairCmd(a *app) *cobra.Command {
	var (
		client bool
		seed   uint64
		out    string
	)
	cmd := &cobra.Command{
		Use:   "repair <bundle.json|->",
		Short: "Load a bundle and write the repaired bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := a.loadBundle(cmd, args[0], seed)
			if err != nil {
				return err
			}
			printRepairs(cmd.ErrOrStderr(), loaded.repairs)
			b := loaded.state.ExportToBundle()
			if client {
				b = loaded.state.ExportToClientBundle()
			}
			return writeOutput(cmd, out, b)
		},
	}
	cmd.Flags().BoolVar(&client, "client", false, "write the client view, without secrets")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for injected bodyparts (0 = random)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Write the JSON schema of global state bundles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := state.GenerateSchema()
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return oops.Code("OUTPUT_FAILED").Wrap(err)
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return oops.Code("OUTPUT_FAILED").With("path", out).Wrap(err)
			}
			cmd.Printf("Generated %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// writeOutput writes v as indented JSON to path, or to stdout when path
// is empty.
func writeOutput(cmd *cobra.Command, path string, v any) error {
	if path == "" {
		return writeJSON(cmd.OutOrStdout(), v)
	}
	f, err := os.Create(path) //nolint:gosec // writing where the operator asked is the point
	if err != nil {
		return oops.Code("OUTPUT_FAILED").With("path", path).Wrap(err)
	}
	if err := writeJSON(f, v); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return oops.Code("OUTPUT_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
