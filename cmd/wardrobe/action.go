// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/wardrobe/internal/access"
	"github.com/holomush/wardrobe/internal/action"
	"github.com/holomush/wardrobe/internal/item"
)

// actionFlags are shared by the commands that run one action on a bundle.
type actionFlags struct {
	character string
	seed      uint64
	out       string
}

func (f *actionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.character, "character", "c", "", "acting character (required)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed (0 = random)")
	cmd.Flags().StringVarP(&f.out, "output", "o", "", "write the resulting bundle to a file (default: stdout)")
	_ = cmd.MarkFlagRequired("character")
}

// runAction loads a bundle, applies a to it as the flagged character and
// writes the new bundle. Messages go to stderr.
func (a *app) runAction(cmd *cobra.Command, path string, f *actionFlags, act action.Action) error {
	loaded, err := a.loadBundle(cmd, path, f.seed)
	if err != nil {
		return err
	}
	policy, err := a.cfg.Policy()
	if err != nil {
		return err
	}
	restrictions, err := access.NewManagerWithPolicy(policy, a.logger)
	if err != nil {
		return err
	}
	player := item.CharacterID(f.character)
	ctx := action.Context{
		Player:       player,
		PlayerName:   f.character,
		Now:          time.Now(),
		Restrictions: restrictions,
		Rand:         seededRand(f.seed),
		Logger:       a.logger,
	}

	switch r := action.Apply(ctx, loaded.state, act).(type) {
	case action.Valid:
		printMessages(cmd.ErrOrStderr(), r.Messages)
		if r.Module != nil && r.Module.Password != "" {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "password: %s\n", r.Module.Password)
		}
		return writeOutput(cmd, f.out, r.State.ExportToBundle())
	case action.Invalid:
		printProblems(cmd.OutOrStdout(), r)
		return oops.Code("ACTION_INVALID").
			With("action", string(act.Kind())).
			With("problems", len(r.Problems)).
			Errorf("%s is not possible", act.Kind())
	default:
		return oops.Code("ACTION_FAILED").Errorf("unexpected result %T", r)
	}
}

func printMessages(w io.Writer, messages []action.Message) {
	for _, m := range messages {
		_, _ = fmt.Fprintf(w, "> %s\n", m.Text(func(id item.CharacterID) string { return string(id) }))
	}
}

func printProblems(w io.Writer, r action.Invalid) {
	for _, p := range r.Problems {
		_, _ = fmt.Fprintf(w, "- %s\n", p.ProblemKind())
	}
	for _, p := range r.Permissions {
		_, _ = fmt.Fprintf(w, "  needs %s from %s\n", p.String(), p.Target)
	}
	if r.Prompt != "" {
		_, _ = fmt.Fprintf(w, "  %s can approve this\n", r.Prompt)
	}
}

func newRandomizeCmd(a *app) *cobra.Command {
	var (
		flags actionFlags
		mode  string
	)
	cmd := &cobra.Command{
		Use:   "randomize <bundle.json|->",
		Short: "Randomize the appearance of a character in a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := action.RandomizeKind(mode)
			if kind != action.RandomizeBody && kind != action.RandomizeFull {
				return oops.Code("INVALID_ARGUMENT").With("mode", mode).
					Errorf("mode must be %q or %q", action.RandomizeBody, action.RandomizeFull)
			}
			return a.runAction(cmd, args[0], &flags, action.Randomize{Mode: kind})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", string(action.RandomizeFull), "what to regenerate (body or full)")
	return cmd
}

func newApplyCmd(a *app) *cobra.Command {
	var (
		flags      actionFlags
		actionFile string
	)
	cmd := &cobra.Command{
		Use:   "apply <bundle.json>",
		Short: "Apply an encoded action to a bundle",
		Long: `Apply decodes an action ({"type": ..., "payload": ...}) from --action and
applies it to the bundle as the given character.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, actionFile)
			if err != nil {
				return err
			}
			act, err := action.Decode(data)
			if err != nil {
				return err
			}
			return a.runAction(cmd, args[0], &flags, act)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&actionFile, "action", "a", "-", "action file (default: stdin)")
	return cmd
}
