// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/holomush/wardrobe/internal/access"
	"github.com/holomush/wardrobe/internal/action"
	"github.com/holomush/wardrobe/internal/core"
	"github.com/holomush/wardrobe/internal/item"
)

// withStores opens the configured stores around fn.
func (a *app) withStores(cmd *cobra.Command, fn func(s *stores) error) error {
	s, err := a.openStores(cmd.Context(), a.cfg)
	if err != nil {
		return err
	}
	if s.close != nil {
		defer s.close()
	}
	return fn(s)
}

func newSpaceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "space",
		Short: "Inspect stored spaces",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored spaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStores(cmd, func(s *stores) error {
				ids, err := s.spaces.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, id := range ids {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <space>",
		Short: "Print the stored bundle of a space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStores(cmd, func(s *stores) error {
				b, err := s.spaces.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), b)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <space>",
		Short: "Delete a stored space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStores(cmd, func(s *stores) error {
				if err := s.spaces.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				cmd.Printf("Deleted space %s\n", args[0])
				return nil
			})
		},
	})

	var (
		limit int
		after string
	)
	history := &cobra.Command{
		Use:   "history <space>",
		Short: "Print the events of a space, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cursor ulid.ULID
			if after != "" {
				var err error
				if cursor, err = core.ParseULID(after); err != nil {
					return err
				}
			}
			return a.withStores(cmd, func(s *stores) error {
				events, err := replayAll(cmd.Context(), s.events, core.SpaceStream(args[0]), cursor, limit)
				if err != nil {
					return err
				}
				for _, e := range events {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s %s\n",
						e.Timestamp.UTC().Format(time.RFC3339), e.ID, e.Type, e.Actor.ID, e.Payload)
				}
				return nil
			})
		},
	}
	history.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of events (0 = all)")
	history.Flags().StringVar(&after, "after", "", "only events after this event id")
	cmd.AddCommand(history)

	return cmd
}

func newPolicyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Manage the permission policies of characters",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <character> <policy.yaml|->",
		Short: "Store the policy of a character",
		Long: `Set stores a policy read from YAML:

  allow: ["interact:*"]
  prompt: ["lockItems:*"]
  forbid: ["modifyBody:*"]
  trusted: ["bob"]`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			var p access.Policy
			if err := yaml.Unmarshal(data, &p); err != nil {
				return oops.Code("POLICY_INVALID").With("path", args[1]).Wrap(err)
			}
			character := item.CharacterID(args[0])
			// Reject bad patterns before they reach the database.
			if err := access.NewManager(a.logger).SetPolicy(character, p); err != nil {
				return err
			}
			return a.withStores(cmd, func(s *stores) error {
				if err := s.policies.Save(cmd.Context(), character, p); err != nil {
					return err
				}
				cmd.Printf("Stored policy of %s\n", character)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <character>",
		Short: "Restore the default policy of a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStores(cmd, func(s *stores) error {
				return s.policies.Delete(cmd.Context(), item.CharacterID(args[0]))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check <target> <player> <kind[:scope]>",
		Short: "Show how target answers a permission request of player",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.restrictions(cmd)
			if err != nil {
				return err
			}
			kind, scope := access.ParsePermission(args[2])
			target := item.CharacterID(args[0])
			grant := m.Grant(target, item.CharacterID(args[1]), action.Permission{Target: target, Kind: kind, Scope: scope})
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), grant)
			return nil
		},
	})

	return cmd
}

// restrictions builds an access manager with the configured default policy
// and every stored character policy.
func (a *app) restrictions(cmd *cobra.Command) (*access.Manager, error) {
	policy, err := a.cfg.Policy()
	if err != nil {
		return nil, err
	}
	m, err := access.NewManagerWithPolicy(policy, a.logger)
	if err != nil {
		return nil, err
	}
	err = a.withStores(cmd, func(s *stores) error {
		n, err := s.policies.LoadInto(cmd.Context(), m)
		if err != nil {
			return err
		}
		a.logger.Debug("loaded character policies", "count", n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
