// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/wardrobe/internal/access"
	"github.com/holomush/wardrobe/internal/action"
	"github.com/holomush/wardrobe/internal/core"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/observability"
	"github.com/holomush/wardrobe/internal/space"
	"github.com/holomush/wardrobe/internal/state"
	"github.com/holomush/wardrobe/pkg/errutil"
)

type sessionFlags struct {
	character  string
	name       string
	appearance string
	memory     bool
	deltas     bool
	seed       uint64
}

func newSessionCmd(a *app) *cobra.Command {
	var f sessionFlags
	cmd := &cobra.Command{
		Use:   "session <space>",
		Short: "Join a space and run actions read from stdin",
		Long: `Session joins a character to a space and reads one command per line:

  {"type": "create", "payload": {...}}   perform an encoded action
  attempt {"type": ...}                  start a delayed action
  finish | abort                         finish or abort the pending attempt
  state                                  print the client view of the space

Events of the space are printed as they happen. The character leaves the
space at end of input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSession(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVarP(&f.character, "character", "c", "", "character joining the space (required)")
	cmd.Flags().StringVar(&f.name, "name", "", "display name of the character")
	cmd.Flags().StringVar(&f.appearance, "appearance", "", "appearance bundle file of the character")
	cmd.Flags().BoolVar(&f.memory, "memory", false, "keep the space in memory instead of the database")
	cmd.Flags().BoolVar(&f.deltas, "deltas", false, "print state delta events")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed (0 = random)")
	cmd.Flags().String("metrics.addr", "", "serve metrics and health probes on this address while the session runs")
	_ = cmd.MarkFlagRequired("character")
	return cmd
}

func (a *app) runSession(cmd *cobra.Command, spaceID string, f sessionFlags) error {
	ctx := cmd.Context()
	catalog, err := a.catalog()
	if err != nil {
		return err
	}
	var appearance state.AppearanceBundle
	if f.appearance != "" {
		data, err := readInput(cmd, f.appearance)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &appearance); err != nil {
			return oops.Code("APPEARANCE_INVALID").With("path", f.appearance).Wrap(err)
		}
	}

	policy, err := a.cfg.Policy()
	if err != nil {
		return err
	}
	restrictions, err := access.NewManagerWithPolicy(policy, a.logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	space.RegisterMetrics(reg)
	limiter := space.NewRateLimiter(a.cfg.Randomizer, reg)
	defer limiter.Close()

	var joined atomic.Bool
	if a.cfg.Metrics.Addr != "" {
		srv := observability.NewServer(a.cfg.Metrics.Addr, reg, joined.Load, a.logger)
		if _, err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := srv.Stop(stopCtx); err != nil {
				errutil.LogError(a.logger, "stopping metrics server", err)
			}
		}()
	}

	broadcaster := core.NewBroadcaster(a.logger)
	svcCfg := space.Config{
		Manager:      catalog,
		Limits:       a.cfg.Limits,
		Restrictions: restrictions,
		Events:       core.NewMemoryEventStore(),
		Broadcaster:  broadcaster,
		RateLimiter:  limiter,
		Rand:         seededRand(f.seed),
		Logger:       a.logger,
	}
	if !f.memory {
		s, err := a.openStores(ctx, a.cfg)
		if err != nil {
			return err
		}
		if s.close != nil {
			defer s.close()
		}
		n, err := s.policies.LoadInto(ctx, restrictions)
		if err != nil {
			return err
		}
		a.logger.Debug("loaded character policies", "count", n)
		svcCfg.Repository = s.spaces
		svcCfg.Events = s.events
	}
	svc, err := space.NewService(svcCfg)
	if err != nil {
		return err
	}

	stream := core.SpaceStream(spaceID)
	events := broadcaster.Subscribe(stream)
	defer broadcaster.Unsubscribe(stream, events)

	out := cmd.OutOrStdout()
	player := item.CharacterID(f.character)
	if err := svc.Join(ctx, spaceID, player, f.name, appearance); err != nil {
		return err
	}
	joined.Store(true)
	drainEvents(out, events, f.deltas)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := a.sessionCommand(ctx, out, svc, spaceID, player, line); err != nil {
			errutil.LogError(a.logger, "session command failed", err)
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
		}
		drainEvents(out, events, f.deltas)
	}
	if err := scanner.Err(); err != nil {
		return oops.Code("INPUT_READ_FAILED").Wrap(err)
	}

	if err := svc.Leave(ctx, spaceID, player); err != nil {
		return err
	}
	drainEvents(out, events, f.deltas)
	return nil
}

func (a *app) sessionCommand(ctx context.Context, out io.Writer, svc *space.Service, spaceID string, player item.CharacterID, line string) error {
	var (
		res action.Result
		err error
	)
	switch {
	case line == "finish":
		res, err = svc.FinishAttempt(ctx, spaceID, player)
	case line == "abort":
		res, err = svc.AbortAttempt(ctx, spaceID, player)
	case line == "state":
		b, err := svc.Snapshot(ctx, spaceID)
		if err != nil {
			return err
		}
		return writeJSON(out, b)
	case strings.HasPrefix(line, "attempt "):
		act, derr := action.Decode([]byte(strings.TrimPrefix(line, "attempt ")))
		if derr != nil {
			return derr
		}
		res, err = svc.StartAttempt(ctx, spaceID, player, act)
	default:
		act, derr := action.Decode([]byte(line))
		if derr != nil {
			return derr
		}
		res, err = svc.Perform(ctx, spaceID, player, act)
	}
	if err != nil {
		return err
	}
	switch r := res.(type) {
	case action.Valid:
		if r.Module != nil && r.Module.Password != "" {
			_, _ = fmt.Fprintf(out, "password: %s\n", r.Module.Password)
		}
	case action.Invalid:
		_, _ = fmt.Fprintln(out, "rejected:")
		printProblems(out, r)
	}
	return nil
}

// drainEvents prints the events already broadcast without waiting for more.
func drainEvents(w io.Writer, events <-chan core.Event, deltas bool) {
	for {
		select {
		case e := <-events:
			printEvent(w, e, deltas)
		default:
			return
		}
	}
}

func printEvent(w io.Writer, e core.Event, deltas bool) {
	switch e.Type {
	case core.EventTypeChat, core.EventTypeAttempt:
		var p space.ChatPayload
		if err := json.Unmarshal(e.Payload, &p); err == nil {
			_, _ = fmt.Fprintf(w, "* %s\n", p.Text)
		}
	case core.EventTypeJoin, core.EventTypeLeave:
		var p space.MemberPayload
		if err := json.Unmarshal(e.Payload, &p); err == nil {
			name := p.Name
			if name == "" {
				name = string(p.Character)
			}
			verb := "joined"
			if e.Type == core.EventTypeLeave {
				verb = "left"
			}
			_, _ = fmt.Fprintf(w, "~ %s %s\n", name, verb)
		}
	case core.EventTypeDelta:
		if deltas {
			_, _ = fmt.Fprintf(w, "~ delta %s\n", e.Payload)
		}
	default:
		_, _ = fmt.Fprintf(w, "~ %s %s\n", e.Type, e.Payload)
	}
}
