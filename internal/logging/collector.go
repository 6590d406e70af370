// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package logging

import (
	"context"
	"log/slog"
	"sync"
)

// Entry is a record kept by a Collector.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// Collector keeps records at or above a level, e.g. the repair warnings
// emitted while a bundle loads, and forwards every record to next.
type Collector struct {
	min  slog.Level
	next slog.Handler

	mu      *sync.Mutex
	entries *[]Entry
	attrs   []slog.Attr
}

// NewCollector creates a collector. A nil next discards forwarded records.
func NewCollector(level slog.Level, next slog.Handler) *Collector {
	return &Collector{min: level, next: next, mu: &sync.Mutex{}, entries: &[]Entry{}}
}

// Entries returns what was collected so far.
func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), (*c.entries)...)
}

func (c *Collector) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= c.min || (c.next != nil && c.next.Enabled(ctx, level))
}

func (c *Collector) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= c.min {
		e := Entry{Level: r.Level, Message: r.Message, Attrs: map[string]string{}}
		for _, a := range c.attrs {
			e.Attrs[a.Key] = a.Value.String()
		}
		r.Attrs(func(a slog.Attr) bool {
			e.Attrs[a.Key] = a.Value.String()
			return true
		})
		c.mu.Lock()
		*c.entries = append(*c.entries, e)
		c.mu.Unlock()
	}
	if c.next != nil && c.next.Enabled(ctx, r.Level) {
		//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
		return c.next.Handle(ctx, r)
	}
	return nil
}

func (c *Collector) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *c
	clone.attrs = append(append([]slog.Attr(nil), c.attrs...), attrs...)
	if c.next != nil {
		clone.next = c.next.WithAttrs(attrs)
	}
	return &clone
}

// WithGroup forwards the group; collected attributes stay unqualified.
func (c *Collector) WithGroup(name string) slog.Handler {
	clone := *c
	if c.next != nil {
		clone.next = c.next.WithGroup(name)
	}
	return &clone
}
