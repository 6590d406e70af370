// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package errutil holds helpers for oops errors shared by the wardrobe
// packages and their tests.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// Code returns the oops code of err, or "" for other errors.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// LogError logs err at error level with its full message. An oops error in
// the chain adds its code and context as attributes.
func LogError(logger *slog.Logger, msg string, err error) {
	attrs := []any{"error", err.Error()}
	if oopsErr, ok := oops.AsOops(err); ok {
		if code := Code(oopsErr); code != "" {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
	}
	logger.Error(msg, attrs...)
}
