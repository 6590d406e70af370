// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode asserts that err is an oops error with the given code.
func AssertErrorCode(tb testing.TB, err error, code string) {
	tb.Helper()
	_, ok := oops.AsOops(err)
	require.True(tb, ok, "expected oops error, got %T: %v", err, err)
	assert.Equal(tb, code, Code(err))
}

// AssertErrorContext asserts that err carries key with value in its oops
// context.
func AssertErrorContext(tb testing.TB, err error, key string, value any) {
	tb.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(tb, ok, "expected oops error, got %T: %v", err, err)
	ctx := oopsErr.Context()
	if assert.Contains(tb, ctx, key) {
		assert.Equal(tb, value, ctx[key])
	}
}
