// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var migrationFile = regexp.MustCompile(`^(\d{6})_(\w+)\.(up|down)\.sql$`)

func TestMigrationsFS_PairsAndSequence(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	directions := map[int]map[string]bool{}
	for _, entry := range entries {
		m := migrationFile.FindStringSubmatch(entry.Name())
		require.NotNil(t, m, "file %s should match NNNNNN_name.(up|down).sql", entry.Name())
		v, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		if directions[v] == nil {
			directions[v] = map[string]bool{}
		}
		directions[v][m[3]] = true
	}

	require.NotEmpty(t, directions)
	for v := 1; v <= len(directions); v++ {
		assert.True(t, directions[v]["up"], "version %d needs an up file", v)
		assert.True(t, directions[v]["down"], "version %d needs a down file", v)
	}
}
