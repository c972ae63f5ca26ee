package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_AreEmbeddedInOrder(t *testing.T) {
	entries, err := fs.ReadDir(Migrations(), ".")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "00001_create_users.sql", entries[0].Name())
	assert.Equal(t, "00002_create_auth_events.sql", entries[1].Name())

	for _, e := range entries {
		b, err := fs.ReadFile(Migrations(), e.Name())
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(b), "-- +goose Up"), e.Name())
		assert.True(t, strings.Contains(string(b), "-- +goose Down"), e.Name())
	}
}

func TestAuthEvents_UserReferenceDoesNotRewriteRows(t *testing.T) {
	b, err := fs.ReadFile(Migrations(), "00002_create_auth_events.sql")
	require.NoError(t, err)
	sql := string(b)

	// Rows are immutable, so deleting a referenced user must fail up front
	// instead of cascading an UPDATE into the append-only trigger.
	assert.Contains(t, sql, "REFERENCES users (id) ON DELETE RESTRICT")
	assert.NotContains(t, sql, "ON DELETE SET NULL")
	assert.NotContains(t, sql, "ON DELETE CASCADE")
	assert.Contains(t, sql, "BEFORE UPDATE OR DELETE ON auth_events")
}
