package postgres

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Paired(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	for name := range names {
		if base, ok := strings.CutSuffix(name, ".up.sql"); ok {
			assert.True(t, names[base+".down.sql"], "missing down migration for %s", name)
		}
	}
}

func TestMigrations_ColumnsMatchRecordKeys(t *testing.T) {
	data, err := fs.ReadFile(migrations, "migrations/000003_create_readings.up.sql")
	require.NoError(t, err)
	for _, col := range readingColumns {
		assert.Contains(t, string(data), col)
	}
}
