package database

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentpay-backend/migrations"
)

func TestPendingMigrationsOrderAndFilter(t *testing.T) {
	files := fstest.MapFS{
		"003_payments.sql":    {Data: []byte("SELECT 3")},
		"001_profiles.sql":    {Data: []byte("SELECT 1")},
		"002_properties.sql":  {Data: []byte("SELECT 2")},
		"999_reset_all.sql":   {Data: []byte("DROP SCHEMA public")},
		"README.md":           {Data: []byte("notes")},
		"archive/old_one.sql": {Data: []byte("SELECT 0")},
	}

	pending, err := PendingMigrations(files, map[string]bool{"001_profiles.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"002_properties.sql", "003_payments.sql"}, pending)
}

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	pending, err := PendingMigrations(migrations.FS, nil)
	require.NoError(t, err)
	require.NotEmpty(t, pending)

	assert.Equal(t, "001_auth_users.sql", pending[0])
	assert.Contains(t, pending, "005_payments.sql")
}

func TestResetTablesCoverEveryMigratedTable(t *testing.T) {
	var created []string
	entries, err := fs.ReadDir(migrations.FS, ".")
	require.NoError(t, err)
	for _, e := range entries {
		data, err := fs.ReadFile(migrations.FS, e.Name())
		require.NoError(t, err)
		for _, line := range strings.Split(string(data), "\n") {
			fields := strings.Fields(line)
			if len(fields) >= 6 && strings.EqualFold(fields[0], "CREATE") && strings.EqualFold(fields[1], "TABLE") {
				created = append(created, fields[5])
			}
		}
	}

	for _, table := range created {
		if strings.HasPrefix(table, "auth.") {
			continue
		}
		assert.Contains(t, ResetTables, table)
	}
	assert.Equal(t, "payments", ResetTables[0])
}
