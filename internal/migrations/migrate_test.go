package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/burritos/internal/db"
)

func TestUpIsRepeatable(t *testing.T) {
	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Up(database, nil))
	require.NoError(t, Up(database, nil))

	v, err := Version(database)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	for _, table := range []string{"products", "cost_records", "sales", "fixed_expenses", "wage_config", "general_config"} {
		var n int
		err := database.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}

func TestConfigTablesAreSingletons(t *testing.T) {
	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "singleton.db"))
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, Up(database, nil))

	_, err = database.Exec(`INSERT INTO wage_config (id, per_person_daily, headcount) VALUES (2, 100, 2)`)
	assert.Error(t, err)
}
