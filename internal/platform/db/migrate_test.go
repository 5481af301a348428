package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, "0001_ledger_core", migrations[0].Version)

	core := migrations[0].SQL
	for _, table := range []string{"chart_of_accounts", "products", "accounts", "transaction_types", "ledger_entries", "ledger_audit_logs"} {
		assert.True(t, strings.Contains(core, "CREATE TABLE IF NOT EXISTS "+table), "missing table %s", table)
	}
	assert.Contains(t, core, "uq_accounts_customer")
	assert.Contains(t, core, "CHECK (balance >= 0)")
}

func TestMigrationsSorted(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
}
