package db

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// Checkout blocks on FOR UPDATE row locks. At Repeatable Read, Postgres
// rolls back a transaction that resumes after the lock holder commits, so
// any contended order would fail with a serialization error instead of
// being re-validated against the new stock level.
func TestTransactionsRunAtReadCommitted(t *testing.T) {
	require.Equal(t, pgx.ReadCommitted, txOptions.IsoLevel,
		"row-lock waiters must see committed state, not a stale snapshot abort")
}
