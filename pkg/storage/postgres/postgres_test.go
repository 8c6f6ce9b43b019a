package postgres

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/pkg/storage/storetest"
)

// TestStoreConformance requires a reachable postgres with the authgate
// schema migrated. Set AUTHGATE_TEST_POSTGRES_DSN to enable it.
func TestStoreConformance(t *testing.T) {
	dsn := os.Getenv("AUTHGATE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("AUTHGATE_TEST_POSTGRES_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	adapter, err := NewAdapter(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })

	storetest.Run(t, adapter)
}

func TestNewAdapterNilDB(t *testing.T) {
	_, err := NewAdapter(nil)
	require.ErrorIs(t, err, ErrNilDB)
}
