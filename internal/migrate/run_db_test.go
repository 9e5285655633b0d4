package migrate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/eventhub/internal/migrate"
	"github.com/target/eventhub/internal/testutil"
)

func TestRun_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, migrate.Run(ctx, db))
	require.NoError(t, migrate.Run(ctx, db))

	pending, err := migrate.Pending(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, pending)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT count(*) FROM schema_migrations`).Scan(&n))
	all, err := migrate.All()
	require.NoError(t, err)
	assert.Equal(t, len(all), n)
}
