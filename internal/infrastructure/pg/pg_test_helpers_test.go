package pg_test

import (
	"context"
	"os"
	"testing"
	"time"

	"salon-client/internal/infrastructure/pg"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// withPostgres starts a throwaway Postgres with the client state schema
// applied. The container is removed when the test ends.
func withPostgres(t *testing.T) *pg.DB {
	t.Helper()
	if os.Getenv("TESTCONTAINERS") == "" {
		t.Skip("set TESTCONTAINERS=1 to run client state tests against postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := postgres.RunContainer(ctx,
		postgres.WithDatabase("salon_client"),
		postgres.WithUsername("salon"),
		postgres.WithPassword("salon"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := pg.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	version, err := pg.RunMigrations(ctx, db, nil)
	require.NoError(t, err)
	require.Equal(t, uint(1), version)

	// re-running is a no-op at the same version
	again, err := pg.RunMigrations(ctx, db, nil)
	require.NoError(t, err)
	require.Equal(t, version, again)
	return db
}
