package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/trademate/supportdesk/pkg/storage"
	"github.com/trademate/supportdesk/pkg/storage/storagetest"
)

// setupTestDB starts a PostgreSQL container and returns a connected Store.
// Tests are skipped if no container runtime is available.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("trademate_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	store, err := New(ctx, Config{
		DSN:            connStr,
		MaxConns:       5,
		MinConns:       1,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func truncate(t *testing.T, s *Store) {
	t.Helper()
	if _, err := s.pool.Exec(context.Background(), "TRUNCATE partners, interactions"); err != nil {
		t.Fatalf("truncating tables: %v", err)
	}
}

func TestPostgres_Contract(t *testing.T) {
	store := setupTestDB(t)

	storagetest.Run(t, func(t *testing.T) storage.Store {
		truncate(t, store)
		return store
	})
}

func TestPostgres_MigrationsIdempotent(t *testing.T) {
	store := setupTestDB(t)

	if err := store.migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var n int
	if err := store.pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("schema_migrations rows = %d, want 3", n)
	}
}

func TestPostgres_NullableColumns(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	p := storagetest.NewPartner("groww", "", 1)
	p.WhatsApp = nil
	p.KnowledgeBase = nil
	if err := store.CreatePartner(ctx, p); err != nil {
		t.Fatalf("CreatePartner: %v", err)
	}

	// Two partners without keys must not collide on the unique lookup column.
	if err := store.CreatePartner(ctx, storagetest.NewPartner("zerodha", "", 2)); err != nil {
		t.Fatalf("second keyless partner: %v", err)
	}

	got, err := store.GetPartner(ctx, "groww")
	if err != nil {
		t.Fatal(err)
	}
	if got.WhatsApp != nil || got.KnowledgeBase != nil || got.APIKeyLookup != "" {
		t.Errorf("expected empty optional fields, got %+v", got)
	}

	if _, err := store.GetPartnerByKeyPrefix(ctx, ""); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("empty lookup: got %v, want ErrNotFound", err)
	}
}
