package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vadimbarashkov/shorty/internal/config"
	"github.com/vadimbarashkov/shorty/internal/entity"
	"github.com/vadimbarashkov/shorty/pkg/postgres"
)

func setupPostgres(t testing.TB) *RecordRepository {
	t.Helper()

	ctx := context.Background()

	pgUser := "test"
	pgPassword := "test"
	pgDB := "shorty"

	pgCont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDB,
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgCont.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate postgres container: %v", err)
		}
	})

	pgHost, err := pgCont.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	pgPort, err := pgCont.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := config.Postgres{
		User:     pgUser,
		Password: pgPassword,
		Host:     pgHost,
		Port:     pgPort.Int(),
		DB:       pgDB,
		SSLMode:  "disable",
	}

	if _, err := postgres.RunMigrations("file://../../../../migrations", cfg.DSN()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := postgres.New(ctx, cfg.DSN())
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	return NewRecordRepository(db)
}

func TestRecordRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	repo := setupPostgres(t)
	ctx := context.Background()

	t.Run("set if absent", func(t *testing.T) {
		ok, err := repo.SetNX(ctx, "abc123", "first")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.SetNX(ctx, "abc123", "second")
		require.NoError(t, err)
		assert.False(t, ok)

		value, err := repo.Get(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, "first", value)
	})

	t.Run("keys of any length", func(t *testing.T) {
		const key = "a-key-longer-than-a-shortcode"

		ok, err := repo.SetNX(ctx, key, "first")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, repo.Set(ctx, key, "second"))

		value, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", value)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := repo.Exists(ctx, "abc123")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Exists(ctx, "zzz999")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("update missing key", func(t *testing.T) {
		_, err := repo.Update(ctx, "zzz999", increment)

		assert.ErrorIs(t, err, entity.ErrRecordNotFound)
	})

	t.Run("concurrent updates", func(t *testing.T) {
		const n = 30

		require.NoError(t, repo.Set(ctx, "cnt___", "0"))

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				_, err := repo.Update(ctx, "cnt___", increment)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		value, err := repo.Get(ctx, "cnt___")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(n), value)
	})
}
