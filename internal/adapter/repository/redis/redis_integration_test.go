package redis

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vadimbarashkov/shorty/internal/entity"
	redisclient "github.com/vadimbarashkov/shorty/pkg/redis"
)

func setupRedis(t testing.TB) *RecordRepository {
	t.Helper()

	ctx := context.Background()

	redisCont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := redisCont.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate redis container: %v", err)
		}
	})

	host, err := redisCont.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := redisCont.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client, err := redisclient.New(ctx, fmt.Sprintf("redis://%s:%d/0", host, port.Int()))
	if err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	return NewRecordRepository(client, WithMaxTxRetries(1000))
}

func TestRecordRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	repo := setupRedis(t)
	ctx := context.Background()

	t.Run("set if absent", func(t *testing.T) {
		ok, err := repo.SetNX(ctx, "setnx1", "first")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.SetNX(ctx, "setnx1", "second")
		require.NoError(t, err)
		assert.False(t, ok)

		value, err := repo.Get(ctx, "setnx1")
		require.NoError(t, err)
		assert.Equal(t, "first", value)
	})

	t.Run("update missing key", func(t *testing.T) {
		_, err := repo.Update(ctx, "missing", func(s string) (string, error) {
			return s, nil
		})

		assert.ErrorIs(t, err, entity.ErrRecordNotFound)
		assert.NotErrorIs(t, err, entity.ErrStoreUnavailable)
	})

	t.Run("concurrent updates", func(t *testing.T) {
		const n = 50

		require.NoError(t, repo.Set(ctx, "counter", "0"))

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				_, err := repo.Update(ctx, "counter", func(s string) (string, error) {
					v, err := strconv.Atoi(s)
					if err != nil {
						return "", err
					}
					return strconv.Itoa(v + 1), nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		value, err := repo.Get(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(n), value)
	})
}
