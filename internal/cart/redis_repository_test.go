package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisRepository
func setupTestRedis(t *testing.T) (*RedisRepository, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	repo := NewRedisRepository(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return repo, mr, cleanup
}

func testCart(sessionID string) *Cart {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &Cart{
		SessionID: sessionID,
		Lines: []Line{
			{ProductID: 1, Color: "black", Name: "Whey Protein Isolate", Price: 59.99, Quantity: 2, AddedAt: now},
			{ProductID: 4, Color: "white", Name: "Performance Tee", Price: 24.99, Quantity: 1, AddedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRedisLoad_Success(t *testing.T) {
	repo, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	c := testCart("sess-1")

	data, err := json.Marshal(c)
	require.NoError(t, err)
	require.NoError(t, mr.Set(slotKey("sess-1"), string(data)))

	result, err := repo.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", result.SessionID)
	require.Len(t, result.Lines, 2)
	assert.Equal(t, int64(1), result.Lines[0].ProductID)
	assert.Equal(t, "black", result.Lines[0].Color)
}

func TestRedisLoad_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := repo.Load(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, result)
}

func TestRedisLoad_InvalidJSON(t *testing.T) {
	repo, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	data, err := json.Marshal(testCart("sess-1"))
	require.NoError(t, err)
	require.NoError(t, mr.Set(slotKey("sess-1"), string(data[0:10])))

	_, loadErr := repo.Load(context.Background(), "sess-1")
	require.ErrorContains(t, loadErr, "unmarshal cart failed")
}

func TestRedisSaveLoad_RoundTrip(t *testing.T) {
	repo, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	c := testCart("sess-rt")

	require.NoError(t, repo.Save(ctx, c))

	result, err := repo.Load(ctx, "sess-rt")
	require.NoError(t, err)
	assert.Equal(t, c.Lines, result.Lines)
}

func TestRedisDelete(t *testing.T) {
	repo, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, testCart("sess-del")))
	require.NoError(t, repo.Delete(ctx, "sess-del"))

	_, err := repo.Load(ctx, "sess-del")
	assert.ErrorIs(t, err, ErrCartNotFound)
}
