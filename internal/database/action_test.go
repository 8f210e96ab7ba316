package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/JulianC775/Gubs/internal/cache"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("GUBS_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("GUBS_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := ConnectDB(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, EnsureSchema(ctx, pool))
	return pool
}

func TestInsertActionsAndAbandon(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	store := &ActionStore{Pool: pool}
	gameID := uuid.New()
	host := uuid.New()
	t.Cleanup(func() { pool.Exec(context.Background(), `DELETE FROM games WHERE id = $1`, gameID) })

	now := time.Now().UnixMilli()
	require.NoError(t, store.InsertActions(ctx, []cache.ActionRecord{
		{GameID: gameID, ActionIndex: 1, ActorID: host, ActionType: "create", ActionPayload: map[string]interface{}{"roomCode": "QWER"}, Timestamp: now},
		{GameID: gameID, ActionIndex: 2, ActorID: host, ActionType: "ready", ActionPayload: map[string]interface{}{"ready": true}, Timestamp: now},
	}))
	require.NoError(t, store.InsertActions(ctx, nil))

	n, err := store.CountActions(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var room, status string
	require.NoError(t, pool.QueryRow(ctx, `SELECT room_code, status FROM games WHERE id = $1`, gameID).Scan(&room, &status))
	assert.Equal(t, "QWER", room)
	assert.Equal(t, "active", status)

	changed, err := store.MarkAbandoned(ctx, gameID)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = store.MarkAbandoned(ctx, gameID)
	require.NoError(t, err)
	assert.False(t, changed, "only active games are abandoned")
}
