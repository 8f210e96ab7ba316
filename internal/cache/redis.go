// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for game action logs.
const DefaultQueueName = "gubs_actions"

// DefaultSnapshotTTL bounds how long an abandoned game survives in Redis.
const DefaultSnapshotTTL = 24 * time.Hour

const snapshotPrefix = "gubs:game:"

// ErrNoSnapshot is returned by LoadSnapshot when nothing is stored for the game.
var ErrNoSnapshot = errors.New("no snapshot stored")

// ActionRecord is one accepted action, in the order the server applied it.
type ActionRecord struct {
	GameID        uuid.UUID              `json:"game_id"`
	ActionIndex   int                    `json:"action_index"`
	ActorID       uuid.UUID              `json:"actor_id"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// Client holds the Redis connection used for the action log and for game snapshots.
type Client struct {
	Rdb         *redis.Client
	QueueName   string
	SnapshotTTL time.Duration
}

// ConnectRedis dials addr, pings it and returns a Client with default queue and TTL.
func ConnectRedis(ctx context.Context, addr string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return New(rdb, DefaultQueueName, DefaultSnapshotTTL), nil
}

// New wraps an existing redis client. Empty or zero arguments fall back to the defaults.
func New(rdb *redis.Client, queue string, ttl time.Duration) *Client {
	if queue == "" {
		queue = DefaultQueueName
	}
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &Client{Rdb: rdb, QueueName: queue, SnapshotTTL: ttl}
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.Rdb.Close()
}

// PublishAction serializes the record to JSON, then pushes it to the action queue.
func (c *Client) PublishAction(ctx context.Context, record ActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := c.Rdb.RPush(ctx, c.QueueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", c.QueueName, err)
	}
	return nil
}

func snapshotKey(gameID uuid.UUID) string {
	return snapshotPrefix + gameID.String()
}

// SaveSnapshot stores the serialized game under its id, refreshing the TTL.
func (c *Client) SaveSnapshot(ctx context.Context, gameID uuid.UUID, data []byte) error {
	if err := c.Rdb.Set(ctx, snapshotKey(gameID), data, c.SnapshotTTL).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", gameID, err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot for one game, or ErrNoSnapshot.
func (c *Client) LoadSnapshot(ctx context.Context, gameID uuid.UUID) ([]byte, error) {
	data, err := c.Rdb.Get(ctx, snapshotKey(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", gameID, err)
	}
	return data, nil
}

// DeleteSnapshot drops a game's snapshot. Deleting a missing key is not an error.
func (c *Client) DeleteSnapshot(ctx context.Context, gameID uuid.UUID) error {
	if err := c.Rdb.Del(ctx, snapshotKey(gameID)).Err(); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", gameID, err)
	}
	return nil
}

// LoadSnapshots returns every stored snapshot. Keys that expire mid-scan are skipped.
func (c *Client) LoadSnapshots(ctx context.Context) ([][]byte, error) {
	var out [][]byte
	iter := c.Rdb.Scan(ctx, 0, snapshotPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := c.Rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load snapshot %s: %w", iter.Val(), err)
		}
		out = append(out, data)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan snapshots: %w", err)
	}
	return out, nil
}

// PopAction blocks up to timeout for the next queued action. It returns nil, nil when the
// queue stayed empty.
func (c *Client) PopAction(ctx context.Context, timeout time.Duration) (*ActionRecord, error) {
	res, err := c.Rdb.BLPop(ctx, timeout, c.QueueName).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("BLPop %s: %w", c.QueueName, err)
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return nil, nil
	}
	var record ActionRecord
	if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
		return nil, fmt.Errorf("invalid action record: %w", err)
	}
	return &record, nil
}
