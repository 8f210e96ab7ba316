// internal/database/action.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JulianC775/Gubs/internal/cache"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActionStore writes the action log drained from the Redis queue.
type ActionStore struct {
	Pool *pgxpool.Pool
}

// InsertActions writes a batch in one transaction. A game row is created on its first action;
// the room code comes from the create action when the batch carries it.
func (s *ActionStore) InsertActions(ctx context.Context, records []cache.ActionRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			if err := insertActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert action %s/%d: %w", rec.GameID, rec.ActionIndex, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx insert actions: %w", err)
	}
	return nil
}

func insertActionTx(ctx context.Context, tx pgx.Tx, rec cache.ActionRecord) error {
	roomCode, _ := rec.ActionPayload["roomCode"].(string)
	upsertGame := `
		INSERT INTO games (id, room_code, status)
		VALUES ($1, $2, 'active')
		ON CONFLICT (id) DO UPDATE SET room_code = CASE WHEN $2 = '' THEN games.room_code ELSE $2 END
	`
	if _, err := tx.Exec(ctx, upsertGame, rec.GameID, roomCode); err != nil {
		return err
	}

	payload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return err
	}
	createdAt := time.UnixMilli(rec.Timestamp)
	if rec.Timestamp == 0 {
		createdAt = time.Now()
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO game_actions (game_id, action_index, actor_id, action_type, action_payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.GameID, rec.ActionIndex, nullableUUID(rec.ActorID), rec.ActionType, payload, createdAt)
	return err
}

// MarkAbandoned flags a game that stopped receiving actions before it ended.
func (s *ActionStore) MarkAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE games
		SET status = 'abandoned', ended_at = NOW()
		WHERE id = $1 AND status = 'active'
	`, gameID)
	if err != nil {
		return false, fmt.Errorf("mark game %s abandoned: %w", gameID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountActions returns how many actions are logged for a game.
func (s *ActionStore) CountActions(ctx context.Context, gameID uuid.UUID) (int, error) {
	var n int
	err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_actions WHERE game_id = $1`, gameID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count actions %s: %w", gameID, err)
	}
	return n, nil
}
