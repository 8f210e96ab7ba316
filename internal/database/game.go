// internal/database/game.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JulianC775/Gubs/internal/game"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrResultNotFound is returned by GetGameResult for an unknown game.
var ErrResultNotFound = errors.New("game result not found")

// PlayerResult is one seat's final standing.
type PlayerResult struct {
	PlayerID uuid.UUID `json:"playerId"`
	Name     string    `json:"name"`
	Seat     int       `json:"seat"`
	Score    int       `json:"score"`
	DidWin   bool      `json:"didWin"`
}

// GameResult is the row set written when a game ends.
type GameResult struct {
	GameID     uuid.UUID      `json:"gameId"`
	RoomCode   string         `json:"roomCode"`
	StartedAt  time.Time      `json:"startedAt"`
	EndedAt    time.Time      `json:"endedAt"`
	WinnerID   uuid.UUID      `json:"winnerId"`
	WinnerName string         `json:"winnerName"`
	Tiebreaker string         `json:"tiebreaker"`
	Players    []PlayerResult `json:"players"`
}

// NewGameResult captures the outcome of an ended game. The caller holds g.Mu.
func NewGameResult(g *game.Game) GameResult {
	res := GameResult{
		GameID:    g.ID,
		RoomCode:  g.RoomCode,
		StartedAt: g.StartedAt,
		EndedAt:   g.EndedAt,
	}
	if g.Winner != nil {
		res.WinnerID = g.Winner.PlayerID
		res.WinnerName = g.Winner.PlayerName
		res.Tiebreaker = g.Winner.Tiebreaker
	}
	for i, p := range g.Players {
		score := p.Score()
		if g.Winner != nil {
			if s, ok := g.Winner.Scores[p.ID]; ok {
				score = s
			}
		}
		res.Players = append(res.Players, PlayerResult{
			PlayerID: p.ID,
			Name:     p.Name,
			Seat:     i,
			Score:    score,
			DidWin:   g.Winner != nil && g.Winner.PlayerID == p.ID,
		})
	}
	return res
}

// ResultStore persists finished games to PostgreSQL.
type ResultStore struct {
	Pool *pgxpool.Pool
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// RecordGameResult upserts the game row and one result row per player in a single transaction.
func (s *ResultStore) RecordGameResult(ctx context.Context, res GameResult) error {
	err := pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, room_code, status, started_at, ended_at, winner_id, winner_name, tiebreaker)
			VALUES ($1, $2, 'ended', $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET room_code = $2, status = 'ended', started_at = $3,
				ended_at = $4, winner_id = $5, winner_name = $6, tiebreaker = $7
		`
		if _, e := tx.Exec(ctx, upsertGame, res.GameID, res.RoomCode, nullableTime(res.StartedAt),
			nullableTime(res.EndedAt), nullableUUID(res.WinnerID), res.WinnerName, res.Tiebreaker); e != nil {
			return e
		}

		for _, pr := range res.Players {
			q := `
				INSERT INTO game_results (game_id, player_id, player_name, seat, score, did_win)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (game_id, player_id)
				DO UPDATE SET player_name = $3, seat = $4, score = $5, did_win = $6
			`
			if _, e2 := tx.Exec(ctx, q, res.GameID, pr.PlayerID, pr.Name, pr.Seat, pr.Score, pr.DidWin); e2 != nil {
				return e2
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game or results: %w", err)
	}
	return nil
}

// GetGameResult loads a recorded game with its players in seat order.
func (s *ResultStore) GetGameResult(ctx context.Context, gameID uuid.UUID) (*GameResult, error) {
	res := GameResult{GameID: gameID}
	var startedAt, endedAt *time.Time
	var winnerID *uuid.UUID
	var winnerName *string
	err := s.Pool.QueryRow(ctx, `
		SELECT room_code, started_at, ended_at, winner_id, winner_name, tiebreaker
		FROM games WHERE id = $1
	`, gameID).Scan(&res.RoomCode, &startedAt, &endedAt, &winnerID, &winnerName, &res.Tiebreaker)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query game %s: %w", gameID, err)
	}
	if startedAt != nil {
		res.StartedAt = *startedAt
	}
	if endedAt != nil {
		res.EndedAt = *endedAt
	}
	if winnerID != nil {
		res.WinnerID = *winnerID
	}
	if winnerName != nil {
		res.WinnerName = *winnerName
	}

	rows, err := s.Pool.Query(ctx, `
		SELECT player_id, player_name, seat, score, did_win
		FROM game_results WHERE game_id = $1 ORDER BY seat
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query results %s: %w", gameID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var pr PlayerResult
		if err := rows.Scan(&pr.PlayerID, &pr.Name, &pr.Seat, &pr.Score, &pr.DidWin); err != nil {
			return nil, err
		}
		res.Players = append(res.Players, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &res, nil
}
