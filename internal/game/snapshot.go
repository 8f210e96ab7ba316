// internal/game/snapshot.go
package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the complete serializable state of a game: every card, deck order, hands,
// play areas, turn pointer, status and the letter log.
type Snapshot struct {
	ID                 uuid.UUID                        `json:"id"`
	RoomCode           string                           `json:"roomCode"`
	Status             Status                           `json:"status"`
	Rules              HouseRules                       `json:"rules"`
	Players            []*Player                        `json:"players"`
	CurrentPlayerIndex int                              `json:"currentPlayerIndex"`
	TurnNumber         int                              `json:"turnNumber"`
	Winner             *Winner                          `json:"winner,omitempty"`
	CreatedAt          time.Time                        `json:"createdAt"`
	StartedAt          time.Time                        `json:"startedAt"`
	EndedAt            time.Time                        `json:"endedAt"`
	Cards              []*Card                          `json:"cards"`
	Deck               *Deck                            `json:"deck,omitempty"`
	PendingEventID     uuid.UUID                        `json:"pendingEventId"`
	Scouted            map[uuid.UUID]map[uuid.UUID]bool `json:"scouted,omitempty"`
}

// Snapshot captures g. The caller holds g.Mu.
func (g *Game) Snapshot() Snapshot {
	cards := make([]*Card, 0, len(g.Cards))
	for _, c := range g.Cards {
		cards = append(cards, c)
	}
	return Snapshot{
		ID:                 g.ID,
		RoomCode:           g.RoomCode,
		Status:             g.Status,
		Rules:              g.Rules,
		Players:            g.Players,
		CurrentPlayerIndex: g.CurrentPlayerIndex,
		TurnNumber:         g.TurnNumber,
		Winner:             g.Winner,
		CreatedAt:          g.CreatedAt,
		StartedAt:          g.StartedAt,
		EndedAt:            g.EndedAt,
		Cards:              cards,
		Deck:               g.Deck,
		PendingEventID:     g.PendingEventID,
		Scouted:            g.scouted,
	}
}

// MarshalSnapshot encodes g as JSON.
func (g *Game) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(g.Snapshot())
}

// UnmarshalSnapshot decodes and restores a game encoded with MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (*Game, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return Restore(s)
}

// Restore rebuilds a game from a snapshot and audits it. Card templates for Cricket Song
// lookups come from the standard catalog.
func Restore(s Snapshot) (*Game, error) {
	if err := s.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	switch s.Status {
	case StatusLobby, StatusActive, StatusEnded:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidSnapshot, s.Status)
	}

	cards := make(Arena, len(s.Cards))
	for _, c := range s.Cards {
		if c == nil || c.InstanceID == uuid.Nil {
			return nil, fmt.Errorf("%w: card without instance id", ErrInvalidSnapshot)
		}
		cards.Add(c)
	}

	g := &Game{
		ID:                 s.ID,
		RoomCode:           s.RoomCode,
		Status:             s.Status,
		Rules:              s.Rules,
		Catalog:            StandardCatalog,
		Players:            s.Players,
		CurrentPlayerIndex: s.CurrentPlayerIndex,
		TurnNumber:         s.TurnNumber,
		Winner:             s.Winner,
		CreatedAt:          s.CreatedAt,
		StartedAt:          s.StartedAt,
		EndedAt:            s.EndedAt,
		Cards:              cards,
		Deck:               s.Deck,
		PendingEventID:     s.PendingEventID,
		scouted:            s.Scouted,
		rng:                rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if g.Players == nil {
		g.Players = []*Player{}
	}
	if g.scouted == nil {
		g.scouted = map[uuid.UUID]map[uuid.UUID]bool{}
	}
	for _, p := range g.Players {
		if p == nil {
			return nil, fmt.Errorf("%w: nil player", ErrInvalidSnapshot)
		}
		p.cards = cards
	}
	if g.Deck != nil {
		g.Deck.cards = cards
		g.Deck.rng = g.rng
	} else if g.Status != StatusLobby {
		return nil, fmt.Errorf("%w: %s game without a deck", ErrInvalidSnapshot, g.Status)
	}

	if err := g.Audit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return g, nil
}
