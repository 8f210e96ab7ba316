// internal/game/sync_state.go
package game

import (
	"time"

	"github.com/google/uuid"
)

// CardView is a face-up card as sent to clients.
type CardView struct {
	ID          string     `json:"id"`
	InstanceID  uuid.UUID  `json:"instanceId"`
	Name        string     `json:"name"`
	Type        CardType   `json:"type"`
	Subtype     string     `json:"subtype,omitempty"`
	Description string     `json:"description"`
	Protection  []CardView `json:"protectionCards,omitempty"`
	Trap        *CardView  `json:"trapCard,omitempty"`
	OwnerID     uuid.UUID  `json:"ownerId,omitempty"`
}

// PlayAreaView is a player's play area. Play areas are always public.
type PlayAreaView struct {
	Free          []CardView `json:"gubs"`
	Protected     []CardView `json:"protectedGubs"`
	Trapped       []CardView `json:"trappedGubs"`
	ActiveEffects []CardView `json:"activeEffects"`
}

// PlayerView is one player from the perspective of a viewer. Hand is nil unless the viewer
// owns it or has scouted it; HandCount is always present.
type PlayerView struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	HandCount     int          `json:"handCount"`
	Hand          []CardView   `json:"hand,omitempty"`
	PlayArea      PlayAreaView `json:"playArea"`
	Score         int          `json:"score"`
	IsCurrentTurn bool         `json:"isCurrentTurn"`
	IsReady       bool         `json:"isReady"`
	IsHost        bool         `json:"isHost"`
	Connected     bool         `json:"connected"`
}

// DeckView is the public part of the deck.
type DeckView struct {
	CardsRemaining    int       `json:"cardsRemaining"`
	DiscardPileSize   int       `json:"discardPileSize"`
	RemovedCardsCount int       `json:"removedCardsCount"`
	DrawnLetters      []string  `json:"drawnLetters"`
	TopDiscardCard    *CardView `json:"topDiscardCard,omitempty"`
}

// GameView is the state of a game as one viewer may see it.
type GameView struct {
	ID              uuid.UUID    `json:"id"`
	RoomCode        string       `json:"roomCode"`
	Status          Status       `json:"status"`
	MaxPlayers      int          `json:"maxPlayers"`
	TurnNumber      int          `json:"turnNumber"`
	CurrentPlayerID uuid.UUID    `json:"currentPlayerId,omitempty"`
	PendingEventID  uuid.UUID    `json:"pendingEventId,omitempty"`
	Players         []PlayerView `json:"players"`
	Deck            *DeckView    `json:"deck,omitempty"`
	Winner          *Winner      `json:"winner,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	StartedAt       *time.Time   `json:"startedAt,omitempty"`
	EndedAt         *time.Time   `json:"endedAt,omitempty"`
}

// Summary is a directory listing entry.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	RoomCode    string    `json:"roomCode"`
	Status      Status    `json:"status"`
	PlayerCount int       `json:"playerCount"`
	MaxPlayers  int       `json:"maxPlayers"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Summarize returns the directory entry for g.
func (g *Game) Summarize() Summary {
	return Summary{
		ID:          g.ID,
		RoomCode:    g.RoomCode,
		Status:      g.Status,
		PlayerCount: len(g.Players),
		MaxPlayers:  g.Rules.MaxPlayers,
		CreatedAt:   g.CreatedAt,
	}
}

// ViewFor builds the redacted state for viewer. Pass uuid.Nil for a spectator view with every
// hand hidden.
func (g *Game) ViewFor(viewer uuid.UUID) GameView {
	v := GameView{
		ID:             g.ID,
		RoomCode:       g.RoomCode,
		Status:         g.Status,
		MaxPlayers:     g.Rules.MaxPlayers,
		TurnNumber:     g.TurnNumber,
		PendingEventID: g.PendingEventID,
		Players:        make([]PlayerView, 0, len(g.Players)),
		Winner:         g.Winner,
		CreatedAt:      g.CreatedAt,
	}
	if !g.StartedAt.IsZero() {
		t := g.StartedAt
		v.StartedAt = &t
	}
	if !g.EndedAt.IsZero() {
		t := g.EndedAt
		v.EndedAt = &t
	}
	if cur := g.CurrentPlayer(); cur != nil {
		v.CurrentPlayerID = cur.ID
	}

	for i, p := range g.Players {
		pv := PlayerView{
			ID:            p.ID,
			Name:          p.Name,
			HandCount:     len(p.Hand),
			PlayArea:      g.playAreaView(p),
			Score:         p.Score(),
			IsCurrentTurn: p.IsCurrentTurn,
			IsReady:       p.IsReady,
			IsHost:        i == 0,
			Connected:     p.Connected,
		}
		if viewer != uuid.Nil && g.CanSeeHand(viewer, p.ID) {
			pv.Hand = g.cardViews(p.Hand)
		}
		v.Players = append(v.Players, pv)
	}

	if g.Deck != nil {
		dv := &DeckView{
			CardsRemaining:    g.Deck.Remaining(),
			DiscardPileSize:   len(g.Deck.DiscardPile),
			RemovedCardsCount: len(g.Deck.Removed),
			DrawnLetters:      append([]string{}, g.Deck.DrawnLetters...),
		}
		if top, ok := g.Deck.TopDiscard(); ok {
			cv := g.cardView(top)
			dv.TopDiscardCard = &cv
		}
		v.Deck = dv
	}
	return v
}

func (g *Game) cardView(c *Card) CardView {
	cv := CardView{
		ID:          c.ID,
		InstanceID:  c.InstanceID,
		Name:        c.Name,
		Type:        c.Type,
		Subtype:     c.Subtype,
		Description: c.Description,
		OwnerID:     c.OwnerID,
	}
	if c.IsProtected() {
		cv.Protection = g.cardViews(c.ProtectionIDs)
	}
	if c.IsTrapped() {
		t := g.cardView(g.Cards.Get(c.TrapID))
		cv.Trap = &t
	}
	return cv
}

func (g *Game) cardViews(ids []uuid.UUID) []CardView {
	out := make([]CardView, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.cardView(g.Cards.Get(id)))
	}
	return out
}

func (g *Game) playAreaView(p *Player) PlayAreaView {
	return PlayAreaView{
		Free:          g.cardViews(p.PlayArea.Free),
		Protected:     g.cardViews(p.PlayArea.Protected),
		Trapped:       g.cardViews(p.PlayArea.Trapped),
		ActiveEffects: g.cardViews(p.PlayArea.ActiveEffects),
	}
}
