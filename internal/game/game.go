// internal/game/game.go
package game

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a game. It only moves forward.
type Status string

const (
	StatusLobby  Status = "lobby"
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Tiebreakers recorded on the winner.
const (
	TiebreakNone                = ""
	TiebreakEsteemedElder       = "esteemed-elder"
	TiebreakHandCount           = "hand-count"
	TiebreakHandCountAfterElder = "hand-count-after-elder"
	TiebreakSeatingOrder        = "seating-order"
)

// Winner is the end-of-game result.
type Winner struct {
	PlayerID   uuid.UUID         `json:"playerId"`
	PlayerName string            `json:"playerName"`
	Tiebreaker string            `json:"tiebreaker,omitempty"`
	Scores     map[uuid.UUID]int `json:"scores"`
}

// DrawResult describes the outcome of a draw.
type DrawResult struct {
	Card      *Card `json:"card"`
	IsEvent   bool  `json:"isEvent"`
	IsLetter  bool  `json:"isLetter"`
	GameEnded bool  `json:"gameEnded"`
}

// Game holds the entire state for a single Gubs room in memory.
//
// Game is not safe for concurrent use. Callers hold Mu around every operation, the same way
// for reads and writes.
type Game struct {
	ID       uuid.UUID
	RoomCode string
	Status   Status
	Rules    HouseRules
	Catalog  []Template

	Players            []*Player
	CurrentPlayerIndex int
	TurnNumber         int
	Winner             *Winner

	CreatedAt time.Time
	StartedAt time.Time
	EndedAt   time.Time

	Cards Arena
	Deck  *Deck

	// PendingEventID is the Event drawn this turn, the only card a Flop Boat may send back.
	PendingEventID uuid.UUID

	// scouted[viewer][target] grants the viewer sight of target's hand until the turn advances.
	scouted map[uuid.UUID]map[uuid.UUID]bool
	rng     *rand.Rand

	Mu sync.Mutex
}

// NewGame creates an empty lobby with the given room code and rules.
func NewGame(roomCode string, rules HouseRules) (*Game, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Game{
		ID:         uuid.New(),
		RoomCode:   roomCode,
		Status:     StatusLobby,
		Rules:      rules,
		Catalog:    StandardCatalog,
		Players:    []*Player{},
		TurnNumber: 1,
		CreatedAt:  time.Now(),
		Cards:      Arena{},
		scouted:    map[uuid.UUID]map[uuid.UUID]bool{},
	}, nil
}

// Host is the player in seat 0, or nil for an empty room.
func (g *Game) Host() *Player {
	if len(g.Players) == 0 {
		return nil
	}
	return g.Players[0]
}

// GetPlayer finds a seated player by id.
func (g *Game) GetPlayer(id uuid.UUID) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) seatOf(id uuid.UUID) int {
	for i, p := range g.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// CurrentPlayer returns the player whose turn it is while the game is active.
func (g *Game) CurrentPlayer() *Player {
	if g.Status != StatusActive || len(g.Players) == 0 {
		return nil
	}
	return g.Players[g.CurrentPlayerIndex]
}

// AddPlayer seats a new player. Only allowed in the lobby.
func (g *Game) AddPlayer(name string) (*Player, error) {
	if g.Status != StatusLobby {
		return nil, ErrAlreadyStarted
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if len(g.Players) >= g.Rules.MaxPlayers {
		return nil, fmt.Errorf("%w: %d/%d seats taken", ErrFull, len(g.Players), g.Rules.MaxPlayers)
	}
	for _, p := range g.Players {
		if p.Name == name {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}
	p := newPlayer(name, g.Cards)
	g.Players = append(g.Players, p)
	return p, nil
}

// SetReady toggles a player's lobby ready flag.
func (g *Game) SetReady(playerID uuid.UUID, ready bool) error {
	p := g.GetPlayer(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if g.Status != StatusLobby {
		return ErrAlreadyStarted
	}
	p.IsReady = ready
	return nil
}

// ReadyCount is the number of players flagged ready.
func (g *Game) ReadyCount() int {
	n := 0
	for _, p := range g.Players {
		if p.IsReady {
			n++
		}
	}
	return n
}

// RemovePlayer takes a player out of the game in any state. Once cards are dealt, everything
// the player holds goes to the removed pile. An active game that drops below the minimum
// player count ends immediately.
func (g *Game) RemovePlayer(playerID uuid.UUID) error {
	idx := g.seatOf(playerID)
	if idx < 0 {
		return ErrPlayerNotFound
	}
	p := g.Players[idx]

	if g.Deck != nil {
		for _, id := range p.Hand {
			g.Deck.Remove(g.Cards.Get(id))
		}
		p.Hand = []uuid.UUID{}
		for _, c := range p.RetrieveAll() {
			g.Deck.Remove(c)
		}
	}

	wasCurrent := g.Status == StatusActive && idx == g.CurrentPlayerIndex
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	delete(g.scouted, playerID)
	for _, targets := range g.scouted {
		delete(targets, playerID)
	}

	if g.Status != StatusActive {
		return nil
	}
	if idx < g.CurrentPlayerIndex {
		g.CurrentPlayerIndex--
	}
	if len(g.Players) > 0 {
		g.CurrentPlayerIndex %= len(g.Players)
		if wasCurrent {
			g.PendingEventID = uuid.Nil
			g.Players[g.CurrentPlayerIndex].IsCurrentTurn = true
		}
	} else {
		g.CurrentPlayerIndex = 0
	}
	if len(g.Players) < g.Rules.MinPlayers {
		g.EndGame()
	}
	return nil
}

// Start builds a fresh deck, deals every player one Gub and then StartingHand cards round-robin,
// and hands the first turn to seat 0.
func (g *Game) Start() error {
	if g.Status != StatusLobby {
		return ErrAlreadyStarted
	}
	if len(g.Players) < g.Rules.MinPlayers {
		return fmt.Errorf("%w: need at least %d", ErrNotEnoughPlayers, g.Rules.MinPlayers)
	}

	seed := g.Rules.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	cards := Arena{}
	deck, err := BuildDeck(g.Catalog, cards, rng)
	if err != nil {
		return err
	}
	gubs := 0
	for _, c := range cards {
		if c.IsGub() {
			gubs++
		}
	}
	if gubs < len(g.Players) {
		return fmt.Errorf("%w: %d gubs for %d players", ErrNotEnoughGubs, gubs, len(g.Players))
	}

	g.Cards = cards
	g.Deck = deck
	g.rng = rng
	for _, p := range g.Players {
		p.cards = cards
		p.Hand = []uuid.UUID{}
		p.PlayArea = emptyPlayArea()
	}

	for _, p := range g.Players {
		for {
			c, _ := deck.takeFront()
			if c.IsGub() {
				p.PlayGub(c)
				break
			}
			deck.PutBottom(c)
		}
	}
	deck.Reshuffle()

	for round := 0; round < g.Rules.StartingHand; round++ {
		for _, p := range g.Players {
			if c, ok := deck.Draw(); ok {
				p.AddToHand(c)
			}
		}
	}

	for _, p := range g.Players {
		p.IsCurrentTurn = false
	}
	g.CurrentPlayerIndex = 0
	g.Players[0].IsCurrentTurn = true
	g.TurnNumber = 1
	g.Status = StatusActive
	g.StartedAt = time.Now()
	return nil
}

// NextTurn passes the turn to the next seat.
func (g *Game) NextTurn() error {
	if g.Status != StatusActive {
		return ErrNotActive
	}
	g.Players[g.CurrentPlayerIndex].IsCurrentTurn = false
	g.CurrentPlayerIndex = (g.CurrentPlayerIndex + 1) % len(g.Players)
	g.Players[g.CurrentPlayerIndex].IsCurrentTurn = true
	g.TurnNumber++
	g.PendingEventID = uuid.Nil
	g.scouted = map[uuid.UUID]map[uuid.UUID]bool{}
	return nil
}

// EndTurn ends the current player's turn, refusing while their hand is over the limit.
func (g *Game) EndTurn(playerID uuid.UUID) error {
	p, err := g.currentActor(playerID)
	if err != nil {
		return err
	}
	if len(p.Hand) > g.Rules.HandLimit {
		return fmt.Errorf("%w: %d cards, limit %d", ErrHandOverLimit, len(p.Hand), g.Rules.HandLimit)
	}
	return g.NextTurn()
}

func (g *Game) currentActor(playerID uuid.UUID) (*Player, error) {
	if g.Status != StatusActive {
		return nil, ErrNotActive
	}
	p := g.GetPlayer(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if !p.IsCurrentTurn {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// DrawCard draws the front card for the current player. Events go straight to the discard
// pile and become the pending event; everything else goes to hand. Drawing the last of the
// three letters ends the game.
func (g *Game) DrawCard(playerID uuid.UUID) (DrawResult, error) {
	p, err := g.currentActor(playerID)
	if err != nil {
		return DrawResult{}, err
	}
	if g.Deck.Remaining() == 0 {
		return DrawResult{}, ErrDeckEmpty
	}

	c, _ := g.Deck.Draw()
	res := DrawResult{Card: c, IsEvent: c.IsEvent(), IsLetter: c.IsLetter()}
	g.PendingEventID = uuid.Nil
	if c.IsEvent() {
		g.Deck.Discard(c)
		g.PendingEventID = c.InstanceID
	} else {
		p.AddToHand(c)
	}

	if g.Deck.IsGameEnding() {
		g.EndGame()
		res.GameEnded = true
	}
	return res, nil
}

// PlayCard validates and executes a card from the player's hand.
func (g *Game) PlayCard(playerID, cardID uuid.UUID, target Target) (PlayResult, error) {
	return g.ExecutePlay(playerID, cardID, target)
}

// EndGame ends the game and determines the winner. Calling it again returns the same result.
func (g *Game) EndGame() *Winner {
	if g.Status == StatusEnded {
		return g.Winner
	}
	g.Status = StatusEnded
	g.EndedAt = time.Now()
	g.PendingEventID = uuid.Nil
	g.Winner = g.determineWinner()
	return g.Winner
}

// Duration is the time between start and end, or until now for a running game.
func (g *Game) Duration() time.Duration {
	if g.StartedAt.IsZero() {
		return 0
	}
	if g.EndedAt.IsZero() {
		return time.Since(g.StartedAt)
	}
	return g.EndedAt.Sub(g.StartedAt)
}

// determineWinner picks the top scorer. Ties go to the Esteemed Elder holder, then to the
// fewest cards in hand, then to the earliest seat.
func (g *Game) determineWinner() *Winner {
	w := &Winner{Scores: make(map[uuid.UUID]int, len(g.Players))}
	if len(g.Players) == 0 {
		return w
	}

	best := -1
	var tied []*Player
	for _, p := range g.Players {
		s := p.Score()
		w.Scores[p.ID] = s
		switch {
		case s > best:
			best = s
			tied = []*Player{p}
		case s == best:
			tied = append(tied, p)
		}
	}

	pick := func(p *Player, tiebreak string) *Winner {
		w.PlayerID = p.ID
		w.PlayerName = p.Name
		w.Tiebreaker = tiebreak
		return w
	}

	if len(tied) == 1 {
		return pick(tied[0], TiebreakNone)
	}

	var elders []*Player
	for _, p := range tied {
		if p.HasEsteemedElder() {
			elders = append(elders, p)
		}
	}
	if len(elders) == 1 {
		return pick(elders[0], TiebreakEsteemedElder)
	}

	pool, tiebreak := tied, TiebreakHandCount
	if len(elders) > 1 {
		pool, tiebreak = elders, TiebreakHandCountAfterElder
	}
	var fewest []*Player
	for _, p := range pool {
		switch {
		case len(fewest) == 0 || len(p.Hand) < len(fewest[0].Hand):
			fewest = []*Player{p}
		case len(p.Hand) == len(fewest[0].Hand):
			fewest = append(fewest, p)
		}
	}
	if len(fewest) == 1 {
		return pick(fewest[0], tiebreak)
	}
	// pool is in seating order, so fewest[0] holds the earliest seat
	return pick(fewest[0], TiebreakSeatingOrder)
}

// grantScout lets viewer see target's hand until the turn advances.
func (g *Game) grantScout(viewer, target uuid.UUID) {
	if g.scouted[viewer] == nil {
		g.scouted[viewer] = map[uuid.UUID]bool{}
	}
	g.scouted[viewer][target] = true
}

// CanSeeHand reports whether viewer may see owner's hand.
func (g *Game) CanSeeHand(viewer, owner uuid.UUID) bool {
	return viewer == owner || g.scouted[viewer][owner]
}

// Audit checks the structural invariants: every card instance sits in exactly one zone, play
// buckets are disjoint and consistent with protection and trap links, and exactly one player
// holds the turn while the game is active.
func (g *Game) Audit() error {
	seen := make(map[uuid.UUID]string, len(g.Cards))
	place := func(id uuid.UUID, zone string) error {
		if g.Cards.Get(id) == nil {
			return fmt.Errorf("card %s in %s is not in the arena", id, zone)
		}
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("card %s is in both %s and %s", id, prev, zone)
		}
		seen[id] = zone
		return nil
	}
	placeAll := func(ids []uuid.UUID, zone string) error {
		for _, id := range ids {
			if err := place(id, zone); err != nil {
				return err
			}
		}
		return nil
	}

	if g.Deck != nil {
		for zone, ids := range map[string][]uuid.UUID{"draw pile": g.Deck.DrawPile, "discard pile": g.Deck.DiscardPile, "removed pile": g.Deck.Removed} {
			if err := placeAll(ids, zone); err != nil {
				return err
			}
		}
	}

	current := 0
	for _, p := range g.Players {
		if p.IsCurrentTurn {
			current++
		}
		if err := placeAll(p.Hand, p.Name+" hand"); err != nil {
			return err
		}
		if err := placeAll(p.PlayArea.ActiveEffects, p.Name+" effects"); err != nil {
			return err
		}
		buckets := []struct {
			name string
			ids  []uuid.UUID
		}{{"free", p.PlayArea.Free}, {"protected", p.PlayArea.Protected}, {"trapped", p.PlayArea.Trapped}}
		for _, b := range buckets {
			for _, id := range b.ids {
				if err := place(id, p.Name+" "+b.name); err != nil {
					return err
				}
				gub := g.Cards.Get(id)
				if !gub.IsGub() {
					return fmt.Errorf("non-gub card %s in %s %s bucket", id, p.Name, b.name)
				}
				if gub.IsProtected() != (b.name == "protected") {
					return fmt.Errorf("gub %s protection does not match %s bucket", id, b.name)
				}
				if gub.IsTrapped() != (b.name == "trapped") {
					return fmt.Errorf("gub %s trap does not match %s bucket", id, b.name)
				}
				if err := placeAll(gub.ProtectionIDs, "protection of "+id.String()); err != nil {
					return err
				}
				if gub.IsTrapped() {
					if err := place(gub.TrapID, "trap of "+id.String()); err != nil {
						return err
					}
				}
			}
		}
	}

	if len(seen) != len(g.Cards) {
		return fmt.Errorf("%d of %d cards are in a zone", len(seen), len(g.Cards))
	}
	if g.Status == StatusActive {
		if current != 1 {
			return fmt.Errorf("%d players hold the turn", current)
		}
		if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.Players) || !g.Players[g.CurrentPlayerIndex].IsCurrentTurn {
			return fmt.Errorf("turn pointer %d does not match the current player", g.CurrentPlayerIndex)
		}
	}
	return nil
}
