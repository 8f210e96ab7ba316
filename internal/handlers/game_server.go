// internal/handlers/game_server.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/JulianC775/Gubs/internal/cache"
	"github.com/JulianC775/Gubs/internal/database"
	"github.com/JulianC775/Gubs/internal/game"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// maxRoomCodeAttempts bounds the retries on room code collisions.
const maxRoomCodeAttempts = 32

// ActionPublisher receives every accepted action in apply order.
type ActionPublisher interface {
	PublishAction(ctx context.Context, record cache.ActionRecord) error
}

// SnapshotStore persists full game snapshots for crash recovery.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, gameID uuid.UUID, data []byte) error
	DeleteSnapshot(ctx context.Context, gameID uuid.UUID) error
	LoadSnapshots(ctx context.Context) ([][]byte, error)
}

// ResultRecorder stores the outcome of finished games.
type ResultRecorder interface {
	RecordGameResult(ctx context.Context, res database.GameResult) error
}

// GameServer is the operation surface over the game store. Each operation locks the one game it
// touches, so games run in parallel while actions within a game are serialized.
type GameServer struct {
	Store game.Store
	Rules game.HouseRules
	Log   logrus.FieldLogger

	// Optional persistence. Nil disables each.
	Actions   ActionPublisher
	Snapshots SnapshotStore
	Results   ResultRecorder

	// PublicURL prefixes the join links encoded in room QR codes.
	PublicURL string

	mu          sync.Mutex
	sessions    map[uuid.UUID]map[*Session]struct{}
	actionIndex map[uuid.UUID]int
	recorded    map[uuid.UUID]bool
	newRoomCode func() string
	wg          sync.WaitGroup
}

// NewGameServer returns a server over store using rules as the defaults for new games.
func NewGameServer(store game.Store, rules game.HouseRules, logger logrus.FieldLogger) *GameServer {
	return &GameServer{
		Store:       store,
		Rules:       rules,
		Log:         logger,
		sessions:    make(map[uuid.UUID]map[*Session]struct{}),
		actionIndex: make(map[uuid.UUID]int),
		recorded:    make(map[uuid.UUID]bool),
		newRoomCode: GenerateRoomCode,
	}
}

// JoinResult is returned to a player who creates or joins a game.
type JoinResult struct {
	GameID   uuid.UUID     `json:"gameId"`
	RoomCode string        `json:"roomCode"`
	PlayerID uuid.UUID     `json:"playerId"`
	State    game.GameView `json:"gameState"`
}

// withGame runs fn with the game's lock held.
func (s *GameServer) withGame(gameID uuid.UUID, fn func(g *game.Game) error) error {
	g, ok := s.Store.Get(gameID)
	if !ok {
		return fmt.Errorf("%w: %s", game.ErrNotFound, gameID)
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return fn(g)
}

// CreateGame opens a lobby with the creator seated as host. maxPlayers of 0 keeps the default.
func (s *GameServer) CreateGame(creatorName string, maxPlayers int) (JoinResult, error) {
	rules := s.Rules
	if maxPlayers != 0 {
		rules.MaxPlayers = maxPlayers
	}
	return s.CreateGameWithRules(creatorName, rules)
}

// CreateGameWithRules is CreateGame with every house rule chosen by the caller.
func (s *GameServer) CreateGameWithRules(creatorName string, rules game.HouseRules) (JoinResult, error) {
	if strings.TrimSpace(creatorName) == "" {
		return JoinResult{}, game.ErrInvalidName
	}

	g, err := game.NewGame(s.newRoomCode(), rules)
	if err != nil {
		return JoinResult{}, err
	}
	host, err := g.AddPlayer(creatorName)
	if err != nil {
		return JoinResult{}, err
	}

	for attempt := 0; ; attempt++ {
		err = s.Store.Put(g)
		if err == nil {
			break
		}
		if !errors.Is(err, game.ErrRoomCodeTaken) || attempt >= maxRoomCodeAttempts {
			return JoinResult{}, err
		}
		g.RoomCode = s.newRoomCode()
	}

	g.Mu.Lock()
	defer g.Mu.Unlock()
	s.Log.WithFields(logrus.Fields{"game": g.ID, "room": g.RoomCode, "player": host.ID}).Info("game created")
	s.commit(g, host.ID, "create", map[string]interface{}{"name": host.Name, "roomCode": g.RoomCode, "maxPlayers": g.Rules.MaxPlayers})
	return JoinResult{GameID: g.ID, RoomCode: g.RoomCode, PlayerID: host.ID, State: g.ViewFor(host.ID)}, nil
}

// LookupGame returns the game as viewer sees it. uuid.Nil gives the spectator view.
func (s *GameServer) LookupGame(gameID, viewer uuid.UUID) (game.GameView, error) {
	var v game.GameView
	err := s.withGame(gameID, func(g *game.Game) error {
		v = g.ViewFor(viewer)
		return nil
	})
	return v, err
}

// LookupRoom is LookupGame by room code.
func (s *GameServer) LookupRoom(roomCode string, viewer uuid.UUID) (game.GameView, error) {
	g, ok := s.Store.GetByRoomCode(roomCode)
	if !ok {
		return game.GameView{}, fmt.Errorf("%w: room %q", game.ErrNotFound, roomCode)
	}
	return s.LookupGame(g.ID, viewer)
}

// JoinGame seats a new player in the lobby behind roomCode.
func (s *GameServer) JoinGame(roomCode, playerName string) (JoinResult, error) {
	g, ok := s.Store.GetByRoomCode(roomCode)
	if !ok {
		return JoinResult{}, fmt.Errorf("%w: room %q", game.ErrNotFound, roomCode)
	}
	var res JoinResult
	err := s.withGame(g.ID, func(g *game.Game) error {
		p, err := g.AddPlayer(playerName)
		if err != nil {
			return err
		}
		s.Log.WithFields(logrus.Fields{"game": g.ID, "room": g.RoomCode, "player": p.ID}).Info("player joined")
		s.commit(g, p.ID, "join", map[string]interface{}{"name": p.Name})
		res = JoinResult{GameID: g.ID, RoomCode: g.RoomCode, PlayerID: p.ID, State: g.ViewFor(p.ID)}
		return nil
	})
	return res, err
}

// SetReady flips a player's lobby ready flag.
func (s *GameServer) SetReady(gameID, playerID uuid.UUID, ready bool) (game.GameView, error) {
	var v game.GameView
	err := s.withGame(gameID, func(g *game.Game) error {
		if err := g.SetReady(playerID, ready); err != nil {
			return err
		}
		s.commit(g, playerID, "ready", map[string]interface{}{"ready": ready})
		v = g.ViewFor(playerID)
		return nil
	})
	return v, err
}

// StartGame deals the game. Only the host may start, and only once enough players are ready.
func (s *GameServer) StartGame(gameID, playerID uuid.UUID) (game.GameView, error) {
	var v game.GameView
	err := s.withGame(gameID, func(g *game.Game) error {
		if g.GetPlayer(playerID) == nil {
			return game.ErrPlayerNotFound
		}
		if host := g.Host(); host == nil || host.ID != playerID {
			return game.ErrNotHost
		}
		if g.Status == game.StatusLobby && g.ReadyCount() < g.Rules.MinPlayers {
			return fmt.Errorf("%w: %d of %d", game.ErrNotEnoughReady, g.ReadyCount(), g.Rules.MinPlayers)
		}
		if err := g.Start(); err != nil {
			return err
		}
		s.Log.WithFields(logrus.Fields{"game": g.ID, "room": g.RoomCode, "players": len(g.Players)}).Info("game started")
		s.commit(g, playerID, "start", nil)
		v = g.ViewFor(playerID)
		return nil
	})
	return v, err
}

// DrawCard draws for the current player. Other clients learn the card only when it is an event
// or a letter.
func (s *GameServer) DrawCard(gameID, playerID uuid.UUID) (game.DrawResult, error) {
	var res game.DrawResult
	err := s.withGame(gameID, func(g *game.Game) error {
		var err error
		res, err = g.DrawCard(playerID)
		if err != nil {
			return err
		}
		drawn := *res.Card
		res.Card = &drawn
		payload := map[string]interface{}{
			"isEvent":   res.IsEvent,
			"isLetter":  res.IsLetter,
			"gameEnded": res.GameEnded,
		}
		event := map[string]interface{}{
			"type":     "card_drawn",
			"playerId": playerID,
			"isEvent":  res.IsEvent,
			"isLetter": res.IsLetter,
		}
		if res.IsEvent || res.IsLetter {
			payload["cardId"] = res.Card.ID
			event["card"] = res.Card
		}
		s.broadcastExcept(g.ID, playerID, event)
		s.commit(g, playerID, "draw", payload)
		return nil
	})
	return res, err
}

// PlayCard plays a card from the player's hand against target.
func (s *GameServer) PlayCard(gameID, playerID, cardID uuid.UUID, target game.Target) (game.PlayResult, error) {
	var res game.PlayResult
	err := s.withGame(gameID, func(g *game.Game) error {
		var err error
		res, err = g.PlayCard(playerID, cardID, target)
		if err != nil {
			return err
		}
		for i, c := range res.Effect.RevealedHand {
			revealed := *c
			res.Effect.RevealedHand[i] = &revealed
		}
		s.Log.WithFields(logrus.Fields{"game": g.ID, "player": playerID, "effect": res.Effect.Kind}).Debug("card played")
		s.broadcastExcept(g.ID, playerID, map[string]interface{}{"type": "card_played", "effect": res.Effect.Public()})
		s.sendTo(g.ID, playerID, map[string]interface{}{"type": "card_played", "effect": res.Effect})
		s.commit(g, playerID, "play", map[string]interface{}{"cardId": cardID, "target": target, "effect": res.Effect.Public()})
		return nil
	})
	return res, err
}

// EndTurn passes the turn. Players over the hand limit must play cards down first.
func (s *GameServer) EndTurn(gameID, playerID uuid.UUID) (game.GameView, error) {
	var v game.GameView
	err := s.withGame(gameID, func(g *game.Game) error {
		if err := g.EndTurn(playerID); err != nil {
			return err
		}
		s.commit(g, playerID, "end_turn", map[string]interface{}{"turn": g.TurnNumber})
		v = g.ViewFor(playerID)
		return nil
	})
	return v, err
}

// LeaveGame removes the player. A lobby left empty is dropped from the store.
func (s *GameServer) LeaveGame(gameID, playerID uuid.UUID) error {
	return s.withGame(gameID, func(g *game.Game) error {
		if err := g.RemovePlayer(playerID); err != nil {
			return err
		}
		s.Log.WithFields(logrus.Fields{"game": g.ID, "player": playerID, "status": g.Status}).Info("player left")
		s.commit(g, playerID, "leave", nil)
		if len(g.Players) == 0 {
			s.drop(g)
		}
		return nil
	})
}

// Disconnect marks the player offline. Seat, hand and turn order are kept.
func (s *GameServer) Disconnect(gameID, playerID uuid.UUID) error {
	return s.withGame(gameID, func(g *game.Game) error {
		p := g.GetPlayer(playerID)
		if p == nil {
			return game.ErrPlayerNotFound
		}
		p.Connected = false
		s.broadcastState(g)
		return nil
	})
}

// Reconnect marks the player online again and returns their view.
func (s *GameServer) Reconnect(gameID, playerID uuid.UUID) (game.GameView, error) {
	var v game.GameView
	err := s.withGame(gameID, func(g *game.Game) error {
		p := g.GetPlayer(playerID)
		if p == nil {
			return game.ErrPlayerNotFound
		}
		p.Connected = true
		s.broadcastState(g)
		v = g.ViewFor(playerID)
		return nil
	})
	return v, err
}

// ListGames returns a directory entry per game, ordered by room code.
func (s *GameServer) ListGames() []game.Summary {
	games := s.Store.List()
	out := make([]game.Summary, 0, len(games))
	for _, g := range games {
		g.Mu.Lock()
		out = append(out, g.Summarize())
		g.Mu.Unlock()
	}
	return out
}

// RestoreSnapshots loads every persisted game into the store and returns how many were restored.
// Unreadable snapshots are logged and skipped.
func (s *GameServer) RestoreSnapshots(ctx context.Context) (int, error) {
	if s.Snapshots == nil {
		return 0, nil
	}
	blobs, err := s.Snapshots.LoadSnapshots(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, data := range blobs {
		g, err := game.UnmarshalSnapshot(data)
		if err != nil {
			s.Log.WithError(err).Warn("skipping unreadable snapshot")
			continue
		}
		for _, p := range g.Players {
			p.Connected = false
		}
		if err := s.Store.Put(g); err != nil {
			s.Log.WithError(err).WithField("game", g.ID).Warn("skipping snapshot")
			continue
		}
		n++
	}
	return n, nil
}

// Wait blocks until background persistence has finished.
func (s *GameServer) Wait() {
	s.wg.Wait()
}

// commit runs after every accepted mutation with g.Mu held: it logs the action, saves the
// snapshot, records a just-ended game and pushes fresh state to every session.
func (s *GameServer) commit(g *game.Game, actorID uuid.UUID, action string, payload map[string]interface{}) {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	s.mu.Lock()
	s.actionIndex[g.ID]++
	idx := s.actionIndex[g.ID]
	s.mu.Unlock()

	if s.Actions != nil {
		record := cache.ActionRecord{
			GameID:        g.ID,
			ActionIndex:   idx,
			ActorID:       actorID,
			ActionType:    action,
			ActionPayload: payload,
			Timestamp:     time.Now().UnixMilli(),
		}
		s.wg.Add(1)
		go func(rec cache.ActionRecord) {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.Actions.PublishAction(ctx, rec); err != nil {
				s.Log.WithError(err).WithFields(logrus.Fields{"game": rec.GameID, "action": rec.ActionType}).Warn("failed to publish action")
			}
		}(record)
	}

	if s.Snapshots != nil {
		s.saveSnapshot(g)
	}

	if g.Status == game.StatusEnded {
		s.recordResult(g)
	}

	s.broadcastState(g)
}

// saveSnapshot writes synchronously so snapshots land in apply order.
func (s *GameServer) saveSnapshot(g *game.Game) {
	data, err := g.MarshalSnapshot()
	if err != nil {
		s.Log.WithError(err).WithField("game", g.ID).Error("failed to marshal snapshot")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Snapshots.SaveSnapshot(ctx, g.ID, data); err != nil {
		s.Log.WithError(err).WithField("game", g.ID).Warn("failed to save snapshot")
	}
}

// recordResult stores the outcome once per game.
func (s *GameServer) recordResult(g *game.Game) {
	s.mu.Lock()
	done := s.recorded[g.ID]
	s.recorded[g.ID] = true
	s.mu.Unlock()
	if done {
		return
	}
	s.Log.WithFields(logrus.Fields{"game": g.ID, "room": g.RoomCode, "duration": g.Duration()}).Info("game ended")
	if s.Results == nil {
		return
	}
	res := database.NewGameResult(g)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Results.RecordGameResult(ctx, res); err != nil {
			s.Log.WithError(err).WithField("game", res.GameID).Error("failed to record game result")
		}
	}()
}

// drop removes an abandoned game from the store and from persistence.
func (s *GameServer) drop(g *game.Game) {
	s.Store.Remove(g.ID)
	s.mu.Lock()
	delete(s.actionIndex, g.ID)
	delete(s.recorded, g.ID)
	s.mu.Unlock()
	s.closeSessions(g.ID)
	if s.Snapshots != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.Snapshots.DeleteSnapshot(ctx, g.ID); err != nil {
			s.Log.WithError(err).WithField("game", g.ID).Warn("failed to delete snapshot")
		}
	}
	s.Log.WithFields(logrus.Fields{"game": g.ID, "room": g.RoomCode}).Info("empty game removed")
}
