// internal/handlers/session.go
package handlers

import (
	"github.com/JulianC775/Gubs/internal/game"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const sessionBuffer = 32

// Session is one websocket client attached to a game. PlayerID is uuid.Nil for spectators.
type Session struct {
	GameID   uuid.UUID
	PlayerID uuid.UUID
	Cancel   func()
	OutChan  chan map[string]interface{}

	log logrus.FieldLogger
}

func newSession(gameID, playerID uuid.UUID, cancel func(), logger logrus.FieldLogger) *Session {
	return &Session{
		GameID:   gameID,
		PlayerID: playerID,
		Cancel:   cancel,
		OutChan:  make(chan map[string]interface{}, sessionBuffer),
		log:      logger,
	}
}

// Write pushes a message onto the session's OutChan without blocking. Logs if dropped.
func (sess *Session) Write(msg map[string]interface{}) {
	select {
	case sess.OutChan <- msg:
	default:
		msgType, _ := msg["type"].(string)
		sess.log.WithFields(logrus.Fields{"game": sess.GameID, "player": sess.PlayerID}).
			Warnf("OutChan full. Dropped message type '%s'.", msgType)
	}
}

// WriteError sends a structured error with its machine code.
func (sess *Session) WriteError(err error) {
	sess.Write(map[string]interface{}{
		"type":    "error",
		"code":    game.ErrorCode(err),
		"message": err.Error(),
	})
}

// register attaches sess to its game.
func (s *GameServer) register(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sessions[sess.GameID]
	if !ok {
		set = make(map[*Session]struct{})
		s.sessions[sess.GameID] = set
	}
	set[sess] = struct{}{}
}

// unregister detaches sess and reports how many sessions its player still has open.
func (s *GameServer) unregister(sess *Session) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.sessions[sess.GameID]
	delete(set, sess)
	if len(set) == 0 {
		delete(s.sessions, sess.GameID)
	}
	remaining := 0
	for other := range set {
		if other.PlayerID == sess.PlayerID {
			remaining++
		}
	}
	return remaining
}

func (s *GameServer) sessionsFor(gameID uuid.UUID) []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Session, 0, len(s.sessions[gameID]))
	for sess := range s.sessions[gameID] {
		out = append(out, sess)
	}
	return out
}

// broadcastState pushes each session its own redacted view. The caller holds g.Mu.
func (s *GameServer) broadcastState(g *game.Game) {
	for _, sess := range s.sessionsFor(g.ID) {
		sess.Write(map[string]interface{}{
			"type":  "game_state",
			"state": g.ViewFor(sess.PlayerID),
		})
	}
}

// broadcastExcept sends msg to every session of the game but playerID's.
func (s *GameServer) broadcastExcept(gameID, playerID uuid.UUID, msg map[string]interface{}) {
	for _, sess := range s.sessionsFor(gameID) {
		if sess.PlayerID != playerID {
			sess.Write(msg)
		}
	}
}

// sendTo sends msg to playerID's sessions only.
func (s *GameServer) sendTo(gameID, playerID uuid.UUID, msg map[string]interface{}) {
	for _, sess := range s.sessionsFor(gameID) {
		if sess.PlayerID == playerID {
			sess.Write(msg)
		}
	}
}

// closeSessions cancels every session of a game that no longer exists.
func (s *GameServer) closeSessions(gameID uuid.UUID) {
	s.mu.Lock()
	set := s.sessions[gameID]
	delete(s.sessions, gameID)
	s.mu.Unlock()
	for sess := range set {
		sess.Cancel()
	}
}
