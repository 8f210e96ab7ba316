// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JulianC775/Gubs/internal/game"
	"github.com/JulianC775/Gubs/internal/middleware"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Subprotocol is the websocket subprotocol clients must request.
const Subprotocol = "gubs"

var errSpectator = errors.New("spectators cannot act")

// ClientMessage is an incoming websocket message. Which fields matter depends on Type.
type ClientMessage struct {
	Type   string      `json:"type"`
	Ready  bool        `json:"ready,omitempty"`
	CardID uuid.UUID   `json:"cardId,omitempty"`
	Target game.Target `json:"target,omitempty"`
}

// GameWSHandler upgrades /games/{id}/ws. With ?playerId= the client acts as that seated player;
// without it the client spectates. Every state change is pushed as that viewer's redacted view.
func GameWSHandler(s *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}
		playerID := uuid.Nil
		if raw := r.URL.Query().Get("playerId"); raw != "" {
			if playerID, err = uuid.Parse(raw); err != nil {
				http.Error(w, "invalid player id", http.StatusBadRequest)
				return
			}
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			s.Log.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the gubs subprotocol")
			return
		}

		logger := s.Log.WithFields(logrus.Fields{"game": gameID, "player": playerID})
		var initial game.GameView
		if playerID != uuid.Nil {
			initial, err = s.Reconnect(gameID, playerID)
		} else {
			initial, err = s.LookupGame(gameID, uuid.Nil)
		}
		switch {
		case errors.Is(err, game.ErrNotFound):
			c.Close(InvalidGameIDError, "game does not exist")
			return
		case errors.Is(err, game.ErrPlayerNotFound):
			c.Close(InvalidPlayerError, "player is not in this game")
			return
		case err != nil:
			logger.WithError(err).Error("websocket setup failed")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		sess := newSession(gameID, playerID, cancel, logger)
		s.register(sess)
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		sess.Write(map[string]interface{}{"type": "game_state", "state": initial})

		go writePump(ctx, c, sess, logger)
		readErr := readPump(ctx, c, s, sess, logger)

		remaining := s.unregister(sess)
		if playerID != uuid.Nil && remaining == 0 {
			if err := s.Disconnect(gameID, playerID); err != nil && !errors.Is(err, game.ErrNotFound) && !errors.Is(err, game.ErrPlayerNotFound) {
				logger.WithError(err).Warn("disconnect failed")
			}
		}
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readPump handles incoming messages until the socket closes, the context ends, or the player
// leaves. It returns the read error for abnormal closures and nil otherwise.
func readPump(ctx context.Context, c *websocket.Conn, s *GameServer, sess *Session, logger logrus.FieldLogger) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				return nil
			}
			if ctx.Err() != nil || strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			logger.Warnf("Read error: %v (CloseStatus: %d)", err, closeStatus)
			return err
		}

		if typ != websocket.MessageText {
			logger.Warnf("Received non-text message type %d. Ignoring.", typ)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid json: %v", err)
			sess.Write(map[string]interface{}{"type": "error", "code": "bad_request", "message": "Invalid JSON format"})
			continue
		}

		if done := s.handleClientMessage(sess, msg, logger); done {
			return nil
		}
	}
}

// handleClientMessage routes one message to the operation surface. It reports true once the
// session should end.
func (s *GameServer) handleClientMessage(sess *Session, msg ClientMessage, logger logrus.FieldLogger) bool {
	logger.Debugf("Received action '%s'", msg.Type)

	switch msg.Type {
	case "ping":
		sess.Write(map[string]interface{}{"type": "pong"})
		return false
	case "get_state":
		v, err := s.LookupGame(sess.GameID, sess.PlayerID)
		if err != nil {
			sess.WriteError(err)
			return false
		}
		sess.Write(map[string]interface{}{"type": "game_state", "state": v})
		return false
	}

	if sess.PlayerID == uuid.Nil {
		sess.WriteError(errSpectator)
		return false
	}

	var err error
	switch msg.Type {
	case "ready":
		_, err = s.SetReady(sess.GameID, sess.PlayerID, msg.Ready)
	case "start":
		_, err = s.StartGame(sess.GameID, sess.PlayerID)
	case "draw":
		var res game.DrawResult
		if res, err = s.DrawCard(sess.GameID, sess.PlayerID); err == nil {
			sess.Write(map[string]interface{}{"type": "draw_result", "result": res})
		}
	case "play":
		var res game.PlayResult
		if res, err = s.PlayCard(sess.GameID, sess.PlayerID, msg.CardID, msg.Target); err == nil {
			sess.Write(map[string]interface{}{"type": "play_result", "success": res.Success, "message": res.Message})
		}
	case "end_turn":
		_, err = s.EndTurn(sess.GameID, sess.PlayerID)
	case "leave":
		if err = s.LeaveGame(sess.GameID, sess.PlayerID); err == nil {
			return true
		}
	default:
		logger.Warnf("Unknown action type '%s'", msg.Type)
		sess.Write(map[string]interface{}{"type": "error", "code": "bad_request", "message": fmt.Sprintf("Unknown action type: %s", msg.Type)})
		return false
	}
	if err != nil {
		sess.WriteError(err)
	}
	return false
}

// writePump drains the session's OutChan to the socket and keeps the connection alive with pings.
func writePump(ctx context.Context, c *websocket.Conn, sess *Session, logger logrus.FieldLogger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sess.OutChan:
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("Failed to marshal outgoing msg: %v", err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Failed to write to websocket: %v", err)
				sess.Cancel()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("Failed to send ping: %v. Assuming disconnect.", err)
				sess.Cancel()
				return
			}
		}
	}
}
