// internal/handlers/routes.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JulianC775/Gubs/internal/game"
	"github.com/google/uuid"
)

var errBadRequest = errors.New("bad request")

// Routes registers the HTTP and websocket endpoints on mux.
func (s *GameServer) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /games", s.handleCreateGame)
	mux.HandleFunc("GET /games", s.handleListGames)
	mux.HandleFunc("GET /games/{id}", s.handleGetGame)
	mux.HandleFunc("POST /games/{id}/ready", s.handleSetReady)
	mux.HandleFunc("POST /games/{id}/start", s.handleStartGame)
	mux.HandleFunc("POST /games/{id}/draw", s.handleDrawCard)
	mux.HandleFunc("POST /games/{id}/play", s.handlePlayCard)
	mux.HandleFunc("POST /games/{id}/end-turn", s.handleEndTurn)
	mux.HandleFunc("POST /games/{id}/leave", s.handleLeaveGame)
	mux.HandleFunc("GET /games/{id}/ws", GameWSHandler(s))
	mux.HandleFunc("GET /rooms/{code}", s.handleGetRoom)
	mux.HandleFunc("POST /rooms/{code}/join", s.handleJoinRoom)
	mux.HandleFunc("GET /rooms/{code}/qr.png", s.handleRoomQR)
}

type createGameRequest struct {
	PlayerName string                 `json:"playerName"`
	MaxPlayers int                    `json:"maxPlayers"`
	Rules      map[string]interface{} `json:"rules"`
}

type joinRequest struct {
	PlayerName string `json:"playerName"`
}

// actionRequest is the body of every per-player game action.
type actionRequest struct {
	PlayerID uuid.UUID   `json:"playerId"`
	Ready    bool        `json:"ready"`
	CardID   uuid.UUID   `json:"cardId"`
	Target   game.Target `json:"target"`
}

// statusFor maps an error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case "bad_request", "invalid_name", "invalid_player_count":
		return http.StatusBadRequest
	case "not_found", "player_not_found":
		return http.StatusNotFound
	case "not_host", "not_your_turn":
		return http.StatusForbidden
	case "card_not_in_hand", "illegal_target", "unplayable":
		return http.StatusUnprocessableEntity
	case "already_started", "full", "duplicate_name", "not_enough_players", "not_enough_ready",
		"not_active", "deck_empty", "hand_over_limit", "not_enough_gubs", "room_code_taken":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError reports err as {"error": message, "code": code}.
func (s *GameServer) writeError(w http.ResponseWriter, err error) {
	code := game.ErrorCode(err)
	if errors.Is(err, errBadRequest) {
		code = "bad_request"
	}
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		s.Log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
		"code":  code,
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func pathGameID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, errors.Join(errBadRequest, err)
	}
	return id, nil
}

// readAction parses the game id from the path and the action body.
func readAction(r *http.Request) (uuid.UUID, actionRequest, error) {
	var req actionRequest
	gameID, err := pathGameID(r)
	if err != nil {
		return uuid.Nil, req, err
	}
	if err := decodeBody(r, &req); err != nil {
		return uuid.Nil, req, err
	}
	return gameID, req, nil
}

// viewerFrom reads the optional ?playerId= query parameter.
func viewerFrom(r *http.Request) (uuid.UUID, error) {
	raw := r.URL.Query().Get("playerId")
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Join(errBadRequest, err)
	}
	return id, nil
}

func (s *GameServer) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rules := s.Rules
	if req.Rules != nil {
		parsed, err := game.ParseRules(req.Rules, rules)
		if err != nil {
			s.writeError(w, errors.Join(errBadRequest, err))
			return
		}
		rules = parsed
	}
	if req.MaxPlayers != 0 {
		rules.MaxPlayers = req.MaxPlayers
	}
	res, err := s.CreateGameWithRules(req.PlayerName, rules)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *GameServer) handleListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ListGames())
}

func (s *GameServer) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathGameID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	viewer, err := viewerFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	v, err := s.LookupGame(gameID, viewer)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *GameServer) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	v, err := s.LookupRoom(r.PathValue("code"), viewer)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *GameServer) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.JoinGame(r.PathValue("code"), req.PlayerName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *GameServer) handleSetReady(w http.ResponseWriter, r *http.Request) {
	gameID, req, err := readAction(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	v, err := s.SetReady(gameID, req.PlayerID, req.Ready)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *GameServer) handleStartGame(w http.ResponseWriter, r *http.Request) {
	gameID, req, err := readAction(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	v, err := s.StartGame(gameID, req.PlayerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *GameServer) handleDrawCard(w http.ResponseWriter, r *http.Request) {
	gameID, req, err := readAction(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.DrawCard(gameID, req.PlayerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *GameServer) handlePlayCard(w http.ResponseWriter, r *http.Request) {
	gameID, req, err := readAction(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.PlayCard(gameID, req.PlayerID, req.CardID, req.Target)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *GameServer) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	gameID, req, err := readAction(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	v, err := s.EndTurn(gameID, req.PlayerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *GameServer) handleLeaveGame(w http.ResponseWriter, r *http.Request) {
	gameID, req, err := readAction(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.LeaveGame(gameID, req.PlayerID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
