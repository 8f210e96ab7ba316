// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the game handler.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	InvalidGameIDError  = 3001 // Game in the WS URL does not exist.
	InvalidPlayerError  = 3002 // playerId is not seated in the game.
)
