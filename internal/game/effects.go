// internal/game/effects.go
package game

import "github.com/google/uuid"

// EffectKind names the outcome of a play for broadcast.
type EffectKind string

const (
	EffectGubPlayed          EffectKind = "gub-played"
	EffectBarricadePlayed    EffectKind = "barricade-played"
	EffectGubTrapped         EffectKind = "gub-trapped"
	EffectBarricadeDestroyed EffectKind = "barricade-destroyed"
	EffectGubKilled          EffectKind = "gub-killed"
	EffectGubStolen          EffectKind = "gub-stolen"
	EffectCardRescued        EffectKind = "card-rescued"
	EffectRetreatPlayed      EffectKind = "retreat-played"
	EffectScoutPlayed        EffectKind = "scout-played"
	EffectMagicPlayed        EffectKind = "magic-played"
	EffectElderDestroyed     EffectKind = "elder-destroyed"
	EffectHandDestroyed      EffectKind = "hand-destroyed"
	EffectEventRedirected    EffectKind = "event-redirected"
	EffectWildCardPlayed     EffectKind = "wild-card-played"
)

// Effect describes what a play did, in ids, so the transport can broadcast it.
type Effect struct {
	Kind            EffectKind  `json:"type"`
	PlayerID        uuid.UUID   `json:"playerId"`
	CardID          uuid.UUID   `json:"cardId"`
	TargetPlayerID  uuid.UUID   `json:"targetPlayerId,omitempty"`
	TargetGubID     uuid.UUID   `json:"targetGubId,omitempty"`
	AffectedCardIDs []uuid.UUID `json:"affectedCardIds,omitempty"`
	Representing    string      `json:"representing,omitempty"`
	Count           int         `json:"count,omitempty"`

	// RevealedHand is only for the acting player (Scout).
	RevealedHand []*Card `json:"revealedHand,omitempty"`
}

// Public returns a copy safe to broadcast to every player.
func (e Effect) Public() Effect {
	e.RevealedHand = nil
	return e
}
