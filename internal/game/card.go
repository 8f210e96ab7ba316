// internal/game/card.go
package game

import (
	"github.com/google/uuid"
)

// CardType is the printed category of a card.
type CardType string

const (
	TypeGub       CardType = "Gub"
	TypeBarricade CardType = "Barricade"
	TypeTrap      CardType = "Trap"
	TypeTool      CardType = "Tool"
	TypeHazard    CardType = "Hazard"
	TypeInterrupt CardType = "Interrupt"
	TypeEvent     CardType = "Event"
	TypeLetter    CardType = "Letter"
)

// Subtypes used for sub-dispatch and tiebreaks.
const (
	SubtypeElder    = "Elder"
	SubtypeLetter   = "Letter"
	SubtypeWeapon   = "Weapon"
	SubtypeThief    = "Thief"
	SubtypeHealing  = "Healing"
	SubtypeTactical = "Tactical"
	SubtypeMagic    = "Magic"
)

// Kind is the closed set of card behaviours known to the rule engine. Every template in a
// catalog carries exactly one Kind, and every Kind has exactly one rule (see engine.go).
type Kind int

const (
	KindGub Kind = iota
	KindBarricade
	KindTrap
	KindSpear
	KindLure
	KindThief
	KindCure
	KindRetreat
	KindScout
	KindRing
	KindLightning
	KindFlopBoat
	KindCricketSong
	KindEvent
	KindLetter

	numKinds
)

var kindNames = [numKinds]string{
	KindGub:         "gub",
	KindBarricade:   "barricade",
	KindTrap:        "trap",
	KindSpear:       "spear",
	KindLure:        "lure",
	KindThief:       "thief",
	KindCure:        "cure",
	KindRetreat:     "retreat",
	KindScout:       "scout",
	KindRing:        "ring",
	KindLightning:   "lightning",
	KindFlopBoat:    "flop_boat",
	KindCricketSong: "cricket_song",
	KindEvent:       "event",
	KindLetter:      "letter",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// Template is the immutable description of a card, instantiated Quantity times per deck.
type Template struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        CardType `json:"type"`
	Subtype     string   `json:"subtype,omitempty"`
	Description string   `json:"description"`
	Quantity    int      `json:"quantity"`
	Kind        Kind     `json:"-"`
}

// Card is one physical card. ID is the template key and is shared by copies; InstanceID is unique.
//
// Protection and trap relations are stored as instance ids into the game's Arena, never as
// embedded cards.
type Card struct {
	ID          string    `json:"id"`
	InstanceID  uuid.UUID `json:"instanceId"`
	Name        string    `json:"name"`
	Type        CardType  `json:"type"`
	Subtype     string    `json:"subtype,omitempty"`
	Description string    `json:"description"`
	Kind        Kind      `json:"kind"`

	ProtectionIDs []uuid.UUID `json:"protectionIds,omitempty"`
	TrapID        uuid.UUID   `json:"trapId"`
	OwnerID       uuid.UUID   `json:"ownerId"`
}

// NewCard instantiates a template with a fresh instance id.
func NewCard(t Template) *Card {
	return &Card{
		ID:          t.ID,
		InstanceID:  uuid.New(),
		Name:        t.Name,
		Type:        t.Type,
		Subtype:     t.Subtype,
		Description: t.Description,
		Kind:        t.Kind,
	}
}

func (c *Card) IsProtected() bool { return len(c.ProtectionIDs) > 0 }

func (c *Card) IsTrapped() bool { return c.TrapID != uuid.Nil }

func (c *Card) IsGub() bool { return c.Type == TypeGub }

// IsElder reports whether the card is the Esteemed Elder (immune to theft, first tiebreaker).
func (c *Card) IsElder() bool { return c.IsGub() && c.Subtype == SubtypeElder }

func (c *Card) IsLetter() bool { return c.Subtype == SubtypeLetter }

func (c *Card) IsEvent() bool { return c.Type == TypeEvent }

func (c *Card) IsInterrupt() bool { return c.Type == TypeInterrupt }

// reset clears in-play state when a card leaves a player's control.
func (c *Card) reset() {
	c.ProtectionIDs = nil
	c.TrapID = uuid.Nil
	c.OwnerID = uuid.Nil
}

// Arena owns every card instance of a game, addressed by instance id. Zones hold ids only.
type Arena map[uuid.UUID]*Card

// Get returns the card for id, or nil.
func (a Arena) Get(id uuid.UUID) *Card {
	if id == uuid.Nil {
		return nil
	}
	return a[id]
}

// Add registers c under its instance id.
func (a Arena) Add(c *Card) {
	a[c.InstanceID] = c
}
