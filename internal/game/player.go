// internal/game/player.go
package game

import (
	"github.com/google/uuid"
)

// PlayArea holds a player's Gubs in three disjoint buckets plus persistent effects.
type PlayArea struct {
	Free          []uuid.UUID `json:"free"`
	Protected     []uuid.UUID `json:"protected"`
	Trapped       []uuid.UUID `json:"trapped"`
	ActiveEffects []uuid.UUID `json:"activeEffects"`
}

// Player is a seat in a game. Hand and play area hold instance ids into the game's Arena.
type Player struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Hand          []uuid.UUID `json:"hand"`
	PlayArea      PlayArea    `json:"playArea"`
	IsCurrentTurn bool        `json:"isCurrentTurn"`
	IsReady       bool        `json:"isReady"`
	Connected     bool        `json:"connected"`

	cards Arena
}

func newPlayer(name string, cards Arena) *Player {
	return &Player{
		ID:        uuid.New(),
		Name:      name,
		Hand:      []uuid.UUID{},
		PlayArea:  emptyPlayArea(),
		Connected: true,
		cards:     cards,
	}
}

func emptyPlayArea() PlayArea {
	return PlayArea{
		Free:          []uuid.UUID{},
		Protected:     []uuid.UUID{},
		Trapped:       []uuid.UUID{},
		ActiveEffects: []uuid.UUID{},
	}
}

// AddToHand gives c to the player.
func (p *Player) AddToHand(c *Card) {
	c.OwnerID = p.ID
	p.Hand = append(p.Hand, c.InstanceID)
}

// RemoveFromHand takes the card with instance id out of the hand, or returns nil.
func (p *Player) RemoveFromHand(id uuid.UUID) *Card {
	var ok bool
	p.Hand, ok = removeID(p.Hand, id)
	if !ok {
		return nil
	}
	return p.cards.Get(id)
}

// HandCard returns the hand card with the given instance id, or nil.
func (p *Player) HandCard(id uuid.UUID) *Card {
	if indexOf(p.Hand, id) < 0 {
		return nil
	}
	return p.cards.Get(id)
}

// PlayGub places a Gub in the free bucket. Non-Gub cards are refused.
func (p *Player) PlayGub(c *Card) bool {
	if c == nil || !c.IsGub() {
		return false
	}
	c.OwnerID = p.ID
	p.PlayArea.Free = append(p.PlayArea.Free, c.InstanceID)
	return true
}

// Protect attaches barricade to a free Gub, moving it to the protected bucket.
func (p *Player) Protect(barricade *Card, gubID uuid.UUID) bool {
	if barricade == nil || barricade.Type != TypeBarricade || !p.InFree(gubID) {
		return false
	}
	gub := p.cards.Get(gubID)
	p.PlayArea.Free, _ = removeID(p.PlayArea.Free, gubID)
	p.PlayArea.Protected = append(p.PlayArea.Protected, gubID)
	barricade.OwnerID = p.ID
	gub.ProtectionIDs = append(gub.ProtectionIDs, barricade.InstanceID)
	return true
}

// Trap attaches trap to a free Gub, moving it to the trapped bucket.
func (p *Player) Trap(gubID uuid.UUID, trap *Card) bool {
	if trap == nil || !p.InFree(gubID) {
		return false
	}
	gub := p.cards.Get(gubID)
	p.PlayArea.Free, _ = removeID(p.PlayArea.Free, gubID)
	p.PlayArea.Trapped = append(p.PlayArea.Trapped, gubID)
	trap.OwnerID = p.ID
	gub.TrapID = trap.InstanceID
	return true
}

// FreeFromTrap moves a trapped Gub back to free and returns the detached trap card.
func (p *Player) FreeFromTrap(gubID uuid.UUID) *Card {
	if !p.InTrapped(gubID) {
		return nil
	}
	gub := p.cards.Get(gubID)
	trap := p.cards.Get(gub.TrapID)
	gub.TrapID = uuid.Nil
	p.PlayArea.Trapped, _ = removeID(p.PlayArea.Trapped, gubID)
	p.PlayArea.Free = append(p.PlayArea.Free, gubID)
	return trap
}

// DestroyProtection pops the most recently added barricade off a protected Gub and returns it.
// The Gub moves back to free once its last barricade is gone.
func (p *Player) DestroyProtection(gubID uuid.UUID) *Card {
	if !p.InProtected(gubID) {
		return nil
	}
	gub := p.cards.Get(gubID)
	last := len(gub.ProtectionIDs) - 1
	top := p.cards.Get(gub.ProtectionIDs[last])
	gub.ProtectionIDs = gub.ProtectionIDs[:last]
	if len(gub.ProtectionIDs) == 0 {
		gub.ProtectionIDs = nil
		p.PlayArea.Protected, _ = removeID(p.PlayArea.Protected, gubID)
		p.PlayArea.Free = append(p.PlayArea.Free, gubID)
	}
	return top
}

// RemoveGub takes a Gub out of the free or trapped bucket. Protected Gubs are not searched.
// The trap link is cleared; the trap card itself is returned so the caller can discard it.
func (p *Player) RemoveGub(gubID uuid.UUID) (gub *Card, trap *Card) {
	var ok bool
	if p.PlayArea.Free, ok = removeID(p.PlayArea.Free, gubID); ok {
		return p.cards.Get(gubID), nil
	}
	if p.PlayArea.Trapped, ok = removeID(p.PlayArea.Trapped, gubID); ok {
		gub = p.cards.Get(gubID)
		trap = p.cards.Get(gub.TrapID)
		gub.TrapID = uuid.Nil
		return gub, trap
	}
	return nil, nil
}

// RemoveElder takes the Esteemed Elder out of play, searching free then protected.
// It returns the Elder and any barricades that were attached to it.
func (p *Player) RemoveElder() (elder *Card, barricades []*Card) {
	for _, id := range p.PlayArea.Free {
		if c := p.cards.Get(id); c.IsElder() {
			p.PlayArea.Free, _ = removeID(p.PlayArea.Free, id)
			return c, nil
		}
	}
	for _, id := range p.PlayArea.Protected {
		if c := p.cards.Get(id); c.IsElder() {
			p.PlayArea.Protected, _ = removeID(p.PlayArea.Protected, id)
			for _, bid := range c.ProtectionIDs {
				barricades = append(barricades, p.cards.Get(bid))
			}
			c.ProtectionIDs = nil
			return c, barricades
		}
	}
	return nil, nil
}

// AddEffect keeps c in play as a persistent effect.
func (p *Player) AddEffect(c *Card) {
	c.OwnerID = p.ID
	p.PlayArea.ActiveEffects = append(p.PlayArea.ActiveEffects, c.InstanceID)
}

func (p *Player) InFree(id uuid.UUID) bool      { return indexOf(p.PlayArea.Free, id) >= 0 }
func (p *Player) InProtected(id uuid.UUID) bool { return indexOf(p.PlayArea.Protected, id) >= 0 }
func (p *Player) InTrapped(id uuid.UUID) bool   { return indexOf(p.PlayArea.Trapped, id) >= 0 }

// HasGub reports whether the Gub is anywhere in the play area.
func (p *Player) HasGub(id uuid.UUID) bool {
	return p.InFree(id) || p.InProtected(id) || p.InTrapped(id)
}

// Score counts free and protected Gubs. Trapped Gubs score nothing.
func (p *Player) Score() int {
	return len(p.PlayArea.Free) + len(p.PlayArea.Protected)
}

// HasEsteemedElder reports whether the Elder sits in the free or protected bucket.
func (p *Player) HasEsteemedElder() bool {
	for _, bucket := range [][]uuid.UUID{p.PlayArea.Free, p.PlayArea.Protected} {
		for _, id := range bucket {
			if p.cards.Get(id).IsElder() {
				return true
			}
		}
	}
	return false
}

// RetrieveAll drains the play area, Gubs with their barricades and traps plus active effects,
// into a flat list and leaves the play area empty.
func (p *Player) RetrieveAll() []*Card {
	var out []*Card
	for _, bucket := range [][]uuid.UUID{p.PlayArea.Free, p.PlayArea.Protected, p.PlayArea.Trapped} {
		for _, id := range bucket {
			gub := p.cards.Get(id)
			out = append(out, gub)
			for _, bid := range gub.ProtectionIDs {
				out = append(out, p.cards.Get(bid))
			}
			if gub.IsTrapped() {
				out = append(out, p.cards.Get(gub.TrapID))
			}
			gub.ProtectionIDs = nil
			gub.TrapID = uuid.Nil
		}
	}
	for _, id := range p.PlayArea.ActiveEffects {
		out = append(out, p.cards.Get(id))
	}
	p.PlayArea = emptyPlayArea()
	return out
}

// cardCount is every card the player holds, in hand or in play including attachments.
func (p *Player) cardCount() int {
	n := len(p.Hand) + len(p.PlayArea.ActiveEffects)
	for _, bucket := range [][]uuid.UUID{p.PlayArea.Free, p.PlayArea.Protected, p.PlayArea.Trapped} {
		for _, id := range bucket {
			gub := p.cards.Get(id)
			n++
			n += len(gub.ProtectionIDs)
			if gub.IsTrapped() {
				n++
			}
		}
	}
	return n
}
