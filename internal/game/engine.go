// internal/game/engine.go
package game

import (
	"fmt"

	"github.com/google/uuid"
)

// Lightning actions.
const (
	ActionDestroyElder = "destroy-elder"
	ActionDestroyHand  = "destroy-hand"
)

// Target carries the optional targeting arguments of a play. Which fields matter depends on the card.
type Target struct {
	PlayerID    uuid.UUID `json:"playerId,omitempty"`
	GubID       uuid.UUID `json:"gubId,omitempty"`
	CardID      uuid.UUID `json:"cardId,omitempty"`      // discard pile card for Age Old Cure
	EventCardID uuid.UUID `json:"eventCardId,omitempty"` // pending event for Flop Boat
	Action      string    `json:"action,omitempty"`      // Lightning action
	AsCard      string    `json:"asCard,omitempty"`      // card a Cricket Song stands in for
}

// PlayResult is returned from every successful play.
type PlayResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Effect  Effect `json:"effect"`
}

type rule struct {
	validate func(g *Game, p *Player, c *Card, t Target) error
	execute  func(g *Game, p *Player, c *Card, t Target) (string, Effect)
}

// cardRules has exactly one entry per Kind.
var cardRules = map[Kind]rule{
	KindGub:         {validateAlways, executeGub},
	KindBarricade:   {validateBarricade, executeBarricade},
	KindTrap:        {validateTrap, executeTrap},
	KindSpear:       {validateSpear, executeSpear},
	KindLure:        {validateLure, executeLure},
	KindThief:       {validateThief, executeThief},
	KindCure:        {validateCure, executeCure},
	KindRetreat:     {validateAlways, executeRetreat},
	KindScout:       {validateScout, executeScout},
	KindRing:        {validateAlways, executeRing},
	KindLightning:   {validateLightning, executeLightning},
	KindFlopBoat:    {validateFlopBoat, executeFlopBoat},
	KindCricketSong: {validateCricketSong, executeCricketSong},
	KindEvent:       {validateUnplayable, nil},
	KindLetter:      {validateUnplayable, nil},
}

// ValidatePlay checks whether the player may play the card against target. It never mutates.
func (g *Game) ValidatePlay(playerID, cardID uuid.UUID, t Target) error {
	_, _, _, err := g.checkPlay(playerID, cardID, t)
	return err
}

func (g *Game) checkPlay(playerID, cardID uuid.UUID, t Target) (*Player, *Card, rule, error) {
	if g.Status != StatusActive {
		return nil, nil, rule{}, ErrNotActive
	}
	p := g.GetPlayer(playerID)
	if p == nil {
		return nil, nil, rule{}, ErrPlayerNotFound
	}
	c := p.HandCard(cardID)
	if c == nil {
		return nil, nil, rule{}, ErrCardNotInHand
	}
	if !c.IsInterrupt() && !p.IsCurrentTurn {
		return nil, nil, rule{}, ErrNotYourTurn
	}
	r, ok := cardRules[c.Kind]
	if !ok {
		return nil, nil, rule{}, fmt.Errorf("%w: no rule for %s", ErrUnplayable, c.Kind)
	}
	if err := r.validate(g, p, c, t); err != nil {
		return nil, nil, rule{}, err
	}
	return p, c, r, nil
}

// ExecutePlay validates and then resolves a play. The card leaves the hand and is either
// placed by its effect (Gubs, barricades, traps, rings) or discarded.
func (g *Game) ExecutePlay(playerID, cardID uuid.UUID, t Target) (PlayResult, error) {
	p, c, r, err := g.checkPlay(playerID, cardID, t)
	if err != nil {
		return PlayResult{}, err
	}
	p.RemoveFromHand(c.InstanceID)
	msg, eff := r.execute(g, p, c, t)
	eff.PlayerID = p.ID
	eff.CardID = c.InstanceID
	return PlayResult{Success: true, Message: msg, Effect: eff}, nil
}

func illegal(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrIllegalTarget}, args...)...)
}

// opponent resolves t.PlayerID to a seated player other than p.
func (g *Game) opponent(p *Player, t Target) (*Player, error) {
	if t.PlayerID == uuid.Nil {
		return nil, illegal("must target an opponent")
	}
	if t.PlayerID == p.ID {
		return nil, illegal("cannot target yourself")
	}
	opp := g.GetPlayer(t.PlayerID)
	if opp == nil {
		return nil, illegal("target player not found")
	}
	return opp, nil
}

func validateAlways(*Game, *Player, *Card, Target) error { return nil }

func validateUnplayable(_ *Game, _ *Player, c *Card, _ Target) error {
	return fmt.Errorf("%w: %s cards are drawn, not played", ErrUnplayable, c.Type)
}

func executeGub(_ *Game, p *Player, c *Card, _ Target) (string, Effect) {
	p.PlayGub(c)
	return fmt.Sprintf("%s played %s", p.Name, c.Name), Effect{Kind: EffectGubPlayed, TargetGubID: c.InstanceID}
}

func validateBarricade(_ *Game, p *Player, _ *Card, t Target) error {
	if t.GubID == uuid.Nil {
		return illegal("must target a gub to protect")
	}
	if !p.InFree(t.GubID) {
		return illegal("can only protect your own unprotected gubs")
	}
	return nil
}

func executeBarricade(_ *Game, p *Player, c *Card, t Target) (string, Effect) {
	p.Protect(c, t.GubID)
	return fmt.Sprintf("%s protected a Gub with %s", p.Name, c.Name),
		Effect{Kind: EffectBarricadePlayed, TargetPlayerID: p.ID, TargetGubID: t.GubID}
}

func validateTrap(g *Game, p *Player, _ *Card, t Target) error {
	opp, err := g.opponent(p, t)
	if err != nil {
		return err
	}
	if !opp.InFree(t.GubID) {
		return illegal("can only trap unprotected gubs")
	}
	return nil
}

func executeTrap(g *Game, p *Player, c *Card, t Target) (string, Effect) {
	opp := g.GetPlayer(t.PlayerID)
	opp.Trap(t.GubID, c)
	return fmt.Sprintf("%s trapped %s's Gub with %s", p.Name, opp.Name, c.Name),
		Effect{Kind: EffectGubTrapped, TargetPlayerID: opp.ID, TargetGubID: t.GubID}
}

func validateSpear(g *Game, p *Player, _ *Card, t Target) error {
	opp, err := g.opponent(p, t)
	if err != nil {
		return err
	}
	if t.GubID == uuid.Nil || !opp.HasGub(t.GubID) {
		return illegal("target gub not found")
	}
	return nil
}

// executeSpear breaks one barricade off a protected Gub, or eliminates an unprotected one.
func executeSpear(g *Game, p *Player, c *Card, t Target) (string, Effect) {
	opp := g.GetPlayer(t.PlayerID)
	defer g.Deck.Discard(c)
	if opp.InProtected(t.GubID) {
		barricade := opp.DestroyProtection(t.GubID)
		g.Deck.Discard(barricade)
		return fmt.Sprintf("%s destroyed a barricade on %s's Gub", p.Name, opp.Name),
			Effect{Kind: EffectBarricadeDestroyed, TargetPlayerID: opp.ID, TargetGubID: t.GubID, AffectedCardIDs: []uuid.UUID{barricade.InstanceID}}
	}
	gub, trap := opp.RemoveGub(t.GubID)
	affected := []uuid.UUID{gub.InstanceID}
	if trap != nil {
		g.Deck.Discard(trap)
		affected = append(affected, trap.InstanceID)
	}
	g.Deck.Remove(gub)
	return fmt.Sprintf("%s eliminated %s's Gub with %s", p.Name, opp.Name, c.Name),
		Effect{Kind: EffectGubKilled, TargetPlayerID: opp.ID, TargetGubID: t.GubID, AffectedCardIDs: affected}
}

func validateLure(g *Game, p *Player, _ *Card, t Target) error {
	opp, err := g.opponent(p, t)
	if err != nil {
		return err
	}
	if !opp.InProtected(t.GubID) {
		return illegal("target must be a protected gub")
	}
	return nil
}

func executeLure(g *Game, p *Player, c *Card, t Target) (string, Effect) {
	opp := g.GetPlayer(t.PlayerID)
	barricade := opp.DestroyProtection(t.GubID)
	g.Deck.Discard(barricade)
	g.Deck.Discard(c)
	return fmt.Sprintf("%s lured a barricade away from %s's Gub", p.Name, opp.Name),
		Effect{Kind: EffectBarricadeDestroyed, TargetPlayerID: opp.ID, TargetGubID: t.GubID, AffectedCardIDs: []uuid.UUID{barricade.InstanceID}}
}

func validateThief(g *Game, p *Player, _ *Card, t Target) error {
	opp, err := g.opponent(p, t)
	if err != nil {
		return err
	}
	if opp.InProtected(t.GubID) {
		return illegal("cannot steal protected gubs")
	}
	if !opp.InFree(t.GubID) && !opp.InTrapped(t.GubID) {
		return illegal("target gub not found")
	}
	if g.Cards.Get(t.GubID).IsElder() {
		return illegal("cannot steal the esteemed elder")
	}
	return nil
}

func executeThief(g *Game, p *Player, c *Card, t Target) (string, Effect) {
	opp := g.GetPlayer(t.PlayerID)
	gub, trap := opp.RemoveGub(t.GubID)
	if trap != nil {
		g.Deck.Discard(trap)
	}
	p.PlayGub(gub)
	g.Deck.Discard(c)
	return fmt.Sprintf("%s stole a Gub from %s", p.Name, opp.Name),
		Effect{Kind: EffectGubStolen, TargetPlayerID: opp.ID, TargetGubID: gub.InstanceID}
}

func validateCure(g *Game, _ *Player, _ *Card, t Target) error {
	if len(g.Deck.DiscardPile) == 0 {
		return illegal("no cards in discard pile")
	}
	if t.CardID != uuid.Nil && !g.Deck.InDiscard(t.CardID) {
		return illegal("card is not in the discard pile")
	}
	return nil
}

// executeCure rescues the named discard (or the top one) before discarding itself.
func executeCure(g *Game, p *Player, c *Card, t Target) (string, Effect) {
	rescued, _ := g.Deck.TakeDiscard(t.CardID)
	if rescued.InstanceID == g.PendingEventID {
		g.PendingEventID = uuid.Nil
	}
	p.AddToHand(rescued)
	g.Deck.Discard(c)
	return fmt.Sprintf("%s rescued %s from the discard pile", p.Name, rescued.Name),
		Effect{Kind: EffectCardRescued, AffectedCardIDs: []uuid.UUID{rescued.InstanceID}}
}

func executeRetreat(g *Game, p *Player, c *Card, _ Target) (string, Effect) {
	retrieved := p.RetrieveAll()
	ids := make([]uuid.UUID, 0, len(retrieved))
	for _, rc := range retrieved {
		rc.ProtectionIDs = nil
		rc.TrapID = uuid.Nil
		p.AddToHand(rc)
		ids = append(ids, rc.InstanceID)
	}
	g.Deck.Discard(c)
	return fmt.Sprintf("%s retreated %d cards to hand", p.Name, len(ids)),
		Effect{Kind: EffectRetreatPlayed, AffectedCardIDs: ids, Count: len(ids)}
}

func validateScout(g *Game, p *Player, _ *Card, t Target) error {
	_, err := g.opponent(p, t)
	return err
}

// executeScout grants sight of the opponent's hand. The revealed cards travel only in the
// private part of the effect.
func executeScout(g *Game, p *Player, c *Card, t Target) (string, Effect) {
	opp := g.GetPlayer(t.PlayerID)
	g.grantScout(p.ID, opp.ID)
	revealed := make([]*Card, 0, len(opp.Hand))
	for _, id := range opp.Hand {
		revealed = append(revealed, g.Cards.Get(id))
	}
	g.Deck.Discard(c)
	return fmt.Sprintf("%s scouted %s's hand", p.Name, opp.Name),
		Effect{Kind: EffectScoutPlayed, TargetPlayerID: opp.ID, Count: len(revealed), RevealedHand: revealed}
}

func executeRing(_ *Game, p *Player, c *Card, _ Target) (string, Effect) {
	p.AddEffect(c)
	return fmt.Sprintf("%s put %s into play", p.Name, c.Name), Effect{Kind: EffectMagicPlayed}
}

func validateLightning(g *Game, p *Player, _ *Card, t Target) error {
	opp, err := g.opponent(p, t)
	if err != nil {
		return err
	}
	switch t.Action {
	case ActionDestroyElder:
		if !opp.HasEsteemedElder() {
			return illegal("target player has no esteemed elder")
		}
	case ActionDestroyHand:
	default:
		return illegal("lightning action must be %s or %s", ActionDestroyElder, ActionDestroyHand)
	}
	return nil
}

func executeLightning(g *Game, p *Player, c *Card, t Target) (string, Effect) {
	opp := g.GetPlayer(t.PlayerID)
	defer g.Deck.Discard(c)
	if t.Action == ActionDestroyElder {
		elder, barricades := opp.RemoveElder()
		affected := []uuid.UUID{elder.InstanceID}
		for _, b := range barricades {
			g.Deck.Discard(b)
			affected = append(affected, b.InstanceID)
		}
		g.Deck.Discard(elder)
		return fmt.Sprintf("%s destroyed %s's Esteemed Elder with %s", p.Name, opp.Name, c.Name),
			Effect{Kind: EffectElderDestroyed, TargetPlayerID: opp.ID, TargetGubID: elder.InstanceID, AffectedCardIDs: affected}
	}

	discarded := make([]uuid.UUID, len(opp.Hand))
	copy(discarded, opp.Hand)
	for _, id := range discarded {
		g.Deck.Discard(g.Cards.Get(id))
	}
	opp.Hand = []uuid.UUID{}
	return fmt.Sprintf("%s destroyed %s's hand with %s (%d cards)", p.Name, opp.Name, c.Name, len(discarded)),
		Effect{Kind: EffectHandDestroyed, TargetPlayerID: opp.ID, AffectedCardIDs: discarded, Count: len(discarded)}
}

func validateFlopBoat(g *Game, _ *Player, _ *Card, t Target) error {
	if g.PendingEventID == uuid.Nil {
		return illegal("flop boat can only redirect a just-drawn event")
	}
	if t.EventCardID != uuid.Nil && t.EventCardID != g.PendingEventID {
		return illegal("flop boat can only redirect the pending event")
	}
	return nil
}

// executeFlopBoat sends the pending event from the discard pile back into the deck and reshuffles.
func executeFlopBoat(g *Game, p *Player, c *Card, _ Target) (string, Effect) {
	event, _ := g.Deck.TakeDiscard(g.PendingEventID)
	g.PendingEventID = uuid.Nil
	g.Deck.PutBottom(event)
	g.Deck.Reshuffle()
	g.Deck.Discard(c)
	return fmt.Sprintf("%s sent %s back into the deck", p.Name, event.Name),
		Effect{Kind: EffectEventRedirected, AffectedCardIDs: []uuid.UUID{event.InstanceID}}
}

func validateCricketSong(g *Game, _ *Player, _ *Card, t Target) error {
	if t.AsCard == "" {
		return illegal("must specify what cricket song represents")
	}
	tmpl, ok := LookupTemplate(g.Catalog, t.AsCard)
	if !ok {
		return illegal("unknown card %q", t.AsCard)
	}
	if tmpl.Kind == KindCricketSong || tmpl.Kind == KindEvent || tmpl.Kind == KindLetter {
		return illegal("cricket song cannot represent %s", tmpl.Name)
	}
	return nil
}

// executeCricketSong only announces the stand-in; resolving the represented card is up to the caller.
func executeCricketSong(g *Game, p *Player, c *Card, t Target) (string, Effect) {
	tmpl, _ := LookupTemplate(g.Catalog, t.AsCard)
	g.Deck.Discard(c)
	return fmt.Sprintf("%s played %s as %s", p.Name, c.Name, tmpl.Name),
		Effect{Kind: EffectWildCardPlayed, TargetPlayerID: t.PlayerID, TargetGubID: t.GubID, Representing: tmpl.Name}
}
