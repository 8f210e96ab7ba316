// internal/game/catalog.go
package game

import (
	"fmt"
	"strings"
)

// Letter names. Drawing all three ends the game.
const (
	LetterG = "G"
	LetterU = "U"
	LetterB = "B"
)

// StandardCatalog is the base Gubs deck: 69 regular cards plus the letters G, U and B.
var StandardCatalog = []Template{
	{ID: "gub", Name: "Gub", Type: TypeGub, Description: "A humble Gub. Counts one point while free or protected.", Quantity: 16, Kind: KindGub},
	{ID: "esteemed_elder", Name: "Esteemed Elder", Type: TypeGub, Subtype: SubtypeElder, Description: "Cannot be stolen. Wins ties.", Quantity: 1, Kind: KindGub},

	{ID: "mushroom", Name: "Mushroom", Type: TypeBarricade, Description: "Protect one of your free Gubs.", Quantity: 7, Kind: KindBarricade},
	{ID: "toad_rider", Name: "Toad Rider", Type: TypeBarricade, Description: "Protect one of your free Gubs.", Quantity: 2, Kind: KindBarricade},

	{ID: "sud_spout", Name: "Sud Spout", Type: TypeTrap, Description: "Trap an opponent's free Gub. Trapped Gubs do not score.", Quantity: 5, Kind: KindTrap},

	{ID: "spear", Name: "Spear", Type: TypeTool, Subtype: SubtypeWeapon, Description: "Destroy a barricade, or eliminate an unprotected Gub.", Quantity: 7, Kind: KindSpear},
	{ID: "lure", Name: "Lure", Type: TypeTool, Subtype: SubtypeWeapon, Description: "Destroy the barricade on a protected Gub.", Quantity: 3, Kind: KindLure},
	{ID: "super_lure", Name: "Super Lure", Type: TypeTool, Subtype: SubtypeWeapon, Description: "Destroy the barricade on a protected Gub.", Quantity: 1, Kind: KindLure},
	{ID: "smahl_thief", Name: "Smahl Thief", Type: TypeTool, Subtype: SubtypeThief, Description: "Steal a free or trapped Gub. The Esteemed Elder is immune.", Quantity: 3, Kind: KindThief},
	{ID: "age_old_cure", Name: "Age Old Cure", Type: TypeTool, Subtype: SubtypeHealing, Description: "Take a card from the discard pile into your hand.", Quantity: 3, Kind: KindCure},
	{ID: "retreat", Name: "Retreat", Type: TypeTool, Subtype: SubtypeTactical, Description: "Return everything in your play area to your hand.", Quantity: 2, Kind: KindRetreat},
	{ID: "scout", Name: "Scout", Type: TypeTool, Subtype: SubtypeTactical, Description: "Look at an opponent's hand.", Quantity: 2, Kind: KindScout},
	{ID: "ring_of_wisdom", Name: "Ring of Wisdom", Type: TypeTool, Subtype: SubtypeMagic, Description: "Stays in play as an active effect.", Quantity: 1, Kind: KindRing},
	{ID: "ring_of_fortune", Name: "Ring of Fortune", Type: TypeTool, Subtype: SubtypeMagic, Description: "Stays in play as an active effect.", Quantity: 1, Kind: KindRing},

	{ID: "lightning", Name: "Lightning", Type: TypeHazard, Description: "Destroy an opponent's Esteemed Elder, or their whole hand.", Quantity: 4, Kind: KindLightning},

	{ID: "cricket_song", Name: "Cricket Song", Type: TypeInterrupt, Description: "Play as any other card, at any time.", Quantity: 4, Kind: KindCricketSong},
	{ID: "flop_boat", Name: "Flop Boat", Type: TypeInterrupt, Description: "Send a just-drawn Event back into the deck.", Quantity: 3, Kind: KindFlopBoat},

	{ID: "flash_flood", Name: "Flash Flood", Type: TypeEvent, Description: "Resolves immediately when drawn.", Quantity: 2, Kind: KindEvent},
	{ID: "sud_storm", Name: "Sud Storm", Type: TypeEvent, Description: "Resolves immediately when drawn.", Quantity: 1, Kind: KindEvent},
	{ID: "traveling_merchant", Name: "Traveling Merchant", Type: TypeEvent, Description: "Resolves immediately when drawn.", Quantity: 1, Kind: KindEvent},

	{ID: "letter_g", Name: LetterG, Type: TypeLetter, Subtype: SubtypeLetter, Description: "The first letter.", Quantity: 1, Kind: KindLetter},
	{ID: "letter_u", Name: LetterU, Type: TypeLetter, Subtype: SubtypeLetter, Description: "The second letter.", Quantity: 1, Kind: KindLetter},
	{ID: "letter_b", Name: LetterB, Type: TypeLetter, Subtype: SubtypeLetter, Description: "The last letter.", Quantity: 1, Kind: KindLetter},
}

// LookupTemplate finds a template by id or, case-insensitively, by name.
func LookupTemplate(catalog []Template, key string) (Template, bool) {
	for _, t := range catalog {
		if t.ID == key || strings.EqualFold(t.Name, key) {
			return t, true
		}
	}
	return Template{}, false
}

// validateCatalog checks the structural requirements of a deck before any card is built.
func validateCatalog(catalog []Template) error {
	letters := map[string]int{}
	gubs := 0
	for _, t := range catalog {
		if !t.Kind.Valid() {
			return fmt.Errorf("%w: template %q has no rule kind", ErrInvalidDeck, t.ID)
		}
		if t.Quantity < 0 {
			return fmt.Errorf("%w: template %q has negative quantity", ErrInvalidDeck, t.ID)
		}
		if t.Subtype == SubtypeLetter {
			letters[t.Name] += t.Quantity
		}
		if t.Type == TypeGub {
			gubs += t.Quantity
		}
	}
	for _, name := range []string{LetterG, LetterU, LetterB} {
		if letters[name] != 1 {
			return fmt.Errorf("%w: expected exactly one %q letter card, found %d", ErrInvalidDeck, name, letters[name])
		}
	}
	if len(letters) != 3 {
		return fmt.Errorf("%w: unexpected letter cards in catalog", ErrInvalidDeck)
	}
	if gubs == 0 {
		return fmt.Errorf("%w: catalog has no Gub cards", ErrInvalidDeck)
	}
	return nil
}
