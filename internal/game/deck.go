// internal/game/deck.go
package game

import (
	"math/rand"

	"github.com/google/uuid"
)

// Deck holds the draw pile (front is the next draw), the discard pile (last is the top)
// and the removed pile. All three hold instance ids into the game's Arena.
type Deck struct {
	DrawPile     []uuid.UUID `json:"drawPile"`
	DiscardPile  []uuid.UUID `json:"discardPile"`
	Removed      []uuid.UUID `json:"removed"`
	DrawnLetters []string    `json:"drawnLetters"`

	cards Arena
	rng   *rand.Rand
}

// BuildDeck instantiates every template Quantity times into cards, shuffles the regular
// cards and places the letters G, U and B into the top, middle and bottom thirds.
func BuildDeck(catalog []Template, cards Arena, rng *rand.Rand) (*Deck, error) {
	if err := validateCatalog(catalog); err != nil {
		return nil, err
	}

	var regular []uuid.UUID
	letters := map[string]uuid.UUID{}
	for _, t := range catalog {
		for i := 0; i < t.Quantity; i++ {
			c := NewCard(t)
			cards.Add(c)
			if c.IsLetter() {
				letters[c.Name] = c.InstanceID
			} else {
				regular = append(regular, c.InstanceID)
			}
		}
	}

	d := &Deck{
		DrawPile:     regular,
		DiscardPile:  []uuid.UUID{},
		Removed:      []uuid.UUID{},
		DrawnLetters: []string{},
		cards:        cards,
		rng:          rng,
	}
	d.shuffle(d.DrawPile)
	d.insertLetters(letters[LetterG], letters[LetterU], letters[LetterB])
	return d, nil
}

// insertLetters places G, U and B at random offsets in the top, middle and bottom thirds.
//
// The third size is computed once from the regular pile, and each offset is applied to the
// pile as it stands after the previous insertion, so the final thirds are approximate.
// Game balance depends on this exact placement; keep it.
func (d *Deck) insertLetters(g, u, b uuid.UUID) {
	third := len(d.DrawPile) / 3
	for i, id := range []uuid.UUID{g, u, b} {
		pos := i*third + d.randIntn(third)
		d.DrawPile = insertAt(d.DrawPile, pos, id)
	}
}

func (d *Deck) randIntn(n int) int {
	if n <= 0 {
		return 0
	}
	return d.rng.Intn(n)
}

// shuffle is an in-place Fisher-Yates shuffle.
func (d *Deck) shuffle(ids []uuid.UUID) {
	for i := len(ids) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// Reshuffle rerandomizes the remaining draw pile.
func (d *Deck) Reshuffle() {
	d.shuffle(d.DrawPile)
}

// Draw removes and returns the front card. ok is false when the pile is exhausted.
// Letter cards are appended to DrawnLetters.
func (d *Deck) Draw() (c *Card, ok bool) {
	c, ok = d.takeFront()
	if ok && c.IsLetter() {
		d.DrawnLetters = append(d.DrawnLetters, c.Name)
	}
	return c, ok
}

// takeFront pops the front card without recording letters. Used while searching for
// starting Gubs, where non-Gub cards go straight back under the pile.
func (d *Deck) takeFront() (*Card, bool) {
	if len(d.DrawPile) == 0 {
		return nil, false
	}
	id := d.DrawPile[0]
	d.DrawPile = d.DrawPile[1:]
	return d.cards.Get(id), true
}

// Peek returns the front card without removing it.
func (d *Deck) Peek() (*Card, bool) {
	if len(d.DrawPile) == 0 {
		return nil, false
	}
	return d.cards.Get(d.DrawPile[0]), true
}

// PutBottom returns a card to the back of the draw pile.
func (d *Deck) PutBottom(c *Card) {
	c.reset()
	d.DrawPile = append(d.DrawPile, c.InstanceID)
}

// Discard puts c on top of the discard pile.
func (d *Deck) Discard(c *Card) {
	c.reset()
	d.DiscardPile = append(d.DiscardPile, c.InstanceID)
}

// Remove puts c on the removed pile; it never returns to play.
func (d *Deck) Remove(c *Card) {
	c.reset()
	d.Removed = append(d.Removed, c.InstanceID)
}

// TopDiscard returns the top of the discard pile.
func (d *Deck) TopDiscard() (*Card, bool) {
	if len(d.DiscardPile) == 0 {
		return nil, false
	}
	return d.cards.Get(d.DiscardPile[len(d.DiscardPile)-1]), true
}

// TakeDiscard removes id from the discard pile. With uuid.Nil it takes the top card.
func (d *Deck) TakeDiscard(id uuid.UUID) (*Card, bool) {
	if len(d.DiscardPile) == 0 {
		return nil, false
	}
	idx := len(d.DiscardPile) - 1
	if id != uuid.Nil {
		idx = indexOf(d.DiscardPile, id)
		if idx < 0 {
			return nil, false
		}
	}
	taken := d.DiscardPile[idx]
	d.DiscardPile = append(d.DiscardPile[:idx], d.DiscardPile[idx+1:]...)
	return d.cards.Get(taken), true
}

// InDiscard reports whether id is somewhere in the discard pile.
func (d *Deck) InDiscard(id uuid.UUID) bool {
	return indexOf(d.DiscardPile, id) >= 0
}

// Remaining is the size of the draw pile.
func (d *Deck) Remaining() int {
	return len(d.DrawPile)
}

// IsGameEnding reports whether all three distinct letters have been drawn.
func (d *Deck) IsGameEnding() bool {
	seen := map[string]bool{}
	for _, l := range d.DrawnLetters {
		seen[l] = true
	}
	return seen[LetterG] && seen[LetterU] && seen[LetterB]
}

func indexOf(ids []uuid.UUID, id uuid.UUID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func insertAt(ids []uuid.UUID, pos int, id uuid.UUID) []uuid.UUID {
	if pos > len(ids) {
		pos = len(ids)
	}
	ids = append(ids, uuid.Nil)
	copy(ids[pos+1:], ids[pos:])
	ids[pos] = id
	return ids
}

// removeID deletes the first occurrence of id, reporting whether it was present.
func removeID(ids []uuid.UUID, id uuid.UUID) ([]uuid.UUID, bool) {
	idx := indexOf(ids, id)
	if idx < 0 {
		return ids, false
	}
	return append(ids[:idx], ids[idx+1:]...), true
}
