package game

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeck(t *testing.T, seed int64) (*Deck, Arena) {
	t.Helper()
	cards := Arena{}
	d, err := BuildDeck(StandardCatalog, cards, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return d, cards
}

// Scenario A: drawing the whole standard deck yields each letter exactly once.
func TestDeckDrawAllLetters(t *testing.T) {
	d, cards := newTestDeck(t, 1)
	require.Equal(t, 72, d.Remaining())
	require.Len(t, cards, 72)

	drawn := 0
	for {
		c, ok := d.Draw()
		if !ok {
			break
		}
		require.NotNil(t, c)
		drawn++
	}
	assert.Equal(t, 72, drawn)
	assert.Equal(t, 0, d.Remaining())
	require.Len(t, d.DrawnLetters, 3)
	assert.ElementsMatch(t, []string{LetterG, LetterU, LetterB}, d.DrawnLetters)
	assert.True(t, d.IsGameEnding())
}

func TestDeckLetterThirds(t *testing.T) {
	// 69 regular cards: third size 23, so G lands in [0,23), U in [23,46), B in [46,69).
	for seed := int64(0); seed < 50; seed++ {
		d, cards := newTestDeck(t, seed)
		pos := map[string]int{}
		for i, id := range d.DrawPile {
			if c := cards.Get(id); c.IsLetter() {
				pos[c.Name] = i
			}
		}
		require.Len(t, pos, 3)
		assert.GreaterOrEqual(t, pos[LetterG], 0)
		assert.Less(t, pos[LetterG], 23, "seed %d", seed)
		assert.GreaterOrEqual(t, pos[LetterU], 23, "seed %d", seed)
		assert.Less(t, pos[LetterU], 46, "seed %d", seed)
		assert.GreaterOrEqual(t, pos[LetterB], 46, "seed %d", seed)
		assert.Less(t, pos[LetterB], 69, "seed %d", seed)
	}
}

func TestDeckSeedIsDeterministic(t *testing.T) {
	a, ac := newTestDeck(t, 5)
	b, bc := newTestDeck(t, 5)
	require.Equal(t, len(a.DrawPile), len(b.DrawPile))
	for i := range a.DrawPile {
		assert.Equal(t, ac.Get(a.DrawPile[i]).ID, bc.Get(b.DrawPile[i]).ID)
	}
}

func TestDeckTinyCatalog(t *testing.T) {
	catalog := []Template{
		{ID: "gub", Name: "Gub", Type: TypeGub, Quantity: 1, Kind: KindGub},
		{ID: "letter_g", Name: LetterG, Type: TypeLetter, Subtype: SubtypeLetter, Quantity: 1, Kind: KindLetter},
		{ID: "letter_u", Name: LetterU, Type: TypeLetter, Subtype: SubtypeLetter, Quantity: 1, Kind: KindLetter},
		{ID: "letter_b", Name: LetterB, Type: TypeLetter, Subtype: SubtypeLetter, Quantity: 1, Kind: KindLetter},
	}
	cards := Arena{}
	d, err := BuildDeck(catalog, cards, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.Equal(t, 4, d.Remaining())

	// with a zero third every letter goes on top, each above the previous
	names := []string{}
	for i := 0; i < 4; i++ {
		c, ok := d.Draw()
		require.True(t, ok)
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{LetterB, LetterU, LetterG, "Gub"}, names)

	_, ok := d.Draw()
	assert.False(t, ok)
	_, ok = d.Peek()
	assert.False(t, ok)
}

func TestBuildDeckRejectsBadCatalog(t *testing.T) {
	noLetters := []Template{{ID: "gub", Name: "Gub", Type: TypeGub, Quantity: 3, Kind: KindGub}}
	_, err := BuildDeck(noLetters, Arena{}, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrInvalidDeck)

	twoGs := append([]Template{}, StandardCatalog...)
	for i := range twoGs {
		if twoGs[i].ID == "letter_g" {
			twoGs[i].Quantity = 2
		}
	}
	_, err = BuildDeck(twoGs, Arena{}, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrInvalidDeck)

	badKind := append([]Template{}, StandardCatalog...)
	badKind[0].Kind = numKinds
	_, err = BuildDeck(badKind, Arena{}, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrInvalidDeck)
}

func TestDeckPeekDoesNotMutate(t *testing.T) {
	d, _ := newTestDeck(t, 2)
	before := d.Remaining()
	c1, ok := d.Peek()
	require.True(t, ok)
	c2, _ := d.Peek()
	assert.Same(t, c1, c2)
	assert.Equal(t, before, d.Remaining())

	drawn, _ := d.Draw()
	assert.Same(t, c1, drawn)
}

func TestDeckDiscardAndRemoveResetLinks(t *testing.T) {
	d, cards := newTestDeck(t, 4)
	c, _ := d.Draw()
	c.OwnerID = uuid.New()
	c.ProtectionIDs = []uuid.UUID{uuid.New()}
	c.TrapID = uuid.New()

	d.Discard(c)
	assert.Equal(t, uuid.Nil, c.OwnerID)
	assert.Nil(t, c.ProtectionIDs)
	assert.Equal(t, uuid.Nil, c.TrapID)
	top, ok := d.TopDiscard()
	require.True(t, ok)
	assert.Same(t, c, top)

	taken, ok := d.TakeDiscard(uuid.Nil)
	require.True(t, ok)
	assert.Same(t, c, taken)
	assert.Empty(t, d.DiscardPile)

	d.Remove(c)
	assert.Equal(t, []uuid.UUID{c.InstanceID}, d.Removed)
	assert.NotNil(t, cards.Get(c.InstanceID))
}

func TestDeckTakeDiscardByID(t *testing.T) {
	d, _ := newTestDeck(t, 6)
	a, _ := d.Draw()
	b, _ := d.Draw()
	d.Discard(a)
	d.Discard(b)

	_, ok := d.TakeDiscard(uuid.New())
	assert.False(t, ok)

	got, ok := d.TakeDiscard(a.InstanceID)
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, []uuid.UUID{b.InstanceID}, d.DiscardPile)
	assert.False(t, d.InDiscard(a.InstanceID))
	assert.True(t, d.InDiscard(b.InstanceID))
}

func TestDeckIsGameEndingNeedsDistinctLetters(t *testing.T) {
	d := &Deck{DrawnLetters: []string{LetterG, LetterG, LetterU}}
	assert.False(t, d.IsGameEnding())
	d.DrawnLetters = append(d.DrawnLetters, LetterB)
	assert.True(t, d.IsGameEnding())
}

func TestDeckReshuffleKeepsCards(t *testing.T) {
	d, _ := newTestDeck(t, 8)
	before := append([]uuid.UUID{}, d.DrawPile...)
	d.Reshuffle()
	assert.ElementsMatch(t, before, d.DrawPile)
}
