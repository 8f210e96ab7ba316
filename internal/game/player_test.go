package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlayer() (*Player, Arena) {
	cards := Arena{}
	return newPlayer("Tester", cards), cards
}

func mkCard(t *testing.T, cards Arena, key string) *Card {
	t.Helper()
	tmpl, ok := LookupTemplate(StandardCatalog, key)
	require.True(t, ok)
	c := NewCard(tmpl)
	cards.Add(c)
	return c
}

func assertDisjointBuckets(t *testing.T, p *Player) {
	t.Helper()
	seen := map[uuid.UUID]bool{}
	for _, bucket := range [][]uuid.UUID{p.PlayArea.Free, p.PlayArea.Protected, p.PlayArea.Trapped} {
		for _, id := range bucket {
			assert.False(t, seen[id], "gub %s in two buckets", id)
			seen[id] = true
		}
	}
}

func TestHand(t *testing.T) {
	p, cards := newTestPlayer()
	c := mkCard(t, cards, "spear")
	p.AddToHand(c)
	assert.Equal(t, p.ID, c.OwnerID)
	assert.Same(t, c, p.HandCard(c.InstanceID))

	assert.Nil(t, p.RemoveFromHand(uuid.New()))
	assert.Same(t, c, p.RemoveFromHand(c.InstanceID))
	assert.Empty(t, p.Hand)
	assert.Nil(t, p.HandCard(c.InstanceID))
}

func TestPlayGubRejectsNonGub(t *testing.T) {
	p, cards := newTestPlayer()
	assert.False(t, p.PlayGub(mkCard(t, cards, "spear")))
	assert.False(t, p.PlayGub(nil))
	assert.True(t, p.PlayGub(mkCard(t, cards, "gub")))
	assert.Len(t, p.PlayArea.Free, 1)
}

func TestProtect(t *testing.T) {
	p, cards := newTestPlayer()
	gub := mkCard(t, cards, "gub")
	require.True(t, p.PlayGub(gub))
	mush := mkCard(t, cards, "mushroom")

	assert.False(t, p.Protect(mkCard(t, cards, "spear"), gub.InstanceID), "only barricades protect")
	assert.False(t, p.Protect(mush, uuid.New()))

	require.True(t, p.Protect(mush, gub.InstanceID))
	assert.True(t, p.InProtected(gub.InstanceID))
	assert.False(t, p.InFree(gub.InstanceID))
	assert.Equal(t, []uuid.UUID{mush.InstanceID}, gub.ProtectionIDs)
	assert.True(t, gub.IsProtected())

	assert.False(t, p.Protect(mkCard(t, cards, "toad_rider"), gub.InstanceID), "already protected")
	assertDisjointBuckets(t, p)
}

func TestTrapAndFree(t *testing.T) {
	p, cards := newTestPlayer()
	gub := mkCard(t, cards, "gub")
	p.PlayGub(gub)
	trap := mkCard(t, cards, "sud_spout")

	require.True(t, p.Trap(gub.InstanceID, trap))
	assert.True(t, p.InTrapped(gub.InstanceID))
	assert.Equal(t, trap.InstanceID, gub.TrapID)
	assert.Equal(t, 0, p.Score())
	assert.False(t, p.Trap(gub.InstanceID, mkCard(t, cards, "sud_spout")), "already trapped")

	freed := p.FreeFromTrap(gub.InstanceID)
	assert.Same(t, trap, freed)
	assert.True(t, p.InFree(gub.InstanceID))
	assert.False(t, gub.IsTrapped())
	assert.Nil(t, p.FreeFromTrap(gub.InstanceID))
	assertDisjointBuckets(t, p)
}

func TestProtectedGubCannotBeTrapped(t *testing.T) {
	p, cards := newTestPlayer()
	gub := mkCard(t, cards, "gub")
	p.PlayGub(gub)
	require.True(t, p.Protect(mkCard(t, cards, "mushroom"), gub.InstanceID))
	assert.False(t, p.Trap(gub.InstanceID, mkCard(t, cards, "sud_spout")))
	assert.False(t, gub.IsTrapped())
}

func TestDestroyProtectionPopsTopBarricade(t *testing.T) {
	p, cards := newTestPlayer()
	gub := mkCard(t, cards, "gub")
	p.PlayGub(gub)
	first := mkCard(t, cards, "mushroom")
	second := mkCard(t, cards, "toad_rider")
	require.True(t, p.Protect(first, gub.InstanceID))
	// stack a second barricade directly; Protect only accepts free Gubs
	gub.ProtectionIDs = append(gub.ProtectionIDs, second.InstanceID)

	assert.Same(t, second, p.DestroyProtection(gub.InstanceID))
	assert.True(t, p.InProtected(gub.InstanceID), "still covered by the first barricade")
	assert.Same(t, first, p.DestroyProtection(gub.InstanceID))
	assert.True(t, p.InFree(gub.InstanceID))
	assert.False(t, gub.IsProtected())
	assert.Nil(t, p.DestroyProtection(gub.InstanceID))
	assertDisjointBuckets(t, p)
}

func TestRemoveGub(t *testing.T) {
	p, cards := newTestPlayer()
	free := mkCard(t, cards, "gub")
	trapped := mkCard(t, cards, "gub")
	protected := mkCard(t, cards, "gub")
	for _, g := range []*Card{free, trapped, protected} {
		p.PlayGub(g)
	}
	trap := mkCard(t, cards, "sud_spout")
	require.True(t, p.Trap(trapped.InstanceID, trap))
	require.True(t, p.Protect(mkCard(t, cards, "mushroom"), protected.InstanceID))

	gub, tr := p.RemoveGub(protected.InstanceID)
	assert.Nil(t, gub, "protected gubs are not removable")
	assert.Nil(t, tr)

	gub, tr = p.RemoveGub(free.InstanceID)
	assert.Same(t, free, gub)
	assert.Nil(t, tr)

	gub, tr = p.RemoveGub(trapped.InstanceID)
	assert.Same(t, trapped, gub)
	assert.Same(t, trap, tr)
	assert.False(t, trapped.IsTrapped())

	assert.Equal(t, []uuid.UUID{protected.InstanceID}, p.PlayArea.Protected)
	assert.Empty(t, p.PlayArea.Free)
	assert.Empty(t, p.PlayArea.Trapped)
}

func TestScoreAndElder(t *testing.T) {
	p, cards := newTestPlayer()
	assert.Equal(t, 0, p.Score())
	assert.False(t, p.HasEsteemedElder())

	elder := mkCard(t, cards, "esteemed_elder")
	p.PlayGub(elder)
	p.PlayGub(mkCard(t, cards, "gub"))
	trapped := mkCard(t, cards, "gub")
	p.PlayGub(trapped)
	p.Trap(trapped.InstanceID, mkCard(t, cards, "sud_spout"))
	assert.Equal(t, 2, p.Score())
	assert.True(t, p.HasEsteemedElder())

	require.True(t, p.Protect(mkCard(t, cards, "mushroom"), elder.InstanceID))
	assert.True(t, p.HasEsteemedElder(), "protected elder still counts")
	assert.Equal(t, 2, p.Score())
}

func TestTrappedElderDoesNotCount(t *testing.T) {
	p, cards := newTestPlayer()
	elder := mkCard(t, cards, "esteemed_elder")
	p.PlayGub(elder)
	p.Trap(elder.InstanceID, mkCard(t, cards, "sud_spout"))
	assert.False(t, p.HasEsteemedElder())
}

func TestRemoveElder(t *testing.T) {
	p, cards := newTestPlayer()
	elder := mkCard(t, cards, "esteemed_elder")
	p.PlayGub(elder)
	mush := mkCard(t, cards, "mushroom")
	require.True(t, p.Protect(mush, elder.InstanceID))

	got, barricades := p.RemoveElder()
	assert.Same(t, elder, got)
	assert.Equal(t, []*Card{mush}, barricades)
	assert.False(t, elder.IsProtected())
	assert.Empty(t, p.PlayArea.Protected)

	got, _ = p.RemoveElder()
	assert.Nil(t, got)
}

func TestRetrieveAll(t *testing.T) {
	p, cards := newTestPlayer()
	a := mkCard(t, cards, "gub")
	b := mkCard(t, cards, "gub")
	c := mkCard(t, cards, "gub")
	p.PlayGub(a)
	p.PlayGub(b)
	p.PlayGub(c)
	mush := mkCard(t, cards, "mushroom")
	trap := mkCard(t, cards, "sud_spout")
	ring := mkCard(t, cards, "ring_of_wisdom")
	require.True(t, p.Protect(mush, b.InstanceID))
	require.True(t, p.Trap(c.InstanceID, trap))
	p.AddEffect(ring)
	require.Equal(t, 6, p.cardCount())

	got := p.RetrieveAll()
	assert.ElementsMatch(t, []*Card{a, b, c, mush, trap, ring}, got)
	assert.Empty(t, p.PlayArea.Free)
	assert.Empty(t, p.PlayArea.Protected)
	assert.Empty(t, p.PlayArea.Trapped)
	assert.Empty(t, p.PlayArea.ActiveEffects)
	assert.False(t, b.IsProtected())
	assert.False(t, c.IsTrapped())
	assert.Equal(t, 0, p.cardCount())
}
