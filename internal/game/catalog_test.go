package game

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardCatalog(t *testing.T) {
	require.NoError(t, validateCatalog(StandardCatalog))

	total, letters, gubs, elders := 0, 0, 0, 0
	ids := map[string]bool{}
	for _, tmpl := range StandardCatalog {
		assert.False(t, ids[tmpl.ID], "duplicate template id %s", tmpl.ID)
		ids[tmpl.ID] = true
		assert.True(t, tmpl.Kind.Valid(), tmpl.ID)
		total += tmpl.Quantity
		switch {
		case tmpl.Subtype == SubtypeLetter:
			letters += tmpl.Quantity
		case tmpl.Type == TypeGub && tmpl.Subtype == SubtypeElder:
			elders += tmpl.Quantity
			gubs += tmpl.Quantity
		case tmpl.Type == TypeGub:
			gubs += tmpl.Quantity
		}
	}
	assert.Equal(t, 72, total)
	assert.Equal(t, 3, letters)
	assert.Equal(t, 17, gubs)
	assert.Equal(t, 1, elders)
}

func TestLookupTemplate(t *testing.T) {
	tmpl, ok := LookupTemplate(StandardCatalog, "smahl_thief")
	require.True(t, ok)
	assert.Equal(t, KindThief, tmpl.Kind)

	tmpl, ok = LookupTemplate(StandardCatalog, "super lure")
	require.True(t, ok)
	assert.Equal(t, KindLure, tmpl.Kind)

	_, ok = LookupTemplate(StandardCatalog, "joker")
	assert.False(t, ok)
}

func TestNewCard(t *testing.T) {
	tmpl, _ := LookupTemplate(StandardCatalog, "esteemed_elder")
	a, b := NewCard(tmpl), NewCard(tmpl)
	assert.Equal(t, a.ID, b.ID, "copies share the template key")
	assert.NotEqual(t, a.InstanceID, b.InstanceID)
	assert.True(t, a.IsGub())
	assert.True(t, a.IsElder())
	assert.False(t, a.IsProtected())
	assert.False(t, a.IsTrapped())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "flop_boat", KindFlopBoat.String())
	assert.Equal(t, "unknown", numKinds.String())
	assert.False(t, Kind(-1).Valid())
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, "not_your_turn", ErrorCode(ErrNotYourTurn))
	assert.Equal(t, "internal", ErrorCode(errors.New("boom")))
	assert.Equal(t, "illegal_target", ErrorCode(fmt.Errorf("%w: no gub", ErrIllegalTarget)))

	g := setupTestGame(t, 2)
	_, err := g.DrawCard(g.Players[1].ID)
	assert.Equal(t, "not_your_turn", ErrorCode(err))
}
