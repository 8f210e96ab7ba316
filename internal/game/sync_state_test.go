package game

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripView serializes the view for viewer and decodes it the way a client would.
func roundTripView(t *testing.T, g *Game, viewer uuid.UUID) GameView {
	t.Helper()
	data, err := json.Marshal(g.ViewFor(viewer))
	require.NoError(t, err)
	var v GameView
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func TestViewHidesOtherHands(t *testing.T) {
	g := setupTestGame(t, 3)
	for _, viewer := range g.Players {
		v := roundTripView(t, g, viewer.ID)
		require.Len(t, v.Players, 3)
		for i, pv := range v.Players {
			p := g.Players[i]
			assert.Equal(t, p.ID, pv.ID)
			assert.Equal(t, len(p.Hand), pv.HandCount)
			if p.ID == viewer.ID {
				require.Len(t, pv.Hand, len(p.Hand))
				for j, cv := range pv.Hand {
					assert.Equal(t, p.Hand[j], cv.InstanceID)
					assert.NotEmpty(t, cv.Name)
				}
			} else {
				assert.Nil(t, pv.Hand, "viewer %s sees %s's hand", viewer.Name, p.Name)
			}
		}
	}
}

func TestSpectatorViewHidesAllHands(t *testing.T) {
	g := setupTestGame(t, 2)
	v := roundTripView(t, g, uuid.Nil)
	for _, pv := range v.Players {
		assert.Nil(t, pv.Hand)
		assert.Equal(t, 3, pv.HandCount)
	}
}

func TestViewShowsScoutedHand(t *testing.T) {
	g := setupTestGame(t, 2)
	a, b := g.Players[0], g.Players[1]
	scout := giveCard(t, g, a, "scout")
	_, err := g.PlayCard(a.ID, scout.InstanceID, Target{PlayerID: b.ID})
	require.NoError(t, err)

	v := roundTripView(t, g, a.ID)
	assert.Len(t, v.Players[1].Hand, len(b.Hand))
	v = roundTripView(t, g, b.ID)
	assert.Nil(t, v.Players[0].Hand)

	require.NoError(t, g.NextTurn())
	v = roundTripView(t, g, a.ID)
	assert.Nil(t, v.Players[1].Hand)
}

func TestViewPublicState(t *testing.T) {
	g := setupTestGame(t, 2)
	a := g.Players[0]
	x := a.PlayArea.Free[0]
	mush := giveCard(t, g, a, "mushroom")
	_, err := g.PlayCard(a.ID, mush.InstanceID, Target{GubID: x})
	require.NoError(t, err)

	v := roundTripView(t, g, g.Players[1].ID)
	assert.Equal(t, StatusActive, v.Status)
	assert.Equal(t, "TEST", v.RoomCode)
	assert.Equal(t, a.ID, v.CurrentPlayerID)
	assert.True(t, v.Players[0].IsHost)
	assert.False(t, v.Players[1].IsHost)
	assert.Equal(t, 1, v.Players[0].Score)
	require.Len(t, v.Players[0].PlayArea.Protected, 1)
	prot := v.Players[0].PlayArea.Protected[0]
	assert.Equal(t, x, prot.InstanceID)
	require.Len(t, prot.Protection, 1)
	assert.Equal(t, mush.InstanceID, prot.Protection[0].InstanceID)

	require.NotNil(t, v.Deck)
	assert.Equal(t, g.Deck.Remaining(), v.Deck.CardsRemaining)
	assert.Equal(t, 0, v.Deck.DiscardPileSize)
	assert.Nil(t, v.Deck.TopDiscardCard)
	assert.NotNil(t, v.StartedAt)
	assert.Nil(t, v.EndedAt)
	assert.Nil(t, v.Winner)
}

func TestViewDeckAfterDiscard(t *testing.T) {
	g := setupTestGame(t, 2)
	a, b := g.Players[0], g.Players[1]
	spear := giveCard(t, g, a, "spear")
	_, err := g.PlayCard(a.ID, spear.InstanceID, Target{PlayerID: b.ID, GubID: b.PlayArea.Free[0]})
	require.NoError(t, err)

	v := roundTripView(t, g, a.ID)
	assert.Equal(t, 1, v.Deck.DiscardPileSize)
	assert.Equal(t, 1, v.Deck.RemovedCardsCount)
	require.NotNil(t, v.Deck.TopDiscardCard)
	assert.Equal(t, "Spear", v.Deck.TopDiscardCard.Name)
}

func TestLobbyViewHasNoDeck(t *testing.T) {
	g := newLobby(t, "A", "B")
	v := roundTripView(t, g, g.Players[0].ID)
	assert.Equal(t, StatusLobby, v.Status)
	assert.Nil(t, v.Deck)
	assert.Equal(t, uuid.Nil, v.CurrentPlayerID)
	assert.Nil(t, v.StartedAt)

	s := g.Summarize()
	assert.Equal(t, 2, s.PlayerCount)
	assert.Equal(t, 6, s.MaxPlayers)
	assert.Equal(t, "TEST", s.RoomCode)
}
