package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	g := setupTestGame(t, 3)
	a, b := g.Players[0], g.Players[1]
	mush := giveCard(t, g, a, "mushroom")
	_, err := g.PlayCard(a.ID, mush.InstanceID, Target{GubID: a.PlayArea.Free[0]})
	require.NoError(t, err)
	trap := giveCard(t, g, a, "sud_spout")
	_, err = g.PlayCard(a.ID, trap.InstanceID, Target{PlayerID: b.ID, GubID: b.PlayArea.Free[0]})
	require.NoError(t, err)
	scout := giveCard(t, g, a, "scout")
	_, err = g.PlayCard(a.ID, scout.InstanceID, Target{PlayerID: b.ID})
	require.NoError(t, err)

	data, err := g.MarshalSnapshot()
	require.NoError(t, err)
	restored, err := UnmarshalSnapshot(data)
	require.NoError(t, err)

	assert.Equal(t, g.ID, restored.ID)
	assert.Equal(t, g.Status, restored.Status)
	assert.Equal(t, g.TurnNumber, restored.TurnNumber)
	assert.Equal(t, g.Deck.DrawPile, restored.Deck.DrawPile)
	assert.Equal(t, g.Deck.DiscardPile, restored.Deck.DiscardPile)
	assert.Equal(t, g.Deck.DrawnLetters, restored.Deck.DrawnLetters)
	assert.Len(t, restored.Cards, len(g.Cards))
	assert.True(t, restored.CanSeeHand(a.ID, b.ID))

	for _, p := range g.Players {
		want, err := json.Marshal(g.ViewFor(p.ID))
		require.NoError(t, err)
		got, err := json.Marshal(restored.ViewFor(p.ID))
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(got), "view for %s", p.Name)
	}

	// the restored game keeps playing
	_, err = restored.DrawCard(a.ID)
	require.NoError(t, err)
	require.NoError(t, restored.EndTurn(a.ID))
	assert.NoError(t, restored.Audit())
}

func TestSnapshotLobby(t *testing.T) {
	g := newLobby(t, "A", "B")
	data, err := g.MarshalSnapshot()
	require.NoError(t, err)
	restored, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, StatusLobby, restored.Status)
	assert.Len(t, restored.Players, 2)

	_, err = restored.AddPlayer("C")
	require.NoError(t, err)
	require.NoError(t, restored.Start())
	assert.NoError(t, restored.Audit())
}

func TestSnapshotRejectsCorruptState(t *testing.T) {
	_, err := UnmarshalSnapshot([]byte("{not json"))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	g := setupTestGame(t, 2)
	s := g.Snapshot()
	// duplicate a card across two zones
	s.Players[0].Hand = append(s.Players[0].Hand, s.Deck.DrawPile[0])
	_, err = Restore(s)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	g = setupTestGame(t, 2)
	s = g.Snapshot()
	s.Status = "paused"
	_, err = Restore(s)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	g = setupTestGame(t, 2)
	s = g.Snapshot()
	s.Players[1].IsCurrentTurn = true
	_, err = Restore(s)
	assert.ErrorIs(t, err, ErrInvalidSnapshot, "two players hold the turn")

	g = setupTestGame(t, 2)
	s = g.Snapshot()
	s.Deck = nil
	_, err = Restore(s)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}
