// internal/game/controller_test.go
package game

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/ppravin88/Shanko/engine"
	"github.com/ppravin88/Shanko/engine/agent"
)

func TestShouldExecuteAITurn(t *testing.T) {
	c, _, _ := newController(agent.NewHeuristic())

	assert.True(t, c.ShouldExecuteAITurn(dealt(t, 4, 0, 1)), "AI seat in DRAW")
	assert.False(t, c.ShouldExecuteAITurn(dealt(t, 4, 1, 1)), "human seat")

	g := toBuyWindow(t, dealt(t, 4, 0, 1))
	assert.False(t, c.ShouldExecuteAITurn(g), "buy window is not a turn")

	setup, err := engine.InitializeGameWithSeed(3, 0, 1)
	require.NoError(t, err)
	assert.False(t, c.ShouldExecuteAITurn(setup), "nothing dealt yet")
}

func TestShouldProcessBuyWindow(t *testing.T) {
	c, _, _ := newController(agent.NewHeuristic())

	g := dealt(t, 4, 0, 1)
	assert.False(t, c.ShouldProcessBuyWindow(g))
	assert.True(t, c.ShouldProcessBuyWindow(toBuyWindow(t, g)))

	two := dealt(t, 2, 0, 1)
	two.Phase = engine.PhaseBuyWindow
	assert.False(t, c.ShouldProcessBuyWindow(two), "no buying with two players")
}

func TestExecuteAITurnPlaysFullTurn(t *testing.T) {
	c, rec, _ := newController(agent.NewHeuristic())
	g := dealt(t, 4, 0, 3)

	next, err := c.ExecuteAITurn(context.Background(), g)
	require.NoError(t, err)

	assert.Contains(t, []engine.Phase{engine.PhaseBuyWindow, engine.PhaseRoundEnd}, next.Phase)
	assert.Equal(t, engine.CardCount(g), engine.CardCount(next), "cards are conserved")
	types := rec.types()
	require.NotEmpty(t, types)
	assert.Equal(t, EventCardDrawn, types[0])
	assert.Equal(t, 1, rec.count(EventCardDiscarded))
	assert.Zero(t, rec.count(EventAIFallback))

	// input untouched
	assert.Equal(t, engine.PhaseDraw, g.Phase)
	assert.Len(t, g.Players[0].Hand, engine.HandSize)
}

func TestExecuteAITurnGoesOut(t *testing.T) {
	c, rec, _ := newController(agent.NewHeuristic())
	g := dealt(t, 4, 0, 5)
	winner := g.Players[0].ID
	g.Players[0].Hand = append(triple(engine.RankSeven), triple(engine.RankNine)...)

	next, err := c.ExecuteAITurn(context.Background(), g)
	require.NoError(t, err)

	assert.Equal(t, engine.PhaseRoundEnd, next.Phase)
	assert.Equal(t, 2, next.Round)
	p, ok := engine.PlayerByID(next, winner)
	require.True(t, ok)
	assert.Empty(t, p.Hand)
	assert.Equal(t, []int{0}, p.RoundScores)

	assert.Equal(t, 1, rec.count(EventCombinationsMelded))
	wentOut := rec.last(EventPlayerWentOut)
	require.NotNil(t, wentOut)
	assert.Equal(t, winner, wentOut.PlayerID)
	roundEnd := rec.last(EventRoundEnd)
	require.NotNil(t, roundEnd)
	assert.Equal(t, 1, roundEnd.Round)
	assert.Equal(t, 0, roundEnd.Scores[winner])
	assert.Len(t, roundEnd.Scores, 4)
}

func TestExecuteAITurnFallsBackToFirstCard(t *testing.T) {
	tests := []struct {
		name    string
		discard func(engine.GameState, string) (engine.Card, error)
		reason  string
	}{
		{
			name: "card not in hand",
			discard: func(engine.GameState, string) (engine.Card, error) {
				return engine.Card{ID: "missing"}, nil
			},
			reason: engine.ErrCardNotInHand.Error(),
		},
		{
			name: "decider error",
			discard: func(engine.GameState, string) (engine.Card, error) {
				return engine.Card{}, errors.New("no idea")
			},
			reason: "no idea",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec, hook := newController(&stubDecider{discard: tt.discard})
			g := dealt(t, 3, 0, 11)
			first := g.Players[0].Hand[0]

			next, err := c.ExecuteAITurn(context.Background(), g)
			require.NoError(t, err)
			assert.Equal(t, engine.PhaseBuyWindow, next.Phase)

			top, ok := engine.TopDiscard(next)
			require.True(t, ok)
			assert.Equal(t, first.ID, top.ID)
			assert.Len(t, next.Players[0].Hand, engine.HandSize)

			fallback := rec.last(EventAIFallback)
			require.NotNil(t, fallback)
			assert.Contains(t, fallback.Reason, tt.reason)
			discarded := rec.last(EventCardDiscarded)
			require.NotNil(t, discarded)
			assert.Equal(t, first.ID, discarded.Card.ID)

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, logrus.WarnLevel, entry.Level)
		})
	}
}

func TestExecuteAITurnRejected(t *testing.T) {
	c, _, _ := newController(agent.NewHeuristic())

	_, err := c.ExecuteAITurn(context.Background(), dealt(t, 4, 4, 1))
	assert.ErrorIs(t, err, ErrNotAITurn)

	_, err = c.ExecuteAITurn(context.Background(), toBuyWindow(t, dealt(t, 4, 0, 1)))
	assert.ErrorIs(t, err, ErrNotAITurn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := dealt(t, 4, 0, 1)
	next, err := c.ExecuteAITurn(ctx, g)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, engine.PhaseDraw, next.Phase)
}

func TestHandleBuyWindowAI(t *testing.T) {
	c, rec, _ := newController(&stubDecider{buy: true})
	g := toBuyWindow(t, dealt(t, 4, 0, 2))
	top, _ := engine.TopDiscard(g)
	buyer := engine.BuyPriority(g)[0]

	next, err := c.HandleBuyWindow(context.Background(), g, nil)
	require.NoError(t, err)

	assert.Equal(t, engine.PhaseDraw, next.Phase)
	p, _ := engine.PlayerByID(next, buyer)
	assert.Len(t, p.Hand, engine.HandSize+2)
	assert.Equal(t, engine.BuysPerRound-1, p.BuysRemaining)
	assert.Equal(t, engine.CardCount(g), engine.CardCount(next))

	assert.Equal(t, 1, rec.count(EventCardBought), "only one buyer per window")
	bought := rec.last(EventCardBought)
	assert.Equal(t, buyer, bought.PlayerID)
	assert.Equal(t, top.ID, bought.Card.ID)
	assert.Equal(t, []EventType{EventCardBought, EventBuyWindowClosed}, rec.types())
}

func TestHandleBuyWindowHumans(t *testing.T) {
	g := toBuyWindow(t, dealt(t, 4, 4, 2))
	priority := engine.BuyPriority(g)
	require.GreaterOrEqual(t, len(priority), 2)

	t.Run("second in line buys", func(t *testing.T) {
		c, rec, _ := newController(agent.NewHeuristic())
		var asked []string
		prompt := func(_ context.Context, _ engine.GameState, pid string, _ engine.Card) (bool, error) {
			asked = append(asked, pid)
			return pid == priority[1], nil
		}

		next, err := c.HandleBuyWindow(context.Background(), g, prompt)
		require.NoError(t, err)
		assert.Equal(t, priority[:2], asked)
		assert.Equal(t, priority[1], rec.last(EventCardBought).PlayerID)
		assert.Equal(t, engine.PhaseDraw, next.Phase)
	})

	t.Run("nil prompt passes", func(t *testing.T) {
		c, rec, _ := newController(agent.NewHeuristic())
		next, err := c.HandleBuyWindow(context.Background(), g, nil)
		require.NoError(t, err)
		assert.Zero(t, rec.count(EventCardBought))
		assert.Equal(t, engine.PhaseDraw, next.Phase)
		assert.Equal(t, nextSeat(g), next.CurrentPlayerIndex)
	})

	t.Run("prompt error passes", func(t *testing.T) {
		c, rec, hook := newController(agent.NewHeuristic())
		prompt := func(context.Context, engine.GameState, string, engine.Card) (bool, error) {
			return true, errors.New("timed out")
		}
		next, err := c.HandleBuyWindow(context.Background(), g, prompt)
		require.NoError(t, err)
		assert.Zero(t, rec.count(EventCardBought))
		assert.Equal(t, engine.PhaseDraw, next.Phase)
		assert.Len(t, hook.AllEntries(), len(priority))
	})
}

func nextSeat(g engine.GameState) int {
	return (g.CurrentPlayerIndex + 1) % len(g.Players)
}

func TestHandleBuyWindowWrongPhase(t *testing.T) {
	c, rec, _ := newController(agent.NewHeuristic())
	g := dealt(t, 4, 0, 1)

	next, err := c.HandleBuyWindow(context.Background(), g, nil)
	assert.ErrorIs(t, err, engine.ErrWrongPhase)
	assert.Equal(t, g.Phase, next.Phase)
	assert.Empty(t, rec.types())
}

func TestHandleRoundTransition(t *testing.T) {
	c, rec, _ := newController(agent.NewHeuristic())
	g := dealt(t, 4, 0, 1)
	ended, err := engine.HandleStalemate(g)
	require.NoError(t, err)
	require.Equal(t, engine.PhaseRoundEnd, ended.Phase)

	next, err := c.HandleRoundTransition(ended)
	require.NoError(t, err)
	assert.Equal(t, engine.PhaseDraw, next.Phase)
	assert.Equal(t, 2, next.Round)
	assert.Equal(t, engine.RoundObjectives[1], next.RoundObjective)
	assert.Equal(t, 1, next.StartingPlayerIndex)
	for _, p := range next.Players {
		assert.Len(t, p.Hand, engine.HandSize)
		assert.Empty(t, p.MeldedCombinations)
		assert.False(t, p.HasMelded)
		assert.Equal(t, engine.BuysPerRound, p.BuysRemaining)
		assert.Len(t, p.RoundScores, 1)
	}
	start := rec.last(EventRoundStart)
	require.NotNil(t, start)
	assert.Equal(t, 2, start.Round)
	assert.Equal(t, next.Players[1].ID, start.PlayerID)

	_, err = c.HandleRoundTransition(g)
	assert.ErrorIs(t, err, engine.ErrWrongPhase)
	_, err = c.AdvanceToNextRound(g)
	assert.ErrorIs(t, err, engine.ErrWrongPhase)

	over := ended.Clone()
	over.Phase = engine.PhaseGameEnd
	same, err := c.HandleRoundTransition(over)
	require.NoError(t, err)
	assert.Equal(t, over, same)
}

func TestFinalizeGame(t *testing.T) {
	c, rec, _ := newController(agent.NewHeuristic())
	g := dealt(t, 4, 0, 1)

	_, err := c.FinalizeGame(g)
	assert.ErrorIs(t, err, engine.ErrInvalidRound)

	g.Round = engine.NumRounds
	for i, score := range []int{30, 10, 20, 10} {
		g.Players[i].CumulativeScore = score
	}
	done, err := c.FinalizeGame(g)
	require.NoError(t, err)
	assert.Equal(t, engine.PhaseGameEnd, done.Phase)
	assert.Equal(t, g.Players[1].ID, done.Winner, "first seat wins ties")

	w, ok := c.Winner(done)
	require.True(t, ok)
	assert.Equal(t, g.Players[1].ID, w.ID)
	_, ok = c.Winner(g)
	assert.False(t, ok)

	end := rec.last(EventGameEnd)
	require.NotNil(t, end)
	assert.Equal(t, 30, end.Scores[g.Players[0].ID])

	standings := c.Standings(done)
	assert.Equal(t, []string{g.Players[1].ID, g.Players[3].ID, g.Players[2].ID, g.Players[0].ID},
		[]string{standings[0].ID, standings[1].ID, standings[2].ID, standings[3].ID})
}

func TestCheckAndHandleStalemate(t *testing.T) {
	c, rec, _ := newController(agent.NewHeuristic())
	g := dealt(t, 4, 0, 1)

	same, closed, err := c.CheckAndHandleStalemate(g)
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Equal(t, g.Phase, same.Phase)
	assert.Empty(t, rec.types())

	g.DrawPile = []engine.Card{}
	g.DiscardPile = g.DiscardPile[:1]
	next, closed, err := c.CheckAndHandleStalemate(g)
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, engine.PhaseRoundEnd, next.Phase)
	assert.Empty(t, next.Winner)
	for _, p := range next.Players {
		assert.Equal(t, engine.RoundScore(p.Hand), p.RoundScores[0], "stalled hands are scored")
	}
	assert.Equal(t, []EventType{EventStalemate, EventRoundEnd}, rec.types())
	assert.Equal(t, "piles exhausted", rec.last(EventStalemate).Reason)
}

func TestEndStalledRoundEndsGame(t *testing.T) {
	c, rec, _ := newController(agent.NewHeuristic())
	g := dealt(t, 3, 0, 4)
	g.Round = engine.NumRounds
	g.RoundObjective = engine.RoundObjectives[engine.NumRounds-1]

	next, err := c.EndStalledRound(g, "turn limit")
	require.NoError(t, err)
	assert.Equal(t, engine.PhaseGameEnd, next.Phase)
	assert.NotEmpty(t, next.Winner)
	assert.Equal(t, []EventType{EventStalemate, EventRoundEnd, EventGameEnd}, rec.types())
	assert.Equal(t, next.Winner, rec.last(EventGameEnd).PlayerID)
}
