package agent

import (
	"fmt"
	"testing"

	engine "github.com/ppravin88/Shanko/engine"
	"github.com/stretchr/testify/require"
)

var cardSeq int

func card(r engine.Rank, s engine.Suit) engine.Card {
	cardSeq++
	return engine.Card{ID: fmt.Sprintf("c%d", cardSeq), Rank: r, Suit: s}
}

func joker() engine.Card { return card(engine.RankJoker, engine.SuitNone) }

func suited(s engine.Suit, ranks ...engine.Rank) []engine.Card {
	out := make([]engine.Card, len(ranks))
	for i, r := range ranks {
		out[i] = card(r, s)
	}
	return out
}

func triple(r engine.Rank) []engine.Card {
	return []engine.Card{card(r, engine.SuitHearts), card(r, engine.SuitClubs), card(r, engine.SuitSpades)}
}

func hand(groups ...[]engine.Card) []engine.Card {
	var out []engine.Card
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// table returns a dealt 4-player game at round with player 0's hand
// replaced by h.
func table(t *testing.T, round int, h []engine.Card) engine.GameState {
	t.Helper()
	g, err := engine.InitializeGameWithSeed(4, 0, 99)
	require.NoError(t, err)
	g, err = engine.StartRound(g)
	require.NoError(t, err)
	g.Round = round
	g.RoundObjective = engine.RoundObjectives[round-1]
	g.Players[0].Hand = h
	return g
}

// requirePlan checks that plan is a legal meld of cards taken from h.
func requirePlan(t *testing.T, h []engine.Card, objective engine.RoundObjective, plan []engine.Combination) {
	t.Helper()
	require.True(t, engine.MeetsRoundObjective(plan, objective), "plan %v does not meet %+v", plan, objective)
	inHand := make(map[string]bool)
	for _, c := range h {
		inHand[c.ID] = true
	}
	seen := make(map[string]bool)
	for _, combo := range plan {
		require.NoError(t, engine.ValidateCombination(combo))
		for _, c := range combo.Cards {
			require.True(t, inHand[c.ID], "card %s not in hand", c)
			require.False(t, seen[c.ID], "card %s used twice", c)
			seen[c.ID] = true
		}
	}
}
