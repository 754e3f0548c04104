package engine

import (
	"fmt"
	"testing"
)

var testCardSeq int

// mk returns a card with a fresh test ID.
func mk(r Rank, s Suit) Card {
	testCardSeq++
	return Card{ID: fmt.Sprintf("t%d", testCardSeq), Rank: r, Suit: s}
}

func joker() Card { return mk(RankJoker, SuitNone) }

func hearts(ranks ...Rank) []Card {
	out := make([]Card, len(ranks))
	for i, r := range ranks {
		out[i] = mk(r, SuitHearts)
	}
	return out
}

func ids(cards ...Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

// newRound returns a freshly dealt game for n players (no humans).
func newRound(t *testing.T, n int, seed uint64) GameState {
	t.Helper()
	g, err := InitializeGameWithSeed(n, 0, seed)
	if err != nil {
		t.Fatalf("InitializeGameWithSeed(%d): %v", n, err)
	}
	g, err = StartRound(g)
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	return g
}

// atPhase returns a copy of g at phase with the current player's hand
// replaced by hand.
func atPhase(g GameState, phase Phase, hand ...Card) GameState {
	g = g.Clone()
	g.Phase = phase
	g.Players[g.CurrentPlayerIndex].Hand = append([]Card{}, hand...)
	return g
}

func mustDraw(t *testing.T, g GameState, src DrawSource) (GameState, Card) {
	t.Helper()
	next, c, err := DrawCard(g, src)
	if err != nil {
		t.Fatalf("DrawCard(%s): %v", src, err)
	}
	return next, c
}

func expectedCards(t *testing.T, g GameState) int {
	t.Helper()
	decks, err := DeckCount(len(g.Players))
	if err != nil {
		t.Fatalf("DeckCount: %v", err)
	}
	return decks * DeckSize
}

func assertConserved(t *testing.T, g GameState) {
	t.Helper()
	want := expectedCards(t, g)
	if got := CardCount(g); got != want {
		t.Fatalf("CardCount = %d, want %d (phase %s)", got, want, g.Phase)
	}
	seen := make(map[string]bool, want)
	check := func(where string, cards []Card) {
		for _, c := range cards {
			if seen[c.ID] {
				t.Fatalf("card %s (%s) appears twice, second time in %s", c.ID, c, where)
			}
			seen[c.ID] = true
		}
	}
	check("draw pile", g.DrawPile)
	check("discard pile", g.DiscardPile)
	for _, p := range g.Players {
		check(p.Name+" hand", p.Hand)
		for _, combo := range p.MeldedCombinations {
			check(p.Name+" melds", combo.Cards)
		}
	}
}
