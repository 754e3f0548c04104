// Package engine implements the Shanko card game rules.
//
// Every operation takes a GameState by value and returns a new one; the
// input is never modified, so callers can keep old states for replay or
// share them with observers. The package does no logging and no I/O.
package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Game setup
// ---------------------------------------------------------------------------

// InitializeGame creates a game for playerCount seats, the first
// humanPlayers of which are human. Shuffles are seeded from the OS.
func InitializeGame(playerCount, humanPlayers int) (GameState, error) {
	return InitializeGameWithSeed(playerCount, humanPlayers, RandomSeed())
}

// InitializeGameWithSeed is InitializeGame with a fixed RNG seed, so every
// deal of the game is reproducible.
func InitializeGameWithSeed(playerCount, humanPlayers int, seed uint64) (GameState, error) {
	if playerCount < MinPlayers || playerCount > MaxPlayers {
		return GameState{}, fmt.Errorf("%w: got %d", ErrInvalidPlayerCount, playerCount)
	}
	if humanPlayers < 0 || humanPlayers > playerCount {
		return GameState{}, fmt.Errorf("%w: got %d of %d", ErrInvalidHumanCount, humanPlayers, playerCount)
	}

	players := make([]Player, playerCount)
	for i := range players {
		p := Player{
			ID:                 uuid.NewString(),
			Type:               AI,
			Name:               fmt.Sprintf("AI %d", i-humanPlayers+1),
			Hand:               []Card{},
			MeldedCombinations: []Combination{},
			BuysRemaining:      BuysPerRound,
			RoundScores:        []int{},
		}
		if i < humanPlayers {
			p.Type = Human
			p.Name = fmt.Sprintf("Player %d", i+1)
		}
		players[i] = p
	}

	return GameState{
		GameID:         uuid.NewString(),
		Players:        players,
		Round:          1,
		RoundObjective: RoundObjectives[0],
		DrawPile:       []Card{},
		DiscardPile:    []Card{},
		Phase:          PhaseSetup,
		RNG:            NewRNG(seed),
	}, nil
}

// StartRound builds and shuffles fresh decks, deals HandSize cards to each
// player in seat order, turns one card face up to seed the discard pile and
// rotates the starting player. Only legal from SETUP or ROUND_END.
func StartRound(state GameState) (GameState, error) {
	if state.Phase != PhaseSetup && state.Phase != PhaseRoundEnd {
		return state, fmt.Errorf("%w: cannot start a round in %s", ErrWrongPhase, state.Phase)
	}
	objective, err := ObjectiveFor(state.Round)
	if err != nil {
		return state, err
	}

	g := state.Clone()
	deck, err := CreateDecks(len(g.Players), &g.RNG)
	if err != nil {
		return state, err
	}

	for i := range g.Players {
		p := &g.Players[i]
		p.Hand = cloneCards(deck[i*HandSize : (i+1)*HandSize])
		p.MeldedCombinations = []Combination{}
		p.HasMelded = false
		p.BuysRemaining = BuysPerRound
	}
	dealt := len(g.Players) * HandSize
	g.DiscardPile = []Card{deck[dealt]}
	g.DrawPile = cloneCards(deck[dealt+1:])

	if g.Round == 1 {
		g.StartingPlayerIndex = 0
	} else {
		g.StartingPlayerIndex = (state.StartingPlayerIndex + 1) % len(g.Players)
	}
	g.CurrentPlayerIndex = g.StartingPlayerIndex
	g.RoundObjective = objective
	g.Phase = PhaseDraw
	g.BuyClaimed = false
	g.Winner = ""
	return g, nil
}

// ---------------------------------------------------------------------------
// Round end
// ---------------------------------------------------------------------------

// EndRound scores the round with winnerID on zero and every other player on
// the value of their hand. After round 7 the overall winner is chosen and the
// game ends; otherwise the round and objective advance and the phase becomes
// ROUND_END.
func EndRound(state GameState, winnerID string) (GameState, error) {
	if _, ok := playerIndex(state, winnerID); !ok {
		return state, fmt.Errorf("%w: %q", ErrPlayerNotFound, winnerID)
	}
	return closeRound(state, winnerID)
}

// DetectStalemate reports whether the round can no longer continue: the draw
// pile is empty and the discard pile has nothing left to reshuffle.
func DetectStalemate(state GameState) bool {
	return len(state.DrawPile) == 0 && len(state.DiscardPile) <= 1
}

// HandleStalemate ends the round with no round winner: every player scores
// their remaining hand.
func HandleStalemate(state GameState) (GameState, error) {
	return closeRound(state, "")
}

func closeRound(state GameState, winnerID string) (GameState, error) {
	if !state.Phase.InRound() {
		return state, fmt.Errorf("%w: cannot end a round in %s", ErrWrongPhase, state.Phase)
	}
	g := state.Clone()
	scores := RoundScores(g.Players, winnerID)
	for i := range g.Players {
		p := &g.Players[i]
		score := scores[p.ID]
		p.CumulativeScore = UpdateCumulativeScore(*p, score)
		p.RoundScores = append(p.RoundScores, score)
	}
	g.BuyClaimed = false

	if g.Round >= NumRounds {
		winner, err := DetermineWinner(g.Players)
		if err != nil {
			return state, err
		}
		g.Winner = winner.ID
		g.Phase = PhaseGameEnd
		return g, nil
	}
	g.Round++
	g.RoundObjective = RoundObjectives[g.Round-1]
	g.Phase = PhaseRoundEnd
	return g, nil
}

// HandlePlayerDisconnection hands a seat over to the AI. The player keeps
// their cards and score.
func HandlePlayerDisconnection(state GameState, playerID string) (GameState, error) {
	idx, ok := playerIndex(state, playerID)
	if !ok {
		return state, fmt.Errorf("%w: %q", ErrPlayerNotFound, playerID)
	}
	g := state.Clone()
	p := &g.Players[idx]
	if p.Type != AI {
		p.Type = AI
		p.Name += " (AI)"
	}
	return g, nil
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

func playerIndex(state GameState, playerID string) (int, bool) {
	for i, p := range state.Players {
		if p.ID == playerID {
			return i, true
		}
	}
	return -1, false
}

func nextIndex(state GameState, idx int) int {
	return (idx + 1) % len(state.Players)
}

// removeCard returns hand without the card identified by id.
func removeCard(hand []Card, id string) ([]Card, Card, bool) {
	idx := indexOfCard(hand, id)
	if idx < 0 {
		return hand, Card{}, false
	}
	out := make([]Card, 0, len(hand)-1)
	out = append(out, hand[:idx]...)
	out = append(out, hand[idx+1:]...)
	return out, hand[idx], true
}

// takeCards resolves ids against hand. It rejects ids that are missing or
// repeated and returns the remaining hand along with the taken cards in id
// order.
func takeCards(hand []Card, ids []string) (rest, taken []Card, err error) {
	used := make(map[string]bool, len(ids))
	taken = make([]Card, 0, len(ids))
	for _, id := range ids {
		if used[id] {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateCard, id)
		}
		used[id] = true
		idx := indexOfCard(hand, id)
		if idx < 0 {
			return nil, nil, fmt.Errorf("%w: %s", ErrCardNotInHand, id)
		}
		taken = append(taken, hand[idx])
	}
	rest = make([]Card, 0, len(hand)-len(taken))
	for _, c := range hand {
		if !used[c.ID] {
			rest = append(rest, c)
		}
	}
	return rest, taken, nil
}

// reshuffleDiscardPile turns every discard but the top one into a fresh,
// shuffled draw pile. It does nothing if there is nothing to reshuffle.
func reshuffleDiscardPile(g *GameState) {
	n := len(g.DiscardPile)
	if n <= 1 {
		return
	}
	top := g.DiscardPile[n-1]
	g.DrawPile = append(g.DrawPile, Shuffle(g.DiscardPile[:n-1], &g.RNG)...)
	g.DiscardPile = []Card{top}
}
