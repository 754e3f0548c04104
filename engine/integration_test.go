//go:build integration

package engine

// Random full games driven through the public operations only. No seat
// ever melds, so every round is closed by the stalemate path after a fixed
// number of turns.
//
// Run: go test -tags integration -run TestIntegration ./engine

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

const turnsPerRound = 60

type playout struct {
	t     *testing.T
	rng   *rand.Rand
	g     GameState
	total int
	steps int
}

func newPlayout(t *testing.T, players int, seed uint64) *playout {
	t.Helper()
	g, err := InitializeGameWithSeed(players, 0, seed)
	if err != nil {
		t.Fatalf("InitializeGameWithSeed(%d): %v", players, err)
	}
	decks, _ := DeckCount(players)
	return &playout{t: t, rng: rand.New(rand.NewSource(int64(seed))), g: g, total: decks * DeckSize}
}

// apply runs op and fails on error. Ops must not touch their input.
func (p *playout) apply(name string, op func(GameState) (GameState, error)) {
	p.t.Helper()
	before := p.g.Clone()
	next, err := op(p.g)
	if err != nil {
		p.t.Fatalf("step %d: %s: %v", p.steps, name, err)
	}
	if !reflect.DeepEqual(before, p.g) {
		p.t.Fatalf("step %d: %s modified its input", p.steps, name)
	}
	p.g = next
	p.steps++
	if p.g.Phase.InRound() {
		if n := CardCount(p.g); n != p.total {
			p.t.Fatalf("step %d: %s: %d cards in play, want %d", p.steps, name, n, p.total)
		}
	}
}

// try runs op and reports whether it succeeded. A failed op must return its
// input unchanged.
func (p *playout) try(op func(GameState) (GameState, error)) bool {
	p.t.Helper()
	next, err := op(p.g)
	if err != nil {
		if !reflect.DeepEqual(next, p.g) {
			p.t.Fatalf("step %d: failed op returned a changed state: %v", p.steps, err)
		}
		return false
	}
	p.g = next
	p.steps++
	return true
}

func (p *playout) turn() {
	p.t.Helper()
	src := FromDrawPile
	if p.rng.Intn(3) == 0 {
		src = FromDiscardPile
	}
	if !p.try(func(g GameState) (GameState, error) { g, _, err := DrawCard(g, src); return g, err }) {
		p.apply("draw from pile", func(g GameState) (GameState, error) { g, _, err := DrawCard(g, FromDrawPile); return g, err })
	}

	hand := p.g.Players[p.g.CurrentPlayerIndex].Hand
	for _, i := range p.rng.Perm(len(hand)) {
		id := hand[i].ID
		if p.try(func(g GameState) (GameState, error) { return DiscardCard(g, id) }) {
			return
		}
	}
	p.t.Fatalf("step %d: no card in a hand of %d could be discarded", p.steps, len(hand))
}

func (p *playout) buyWindow() {
	p.t.Helper()
	if buyers := BuyPriority(p.g); len(buyers) > 0 && p.rng.Intn(2) == 0 {
		id := buyers[p.rng.Intn(len(buyers))]
		p.apply("buy", func(g GameState) (GameState, error) { g, _, _, err := BuyCard(g, id); return g, err })
	}
	p.apply("close buy window", CompleteBuyWindow)
}

// play runs the game to GAME_END and returns the number of operations.
func (p *playout) play() int {
	p.t.Helper()
	turns := 0
	for p.g.Phase != PhaseGameEnd {
		if p.steps > 50_000 {
			p.t.Fatalf("game did not finish")
		}
		switch p.g.Phase {
		case PhaseSetup, PhaseRoundEnd:
			p.apply("start round", StartRound)
			turns = 0
		case PhaseDraw:
			if turns >= turnsPerRound || DetectStalemate(p.g) {
				p.apply("stalemate", HandleStalemate)
				continue
			}
			turns++
			p.turn()
		case PhaseBuyWindow:
			p.buyWindow()
		default:
			p.t.Fatalf("step %d: unexpected phase %s", p.steps, p.g.Phase)
		}
	}
	return p.steps
}

func TestIntegrationRandomGamesFinish(t *testing.T) {
	for players := MinPlayers; players <= MaxPlayers; players++ {
		for seed := uint64(1); seed <= 5; seed++ {
			p := newPlayout(t, players, seed*7919)
			p.play()

			g := p.g
			if g.Winner == "" {
				t.Fatalf("%d players seed %d: no winner", players, seed)
			}
			for _, pl := range g.Players {
				if len(pl.RoundScores) != NumRounds {
					t.Fatalf("%s has %d round scores, want %d", pl.Name, len(pl.RoundScores), NumRounds)
				}
				sum := 0
				for _, s := range pl.RoundScores {
					sum += s
				}
				if sum != pl.CumulativeScore {
					t.Fatalf("%s: round scores sum to %d, cumulative is %d", pl.Name, sum, pl.CumulativeScore)
				}
				if pl.BuysRemaining < 0 || pl.BuysRemaining > BuysPerRound {
					t.Fatalf("%s has %d buys left", pl.Name, pl.BuysRemaining)
				}
			}
			if FinalStandings(g.Players)[0].ID != g.Winner {
				t.Fatalf("%d players seed %d: winner is not first in the standings", players, seed)
			}
		}
	}
}

func TestIntegrationRandomGamesAreDeterministic(t *testing.T) {
	a := newPlayout(t, 5, 31)
	b := newPlayout(t, 5, 31)
	a.play()
	b.play()
	for i := range a.g.Players {
		if !reflect.DeepEqual(a.g.Players[i].RoundScores, b.g.Players[i].RoundScores) {
			t.Fatalf("seat %d scored %v then %v", i, a.g.Players[i].RoundScores, b.g.Players[i].RoundScores)
		}
	}
}

func TestIntegrationOperationsRejectedAfterGameEnd(t *testing.T) {
	p := newPlayout(t, 3, 2)
	p.play()
	g := p.g

	if _, _, err := DrawCard(g, FromDrawPile); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("DrawCard after game end: %v", err)
	}
	if _, err := StartRound(g); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("StartRound after game end: %v", err)
	}
	if _, err := HandleStalemate(g); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("HandleStalemate after game end: %v", err)
	}
	if v := ValidActions(g); v != (ValidActionSet{}) {
		t.Errorf("ValidActions after game end = %+v", v)
	}
}
