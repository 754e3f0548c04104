// internal/game/helpers_test.go
package game

import (
	"fmt"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	engine "github.com/ppravin88/Shanko/engine"
	"github.com/ppravin88/Shanko/engine/agent"
)

// recorder captures table events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recorder) count(typ EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func (r *recorder) last(typ EventType) *Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == typ {
			ev := r.events[i]
			return &ev
		}
	}
	return nil
}

// stubDecider draws from the pile, never melds and discards whatever
// discard returns. buy decides buy offers.
type stubDecider struct {
	discard func(engine.GameState, string) (engine.Card, error)
	buy     bool
}

var _ agent.Decider = (*stubDecider)(nil)

func (s *stubDecider) DecideDraw(engine.GameState, string) engine.DrawSource {
	return engine.FromDrawPile
}

func (s *stubDecider) DecideDiscard(g engine.GameState, playerID string) (engine.Card, error) {
	if s.discard != nil {
		return s.discard(g, playerID)
	}
	p, _ := engine.PlayerByID(g, playerID)
	return p.Hand[len(p.Hand)-1], nil
}

func (s *stubDecider) DecideMeld(engine.GameState, string) agent.MeldDecision {
	return agent.MeldDecision{}
}

func (s *stubDecider) DecideBuy(engine.GameState, string, engine.Card) bool { return s.buy }

func (s *stubDecider) DecideJokerSwap(engine.GameState, string) agent.SwapDecision {
	return agent.SwapDecision{}
}

func (s *stubDecider) DecideExtension(engine.GameState, string) agent.ExtendDecision {
	return agent.ExtendDecision{}
}

// newController returns a controller wired to a fresh recorder and a
// logger whose entries are captured by the returned hook.
func newController(d agent.Decider) (*Controller, *recorder, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	rec := &recorder{}
	return &Controller{Decider: d, Log: logrus.NewEntry(logger), OnEvent: rec.record}, rec, hook
}

// dealt returns the first round of a seeded game, ready for the first draw.
func dealt(t *testing.T, players, humans int, seed uint64) engine.GameState {
	t.Helper()
	g, err := engine.InitializeGameWithSeed(players, humans, seed)
	require.NoError(t, err)
	g, err = engine.StartRound(g)
	require.NoError(t, err)
	return g
}

var cardSeq int

func card(r engine.Rank, s engine.Suit) engine.Card {
	cardSeq++
	return engine.Card{ID: fmt.Sprintf("t%d", cardSeq), Rank: r, Suit: s}
}

func triple(r engine.Rank) []engine.Card {
	return []engine.Card{card(r, engine.SuitHearts), card(r, engine.SuitClubs), card(r, engine.SuitSpades)}
}

// toBuyWindow plays a draw and discard for the current player so the state
// sits in BUY_WINDOW.
func toBuyWindow(t *testing.T, g engine.GameState) engine.GameState {
	t.Helper()
	g, _, err := engine.DrawCard(g, engine.FromDrawPile)
	require.NoError(t, err)
	p, _ := engine.CurrentPlayer(g)
	g, err = engine.DiscardCard(g, p.Hand[0].ID)
	require.NoError(t, err)
	require.Equal(t, engine.PhaseBuyWindow, g.Phase)
	return g
}

// requireScoresAddUp checks every player has seven round scores summing to
// their cumulative score.
func requireScoresAddUp(t *testing.T, g engine.GameState) {
	t.Helper()
	for _, p := range g.Players {
		require.Len(t, p.RoundScores, engine.NumRounds, p.Name)
		sum := 0
		for _, s := range p.RoundScores {
			sum += s
		}
		require.Equal(t, sum, p.CumulativeScore, p.Name)
	}
}
