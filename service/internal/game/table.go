// internal/game/table.go
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	engine "github.com/ppravin88/Shanko/engine"
	"github.com/ppravin88/Shanko/engine/agent"
)

// HouseRules holds table settings that sit outside the game rules proper.
type HouseRules struct {
	// MaxTurnsPerRound closes a round with no winner once this many turns
	// have been played in it. 0 means unlimited.
	MaxTurnsPerRound int `json:"maxTurnsPerRound" yaml:"maxTurnsPerRound"`
	// TurnTimeout is how long a human seat may take over a turn before the
	// table plays it for them. 0 disables the clock.
	TurnTimeout time.Duration `json:"turnTimeout" yaml:"turnTimeout"`
}

// DefaultHouseRules returns the standard table settings. The turn clock is
// off; interactive tables usually run it at 30s.
func DefaultHouseRules() HouseRules {
	return HouseRules{MaxTurnsPerRound: 400}
}

// Table owns one game. Every change to the state goes through the table's
// mutex and replaces the state wholesale, so observers never see a
// half-applied move.
type Table struct {
	ID         string
	HouseRules HouseRules

	// OnEvent receives every event, in order, while the table lock is held.
	OnEvent func(Event)

	Mu    sync.Mutex
	state engine.GameState
	turns int // turns started in the current round
	ctrl  *Controller
	log   *logrus.Entry

	turnTimer *time.Timer
	timerSeq  uint64 // identifies the armed timer; stale timers check it and bail
}

// NewTable seats a game created by engine.InitializeGame. AI seats are
// played by decider.
func NewTable(state engine.GameState, decider agent.Decider, log *logrus.Entry, rules HouseRules) *Table {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	t := &Table{
		ID:         state.GameID,
		HouseRules: rules,
		state:      state,
		log:        log.WithField("game", state.GameID),
	}
	t.ctrl = &Controller{Decider: decider, Log: t.log, OnEvent: t.emit}
	return t
}

func (t *Table) emit(ev Event) {
	if t.OnEvent != nil {
		t.OnEvent(ev)
	}
}

// State returns a copy of the current game state.
func (t *Table) State() engine.GameState {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return t.state.Clone()
}

// Controller returns the table's flow controller.
func (t *Table) Controller() *Controller { return t.ctrl }

// ---------------------------------------------------------------------------
// Player actions
// ---------------------------------------------------------------------------

// Draw takes a card for playerID from source.
func (t *Table) Draw(playerID string, source engine.DrawSource) (engine.Card, error) {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	if err := engine.ValidatePlayerAction(t.state, playerID, engine.ActionDraw); err != nil {
		return engine.Card{}, err
	}
	next, card, err := engine.DrawCard(t.state, source)
	if err != nil {
		return engine.Card{}, err
	}
	t.turns++
	t.ctrl.drew(next, playerID, source, card)
	t.commit(next)
	return card, nil
}

// Discard throws cardID away for playerID. A timed-out turn is ended the
// same way.
func (t *Table) Discard(playerID, cardID string) error {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	if err := engine.ValidatePlayerAction(t.state, playerID, engine.ActionDiscard); err != nil {
		return err
	}
	return t.discard(playerID, cardID)
}

func (t *Table) discard(playerID, cardID string) error {
	p, _ := engine.PlayerByID(t.state, playerID)
	var card engine.Card
	for _, c := range p.Hand {
		if c.ID == cardID {
			card = c
		}
	}
	next, err := engine.DiscardCard(t.state, cardID)
	if err != nil {
		return err
	}
	t.ctrl.discarded(t.state, next, playerID, card)
	t.commit(next)
	return nil
}

// Meld lays down combinations for playerID.
func (t *Table) Meld(playerID string, combinations []engine.Combination) error {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	if err := engine.ValidatePlayerAction(t.state, playerID, engine.ActionMeld); err != nil {
		return err
	}
	next, err := engine.MeldCombinations(t.state, combinations)
	if err != nil {
		return err
	}
	t.ctrl.melded(t.state, next, playerID)
	t.commit(next)
	return nil
}

// GoOut melds combinations and discards finalCardID, ending the round.
func (t *Table) GoOut(playerID string, combinations []engine.Combination, finalCardID string) error {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	if err := engine.ValidatePlayerAction(t.state, playerID, engine.ActionGoOut); err != nil {
		return err
	}
	next, err := engine.GoOut(t.state, combinations, finalCardID)
	if err != nil {
		return err
	}
	t.ctrl.melded(t.state, next, playerID)
	t.ctrl.emit(t.ctrl.event(t.state, EventPlayerWentOut, playerID))
	t.ctrl.roundClosed(t.state, next)
	t.commit(next)
	return nil
}

// Buy takes the top discard and a bonus card for playerID during a buy
// window.
func (t *Table) Buy(playerID string) (bought, extra engine.Card, err error) {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	if err := engine.ValidatePlayerAction(t.state, playerID, engine.ActionBuy); err != nil {
		return engine.Card{}, engine.Card{}, err
	}
	next, bought, extra, err := engine.BuyCard(t.state, playerID)
	if err != nil {
		return engine.Card{}, engine.Card{}, err
	}
	ev := t.ctrl.event(t.state, EventCardBought, playerID)
	ev.Card = &bought
	t.ctrl.emit(ev)
	t.commit(next)
	return bought, extra, nil
}

// SwapJoker replaces a Joker in a melded sequence with a card from
// playerID's hand.
func (t *Table) SwapJoker(playerID, combinationID, jokerCardID, replacementCardID string) error {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	if err := engine.ValidatePlayerAction(t.state, playerID, engine.ActionSwapJoker); err != nil {
		return err
	}
	next, err := engine.SwapJoker(t.state, playerID, combinationID, jokerCardID, replacementCardID)
	if err != nil {
		return err
	}
	ev := t.ctrl.event(t.state, EventJokerSwapped, playerID)
	if combo, ok := combinationByID(next, combinationID); ok {
		ev.Combinations = []engine.Combination{combo}
	}
	t.ctrl.emit(ev)
	t.commit(next)
	return nil
}

// ExtendSequence attaches cards from playerID's hand to a melded sequence.
func (t *Table) ExtendSequence(playerID, combinationID string, cardIDs []string, position engine.Position) error {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	if err := engine.ValidatePlayerAction(t.state, playerID, engine.ActionExtend); err != nil {
		return err
	}
	next, err := engine.ExtendSequence(t.state, playerID, combinationID, cardIDs, position)
	if err != nil {
		return err
	}
	ev := t.ctrl.event(t.state, EventSequenceExtended, playerID)
	if combo, ok := combinationByID(next, combinationID); ok {
		ev.Combinations = []engine.Combination{combo}
	}
	t.ctrl.emit(ev)
	t.commit(next)
	return nil
}

// HandleDisconnect hands playerID's seat to the AI.
func (t *Table) HandleDisconnect(playerID string) error {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	next, err := engine.HandlePlayerDisconnection(t.state, playerID)
	if err != nil {
		return err
	}
	t.log.WithField("player", playerID).Info("player disconnected, seat handed to AI")
	t.emit(t.ctrl.event(t.state, EventPlayerDisconnected, playerID))
	t.commit(next)
	return nil
}

// ---------------------------------------------------------------------------
// Game loop
// ---------------------------------------------------------------------------

// Step advances the game by one unit of work: dealing a round, one turn, one
// buy window or one round transition. input answers for human seats. The
// context is checked before the step starts; a started step always
// completes.
func (t *Table) Step(ctx context.Context, input HumanInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.Mu.Lock()
	defer t.Mu.Unlock()

	next, err := t.step(ctx, t.state, input)
	t.commit(next)
	return err
}

func (t *Table) step(ctx context.Context, g engine.GameState, input HumanInput) (engine.GameState, error) {
	switch g.Phase {
	case engine.PhaseGameEnd:
		return g, ErrGameOver
	case engine.PhaseSetup:
		t.turns = 0
		return t.ctrl.InitializeRound(g)
	case engine.PhaseRoundEnd:
		t.turns = 0
		return t.ctrl.HandleRoundTransition(g)
	case engine.PhaseBuyWindow:
		if t.ctrl.ShouldProcessBuyWindow(g) {
			return t.ctrl.HandleBuyWindow(ctx, g, buyPrompt(input))
		}
		return engine.CompleteBuyWindow(g)
	}

	if g.Phase == engine.PhaseDraw {
		if next, closed, err := t.ctrl.CheckAndHandleStalemate(g); closed || err != nil {
			return next, err
		}
		if limit := t.HouseRules.MaxTurnsPerRound; limit > 0 && t.turns >= limit {
			return t.ctrl.EndStalledRound(g, fmt.Sprintf("turn limit %d reached", limit))
		}
	}

	if t.ctrl.ShouldExecuteAITurn(g) {
		if g.Phase == engine.PhaseDraw {
			t.turns++
		}
		return t.ctrl.ExecuteAITurn(ctx, g)
	}
	return t.humanTurn(ctx, g, input)
}

// humanTurn draws and discards for a human seat. A failed choice leaves the
// state at the last completed move, so the next Step resumes from there.
func (t *Table) humanTurn(ctx context.Context, g engine.GameState, input HumanInput) (engine.GameState, error) {
	if input == nil {
		return g, ErrNoHumanInput
	}
	p, _ := engine.CurrentPlayer(g)

	if g.Phase == engine.PhaseDraw {
		source, err := input.ChooseDraw(ctx, g, p.ID)
		if err != nil {
			return g, fmt.Errorf("choose draw for %s: %w", p.Name, err)
		}
		next, card, err := engine.DrawCard(g, source)
		if err != nil {
			return g, err
		}
		t.turns++
		t.ctrl.drew(next, p.ID, source, card)
		g = next
	}

	cardID, err := input.ChooseDiscard(ctx, g, p.ID)
	if err != nil {
		return g, fmt.Errorf("choose discard for %s: %w", p.Name, err)
	}
	t.commit(g)
	if err := t.discard(p.ID, cardID); err != nil {
		return g, err
	}
	return t.state, nil
}

// Run steps the game until it ends and returns the final state.
func (t *Table) Run(ctx context.Context, input HumanInput) (engine.GameState, error) {
	for {
		err := t.Step(ctx, input)
		if errors.Is(err, ErrGameOver) {
			return t.State(), nil
		}
		if err != nil {
			return t.State(), err
		}
	}
}
