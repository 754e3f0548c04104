// internal/game/controller.go
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	engine "github.com/ppravin88/Shanko/engine"
	"github.com/ppravin88/Shanko/engine/agent"
)

var (
	// ErrNotAITurn is returned by ExecuteAITurn when the current seat is not
	// an AI or the phase has nothing for it to do.
	ErrNotAITurn = errors.New("not an AI turn")
	// ErrGameOver is returned by Table.Step once the game has ended.
	ErrGameOver = errors.New("game is over")
	// ErrNoHumanInput is returned when a human seat must act and no input
	// source was supplied.
	ErrNoHumanInput = errors.New("no input for human player")
)

// maxLayOffs bounds the Joker swaps and extensions an AI makes in one turn.
const maxLayOffs = 32

// BuyPrompt asks a human seat whether it wants to buy card.
type BuyPrompt func(ctx context.Context, state engine.GameState, playerID string, card engine.Card) (bool, error)

// Controller sequences turns, buy windows and rounds on top of the engine.
// It holds no game state: every method takes a state and returns the next.
type Controller struct {
	Decider agent.Decider
	Log     *logrus.Entry
	OnEvent func(Event)
}

func (c *Controller) log(g engine.GameState) *logrus.Entry {
	l := c.Log
	if l == nil {
		l = logrus.NewEntry(logrus.StandardLogger())
	}
	return l.WithField("round", g.Round)
}

// ShouldExecuteAITurn reports whether the current seat is an AI with a turn
// to play.
func (c *Controller) ShouldExecuteAITurn(state engine.GameState) bool {
	switch state.Phase {
	case engine.PhaseDraw, engine.PhaseMeld, engine.PhaseDiscard:
	default:
		return false
	}
	p, ok := engine.CurrentPlayer(state)
	return ok && p.Type == engine.AI
}

// ShouldProcessBuyWindow reports whether a buy window is waiting to be run.
func (c *Controller) ShouldProcessBuyWindow(state engine.GameState) bool {
	return state.Phase == engine.PhaseBuyWindow && len(state.Players) > 2
}

// ---------------------------------------------------------------------------
// AI turn
// ---------------------------------------------------------------------------

// ExecuteAITurn plays the rest of the current AI seat's turn: draw, go out
// or meld, lay off on the table, discard. A decision the engine rejects is
// logged and replaced by discarding the first card in hand, so a turn that
// got past the draw always ends with a discard.
func (c *Controller) ExecuteAITurn(ctx context.Context, state engine.GameState) (engine.GameState, error) {
	if err := ctx.Err(); err != nil {
		return state, err
	}
	if !c.ShouldExecuteAITurn(state) {
		return state, fmt.Errorf("%w: phase %s", ErrNotAITurn, state.Phase)
	}
	p, _ := engine.CurrentPlayer(state)
	log := c.log(state).WithField("player", p.Name)

	g := state
	if g.Phase == engine.PhaseDraw {
		next, err := c.aiDraw(g, p.ID, log)
		if err != nil {
			return state, err
		}
		g = next
	}

	if g.Phase == engine.PhaseMeld {
		next, out := c.aiMeld(g, p.ID, log)
		if out {
			return next, nil
		}
		g = next
	}

	g = c.aiLayOff(g, p.ID, log)
	return c.aiDiscard(g, p.ID, log)
}

func (c *Controller) aiDraw(g engine.GameState, playerID string, log *logrus.Entry) (engine.GameState, error) {
	source := c.Decider.DecideDraw(g, playerID)
	next, card, err := engine.DrawCard(g, source)
	if err != nil && source == engine.FromDiscardPile {
		log.WithError(err).Debug("discard pile draw refused, drawing from the pile")
		source = engine.FromDrawPile
		next, card, err = engine.DrawCard(g, source)
	}
	if err != nil {
		return g, fmt.Errorf("ai draw: %w", err)
	}
	c.drew(next, playerID, source, card)
	return next, nil
}

// aiMeld lays down the objective when the Decider asks for it. out reports
// that the player went out and the round is over.
func (c *Controller) aiMeld(g engine.GameState, playerID string, log *logrus.Entry) (next engine.GameState, out bool) {
	p, _ := engine.PlayerByID(g, playerID)
	if p.HasMelded {
		return g, false
	}
	d := c.Decider.DecideMeld(g, playerID)
	if !d.ShouldMeld {
		return g, false
	}

	if final, ok := leftover(p.Hand, d.Combinations); ok {
		next, err := engine.GoOut(g, d.Combinations, final.ID)
		if err == nil {
			c.melded(g, next, playerID)
			c.emit(c.event(g, EventPlayerWentOut, playerID))
			c.roundClosed(g, next)
			log.WithField("card", final.String()).Info("went out")
			return next, true
		}
		log.WithError(err).Warn("go out rejected, melding instead")
	}

	next, err := engine.MeldCombinations(g, d.Combinations)
	if err != nil {
		log.WithError(err).Warn("meld rejected")
		return g, false
	}
	c.melded(g, next, playerID)
	return next, false
}

// leftover returns the single hand card outside combinations, if exactly
// one card is left over.
func leftover(hand []engine.Card, combinations []engine.Combination) (engine.Card, bool) {
	melded := make(map[string]bool)
	for _, combo := range combinations {
		for _, card := range combo.Cards {
			melded[card.ID] = true
		}
	}
	var rest []engine.Card
	for _, card := range hand {
		if !melded[card.ID] {
			rest = append(rest, card)
		}
	}
	if len(rest) != 1 {
		return engine.Card{}, false
	}
	return rest[0], true
}

func (c *Controller) melded(before, after engine.GameState, playerID string) {
	p, _ := engine.PlayerByID(after, playerID)
	ev := c.event(before, EventCombinationsMelded, playerID)
	ev.Combinations = p.MeldedCombinations
	c.emit(ev)
}

// aiLayOff swaps Jokers out of melded sequences and then extends sequences
// for as long as the Decider finds moves.
func (c *Controller) aiLayOff(g engine.GameState, playerID string, log *logrus.Entry) engine.GameState {
	if p, _ := engine.PlayerByID(g, playerID); !p.HasMelded {
		return g
	}

	for i := 0; i < maxLayOffs; i++ {
		d := c.Decider.DecideJokerSwap(g, playerID)
		if !d.ShouldSwap {
			break
		}
		next, err := engine.SwapJoker(g, playerID, d.CombinationID, d.JokerCardID, d.ReplacementCardID)
		if err != nil {
			log.WithError(err).Warn("joker swap rejected")
			break
		}
		ev := c.event(g, EventJokerSwapped, playerID)
		if combo, ok := combinationByID(next, d.CombinationID); ok {
			ev.Combinations = []engine.Combination{combo}
		}
		c.emit(ev)
		g = next
	}

	for i := 0; i < maxLayOffs; i++ {
		d := c.Decider.DecideExtension(g, playerID)
		if !d.ShouldExtend {
			break
		}
		next, err := engine.ExtendSequence(g, playerID, d.CombinationID, d.CardIDs, d.Position)
		if err != nil {
			log.WithError(err).Warn("sequence extension rejected")
			break
		}
		ev := c.event(g, EventSequenceExtended, playerID)
		if combo, ok := combinationByID(next, d.CombinationID); ok {
			ev.Combinations = []engine.Combination{combo}
		}
		c.emit(ev)
		g = next
	}
	return g
}

func combinationByID(g engine.GameState, id string) (engine.Combination, bool) {
	for _, combo := range engine.AllMeldedCombinations(g) {
		if combo.ID == id {
			return combo, true
		}
	}
	return engine.Combination{}, false
}

func (c *Controller) aiDiscard(g engine.GameState, playerID string, log *logrus.Entry) (engine.GameState, error) {
	card, err := c.Decider.DecideDiscard(g, playerID)
	if err == nil {
		var next engine.GameState
		if next, err = engine.DiscardCard(g, card.ID); err == nil {
			c.discarded(g, next, playerID, card)
			return next, nil
		}
	}
	return c.fallbackDiscard(g, playerID, err, log)
}

// fallbackDiscard throws away the first card in hand so the game never
// stalls on a bad decision.
func (c *Controller) fallbackDiscard(g engine.GameState, playerID string, cause error, log *logrus.Entry) (engine.GameState, error) {
	p, _ := engine.PlayerByID(g, playerID)
	if len(p.Hand) == 0 {
		return g, fmt.Errorf("fallback discard: %w", cause)
	}
	card := p.Hand[0]
	log.WithError(cause).WithField("card", card.String()).Warn("ai turn failed, discarding first card")

	next, err := engine.DiscardCard(g, card.ID)
	if err != nil {
		return g, fmt.Errorf("fallback discard: %w", err)
	}
	ev := c.event(g, EventAIFallback, playerID)
	ev.Reason = cause.Error()
	c.emit(ev)
	c.discarded(g, next, playerID, card)
	return next, nil
}

// ---------------------------------------------------------------------------
// Buy window
// ---------------------------------------------------------------------------

// HandleBuyWindow offers the top discard to each eligible player in
// priority order. AI seats ask the Decider, human seats ask prompt; a nil
// prompt declines for every human. The first successful buy ends the
// offers, and the window is always closed before returning.
func (c *Controller) HandleBuyWindow(ctx context.Context, state engine.GameState, prompt BuyPrompt) (engine.GameState, error) {
	if !c.ShouldProcessBuyWindow(state) {
		return state, fmt.Errorf("%w: no buy window in %s", engine.ErrWrongPhase, state.Phase)
	}
	log := c.log(state)
	top, _ := engine.TopDiscard(state)

	g := state
	for _, pid := range engine.BuyPriority(state) {
		p, ok := engine.PlayerByID(g, pid)
		if !ok {
			continue
		}

		var wants bool
		switch {
		case p.Type == engine.AI:
			wants = c.Decider.DecideBuy(g, pid, top)
		case prompt != nil:
			answer, err := prompt(ctx, g, pid, top)
			if err != nil {
				log.WithError(err).WithField("player", p.Name).Warn("buy prompt failed, treating as a pass")
			}
			wants = answer && err == nil
		}
		if !wants {
			continue
		}

		next, bought, _, err := engine.BuyCard(g, pid)
		if err != nil {
			log.WithError(err).WithField("player", p.Name).Warn("buy rejected")
			continue
		}
		ev := c.event(g, EventCardBought, pid)
		ev.Card = &bought
		c.emit(ev)
		g = next
		break
	}

	next, err := engine.CompleteBuyWindow(g)
	if err != nil {
		return state, err
	}
	c.emit(c.event(g, EventBuyWindowClosed, ""))
	return next, nil
}

// ---------------------------------------------------------------------------
// Rounds
// ---------------------------------------------------------------------------

// InitializeRound deals the round held in state.
func (c *Controller) InitializeRound(state engine.GameState) (engine.GameState, error) {
	next, err := engine.StartRound(state)
	if err != nil {
		return state, err
	}
	ev := c.event(next, EventRoundStart, next.Players[next.StartingPlayerIndex].ID)
	c.emit(ev)
	c.log(next).WithField("starter", next.Players[next.StartingPlayerIndex].Name).Debug("round started")
	return next, nil
}

// AdvanceToNextRound clears the per-round player state of a finished round
// and deals the next one.
func (c *Controller) AdvanceToNextRound(state engine.GameState) (engine.GameState, error) {
	if state.Phase != engine.PhaseRoundEnd {
		return state, fmt.Errorf("%w: cannot advance round in %s", engine.ErrWrongPhase, state.Phase)
	}
	g := state.Clone()
	for i := range g.Players {
		p := &g.Players[i]
		p.Hand = []engine.Card{}
		p.MeldedCombinations = []engine.Combination{}
		p.HasMelded = false
		p.BuysRemaining = engine.BuysPerRound
	}
	g.DrawPile = []engine.Card{}
	g.DiscardPile = []engine.Card{}
	return c.InitializeRound(g)
}

// HandleRoundTransition moves on from a finished round: the next round is
// dealt, and a finished game is returned unchanged.
func (c *Controller) HandleRoundTransition(state engine.GameState) (engine.GameState, error) {
	switch state.Phase {
	case engine.PhaseGameEnd:
		return state, nil
	case engine.PhaseRoundEnd:
		return c.AdvanceToNextRound(state)
	}
	return state, fmt.Errorf("%w: no round to transition from in %s", engine.ErrWrongPhase, state.Phase)
}

// FinalizeGame names the player with the lowest cumulative score as winner
// and ends the game. It is only valid once the last round has been reached.
func (c *Controller) FinalizeGame(state engine.GameState) (engine.GameState, error) {
	if state.Round < engine.NumRounds {
		return state, fmt.Errorf("%w: cannot finalize in round %d", engine.ErrInvalidRound, state.Round)
	}
	winner, err := engine.DetermineWinner(state.Players)
	if err != nil {
		return state, err
	}
	g := state.Clone()
	g.Winner = winner.ID
	g.Phase = engine.PhaseGameEnd
	if state.Phase != engine.PhaseGameEnd {
		c.gameEnded(g)
	}
	return g, nil
}

// CheckAndHandleStalemate closes the round when neither pile can supply a
// card. closed reports whether it did.
func (c *Controller) CheckAndHandleStalemate(state engine.GameState) (next engine.GameState, closed bool, err error) {
	if !state.Phase.InRound() || !engine.DetectStalemate(state) {
		return state, false, nil
	}
	next, err = c.EndStalledRound(state, "piles exhausted")
	return next, err == nil, err
}

// EndStalledRound closes the round with no winner, scoring every hand.
func (c *Controller) EndStalledRound(state engine.GameState, reason string) (engine.GameState, error) {
	next, err := engine.HandleStalemate(state)
	if err != nil {
		return state, err
	}
	ev := c.event(state, EventStalemate, "")
	ev.Reason = reason
	c.emit(ev)
	c.log(state).WithField("reason", reason).Info("round ended without a winner")
	c.roundClosed(state, next)
	return next, nil
}

// Winner returns the game winner once the game has ended.
func (c *Controller) Winner(state engine.GameState) (engine.Player, bool) {
	if state.Phase != engine.PhaseGameEnd || state.Winner == "" {
		return engine.Player{}, false
	}
	return engine.PlayerByID(state, state.Winner)
}

// Standings returns the players ordered by cumulative score, best first.
func (c *Controller) Standings(state engine.GameState) []engine.Player {
	return engine.FinalStandings(state.Players)
}
