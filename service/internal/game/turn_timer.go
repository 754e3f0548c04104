// internal/game/turn_timer.go
package game

import (
	"errors"
	"time"

	engine "github.com/ppravin88/Shanko/engine"
	"github.com/ppravin88/Shanko/engine/agent"
)

// ErrNoTurnToExpire is returned by ExpireTurn when no human seat is in the
// middle of a turn.
var ErrNoTurnToExpire = errors.New("no human turn in progress")

// commit replaces the state and keeps the turn clock in step with it: a
// human seat starting a turn gets a fresh clock, the clock keeps running
// through that seat's meld and discard, and anything else stops it.
// Caller holds Mu.
func (t *Table) commit(next engine.GameState) {
	prev := t.state
	t.state = next
	if t.HouseRules.TurnTimeout <= 0 {
		return
	}

	switch next.Phase {
	case engine.PhaseDraw:
		newTurn := prev.Phase != engine.PhaseDraw ||
			prev.CurrentPlayerIndex != next.CurrentPlayerIndex ||
			prev.Round != next.Round
		if !newTurn {
			return
		}
		if p, ok := engine.CurrentPlayer(next); ok && p.Type == engine.Human {
			t.armTimer()
			return
		}
		t.stopTimer()
	case engine.PhaseMeld, engine.PhaseDiscard:
	default:
		t.stopTimer()
	}
}

func (t *Table) armTimer() {
	t.stopTimer()
	seq := t.timerSeq
	t.turnTimer = time.AfterFunc(t.HouseRules.TurnTimeout, func() {
		t.Mu.Lock()
		defer t.Mu.Unlock()
		if seq != t.timerSeq {
			return
		}
		t.turnTimer = nil
		if err := t.expireTurn(); err != nil {
			t.log.WithError(err).Warn("turn timeout could not be played")
		}
	})
}

func (t *Table) stopTimer() {
	t.timerSeq++
	if t.turnTimer != nil {
		t.turnTimer.Stop()
		t.turnTimer = nil
	}
}

// ExpireTurn plays out the current human turn as if its clock ran out: a
// card is drawn from the draw pile if the seat has not drawn yet, and the
// least useful card in hand is discarded.
func (t *Table) ExpireTurn() error {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return t.expireTurn()
}

func (t *Table) expireTurn() error {
	g := t.state
	p, ok := engine.CurrentPlayer(g)
	if !ok || p.Type != engine.Human {
		return ErrNoTurnToExpire
	}
	switch g.Phase {
	case engine.PhaseDraw, engine.PhaseMeld, engine.PhaseDiscard:
	default:
		return ErrNoTurnToExpire
	}
	log := t.log.WithField("player", p.Name)

	if g.Phase == engine.PhaseDraw {
		if engine.DetectStalemate(g) {
			next, err := t.ctrl.EndStalledRound(g, "piles exhausted")
			if err != nil {
				return err
			}
			t.commit(next)
			return nil
		}
		next, card, err := engine.DrawCard(g, engine.FromDrawPile)
		if err != nil {
			return err
		}
		t.turns++
		t.ctrl.drew(next, p.ID, engine.FromDrawPile, card)
		t.commit(next)
		g = next
		p, _ = engine.CurrentPlayer(g)
	}

	card, err := agent.LeastUseful(p.Hand, g.RoundObjective)
	if err != nil {
		return err
	}
	ev := t.ctrl.event(g, EventTurnTimeout, p.ID)
	ev.Card = &card
	t.emit(ev)
	log.WithField("card", card.String()).Info("turn timed out, discarding for player")
	return t.discard(p.ID, card.ID)
}

// Close stops the turn clock. The table stays usable.
func (t *Table) Close() {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	t.stopTimer()
}
