// internal/game/input.go
package game

import (
	"context"

	engine "github.com/ppravin88/Shanko/engine"
)

// HumanInput supplies the choices of human seats. Implementations return a
// choice and must not call back into the Table, which is locked while it
// waits for them.
type HumanInput interface {
	ChooseDraw(ctx context.Context, state engine.GameState, playerID string) (engine.DrawSource, error)
	ChooseDiscard(ctx context.Context, state engine.GameState, playerID string) (cardID string, err error)
	ChooseBuy(ctx context.Context, state engine.GameState, playerID string, card engine.Card) (bool, error)
}

// FirstCardInput is a deterministic stand-in for a person: it always draws
// from the draw pile, discards the first card in hand and never buys. It is
// what a UI falls back to when its turn timers run out.
type FirstCardInput struct{}

var _ HumanInput = FirstCardInput{}

func (FirstCardInput) ChooseDraw(context.Context, engine.GameState, string) (engine.DrawSource, error) {
	return engine.FromDrawPile, nil
}

func (FirstCardInput) ChooseDiscard(_ context.Context, state engine.GameState, playerID string) (string, error) {
	p, ok := engine.PlayerByID(state, playerID)
	if !ok || len(p.Hand) == 0 {
		return "", engine.ErrCardNotInHand
	}
	return p.Hand[0].ID, nil
}

func (FirstCardInput) ChooseBuy(context.Context, engine.GameState, string, engine.Card) (bool, error) {
	return false, nil
}

// buyPrompt adapts input to the Controller's BuyPrompt.
func buyPrompt(input HumanInput) BuyPrompt {
	if input == nil {
		return nil
	}
	return input.ChooseBuy
}
