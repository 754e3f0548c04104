// internal/game/events.go
package game

import (
	engine "github.com/ppravin88/Shanko/engine"
)

// EventType names a table event.
type EventType string

// Event types emitted by a Table and its Controller.
const (
	EventRoundStart         EventType = "round_start"
	EventCardDrawn          EventType = "card_drawn"     // Card is set only for draws from the discard pile.
	EventCardDiscarded      EventType = "card_discarded" // Public: the discarded card.
	EventCombinationsMelded EventType = "combinations_melded"
	EventPlayerWentOut      EventType = "player_went_out"
	EventCardBought         EventType = "card_bought" // Card is the bought discard; the bonus card stays hidden.
	EventBuyWindowClosed    EventType = "buy_window_closed"
	EventJokerSwapped       EventType = "joker_swapped"
	EventSequenceExtended   EventType = "sequence_extended"
	EventRoundEnd           EventType = "round_end"
	EventStalemate          EventType = "stalemate"
	EventGameEnd            EventType = "game_end"
	EventAIFallback         EventType = "ai_fallback"
	EventTurnTimeout        EventType = "turn_timeout" // Card is the card discarded for the player.
	EventPlayerDisconnected EventType = "player_disconnected"
)

// Event describes something that happened at a table.
type Event struct {
	Type         EventType            `json:"type"`
	GameID       string               `json:"gameId"`
	Round        int                  `json:"round"`
	PlayerID     string               `json:"playerId,omitempty"`
	Source       engine.DrawSource    `json:"source,omitempty"`
	Card         *engine.Card         `json:"card,omitempty"`
	Combinations []engine.Combination `json:"combinations,omitempty"`
	// Scores maps player ID to points, per round for round_end and
	// cumulative for game_end.
	Scores map[string]int `json:"scores,omitempty"`
	Reason string         `json:"reason,omitempty"`
}

func (c *Controller) emit(ev Event) {
	if c.OnEvent != nil {
		c.OnEvent(ev)
	}
}

func (c *Controller) event(g engine.GameState, typ EventType, playerID string) Event {
	return Event{Type: typ, GameID: g.GameID, Round: g.Round, PlayerID: playerID}
}

func (c *Controller) drew(g engine.GameState, playerID string, source engine.DrawSource, card engine.Card) {
	ev := c.event(g, EventCardDrawn, playerID)
	ev.Source = source
	if source == engine.FromDiscardPile {
		ev.Card = &card
	}
	c.emit(ev)
}

// discarded reports a discard and, when it emptied a melded hand, the end of
// the round.
func (c *Controller) discarded(before, after engine.GameState, playerID string, card engine.Card) {
	ev := c.event(before, EventCardDiscarded, playerID)
	ev.Card = &card
	c.emit(ev)
	if !after.Phase.InRound() {
		c.emit(c.event(before, EventPlayerWentOut, playerID))
		c.roundClosed(before, after)
	}
}

// roundClosed emits round_end, and game_end after the last round. before is
// the state the round was played in.
func (c *Controller) roundClosed(before, after engine.GameState) {
	ev := c.event(before, EventRoundEnd, "")
	ev.Scores = make(map[string]int, len(after.Players))
	for _, p := range after.Players {
		if n := len(p.RoundScores); n > 0 {
			ev.Scores[p.ID] = p.RoundScores[n-1]
		}
	}
	c.emit(ev)

	if after.Phase == engine.PhaseGameEnd {
		c.gameEnded(after)
	}
}

func (c *Controller) gameEnded(g engine.GameState) {
	ev := c.event(g, EventGameEnd, g.Winner)
	ev.Scores = make(map[string]int, len(g.Players))
	for _, p := range g.Players {
		ev.Scores[p.ID] = p.CumulativeScore
	}
	c.emit(ev)
}
