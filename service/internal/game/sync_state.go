// internal/game/sync_state.go
package game

import (
	engine "github.com/ppravin88/Shanko/engine"
)

// ViewCard is a card as one observer may see it.
type ViewCard struct {
	ID     string `json:"id"`
	Rank   string `json:"rank"`
	Suit   string `json:"suit,omitempty"`
	Points int    `json:"points"`
}

// PlayerView is one seat as seen by an observer. Hand is filled only for the
// observer's own seat; everyone else sees the hand size.
type PlayerView struct {
	PlayerID        string               `json:"playerId"`
	Name            string               `json:"name"`
	Type            engine.PlayerType    `json:"type"`
	HandSize        int                  `json:"handSize"`
	Hand            []ViewCard           `json:"hand,omitempty"`
	HasMelded       bool                 `json:"hasMelded"`
	Melded          []engine.Combination `json:"melded,omitempty"`
	BuysRemaining   int                  `json:"buysRemaining"`
	CumulativeScore int                  `json:"cumulativeScore"`
	RoundScores     []int                `json:"roundScores,omitempty"`
	IsCurrentTurn   bool                 `json:"isCurrentTurn"`
}

// TableView is the game as seen by one observer. The draw pile order and
// other players' hands are never included.
type TableView struct {
	GameID          string                `json:"gameId"`
	Round           int                   `json:"round"`
	Objective       engine.RoundObjective `json:"objective"`
	Phase           engine.Phase          `json:"phase"`
	CurrentPlayerID string                `json:"currentPlayerId,omitempty"`
	DrawPileSize    int                   `json:"drawPileSize"`
	DiscardPileSize int                   `json:"discardPileSize"`
	DiscardTop      *ViewCard             `json:"discardTop,omitempty"`
	Players         []PlayerView          `json:"players"`
	Winner          string                `json:"winner,omitempty"`
	HouseRules      HouseRules            `json:"houseRules"`
	Actions         engine.ValidActionSet `json:"actions"`
}

func viewCard(c engine.Card) ViewCard {
	v := ViewCard{ID: c.ID, Rank: c.Rank.String(), Points: engine.CardPoints(c)}
	if !c.IsJoker() {
		v.Suit = c.Suit.String()
	}
	return v
}

// BuildView renders g for forPlayer. An empty or unknown forPlayer gets the
// spectator view with every hand hidden. Actions are the current player's
// and are only set when forPlayer is that player.
func BuildView(g engine.GameState, forPlayer string, rules HouseRules) TableView {
	v := TableView{
		GameID:          g.GameID,
		Round:           g.Round,
		Objective:       g.RoundObjective,
		Phase:           g.Phase,
		DrawPileSize:    len(g.DrawPile),
		DiscardPileSize: len(g.DiscardPile),
		Winner:          g.Winner,
		HouseRules:      rules,
	}

	current, inTurn := engine.CurrentPlayer(g)
	inTurn = inTurn && g.Phase.InRound()
	if inTurn {
		v.CurrentPlayerID = current.ID
		if current.ID == forPlayer {
			v.Actions = engine.ValidActions(g)
		}
	}

	// Discard top is public.
	if top, ok := engine.TopDiscard(g); ok {
		tc := viewCard(top)
		v.DiscardTop = &tc
	}

	v.Players = make([]PlayerView, len(g.Players))
	for i, p := range g.Players {
		pv := PlayerView{
			PlayerID:        p.ID,
			Name:            p.Name,
			Type:            p.Type,
			HandSize:        len(p.Hand),
			HasMelded:       p.HasMelded,
			Melded:          p.MeldedCombinations,
			BuysRemaining:   p.BuysRemaining,
			CumulativeScore: p.CumulativeScore,
			RoundScores:     p.RoundScores,
			IsCurrentTurn:   inTurn && p.ID == current.ID,
		}
		if p.ID == forPlayer {
			pv.Hand = make([]ViewCard, len(p.Hand))
			for j, c := range p.Hand {
				pv.Hand[j] = viewCard(c)
			}
		}
		v.Players[i] = pv
	}
	return v
}

// ViewFor returns the table as seen by playerID.
func (t *Table) ViewFor(playerID string) TableView {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return BuildView(t.state.Clone(), playerID, t.HouseRules)
}
