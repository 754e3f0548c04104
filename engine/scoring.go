package engine

import (
	"fmt"
	"sort"
)

// CardPoints returns the penalty value of a card left in hand.
// Jokers are 50, Aces 15, face cards 10 and numbered cards their face value.
func CardPoints(c Card) int {
	switch {
	case c.Rank == RankJoker:
		return 50
	case c.Rank == RankAce:
		return 15
	case c.Rank >= RankJack && c.Rank <= RankKing:
		return 10
	case c.Rank >= RankTwo && c.Rank <= RankTen:
		return int(c.Rank)
	default:
		panic(fmt.Sprintf("engine: no point value for rank %d", uint8(c.Rank)))
	}
}

// RoundScore sums the points of every card in hand.
func RoundScore(hand []Card) int {
	total := 0
	for _, c := range hand {
		total += CardPoints(c)
	}
	return total
}

// RoundScores scores each player's remaining hand. The round winner scores
// zero; pass an empty winnerID when nobody went out.
func RoundScores(players []Player, winnerID string) map[string]int {
	scores := make(map[string]int, len(players))
	for _, p := range players {
		if winnerID != "" && p.ID == winnerID {
			scores[p.ID] = 0
			continue
		}
		scores[p.ID] = RoundScore(p.Hand)
	}
	return scores
}

// UpdateCumulativeScore returns the player's total after adding roundScore.
func UpdateCumulativeScore(p Player, roundScore int) int {
	return p.CumulativeScore + roundScore
}

// DetermineWinner returns the player with the lowest cumulative score.
// Ties go to the player listed first.
func DetermineWinner(players []Player) (Player, error) {
	if len(players) == 0 {
		return Player{}, ErrNoPlayers
	}
	best := 0
	for i := 1; i < len(players); i++ {
		if players[i].CumulativeScore < players[best].CumulativeScore {
			best = i
		}
	}
	return players[best].clone(), nil
}

// FinalStandings returns the players ordered by cumulative score, lowest
// first, preserving seat order between equal scores.
func FinalStandings(players []Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = p.clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CumulativeScore < out[j].CumulativeScore
	})
	return out
}
