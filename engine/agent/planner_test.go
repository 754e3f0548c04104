package agent

import (
	"testing"

	engine "github.com/ppravin88/Shanko/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanObjectiveTriplets(t *testing.T) {
	h := hand(triple(engine.RankKing), triple(engine.RankTwo), triple(engine.RankFive),
		suited(engine.SuitDiamonds, engine.RankNine))
	obj := engine.RoundObjectives[0]

	plan, ok := PlanObjective(h, obj)
	require.True(t, ok)
	requirePlan(t, h, obj, plan)

	// the two most expensive triplets are melded
	ranks := []engine.Rank{plan[0].Cards[0].Rank, plan[1].Cards[0].Rank}
	assert.ElementsMatch(t, []engine.Rank{engine.RankKing, engine.RankFive}, ranks)
}

func TestPlanObjectiveSequences(t *testing.T) {
	h := hand(
		suited(engine.SuitHearts, engine.RankThree, engine.RankFour, engine.RankFive, engine.RankSix),
		suited(engine.SuitSpades, engine.RankNine, engine.RankTen, engine.RankJack, engine.RankQueen),
		suited(engine.SuitClubs, engine.RankTwo, engine.RankKing),
	)
	obj := engine.RoundObjectives[2]

	plan, ok := PlanObjective(h, obj)
	require.True(t, ok)
	requirePlan(t, h, obj, plan)
	for _, combo := range plan {
		assert.Equal(t, engine.Sequence, combo.Type)
	}
}

func TestPlanObjectiveJokers(t *testing.T) {
	tests := []struct {
		name  string
		round int
		hand  []engine.Card
		ok    bool
	}{
		{
			name:  "joker fills a run gap",
			round: 2,
			hand: hand(suited(engine.SuitHearts, engine.RankThree), []engine.Card{joker()},
				suited(engine.SuitHearts, engine.RankFive, engine.RankSix), triple(engine.RankQueen)),
			ok: true,
		},
		{
			name:  "joker pads a triplet",
			round: 1,
			hand: hand(triple(engine.RankSeven), suited(engine.SuitClubs, engine.RankAce, engine.RankAce),
				[]engine.Card{joker()}),
			ok: true,
		},
		{
			name:  "joker cannot sit at the end of a run",
			round: 3,
			hand: hand(suited(engine.SuitHearts, engine.RankJack, engine.RankQueen, engine.RankKing),
				[]engine.Card{joker()}, suited(engine.SuitClubs, engine.RankTwo, engine.RankThree, engine.RankFour, engine.RankFive)),
			ok: false,
		},
		{
			name:  "ace high",
			round: 3,
			hand: hand(suited(engine.SuitHearts, engine.RankJack, engine.RankQueen, engine.RankKing, engine.RankAce),
				suited(engine.SuitClubs, engine.RankAce, engine.RankTwo, engine.RankThree, engine.RankFour)),
			ok: true,
		},
		{
			name:  "no wrap through the ace",
			round: 3,
			hand: hand(suited(engine.SuitHearts, engine.RankQueen, engine.RankKing, engine.RankAce, engine.RankTwo),
				suited(engine.SuitClubs, engine.RankAce, engine.RankTwo, engine.RankThree, engine.RankFour)),
			ok: false,
		},
		{
			name:  "all jokers make nothing",
			round: 1,
			hand:  []engine.Card{joker(), joker(), joker(), joker(), joker(), joker()},
			ok:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := engine.RoundObjectives[tt.round-1]
			plan, ok := PlanObjective(tt.hand, obj)
			require.Equal(t, tt.ok, ok, "plan = %v", plan)
			if ok {
				requirePlan(t, tt.hand, obj, plan)
			}
		})
	}
}

func TestPlanObjectiveShortHand(t *testing.T) {
	_, ok := PlanObjective(triple(engine.RankTen), engine.RoundObjectives[0])
	assert.False(t, ok)
}

// TestPlanObjectiveDealtHands checks every plan found in real deals is a
// legal meld.
func TestPlanObjectiveDealtHands(t *testing.T) {
	found := 0
	for seed := uint64(1); seed <= 40; seed++ {
		g, err := engine.InitializeGameWithSeed(8, 0, seed)
		require.NoError(t, err)
		g, err = engine.StartRound(g)
		require.NoError(t, err)
		// hand plus the draw pile's next few cards, as after several turns
		for i, p := range g.Players {
			h := append(append([]engine.Card(nil), p.Hand...), g.DrawPile[i*4:i*4+4]...)
			for _, obj := range engine.RoundObjectives {
				if plan, ok := PlanObjective(h, obj); ok {
					found++
					requirePlan(t, h, obj, plan)
				}
			}
		}
	}
	assert.Positive(t, found)
}
