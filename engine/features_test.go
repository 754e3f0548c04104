package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
)

// ruleScenario holds the state for a single rules scenario.
type ruleScenario struct {
	cards     []Card
	combos    []Combination
	objective RoundObjective
	players   []Player
}

type scenarioKey struct{}

func scenarioFrom(ctx context.Context) *ruleScenario {
	return ctx.Value(scenarioKey{}).(*ruleScenario)
}

var suitLetters = map[byte]Suit{'H': SuitHearts, 'D': SuitDiamonds, 'C': SuitClubs, 'S': SuitSpades}

// parseCards reads a comma separated list such as "10S,AH,JOKER".
func parseCards(list string) ([]Card, error) {
	var cards []Card
	for i, tok := range strings.Split(list, ",") {
		tok = strings.TrimSpace(tok)
		id := fmt.Sprintf("f%d-%s", i, tok)
		if tok == "JOKER" {
			cards = append(cards, Card{ID: id, Rank: RankJoker})
			continue
		}
		if len(tok) < 2 {
			return nil, fmt.Errorf("bad card %q", tok)
		}
		suit, ok := suitLetters[tok[len(tok)-1]]
		if !ok {
			return nil, fmt.Errorf("bad suit in %q", tok)
		}
		var rank Rank
		if err := rank.UnmarshalText([]byte(tok[:len(tok)-1])); err != nil {
			return nil, err
		}
		cards = append(cards, Card{ID: id, Rank: rank, Suit: suit})
	}
	return cards, nil
}

func theCards(ctx context.Context, list string) error {
	cards, err := parseCards(list)
	if err != nil {
		return err
	}
	scenarioFrom(ctx).cards = cards
	return nil
}

func theyFormACombination(ctx context.Context, verdict, kind string) error {
	s := scenarioFrom(ctx)
	var got bool
	switch kind {
	case "triplet":
		got = IsValidTriplet(s.cards)
	case "sequence":
		got = IsValidSequence(s.cards)
	}
	want := verdict == "form"
	if got != want {
		return fmt.Errorf("%v: valid %s = %v, want %v", s.cards, kind, got, want)
	}
	return nil
}

func roundCombinations(ctx context.Context, round int, spec string) error {
	s := scenarioFrom(ctx)
	obj, err := ObjectiveFor(round)
	if err != nil {
		return err
	}
	s.objective = obj
	for _, part := range strings.Split(spec, "|") {
		kind, list, ok := strings.Cut(part, ":")
		if !ok {
			return fmt.Errorf("bad combination %q", part)
		}
		cards, err := parseCards(list)
		if err != nil {
			return err
		}
		typ := Triplet
		if kind == "S" {
			typ = Sequence
		}
		s.combos = append(s.combos, Combination{Type: typ, Cards: cards})
	}
	return nil
}

func theRoundObjectiveIs(ctx context.Context, verdict string) error {
	s := scenarioFrom(ctx)
	got := MeetsRoundObjective(s.combos, s.objective)
	if want := verdict == "met"; got != want {
		return fmt.Errorf("objective met = %v, want %v", got, want)
	}
	return nil
}

func theHandScores(ctx context.Context, points int) error {
	if got := RoundScore(scenarioFrom(ctx).cards); got != points {
		return fmt.Errorf("hand scores %d, want %d", got, points)
	}
	return nil
}

func playersWithScores(ctx context.Context, table *godog.Table) error {
	s := scenarioFrom(ctx)
	for _, row := range table.Rows[1:] {
		score, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return err
		}
		name := row.Cells[0].Value
		s.players = append(s.players, Player{ID: name, Name: name, CumulativeScore: score})
	}
	return nil
}

func theWinnerIs(ctx context.Context, name string) error {
	w, err := DetermineWinner(scenarioFrom(ctx).players)
	if err != nil {
		return err
	}
	if w.Name != name {
		return fmt.Errorf("winner %s, want %s", w.Name, name)
	}
	return nil
}

// InitializeRulesScenario registers the rule steps.
func InitializeRulesScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return context.WithValue(ctx, scenarioKey{}, &ruleScenario{}), nil
	})

	ctx.Step(`^the cards "([^"]*)"$`, theCards)
	ctx.Step(`^round (\d+) combinations "([^"]*)"$`, roundCombinations)
	ctx.Step(`^players with cumulative scores:$`, playersWithScores)

	ctx.Step(`^they (form|do not form) a valid (triplet|sequence)$`, theyFormACombination)
	ctx.Step(`^the round objective is (met|not met)$`, theRoundObjectiveIs)
	ctx.Step(`^the hand scores (\d+) points$`, theHandScores)
	ctx.Step(`^the winner is "([^"]*)"$`, theWinnerIs)
}

func TestRuleFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeRulesScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
