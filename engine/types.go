package engine

import (
	"encoding/json"
	"fmt"
)

// Rank is a closed enumeration of card ranks. Numeric ranks use their face
// value so that a rank doubles as its sequence position (Ace excepted).
type Rank uint8

const (
	RankInvalid Rank = 0
	RankTwo     Rank = 2
	RankThree   Rank = 3
	RankFour    Rank = 4
	RankFive    Rank = 5
	RankSix     Rank = 6
	RankSeven   Rank = 7
	RankEight   Rank = 8
	RankNine    Rank = 9
	RankTen     Rank = 10
	RankJack    Rank = 11
	RankQueen   Rank = 12
	RankKing    Rank = 13
	RankAce     Rank = 14
	RankJoker   Rank = 15
)

// Sequence positions of the Ace.
const (
	acePositionLow  = 1
	acePositionHigh = 14
)

var rankOrder = [...]Rank{
	RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven, RankEight,
	RankNine, RankTen, RankJack, RankQueen, RankKing, RankAce,
}

// RankOrder returns the 13 standard ranks in ascending order (Ace high).
// The returned slice is a copy.
func RankOrder() []Rank {
	out := make([]Rank, len(rankOrder))
	copy(out, rankOrder[:])
	return out
}

var rankNames = map[Rank]string{
	RankTwo: "2", RankThree: "3", RankFour: "4", RankFive: "5", RankSix: "6",
	RankSeven: "7", RankEight: "8", RankNine: "9", RankTen: "10",
	RankJack: "J", RankQueen: "Q", RankKing: "K", RankAce: "A", RankJoker: "JOKER",
}

// Valid reports whether r is one of the 14 known ranks.
func (r Rank) Valid() bool {
	_, ok := rankNames[r]
	return ok
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rank(%d)", uint8(r))
}

// position returns the sequence position of a non-Joker rank.
// aceHigh selects between the two Ace positions.
func (r Rank) position(aceHigh bool) int {
	if r == RankAce {
		if aceHigh {
			return acePositionHigh
		}
		return acePositionLow
	}
	return int(r)
}

// MarshalText implements encoding.TextMarshaler.
func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot marshal unknown rank %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rank) UnmarshalText(text []byte) error {
	s := string(text)
	for rank, name := range rankNames {
		if name == s {
			*r = rank
			return nil
		}
	}
	return fmt.Errorf("unknown rank %q", s)
}

// Suit of a card. Jokers carry SuitNone.
type Suit uint8

const (
	SuitNone     Suit = 0
	SuitHearts   Suit = 1
	SuitDiamonds Suit = 2
	SuitClubs    Suit = 3
	SuitSpades   Suit = 4
)

// Suits lists the four standard suits in deck-building order.
var Suits = [...]Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

var suitNames = map[Suit]string{
	SuitHearts:   "HEARTS",
	SuitDiamonds: "DIAMONDS",
	SuitClubs:    "CLUBS",
	SuitSpades:   "SPADES",
}

func (s Suit) String() string {
	if s == SuitNone {
		return "NONE"
	}
	if name, ok := suitNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Suit(%d)", uint8(s))
}

// MarshalJSON encodes SuitNone as null and the others by name.
func (s Suit) MarshalJSON() ([]byte, error) {
	if s == SuitNone {
		return []byte("null"), nil
	}
	name, ok := suitNames[s]
	if !ok {
		return nil, fmt.Errorf("cannot marshal unknown suit %d", uint8(s))
	}
	return json.Marshal(name)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *Suit) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = SuitNone
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for suit, n := range suitNames {
		if n == name {
			*s = suit
			return nil
		}
	}
	return fmt.Errorf("unknown suit %q", name)
}

// Card is an immutable playing card. Identity is ID; cards with the same rank
// and suit from different decks are distinct.
type Card struct {
	ID        string `json:"id"`
	Rank      Rank   `json:"rank"`
	Suit      Suit   `json:"suit"`
	DeckIndex int    `json:"deckIndex"`
}

// IsJoker reports whether the card is a Joker.
func (c Card) IsJoker() bool { return c.Rank == RankJoker }

func (c Card) String() string {
	if c.IsJoker() {
		return "JOKER"
	}
	return c.Rank.String() + suitSymbol(c.Suit)
}

func suitSymbol(s Suit) string {
	switch s {
	case SuitHearts:
		return "♥"
	case SuitDiamonds:
		return "♦"
	case SuitClubs:
		return "♣"
	case SuitSpades:
		return "♠"
	default:
		return "?"
	}
}

// CombinationType distinguishes triplets from sequences.
type CombinationType string

const (
	Triplet  CombinationType = "TRIPLET"
	Sequence CombinationType = "SEQUENCE"
)

// Combination is a melded (or proposed) set of cards.
type Combination struct {
	ID       string          `json:"id"`
	Type     CombinationType `json:"type"`
	Cards    []Card          `json:"cards"`
	PlayerID string          `json:"playerId"`
}

func (c Combination) clone() Combination {
	c.Cards = cloneCards(c.Cards)
	return c
}

// PlayerType marks a seat as human- or AI-controlled.
type PlayerType string

const (
	Human PlayerType = "HUMAN"
	AI    PlayerType = "AI"
)

// BuysPerRound is the number of buy tokens each player receives per round.
const BuysPerRound = 3

// Player holds one participant's hand, melds and scores.
type Player struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Type               PlayerType    `json:"type"`
	Hand               []Card        `json:"hand"`
	MeldedCombinations []Combination `json:"meldedCombinations"`
	HasMelded          bool          `json:"hasMelded"`
	BuysRemaining      int           `json:"buysRemaining"`
	CumulativeScore    int           `json:"cumulativeScore"`
	RoundScores        []int         `json:"roundScores"`
}

func (p Player) clone() Player {
	p.Hand = cloneCards(p.Hand)
	if p.MeldedCombinations != nil {
		combos := make([]Combination, len(p.MeldedCombinations))
		for i, c := range p.MeldedCombinations {
			combos[i] = c.clone()
		}
		p.MeldedCombinations = combos
	}
	if p.RoundScores != nil {
		p.RoundScores = append(make([]int, 0, len(p.RoundScores)), p.RoundScores...)
	}
	return p
}

// MeldedCardCount returns the number of cards in the player's melded combinations.
func (p Player) MeldedCardCount() int {
	n := 0
	for _, c := range p.MeldedCombinations {
		n += len(c.Cards)
	}
	return n
}

// RoundObjective is the melding requirement of one round.
type RoundObjective struct {
	Round      int `json:"round"`
	Triplets   int `json:"triplets"`
	Sequences  int `json:"sequences"`
	TotalCards int `json:"totalCards"`
}

// NumRounds is the length of a game.
const NumRounds = 7

// RoundObjectives is the fixed schedule of increasing difficulty.
var RoundObjectives = [NumRounds]RoundObjective{
	{Round: 1, Triplets: 2, Sequences: 0, TotalCards: 6},
	{Round: 2, Triplets: 1, Sequences: 1, TotalCards: 7},
	{Round: 3, Triplets: 0, Sequences: 2, TotalCards: 8},
	{Round: 4, Triplets: 3, Sequences: 0, TotalCards: 9},
	{Round: 5, Triplets: 2, Sequences: 1, TotalCards: 10},
	{Round: 6, Triplets: 1, Sequences: 2, TotalCards: 11},
	{Round: 7, Triplets: 0, Sequences: 3, TotalCards: 12},
}

// ObjectiveFor returns the objective of a 1-based round.
func ObjectiveFor(round int) (RoundObjective, error) {
	if round < 1 || round > NumRounds {
		return RoundObjective{}, fmt.Errorf("%w: %d", ErrInvalidRound, round)
	}
	return RoundObjectives[round-1], nil
}

// Phase represents the stage of the turn state machine.
type Phase string

const (
	PhaseSetup     Phase = "SETUP"
	PhaseDraw      Phase = "DRAW"
	PhaseMeld      Phase = "MELD"
	PhaseDiscard   Phase = "DISCARD"
	PhaseBuyWindow Phase = "BUY_WINDOW"
	PhaseRoundEnd  Phase = "ROUND_END"
	PhaseGameEnd   Phase = "GAME_END"
)

// InRound reports whether the phase belongs to an active round.
func (p Phase) InRound() bool {
	switch p {
	case PhaseDraw, PhaseMeld, PhaseDiscard, PhaseBuyWindow:
		return true
	}
	return false
}

// DrawSource selects the pile a card is drawn from.
type DrawSource string

const (
	FromDrawPile    DrawSource = "DRAW"
	FromDiscardPile DrawSource = "DISCARD"
)

// Position selects the end of a sequence an extension attaches to.
type Position string

const (
	AtStart Position = "START"
	AtEnd   Position = "END"
)

// GameState is the complete state of a Shanko game. It is treated as a value:
// engine functions return a new GameState and never modify their input.
type GameState struct {
	GameID              string         `json:"gameId"`
	Players             []Player       `json:"players"`
	CurrentPlayerIndex  int            `json:"currentPlayerIndex"`
	StartingPlayerIndex int            `json:"startingPlayerIndex"`
	Round               int            `json:"round"`
	RoundObjective      RoundObjective `json:"roundObjective"`
	DrawPile            []Card         `json:"drawPile"`    // top = index 0
	DiscardPile         []Card         `json:"discardPile"` // top = last index
	Phase               Phase          `json:"phase"`
	Winner              string         `json:"winner,omitempty"`

	// BuyClaimed is set once a buy has been made in the current buy window.
	BuyClaimed bool `json:"buyClaimed"`
	// RNG is the xorshift state used for every shuffle of this game.
	RNG RNG `json:"rng"`
}

// Clone returns a deep copy of the state.
func (g GameState) Clone() GameState {
	if g.Players != nil {
		players := make([]Player, len(g.Players))
		for i, p := range g.Players {
			players[i] = p.clone()
		}
		g.Players = players
	}
	g.DrawPile = cloneCards(g.DrawPile)
	g.DiscardPile = cloneCards(g.DiscardPile)
	return g
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}
