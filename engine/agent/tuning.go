package agent

// Tuning holds the thresholds of the heuristic player.
type Tuning struct {
	// Melding
	MeldDeadwood       int // meld at once when the unmelded rest is worth more than this
	HoldRemaining      int // keep the hand hidden while at most this many cards would remain...
	HoldDeadwood       int // ...and they are worth less than this
	LateRound          int // from this round on, meld as soon as...
	LateRoundRemaining int // ...at most this many cards would remain

	// Buying
	BuyBase          float64 // value a discard must beat in round 0
	BuyRoundDiscount float64 // subtracted from BuyBase, scaled by round/7
	LastBuyValue     int     // value needed to spend the last buy
	SpareBuyValue    int     // value needed while two or more buys remain

	// Drawing
	DrawValue    int // take the discard when it is worth more than this
	DrawDeadwood int // or when deadwood exceeds this and the discard has any value

	// Card values
	CompleteBonus int
	AdvanceBonus  int
	JokerBonus    int
}

// DefaultTuning returns the standard heuristic thresholds.
func DefaultTuning() Tuning {
	return Tuning{
		MeldDeadwood:       80,
		HoldRemaining:      3,
		HoldDeadwood:       50,
		LateRound:          5,
		LateRoundRemaining: 4,

		BuyBase:          50,
		BuyRoundDiscount: 20,
		LastBuyValue:     80,
		SpareBuyValue:    30,

		DrawValue:    30,
		DrawDeadwood: 50,

		CompleteBonus: 100,
		AdvanceBonus:  50,
		JokerBonus:    75,
	}
}
