package engine

import "errors"

// Input errors: the caller passed arguments that can never be valid.
var (
	ErrInvalidPlayerCount = errors.New("player count must be between 2 and 8")
	ErrInvalidHumanCount  = errors.New("human player count must be between 0 and the player count")
	ErrNoPlayers          = errors.New("cannot determine winner with no players")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrInvalidRound       = errors.New("round must be between 1 and 7")
	ErrInvalidDrawSource  = errors.New("draw source must be DRAW or DISCARD")
	ErrInvalidAction      = errors.New("unknown player action")
)

// Rule errors: the action is well-formed but illegal in the current state.
var (
	ErrWrongPhase          = errors.New("action not allowed in current phase")
	ErrOutOfTurn           = errors.New("cannot perform action out of turn")
	ErrCardNotInHand       = errors.New("card not found in player hand")
	ErrEmptyDiscardPile    = errors.New("discard pile is empty")
	ErrNoCardsAvailable    = errors.New("no cards available to draw")
	ErrAlreadyMelded       = errors.New("player has already melded this round")
	ErrNotMelded           = errors.New("player must have melded first")
	ErrObjectiveNotMet     = errors.New("combinations do not meet round objective")
	ErrInvalidTriplet      = errors.New("invalid triplet")
	ErrInvalidSequence     = errors.New("invalid sequence")
	ErrUnknownCombination  = errors.New("unknown combination type")
	ErrDuplicateCard       = errors.New("card used more than once")
	ErrFinalCardCount      = errors.New("must have exactly one card remaining after melding to go out")
	ErrFinalCardMelded     = errors.New("final card cannot be part of melded combinations")
	ErrBuyingDisabled      = errors.New("buying is disabled in 2-player games")
	ErrNoBuysRemaining     = errors.New("no buys remaining")
	ErrNotEligibleToBuy    = errors.New("player is not eligible to buy this discard")
	ErrBuyWindowClaimed    = errors.New("discard already bought in this buy window")
	ErrCombinationNotFound = errors.New("combination not found")
	ErrNotASequence        = errors.New("can only extend sequences")
	ErrInvalidJokerSwap    = errors.New("invalid joker swap")
	ErrInvalidExtension    = errors.New("invalid sequence extension")
	ErrMustKeepDiscard     = errors.New("must keep a card to discard")
)

var inputErrors = []error{
	ErrInvalidPlayerCount, ErrInvalidHumanCount, ErrNoPlayers, ErrPlayerNotFound, ErrInvalidRound,
	ErrInvalidDrawSource, ErrInvalidAction,
}

var ruleErrors = []error{
	ErrWrongPhase, ErrOutOfTurn, ErrCardNotInHand, ErrEmptyDiscardPile, ErrNoCardsAvailable,
	ErrAlreadyMelded, ErrNotMelded, ErrObjectiveNotMet, ErrInvalidTriplet, ErrInvalidSequence,
	ErrUnknownCombination, ErrDuplicateCard, ErrFinalCardCount, ErrFinalCardMelded,
	ErrBuyingDisabled, ErrNoBuysRemaining, ErrNotEligibleToBuy, ErrBuyWindowClaimed,
	ErrCombinationNotFound, ErrNotASequence, ErrInvalidJokerSwap, ErrInvalidExtension,
	ErrMustKeepDiscard,
}

// IsInputError reports whether err signals a caller bug (bad arguments).
func IsInputError(err error) bool { return isAny(err, inputErrors) }

// IsRuleError reports whether err signals a rejected, but well-formed, action.
func IsRuleError(err error) bool { return isAny(err, ruleErrors) }

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
