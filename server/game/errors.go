package game

import "errors"

var (
	// ErrInvalidCardCode means a card rank glyph outside A,2-9,0,J,Q,K.
	ErrInvalidCardCode = errors.New("invalid card code")

	// ErrInvalidBet rejects a bet that is zero, negative, or above balance.
	ErrInvalidBet = errors.New("invalid bet amount")

	// ErrWrongPhase rejects an event the current phase does not accept.
	ErrWrongPhase = errors.New("event not valid in current phase")

	// ErrDrawFailed wraps a shoe failure that aborted the round. The bet
	// already deducted at PlaceBet is not refunded; the caller resets.
	ErrDrawFailed = errors.New("card draw failed")
)
