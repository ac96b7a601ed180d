package game

// DealerPolicy is the deterministic auto-play rule for the dealer's turn.
//
// The standard casino rule stands on StandsOn (17) or more regardless of the
// player's hand. Chase mode is the house-favoring variant that keeps drawing
// until the dealer beats the player or busts; it is kept as a configurable
// alternative and is off by default.
type DealerPolicy struct {
	StandsOn int
	Chase    bool
}

// DefaultDealerPolicy stands on 17, no chasing.
func DefaultDealerPolicy() DealerPolicy { return DealerPolicy{StandsOn: 17} }

// Draw reports whether the dealer takes another card.
func (p DealerPolicy) Draw(dealerTotal, playerTotal int) bool {
	if p.Chase {
		return dealerTotal < playerTotal && dealerTotal < 21
	}
	standsOn := p.StandsOn
	if standsOn <= 0 {
		standsOn = 17
	}
	return dealerTotal < standsOn
}
