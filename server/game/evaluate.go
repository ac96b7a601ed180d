package game

// HandValue computes the best blackjack total for a hand.
//
// For the dealer with the hole card still hidden, only the first card in
// draw order counts. Aces: all but one count 1, the last counts 11 unless
// that would bust. Equivalent to maximizing the total without going over 21
// with at most one ace as 11.
func HandValue(hand []Card, dealer, holeVisible bool) (int, error) {
	sum, aces := 0, 0
	for i, c := range hand {
		if dealer && !holeVisible && i > 0 {
			continue
		}
		pts, ace, err := Value(c.Code)
		if err != nil {
			return 0, err
		}
		if ace {
			aces++
		} else {
			sum += pts
		}
	}
	if aces == 0 {
		return sum, nil
	}
	sum += aces - 1
	if sum+11 <= 21 {
		return sum + 11, nil
	}
	return sum + 1, nil
}
