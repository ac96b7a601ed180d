package game

import "fmt"

// Card is one card as drawn from the shoe. Code is the two-character
// deckofcardsapi code, e.g. "AS", "0H" (ten of hearts), "KD".
type Card struct {
	Code  string `json:"code"`
	Image string `json:"image,omitempty"`
}

// Value maps a card code to its blackjack points. Aces report 0 points
// and isAce=true; their value is resolved during hand evaluation.
func Value(code string) (points int, isAce bool, err error) {
	if code == "" {
		return 0, false, fmt.Errorf("%w: empty code", ErrInvalidCardCode)
	}
	switch r := code[0]; r {
	case 'A':
		return 0, true, nil
	case 'K', 'Q', 'J', '0':
		return 10, false, nil
	case '2', '3', '4', '5', '6', '7', '8', '9':
		return int(r - '0'), false, nil
	default:
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidCardCode, code)
	}
}

// Codes flattens a hand to its card codes, for history rows and logs.
func Codes(hand []Card) []string {
	out := make([]string, len(hand))
	for i, c := range hand {
		out[i] = c.Code
	}
	return out
}
