package game

// Outcome holds mutually exclusive round result flags. All false means the
// round continues.
type Outcome struct {
	IsWin  bool `json:"isWin"`
	IsLoss bool `json:"isLoss"`
	IsTie  bool `json:"isTie"`
}

// None reports whether no result has been reached yet.
func (o Outcome) None() bool { return !o.IsWin && !o.IsLoss && !o.IsTie }

// Resolve decides the round result. Precedence: dealer bust wins for the
// player immediately, then player bust loses immediately; totals are only
// compared once the round has ended (player stood and dealer finished).
func Resolve(playerTotal, dealerTotal int, roundEnded bool) Outcome {
	switch {
	case dealerTotal > 21:
		return Outcome{IsWin: true}
	case playerTotal > 21:
		return Outcome{IsLoss: true}
	case !roundEnded:
		return Outcome{}
	case playerTotal > dealerTotal:
		return Outcome{IsWin: true}
	case dealerTotal > playerTotal:
		return Outcome{IsLoss: true}
	default:
		return Outcome{IsTie: true}
	}
}
