package main

import (
	"math"
	"strings"

	"github.com/Potestas06/HouseOfBlackJack/server/store"
)

// RoundStats aggregates a player's recorded rounds for the account page.
type RoundStats struct {
	Rounds   int     `json:"rounds"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Ties     int     `json:"ties"`
	NetChips int     `json:"netChips"`
	WinRate  float64 `json:"winRate"`
	WinLow   float64 `json:"winRateLow"`
	WinHigh  float64 `json:"winRateHigh"`
}

func summarizeRounds(rounds []store.Round) RoundStats {
	var s RoundStats
	for _, r := range rounds {
		s.Rounds++
		switch {
		case strings.HasPrefix(r.Result, "You Won"):
			s.Wins++
			s.NetChips += r.Bet
		case strings.HasPrefix(r.Result, "You Lost"):
			s.Losses++
			s.NetChips -= r.Bet
		default:
			s.Ties++
		}
	}
	if s.Rounds > 0 {
		s.WinRate = (float64(s.Wins) + 0.5*float64(s.Ties)) / float64(s.Rounds)
	}
	s.WinLow, s.WinHigh = wilsonCI95(s.Wins, s.Ties, s.Rounds)
	return s
}

// wilsonCI95 bounds the Bernoulli win rate, ties counted as half a win.
func wilsonCI95(wins, ties, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := (float64(wins) + 0.5*float64(ties)) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}
