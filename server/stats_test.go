package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Potestas06/HouseOfBlackJack/server/store"
)

func TestSummarizeRounds(t *testing.T) {
	rounds := []store.Round{
		{Result: "You Won 200", Bet: 100},
		{Result: "You Won 100", Bet: 50},
		{Result: "You Lost 100", Bet: 100},
		{Result: "It's a Tie!", Bet: 100},
	}
	s := summarizeRounds(rounds)
	assert.Equal(t, 4, s.Rounds)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 1, s.Ties)
	assert.Equal(t, 50, s.NetChips)
	assert.InDelta(t, 0.625, s.WinRate, 1e-9)
	assert.Less(t, s.WinLow, s.WinRate)
	assert.Greater(t, s.WinHigh, s.WinRate)
}

func TestSummarizeRoundsEmpty(t *testing.T) {
	s := summarizeRounds(nil)
	assert.Equal(t, 0, s.Rounds)
	assert.Equal(t, 0.0, s.WinRate)
	assert.Equal(t, 0.0, s.WinLow)
	assert.Equal(t, 1.0, s.WinHigh)
}

func TestWilsonCINarrowsWithSamples(t *testing.T) {
	lo10, hi10 := wilsonCI95(5, 0, 10)
	lo100, hi100 := wilsonCI95(50, 0, 100)
	assert.Greater(t, hi10-lo10, hi100-lo100)
	assert.InDelta(t, 0.5, (lo100+hi100)/2, 0.01)
}
