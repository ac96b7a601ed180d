package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hand(codes ...string) []Card {
	out := make([]Card, len(codes))
	for i, c := range codes {
		out[i] = Card{Code: c}
	}
	return out
}

func TestHandValueNoAces(t *testing.T) {
	cases := []struct {
		codes []string
		want  int
	}{
		{[]string{"2H", "3D"}, 5},
		{[]string{"KH", "QD"}, 20},
		{[]string{"0H", "9S"}, 19},
		{[]string{"7C", "8D", "9H"}, 24}, // bust totals still reported
	}
	for _, tc := range cases {
		got, err := HandValue(hand(tc.codes...), false, false)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.codes)
	}
}

func TestHandValueAces(t *testing.T) {
	cases := []struct {
		codes []string
		want  int
	}{
		{[]string{"AS", "KH"}, 21},       // blackjack
		{[]string{"AS", "AH"}, 12},       // one ace high, one low
		{[]string{"AS", "AH", "AC"}, 13}, // one high, two low
		{[]string{"AS", "AH", "AC", "AD"}, 14},
		{[]string{"9S", "AS", "AH"}, 21},
		{[]string{"0H", "AS", "AH"}, 12}, // high ace would bust
		{[]string{"KH", "QD", "AS"}, 21},
		{[]string{"KH", "QD", "AS", "AH"}, 22}, // busted even with low aces
	}
	for _, tc := range cases {
		got, err := HandValue(hand(tc.codes...), false, false)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.codes)
	}
}

func TestHandValueDealerHoleCard(t *testing.T) {
	h := hand("0H", "9S")

	hidden, err := HandValue(h, true, false)
	require.NoError(t, err)
	assert.Equal(t, 10, hidden, "only the first card counts while hidden")

	revealed, err := HandValue(h, true, true)
	require.NoError(t, err)
	assert.Equal(t, 19, revealed)

	// The player's hand is never partially counted.
	full, err := HandValue(h, false, false)
	require.NoError(t, err)
	assert.Equal(t, 19, full)
}

func TestHandValueHiddenAceHoleCard(t *testing.T) {
	// Visible ace counts as 11 while the ten stays hidden.
	v, err := HandValue(hand("AS", "0H"), true, false)
	require.NoError(t, err)
	assert.Equal(t, 11, v)
}

func TestHandValueEmpty(t *testing.T) {
	v, err := HandValue(nil, false, false)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestHandValueInvalidCard(t *testing.T) {
	_, err := HandValue(hand("KH", "XZ"), false, false)
	assert.ErrorIs(t, err, ErrInvalidCardCode)
}
