package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name       string
		player     int
		dealer     int
		roundEnded bool
		want       Outcome
	}{
		{"player bust mid-round", 22, 18, false, Outcome{IsLoss: true}},
		{"player bust at end", 22, 18, true, Outcome{IsLoss: true}},
		{"dealer bust beats everything", 20, 22, true, Outcome{IsWin: true}},
		{"dealer bust mid auto-play", 15, 23, false, Outcome{IsWin: true}},
		{"higher player total wins", 20, 19, true, Outcome{IsWin: true}},
		{"higher dealer total loses", 18, 19, true, Outcome{IsLoss: true}},
		{"equal totals tie", 18, 18, true, Outcome{IsTie: true}},
		{"no result before round end", 18, 10, false, Outcome{}},
		{"equal totals before round end", 18, 18, false, Outcome{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.player, tc.dealer, tc.roundEnded))
		})
	}
}

func TestOutcomeFlagsExclusive(t *testing.T) {
	for p := 2; p <= 30; p++ {
		for d := 2; d <= 30; d++ {
			for _, ended := range []bool{false, true} {
				o := Resolve(p, d, ended)
				set := 0
				for _, f := range []bool{o.IsWin, o.IsLoss, o.IsTie} {
					if f {
						set++
					}
				}
				assert.LessOrEqual(t, set, 1, "p=%d d=%d ended=%v", p, d, ended)
				assert.Equal(t, set == 0, o.None())
			}
		}
	}
}
