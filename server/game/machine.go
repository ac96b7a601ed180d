package game

import (
	"context"
	"fmt"
)

// Shoe is the external shuffled card source for a round. Draw returns
// exactly n cards or an error.
type Shoe interface {
	Draw(ctx context.Context, n int) ([]Card, error)
}

// Settlement is the terminal result of a round, handed to observers so the
// ledger can be updated. Balance/Wins/Losses are the post-settlement values.
type Settlement struct {
	Outcome     Outcome
	Message     string
	Bet         int
	Balance     int
	Wins        int
	Losses      int
	PlayerHand  []Card
	DealerHand  []Card
	PlayerTotal int
	DealerTotal int
}

// Transition is one applied action plus the state after it. Settlement is
// non-nil only for END_GAME.
type Transition struct {
	Action     ActionType
	State      State
	Settlement *Settlement
}

// Machine runs the betting/playing/settlement state machine for one table.
// It is not safe for concurrent use; callers serialize events (the session
// layer does).
type Machine struct {
	state     State
	shoe      Shoe
	dealer    DealerPolicy
	observers []func(Transition)
}

// NewMachine builds a machine in the betting phase seeded with a ledger
// profile snapshot.
func NewMachine(shoe Shoe, dealer DealerPolicy, profile Profile) *Machine {
	m := &Machine{
		state:  State{Phase: PhaseBetting},
		shoe:   shoe,
		dealer: dealer,
	}
	m.state = apply(m.state, Action{Type: ActSetUserData, Profile: &profile})
	return m
}

// Subscribe registers an observer for every applied transition. Observers
// run synchronously on the dispatching goroutine.
func (m *Machine) Subscribe(fn func(Transition)) {
	m.observers = append(m.observers, fn)
}

// State returns a copy of the current aggregate.
func (m *Machine) State() State { return m.state }

func (m *Machine) dispatch(a Action) Transition {
	m.state = apply(m.state, a)
	tr := Transition{Action: a.Type, State: m.state, Settlement: a.settlement()}
	for _, fn := range m.observers {
		fn(tr)
	}
	return tr
}

func (a Action) settlement() *Settlement {
	if a.Type != ActEndGame || a.End == nil {
		return nil
	}
	return a.End.settlement
}

// ApplyProfile replaces the cached balance and counters, e.g. after the
// ledger is (re)loaded for the signed-in user.
func (m *Machine) ApplyProfile(p Profile) {
	m.dispatch(Action{Type: ActSetUserData, Profile: &p})
}

// SetBetInput mirrors the raw bet field the table surface shows.
func (m *Machine) SetBetInput(text string) {
	m.dispatch(Action{Type: ActUpdateBetInput, Text: text})
}

// PlaceBet deducts the stake, deals two cards each to player and dealer and
// moves to the playing phase. The guard 0 < amount <= balance is checked
// before any state change. If dealing fails the stake stays deducted and the
// caller must reset the round.
func (m *Machine) PlaceBet(ctx context.Context, amount int) error {
	if m.state.Phase != PhaseBetting {
		return fmt.Errorf("%w: place bet in %s", ErrWrongPhase, m.state.Phase)
	}
	if amount <= 0 || amount > m.state.Balance {
		return fmt.Errorf("%w: %d (balance %d)", ErrInvalidBet, amount, m.state.Balance)
	}
	m.dispatch(Action{Type: ActPlaceBet, Amount: amount})

	player, err := m.shoe.Draw(ctx, 2)
	if err != nil {
		return fmt.Errorf("%w: dealing player hand: %v", ErrDrawFailed, err)
	}
	dealer, err := m.shoe.Draw(ctx, 2)
	if err != nil {
		return fmt.Errorf("%w: dealing dealer hand: %v", ErrDrawFailed, err)
	}
	m.dispatch(Action{Type: ActStartGame, PlayerHand: player, DealerHand: dealer})
	return nil
}

// Hit draws one card for the player. A bust settles the round as a loss
// immediately; otherwise the phase stays playing.
func (m *Machine) Hit(ctx context.Context) error {
	if m.state.Phase != PhasePlaying {
		return fmt.Errorf("%w: hit in %s", ErrWrongPhase, m.state.Phase)
	}
	cards, err := m.shoe.Draw(ctx, 1)
	if err != nil {
		return fmt.Errorf("%w: player hit: %v", ErrDrawFailed, err)
	}
	m.dispatch(Action{Type: ActPlayerHits, Card: cards[0]})

	playerTotal, err := HandValue(m.state.PlayerHand, false, false)
	if err != nil {
		return err
	}
	dealerTotal, err := HandValue(m.state.DealerHand, true, m.state.DealerCardVisible)
	if err != nil {
		return err
	}
	if o := Resolve(playerTotal, dealerTotal, false); !o.None() {
		m.settle(o, playerTotal, dealerTotal)
	}
	return nil
}

// Stand reveals the hole card and auto-plays the dealer: one card per policy
// decision, each draw observed before the next, until the policy stops or
// the dealer busts. Then the round is settled.
func (m *Machine) Stand(ctx context.Context) error {
	if m.state.Phase != PhasePlaying {
		return fmt.Errorf("%w: stand in %s", ErrWrongPhase, m.state.Phase)
	}
	m.dispatch(Action{Type: ActDealerReveals})

	playerTotal, err := HandValue(m.state.PlayerHand, false, false)
	if err != nil {
		return err
	}
	dealerTotal, err := HandValue(m.state.DealerHand, true, true)
	if err != nil {
		return err
	}
	for m.dealer.Draw(dealerTotal, playerTotal) {
		cards, err := m.shoe.Draw(ctx, 1)
		if err != nil {
			return fmt.Errorf("%w: dealer draw: %v", ErrDrawFailed, err)
		}
		m.dispatch(Action{Type: ActDealerHits, Card: cards[0]})
		if dealerTotal, err = HandValue(m.state.DealerHand, true, true); err != nil {
			return err
		}
		if dealerTotal > 21 {
			break
		}
	}
	m.settle(Resolve(playerTotal, dealerTotal, true), playerTotal, dealerTotal)
	return nil
}

// Reset clears the round and returns to betting. Valid in any phase as an
// abort; calling it repeatedly is idempotent. Balance and counters persist.
func (m *Machine) Reset() {
	m.dispatch(Action{Type: ActResetGame})
}

func (m *Machine) settle(o Outcome, playerTotal, dealerTotal int) {
	s := m.state
	end := EndPayload{Outcome: o, Balance: s.Balance, Wins: s.Wins, Losses: s.Losses}
	switch {
	case o.IsWin:
		end.Balance += s.BetAmount * 2
		end.Wins++
		end.Message = fmt.Sprintf("You Won %d", s.BetAmount*2)
	case o.IsLoss:
		end.Losses++
		end.Message = fmt.Sprintf("You Lost %d", s.BetAmount)
	case o.IsTie:
		end.Balance += s.BetAmount
		end.Message = "It's a Tie!"
	}
	end.settlement = &Settlement{
		Outcome:     o,
		Message:     end.Message,
		Bet:         s.BetAmount,
		Balance:     end.Balance,
		Wins:        end.Wins,
		Losses:      end.Losses,
		PlayerHand:  append([]Card{}, s.PlayerHand...),
		DealerHand:  append([]Card{}, s.DealerHand...),
		PlayerTotal: playerTotal,
		DealerTotal: dealerTotal,
	}
	m.dispatch(Action{Type: ActEndGame, End: &end})
}
