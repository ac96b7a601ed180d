// Package session binds one signed-in player to one game state machine and
// serializes their events.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gofrs/uuid"

	"github.com/Potestas06/HouseOfBlackJack/server/auth"
	"github.com/Potestas06/HouseOfBlackJack/server/game"
	"github.com/Potestas06/HouseOfBlackJack/server/rules"
	"github.com/Potestas06/HouseOfBlackJack/server/store"
)

// ErrRoundInFlight rejects an event submitted while another transition is
// still running. Dealer auto-play holds the session for several draws; the
// caller retries after the current transition finishes. Reset is rejected
// too rather than interrupting the dealer loop.
var ErrRoundInFlight = errors.New("another transition is in flight")

// Ledger is the persistence boundary the session writes through.
type Ledger interface {
	LoadProfile(ctx context.Context, userID, name string, startingBalance int) (store.Profile, error)
	SaveProfile(ctx context.Context, userID string, balance, wins, losses int) error
	SetLastBet(ctx context.Context, userID string, bet int) error
	AppendHistory(ctx context.Context, userID string, r store.Round) error
}

// ShoeFunc opens a fresh shoe from the external card source.
type ShoeFunc func(ctx context.Context) (game.Shoe, error)

// Session owns the machine for one player. Events are serialized: TryLock
// keeps a second event (or a reset during dealer auto-play) from
// interleaving with a running transition.
type Session struct {
	ID   uuid.UUID
	User auth.Identity

	mu      sync.Mutex // held for the full duration of a transition
	machine *game.Machine
	shoe    game.Shoe
	newShoe ShoeFunc
	table   rules.TableRules

	ledger Ledger
	writes *WriteQueue
	logger *log.Logger

	snapMu   sync.Mutex
	snapshot game.State
	watchers map[int]chan game.Transition
	nextW    int
}

func newSession(user auth.Identity, profile store.Profile, cfg *rules.Config,
	newShoe ShoeFunc, ledger Ledger, clock quartz.Clock, logger *log.Logger) *Session {

	slog := logger.WithPrefix("session").With("user", user.UserID)
	s := &Session{
		ID:      uuid.Must(uuid.NewV4()),
		User:    user,
		newShoe: newShoe,
		table:   cfg.Table,
		ledger:  ledger,
		// One queue per session: a player whose ledger writes are failing
		// retries in their own lane without stalling anyone else's.
		writes:   NewWriteQueue(clock, slog),
		logger:   slog,
		watchers: make(map[int]chan game.Transition),
	}
	s.machine = game.NewMachine(shoeFunc(s.draw), cfg.DealerPolicy(), game.Profile{
		Balance: profile.Balance,
		Wins:    profile.Wins,
		Losses:  profile.Losses,
	})
	s.machine.Subscribe(s.onTransition)
	s.snapshot = s.machine.State()
	return s
}

// shoeFunc adapts a method to game.Shoe.
type shoeFunc func(ctx context.Context, n int) ([]game.Card, error)

func (f shoeFunc) Draw(ctx context.Context, n int) ([]game.Card, error) { return f(ctx, n) }

// draw lazily opens the shoe on first use and draws from it. The shoe is
// kept across rounds; the card source reshuffles it when it runs dry.
func (s *Session) draw(ctx context.Context, n int) ([]game.Card, error) {
	if s.shoe == nil {
		shoe, err := s.newShoe(ctx)
		if err != nil {
			return nil, err
		}
		s.shoe = shoe
	}
	return s.shoe.Draw(ctx, n)
}

func (s *Session) onTransition(tr game.Transition) {
	s.snapMu.Lock()
	s.snapshot = tr.State
	for _, ch := range s.watchers {
		select {
		case ch <- tr:
		default: // slow watcher, drop
		}
	}
	s.snapMu.Unlock()

	if tr.Settlement != nil {
		s.persistSettlement(*tr.Settlement)
	}
}

// persistSettlement queues the profile write and the history append. Local
// state is already final; failures are retried by the write queue.
func (s *Session) persistSettlement(st game.Settlement) {
	userID := s.User.UserID
	s.writes.Enqueue("save profile", func(ctx context.Context) error {
		return s.ledger.SaveProfile(ctx, userID, st.Balance, st.Wins, st.Losses)
	})
	round := store.Round{
		ID:           uuid.Must(uuid.NewV4()),
		PlayedAt:     time.Now().UTC(),
		Bet:          st.Bet,
		Result:       st.Message,
		FinalBalance: st.Balance,
		PlayerTotal:  st.PlayerTotal,
		DealerTotal:  st.DealerTotal,
		PlayerHand:   game.Codes(st.PlayerHand),
		DealerHand:   game.Codes(st.DealerHand),
	}
	s.writes.Enqueue("append history", func(ctx context.Context) error {
		return s.ledger.AppendHistory(ctx, userID, round)
	})
}

// State returns the latest settled snapshot. Safe during an in-flight
// transition; it reflects the last applied action.
func (s *Session) State() game.State {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	return s.snapshot
}

// Watch streams every transition until cancel is called. Slow consumers
// miss transitions rather than stalling the machine.
func (s *Session) Watch() (<-chan game.Transition, func()) {
	ch := make(chan game.Transition, 16)
	s.snapMu.Lock()
	id := s.nextW
	s.nextW++
	s.watchers[id] = ch
	s.snapMu.Unlock()
	return ch, func() {
		s.snapMu.Lock()
		delete(s.watchers, id)
		s.snapMu.Unlock()
	}
}

// PlaceBet parses the raw bet input, checks it against the table limits and
// runs the deal. The stake is remembered as the player's last bet.
func (s *Session) PlaceBet(ctx context.Context, input string) (game.State, error) {
	if !s.mu.TryLock() {
		return s.State(), ErrRoundInFlight
	}
	defer s.mu.Unlock()

	s.machine.SetBetInput(input)
	amount, err := strconv.Atoi(input)
	if err != nil {
		return s.State(), fmt.Errorf("%w: %q is not a number", game.ErrInvalidBet, input)
	}
	if amount < s.table.MinBet {
		return s.State(), fmt.Errorf("%w: table minimum is %d", game.ErrInvalidBet, s.table.MinBet)
	}
	if s.table.MaxBet > 0 && amount > s.table.MaxBet {
		return s.State(), fmt.Errorf("%w: table maximum is %d", game.ErrInvalidBet, s.table.MaxBet)
	}
	if err := s.machine.PlaceBet(ctx, amount); err != nil {
		return s.State(), err
	}

	userID := s.User.UserID
	s.writes.Enqueue("set last bet", func(ctx context.Context) error {
		return s.ledger.SetLastBet(ctx, userID, amount)
	})
	return s.State(), nil
}

// Hit draws one card for the player.
func (s *Session) Hit(ctx context.Context) (game.State, error) {
	if !s.mu.TryLock() {
		return s.State(), ErrRoundInFlight
	}
	defer s.mu.Unlock()
	err := s.machine.Hit(ctx)
	return s.State(), err
}

// Stand runs dealer auto-play to completion and settles.
func (s *Session) Stand(ctx context.Context) (game.State, error) {
	if !s.mu.TryLock() {
		return s.State(), ErrRoundInFlight
	}
	defer s.mu.Unlock()
	err := s.machine.Stand(ctx)
	return s.State(), err
}

// Reset clears the round. Rejected while a transition is in flight; once
// the machine is idle it is safe to call repeatedly.
func (s *Session) Reset() (game.State, error) {
	if !s.mu.TryLock() {
		return s.State(), ErrRoundInFlight
	}
	defer s.mu.Unlock()
	s.machine.Reset()
	return s.State(), nil
}

// Close waits for any in-flight transition, detaches watchers and drains
// this session's pending ledger writes.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapMu.Lock()
	for id, ch := range s.watchers {
		close(ch)
		delete(s.watchers, id)
	}
	s.snapMu.Unlock()
	s.writes.Close()
}
