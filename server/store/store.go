// Package store is the Postgres ledger behind player balances, win/loss
// counters and round history.
package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

// ErrWriteFailed wraps persistence failures after a round has settled. The
// local state is already final; these writes are retried, never rolled back.
var ErrWriteFailed = errors.New("ledger write failed")

const (
	DefaultBalance = 2000
	DefaultLastBet = 100
)

type DB struct{ *pgxpool.Pool }

func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close()                         { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

// Profile is one player's ledger document.
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int    `json:"balance"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
	LastBet int    `json:"lastBet"`
}

// LoadProfile fetches a player's profile, creating a fresh {startingBalance,
// 0, 0} document on first sight of the user. Existing profiles keep their
// balance; startingBalance only seeds new ones.
func (db *DB) LoadProfile(ctx context.Context, userID, name string, startingBalance int) (Profile, error) {
	if startingBalance <= 0 {
		startingBalance = DefaultBalance
	}
	p := Profile{ID: userID}
	err := db.QueryRow(ctx, `
        INSERT INTO players(id, name, balance)
        VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE
          SET name = CASE WHEN players.name = '' THEN EXCLUDED.name ELSE players.name END
        RETURNING name, balance, wins, losses, last_bet
    `, userID, name, startingBalance).Scan(&p.Name, &p.Balance, &p.Wins, &p.Losses, &p.LastBet)
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

// SaveProfile writes back balance and counters after a settled round.
func (db *DB) SaveProfile(ctx context.Context, userID string, balance, wins, losses int) error {
	_, err := db.Exec(ctx, `
        UPDATE players
           SET balance = $2,
               wins = $3,
               losses = $4,
               last_played = now()
         WHERE id = $1
    `, userID, balance, wins, losses)
	if err != nil {
		return fmt.Errorf("%w: save profile: %v", ErrWriteFailed, err)
	}
	return nil
}

// SetLastBet remembers the stake to pre-fill on the next round.
func (db *DB) SetLastBet(ctx context.Context, userID string, bet int) error {
	_, err := db.Exec(ctx, `UPDATE players SET last_bet = $2 WHERE id = $1`, userID, bet)
	if err != nil {
		return fmt.Errorf("%w: set last bet: %v", ErrWriteFailed, err)
	}
	return nil
}

// Round is one append-only history record.
type Round struct {
	ID           uuid.UUID `json:"id"`
	PlayedAt     time.Time `json:"playedAt"`
	Bet          int       `json:"bet"`
	Result       string    `json:"result"`
	FinalBalance int       `json:"finalBalance"`
	PlayerTotal  int       `json:"playerTotal"`
	DealerTotal  int       `json:"dealerTotal"`
	PlayerHand   []string  `json:"playerHand"`
	DealerHand   []string  `json:"dealerHand"`
}

// AppendHistory records a settled round under the player.
func (db *DB) AppendHistory(ctx context.Context, userID string, r Round) error {
	_, err := db.Exec(ctx, `
        INSERT INTO rounds(
            id, player_id, played_at, bet, result, final_balance,
            player_total, dealer_total, player_hand, dealer_hand
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    `, r.ID, userID, r.PlayedAt, r.Bet, r.Result, r.FinalBalance,
		r.PlayerTotal, r.DealerTotal, r.PlayerHand, r.DealerHand)
	if err != nil {
		return fmt.Errorf("%w: append history: %v", ErrWriteFailed, err)
	}
	return nil
}

// History lists a player's most recent rounds, newest first.
func (db *DB) History(ctx context.Context, userID string, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
        SELECT id, played_at, bet, result, final_balance,
               player_total, dealer_total, player_hand, dealer_hand
          FROM rounds
         WHERE player_id = $1
         ORDER BY played_at DESC
         LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Round
	for rows.Next() {
		var r Round
		if err := rows.Scan(&r.ID, &r.PlayedAt, &r.Bet, &r.Result, &r.FinalBalance,
			&r.PlayerTotal, &r.DealerTotal, &r.PlayerHand, &r.DealerHand); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LeaderboardEntry is one row of the balance-ordered scoreboard.
type LeaderboardEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int    `json:"balance"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
}

// Leaderboard returns players ordered by balance descending.
func (db *DB) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(ctx, `
        SELECT id, name, balance, wins, losses
          FROM players
         ORDER BY balance DESC, id
         LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Balance, &e.Wins, &e.Losses); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetProfile fetches an existing profile without creating one.
func (db *DB) GetProfile(ctx context.Context, userID string) (Profile, error) {
	p := Profile{ID: userID}
	err := db.QueryRow(ctx, `
        SELECT name, balance, wins, losses, last_bet
          FROM players
         WHERE id = $1
    `, userID).Scan(&p.Name, &p.Balance, &p.Wins, &p.Losses, &p.LastBet)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, fmt.Errorf("player %s not found", userID)
	}
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}
