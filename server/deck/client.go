// Package deck talks to the deckofcardsapi.com shuffled-deck service, the
// external randomness source for every card in a round.
package deck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Potestas06/HouseOfBlackJack/server/game"
)

const DefaultBaseURL = "https://deckofcardsapi.com/api/deck"

// ErrSourceUnavailable means the draw service could not produce the cards
// asked for. The round in progress must be aborted.
var ErrSourceUnavailable = errors.New("card source unavailable")

type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *log.Logger
}

func NewClient(baseURL string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		logger:  logger.WithPrefix("deck"),
	}
}

type deckResponse struct {
	Success   bool        `json:"success"`
	DeckID    string      `json:"deck_id"`
	Remaining int         `json:"remaining"`
	Cards     []game.Card `json:"cards"`
	Error     string      `json:"error"`
}

// NewShoe creates a freshly shuffled shoe of deckCount decks.
func (c *Client) NewShoe(ctx context.Context, deckCount int) (*Shoe, error) {
	if deckCount <= 0 {
		deckCount = 1
	}
	var resp deckResponse
	u := fmt.Sprintf("%s/new/shuffle/?deck_count=%d", c.baseURL, deckCount)
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.DeckID == "" {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, resp.Error)
	}
	c.logger.Debug("shoe created", "deck_id", resp.DeckID, "remaining", resp.Remaining)
	return &Shoe{c: c, id: resp.DeckID, deckCount: deckCount}, nil
}

// Shoe is a handle to one remote shuffled deck. It implements game.Shoe.
// Draw order is the remote service's shuffle order.
type Shoe struct {
	c         *Client
	id        string
	deckCount int
}

// ID returns the remote deck id.
func (s *Shoe) ID() string { return s.id }

// Draw fetches exactly n cards. When the remote deck runs out of cards it is
// reshuffled once and the draw retried; any other shortfall or transport
// failure surfaces as ErrSourceUnavailable.
func (s *Shoe) Draw(ctx context.Context, n int) ([]game.Card, error) {
	cards, err := s.drawOnce(ctx, n)
	if err == nil {
		return cards, nil
	}
	if !errors.Is(err, errDeckExhausted) {
		return nil, err
	}
	s.c.logger.Info("shoe exhausted, reshuffling", "deck_id", s.id)
	if err := s.Reshuffle(ctx, false); err != nil {
		return nil, err
	}
	return s.drawOnce(ctx, n)
}

var errDeckExhausted = fmt.Errorf("%w: deck exhausted", ErrSourceUnavailable)

func (s *Shoe) drawOnce(ctx context.Context, n int) ([]game.Card, error) {
	var resp deckResponse
	u := fmt.Sprintf("%s/%s/draw/?count=%d", s.c.baseURL, url.PathEscape(s.id), n)
	if err := s.c.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Cards) == n {
		return resp.Cards, nil
	}
	if !resp.Success || len(resp.Cards) < n {
		return nil, errDeckExhausted
	}
	return resp.Cards[:n], nil
}

// Reshuffle shuffles the remote deck in place. With remainingOnly the drawn
// cards stay out of the shoe.
func (s *Shoe) Reshuffle(ctx context.Context, remainingOnly bool) error {
	u := fmt.Sprintf("%s/%s/shuffle/", s.c.baseURL, url.PathEscape(s.id))
	if remainingOnly {
		u += "?remaining=true"
	}
	var resp deckResponse
	if err := s.c.get(ctx, u, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrSourceUnavailable, resp.Error)
	}
	return nil
}

// get fetches rawURL into out. A server-side error is retried once before
// it surfaces; client errors and decode failures surface immediately.
func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	retry, err := c.getOnce(ctx, rawURL, out)
	if err != nil && retry {
		c.logger.Warn("card source server error, retrying once", "err", err)
		_, err = c.getOnce(ctx, rawURL, out)
	}
	return err
}

func (c *Client) getOnce(ctx context.Context, rawURL string, out any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, err
	}
	res, err := c.httpc.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return false, fmt.Errorf("%w: reading response: %v", ErrSourceUnavailable, err)
	}
	if res.StatusCode != http.StatusOK {
		return res.StatusCode >= 500, fmt.Errorf("%w: status %d", ErrSourceUnavailable, res.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("%w: decoding response: %v", ErrSourceUnavailable, err)
	}
	return false, nil
}
