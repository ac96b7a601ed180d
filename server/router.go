package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/uuid"
	"github.com/gorilla/websocket"

	"github.com/Potestas06/HouseOfBlackJack/server/auth"
	"github.com/Potestas06/HouseOfBlackJack/server/deck"
	"github.com/Potestas06/HouseOfBlackJack/server/game"
	"github.com/Potestas06/HouseOfBlackJack/server/session"
	"github.com/Potestas06/HouseOfBlackJack/server/store"
)

// Directory is the read side of the ledger the API serves directly.
type Directory interface {
	GetProfile(ctx context.Context, userID string) (store.Profile, error)
	History(ctx context.Context, userID string, limit int) ([]store.Round, error)
	Leaderboard(ctx context.Context, limit int) ([]store.LeaderboardEntry, error)
}

type API struct {
	dir      Directory
	tokens   *auth.Service
	observer *auth.Observer
	sessions *session.Manager
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewAPI(dir Directory, tokens *auth.Service, observer *auth.Observer,
	sessions *session.Manager, logger *log.Logger) *API {
	return &API{
		dir:      dir,
		tokens:   tokens,
		observer: observer,
		sessions: sessions,
		logger:   logger.WithPrefix("api"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (api *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/api/health", api.handleHealth)
	r.Post("/api/auth/login", api.handleLogin)
	r.Get("/api/leaderboard", api.handleLeaderboard)

	r.Group(func(r chi.Router) {
		r.Use(api.requireIdentity)
		r.Post("/api/auth/logout", api.handleLogout)
		r.Get("/api/me", api.handleMe)
		r.Get("/api/me/history", api.handleHistory)
		r.Get("/api/game/state", api.handleState)
		r.Post("/api/game/bet", api.handleBet)
		r.Post("/api/game/hit", api.handleHit)
		r.Post("/api/game/stand", api.handleStand)
		r.Post("/api/game/reset", api.handleReset)
		r.Get("/api/game/stream", api.handleStream)
	})
	return r
}

type ctxKey int

const identityKey ctxKey = iota

func (api *API) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		} else {
			// Browser websocket clients cannot set headers.
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		id, err := api.tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	})
}

func identityFrom(r *http.Request) auth.Identity {
	id, _ := r.Context().Value(identityKey).(auth.Identity)
	return id
}

func (api *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (api *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.Must(uuid.NewV4()).String()
	}
	token, err := api.tokens.Issue(req.ID, req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issuing token failed")
		return
	}
	api.observer.SignedIn(auth.Identity{UserID: req.ID, Name: req.Name})
	writeJSON(w, http.StatusOK, map[string]any{
		"token":  token,
		"userId": req.ID,
		"name":   req.Name,
	})
}

func (api *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	api.sessions.Evict(id.UserID)
	api.observer.SignedOut()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (api *API) handleMe(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	if _, err := api.sessions.Get(r.Context(), id); err != nil {
		api.fail(w, err)
		return
	}
	profile, err := api.dir.GetProfile(r.Context(), id.UserID)
	if err != nil {
		api.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (api *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	rounds, err := api.dir.History(r.Context(), id.UserID, queryInt(r, "limit", 50))
	if err != nil {
		api.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rounds": rounds,
		"stats":  summarizeRounds(rounds),
	})
}

func (api *API) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := api.dir.Leaderboard(r.Context(), queryInt(r, "limit", 100))
	if err != nil {
		api.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

func (api *API) handleState(w http.ResponseWriter, r *http.Request) {
	s, err := api.sessions.Get(r.Context(), identityFrom(r))
	if err != nil {
		api.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

func (api *API) handleBet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount json.Number `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "amount is required")
		return
	}
	api.gameEvent(w, r, func(ctx context.Context, s *session.Session) (game.State, error) {
		return s.PlaceBet(ctx, req.Amount.String())
	})
}

func (api *API) handleHit(w http.ResponseWriter, r *http.Request) {
	api.gameEvent(w, r, func(ctx context.Context, s *session.Session) (game.State, error) {
		return s.Hit(ctx)
	})
}

func (api *API) handleStand(w http.ResponseWriter, r *http.Request) {
	api.gameEvent(w, r, func(ctx context.Context, s *session.Session) (game.State, error) {
		return s.Stand(ctx)
	})
}

func (api *API) handleReset(w http.ResponseWriter, r *http.Request) {
	api.gameEvent(w, r, func(_ context.Context, s *session.Session) (game.State, error) {
		return s.Reset()
	})
}

func (api *API) gameEvent(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, *session.Session) (game.State, error)) {

	s, err := api.sessions.Get(r.Context(), identityFrom(r))
	if err != nil {
		api.fail(w, err)
		return
	}
	state, err := fn(r.Context(), s)
	if err != nil {
		api.failWithState(w, err, state)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleStream pushes every transition of the caller's session over a
// websocket until the client goes away.
func (api *API) handleStream(w http.ResponseWriter, r *http.Request) {
	s, err := api.sessions.Get(r.Context(), identityFrom(r))
	if err != nil {
		api.fail(w, err)
		return
	}
	conn, err := api.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // Upgrade already replied
	}
	defer conn.Close()

	ch, cancel := s.Watch()
	defer cancel()

	// Current state first so the client can render immediately.
	if err := conn.WriteJSON(map[string]any{"action": "SNAPSHOT", "state": s.State()}); err != nil {
		return
	}

	// Reader only to observe the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case tr, ok := <-ch:
			if !ok {
				return
			}
			payload := map[string]any{"action": tr.Action, "state": tr.State}
			if tr.Settlement != nil {
				payload["settlement"] = tr.Settlement
			}
			if err := conn.WriteJSON(payload); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (api *API) fail(w http.ResponseWriter, err error) {
	api.failWithState(w, err, game.State{})
}

func (api *API) failWithState(w http.ResponseWriter, err error, state game.State) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrInvalidBet):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrWrongPhase), errors.Is(err, session.ErrRoundInFlight):
		status = http.StatusConflict
	case errors.Is(err, game.ErrDrawFailed), errors.Is(err, deck.ErrSourceUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		api.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]any{"error": err.Error(), "state": state})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
