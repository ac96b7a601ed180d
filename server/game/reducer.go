package game

// Phase of a round. Exactly one is active at a time.
type Phase string

const (
	PhaseBetting  Phase = "betting"
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "gameOver"
)

// State is the single mutable aggregate for one table. Balance, Wins and
// Losses mirror the ledger and are its local cache until persisted.
type State struct {
	Phase             Phase  `json:"phase"`
	PlayerHand        []Card `json:"playerHand"`
	DealerHand        []Card `json:"dealerHand"`
	BetAmount         int    `json:"betAmount"`
	Balance           int    `json:"balance"`
	Wins              int    `json:"wins"`
	Losses            int    `json:"losses"`
	DealerCardVisible bool   `json:"dealerCardVisible"`
	ModalMessage      string `json:"modalMessage,omitempty"`
	BetInput          string `json:"betInput,omitempty"`
}

type ActionType string

const (
	ActSetUserData    ActionType = "SET_USER_DATA"
	ActUpdateBetInput ActionType = "UPDATE_BET_INPUT"
	ActPlaceBet       ActionType = "PLACE_BET"
	ActStartGame      ActionType = "START_GAME"
	ActPlayerHits     ActionType = "PLAYER_HITS"
	ActDealerReveals  ActionType = "DEALER_REVEALS"
	ActDealerHits     ActionType = "DEALER_HITS"
	ActEndGame        ActionType = "END_GAME"
	ActResetGame      ActionType = "RESET_GAME"
)

// Action is the tagged union fed to the reducer. Only the fields the type
// uses are set.
type Action struct {
	Type       ActionType
	Amount     int    // PLACE_BET
	Text       string // UPDATE_BET_INPUT
	Card       Card   // PLAYER_HITS, DEALER_HITS
	PlayerHand []Card // START_GAME
	DealerHand []Card // START_GAME
	Profile    *Profile
	End        *EndPayload
}

// Profile is the ledger snapshot applied by SET_USER_DATA.
type Profile struct {
	Balance int `json:"balance"`
	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
}

// EndPayload carries the settled result applied by END_GAME.
type EndPayload struct {
	Outcome Outcome
	Message string
	Balance int
	Wins    int
	Losses  int

	settlement *Settlement
}

// apply is the pure transition table. It never performs I/O and never
// mutates its input.
func apply(s State, a Action) State {
	switch a.Type {
	case ActSetUserData:
		if a.Profile != nil {
			s.Balance = a.Profile.Balance
			s.Wins = a.Profile.Wins
			s.Losses = a.Profile.Losses
		}
	case ActUpdateBetInput:
		s.BetInput = a.Text
	case ActPlaceBet:
		s.Balance -= a.Amount
		s.BetAmount = a.Amount
	case ActStartGame:
		s.Phase = PhasePlaying
		s.PlayerHand = a.PlayerHand
		s.DealerHand = a.DealerHand
	case ActPlayerHits:
		s.PlayerHand = append(append([]Card{}, s.PlayerHand...), a.Card)
	case ActDealerReveals:
		s.DealerCardVisible = true
	case ActDealerHits:
		s.DealerHand = append(append([]Card{}, s.DealerHand...), a.Card)
	case ActEndGame:
		if a.End != nil {
			s.Phase = PhaseGameOver
			s.ModalMessage = a.End.Message
			s.Balance = a.End.Balance
			s.Wins = a.End.Wins
			s.Losses = a.End.Losses
		}
	case ActResetGame:
		s.Phase = PhaseBetting
		s.PlayerHand = nil
		s.DealerHand = nil
		s.BetAmount = 0
		s.DealerCardVisible = false
		s.ModalMessage = ""
		s.BetInput = ""
	}
	return s
}
