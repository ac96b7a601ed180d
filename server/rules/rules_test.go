package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blackjack.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Table.StartingBalance)
	assert.Equal(t, 6, cfg.Table.DeckCount)
	assert.Equal(t, 17, cfg.Table.DealerStandsOn)
	assert.False(t, cfg.Table.DealerChases)
	assert.Equal(t, 1, cfg.Table.MinBet)
	assert.Zero(t, cfg.Table.MaxBet)
}

func TestLoadFile(t *testing.T) {
	path := writeRules(t, `
table {
  starting_balance = 500
  deck_count       = 1
  dealer_stands_on = 16
  dealer_chases    = true
  min_bet          = 10
  max_bet          = 200
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Table.StartingBalance)
	assert.Equal(t, 1, cfg.Table.DeckCount)
	assert.Equal(t, 16, cfg.Table.DealerStandsOn)
	assert.True(t, cfg.Table.DealerChases)
	assert.Equal(t, 10, cfg.Table.MinBet)
	assert.Equal(t, 200, cfg.Table.MaxBet)

	p := cfg.DealerPolicy()
	assert.Equal(t, 16, p.StandsOn)
	assert.True(t, p.Chase)
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := writeRules(t, `
table {
  deck_count = 2
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Table.DeckCount)
	assert.Equal(t, 2000, cfg.Table.StartingBalance)
	assert.Equal(t, 17, cfg.Table.DealerStandsOn)
}

func TestLoadRejectsBadHCL(t *testing.T) {
	path := writeRules(t, `table { deck_count = `)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*TableRules)
		valid bool
	}{
		{"defaults", func(*TableRules) {}, true},
		{"negative balance", func(t *TableRules) { t.StartingBalance = -1 }, false},
		{"zero decks", func(t *TableRules) { t.DeckCount = 0 }, false},
		{"threshold too high", func(t *TableRules) { t.DealerStandsOn = 22 }, false},
		{"max below min", func(t *TableRules) { t.MinBet = 50; t.MaxBet = 10 }, false},
		{"open max", func(t *TableRules) { t.MaxBet = 0 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mut(&cfg.Table)
			err := cfg.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
