// Package rules loads the house table rules from an HCL file.
package rules

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/Potestas06/HouseOfBlackJack/server/game"
)

// Config is the full rules file.
type Config struct {
	Table TableRules `hcl:"table,block"`
}

// TableRules tune one blackjack table.
type TableRules struct {
	StartingBalance int  `hcl:"starting_balance,optional"`
	DeckCount       int  `hcl:"deck_count,optional"`
	DealerStandsOn  int  `hcl:"dealer_stands_on,optional"`
	DealerChases    bool `hcl:"dealer_chases,optional"`
	MinBet          int  `hcl:"min_bet,optional"`
	MaxBet          int  `hcl:"max_bet,optional"` // 0 = table limit is the balance
}

// Default returns the standard casino table: six-deck shoe, dealer stands
// on 17.
func Default() *Config {
	return &Config{
		Table: TableRules{
			StartingBalance: 2000,
			DeckCount:       6,
			DealerStandsOn:  17,
			MinBet:          1,
		},
	}
}

// Load reads the rules file, falling back to defaults when it is absent.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing rules file: %s", diags.Error())
	}

	var cfg Config
	if diags = gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decoding rules file: %s", diags.Error())
	}

	def := Default().Table
	if cfg.Table.StartingBalance == 0 {
		cfg.Table.StartingBalance = def.StartingBalance
	}
	if cfg.Table.DeckCount == 0 {
		cfg.Table.DeckCount = def.DeckCount
	}
	if cfg.Table.DealerStandsOn == 0 {
		cfg.Table.DealerStandsOn = def.DealerStandsOn
	}
	if cfg.Table.MinBet == 0 {
		cfg.Table.MinBet = def.MinBet
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	t := c.Table
	if t.StartingBalance < 0 {
		return fmt.Errorf("starting_balance must not be negative")
	}
	if t.DeckCount < 1 {
		return fmt.Errorf("deck_count must be at least 1")
	}
	if t.DealerStandsOn < 2 || t.DealerStandsOn > 21 {
		return fmt.Errorf("dealer_stands_on must be between 2 and 21")
	}
	if t.MinBet < 1 {
		return fmt.Errorf("min_bet must be at least 1")
	}
	if t.MaxBet != 0 && t.MaxBet < t.MinBet {
		return fmt.Errorf("max_bet must not be below min_bet")
	}
	return nil
}

// DealerPolicy builds the auto-play rule these table rules describe.
func (c *Config) DealerPolicy() game.DealerPolicy {
	return game.DealerPolicy{
		StandsOn: c.Table.DealerStandsOn,
		Chase:    c.Table.DealerChases,
	}
}
