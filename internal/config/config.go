// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blinklabs-io/murmuration/dao"
	"github.com/go-playground/validator/v10"
	"github.com/holiman/uint256"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "murmur.config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

var ErrInvalidConfig = errors.New("invalid config")

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// GovernanceConfig holds the initial DAO parameters. Amounts are decimal strings
type GovernanceConfig struct {
	EscrowAmount                      string `yaml:"escrowAmount"                      split_words:"true" validate:"required,number"`
	QuorumCapLower                    string `yaml:"quorumCapLower"                    split_words:"true" validate:"required,number"`
	QuorumCapUpper                    string `yaml:"quorumCapUpper"                    split_words:"true" validate:"required,number"`
	VoteDelayBlocks                   uint64 `yaml:"voteDelayBlocks"                   split_words:"true"`
	VoteLengthBlocks                  uint64 `yaml:"voteLengthBlocks"                  split_words:"true"`
	MinYayVotesPercentForEscrowReturn uint64 `yaml:"minYayVotesPercentForEscrowReturn" split_words:"true" validate:"lte=100"`
	BlocksInTimelockForExecution      uint64 `yaml:"blocksInTimelockForExecution"      split_words:"true"`
	BlocksInTimelockForCancellation   uint64 `yaml:"blocksInTimelockForCancellation"   split_words:"true" validate:"gtfield=BlocksInTimelockForExecution"`
	PercentageForSuperMajority        uint64 `yaml:"percentageForSuperMajority"        split_words:"true" validate:"lte=100"`
}

type Config struct {
	DataDir            string           `yaml:"dataDir"            split_words:"true"`
	MetricsTextfile    string           `yaml:"metricsTextfile"    split_words:"true"`
	TokenAddress       string           `yaml:"tokenAddress"       split_words:"true" validate:"required,nefield=DaoAddress"`
	DaoAddress         string           `yaml:"daoAddress"         split_words:"true" validate:"required"`
	CommunityFund      string           `yaml:"communityFund"      split_words:"true" validate:"required,nefield=DaoAddress"`
	TokenAdministrator string           `yaml:"tokenAdministrator" split_words:"true"`
	Quorum             string           `yaml:"quorum"                                validate:"required,number"`
	InitialLevel       uint64           `yaml:"initialLevel"       split_words:"true"`
	Governance         GovernanceConfig `yaml:"governance"`
	Debug              bool             `yaml:"debug"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	params := dao.DefaultParameters()
	return &Config{
		DataDir:            ".murmur",
		TokenAddress:       "KT1token",
		DaoAddress:         "KT1dao",
		CommunityFund:      "KT1fund",
		TokenAdministrator: "tz1admin",
		Quorum:             uint256.NewInt(dao.DefaultQuorum).Dec(),
		InitialLevel:       1,
		Governance: GovernanceConfig{
			EscrowAmount:                      params.EscrowAmount.Dec(),
			QuorumCapLower:                    params.QuorumCap.Lower.Dec(),
			QuorumCapUpper:                    params.QuorumCap.Upper.Dec(),
			VoteDelayBlocks:                   params.VoteDelayBlocks,
			VoteLengthBlocks:                  params.VoteLengthBlocks,
			MinYayVotesPercentForEscrowReturn: params.MinYayVotesPercentForEscrowReturn,
			BlocksInTimelockForExecution:      params.BlocksInTimelockForExecution,
			BlocksInTimelockForCancellation:   params.BlocksInTimelockForCancellation,
			PercentageForSuperMajority:        params.PercentageForSuperMajority,
		},
	}
}

var globalConfig = DefaultConfig()

// LoadConfig overlays the config file and then MURMUR_* environment variables
// onto the defaults and validates the result
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		// Check for config file in this path: ~/.murmur/murmur.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".murmur", "murmur.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		// Try to check for /etc/murmur/murmur.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/murmur/murmur.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	if err := envconfig.Process("murmur", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

func GetConfig() *Config {
	return globalConfig
}

// Validate checks field constraints and that the governance parameters are usable
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.QuorumValue(); err != nil {
		return err
	}
	if _, err := c.Governance.Parameters(); err != nil {
		return err
	}
	return nil
}

// QuorumValue returns the initial DAO quorum
func (c *Config) QuorumValue() (uint256.Int, error) {
	return parseNat("quorum", c.Quorum)
}

// Parameters converts the config into DAO governance parameters
func (g GovernanceConfig) Parameters() (dao.GovernanceParameters, error) {
	escrow, err := parseNat("escrowAmount", g.EscrowAmount)
	if err != nil {
		return dao.GovernanceParameters{}, err
	}
	lower, err := parseNat("quorumCapLower", g.QuorumCapLower)
	if err != nil {
		return dao.GovernanceParameters{}, err
	}
	upper, err := parseNat("quorumCapUpper", g.QuorumCapUpper)
	if err != nil {
		return dao.GovernanceParameters{}, err
	}
	params := dao.GovernanceParameters{
		EscrowAmount:                      escrow,
		QuorumCap:                         dao.QuorumCap{Lower: lower, Upper: upper},
		VoteDelayBlocks:                   g.VoteDelayBlocks,
		VoteLengthBlocks:                  g.VoteLengthBlocks,
		MinYayVotesPercentForEscrowReturn: g.MinYayVotesPercentForEscrowReturn,
		BlocksInTimelockForExecution:      g.BlocksInTimelockForExecution,
		BlocksInTimelockForCancellation:   g.BlocksInTimelockForCancellation,
		PercentageForSuperMajority:        g.PercentageForSuperMajority,
	}
	if err := params.Validate(); err != nil {
		return dao.GovernanceParameters{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return params, nil
}

func parseNat(name, value string) (uint256.Int, error) {
	var ret uint256.Int
	if err := ret.SetFromDecimal(value); err != nil {
		return uint256.Int{}, fmt.Errorf(
			"%w: %s %q: %w",
			ErrInvalidConfig,
			name,
			value,
			err,
		)
	}
	return ret, nil
}
