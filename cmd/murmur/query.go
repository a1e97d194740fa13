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

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/blinklabs-io/murmuration/database"
	"github.com/blinklabs-io/murmuration/database/models"
	"github.com/blinklabs-io/murmuration/host"
	"github.com/blinklabs-io/murmuration/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type outcomeRow struct {
	ClosedBlock  *uint64 `yaml:"closedBlock,omitempty"`
	UpdatedBlock *uint64 `yaml:"updatedBlock,omitempty"`
	Title        string  `yaml:"title"`
	Author       string  `yaml:"author"`
	Outcome      string  `yaml:"outcome"`
	YayVotes     string  `yaml:"yay"`
	NayVotes     string  `yaml:"nay"`
	AbstainVotes string  `yaml:"abstain"`
	ID           uint64  `yaml:"id"`
	Votes        int     `yaml:"votes"`
}

func outcomesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "outcomes",
		Short: "List historical poll outcomes from the data dir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			return outcomesRun(cfg, commonRun(cfg), cmd.OutOrStdout())
		},
	}
}

func priorBalanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prior-balance <account> <level> <current-level>",
		Short: "Query an account's balance as of a past level from indexed checkpoints",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			level, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid level: %w", err)
			}
			currentLevel, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid current level: %w", err)
			}
			return priorBalanceRun(
				cfg,
				commonRun(cfg),
				host.Address(args[0]),
				level,
				currentLevel,
				cmd.OutOrStdout(),
			)
		},
	}
}

func openDatabase(cfg *config.Config, logger *slog.Logger) (*database.Database, error) {
	db, err := database.New(logger, nil, cfg.DataDir)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func outcomesRun(cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck
	polls, err := db.Polls(nil)
	if err != nil {
		return err
	}
	rows := make([]outcomeRow, 0, len(polls))
	for _, poll := range polls {
		outcome, err := db.Outcome(poll.PollID, nil)
		if err != nil {
			return err
		}
		votes, err := db.Votes(poll.PollID, nil)
		if err != nil {
			return err
		}
		row := outcomeRow{
			ID:           poll.PollID,
			Title:        poll.Title,
			Author:       poll.Author,
			Outcome:      "open",
			YayVotes:     poll.YayVotes.Dec(),
			NayVotes:     poll.NayVotes.Dec(),
			AbstainVotes: poll.AbstainVotes.Dec(),
			ClosedBlock:  poll.ClosedBlock,
			Votes:        len(votes),
		}
		if outcome != nil {
			row.Outcome = models.OutcomeName(outcome.Outcome)
			row.UpdatedBlock = outcome.UpdatedBlock
		}
		rows = append(rows, row)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(rows); err != nil {
		return err
	}
	return enc.Close()
}

func priorBalanceRun(
	cfg *config.Config,
	logger *slog.Logger,
	account host.Address,
	level uint64,
	currentLevel uint64,
	out io.Writer,
) error {
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck
	balance, err := db.PriorBalance(account, level, currentLevel)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, balance.Dec())
	return err
}
