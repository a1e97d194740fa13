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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/murmuration/database"
	"github.com/blinklabs-io/murmuration/event"
	"github.com/blinklabs-io/murmuration/indexer"
	"github.com/blinklabs-io/murmuration/internal/config"
	"github.com/blinklabs-io/murmuration/internal/scenario"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var ErrDataDirInUse = errors.New("data dir already holds indexed history")

func simulateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run a governance scenario and index it into the data dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			logger := commonRun(cfg)
			return simulateRun(cmd.Context(), cfg, logger, args[0], cmd.OutOrStdout())
		},
	}
}

func simulateRun(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	scenarioPath string,
	out io.Writer,
) error {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s, err := scenario.Load(scenarioPath)
	if err != nil {
		return err
	}
	promRegistry := prometheus.NewRegistry()
	db, err := database.New(logger, promRegistry, cfg.DataDir)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck
	level, err := db.CommitLevel()
	if err != nil {
		return err
	}
	if level > 0 {
		return fmt.Errorf("%w: %s at level %d", ErrDataDirInUse, cfg.DataDir, level)
	}
	eventBus := event.NewEventBus(promRegistry, logger)
	defer eventBus.Stop()
	idx := indexer.New(
		db,
		eventBus,
		indexer.WithLogger(logger),
		indexer.WithPromRegistry(promRegistry),
	)
	idx.Start()
	defer idx.Stop()
	runner, err := scenario.NewRunner(
		cfg,
		scenario.WithLogger(logger),
		scenario.WithEventBus(eventBus),
		scenario.WithPromRegistry(promRegistry),
	)
	if err != nil {
		return err
	}
	report, runErr := runner.Run(ctx, s)
	if report != nil {
		if err := report.Write(out); err != nil {
			return errors.Join(runErr, err)
		}
	}
	if err := idx.Err(); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if cfg.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsTextfile, promRegistry); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	if runErr != nil {
		return runErr
	}
	logger.Info(
		"scenario complete",
		"component", programName,
		"steps", len(report.Steps),
		"level", report.Level,
	)
	return nil
}
