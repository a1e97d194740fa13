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

package metadata

import (
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/murmuration/database/models"
	"github.com/blinklabs-io/murmuration/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/murmuration/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitLevel() (uint64, error)
	SetCommitLevel(uint64, types.Txn) error
	Transaction() types.Txn

	// Polls and votes
	SetPoll(*models.Poll, types.Txn) error
	ClosePoll(
		uint64, // pollID
		uint64, // closedBlock
		string, // escrowRecipient
		types.Txn,
	) error
	GetPoll(uint64, types.Txn) (*models.Poll, error)
	GetPolls(types.Txn) ([]models.Poll, error)
	AddVote(*models.Vote, types.Txn) error
	GetVotes(uint64, types.Txn) ([]models.Vote, error)

	// Outcomes and timelock
	SetOutcome(
		uint64, // pollID
		uint8, // outcome
		uint64, // block
		types.Txn,
	) error
	GetOutcome(uint64, types.Txn) (*models.Outcome, error)
	GetOutcomes(types.Txn) ([]models.Outcome, error)
	SetTimelockItem(*models.TimelockItem, types.Txn) error
	CloseTimelockItem(
		uint64, // pollID
		uint64, // closedBlock
		string, // closedBy
		types.Txn,
	) error
	GetTimelockItem(uint64, types.Txn) (*models.TimelockItem, error)

	// Parameters
	AddParameterUpdate(*models.ParameterUpdate, types.Txn) error
	GetParameterUpdates(types.Txn) ([]models.ParameterUpdate, error)
}

// New returns the metadata store selected by name
func New(
	pluginName, dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	switch pluginName {
	case "sqlite":
		return sqlite.New(
			sqlite.WithDataDir(dataDir),
			sqlite.WithLogger(logger),
			sqlite.WithPromRegistry(promRegistry),
		)
	default:
		return nil, fmt.Errorf("metadata plugin '%s' not found", pluginName)
	}
}
