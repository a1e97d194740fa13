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

package database

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/murmuration/database/plugin/blob"
	"github.com/blinklabs-io/murmuration/database/plugin/metadata"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metadataPlugin = "sqlite"
	blobPlugin     = "badger"
)

// Database holds the indexed governance history. Polls, votes, outcomes and
// timelock items live in the metadata store, and per-account checkpoint
// histories live in the blob store. Both stores record the level of the last
// indexed commit, and they must agree when the database is opened.
type Database struct {
	logger   *slog.Logger
	metadata metadata.MetadataStore
	blob     blob.BlobStore
}

// CommitLevelError is returned by New when the two stores were last
// committed at different levels
type CommitLevelError struct {
	MetadataLevel uint64
	BlobLevel     uint64
}

func (e CommitLevelError) Error() string {
	return fmt.Sprintf(
		"commit level mismatch: metadata at %d, blob at %d",
		e.MetadataLevel,
		e.BlobLevel,
	)
}

// New opens both stores under dataDir, or in memory when dataDir is empty.
// On a commit level mismatch the opened database is returned along with the
// error so the caller can inspect or close it
func New(
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
	dataDir string,
) (*Database, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	metadataStore, err := metadata.New(metadataPlugin, dataDir, logger, promRegistry)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	blobStore, err := blob.New(blobPlugin, dataDir, logger, promRegistry)
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("open blob store: %w", err),
			metadataStore.Close(),
		)
	}
	d := &Database{
		logger:   logger,
		metadata: metadataStore,
		blob:     blobStore,
	}
	level, err := d.verifyCommitLevel()
	if err != nil {
		return d, err
	}
	logger.Debug(
		"opened governance history",
		"component", "database",
		"data_dir", dataDir,
		"level", level,
	)
	return d, nil
}

// Metadata returns the governance history store
func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// Blob returns the checkpoint store
func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

// Transaction starts a transaction spanning both stores
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// CommitLevel returns the chain level of the last indexed commit, or 0 when
// nothing has been indexed
func (d *Database) CommitLevel() (uint64, error) {
	return d.metadata.GetCommitLevel()
}

func (d *Database) Close() error {
	return errors.Join(d.metadata.Close(), d.blob.Close())
}

func (d *Database) verifyCommitLevel() (uint64, error) {
	metadataLevel, err := d.metadata.GetCommitLevel()
	if err != nil {
		return 0, fmt.Errorf("read metadata commit level: %w", err)
	}
	if metadataLevel == 0 {
		return 0, nil
	}
	blobLevel, err := d.blob.GetCommitLevel()
	if err != nil {
		return 0, fmt.Errorf("read blob commit level: %w", err)
	}
	if blobLevel != metadataLevel {
		return 0, CommitLevelError{
			MetadataLevel: metadataLevel,
			BlobLevel:     blobLevel,
		}
	}
	return metadataLevel, nil
}

// writeCommitLevel records level in both halves of txn
func (d *Database) writeCommitLevel(txn *Txn, level uint64) error {
	if err := d.metadata.SetCommitLevel(level, txn.Metadata()); err != nil {
		return fmt.Errorf("write metadata commit level: %w", err)
	}
	if err := d.blob.SetCommitLevel(level, txn.Blob()); err != nil {
		return fmt.Errorf("write blob commit level: %w", err)
	}
	return nil
}
