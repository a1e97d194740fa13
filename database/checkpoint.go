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
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/murmuration/database/types"
	"github.com/blinklabs-io/murmuration/host"
	"github.com/blinklabs-io/murmuration/token"
	"github.com/holiman/uint256"
)

// ErrCheckpointGap is returned when a checkpoint write would skip an index
var ErrCheckpointGap = errors.New("checkpoint index out of sequence")

// checkpointIndex reads an account's persisted checkpoint history through a blob transaction
type checkpointIndex struct {
	db  *Database
	txn types.Txn
}

func (c checkpointIndex) NumCheckpoints(account host.Address) (uint64, error) {
	val, err := c.db.Blob().Get(
		c.txn,
		types.CheckpointCountBlobKey(account.String()),
	)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(val) != 8 {
		return 0, fmt.Errorf("invalid checkpoint count value: %x", val)
	}
	return binary.BigEndian.Uint64(val), nil
}

func (c checkpointIndex) CheckpointAt(
	account host.Address,
	idx uint64,
) (token.Checkpoint, error) {
	val, err := c.db.Blob().Get(
		c.txn,
		types.CheckpointBlobKey(account.String(), idx),
	)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return token.Checkpoint{}, token.ErrCheckpointNotFound
		}
		return token.Checkpoint{}, err
	}
	fromBlock, balance, err := types.DecodeCheckpoint(val)
	if err != nil {
		return token.Checkpoint{}, err
	}
	return token.Checkpoint{FromBlock: fromBlock, Balance: balance.Int}, nil
}

// SetCheckpoint stores the idx-th checkpoint of an account. Writing an
// existing index overwrites it; writing one past the end appends.
func (d *Database) SetCheckpoint(
	account host.Address,
	idx uint64,
	cp token.Checkpoint,
	txn *Txn,
) error {
	if txn == nil || txn.Blob() == nil {
		return types.ErrNilTxn
	}
	index := checkpointIndex{db: d, txn: txn.Blob()}
	count, err := index.NumCheckpoints(account)
	if err != nil {
		return err
	}
	if idx > count {
		return fmt.Errorf(
			"%w: account %s has %d checkpoints, got index %d",
			ErrCheckpointGap,
			account,
			count,
			idx,
		)
	}
	if err := d.Blob().Set(
		txn.Blob(),
		types.CheckpointBlobKey(account.String(), idx),
		types.EncodeCheckpoint(cp.FromBlock, types.NewNat(cp.Balance)),
	); err != nil {
		return err
	}
	if idx == count {
		return d.Blob().Set(
			txn.Blob(),
			types.CheckpointCountBlobKey(account.String()),
			types.Uint64ToBytes(count+1),
		)
	}
	return nil
}

// Checkpoints returns the persisted checkpoint history of an account
func (d *Database) Checkpoints(account host.Address) ([]token.Checkpoint, error) {
	txn := NewBlobOnlyTxn(d, false)
	defer txn.Release()
	index := checkpointIndex{db: d, txn: txn.Blob()}
	count, err := index.NumCheckpoints(account)
	if err != nil {
		return nil, err
	}
	ret := make([]token.Checkpoint, 0, count)
	for i := range count {
		cp, err := index.CheckpointAt(account, i)
		if err != nil {
			return nil, err
		}
		ret = append(ret, cp)
	}
	return ret, nil
}

// PriorBalance answers a historical balance query from the persisted
// checkpoint history, using the same search as the token contract
func (d *Database) PriorBalance(
	account host.Address,
	level uint64,
	currentLevel uint64,
) (uint256.Int, error) {
	txn := NewBlobOnlyTxn(d, false)
	defer txn.Release()
	return token.PriorBalance(
		checkpointIndex{db: d, txn: txn.Blob()},
		account,
		level,
		currentLevel,
	)
}
