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

package badger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/murmuration/database/types"
)

const (
	commitLevelBlobKey = "metadata_commit_level"
)

// GetCommitLevel returns the chain level recorded by the last commit, or 0
func (b *BlobStoreBadger) GetCommitLevel() (uint64, error) {
	txn := b.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck

	val, err := b.Get(txn, []byte(commitLevelBlobKey))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(val) != 8 {
		return 0, fmt.Errorf("invalid commit level value: %x", val)
	}
	return binary.BigEndian.Uint64(val), nil
}

func (b *BlobStoreBadger) SetCommitLevel(level uint64, txn types.Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return b.Set(txn, []byte(commitLevelBlobKey), types.Uint64ToBytes(level))
}
