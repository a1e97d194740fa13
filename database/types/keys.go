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

package types

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	CheckpointBlobKeyPrefix      = "cp/"
	CheckpointCountBlobKeyPrefix = "cpn/"

	checkpointBlobValueLen = 8 + 32
)

var ErrInvalidCheckpointValue = errors.New("invalid checkpoint value")

func Uint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

// CheckpointBlobKey returns the key of an account's idx-th checkpoint
func CheckpointBlobKey(account string, idx uint64) []byte {
	key := []byte(CheckpointBlobKeyPrefix)
	key = append(key, account...)
	key = append(key, '/')
	key = append(key, Uint64ToBytes(idx)...)
	return key
}

// CheckpointCountBlobKey returns the key holding an account's checkpoint count
func CheckpointCountBlobKey(account string) []byte {
	key := []byte(CheckpointCountBlobKeyPrefix)
	key = append(key, account...)
	return key
}

// EncodeCheckpoint packs a checkpoint as the big-endian block level followed
// by the 32-byte big-endian balance
func EncodeCheckpoint(fromBlock uint64, balance Nat) []byte {
	ret := make([]byte, 0, checkpointBlobValueLen)
	ret = append(ret, Uint64ToBytes(fromBlock)...)
	b32 := balance.Bytes32()
	ret = append(ret, b32[:]...)
	return ret
}

func DecodeCheckpoint(data []byte) (uint64, Nat, error) {
	if len(data) != checkpointBlobValueLen {
		return 0, Nat{}, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidCheckpointValue,
			checkpointBlobValueLen,
			len(data),
		)
	}
	var balance Nat
	balance.SetBytes32(data[8:])
	return binary.BigEndian.Uint64(data[:8]), balance, nil
}
