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

package token

import "errors"

var (
	ErrBlockLevelTooSoon     = errors.New("BLOCK_LEVEL_TOO_SOON")
	ErrLowBalance            = errors.New("LOW_BALANCE")
	ErrNotAllowed            = errors.New("NOT_ALLOWED")
	ErrPaused                = errors.New("PAUSED")
	ErrUnsafeAllowanceChange = errors.New("UNSAFE_ALLOWANCE_CHANGE")
	ErrNotAdministrator      = errors.New("NOT_ADMINISTRATOR")
	ErrMintingDisabled       = errors.New("MINTING_DISABLED")
	ErrOverflow              = errors.New("OVERFLOW")

	ErrCheckpointNotFound = errors.New("checkpoint not found")
)
