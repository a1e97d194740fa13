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

package host

import (
	"errors"
	"fmt"
)

var (
	// ErrBadAmount is returned when native value is attached to an entrypoint
	// that does not accept it
	ErrBadAmount = errors.New("BAD_AMOUNT")

	ErrUnknownContract   = errors.New("UNKNOWN_CONTRACT")
	ErrUnknownEntrypoint = errors.New("UNKNOWN_ENTRYPOINT")
	ErrBadParameter      = errors.New("BAD_PARAMETER")

	ErrDuplicateContract = errors.New("contract already registered")
	ErrLevelRegression   = errors.New("block level cannot move backward")
	ErrTooManyOperations = errors.New("operation limit exceeded")
	ErrContractPanic     = errors.New("contract panicked")
)

// UnknownEntrypoint builds the error returned for an unsupported entrypoint
func UnknownEntrypoint(contract Address, entrypoint string) error {
	return fmt.Errorf("%w: %s%%%s", ErrUnknownEntrypoint, contract, entrypoint)
}

// Param asserts the type of an entrypoint parameter
func Param[T any](entrypoint string, param any) (T, error) {
	v, ok := param.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf(
			"%w: %s expects %T, got %T",
			ErrBadParameter,
			entrypoint,
			zero,
			param,
		)
	}
	return v, nil
}
