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

package dao

import (
	"errors"

	"github.com/blinklabs-io/murmuration/host"
	"github.com/blinklabs-io/murmuration/token"
)

var (
	ErrPollUnderway      = errors.New("POLL_UNDERWAY")
	ErrNoPoll            = errors.New("NO_POLL")
	ErrItemInTimelock    = errors.New("ITEM_IN_TIMELOCK")
	ErrNoItemInTimelock  = errors.New("NO_ITEM_IN_TIMELOCK")
	ErrBadState          = errors.New("BAD_STATE")
	ErrVotingFinished    = errors.New("VOTING_FINISHED")
	ErrVotingNotFinished = errors.New("VOTING_NOT_FINISHED")

	ErrNotAuthor        = errors.New("NOT_AUTHOR")
	ErrNotDao           = errors.New("NOT_DAO")
	ErrNotGovernor      = errors.New("NOT_GOVERNOR")
	ErrNotTokenContract = errors.New("NOT_TOKEN_CONTRACT")

	ErrBadVoteValue = errors.New("BAD_VOTE_VALUE")
	ErrBadDaoParam  = errors.New("BAD_DAO_PARAM")
	ErrAlreadyVoted = errors.New("ALREADY_VOTED")

	ErrTooSoon = errors.New("TOO_SOON")

	// ErrUnknown means a balance callback did not match the outstanding request
	ErrUnknown = errors.New("UNKNOWN")

	ErrOverflow = errors.New("OVERFLOW")
)

// ErrorClass groups reason codes by how a caller should react to them
type ErrorClass int

const (
	ClassOther ErrorClass = iota
	ClassStateGuard
	ClassAuthorization
	ClassValidation
	ClassTiming
	ClassProtocol
)

func (c ErrorClass) String() string {
	switch c {
	case ClassStateGuard:
		return "state_guard"
	case ClassAuthorization:
		return "authorization"
	case ClassValidation:
		return "validation"
	case ClassTiming:
		return "timing"
	case ClassProtocol:
		return "protocol"
	default:
		return "other"
	}
}

var errorClasses = []struct {
	err   error
	class ErrorClass
}{
	{ErrPollUnderway, ClassStateGuard},
	{ErrNoPoll, ClassStateGuard},
	{ErrItemInTimelock, ClassStateGuard},
	{ErrNoItemInTimelock, ClassStateGuard},
	{ErrBadState, ClassStateGuard},
	{ErrVotingFinished, ClassStateGuard},
	{ErrVotingNotFinished, ClassStateGuard},
	{ErrNotAuthor, ClassAuthorization},
	{ErrNotDao, ClassAuthorization},
	{ErrNotGovernor, ClassAuthorization},
	{ErrNotTokenContract, ClassAuthorization},
	{token.ErrNotAllowed, ClassAuthorization},
	{token.ErrNotAdministrator, ClassAuthorization},
	{ErrBadVoteValue, ClassValidation},
	{ErrBadDaoParam, ClassValidation},
	{ErrAlreadyVoted, ClassValidation},
	{host.ErrBadAmount, ClassValidation},
	{token.ErrLowBalance, ClassValidation},
	{ErrTooSoon, ClassTiming},
	{token.ErrBlockLevelTooSoon, ClassTiming},
	{ErrUnknown, ClassProtocol},
}

// Classify returns the class of the first known reason code wrapped by err
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassOther
	}
	for _, ec := range errorClasses {
		if errors.Is(err, ec.err) {
			return ec.class
		}
	}
	return ClassOther
}

// Retryable reports whether the same call may succeed later without changes
func Retryable(err error) bool {
	switch Classify(err) {
	case ClassStateGuard, ClassTiming:
		return true
	default:
		return false
	}
}
