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
	"fmt"

	"github.com/blinklabs-io/murmuration/host"
)

// Validate checks that the parameters cannot make governance unreachable
func (p GovernanceParameters) Validate() error {
	if p.QuorumCap.Upper.GtUint64(percentScale) {
		return fmt.Errorf("%w: quorum cap upper %s above %d", ErrBadDaoParam, p.QuorumCap.Upper.Dec(), percentScale)
	}
	if p.PercentageForSuperMajority > percentScale {
		return fmt.Errorf("%w: super majority %d%% above 100%%", ErrBadDaoParam, p.PercentageForSuperMajority)
	}
	if p.MinYayVotesPercentForEscrowReturn > percentScale {
		return fmt.Errorf("%w: escrow return %d%% above 100%%", ErrBadDaoParam, p.MinYayVotesPercentForEscrowReturn)
	}
	if p.QuorumCap.Lower.Gt(&p.QuorumCap.Upper) {
		return fmt.Errorf(
			"%w: quorum cap lower %s above upper %s",
			ErrBadDaoParam,
			p.QuorumCap.Lower.Dec(),
			p.QuorumCap.Upper.Dec(),
		)
	}
	if p.BlocksInTimelockForCancellation <= p.BlocksInTimelockForExecution {
		return fmt.Errorf(
			"%w: cancellation after %d blocks must come later than execution after %d",
			ErrBadDaoParam,
			p.BlocksInTimelockForCancellation,
			p.BlocksInTimelockForExecution,
		)
	}
	return nil
}

// SetParameters replaces the governance parameters. Only the DAO itself may
// call it, which means only an executed proposal can change them
func (d *Dao) SetParameters(ctx host.Context, params GovernanceParameters) error {
	if err := ctx.RequireNoAmount(); err != nil {
		return err
	}
	if ctx.Sender != d.address {
		return ErrNotDao
	}
	if err := params.Validate(); err != nil {
		return err
	}
	d.state.params = params
	d.logger.Info(
		"governance parameters updated",
		"component", "dao",
		"escrow", params.EscrowAmount.Dec(),
		"vote_delay", params.VoteDelayBlocks,
		"vote_length", params.VoteLengthBlocks,
		"super_majority", params.PercentageForSuperMajority,
	)
	ctx.Emit(
		ParametersUpdatedEventType,
		ParametersUpdatedEvent{Parameters: params, Level: ctx.Level},
	)
	return nil
}
