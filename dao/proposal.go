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
	"github.com/blinklabs-io/murmuration/host"
	"github.com/blinklabs-io/murmuration/token"
	"github.com/holiman/uint256"
)

// SetParametersLambda builds a proposal action that installs params on the
// DAO at daoAddr
func SetParametersLambda(daoAddr host.Address, params GovernanceParameters) ProposalLambda {
	return func(host.Context) ([]host.Operation, error) {
		return []host.Operation{
			{
				Target:     daoAddr,
				Entrypoint: EntrypointSetParameters,
				Param:      params,
			},
		}, nil
	}
}

// TransferLambda builds a proposal action that moves tokens held by the DAO
func TransferLambda(tokenAddr host.Address, to host.Address, value uint256.Int) ProposalLambda {
	return func(ctx host.Context) ([]host.Operation, error) {
		return []host.Operation{
			token.TransferOperation(tokenAddr, ctx.Self, to, value),
		}, nil
	}
}

// NoopLambda builds a proposal action with no effect, for signalling polls
func NoopLambda() ProposalLambda {
	return func(host.Context) ([]host.Operation, error) {
		return nil, nil
	}
}
