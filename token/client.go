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

import (
	"github.com/blinklabs-io/murmuration/host"
	"github.com/holiman/uint256"
)

// TransferOperation builds a call to the transfer entrypoint of the token at tokenAddr
func TransferOperation(
	tokenAddr host.Address,
	from host.Address,
	to host.Address,
	value uint256.Int,
) host.Operation {
	return host.Operation{
		Target:     tokenAddr,
		Entrypoint: EntrypointTransfer,
		Param: TransferParams{
			From:  from,
			To:    to,
			Value: value,
		},
	}
}

// PriorBalanceOperation builds a getPriorBalance request whose answer is
// delivered to callback
func PriorBalanceOperation(
	tokenAddr host.Address,
	account host.Address,
	level uint64,
	callback host.Callback,
) host.Operation {
	return host.Operation{
		Target:     tokenAddr,
		Entrypoint: EntrypointGetPriorBalance,
		Param: PriorBalanceRequest{
			Address:  account,
			Level:    level,
			Callback: callback,
		},
	}
}
