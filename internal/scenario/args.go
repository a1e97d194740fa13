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

package scenario

import (
	"fmt"
	"strconv"

	"github.com/blinklabs-io/murmuration/dao"
	"github.com/blinklabs-io/murmuration/host"
	"github.com/blinklabs-io/murmuration/internal/config"
	"github.com/blinklabs-io/murmuration/token"
	"github.com/holiman/uint256"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"
)

type transferArgs struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Value string `yaml:"value"`
}

type approveArgs struct {
	Spender string `yaml:"spender"`
	Value   string `yaml:"value"`
}

type mintArgs struct {
	Address string `yaml:"address"`
	Value   string `yaml:"value"`
}

type priorBalanceArgs struct {
	Address            string `yaml:"address"`
	CallbackTarget     string `yaml:"callbackTarget"`
	CallbackEntrypoint string `yaml:"callbackEntrypoint"`
	Level              uint64 `yaml:"level"`
}

type administratorArgs struct {
	// Empty removes the administrator
	Address string `yaml:"address"`
}

type pauseArgs struct {
	Paused bool `yaml:"paused"`
}

type actionArgs struct {
	Parameters yaml.Node `yaml:"parameters"`
	Type       string    `yaml:"type"`
	To         string    `yaml:"to"`
	Value      string    `yaml:"value"`
}

type proposeArgs struct {
	Action          actionArgs `yaml:"action"`
	Title           string     `yaml:"title"`
	DescriptionLink string     `yaml:"descriptionLink"`
	DescriptionHash string     `yaml:"descriptionHash"`
}

type voteArgs struct {
	Value string `yaml:"value"`
}

type voteCallbackArgs struct {
	Address string `yaml:"address"`
	Result  string `yaml:"result"`
	Level   uint64 `yaml:"level"`
}

const (
	ActionSetParameters = "setParameters"
	ActionTransfer      = "transfer"
	ActionNoop          = "noop"
)

// decodeArgs decodes a step's args into T. Absent args decode to the zero value
func decodeArgs[T any](node *yaml.Node) (T, error) {
	var ret T
	if node.IsZero() {
		return ret, nil
	}
	if err := node.Decode(&ret); err != nil {
		return ret, fmt.Errorf("%w: %w", ErrBadArgs, err)
	}
	return ret, nil
}

func parseValue(name, value string) (uint256.Int, error) {
	var ret uint256.Int
	if value == "" {
		return ret, nil
	}
	if err := ret.SetFromDecimal(value); err != nil {
		return uint256.Int{}, fmt.Errorf("%w: %s %q: %w", ErrBadArgs, name, value, err)
	}
	return ret, nil
}

func parseVoteValue(value string) (dao.VoteValue, error) {
	switch value {
	case "yay":
		return dao.VoteYay, nil
	case "nay":
		return dao.VoteNay, nil
	case "abstain":
		return dao.VoteAbstain, nil
	}
	// Raw numeric values reach the contract unchecked
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: vote value %q", ErrBadArgs, value)
	}
	return dao.VoteValue(v), nil
}

// operation translates a step into a host operation against the runner's contracts
func (r *Runner) operation(step *Step) (host.Operation, error) {
	op := host.Operation{Entrypoint: step.Call, Amount: step.Amount}
	var err error
	switch step.Call {
	case token.EntrypointTransfer:
		op.Target = r.tokenAddress
		op.Param, err = transferParam(&step.Args)
	case token.EntrypointApprove:
		op.Target = r.tokenAddress
		op.Param, err = approveParam(&step.Args)
	case token.EntrypointMint:
		op.Target = r.tokenAddress
		op.Param, err = mintParam(&step.Args)
	case token.EntrypointGetPriorBalance:
		op.Target = r.tokenAddress
		op.Param, err = r.priorBalanceParam(&step.Args)
	case token.EntrypointDisableMinting:
		op.Target = r.tokenAddress
	case token.EntrypointSetAdministrator:
		op.Target = r.tokenAddress
		op.Param, err = administratorParam(&step.Args)
	case token.EntrypointSetPause:
		op.Target = r.tokenAddress
		var args pauseArgs
		args, err = decodeArgs[pauseArgs](&step.Args)
		op.Param = args.Paused
	case dao.EntrypointPropose:
		op.Target = r.daoAddress
		op.Param, err = r.proposeParam(&step.Args)
	case dao.EntrypointVote:
		op.Target = r.daoAddress
		var args voteArgs
		if args, err = decodeArgs[voteArgs](&step.Args); err == nil {
			op.Param, err = parseVoteValue(args.Value)
		}
	case dao.EntrypointVoteCallback:
		op.Target = r.daoAddress
		op.Param, err = voteCallbackParam(&step.Args)
	case dao.EntrypointEndVoting, dao.EntrypointExecuteTimelock, dao.EntrypointCancelTimelock:
		op.Target = r.daoAddress
	case dao.EntrypointSetParameters:
		op.Target = r.daoAddress
		op.Param, err = r.parametersParam(&step.Args)
	default:
		return host.Operation{}, fmt.Errorf("%w: %s", ErrUnknownCall, step.Call)
	}
	if err != nil {
		return host.Operation{}, err
	}
	return op, nil
}

func transferParam(node *yaml.Node) (token.TransferParams, error) {
	args, err := decodeArgs[transferArgs](node)
	if err != nil {
		return token.TransferParams{}, err
	}
	value, err := parseValue("value", args.Value)
	if err != nil {
		return token.TransferParams{}, err
	}
	return token.TransferParams{
		From:  host.Address(args.From),
		To:    host.Address(args.To),
		Value: value,
	}, nil
}

func approveParam(node *yaml.Node) (token.ApproveParams, error) {
	args, err := decodeArgs[approveArgs](node)
	if err != nil {
		return token.ApproveParams{}, err
	}
	value, err := parseValue("value", args.Value)
	if err != nil {
		return token.ApproveParams{}, err
	}
	return token.ApproveParams{Spender: host.Address(args.Spender), Value: value}, nil
}

func mintParam(node *yaml.Node) (token.MintParams, error) {
	args, err := decodeArgs[mintArgs](node)
	if err != nil {
		return token.MintParams{}, err
	}
	value, err := parseValue("value", args.Value)
	if err != nil {
		return token.MintParams{}, err
	}
	return token.MintParams{Address: host.Address(args.Address), Value: value}, nil
}

func (r *Runner) priorBalanceParam(node *yaml.Node) (token.PriorBalanceRequest, error) {
	args, err := decodeArgs[priorBalanceArgs](node)
	if err != nil {
		return token.PriorBalanceRequest{}, err
	}
	callback := host.Callback{
		Target:     host.Address(args.CallbackTarget),
		Entrypoint: args.CallbackEntrypoint,
	}
	if callback.Target == "" {
		callback.Target = r.daoAddress
	}
	if callback.Entrypoint == "" {
		callback.Entrypoint = dao.EntrypointVoteCallback
	}
	return token.PriorBalanceRequest{
		Callback: callback,
		Address:  host.Address(args.Address),
		Level:    args.Level,
	}, nil
}

func administratorParam(node *yaml.Node) (optional.Option[host.Address], error) {
	args, err := decodeArgs[administratorArgs](node)
	if err != nil {
		return nil, err
	}
	if args.Address == "" {
		return optional.None[host.Address](), nil
	}
	return optional.Some(host.Address(args.Address)), nil
}

func voteCallbackParam(node *yaml.Node) (dao.VoteCallbackParams, error) {
	args, err := decodeArgs[voteCallbackArgs](node)
	if err != nil {
		return dao.VoteCallbackParams{}, err
	}
	result, err := parseValue("result", args.Result)
	if err != nil {
		return dao.VoteCallbackParams{}, err
	}
	return dao.VoteCallbackParams{
		Address: host.Address(args.Address),
		Result:  result,
		Level:   args.Level,
	}, nil
}

// parametersParam overlays the given node onto the configured governance
// parameters, so a step only names the fields it changes
func (r *Runner) parametersParam(node *yaml.Node) (dao.GovernanceParameters, error) {
	govCfg := r.cfg.Governance
	if !node.IsZero() {
		if err := node.Decode(&govCfg); err != nil {
			return dao.GovernanceParameters{}, fmt.Errorf("%w: %w", ErrBadArgs, err)
		}
	}
	return governanceParameters(govCfg)
}

// governanceParameters converts without validating, leaving that to the contract
func governanceParameters(govCfg config.GovernanceConfig) (dao.GovernanceParameters, error) {
	escrow, err := parseValue("escrowAmount", govCfg.EscrowAmount)
	if err != nil {
		return dao.GovernanceParameters{}, err
	}
	lower, err := parseValue("quorumCapLower", govCfg.QuorumCapLower)
	if err != nil {
		return dao.GovernanceParameters{}, err
	}
	upper, err := parseValue("quorumCapUpper", govCfg.QuorumCapUpper)
	if err != nil {
		return dao.GovernanceParameters{}, err
	}
	return dao.GovernanceParameters{
		EscrowAmount:                      escrow,
		QuorumCap:                         dao.QuorumCap{Lower: lower, Upper: upper},
		VoteDelayBlocks:                   govCfg.VoteDelayBlocks,
		VoteLengthBlocks:                  govCfg.VoteLengthBlocks,
		MinYayVotesPercentForEscrowReturn: govCfg.MinYayVotesPercentForEscrowReturn,
		BlocksInTimelockForExecution:      govCfg.BlocksInTimelockForExecution,
		BlocksInTimelockForCancellation:   govCfg.BlocksInTimelockForCancellation,
		PercentageForSuperMajority:        govCfg.PercentageForSuperMajority,
	}, nil
}

func (r *Runner) proposeParam(node *yaml.Node) (dao.Proposal, error) {
	args, err := decodeArgs[proposeArgs](node)
	if err != nil {
		return dao.Proposal{}, err
	}
	proposal := dao.Proposal{
		Title:           args.Title,
		DescriptionLink: args.DescriptionLink,
		DescriptionHash: args.DescriptionHash,
	}
	switch args.Action.Type {
	case ActionNoop, "":
		proposal.Lambda = dao.NoopLambda()
	case ActionTransfer:
		value, err := parseValue("value", args.Action.Value)
		if err != nil {
			return dao.Proposal{}, err
		}
		proposal.Lambda = dao.TransferLambda(r.tokenAddress, host.Address(args.Action.To), value)
	case ActionSetParameters:
		params, err := r.parametersParam(&args.Action.Parameters)
		if err != nil {
			return dao.Proposal{}, err
		}
		proposal.Lambda = dao.SetParametersLambda(r.daoAddress, params)
	default:
		return dao.Proposal{}, fmt.Errorf("%w: %s", ErrUnknownAction, args.Action.Type)
	}
	return proposal, nil
}
