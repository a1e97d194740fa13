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
	"io"

	"github.com/blinklabs-io/murmuration/host"
	"gopkg.in/yaml.v3"
)

type StepResult struct {
	Sender     string `yaml:"sender"`
	Call       string `yaml:"call"`
	Expected   string `yaml:"expected,omitempty"`
	Error      string `yaml:"error,omitempty"`
	Index      int    `yaml:"index"`
	Operations int    `yaml:"operations"`
	Events     int    `yaml:"events"`
	Level      uint64 `yaml:"level"`
}

type OutcomeSummary struct {
	Title        string `yaml:"title"`
	Outcome      string `yaml:"outcome"`
	YayVotes     string `yaml:"yay"`
	NayVotes     string `yaml:"nay"`
	AbstainVotes string `yaml:"abstain"`
	ID           uint64 `yaml:"id"`
}

type Report struct {
	Balances    map[string]string `yaml:"balances"`
	Name        string            `yaml:"name,omitempty"`
	Quorum      string            `yaml:"quorum"`
	TotalSupply string            `yaml:"totalSupply"`
	Steps       []StepResult      `yaml:"steps"`
	Outcomes    []OutcomeSummary  `yaml:"outcomes"`
	Level       uint64            `yaml:"level"`
	PollOpen    bool              `yaml:"pollOpen"`
	InTimelock  bool              `yaml:"inTimelock"`
}

// Write renders the report as YAML
func (r *Report) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func (r *Runner) finish(report *Report) *Report {
	report.Level = r.chain.Level()
	quorum := r.dao.Quorum()
	report.Quorum = quorum.Dec()
	supply := r.token.TotalSupply()
	report.TotalSupply = supply.Dec()
	report.PollOpen = r.dao.Poll().IsSome()
	report.InTimelock = r.dao.TimelockItem().IsSome()
	for _, id := range r.dao.Outcomes() {
		outcome, _ := r.dao.Outcome(id)
		report.Outcomes = append(report.Outcomes, OutcomeSummary{
			ID:           id,
			Title:        outcome.Poll.Proposal.Title,
			Outcome:      outcome.Outcome.String(),
			YayVotes:     outcome.Poll.YayVotes.Dec(),
			NayVotes:     outcome.Poll.NayVotes.Dec(),
			AbstainVotes: outcome.Poll.AbstainVotes.Dec(),
		})
	}
	report.Balances = make(map[string]string)
	for _, addr := range r.accounts(report) {
		balance := r.token.Balance(addr)
		report.Balances[addr.String()] = balance.Dec()
	}
	return report
}

// accounts lists the addresses a report shows balances for
func (r *Runner) accounts(report *Report) []host.Address {
	ret := []host.Address{r.daoAddress, host.Address(r.cfg.CommunityFund)}
	for _, step := range report.Steps {
		ret = append(ret, host.Address(step.Sender))
	}
	return ret
}
