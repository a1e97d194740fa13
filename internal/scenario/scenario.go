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

// Package scenario drives the token and DAO contracts through a scripted
// sequence of calls described in YAML.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownCall      = errors.New("unknown call")
	ErrUnknownAction    = errors.New("unknown proposal action")
	ErrBadArgs          = errors.New("bad call arguments")
	ErrUnexpectedResult = errors.New("unexpected step result")
)

// Scenario is a named sequence of steps
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is a single top-level call. A non-zero level moves the chain forward
// before the call is made
type Step struct {
	Args        yaml.Node `yaml:"args"`
	Sender      string    `yaml:"sender"`
	Call        string    `yaml:"call"`
	ExpectError string    `yaml:"expectError"`
	Level       uint64    `yaml:"level"`
	Amount      uint64    `yaml:"amount"`
}

// Parse decodes a scenario document
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("error parsing scenario: %w", err)
	}
	for idx, step := range s.Steps {
		if step.Call == "" {
			return nil, fmt.Errorf("step %d: %w: missing call", idx, ErrUnknownCall)
		}
		if step.Sender == "" {
			return nil, fmt.Errorf("step %d: missing sender", idx)
		}
	}
	return &s, nil
}

// Load reads and decodes a scenario file
func Load(path string) (*Scenario, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading scenario file: %w", err)
	}
	return Parse(buf)
}
