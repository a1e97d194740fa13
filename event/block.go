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

package event

// BlockAdvancedEventType is the event type for block level changes on the host chain
const BlockAdvancedEventType = EventType("chain.block")

// BlockAdvancedEvent is emitted when the host chain moves to a new block level
type BlockAdvancedEvent struct {
	// PreviousLevel is the block level before the change
	PreviousLevel uint64
	// Level is the new current block level
	Level uint64
}
