/*
 * Copyright 2024 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package action

import (
	"fmt"
)

// Pack is a batch of actions that a client pushes to the server, together with
// the version of the document the actions were made against.
type Pack struct {
	// DocumentID is the ID of the document.
	DocumentID string

	// Actions are the actions in the order they were made.
	Actions []Action

	// LastKnownVersion is the version of the document the client last synced.
	LastKnownVersion int64
}

// NewPack creates a new instance of Pack.
func NewPack(docID string, lastKnownVersion int64, actions []Action) *Pack {
	return &Pack{
		DocumentID:       docID,
		Actions:          actions,
		LastKnownVersion: lastKnownVersion,
	}
}

// IsEmpty returns whether this pack has no actions.
func (p *Pack) IsEmpty() bool {
	return len(p.Actions) == 0
}

// ActionsLen returns the number of actions in this pack.
func (p *Pack) ActionsLen() int {
	return len(p.Actions)
}

// String returns a short description of this pack for logging.
func (p *Pack) String() string {
	return fmt.Sprintf("%s v%d a%d", p.DocumentID, p.LastKnownVersion, len(p.Actions))
}

// CommittedIn returns whether the first action of this pack is among the
// given actions. Packs are applied as a whole, so the server then applied an
// earlier pack holding it, even if its answer was lost.
func (p *Pack) CommittedIn(actions []Action) bool {
	if p.IsEmpty() {
		return false
	}

	first := p.Actions[0].ID()
	for _, a := range actions {
		if a.ID() == first {
			return true
		}
	}
	return false
}
