// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

// Phase is the closed set of progress-reporting phases (spec section 4's
// data-flow order).
type Phase string

const (
	PhaseScan      Phase = "scan"
	PhaseStructure Phase = "structure"
	PhaseParse     Phase = "parse"
	PhaseResolve   Phase = "resolve"
	PhaseCommunity Phase = "community"
	PhaseProcess   Phase = "process"
)

// Event is one progress update (spec section 6: "a stream of {phase,
// percent, message, detail?, stats?} with monotonic percent within a run").
// Percent resets to 0 at the start of each phase and climbs to 100 by its
// end; it is monotonic within a phase, not across the whole run.
type Event struct {
	Phase   Phase
	Percent int
	Message string
	Detail  string
	Stats   map[string]int
}

func emit(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	ch <- e
}
