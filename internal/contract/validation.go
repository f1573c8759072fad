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

package contract

import (
	"fmt"
	"os"
	"strconv"

	"github.com/securityphoenix/gitnexus/internal/graph"
)

const (
	// DefaultSoftLimitNodes is the baseline soft limit on a single
	// snapshot's node count, above which a caller is warned before writing
	// or serializing the graph.
	DefaultSoftLimitNodes = 2_000_000

	// ProjectIDMaxBytes is the maximum length for a project identifier.
	ProjectIDMaxBytes = 128
)

// SoftLimitNodes returns the effective soft limit for a snapshot's node
// count. Controlled via env GITNEXUS_SOFT_LIMIT_NODES; falls back to
// DefaultSoftLimitNodes.
func SoftLimitNodes() int {
	if v := os.Getenv("GITNEXUS_SOFT_LIMIT_NODES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultSoftLimitNodes
}

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	OK      bool
	Message string
}

// ValidateSnapshotSize checks a completed graph.Snapshot against the soft
// node-count limit, so a caller can warn before persisting or serving a
// snapshot too large to comfortably hold in memory downstream.
func ValidateSnapshotSize(snap *graph.Snapshot) *ValidationResult {
	limit := SoftLimitNodes()
	count := snap.NodeCount()
	if count > limit {
		return &ValidationResult{
			OK:      false,
			Message: fmt.Sprintf("snapshot has %d nodes, exceeding soft limit of %d", count, limit),
		}
	}
	return &ValidationResult{OK: true}
}

// ValidateProjectID checks a project identifier's length against
// ProjectIDMaxBytes.
func ValidateProjectID(projectID string) *ValidationResult {
	if len(projectID) == 0 {
		return &ValidationResult{OK: false, Message: "project_id must not be empty"}
	}
	if len(projectID) > ProjectIDMaxBytes {
		return &ValidationResult{
			OK:      false,
			Message: fmt.Sprintf("project_id exceeds %d bytes", ProjectIDMaxBytes),
		}
	}
	return &ValidationResult{OK: true}
}
