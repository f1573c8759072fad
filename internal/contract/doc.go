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

// Package contract provides validation constants and utilities for
// ingestion output.
//
// This internal package holds the soft limits a caller checks before
// persisting or serving a completed graph.Snapshot.
//
// # Snapshot Size Limits
//
// A soft limit on node count prevents a caller from unknowingly trying to
// serialize or query a graph far larger than memory can comfortably hold:
//
//	result := contract.ValidateSnapshotSize(snap)
//	if !result.OK {
//	    log.Printf("Validation failed: %s", result.Message)
//	}
//
// # Configuration via Environment
//
// The soft limit can be adjusted via the GITNEXUS_SOFT_LIMIT_NODES
// environment variable:
//
//	export GITNEXUS_SOFT_LIMIT_NODES=500000
//
// If the environment variable is not set or invalid, the default limit of
// 2,000,000 nodes (DefaultSoftLimitNodes) is used.
package contract
