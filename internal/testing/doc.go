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

// Package testing provides shared graph.Snapshot fixture builders for tests
// across the repository, so every package's tests build fixtures the same
// way instead of each hand-rolling node/relationship construction.
//
// # Quick Start
//
//	func TestMyFeature(t *testing.T) {
//	    snap := testing.NewSnapshot(t)
//	    fileID := testing.AddFile(t, snap, "main.go")
//	    mainID := testing.AddFunction(t, snap, "main.go", "main", 1, 10)
//	    testing.AddRelationship(t, snap, graph.RelDefines, fileID, mainID)
//
//	    // exercise the package under test against snap
//	}
//
// # Building Fixtures
//
// The package provides helpers for the node/relationship shapes tests need
// most often:
//   - AddFile: insert a File node
//   - AddFunction: insert a Function node
//   - AddType: insert a Class/Interface/Enum node (label chosen by the caller)
//   - AddRelationship: link two existing nodes with a structural edge
//   - AddCall: link two existing nodes with a CALLS edge at an explicit
//     confidence and reason, for exercising the resolution-tier logic
package testing
