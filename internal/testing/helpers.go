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

package testing

import (
	"testing"

	"github.com/securityphoenix/gitnexus/internal/graph"
)

// NewSnapshot creates an empty graph.Snapshot for a test, grounding every
// fixture-building helper in this package on a single in-memory arena
// instead of a database connection.
func NewSnapshot(t *testing.T) *graph.Snapshot {
	t.Helper()
	return graph.NewSnapshot()
}

// AddFile inserts a File node and returns its derived id.
//
// Example:
//
//	snap := testing.NewSnapshot(t)
//	fileID := testing.AddFile(t, snap, "auth.go")
func AddFile(t *testing.T, snap *graph.Snapshot, path string) string {
	t.Helper()
	id := graph.DeriveNodeID(graph.LabelFile, path, path)
	if !snap.AddNode(&graph.Node{ID: id, Label: graph.LabelFile, Name: path, FilePath: path}) {
		t.Fatalf("file node %s already exists", path)
	}
	return id
}

// AddFunction inserts a Function node in the given file and returns its
// derived id.
//
// Example:
//
//	funcID := testing.AddFunction(t, snap, "auth.go", "HandleAuth", 10, 25)
func AddFunction(t *testing.T, snap *graph.Snapshot, filePath, name string, startLine, endLine int) string {
	t.Helper()
	return addSymbol(t, snap, graph.LabelFunction, filePath, name, startLine, endLine)
}

// AddType inserts a Class, Interface, or Enum node (selected by label) and
// returns its derived id.
//
// Example:
//
//	typeID := testing.AddType(t, snap, graph.LabelClass, "user.go", "UserService", 10, 50)
func AddType(t *testing.T, snap *graph.Snapshot, label graph.NodeLabel, filePath, name string, startLine, endLine int) string {
	t.Helper()
	return addSymbol(t, snap, label, filePath, name, startLine, endLine)
}

func addSymbol(t *testing.T, snap *graph.Snapshot, label graph.NodeLabel, filePath, name string, startLine, endLine int) string {
	t.Helper()
	id := graph.DeriveNodeID(label, filePath, name)
	snap.AddNode(&graph.Node{
		ID: id, Label: label, Name: name, FilePath: filePath,
		StartLine: startLine, EndLine: endLine,
	})
	return id
}

// AddRelationship inserts a relationship of the given type between two
// already-inserted node ids, deriving its id and defaulting Confidence to
// 1.0 and Reason to graph.ReasonStructuralContains.
//
// Example:
//
//	testing.AddRelationship(t, snap, graph.RelDefines, fileID, funcID)
func AddRelationship(t *testing.T, snap *graph.Snapshot, relType graph.RelType, sourceID, targetID string) {
	t.Helper()
	id := graph.DeriveRelID(relType, sourceID, targetID, graph.ReasonStructuralContains)
	if err := snap.AddRelationship(&graph.Relationship{
		ID: id, SourceID: sourceID, TargetID: targetID, Type: relType,
		Confidence: 1.0, Reason: graph.ReasonStructuralContains,
	}); err != nil {
		t.Fatalf("add relationship %s -> %s: %v", sourceID, targetID, err)
	}
}

// AddCall inserts a CALLS relationship with an explicit confidence and
// reason, for tests exercising the confidence-tiered resolution strategies.
//
// Example:
//
//	testing.AddCall(t, snap, callerID, calleeID, graph.ConfidenceFuzzySingle, graph.ReasonFuzzyGlobal)
func AddCall(t *testing.T, snap *graph.Snapshot, sourceID, targetID string, confidence float64, reason string) {
	t.Helper()
	id := graph.DeriveRelID(graph.RelCalls, sourceID, targetID, reason)
	if err := snap.AddRelationship(&graph.Relationship{
		ID: id, SourceID: sourceID, TargetID: targetID, Type: graph.RelCalls,
		Confidence: confidence, Reason: reason,
	}); err != nil {
		t.Fatalf("add call %s -> %s: %v", sourceID, targetID, err)
	}
}
