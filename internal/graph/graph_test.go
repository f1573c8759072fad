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

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveNodeID_Deterministic(t *testing.T) {
	id1 := DeriveNodeID(LabelFunction, "a/b.go", "Foo")
	id2 := DeriveNodeID(LabelFunction, "a/b.go", "Foo")
	assert.Equal(t, id1, id2)
}

func TestDeriveNodeID_IgnoresLineColumn(t *testing.T) {
	// DeriveNodeID takes only (label, filePath, name) — it has no line or
	// column input, so a span shift (e.g. a blank line added above) cannot
	// change the id. This checks the id's fixed 32-character form.
	id := DeriveNodeID(LabelFunction, "a/b.go", "Foo")
	assert.Len(t, id, 32)
}

func TestDeriveNodeID_DiffersByInputs(t *testing.T) {
	base := DeriveNodeID(LabelFunction, "a/b.go", "Foo")
	assert.NotEqual(t, base, DeriveNodeID(LabelMethod, "a/b.go", "Foo"))
	assert.NotEqual(t, base, DeriveNodeID(LabelFunction, "a/c.go", "Foo"))
	assert.NotEqual(t, base, DeriveNodeID(LabelFunction, "a/b.go", "Bar"))
}

func TestSnapshot_AddNodeIdempotent(t *testing.T) {
	s := NewSnapshot()
	n := &Node{ID: "x", Label: LabelFile, Name: "x.go", FilePath: "x.go"}
	assert.True(t, s.AddNode(n))
	assert.False(t, s.AddNode(n))
	assert.Equal(t, 1, s.NodeCount())
}

func TestSnapshot_AddRelationshipRequiresEndpoints(t *testing.T) {
	s := NewSnapshot()
	a := &Node{ID: "a", Label: LabelFile, Name: "a", FilePath: "a"}
	require.True(t, s.AddNode(a))

	err := s.AddRelationship(&Relationship{ID: "r1", SourceID: "a", TargetID: "missing", Type: RelContains})
	require.Error(t, err)
	assert.Equal(t, 0, s.RelationshipCount())

	b := &Node{ID: "b", Label: LabelFile, Name: "b", FilePath: "b"}
	require.True(t, s.AddNode(b))
	require.NoError(t, s.AddRelationship(&Relationship{ID: "r1", SourceID: "a", TargetID: "b", Type: RelContains, Confidence: 1.0}))
	assert.Equal(t, 1, s.RelationshipCount())
}

func TestSnapshot_RelationshipsByType(t *testing.T) {
	s := NewSnapshot()
	a := &Node{ID: "a", Label: LabelFile, Name: "a", FilePath: "a"}
	b := &Node{ID: "b", Label: LabelFile, Name: "b", FilePath: "b"}
	require.True(t, s.AddNode(a))
	require.True(t, s.AddNode(b))
	require.NoError(t, s.AddRelationship(&Relationship{ID: "r1", SourceID: "a", TargetID: "b", Type: RelContains, Confidence: 1.0}))
	require.NoError(t, s.AddRelationship(&Relationship{ID: "r2", SourceID: "a", TargetID: "b", Type: RelImports, Confidence: 1.0}))

	assert.Len(t, s.RelationshipsByType(RelContains), 1)
	assert.Len(t, s.RelationshipsByType(RelImports), 1)
	assert.Len(t, s.RelationshipsByType(RelCalls), 0)
}

func TestSnapshot_NodeOrderPreserved(t *testing.T) {
	s := NewSnapshot()
	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		require.True(t, s.AddNode(&Node{ID: id, Label: LabelFile, Name: id, FilePath: id}))
	}
	got := s.Nodes()
	require.Len(t, got, 3)
	for i, id := range ids {
		assert.Equal(t, id, got[i].ID)
	}
}
