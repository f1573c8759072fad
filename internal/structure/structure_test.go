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

package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securityphoenix/gitnexus/internal/graph"
	"github.com/securityphoenix/gitnexus/internal/scan"
)

func TestProcess_EmptyInput(t *testing.T) {
	snap := graph.NewSnapshot()
	res := Process(snap, nil)
	assert.Empty(t, res.FileNodeID)
	assert.Equal(t, 0, snap.NodeCount())
}

func TestProcess_BuildsForestAndFileNodes(t *testing.T) {
	snap := graph.NewSnapshot()
	files := []scan.ScannedFile{
		{RelPath: "src/a/x.go", Language: scan.LanguageGo},
		{RelPath: "src/b/y.go", Language: scan.LanguageGo},
		{RelPath: "top.go", Language: scan.LanguageGo},
	}
	res := Process(snap, files)

	require.Len(t, res.FileNodeID, 3)
	for _, f := range files {
		id, ok := res.FileNodeID[f.RelPath]
		require.True(t, ok)
		node, exists := snap.GetNode(id)
		require.True(t, exists)
		assert.Equal(t, graph.LabelFile, node.Label)
		assert.Equal(t, f.RelPath, node.FilePath)
	}

	// Folders: ".", "src", "src/a", "src/b" => 4 folder nodes.
	folderCount := 0
	for _, n := range snap.Nodes() {
		if n.Label == graph.LabelFolder {
			folderCount++
		}
	}
	assert.Equal(t, 4, folderCount)

	contains := snap.RelationshipsByType(graph.RelContains)
	for _, r := range contains {
		assert.Equal(t, 1.0, r.Confidence)
	}
}

func TestProcess_IsDeterministic(t *testing.T) {
	files := []scan.ScannedFile{
		{RelPath: "src/a/x.go"},
		{RelPath: "src/b/y.go"},
	}
	snap1 := graph.NewSnapshot()
	res1 := Process(snap1, files)
	snap2 := graph.NewSnapshot()
	res2 := Process(snap2, files)

	assert.Equal(t, res1.FileNodeID, res2.FileNodeID)
	assert.Equal(t, snap1.NodeCount(), snap2.NodeCount())
	assert.Equal(t, snap1.RelationshipCount(), snap2.RelationshipCount())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a/b", Normalize("./a/b"))
	assert.Equal(t, "a/b", Normalize("a\\b"))
	assert.Equal(t, "a/b", Normalize("a/b/"))
}
