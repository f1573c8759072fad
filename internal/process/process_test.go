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

package process

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securityphoenix/gitnexus/internal/graph"
)

func addFunc(t *testing.T, snap *graph.Snapshot, file, name string) string {
	t.Helper()
	id := graph.DeriveNodeID(graph.LabelFunction, file, name)
	require.True(t, snap.AddNode(&graph.Node{ID: id, Label: graph.LabelFunction, Name: name, FilePath: file}))
	return id
}

func addCall(t *testing.T, snap *graph.Snapshot, src, dst string, confidence float64) {
	t.Helper()
	require.NoError(t, snap.AddRelationship(&graph.Relationship{
		ID: graph.DeriveRelID(graph.RelCalls, src, dst, "test"), SourceID: src, TargetID: dst,
		Type: graph.RelCalls, Confidence: confidence,
	}))
}

// buildChain builds main.go:main -> service.go:handle -> db.go:query, a
// 3-step entry-to-terminal chain: main has no callers (entry by in-degree 0),
// query has no callees (terminal by out-degree 0).
func buildChain(t *testing.T) (*graph.Snapshot, string, string, string) {
	t.Helper()
	snap := graph.NewSnapshot()
	main := addFunc(t, snap, "cmd/main.go", "main")
	handle := addFunc(t, snap, "service.go", "handle")
	query := addFunc(t, snap, "db.go", "query")
	addCall(t, snap, main, handle, 1.0)
	addCall(t, snap, handle, query, 0.8)
	return snap, main, handle, query
}

func TestDetect_FindsEntryToTerminalChain(t *testing.T) {
	snap, main, handle, query := buildChain(t)

	results, err := Detect(context.Background(), snap, nil, nil, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, results, 1)

	steps := results[0].Steps
	require.Len(t, steps, 3)
	assert.Equal(t, main, steps[0].NodeID)
	assert.Equal(t, handle, steps[1].NodeID)
	assert.Equal(t, query, steps[2].NodeID)
}

func TestDetect_DropsPathsShorterThanMinSteps(t *testing.T) {
	snap := graph.NewSnapshot()
	a := addFunc(t, snap, "main.go", "main")
	b := addFunc(t, snap, "db.go", "query")
	addCall(t, snap, a, b, 1.0)

	results, err := Detect(context.Background(), snap, nil, nil, Config{MaxDepth: 20, MinSteps: 3})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDetect_EntryPatternAcceptsCalledHandler(t *testing.T) {
	// handler.go:handle has in-degree 1 (bootstrap calls it), so it would
	// not qualify as an entry by degree alone; this exercises that a
	// handler/cli/main/index-named file is still accepted as an entry via
	// the filename pattern.
	snap := graph.NewSnapshot()
	caller := addFunc(t, snap, "bootstrap.go", "bootstrap")
	handler := addFunc(t, snap, "handler.go", "handle")
	mid := addFunc(t, snap, "service.go", "process")
	sink := addFunc(t, snap, "db.go", "query")
	addCall(t, snap, caller, handler, 1.0)
	addCall(t, snap, handler, mid, 1.0)
	addCall(t, snap, mid, sink, 1.0)

	results, err := Detect(context.Background(), snap, nil, nil, DefaultConfig())
	require.NoError(t, err)

	found := false
	for _, r := range results {
		if r.Steps[0].NodeID == handler {
			found = true
		}
	}
	assert.True(t, found, "handler.go entry should be discovered via filename pattern")
}

func TestDetect_BoundedDepthStopsCycles(t *testing.T) {
	snap := graph.NewSnapshot()
	a := addFunc(t, snap, "main.go", "main")
	b := addFunc(t, snap, "b.go", "b")
	c := addFunc(t, snap, "db.go", "query")
	addCall(t, snap, a, b, 1.0)
	addCall(t, snap, b, a, 1.0) // cycle back to a
	addCall(t, snap, b, c, 1.0)

	results, err := Detect(context.Background(), snap, nil, nil, DefaultConfig())
	require.NoError(t, err)
	for _, r := range results {
		seen := make(map[string]bool)
		for _, s := range r.Steps {
			assert.False(t, seen[s.NodeID], "path must be acyclic")
			seen[s.NodeID] = true
		}
	}
}

func TestDetect_CrossCommunityFlag(t *testing.T) {
	snap, main, handle, query := buildChain(t)
	communityOf := map[string]string{
		main:   "c1",
		handle: "c1",
		query:  "c2",
	}
	communityNames := map[string]string{"c1": "entrypoints", "c2": "storage"}

	results, err := Detect(context.Background(), snap, communityOf, communityNames, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].CrossCommunity)
	assert.Equal(t, 2, results[0].CommunityCount)
	assert.Contains(t, results[0].Name, "entrypoints")
}

func TestDetect_EmptyGraphReturnsNoResults(t *testing.T) {
	snap := graph.NewSnapshot()
	results, err := Detect(context.Background(), snap, nil, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDetect_CapsAtMaxProcesses(t *testing.T) {
	snap := graph.NewSnapshot()
	// 5 independent 3-step chains from distinct "main"-pattern entries; with
	// symbolCount small, maxProcesses clamps to 20 so none should be dropped,
	// exercising the cap logic without needing a huge fixture.
	for i := 0; i < 5; i++ {
		e := addFunc(t, snap, "cmd/main.go", "main"+string(rune('A'+i)))
		m := addFunc(t, snap, "service.go", "mid"+string(rune('A'+i)))
		s := addFunc(t, snap, "db.go", "query"+string(rune('A'+i)))
		addCall(t, snap, e, m, 1.0)
		addCall(t, snap, m, s, 1.0)
	}

	results, err := Detect(context.Background(), snap, nil, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, results, 5)
}
