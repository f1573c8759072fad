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

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securityphoenix/gitnexus/internal/graph"
)

func TestCallResolver_ImportResolved(t *testing.T) {
	symbols := NewSymbolTable()
	symbols.Register("b.ts", "foo", "node-foo")
	imports := NewImportMap()
	imports.Add("a.ts", "b.ts")

	r := NewCallResolver(symbols, imports)
	res, ok := r.Resolve("a.ts", "foo")
	require.True(t, ok)
	assert.Equal(t, "node-foo", res.TargetID)
	assert.Equal(t, graph.ConfidenceResolved, res.Confidence)
	assert.Equal(t, graph.ReasonImportResolved, res.Reason)
}

func TestCallResolver_SameFile(t *testing.T) {
	symbols := NewSymbolTable()
	symbols.Register("x.py", "helper", "node-helper")
	r := NewCallResolver(symbols, NewImportMap())

	res, ok := r.Resolve("x.py", "helper")
	require.True(t, ok)
	assert.Equal(t, graph.ReasonSameFile, res.Reason)
	assert.Equal(t, graph.ConfidenceResolved, res.Confidence)
}

func TestCallResolver_ImportResolvedPrecedesSameFile(t *testing.T) {
	symbols := NewSymbolTable()
	symbols.Register("a.ts", "foo", "node-local")
	symbols.Register("b.ts", "foo", "node-imported")
	imports := NewImportMap()
	imports.Add("a.ts", "b.ts")

	r := NewCallResolver(symbols, imports)
	res, ok := r.Resolve("a.ts", "foo")
	require.True(t, ok)
	// Strategy order per spec 4.6: import-resolved (A) beats same-file (B).
	assert.Equal(t, "node-imported", res.TargetID)
	assert.Equal(t, graph.ReasonImportResolved, res.Reason)
}

func TestCallResolver_FuzzyGlobalSingleMatch(t *testing.T) {
	symbols := NewSymbolTable()
	symbols.Register("other.ts", "doThing", "node-doThing")
	r := NewCallResolver(symbols, NewImportMap())

	res, ok := r.Resolve("caller.ts", "doThing")
	require.True(t, ok)
	assert.Equal(t, graph.ConfidenceFuzzySingle, res.Confidence)
	assert.Equal(t, graph.ReasonFuzzyGlobal, res.Reason)
}

func TestCallResolver_FuzzyGlobalAmbiguousDeterministic(t *testing.T) {
	symbols := NewSymbolTable()
	symbols.Register("z/longer/path.ts", "doThing", "node-z")
	symbols.Register("a/short.ts", "doThing", "node-a")
	r := NewCallResolver(symbols, NewImportMap())

	res1, ok1 := r.Resolve("caller.ts", "doThing")
	res2, ok2 := r.Resolve("caller.ts", "doThing")
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, res1, res2, "tie-break must be deterministic across calls")
	assert.Equal(t, "node-a", res1.TargetID, "shortest filePath wins the tie-break")
	assert.Equal(t, graph.ReasonFuzzyGlobalAmbig, res1.Reason)
	assert.Less(t, res1.Confidence, graph.ConfidenceFuzzySingle)
}

func TestCallResolver_NoMatchOmitsEdge(t *testing.T) {
	r := NewCallResolver(NewSymbolTable(), NewImportMap())
	_, ok := r.Resolve("a.ts", "nowhere")
	assert.False(t, ok)
}

func TestTieBreak_ConfidenceDecaysWithMoreCandidates(t *testing.T) {
	two := []Candidate{{NodeID: "n1", FilePath: "a.ts"}, {NodeID: "n2", FilePath: "bb.ts"}}
	_, conf2 := tieBreak(two)
	assert.Equal(t, graph.ConfidenceFuzzyAmbigMax, conf2)

	five := []Candidate{
		{NodeID: "n1", FilePath: "a.ts"}, {NodeID: "n2", FilePath: "bb.ts"},
		{NodeID: "n3", FilePath: "cc.ts"}, {NodeID: "n4", FilePath: "dd.ts"},
		{NodeID: "n5", FilePath: "ee.ts"},
	}
	_, conf5 := tieBreak(five)
	assert.Less(t, conf5, conf2)
	assert.GreaterOrEqual(t, conf5, graph.ConfidenceFuzzyAmbigMin)
}

func TestTieBreak_FloorsAtMinimum(t *testing.T) {
	many := make([]Candidate, 20)
	for i := range many {
		many[i] = Candidate{NodeID: "n", FilePath: "f.ts"}
	}
	_, conf := tieBreak(many)
	assert.Equal(t, graph.ConfidenceFuzzyAmbigMin, conf)
}
