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
	"sort"

	"github.com/securityphoenix/gitnexus/internal/graph"
)

// Resolution is the outcome of resolving a single name against the symbol
// table and import map: the chosen target plus the confidence/reason tier it
// was resolved under (spec 4.6).
type Resolution struct {
	TargetID   string
	Confidence float64
	Reason     string
}

// CallResolver resolves callee names (and, via the same priority scheme,
// heritage parent names — spec 4.7) to a single target symbol, in the fixed
// strategy order A–E. Grounded on pkg/ingestion/resolver.go's CallResolver,
// generalized from "qualified Go import path" lookups to any language by
// resolving purely through the already-built ImportMap and SymbolTable.
type CallResolver struct {
	symbols *SymbolTable
	imports *ImportMap
}

// NewCallResolver constructs a CallResolver over an already-populated
// SymbolTable and ImportMap.
func NewCallResolver(symbols *SymbolTable, imports *ImportMap) *CallResolver {
	return &CallResolver{symbols: symbols, imports: imports}
}

// Resolve attempts strategies (A)-(D) in order for a name referenced from
// callerFile, returning ok=false for strategy (E) (no match — the caller
// omits the edge per spec 7's Resolution-miss policy).
func (r *CallResolver) Resolve(callerFile, name string) (Resolution, bool) {
	// (A) defined in a file imported by the caller's file.
	for _, imported := range r.imports.Targets(callerFile) {
		if id, ok := r.symbols.LookupInFile(imported, name); ok {
			return Resolution{TargetID: id, Confidence: graph.ConfidenceResolved, Reason: graph.ReasonImportResolved}, true
		}
	}

	// (B) defined in the same file.
	if id, ok := r.symbols.LookupExact(callerFile, name); ok {
		return Resolution{TargetID: id, Confidence: graph.ConfidenceResolved, Reason: graph.ReasonSameFile}, true
	}

	// (C)/(D) fuzzy global match.
	candidates := r.symbols.LookupFuzzy(name)
	switch len(candidates) {
	case 0:
		return Resolution{}, false
	case 1:
		return Resolution{TargetID: candidates[0].NodeID, Confidence: graph.ConfidenceFuzzySingle, Reason: graph.ReasonFuzzyGlobal}, true
	default:
		chosen, confidence := tieBreak(candidates)
		return Resolution{TargetID: chosen.NodeID, Confidence: confidence, Reason: graph.ReasonFuzzyGlobalAmbig}, true
	}
}

// tieBreak implements the deterministic ambiguous-match ordering (spec 4.6,
// Open Question 1): shortest filePath first, then lexicographic filePath,
// then lexicographic node id. Confidence starts at 0.5 for the minimal
// two-candidate case and decays 0.05 per additional candidate, floored at
// 0.3.
func tieBreak(candidates []Candidate) (Candidate, float64) {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if len(a.FilePath) != len(b.FilePath) {
			return len(a.FilePath) < len(b.FilePath)
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.NodeID < b.NodeID
	})

	confidence := graph.ConfidenceFuzzyAmbigMax - 0.05*float64(len(sorted)-2)
	if confidence < graph.ConfidenceFuzzyAmbigMin {
		confidence = graph.ConfidenceFuzzyAmbigMin
	}
	return sorted[0], confidence
}
