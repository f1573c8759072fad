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

// Package resolve implements the Import, Call, and Heritage resolvers (spec
// 4.5–4.7): turning the raw callee/specifier/parent names an ExtractedRecord
// carries into confidence-scored graph relationships.
//
// Grounded on pkg/ingestion/resolver.go's CallResolver (BuildIndex, the
// qualified/dot-import/global-registry lookup order), generalized from
// Go-only import paths to any language's import specifiers and widened from
// "exported function" to every definable symbol kind.
package resolve

// Candidate is a single symbol a name could resolve to: its node id and the
// file path it was defined in (needed for the ambiguous-match tie-break).
type Candidate struct {
	NodeID   string
	FilePath string
}

// SymbolTable is the dual index populated by the Parser/Extractor as it
// registers each Definition (spec 4.4 step 6): exact (filePath, name) lookup
// for same-file and import-resolved strategies, and fuzzy name-only lookup
// for the global fallback strategies.
type SymbolTable struct {
	exact map[string]string // "filePath\x00name" -> node id
	fuzzy map[string][]Candidate
}

// NewSymbolTable constructs an empty SymbolTable.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		exact: make(map[string]string),
		fuzzy: make(map[string][]Candidate),
	}
}

func exactKey(filePath, name string) string {
	return filePath + "\x00" + name
}

// Register records a definition under both indices. Called once per
// Definition as the orchestrator merges worker output into the graph
// (spec section 5: "written only on the orchestrator thread").
func (t *SymbolTable) Register(filePath, name, nodeID string) {
	key := exactKey(filePath, name)
	if _, exists := t.exact[key]; !exists {
		t.exact[key] = nodeID
	}
	for _, c := range t.fuzzy[name] {
		if c.NodeID == nodeID {
			return
		}
	}
	t.fuzzy[name] = append(t.fuzzy[name], Candidate{NodeID: nodeID, FilePath: filePath})
}

// LookupExact resolves (filePath, name) to a node id (strategy B: same-file).
func (t *SymbolTable) LookupExact(filePath, name string) (string, bool) {
	id, ok := t.exact[exactKey(filePath, name)]
	return id, ok
}

// LookupInFile resolves a name to a node id scoped to a specific file
// (strategy A: import-resolved — the callee must be defined in the imported
// file, not merely share its name fuzzily).
func (t *SymbolTable) LookupInFile(filePath, name string) (string, bool) {
	return t.LookupExact(filePath, name)
}

// LookupFuzzy returns every candidate defining a given name anywhere in the
// indexed source (strategies C/D).
func (t *SymbolTable) LookupFuzzy(name string) []Candidate {
	return t.fuzzy[name]
}

// Clear discards all registered symbols. Exposed for tests and for any
// caller that wants a fresh table without discarding the ImportMap.
func (t *SymbolTable) Clear() {
	t.exact = make(map[string]string)
	t.fuzzy = make(map[string][]Candidate)
}
