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

// ImportMap is the directed sourceFilePath -> set-of-importedFilePaths
// mapping the Import Resolver populates (spec 4.5: "record the directed
// mapping in the ImportMap"). The Call Resolver consults it for strategy A
// (import-resolved).
type ImportMap struct {
	edges map[string]map[string]bool
}

// NewImportMap constructs an empty ImportMap.
func NewImportMap() *ImportMap {
	return &ImportMap{edges: make(map[string]map[string]bool)}
}

// Add records that source imports target. Idempotent.
func (m *ImportMap) Add(source, target string) {
	set, ok := m.edges[source]
	if !ok {
		set = make(map[string]bool)
		m.edges[source] = set
	}
	set[target] = true
}

// Targets returns every file source imports, in no particular order.
func (m *ImportMap) Targets(source string) []string {
	set, ok := m.edges[source]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	return out
}

// Imports reports whether source directly imports target.
func (m *ImportMap) Imports(source, target string) bool {
	return m.edges[source] != nil && m.edges[source][target]
}
