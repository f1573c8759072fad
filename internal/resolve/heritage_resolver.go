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

import "github.com/securityphoenix/gitnexus/internal/graph"

// HeritageResolver resolves extends/implements parent names using the same
// priority scheme as the Call Resolver (spec 4.7: "prefer imported, then
// same-file, then fuzzy"). It is a thin wrapper rather than a distinct
// strategy implementation because the resolution order is identical; only
// the emitted relationship type differs, and that is a function of the
// clause kind the caller already knows (HeritageExtends/HeritageImplements),
// not something this resolver infers.
type HeritageResolver struct {
	calls *CallResolver
}

// NewHeritageResolver constructs a HeritageResolver delegating name
// resolution to an existing CallResolver (same SymbolTable/ImportMap).
func NewHeritageResolver(calls *CallResolver) *HeritageResolver {
	return &HeritageResolver{calls: calls}
}

// Resolve resolves a parentName referenced from childFile, returning the
// same Resolution shape the Call Resolver produces.
func (h *HeritageResolver) Resolve(childFile, parentName string) (Resolution, bool) {
	return h.calls.Resolve(childFile, parentName)
}

// RelTypeFor maps a heritage clause kind to the closed relationship type:
// IMPLEMENTS for a TS/JS class's "implements" clause, EXTENDS for everything
// else — class/class inheritance, interface/interface extension, and Go
// struct/interface embedding alike (spec 4.7: Go embedding is "the closest
// Go analogue to extends", regardless of whether the embedded type happens
// to be an interface). Go and Python never produce HeritageImplements (only
// TS/JS class_heritage has an implements_clause), so the clause kind alone —
// not the resolved parent's label — is what the extractors already use to
// make this distinction; re-deriving it here from the parent's label would
// mislabel interface/interface extension and interface embedding as
// IMPLEMENTS.
func RelTypeFor(kind string) graph.RelType {
	if kind == "implements" {
		return graph.RelImplements
	}
	return graph.RelExtends
}
