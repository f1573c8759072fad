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
)

func TestImportMap_AddAndTargets(t *testing.T) {
	m := NewImportMap()
	m.Add("a.ts", "b.ts")
	m.Add("a.ts", "c.ts")
	m.Add("a.ts", "b.ts") // duplicate, idempotent

	assert.True(t, m.Imports("a.ts", "b.ts"))
	assert.True(t, m.Imports("a.ts", "c.ts"))
	assert.False(t, m.Imports("a.ts", "d.ts"))
	assert.ElementsMatch(t, []string{"b.ts", "c.ts"}, m.Targets("a.ts"))
}

func TestImportMap_UnknownSource(t *testing.T) {
	m := NewImportMap()
	assert.Empty(t, m.Targets("nope.ts"))
	assert.False(t, m.Imports("nope.ts", "b.ts"))
}
