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
)

func TestImportResolver_RelativeSpecifier(t *testing.T) {
	files := []string{"src/a.ts", "src/b.ts"}
	r := NewImportResolver(files)

	target, ok := r.Resolve("src/a.ts", "./b")
	require.True(t, ok)
	assert.Equal(t, "src/b.ts", target)
}

func TestImportResolver_RelativeWithExplicitExtension(t *testing.T) {
	files := []string{"src/a.ts", "src/b.ts"}
	r := NewImportResolver(files)

	target, ok := r.Resolve("src/a.ts", "./b.ts")
	require.True(t, ok)
	assert.Equal(t, "src/b.ts", target)
}

func TestImportResolver_RelativeIndexFallback(t *testing.T) {
	files := []string{"src/a.ts", "src/lib/index.ts"}
	r := NewImportResolver(files)

	target, ok := r.Resolve("src/a.ts", "./lib")
	require.True(t, ok)
	assert.Equal(t, "src/lib/index.ts", target)
}

func TestImportResolver_ParentDirectory(t *testing.T) {
	files := []string{"src/sub/a.ts", "src/b.ts"}
	r := NewImportResolver(files)

	target, ok := r.Resolve("src/sub/a.ts", "../b")
	require.True(t, ok)
	assert.Equal(t, "src/b.ts", target)
}

func TestImportResolver_AbsoluteSpecifier(t *testing.T) {
	files := []string{"src/a.ts", "src/b.ts"}
	r := NewImportResolver(files)

	target, ok := r.Resolve("src/a.ts", "/src/b")
	require.True(t, ok)
	assert.Equal(t, "src/b.ts", target)
}

func TestImportResolver_BareSpecifierSuffixMatch(t *testing.T) {
	files := []string{"internal/handlers/user.go", "internal/routes/auth.go"}
	r := NewImportResolver(files)

	target, ok := r.Resolve("internal/routes/auth.go", "project/internal/handlers/user")
	require.True(t, ok)
	assert.Equal(t, "internal/handlers/user.go", target)
}

func TestImportResolver_UnresolvedSpecifierIsMiss(t *testing.T) {
	files := []string{"src/a.ts"}
	r := NewImportResolver(files)

	_, ok := r.Resolve("src/a.ts", "react")
	assert.False(t, ok)
}

func TestImportResolver_CachesOutcome(t *testing.T) {
	files := []string{"src/a.ts", "src/b.ts"}
	r := NewImportResolver(files)

	target1, ok1 := r.Resolve("src/a.ts", "./b")
	target2, ok2 := r.Resolve("src/a.ts", "./b")
	assert.Equal(t, target1, target2)
	assert.Equal(t, ok1, ok2)
	assert.Len(t, r.cache, 1)
}
