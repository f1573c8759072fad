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

package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securityphoenix/gitnexus/internal/scan"
)

func f(path string, size int64) scan.ScannedFile {
	return scan.ScannedFile{RelPath: path, SizeBytes: size, Language: scan.LanguageGo}
}

func TestPlan_Empty(t *testing.T) {
	chunks := Plan(nil, DefaultByteBudget)
	assert.Empty(t, chunks)
}

func TestPlan_SkipsUnparseable(t *testing.T) {
	files := []scan.ScannedFile{
		{RelPath: "README.md", SizeBytes: 10, Language: scan.LanguageUnknown},
		f("a.go", 10),
	}
	chunks := Plan(files, 1000)
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0].Files, 1)
}

func TestPlan_GreedyFirstFit(t *testing.T) {
	files := []scan.ScannedFile{f("a.go", 40), f("b.go", 40), f("c.go", 40)}
	chunks := Plan(files, 100)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0].Files, 2)
	assert.Equal(t, int64(80), chunks[0].TotalBytes)
	assert.Len(t, chunks[1].Files, 1)
}

func TestPlan_OversizeFileGetsOwnChunk(t *testing.T) {
	files := []scan.ScannedFile{f("small.go", 10), f("huge.go", 500), f("small2.go", 10)}
	chunks := Plan(files, 100)
	require.Len(t, chunks, 3)
	assert.Equal(t, "small.go", chunks[0].Files[0].RelPath)
	assert.Equal(t, "huge.go", chunks[1].Files[0].RelPath)
	assert.Equal(t, "small2.go", chunks[2].Files[0].RelPath)
}

func TestPlan_DefaultBudgetUsedWhenNonPositive(t *testing.T) {
	chunks := Plan([]scan.ScannedFile{f("a.go", 10)}, 0)
	require.Len(t, chunks, 1)
}
