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

package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/securityphoenix/gitnexus/internal/graph"
)

func TestValidateSnapshotSize_PassesUnderLimit(t *testing.T) {
	snap := graph.NewSnapshot()
	snap.AddNode(&graph.Node{ID: "a", Label: graph.LabelFile, Name: "a.go", FilePath: "a.go"})

	result := ValidateSnapshotSize(snap)
	assert.True(t, result.OK)
}

func TestValidateSnapshotSize_FailsOverLimit(t *testing.T) {
	t.Setenv("GITNEXUS_SOFT_LIMIT_NODES", "1")
	snap := graph.NewSnapshot()
	snap.AddNode(&graph.Node{ID: "a", Label: graph.LabelFile, Name: "a.go", FilePath: "a.go"})
	snap.AddNode(&graph.Node{ID: "b", Label: graph.LabelFile, Name: "b.go", FilePath: "b.go"})

	result := ValidateSnapshotSize(snap)
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "exceeding soft limit")
}

func TestValidateProjectID_RejectsEmpty(t *testing.T) {
	result := ValidateProjectID("")
	assert.False(t, result.OK)
}

func TestValidateProjectID_AcceptsNormalID(t *testing.T) {
	result := ValidateProjectID("my-project")
	assert.True(t, result.OK)
}
