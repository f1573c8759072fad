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

package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
project_id: demo
repo_root: /repos/demo
extra_ignore_globs:
  - "**/*.generated.go"
max_file_size_bytes: 1048576
chunk_byte_budget: 2097152
worker_count: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	fc, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", fc.ProjectID)
	assert.Equal(t, "/repos/demo", fc.RepoRoot)
	assert.Equal(t, []string{"**/*.generated.go"}, fc.ExtraIgnoreGlobs)
	assert.EqualValues(t, 1048576, fc.MaxFileSizeBytes)
	assert.EqualValues(t, 2097152, fc.ChunkByteBudget)
	assert.Equal(t, 4, fc.WorkerCount)
}

func TestLoadConfigFile_MissingFileReturnsNotExist(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestConfig_WithFile_FlagsTakePrecedenceOverFile(t *testing.T) {
	fc := &FileConfig{ProjectID: "from-file", RepoRoot: "/from/file", WorkerCount: 2}

	cfg := Config{ProjectID: "from-flag"}.WithFile(fc)

	assert.Equal(t, "from-flag", cfg.ProjectID, "flag-provided field must not be overwritten by file")
	assert.Equal(t, "/from/file", cfg.RepoRoot, "unset field should be filled from file")
	assert.Equal(t, 2, cfg.WorkerCount)
}

func TestConfig_WithFile_NilFileFallsBackToDefaults(t *testing.T) {
	cfg := Config{ProjectID: "p", RepoRoot: "/r"}.WithFile(nil)

	assert.Equal(t, "p", cfg.ProjectID)
	assert.Greater(t, cfg.ChunkByteBudget, int64(0))
	assert.Greater(t, cfg.WorkerCount, 0)
}
