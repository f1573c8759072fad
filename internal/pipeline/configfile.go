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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of a YAML configuration file, following
// the flags > file > defaults layering convention (spec section 6).
type FileConfig struct {
	ProjectID        string   `yaml:"project_id"`
	RepoRoot         string   `yaml:"repo_root"`
	ExtraIgnoreGlobs []string `yaml:"extra_ignore_globs"`
	MaxFileSizeBytes int64    `yaml:"max_file_size_bytes"`
	ChunkByteBudget  int64    `yaml:"chunk_byte_budget"`
	WorkerCount      int      `yaml:"worker_count"`
}

// LoadConfigFile reads and parses a YAML configuration file. A missing file
// returns the underlying os error unwrapped, so callers can check
// os.IsNotExist and fall back to defaults/flags only.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// applyFile fills any zero-valued Config fields from fc. Fields already set
// (e.g. by a command-line flag) take precedence and are left untouched. A
// nil fc is a no-op.
func (c Config) applyFile(fc *FileConfig) Config {
	if fc == nil {
		return c
	}
	if c.ProjectID == "" {
		c.ProjectID = fc.ProjectID
	}
	if c.RepoRoot == "" {
		c.RepoRoot = fc.RepoRoot
	}
	if len(c.ExtraIgnoreGlobs) == 0 {
		c.ExtraIgnoreGlobs = fc.ExtraIgnoreGlobs
	}
	if c.MaxFileSizeBytes == 0 {
		c.MaxFileSizeBytes = fc.MaxFileSizeBytes
	}
	if c.ChunkByteBudget == 0 {
		c.ChunkByteBudget = fc.ChunkByteBudget
	}
	if c.WorkerCount == 0 {
		c.WorkerCount = fc.WorkerCount
	}
	return c
}

// WithFile returns a copy of c with any zero-valued fields filled from fc,
// then with spec-defined defaults applied to whatever remains unset. Use
// this to layer "flags > file > defaults" in one call: construct Config
// from flags only (leaving unset fields zero), then call WithFile.
func (c Config) WithFile(fc *FileConfig) Config {
	return c.applyFile(fc).withDefaults()
}
