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

package bootstrap

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/securityphoenix/gitnexus/internal/graph"
)

// ProjectConfig holds configuration for initializing or opening a project's
// local working directory.
type ProjectConfig struct {
	// ProjectID is the logical project identifier.
	ProjectID string

	// DataDir is the directory where the project's graph snapshot is
	// persisted. Defaults to ~/.gitnexus/data/<project_id>.
	DataDir string
}

// ProjectInfo holds information about an initialized project.
type ProjectInfo struct {
	ProjectID    string
	DataDir      string
	SnapshotPath string
}

func defaultDataDir(projectID string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".gitnexus", "data", projectID), nil
}

// SnapshotPath returns the on-disk path of a project's persisted graph
// snapshot, given its data directory.
func SnapshotPath(dataDir string) string {
	return filepath.Join(dataDir, "graph.json")
}

// InitProject creates a project's local working directory if it doesn't
// already exist. This function is idempotent: calling it multiple times is
// safe.
func InitProject(config ProjectConfig, logger *slog.Logger) (*ProjectInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if config.ProjectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	if config.DataDir == "" {
		dd, err := defaultDataDir(config.ProjectID)
		if err != nil {
			return nil, err
		}
		config.DataDir = dd
	}

	if err := os.MkdirAll(config.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	logger.Info("bootstrap.project.init",
		"project_id", config.ProjectID,
		"data_dir", config.DataDir,
	)

	return &ProjectInfo{
		ProjectID:    config.ProjectID,
		DataDir:      config.DataDir,
		SnapshotPath: SnapshotPath(config.DataDir),
	}, nil
}

// snapshotFile is the on-disk JSON representation of a graph.Snapshot: its
// two exported collections, in the snapshot's own insertion order.
type snapshotFile struct {
	Nodes         []*graph.Node         `json:"nodes"`
	Relationships []*graph.Relationship `json:"relationships"`
}

// SaveSnapshot writes a graph.Snapshot to path as indented JSON.
func SaveSnapshot(path string, snap *graph.Snapshot) error {
	f, err := os.Create(path) //nolint:gosec // G304: path built from project data dir
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	data := snapshotFile{Nodes: snap.Nodes(), Relationships: snap.Relationships()}
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a graph.Snapshot previously written by SaveSnapshot.
// Nodes are replayed before relationships so AddRelationship's
// both-endpoints-exist invariant holds during the rebuild.
func LoadSnapshot(path string) (*graph.Snapshot, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path built from project data dir
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var data snapshotFile
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	snap := graph.NewSnapshot()
	for _, n := range data.Nodes {
		snap.AddNode(n)
	}
	for _, r := range data.Relationships {
		if err := snap.AddRelationship(r); err != nil {
			return nil, fmt.Errorf("rebuild relationship %s: %w", r.ID, err)
		}
	}
	return snap, nil
}

// OpenProject loads an existing project's persisted graph snapshot.
func OpenProject(config ProjectConfig, logger *slog.Logger) (*graph.Snapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if config.ProjectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	if config.DataDir == "" {
		dd, err := defaultDataDir(config.ProjectID)
		if err != nil {
			return nil, err
		}
		config.DataDir = dd
	}

	path := SnapshotPath(config.DataDir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("project not found: %s (run 'gitnexus index' first)", path)
	}

	logger.Debug("bootstrap.project.open",
		"project_id", config.ProjectID,
		"data_dir", config.DataDir,
	)

	return LoadSnapshot(path)
}

// ListProjects returns the project IDs found in the default data directory.
func ListProjects() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}

	dataDir := filepath.Join(homeDir, ".gitnexus", "data")
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}

	return projects, nil
}
