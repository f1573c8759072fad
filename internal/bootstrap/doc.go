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

// Package bootstrap handles project working-directory setup and graph
// snapshot persistence.
//
// This internal package manages the local, per-project directory where a
// project's graph.Snapshot is written after an ingestion run and read back
// from for later commands (status).
//
// # Initialization Workflow
//
// A typical workflow for setting up a new project:
//
//	info, err := bootstrap.InitProject(bootstrap.ProjectConfig{
//	    ProjectID: "myproject",
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Project initialized at: %s\n", info.DataDir)
//
//	// After a pipeline run, persist the resulting snapshot:
//	if err := bootstrap.SaveSnapshot(info.SnapshotPath, snap); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Later, open the project to read the snapshot back:
//	snap, err := bootstrap.OpenProject(bootstrap.ProjectConfig{
//	    ProjectID: "myproject",
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Idempotency
//
// InitProject is idempotent: calling it multiple times on the same project
// is safe and will not corrupt an existing snapshot. This makes it suitable
// for use in scripts and automated workflows.
//
// # Configuration
//
// ProjectConfig controls where a project's snapshot lives:
//
//   - ProjectID: Required. Logical identifier for the project.
//   - DataDir: Optional. Where to store the snapshot. Defaults to
//     ~/.gitnexus/data/<project_id>.
//
// # Project Discovery
//
// List existing projects in the default data directory:
//
//	projects, err := bootstrap.ListProjects()
//	for _, id := range projects {
//	    fmt.Println(id)
//	}
package bootstrap
