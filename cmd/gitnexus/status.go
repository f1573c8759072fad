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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	flag "github.com/spf13/pflag"

	"github.com/securityphoenix/gitnexus/internal/bootstrap"
	"github.com/securityphoenix/gitnexus/internal/errors"
	"github.com/securityphoenix/gitnexus/internal/graph"
	"github.com/securityphoenix/gitnexus/internal/output"
	"github.com/securityphoenix/gitnexus/internal/ui"
)

// statusSummary is the JSON-serializable shape of 'gitnexus status' output.
type statusSummary struct {
	ProjectID           string                  `json:"project_id"`
	NodeCount           int                     `json:"node_count"`
	RelationshipCount   int                     `json:"relationship_count"`
	NodesByLabel        map[graph.NodeLabel]int `json:"nodes_by_label"`
	RelationshipsByType map[graph.RelType]int   `json:"relationships_by_type"`
}

// runStatus executes the 'status' CLI command, reporting the last persisted
// graph snapshot's statistics for a project.
func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	projectID := fs.String("project-id", "", "Project identifier (default: current directory name)")
	jsonOutput := fs.Bool("json", false, "Emit the summary as JSON")
	noColor := fs.Bool("no-color", false, "Disable colored output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: gitnexus status [options]

Shows statistics for the last graph snapshot persisted by 'gitnexus index'.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ui.InitColors(*noColor)

	pid := *projectID
	if pid == "" {
		cwd, err := os.Getwd()
		if err != nil {
			errors.FatalError(errors.NewInternalError("cannot get current directory", err.Error(), "pass --project-id explicitly", err), *jsonOutput)
		}
		pid = filepath.Base(cwd)
	}

	snap, err := bootstrap.OpenProject(bootstrap.ProjectConfig{ProjectID: pid}, slog.Default())
	if err != nil {
		errors.FatalError(errors.NewNotFoundError("no graph found for project", err.Error(), "run 'gitnexus index' first"), *jsonOutput)
	}

	summary := summarize(pid, snap)

	if *jsonOutput {
		_ = output.JSON(summary)
		return
	}

	printStatus(summary)
}

func summarize(projectID string, snap *graph.Snapshot) statusSummary {
	byLabel := make(map[graph.NodeLabel]int)
	for _, n := range snap.Nodes() {
		byLabel[n.Label]++
	}
	byType := make(map[graph.RelType]int)
	for _, r := range snap.Relationships() {
		byType[r.Type]++
	}
	return statusSummary{
		ProjectID:           projectID,
		NodeCount:           snap.NodeCount(),
		RelationshipCount:   snap.RelationshipCount(),
		NodesByLabel:        byLabel,
		RelationshipsByType: byType,
	}
}

func printStatus(s statusSummary) {
	fmt.Println()
	ui.Header("Project Status")
	fmt.Printf("%s %s\n", ui.Label("Project ID:"), s.ProjectID)
	fmt.Println()

	nodeTbl := table.NewWriter()
	nodeTbl.SetOutputMirror(os.Stdout)
	nodeTbl.SetStyle(table.StyleLight)
	nodeTbl.AppendHeader(table.Row{"Node Label", "Count"})
	for label, count := range s.NodesByLabel {
		nodeTbl.AppendRow(table.Row{label, humanize.Comma(int64(count))})
	}
	nodeTbl.AppendSeparator()
	nodeTbl.AppendRow(table.Row{"Total", humanize.Comma(int64(s.NodeCount))})
	nodeTbl.Render()

	fmt.Println()

	relTbl := table.NewWriter()
	relTbl.SetOutputMirror(os.Stdout)
	relTbl.SetStyle(table.StyleLight)
	relTbl.AppendHeader(table.Row{"Relationship Type", "Count"})
	for relType, count := range s.RelationshipsByType {
		relTbl.AppendRow(table.Row{relType, humanize.Comma(int64(count))})
	}
	relTbl.AppendSeparator()
	relTbl.AppendRow(table.Row{"Total", humanize.Comma(int64(s.RelationshipCount))})
	relTbl.Render()
	fmt.Println()
}
