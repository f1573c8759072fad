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
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/securityphoenix/gitnexus/internal/bootstrap"
	"github.com/securityphoenix/gitnexus/internal/contract"
	"github.com/securityphoenix/gitnexus/internal/errors"
	"github.com/securityphoenix/gitnexus/internal/output"
	"github.com/securityphoenix/gitnexus/internal/pipeline"
	"github.com/securityphoenix/gitnexus/internal/ui"
)

// runIndex executes the 'index' CLI command: it walks a repository, builds
// its code knowledge graph, and persists the result to the project's local
// working directory.
//
// Flags:
//   - --project-id: project identifier (default: current directory's name)
//   - --repo: repository path to index (default: current directory)
//   - --json: emit the result summary as JSON instead of a table
//   - --quiet: suppress the progress bar
//   - --no-color: disable colored output
//   - --debug: enable debug logging
//   - --metrics-addr: HTTP listen address for Prometheus metrics (empty to disable)
func runIndex(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	projectID := fs.String("project-id", "", "Project identifier (default: repository directory name)")
	repoPath := fs.String("repo", "", "Repository path to index (default: current directory)")
	jsonOutput := fs.Bool("json", false, "Emit the result summary as JSON")
	quiet := fs.Bool("quiet", false, "Suppress the progress bar")
	noColor := fs.Bool("no-color", false, "Disable colored output")
	debug := fs.Bool("debug", false, "Enable debug logging")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	configPath := fs.String("config", "", "Path to a YAML config file (default: ~/.gitnexus/config.yaml)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: gitnexus index [options]

Walks a repository, builds its code knowledge graph, and writes it to
~/.gitnexus/data/<project_id>/graph.json

Settings are layered flags > config file > built-in defaults.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ui.InitColors(*noColor)

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	fileCfg := loadConfigFile(*configPath, logger, *jsonOutput)

	cfg := pipeline.Config{ProjectID: *projectID, RepoRoot: *repoPath, Logger: logger}
	cfg = cfg.WithFile(fileCfg)

	if cfg.RepoRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			errors.FatalError(errors.NewInternalError("cannot get current directory", err.Error(), "pass --repo explicitly", err), *jsonOutput)
		}
		cfg.RepoRoot = cwd
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = filepath.Base(cfg.RepoRoot)
	}
	pid := cfg.ProjectID
	if result := contract.ValidateProjectID(pid); !result.OK {
		errors.FatalError(errors.NewInputError("invalid project id", result.Message, "pass --project-id with a shorter, non-empty identifier"), *jsonOutput)
	}

	p := pipeline.New(cfg)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(p.Metrics().Gatherer(), promhttp.HandlerOpts{}))
			srv := &http.Server{Addr: *metricsAddr, Handler: mux}
			logger.Info("metrics.http.start", "addr", *metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	progressCfg := NewProgressConfig(*jsonOutput, *quiet, *noColor)
	events := make(chan pipeline.Event, 64)
	done := make(chan struct{})
	go func() {
		drainProgress(progressCfg, events)
		close(done)
	}()

	snap, result, err := p.Run(ctx, events)
	close(events)
	<-done

	if err != nil {
		errors.FatalError(errors.NewInternalError("indexing failed", err.Error(), "re-run with --debug for detail", err), *jsonOutput)
	}

	if sizeCheck := contract.ValidateSnapshotSize(snap); !sizeCheck.OK {
		ui.Warning(sizeCheck.Message)
	}

	info, err := bootstrap.InitProject(bootstrap.ProjectConfig{ProjectID: pid}, logger)
	if err != nil {
		errors.FatalError(errors.NewPermissionError("cannot create project data directory", err.Error(), "check filesystem permissions", err), *jsonOutput)
	}
	if err := bootstrap.SaveSnapshot(info.SnapshotPath, snap); err != nil {
		errors.FatalError(errors.NewPermissionError("cannot write graph snapshot", err.Error(), "check filesystem permissions", err), *jsonOutput)
	}

	if *jsonOutput {
		_ = output.JSON(result)
		return
	}

	printResult(result, info.SnapshotPath)
}

// loadConfigFile resolves the config file path (explicit flag, else
// ~/.gitnexus/config.yaml) and loads it. A missing file at the default path
// is not an error: the CLI falls back to flags and built-in defaults. An
// explicitly requested file that cannot be read or parsed is fatal, since
// the user asked for it by name.
func loadConfigFile(explicitPath string, logger *slog.Logger, jsonOutput bool) *pipeline.FileConfig {
	path := explicitPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".gitnexus", "config.yaml")
	}

	fc, err := pipeline.LoadConfigFile(path)
	if err != nil {
		if explicitPath != "" {
			errors.FatalError(errors.NewConfigError("cannot load config file", err.Error(), "check the --config path, or omit it to use built-in defaults", err), jsonOutput)
		}
		return nil
	}
	logger.Debug("config.load.ok", "path", path)
	return fc
}

// printResult renders an IngestionResult as a human-readable table.
func printResult(result *pipeline.IngestionResult, snapshotPath string) {
	fmt.Println()
	ui.Header("Indexing Complete")
	fmt.Printf("%s %s\n", ui.Label("Project ID:"), result.ProjectID)
	fmt.Printf("%s %s\n", ui.Label("Run ID:"), result.RunID)
	fmt.Println()

	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Metric", "Count"})
	tbl.AppendRow(table.Row{"Files scanned", humanize.Comma(int64(result.FilesScanned))})
	tbl.AppendRow(table.Row{"Files ignored", humanize.Comma(int64(result.FilesIgnored))})
	tbl.AppendRow(table.Row{"Chunks planned", humanize.Comma(int64(result.ChunksPlanned))})
	tbl.AppendRow(table.Row{"Definitions extracted", humanize.Comma(int64(result.DefinitionsExtracted))})
	tbl.AppendRow(table.Row{"Imports extracted", humanize.Comma(int64(result.ImportsExtracted))})
	tbl.AppendRow(table.Row{"Calls resolved", humanize.Comma(int64(result.CallsResolved))})
	tbl.AppendRow(table.Row{"Calls unresolved", humanize.Comma(int64(result.CallsUnresolved))})
	tbl.AppendRow(table.Row{"Heritage resolved", humanize.Comma(int64(result.HeritageResolved))})
	tbl.AppendRow(table.Row{"Communities found", humanize.Comma(int64(result.CommunitiesFound))})
	tbl.AppendRow(table.Row{"Processes found", humanize.Comma(int64(result.ProcessesFound))})
	tbl.AppendRow(table.Row{"Cross-community processes", humanize.Comma(int64(result.CrossCommunityProcessCount))})
	tbl.AppendRow(table.Row{"Dead symbols", humanize.Comma(int64(result.DeadSymbolCount))})
	tbl.AppendRow(table.Row{"Cross-community call ratio", fmt.Sprintf("%.2f%%", result.CrossCommunityCallRatio*100)})
	tbl.AppendSeparator()
	tbl.AppendRow(table.Row{"Nodes", humanize.Comma(int64(result.NodeCount))})
	tbl.AppendRow(table.Row{"Relationships", humanize.Comma(int64(result.RelationshipCount))})
	tbl.Render()

	if result.ParseFailures > 0 {
		ui.Warningf("%d files failed to parse", result.ParseFailures)
	}
	if result.NonFatalErrorCount > 0 {
		ui.Warningf("%d non-fatal errors recorded", result.NonFatalErrorCount)
	}

	fmt.Println()
	fmt.Printf("%s %s\n", ui.Label("Total time:"), result.TotalDuration)
	fmt.Printf("%s %s\n", ui.Label("Snapshot:"), ui.DimText(snapshotPath))
	fmt.Println()
}
