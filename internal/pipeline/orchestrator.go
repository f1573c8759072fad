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
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/securityphoenix/gitnexus/internal/chunk"
	"github.com/securityphoenix/gitnexus/internal/community"
	"github.com/securityphoenix/gitnexus/internal/graph"
	"github.com/securityphoenix/gitnexus/internal/metrics"
	"github.com/securityphoenix/gitnexus/internal/parse"
	"github.com/securityphoenix/gitnexus/internal/pipelineerr"
	"github.com/securityphoenix/gitnexus/internal/process"
	"github.com/securityphoenix/gitnexus/internal/resolve"
	"github.com/securityphoenix/gitnexus/internal/scan"
	"github.com/securityphoenix/gitnexus/internal/structure"
)

// Pipeline orchestrates a single ingestion run end to end.
type Pipeline struct {
	config  Config
	metrics *metrics.Registry
}

// New constructs a Pipeline from Config, filling in every zero-valued
// field with spec section 6's defaults.
func New(cfg Config) *Pipeline {
	return &Pipeline{config: cfg.withDefaults(), metrics: metrics.New()}
}

// Metrics exposes the run's Prometheus registry so a caller can scrape it
// independently of the returned IngestionResult.
func (p *Pipeline) Metrics() *metrics.Registry {
	return p.metrics
}

// Run executes Scan -> Structure -> Chunk -> Parse -> Resolve -> Community
// -> Process sequentially over a fresh graph.Snapshot (spec section 5:
// "single-threaded and cooperative; it drives phases sequentially").
// progressCh may be nil; if non-nil it is sent to from this goroutine only
// and never closed (the caller owns its lifecycle).
func (p *Pipeline) Run(ctx context.Context, progressCh chan<- Event) (*graph.Snapshot, *IngestionResult, error) {
	cfg := p.config
	startTime := time.Now()
	runID := generateRunID(cfg.ProjectID, startTime)
	traceID := uuid.NewString()
	cfg.Logger.Info("pipeline.start", "project_id", cfg.ProjectID, "run_id", runID, "trace_id", traceID)

	snap := graph.NewSnapshot()
	errCounter := pipelineerr.NewCounter()
	result := &IngestionResult{ProjectID: cfg.ProjectID, RunID: runID}

	// --- Scan ---
	emit(progressCh, Event{Phase: PhaseScan, Percent: 0, Message: "walking repository"})
	scanStart := time.Now()
	scanner := scan.New(scan.Config{
		ExtraIgnoreGlobs: cfg.ExtraIgnoreGlobs,
		MaxFileSizeBytes: cfg.MaxFileSizeBytes,
		Logger:           cfg.Logger,
	})
	files, scanStats, err := scanner.Walk(ctx, cfg.RepoRoot, nil)
	if err != nil {
		return nil, nil, pipelineerr.Fatal("scan", "walk failed", err)
	}
	result.ScanDuration = time.Since(scanStart)
	result.FilesScanned = scanStats.FilesKept
	result.FilesIgnored = scanStats.FilesIgnored
	result.FilesOversize = scanStats.FilesOversize
	p.metrics.ObserveScan(scanStats.FilesKept, scanStats.FilesIgnored, scanStats.FilesOversize)
	emit(progressCh, Event{Phase: PhaseScan, Percent: 100, Message: "scan complete", Stats: map[string]int{
		"files_kept": scanStats.FilesKept, "files_ignored": scanStats.FilesIgnored, "files_oversize": scanStats.FilesOversize,
	}})
	cfg.Logger.Info("pipeline.scan.complete", "run_id", runID, "files_kept", scanStats.FilesKept)

	if ctx.Err() != nil {
		return nil, nil, pipelineerr.Fatal("scan", "cancelled", ctx.Err())
	}

	// --- Structure ---
	emit(progressCh, Event{Phase: PhaseStructure, Percent: 0, Message: "building folder/file tree"})
	structStart := time.Now()
	structResult := structure.Process(snap, files)
	result.StructureDuration = time.Since(structStart)
	emit(progressCh, Event{Phase: PhaseStructure, Percent: 100, Message: "structure complete"})

	// --- Chunk planning ---
	chunks := chunk.Plan(files, cfg.ChunkByteBudget)
	result.ChunksPlanned = len(chunks)
	p.metrics.ObserveChunksPlanned(len(chunks))

	// The Import Resolver's suffix index only needs the full set of
	// normalized file paths, which Scan already produced in full — it does
	// not need file content, so it is built once up front rather than
	// incrementally per chunk.
	allPaths := make([]string, 0, len(files))
	for _, f := range files {
		allPaths = append(allPaths, structure.Normalize(f.RelPath))
	}
	importResolver := resolve.NewImportResolver(allPaths)
	symbolTable := resolve.NewSymbolTable()
	importMap := resolve.NewImportMap()
	callResolver := resolve.NewCallResolver(symbolTable, importMap)
	heritageResolver := resolve.NewHeritageResolver(callResolver)

	// --- Parse + Resolve, chunk by chunk ---
	parseStart := time.Now()
	poolCfg := parse.PoolConfig{
		WorkerCount:      cfg.WorkerCount,
		SubBatchSize:     cfg.SubBatchSize,
		SubBatchTimeout:  time.Duration(cfg.SubBatchTimeout) * time.Millisecond,
		ASTCacheCapacity: cfg.ASTCacheCapacity,
		Logger:           cfg.Logger,
	}

	for ci, c := range chunks {
		if ctx.Err() != nil {
			return nil, nil, pipelineerr.Fatal("parse", "cancelled", ctx.Err())
		}

		inputs := make([]parse.FileInput, 0, len(c.Files))
		for _, f := range c.Files {
			content, err := os.ReadFile(f.AbsPath)
			if err != nil {
				pe := pipelineerr.IOTransient("parse", f.RelPath, err)
				errCounter.Record(pe)
				p.metrics.ObserveNonFatalError(string(pipelineerr.KindIOTransient))
				continue
			}
			inputs = append(inputs, parse.FileInput{File: f, Content: content})
		}

		astCache := parse.NewASTCache(cfg.ASTCacheCapacity)
		chunkResult, perr := parse.ParseChunk(ctx, inputs, poolCfg, astCache)
		if perr != nil {
			pe := pipelineerr.WorkerTimeout("parse", perr)
			errCounter.Record(pe)
			p.metrics.ObserveNonFatalError(string(pipelineerr.KindWorkerTimeout))
			cfg.Logger.Warn("pipeline.parse.chunk_failed", "run_id", runID, "chunk", ci, "err", perr)
		}
		if chunkResult == nil {
			astCache.Clear()
			continue
		}
		result.TimedOutSubBatches += chunkResult.TimedOutBatches
		result.ParseFailures += len(chunkResult.ParseFailures)
		p.metrics.ObserveParse(len(chunkResult.ParseFailures), chunkResult.TimedOutBatches)
		for _, fp := range chunkResult.ParseFailures {
			errCounter.Record(pipelineerr.ParseFailure("parse", fp, fmt.Errorf("grammar error")))
		}

		// Pass 1: register every definition and import in this chunk before
		// resolving anything, so intra-chunk resolution sees the whole
		// chunk's symbol set (spec 5's ordering guarantee).
		filePaths := sortedKeys(chunkResult.Records)
		for _, fp := range filePaths {
			rec := chunkResult.Records[fp]
			fileNodeID, ok := structResult.FileNodeID[fp]
			if !ok {
				continue
			}
			registerDefinitions(snap, symbolTable, fp, fileNodeID, rec.Definitions)
			registerImports(snap, importMap, importResolver, structResult, fp, fileNodeID, rec.Imports)
			result.DefinitionsExtracted += len(rec.Definitions)
			result.ImportsExtracted += len(rec.Imports)
		}

		// Pass 2: resolve calls and heritage against the now-complete
		// SymbolTable/ImportMap.
		for _, fp := range filePaths {
			rec := chunkResult.Records[fp]
			fileNodeID, ok := structResult.FileNodeID[fp]
			if !ok {
				continue
			}
			resolveCalls(snap, p.metrics, symbolTable, callResolver, fp, fileNodeID, rec.Calls, &result.CallsResolved, &result.CallsUnresolved)
			resolveHeritage(snap, symbolTable, heritageResolver, fp, rec.Heritage, &result.HeritageResolved)
		}

		astCache.Clear()

		pct := int(float64(ci+1) / float64(len(chunks)) * 100)
		emit(progressCh, Event{Phase: PhaseParse, Percent: pct, Message: fmt.Sprintf("parsed chunk %d/%d", ci+1, len(chunks))})
	}
	result.ParseDuration = time.Since(parseStart)
	emit(progressCh, Event{Phase: PhaseResolve, Percent: 100, Message: "resolution complete"})
	cfg.Logger.Info("pipeline.parse.complete", "run_id", runID,
		"definitions", result.DefinitionsExtracted, "calls_resolved", result.CallsResolved, "parse_failures", result.ParseFailures)

	// --- Community detection ---
	emit(progressCh, Event{Phase: PhaseCommunity, Percent: 0, Message: "detecting communities"})
	communityStart := time.Now()
	communityResults, err := community.Detect(ctx, snap, cfg.Community)
	if err != nil {
		return nil, nil, pipelineerr.Fatal("community", "detection failed", err)
	}
	communityOf, communityNames := applyCommunities(snap, communityResults)
	result.CommunitiesFound = len(communityResults)
	result.CommunityDuration = time.Since(communityStart)
	p.metrics.ObserveCommunities(len(communityResults))
	emit(progressCh, Event{Phase: PhaseCommunity, Percent: 100, Message: "community detection complete",
		Stats: map[string]int{"communities": len(communityResults)}})

	// --- Process detection ---
	emit(progressCh, Event{Phase: PhaseProcess, Percent: 0, Message: "detecting processes"})
	processStart := time.Now()
	processResults, err := process.Detect(ctx, snap, communityOf, communityNames, cfg.Process)
	if err != nil {
		return nil, nil, pipelineerr.Fatal("process", "detection failed", err)
	}
	crossCommunityProcesses := applyProcesses(snap, processResults)
	result.ProcessesFound = len(processResults)
	result.CrossCommunityProcessCount = crossCommunityProcesses
	result.ProcessDuration = time.Since(processStart)
	p.metrics.ObserveProcesses(len(processResults))
	emit(progressCh, Event{Phase: PhaseProcess, Percent: 100, Message: "process detection complete",
		Stats: map[string]int{"processes": len(processResults)}})

	// --- Supplemented observability statistics (SPEC_FULL section 12) ---
	result.DeadSymbolCount = countDeadSymbols(snap)
	result.CrossCommunityCallRatio = crossCommunityCallRatio(snap, communityOf)

	result.NonFatalErrorCount = errCounter.Total()
	result.NodeCount = snap.NodeCount()
	result.RelationshipCount = snap.RelationshipCount()
	result.TotalDuration = time.Since(startTime)

	cfg.Logger.Info("pipeline.complete", "run_id", runID,
		"nodes", result.NodeCount, "relationships", result.RelationshipCount,
		"non_fatal_errors", result.NonFatalErrorCount, "duration_ms", result.TotalDuration.Milliseconds())

	return snap, result, nil
}

func sortedKeys(m map[string]*parse.ExtractedRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
