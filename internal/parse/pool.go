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

package parse

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/securityphoenix/gitnexus/internal/scan"
)

// DefaultSubBatchSize is the default number of files sent to one worker in
// one message (spec section 6: sub_batch_size).
const DefaultSubBatchSize = 1500

// DefaultSubBatchTimeout is the default per-sub-batch wall-clock deadline
// (spec section 6: sub_batch_timeout_ms).
const DefaultSubBatchTimeout = 30 * time.Second

// WorkerCount returns the default parser-pool size: min(8, max(1, cpus-1))
// (spec 4.4's concurrency invariant).
func WorkerCount() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	if n > 8 {
		n = 8
	}
	return n
}

// sitterLanguage loads the grammar for a file (spec 4.4 step 2: "idempotent").
// TypeScript splits further by extension: .tsx files need the TSX grammar
// variant (it additionally parses JSX syntax embedded in TS), while plain
// .ts files use the stricter typescript grammar.
func sitterLanguage(lang scan.Language, relPath string) *sitter.Language {
	switch lang {
	case scan.LanguageGo:
		return golang.GetLanguage()
	case scan.LanguagePython:
		return python.GetLanguage()
	case scan.LanguageTypeScript:
		if strings.HasSuffix(strings.ToLower(relPath), ".tsx") {
			return tsx.GetLanguage()
		}
		return typescript.GetLanguage()
	case scan.LanguageJavaScript:
		return javascript.GetLanguage()
	default:
		return nil
	}
}

// FileInput is a single file's scanned metadata plus its content, ready to
// be handed to a worker.
type FileInput struct {
	File    scan.ScannedFile
	Content []byte
}

// PoolConfig configures the parser pool.
type PoolConfig struct {
	WorkerCount      int
	SubBatchSize     int
	SubBatchTimeout  time.Duration
	ASTCacheCapacity int
	Logger           *slog.Logger
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.WorkerCount <= 0 {
		c.WorkerCount = WorkerCount()
	}
	if c.SubBatchSize <= 0 {
		c.SubBatchSize = DefaultSubBatchSize
	}
	if c.SubBatchTimeout <= 0 {
		c.SubBatchTimeout = DefaultSubBatchTimeout
	}
	if c.ASTCacheCapacity <= 0 {
		c.ASTCacheCapacity = DefaultASTCacheCapacity
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// ChunkResult is everything the parser pool produced for one chunk.
type ChunkResult struct {
	Records         map[string]*ExtractedRecord // keyed by relative file path
	ParseFailures   []string
	TimedOutBatches int
}

// ErrChunkTimedOut is returned when a sub-batch exceeds its deadline (spec
// section 7: Worker-timeout — "Fail the chunk; propagate to orchestrator").
var ErrChunkTimedOut = fmt.Errorf("parse: sub-batch exceeded timeout")

// ParseChunk parses every file in inputs using a fixed-size worker pool,
// one tree-sitter parser per worker (never shared, spec 4.4's concurrency
// invariant), grouping files into sub-batches bounded by SubBatchSize and
// enforcing SubBatchTimeout per sub-batch. Grounded on local_pipeline.go's
// parseFilesParallel worker-pool idiom (jobs channel, results channel,
// WaitGroup, atomic error counter).
// If cache is non-nil, every successfully parsed tree is retained in it
// (keyed by path + content fingerprint) instead of being closed immediately,
// matching the ASTCache data-model entity's per-chunk lifecycle (spec
// section 3: populated during parsing, cleared by the orchestrator between
// chunks via cache.Clear()). Passing a nil cache closes each tree right
// after extraction, which is all callers that only need ExtractedRecords
// (e.g. tests) require.
func ParseChunk(ctx context.Context, inputs []FileInput, cfg PoolConfig, cache *ASTCache) (*ChunkResult, error) {
	cfg = cfg.withDefaults()

	batches := splitIntoSubBatches(inputs, cfg.SubBatchSize)
	if len(batches) == 0 {
		return &ChunkResult{Records: map[string]*ExtractedRecord{}}, nil
	}

	jobs := make(chan []FileInput, len(batches))
	for _, b := range batches {
		jobs <- b
	}
	close(jobs)

	type workerOutcome struct {
		records   []*ExtractedRecord
		timedOut  bool
	}
	resultsChan := make(chan workerOutcome, len(batches))

	var wg sync.WaitGroup
	var timedOutCount int32

	workers := cfg.WorkerCount
	if workers > len(batches) {
		workers = len(batches)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			parser := sitter.NewParser()
			for batch := range jobs {
				batchCtx, cancel := context.WithTimeout(ctx, cfg.SubBatchTimeout)
				done := make(chan []*ExtractedRecord, 1)
				go func(batch []FileInput, parser *sitter.Parser) {
					out := make([]*ExtractedRecord, 0, len(batch))
					for _, in := range batch {
						if batchCtx.Err() != nil {
							return
						}
						out = append(out, parseOneFile(parser, in, cache))
					}
					done <- out
				}(batch, parser)

				select {
				case recs := <-done:
					resultsChan <- workerOutcome{records: recs}
				case <-batchCtx.Done():
					atomic.AddInt32(&timedOutCount, 1)
					resultsChan <- workerOutcome{timedOut: true}
					// The abandoned goroutine may still be inside ParseCtx
					// with the old parser, so this worker takes a new one.
					parser = sitter.NewParser()
				}
				cancel()
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	result := &ChunkResult{Records: make(map[string]*ExtractedRecord, len(inputs))}
	for outcome := range resultsChan {
		if outcome.timedOut {
			continue
		}
		for _, rec := range outcome.records {
			result.Records[rec.FilePath] = rec
			if rec.ParseFailed {
				result.ParseFailures = append(result.ParseFailures, rec.FilePath)
			}
		}
	}
	result.TimedOutBatches = int(timedOutCount)

	if result.TimedOutBatches > 0 {
		cfg.Logger.Warn("parse.subbatch.timeout", "timed_out_batches", result.TimedOutBatches)
		return result, ErrChunkTimedOut
	}
	return result, nil
}

func splitIntoSubBatches(inputs []FileInput, size int) [][]FileInput {
	var batches [][]FileInput
	for i := 0; i < len(inputs); i += size {
		end := i + size
		if end > len(inputs) {
			end = len(inputs)
		}
		batches = append(batches, inputs[i:end])
	}
	return batches
}

// parseOneFile produces an ExtractedRecord for a single file. Parse
// failures (grammar errors) still yield a record — possibly with zero
// definitions — per spec section 7's Parse-failure policy.
//
// When cache is non-nil the parsed tree is handed to it (Put) rather than
// closed here; the cache takes ownership and will Close it on eviction or
// Clear. When cache is nil the tree is closed immediately after extraction.
func parseOneFile(parser *sitter.Parser, in FileInput, cache *ASTCache) *ExtractedRecord {
	lang := in.File.Language
	sl := sitterLanguage(lang, in.File.RelPath)
	if sl == nil {
		return &ExtractedRecord{FilePath: in.File.RelPath}
	}
	parser.SetLanguage(sl)
	tree, err := parser.ParseCtx(context.Background(), nil, in.Content)
	if err != nil || tree == nil {
		return &ExtractedRecord{FilePath: in.File.RelPath, ParseFailed: true}
	}
	if cache != nil {
		cache.Put(in.File.RelPath, FingerprintContent(in.Content), tree)
	} else {
		defer tree.Close()
	}

	switch lang {
	case scan.LanguageGo:
		return extractGo(tree, in.Content, in.File.RelPath)
	case scan.LanguagePython:
		return extractPython(tree, in.Content, in.File.RelPath)
	case scan.LanguageTypeScript, scan.LanguageJavaScript:
		return extractTSFamily(tree, in.Content, in.File.RelPath)
	default:
		return &ExtractedRecord{FilePath: in.File.RelPath}
	}
}
