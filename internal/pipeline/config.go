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

// Package pipeline wires the Scan, Structure, Chunk, Parse, Resolve,
// Community, and Process phases into a single sequential run (spec section
// 5: "The orchestrator is single-threaded and cooperative; it drives phases
// sequentially").
//
// Grounded on pkg/ingestion/local_pipeline.go's LocalPipeline: the same
// Config/IngestionResult split, the same generateRunID sha256 scheme, and
// the same structured slog.Logger call-at-each-step style, reshaped around
// this repo's phases instead of parse -> embed -> write-to-storage.
package pipeline

import (
	"log/slog"

	"github.com/securityphoenix/gitnexus/internal/chunk"
	"github.com/securityphoenix/gitnexus/internal/community"
	"github.com/securityphoenix/gitnexus/internal/parse"
	"github.com/securityphoenix/gitnexus/internal/process"
	"github.com/securityphoenix/gitnexus/internal/scan"
)

// Config configures a single ingestion run (spec section 6's "Recognised
// options"). Callers typically populate it from command-line flags, then
// call WithFile to layer in a YAML config file before the New/withDefaults
// steps fill in anything still unset (flags > file > defaults).
type Config struct {
	// ProjectID identifies the project for run-id correlation; it does not
	// need to be globally unique, only stable across re-runs of the same
	// project.
	ProjectID string

	// RepoRoot is the filesystem path to walk.
	RepoRoot string

	ExtraIgnoreGlobs []string
	MaxFileSizeBytes int64

	ChunkByteBudget int64

	WorkerCount      int
	SubBatchSize     int
	SubBatchTimeout  int64 // milliseconds
	ASTCacheCapacity int

	Community community.Config
	Process   process.Config

	Logger *slog.Logger
}

// withDefaults fills zero-valued fields with spec section 6's defaults,
// mirroring scan.Config/parse.PoolConfig's own withDefaults pattern rather
// than introducing a new convention.
func (c Config) withDefaults() Config {
	if c.ChunkByteBudget <= 0 {
		c.ChunkByteBudget = chunk.DefaultByteBudget
	}
	if c.MaxFileSizeBytes <= 0 {
		c.MaxFileSizeBytes = scan.DefaultMaxFileSizeBytes
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = parse.WorkerCount()
	}
	if c.SubBatchSize <= 0 {
		c.SubBatchSize = parse.DefaultSubBatchSize
	}
	if c.ASTCacheCapacity <= 0 {
		c.ASTCacheCapacity = parse.DefaultASTCacheCapacity
	}
	if c.Community.MaxIterations <= 0 {
		c.Community = community.DefaultConfig()
	}
	if c.Process.MaxDepth <= 0 {
		c.Process = process.DefaultConfig()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
