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

import "time"

// IngestionResult summarizes a completed run (spec 4's final graph plus the
// supplemented observability statistics of SPEC_FULL section 12).
//
// Grounded on pkg/ingestion/local_pipeline.go's IngestionResult, trimmed of
// its storage/embedding fields and extended with this pipeline's own
// community/process/error-taxonomy counters.
type IngestionResult struct {
	ProjectID string
	RunID     string

	FilesScanned  int
	FilesIgnored  int
	FilesOversize int
	ChunksPlanned int

	DefinitionsExtracted int
	ImportsExtracted     int
	CallsResolved        int
	CallsUnresolved       int
	HeritageResolved      int
	ParseFailures         int
	TimedOutSubBatches    int

	CommunitiesFound int
	ProcessesFound   int

	// DeadSymbolCount is the supplemented dead-symbol observability metric
	// (SPEC_FULL section 12): Function, Method, Class and Interface nodes
	// with zero in-degree and zero out-degree under CALLS. CONTAINS
	// reachability is not considered.
	DeadSymbolCount int

	// CrossCommunityCallRatio is the fraction of resolved CALLS edges whose
	// endpoints fall in different communities (SPEC_FULL section 12).
	CrossCommunityCallRatio float64

	// CrossCommunityProcessCount counts Processes crossing >= 2 communities
	// (spec 4.9).
	CrossCommunityProcessCount int

	NonFatalErrorCount int

	NodeCount         int
	RelationshipCount int

	ScanDuration      time.Duration
	StructureDuration time.Duration
	ParseDuration     time.Duration
	ResolveDuration   time.Duration
	CommunityDuration time.Duration
	ProcessDuration   time.Duration
	TotalDuration     time.Duration
}
