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

// Package chunk implements the Chunk Planner (spec 4.3): parseable files are
// grouped into byte-budgeted chunks with a greedy first-fit algorithm so that
// per-chunk peak memory is bounded regardless of repository size.
package chunk

import "github.com/securityphoenix/gitnexus/internal/scan"

// DefaultByteBudget is the default per-chunk source-byte cap (20 MiB).
const DefaultByteBudget int64 = 20 << 20

// Chunk is a byte-budgeted group of files to be read, parsed, and resolved
// together before being released.
type Chunk struct {
	Files     []scan.ScannedFile
	TotalBytes int64
}

// Plan groups parseable files (those with a known Language) into chunks
// using greedy first-fit: append files until the next file would exceed the
// budget, then close the chunk. A single file at or above the budget forms
// its own chunk. Files are consumed in the order given — callers should pass
// an already-deterministically-sorted slice (scan.Scanner.Walk does this).
func Plan(files []scan.ScannedFile, byteBudget int64) []Chunk {
	if byteBudget <= 0 {
		byteBudget = DefaultByteBudget
	}

	var chunks []Chunk
	var current Chunk

	flush := func() {
		if len(current.Files) > 0 {
			chunks = append(chunks, current)
			current = Chunk{}
		}
	}

	for _, f := range files {
		if f.Language == scan.LanguageUnknown {
			continue
		}
		if f.SizeBytes >= byteBudget {
			flush()
			chunks = append(chunks, Chunk{Files: []scan.ScannedFile{f}, TotalBytes: f.SizeBytes})
			continue
		}
		if current.TotalBytes+f.SizeBytes > byteBudget {
			flush()
		}
		current.Files = append(current.Files, f)
		current.TotalBytes += f.SizeBytes
	}
	flush()

	return chunks
}
