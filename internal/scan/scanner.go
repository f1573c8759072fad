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

// Package scan implements the Scanner (spec 4.1): it walks a repository root,
// applies an ignore policy and a size cap, and reports stat-only results —
// no file content is read here.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxFileSizeBytes is the size cap above which a file is skipped
// entirely (spec section 6 configuration: max_file_size_bytes).
const DefaultMaxFileSizeBytes = 512 << 10

// DefaultIgnoreGlobs is the built-in ignore policy: dependency directories,
// build outputs, VCS metadata, and binary artefacts. Configurable at
// construction by appending to Config.ExtraIgnoreGlobs.
var DefaultIgnoreGlobs = []string{
	"**/.git/**",
	"**/.hg/**",
	"**/.svn/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/.venv/**",
	"**/venv/**",
	"**/__pycache__/**",
	"**/.mypy_cache/**",
	"**/.pytest_cache/**",
	"**/dist/**",
	"**/build/**",
	"**/target/**",
	"**/out/**",
	"**/bin/**",
	"**/obj/**",
	"**/.next/**",
	"**/.cache/**",
	"**/coverage/**",
	"**/*.min.js",
	"**/*.map",
	"**/*.lock",
	"**/*.exe",
	"**/*.dll",
	"**/*.so",
	"**/*.dylib",
	"**/*.a",
	"**/*.o",
	"**/*.class",
	"**/*.jar",
	"**/*.zip",
	"**/*.tar",
	"**/*.tar.gz",
	"**/*.png",
	"**/*.jpg",
	"**/*.jpeg",
	"**/*.gif",
	"**/*.ico",
	"**/*.pdf",
	"**/*.woff",
	"**/*.woff2",
}

// Language is the closed set of languages the Parser-Extractor understands.
type Language string

const (
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageTypeScript Language = "typescript"
	LanguageJavaScript Language = "javascript"
	LanguageUnknown    Language = ""
)

// extensionLanguage maps file extensions to languages (spec 4.4 step 1:
// "closed map ... extensible").
var extensionLanguage = map[string]Language{
	".go":  LanguageGo,
	".py":  LanguagePython,
	".ts":  LanguageTypeScript,
	".tsx": LanguageTypeScript,
	".js":  LanguageJavaScript,
	".jsx": LanguageJavaScript,
	".mjs": LanguageJavaScript,
	".cjs": LanguageJavaScript,
}

// LanguageFor implements the consumed `language_for(path)` interface
// (spec section 6): language inferred purely from extension.
func LanguageFor(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensionLanguage[ext]; ok {
		return lang
	}
	return LanguageUnknown
}

// ScannedFile is a single file the Scanner decided to keep.
type ScannedFile struct {
	RelPath  string
	AbsPath  string
	SizeBytes int64
	Language Language
}

// Stats summarizes a completed scan for progress/observability purposes.
type Stats struct {
	FilesWalked     int
	FilesKept       int
	FilesIgnored    int
	FilesOversize   int
	FilesStatFailed int
}

// Progress is emitted during the walk: (current, path). The total is not
// known up front (it's a streaming walk), so Current counts files walked so
// far and no final count is reported.
type Progress struct {
	Current int
	Path    string
}

// Config configures a Scanner.
type Config struct {
	// ExtraIgnoreGlobs are appended to DefaultIgnoreGlobs. Patterns use
	// doublestar syntax (`**`, `*`, `?`, character classes) matched against
	// the path relative to the repo root, forward-slash separated.
	ExtraIgnoreGlobs []string

	// MaxFileSizeBytes caps individual file size; files at or above this are
	// skipped and counted. Zero means DefaultMaxFileSizeBytes.
	MaxFileSizeBytes int64

	Logger *slog.Logger
}

// Scanner walks a repository root applying the ignore policy and size cap.
type Scanner struct {
	ignoreGlobs []string
	maxSize     int64
	logger      *slog.Logger
}

// New constructs a Scanner from Config, filling in defaults.
func New(cfg Config) *Scanner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxSize := cfg.MaxFileSizeBytes
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSizeBytes
	}
	globs := make([]string, 0, len(DefaultIgnoreGlobs)+len(cfg.ExtraIgnoreGlobs))
	globs = append(globs, DefaultIgnoreGlobs...)
	globs = append(globs, cfg.ExtraIgnoreGlobs...)
	return &Scanner{ignoreGlobs: globs, maxSize: maxSize, logger: logger}
}

// IgnorePolicy implements the consumed `ignore_policy(path)` interface
// (spec section 6): rules are fixed at construction and repository-global.
func (s *Scanner) IgnorePolicy(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range s.ignoreGlobs {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

// Walk implements the consumed `walk_paths(root)` interface (spec section 6)
// plus the size cap and progress reporting of spec 4.1. Entries are returned
// sorted by relative path for deterministic downstream chunking.
func (s *Scanner) Walk(ctx context.Context, root string, progress chan<- Progress) ([]ScannedFile, Stats, error) {
	var stats Stats
	var files []ScannedFile

	rootInfo, err := filepath.Abs(root)
	if err != nil {
		return nil, stats, fmt.Errorf("resolve repo root: %w", err)
	}
	root = rootInfo

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return fmt.Errorf("scan root %s: %w", root, err)
			}
			s.logger.Warn("scan.stat.failed", "path", path, "err", err)
			stats.FilesStatFailed++
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if s.IgnorePolicy(rel + "/") {
				// A pruned directory counts once, as a single ignored entry.
				stats.FilesIgnored++
				return filepath.SkipDir
			}
			return nil
		}

		stats.FilesWalked++
		if progress != nil {
			select {
			case progress <- Progress{Current: stats.FilesWalked, Path: rel}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if s.IgnorePolicy(rel) {
			stats.FilesIgnored++
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			s.logger.Warn("scan.stat.failed", "path", rel, "err", infoErr)
			stats.FilesStatFailed++
			return nil
		}

		if info.Size() >= s.maxSize {
			stats.FilesOversize++
			return nil
		}

		files = append(files, ScannedFile{
			RelPath:   rel,
			AbsPath:   path,
			SizeBytes: info.Size(),
			Language:  LanguageFor(rel),
		})
		stats.FilesKept++
		return nil
	})

	if walkErr != nil {
		return nil, stats, fmt.Errorf("walk repository: %w", walkErr)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })

	return files, stats, nil
}
