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

package resolve

import (
	"path"
	"sort"
	"strings"
)

// candidateSuffixes is the fixed probe order for resolving a specifier that
// has no file extension of its own (spec 4.5 step 1).
var candidateSuffixes = []string{
	".ts", ".tsx", ".js", ".jsx", ".py", ".go",
	"/index.ts", "/index.js", "/__init__.py",
}

type importCacheKey struct {
	importerDir string
	specifier   string
}

// ImportResolver resolves an import specifier (as written in source) to a
// normalized repo-relative file path, caching both hits and misses keyed by
// (importerDir, specifier) (spec 4.5 step 4).
type ImportResolver struct {
	fileSet map[string]bool // every normalized file path, for O(1) exact probes
	files   []string        // same set, sorted, for suffix scanning
	cache   map[importCacheKey]resolveOutcome
}

type resolveOutcome struct {
	target string
	ok     bool
}

// NewImportResolver builds the resolver's suffix index from the full set of
// normalized (forward-slash, repo-relative) file paths.
func NewImportResolver(files []string) *ImportResolver {
	r := &ImportResolver{
		fileSet: make(map[string]bool, len(files)),
		files:   make([]string, len(files)),
		cache:   make(map[importCacheKey]resolveOutcome),
	}
	copy(r.files, files)
	for _, f := range files {
		r.fileSet[f] = true
	}
	sort.Strings(r.files)
	return r
}

// Resolve resolves a specifier imported from importerFile. importerFile must
// be one of the normalized paths the resolver was built with.
func (r *ImportResolver) Resolve(importerFile, specifier string) (string, bool) {
	importerDir := path.Dir(importerFile)
	key := importCacheKey{importerDir: importerDir, specifier: specifier}
	if cached, ok := r.cache[key]; ok {
		return cached.target, cached.ok
	}

	target, ok := r.resolveUncached(importerDir, specifier)
	r.cache[key] = resolveOutcome{target: target, ok: ok}
	return target, ok
}

func (r *ImportResolver) resolveUncached(importerDir, specifier string) (string, bool) {
	switch {
	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
		joined := path.Clean(path.Join(importerDir, specifier))
		return r.probe(joined)
	case strings.HasPrefix(specifier, "/"):
		joined := path.Clean(strings.TrimPrefix(specifier, "/"))
		return r.probe(joined)
	default:
		return r.resolveBareSpecifier(specifier)
	}
}

// probe checks the joined path as-is, then with each candidate suffix
// appended, in the fixed order (spec 4.5 step 1).
func (r *ImportResolver) probe(joined string) (string, bool) {
	if r.fileSet[joined] {
		return joined, true
	}
	for _, suffix := range candidateSuffixes {
		candidate := joined + suffix
		if r.fileSet[candidate] {
			return candidate, true
		}
	}
	return "", false
}

// resolveBareSpecifier looks up a bare module specifier (no relative or
// absolute prefix) by suffix match against the normalized file list. A bare
// specifier typically carries a module-path prefix the repo-relative file
// list doesn't ("project/internal/handlers/user" for a module whose root
// package is "project", against a file list rooted at "internal/..."), so
// the match direction is specifier-ends-with-file, tried both against each
// file's full path and with its extension stripped (so "user" matches
// "user.go"). The longest matched string wins, i.e. the shortest unmatched
// specifier prefix (the most specific package, preferring a deeper match
// over a shallow basename-only one); among equally long matches the file
// that sorts first wins, for determinism (spec 4.5 step 3; grounded on
// findPackageByImportPath's HasSuffix(importPath, pkgPath)).
func (r *ImportResolver) resolveBareSpecifier(specifier string) (string, bool) {
	specifier = strings.TrimSuffix(specifier, "/")
	var best string
	var bestCandidate string
	found := false

	consider := func(f, candidate string) {
		if candidate != specifier && !strings.HasSuffix(specifier, "/"+candidate) {
			return
		}
		if !found || len(candidate) > len(bestCandidate) {
			best = f
			bestCandidate = candidate
			found = true
		}
	}

	for _, f := range r.files {
		consider(f, f)
		for _, ext := range candidateSuffixes {
			if trimmed := strings.TrimSuffix(f, ext); trimmed != f {
				consider(f, trimmed)
			}
		}
	}

	return best, found
}
