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

package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string, content []byte) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, content, 0o644))
}

func TestScanner_EmptyRepo(t *testing.T) {
	root := t.TempDir()
	s := New(Config{})
	files, stats, err := s.Walk(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Equal(t, 0, stats.FilesKept)
}

func TestScanner_IgnoresVendorAndGit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", []byte("package main"))
	writeFile(t, root, "vendor/pkg/dep.go", []byte("package dep"))
	writeFile(t, root, ".git/HEAD", []byte("ref: refs/heads/main"))
	writeFile(t, root, "node_modules/lib/index.js", []byte("module.exports = {}"))

	s := New(Config{})
	files, stats, err := s.Walk(context.Background(), root, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].RelPath)
	assert.Equal(t, LanguageGo, files[0].Language)
	assert.Greater(t, stats.FilesIgnored, 0)
}

func TestScanner_SkipsOversizeFiles(t *testing.T) {
	root := t.TempDir()
	big := make([]byte, 1024)
	writeFile(t, root, "big.py", big)
	writeFile(t, root, "small.py", []byte("x = 1"))

	s := New(Config{MaxFileSizeBytes: 512})
	files, stats, err := s.Walk(context.Background(), root, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "small.py", files[0].RelPath)
	assert.Equal(t, 1, stats.FilesOversize)
}

func TestScanner_DeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "z.go", []byte("package z"))
	writeFile(t, root, "a.go", []byte("package a"))
	writeFile(t, root, "m.go", []byte("package m"))

	s := New(Config{})
	files, _, err := s.Walk(context.Background(), root, nil)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, []string{"a.go", "m.go", "z.go"}, []string{files[0].RelPath, files[1].RelPath, files[2].RelPath})
}

func TestLanguageFor(t *testing.T) {
	assert.Equal(t, LanguageGo, LanguageFor("a/b/c.go"))
	assert.Equal(t, LanguagePython, LanguageFor("a.py"))
	assert.Equal(t, LanguageTypeScript, LanguageFor("a.tsx"))
	assert.Equal(t, LanguageJavaScript, LanguageFor("a.jsx"))
	assert.Equal(t, LanguageUnknown, LanguageFor("README.md"))
}
