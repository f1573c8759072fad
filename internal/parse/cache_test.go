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
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoTree(t *testing.T, src string) *sitter.Tree {
	t.Helper()
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	require.NoError(t, err)
	return tree
}

func TestASTCache_PutGet(t *testing.T) {
	cache := NewASTCache(2)
	src := "package a\n"
	tree := newGoTree(t, src)
	hash := FingerprintContent([]byte(src))

	cache.Put("a.go", hash, tree)
	got, ok := cache.Get("a.go", hash)
	assert.True(t, ok)
	assert.Same(t, tree, got)
	assert.Equal(t, 1, cache.Len())
}

func TestASTCache_MissOnDifferentHash(t *testing.T) {
	cache := NewASTCache(2)
	tree := newGoTree(t, "package a\n")
	cache.Put("a.go", 1, tree)

	_, ok := cache.Get("a.go", 2)
	assert.False(t, ok)
	cache.Clear()
}

func TestASTCache_EvictsLRU(t *testing.T) {
	cache := NewASTCache(2)
	t1 := newGoTree(t, "package a\n")
	t2 := newGoTree(t, "package b\n")
	t3 := newGoTree(t, "package c\n")

	cache.Put("a.go", 1, t1)
	cache.Put("b.go", 2, t2)
	cache.Put("c.go", 3, t3)

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get("a.go", 1)
	assert.False(t, ok, "oldest entry should have been evicted")

	_, ok = cache.Get("b.go", 2)
	assert.True(t, ok)
	_, ok = cache.Get("c.go", 3)
	assert.True(t, ok)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestASTCache_DefaultCapacity(t *testing.T) {
	cache := NewASTCache(0)
	assert.NotNil(t, cache)
}
