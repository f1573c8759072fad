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
	"container/list"
	"sync"

	"github.com/cespare/xxhash/v2"
	sitter "github.com/smacker/go-tree-sitter"
)

// DefaultASTCacheCapacity is the default LRU size for retained syntax trees
// (spec section 6: ast_cache_capacity).
const DefaultASTCacheCapacity = 50

// astCacheKey identifies a cached tree by file path plus a fast, non-
// cryptographic content fingerprint, so a cache hit only occurs if the bytes
// last parsed for this path are the same bytes being asked about now.
type astCacheKey struct {
	path string
	hash uint64
}

type astCacheEntry struct {
	key  astCacheKey
	tree *sitter.Tree
}

// ASTCache is a bounded LRU of parsed syntax trees, scoped to a single chunk
// (spec 3: "Per-chunk in the chunked pipeline; cleared between chunks").
// Eviction always calls Tree.Close() so native tree-sitter memory is
// released deterministically rather than waiting on the Go GC finalizer.
type ASTCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	index    map[astCacheKey]*list.Element
}

// NewASTCache constructs an ASTCache with the given capacity (<=0 uses the
// default).
func NewASTCache(capacity int) *ASTCache {
	if capacity <= 0 {
		capacity = DefaultASTCacheCapacity
	}
	return &ASTCache{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[astCacheKey]*list.Element),
	}
}

// FingerprintContent computes the cache-key fingerprint for a file's bytes.
func FingerprintContent(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// Get returns the cached tree for (path, content), if present, promoting it
// to most-recently-used.
func (c *ASTCache) Get(path string, contentHash uint64) (*sitter.Tree, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := astCacheKey{path: path, hash: contentHash}
	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*astCacheEntry).tree, true
}

// Put inserts a tree into the cache, evicting the least-recently-used entry
// (calling Close on its tree) if the cache is at capacity.
func (c *ASTCache) Put(path string, contentHash uint64, tree *sitter.Tree) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := astCacheKey{path: path, hash: contentHash}
	if el, ok := c.index[key]; ok {
		el.Value.(*astCacheEntry).tree.Close()
		el.Value = &astCacheEntry{key: key, tree: tree}
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&astCacheEntry{key: key, tree: tree})
	c.index[key] = el
	for c.ll.Len() > c.capacity {
		c.evictOldestLocked()
	}
}

func (c *ASTCache) evictOldestLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	entry := el.Value.(*astCacheEntry)
	entry.tree.Close()
	delete(c.index, entry.key)
	c.ll.Remove(el)
}

// Clear releases every cached tree. Called between chunks (spec 3).
func (c *ASTCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for el := c.ll.Front(); el != nil; el = el.Next() {
		el.Value.(*astCacheEntry).tree.Close()
	}
	c.ll.Init()
	c.index = make(map[astCacheKey]*list.Element)
}

// Len reports the current number of cached trees.
func (c *ASTCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
