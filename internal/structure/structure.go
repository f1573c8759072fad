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

// Package structure implements the Structure Processor (spec 4.2): it turns
// a flat list of file paths into Folder/File nodes joined by CONTAINS edges.
package structure

import (
	"path"
	"sort"
	"strings"

	"github.com/securityphoenix/gitnexus/internal/graph"
	"github.com/securityphoenix/gitnexus/internal/scan"
)

// Normalize applies the path normalisation rule from spec 4.2: backslashes
// to forward slashes, no trailing slash, no leading "./".
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimSuffix(p, "/")
	return p
}

// Result is the output of Process: the File node id for every input path,
// keyed by its normalised relative path, so later phases (Parse, Resolve)
// can look up the owning File node without re-deriving ids.
type Result struct {
	FileNodeID map[string]string
}

// Process builds Folder/File nodes and CONTAINS edges for every scanned file
// and inserts them into snap. A synthetic root Folder (path ".") is the
// single forest root, satisfying invariant 3 (CONTAINS is a forest).
func Process(snap *graph.Snapshot, files []scan.ScannedFile) Result {
	res := Result{FileNodeID: make(map[string]string, len(files))}

	folderIDs := make(map[string]string)
	ensureFolder := func(dir string) string {
		dir = Normalize(dir)
		if dir == "" {
			dir = "."
		}
		if id, ok := folderIDs[dir]; ok {
			return id
		}
		name := path.Base(dir)
		if dir == "." {
			name = "."
		}
		id := graph.DeriveNodeID(graph.LabelFolder, dir, name)
		snap.AddNode(&graph.Node{
			ID:       id,
			Label:    graph.LabelFolder,
			Name:     name,
			FilePath: dir,
		})
		folderIDs[dir] = id
		return id
	}

	link := func(parentDir, parentID, childDir, childID string) {
		if parentDir == childDir {
			return
		}
		relID := graph.DeriveRelID(graph.RelContains, parentID, childID, graph.ReasonStructuralContains)
		_ = snap.AddRelationship(&graph.Relationship{
			ID:         relID,
			SourceID:   parentID,
			TargetID:   childID,
			Type:       graph.RelContains,
			Confidence: 1.0,
			Reason:     graph.ReasonStructuralContains,
		})
	}

	// linkAncestry ensures every ancestor directory of dir exists and is
	// CONTAINS-linked to its own parent, up to the synthetic root.
	var linkAncestry func(dir string) string
	linkAncestry = func(dir string) string {
		dir = Normalize(dir)
		if dir == "" {
			dir = "."
		}
		id := ensureFolder(dir)
		if dir == "." {
			return id
		}
		parent := path.Dir(dir)
		if parent == "." || parent == "/" {
			parent = "."
		}
		parentID := linkAncestry(parent)
		link(parent, parentID, dir, id)
		return id
	}

	sorted := make([]scan.ScannedFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RelPath < sorted[j].RelPath })

	for _, f := range sorted {
		rel := Normalize(f.RelPath)
		dir := path.Dir(rel)
		if dir == "." || dir == "/" {
			dir = "."
		}
		dirID := linkAncestry(dir)

		name := path.Base(rel)
		fileID := graph.DeriveNodeID(graph.LabelFile, rel, name)
		snap.AddNode(&graph.Node{
			ID:       fileID,
			Label:    graph.LabelFile,
			Name:     name,
			FilePath: rel,
			Language: string(f.Language),
		})
		link(dir, dirID, rel, fileID)
		res.FileNodeID[rel] = fileID
	}

	return res
}
