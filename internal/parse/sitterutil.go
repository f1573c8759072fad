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

import sitter "github.com/smacker/go-tree-sitter"

// nodeText returns the source text spanned by n.
func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

// startLine returns the 1-indexed line a node starts on.
func startLine(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// endLine returns the 1-indexed line a node ends on.
func endLine(n *sitter.Node) int {
	return int(n.EndPoint().Row) + 1
}

// isExportedGoName applies Go's export convention (leading uppercase).
// Python names use isExportedPythonName below, where by convention a
// leading underscore marks "private".
func isExportedGoName(name string) bool {
	if name == "" {
		return false
	}
	r := name[0]
	return r >= 'A' && r <= 'Z'
}

func isExportedPythonName(name string) bool {
	if name == "" {
		return false
	}
	return name[0] != '_'
}

// enclosingStack tracks the innermost named definition currently being
// walked, so call sites can be attributed per spec 4.4's "enclosing-function
// resolution".
type enclosingStack struct {
	names []string
}

func (s *enclosingStack) push(name string) { s.names = append(s.names, name) }
func (s *enclosingStack) pop()             { s.names = s.names[:len(s.names)-1] }
func (s *enclosingStack) current() string {
	if len(s.names) == 0 {
		return ""
	}
	return s.names[len(s.names)-1]
}

// walkChildren calls fn for every child of n (named and anonymous).
func walkChildren(n *sitter.Node, fn func(*sitter.Node)) {
	for i := 0; i < int(n.ChildCount()); i++ {
		fn(n.Child(i))
	}
}
