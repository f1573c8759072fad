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
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/securityphoenix/gitnexus/internal/graph"
)

// extractPython walks a Python syntax tree and produces an ExtractedRecord.
// No teacher implementation exists for Python extraction (only its test
// expectations in parser_python_test.go survived retrieval); this is
// authored fresh against the tree-sitter-python grammar, following the same
// dispatch-on-node-type shape as extractGo/extractTSFamily.
func extractPython(tree *sitter.Tree, src []byte, filePath string) *ExtractedRecord {
	rec := &ExtractedRecord{FilePath: filePath}
	root := tree.RootNode()
	if root.HasError() {
		rec.ParseFailed = true
	}

	stack := &enclosingStack{}
	classStack := &enclosingStack{}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			extractPyImportStatement(n, src, rec)
		case "import_from_statement":
			extractPyImportFromStatement(n, src, rec)
		case "class_definition":
			name := nodeText(n.ChildByFieldName("name"), src)
			rec.Definitions = append(rec.Definitions, Definition{
				Label: graph.LabelClass, Name: name,
				StartLine: startLine(n), EndLine: endLine(n),
				IsExported: isExportedPythonName(name),
			})
			extractPySuperclasses(n, src, name, rec)
			classStack.push(name)
			stack.push(name)
			walkChildren(n, walk)
			stack.pop()
			classStack.pop()
			return
		case "function_definition":
			name := nodeText(n.ChildByFieldName("name"), src)
			fullName := name
			label := graph.LabelFunction
			enclosing := ""
			if cls := classStack.current(); cls != "" {
				fullName = cls + "." + name
				label = graph.LabelMethod
				enclosing = cls
			}
			rec.Definitions = append(rec.Definitions, Definition{
				Label: label, Name: fullName,
				StartLine: startLine(n), EndLine: endLine(n),
				IsExported: isExportedPythonName(name),
				Enclosing:  enclosing,
			})
			stack.push(fullName)
			walkChildren(n, walk)
			stack.pop()
			return
		case "lambda":
			stack.push("$lambda_" + strconv.Itoa(startLine(n)))
			walkChildren(n, walk)
			stack.pop()
			return
		case "call":
			calleeName := extractPyCalleeName(n, src)
			if calleeName != "" && !IsNoiseCall(calleeName) {
				rec.Calls = append(rec.Calls, CallSite{
					CalleeName: calleeName,
					Enclosing:  stack.current(),
					Line:       startLine(n),
				})
			}
		}
		walkChildren(n, walk)
	}
	walk(root)
	return rec
}

func extractPySuperclasses(classDef *sitter.Node, src []byte, childName string, rec *ExtractedRecord) {
	superclasses := classDef.ChildByFieldName("superclasses")
	if superclasses == nil {
		return
	}
	walkChildren(superclasses, func(c *sitter.Node) {
		switch c.Type() {
		case "identifier":
			name := nodeText(c, src)
			if name == "object" {
				return
			}
			rec.Heritage = append(rec.Heritage, HeritageClause{
				ChildName: childName, ParentName: name, Kind: HeritageExtends, Line: startLine(c),
			})
		case "attribute":
			attr := c.ChildByFieldName("attribute")
			name := nodeText(attr, src)
			rec.Heritage = append(rec.Heritage, HeritageClause{
				ChildName: childName, ParentName: name, Kind: HeritageExtends, Line: startLine(c),
			})
		case "keyword_argument":
			// e.g. `metaclass=ABCMeta` — not an inheritance relationship.
		}
	})
}

func extractPyImportStatement(n *sitter.Node, src []byte, rec *ExtractedRecord) {
	walkChildren(n, func(c *sitter.Node) {
		switch c.Type() {
		case "dotted_name":
			rec.Imports = append(rec.Imports, Import{Source: nodeText(c, src), Line: startLine(n)})
		case "aliased_import":
			name := nodeText(c.ChildByFieldName("name"), src)
			alias := nodeText(c.ChildByFieldName("alias"), src)
			rec.Imports = append(rec.Imports, Import{Source: name, Alias: alias, Line: startLine(n)})
		}
	})
}

func extractPyImportFromStatement(n *sitter.Node, src []byte, rec *ExtractedRecord) {
	module := nodeText(n.ChildByFieldName("module_name"), src)
	if module == "" {
		return
	}
	rec.Imports = append(rec.Imports, Import{Source: module, Line: startLine(n)})
}

func extractPyCalleeName(n *sitter.Node, src []byte) string {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return nodeText(fn, src)
	case "attribute":
		attr := fn.ChildByFieldName("attribute")
		return nodeText(attr, src)
	default:
		return ""
	}
}
