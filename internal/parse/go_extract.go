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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/securityphoenix/gitnexus/internal/graph"
)

// extractGo walks a Go syntax tree and produces an ExtractedRecord.
// Grounded on the AST-dispatch shape of parser_go.go (walkGoAST, node-type
// switch, ChildByFieldName) generalized for this pipeline's record shape.
func extractGo(tree *sitter.Tree, src []byte, filePath string) *ExtractedRecord {
	rec := &ExtractedRecord{FilePath: filePath}
	root := tree.RootNode()
	if root.HasError() {
		rec.ParseFailed = true
	}

	stack := &enclosingStack{}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_declaration":
			extractGoImportDecl(n, src, rec)
		case "function_declaration":
			name := nodeText(n.ChildByFieldName("name"), src)
			rec.Definitions = append(rec.Definitions, Definition{
				Label: graph.LabelFunction, Name: name,
				StartLine: startLine(n), EndLine: endLine(n),
				IsExported: isExportedGoName(name),
			})
			stack.push(name)
			walkChildren(n, walk)
			stack.pop()
			return
		case "method_declaration":
			recv := extractGoReceiverType(n, src)
			methodName := nodeText(n.ChildByFieldName("name"), src)
			fullName := methodName
			if recv != "" {
				fullName = recv + "." + methodName
			}
			rec.Definitions = append(rec.Definitions, Definition{
				Label: graph.LabelMethod, Name: fullName,
				StartLine: startLine(n), EndLine: endLine(n),
				IsExported: isExportedGoName(methodName),
				Enclosing:  recv,
			})
			if recv != "" {
				// Struct embedding where an anonymous field is the
				// receiver's own base type does not belong here; method
				// sets are handled purely nominally by name in this
				// pipeline (Non-goal: semantic call correctness).
			}
			stack.push(fullName)
			walkChildren(n, walk)
			stack.pop()
			return
		case "type_declaration":
			extractGoTypeDecl(n, src, rec)
		case "call_expression":
			calleeName := extractGoCalleeName(n, src)
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

func extractGoImportDecl(n *sitter.Node, src []byte, rec *ExtractedRecord) {
	walkChildren(n, func(c *sitter.Node) {
		if c.Type() != "import_spec" {
			if c.Type() == "import_spec_list" {
				walkChildren(c, func(cc *sitter.Node) {
					if cc.Type() == "import_spec" {
						extractGoImportSpec(cc, src, rec)
					}
				})
			}
			return
		}
		extractGoImportSpec(c, src, rec)
	})
}

func extractGoImportSpec(n *sitter.Node, src []byte, rec *ExtractedRecord) {
	pathNode := n.ChildByFieldName("path")
	if pathNode == nil {
		return
	}
	path := strings.Trim(nodeText(pathNode, src), "\"")
	alias := ""
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		alias = nodeText(nameNode, src)
	}
	rec.Imports = append(rec.Imports, Import{Source: path, Alias: alias, Line: startLine(n)})
}

func extractGoReceiverType(n *sitter.Node, src []byte) string {
	recv := n.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	for i := 0; i < int(recv.ChildCount()); i++ {
		c := recv.Child(i)
		if c.Type() != "parameter_declaration" {
			continue
		}
		t := c.ChildByFieldName("type")
		return extractGoBaseTypeName(t, src)
	}
	return ""
}

func extractGoBaseTypeName(t *sitter.Node, src []byte) string {
	if t == nil {
		return ""
	}
	switch t.Type() {
	case "pointer_type":
		// pointer_type has no "type" field; its one named child is the
		// pointed-to type.
		if t.NamedChildCount() == 0 {
			return ""
		}
		return extractGoBaseTypeName(t.NamedChild(0), src)
	case "generic_type":
		return extractGoBaseTypeName(t.ChildByFieldName("type"), src)
	default:
		return nodeText(t, src)
	}
}

func extractGoTypeDecl(n *sitter.Node, src []byte, rec *ExtractedRecord) {
	walkChildren(n, func(c *sitter.Node) {
		if c.Type() != "type_spec" {
			return
		}
		name := nodeText(c.ChildByFieldName("name"), src)
		typeNode := c.ChildByFieldName("type")
		label := graph.LabelType
		if typeNode != nil {
			switch typeNode.Type() {
			case "struct_type":
				label = graph.LabelClass
				extractGoEmbeddedFields(typeNode, src, name, rec)
			case "interface_type":
				label = graph.LabelInterface
				extractGoEmbeddedInterfaces(typeNode, src, name, rec)
			}
		}
		rec.Definitions = append(rec.Definitions, Definition{
			Label: label, Name: name,
			StartLine: startLine(c), EndLine: endLine(c),
			IsExported: isExportedGoName(name),
		})
	})
}

// extractGoEmbeddedFields treats every anonymous (embedded) struct field as
// the closest Go analogue to `extends` (SPEC_FULL.md 4.7). The embedded type
// is not checked to be defined in this file; its name is resolved later like
// any other heritage parent.
func extractGoEmbeddedFields(structType *sitter.Node, src []byte, childName string, rec *ExtractedRecord) {
	fieldList := structType.ChildByFieldName("body")
	if fieldList == nil {
		return
	}
	walkChildren(fieldList, func(fd *sitter.Node) {
		if fd.Type() != "field_declaration" {
			return
		}
		if fd.ChildByFieldName("name") != nil {
			return // named field, not an embedding
		}
		t := fd.ChildByFieldName("type")
		parent := extractGoBaseTypeName(t, src)
		if parent == "" {
			return
		}
		rec.Heritage = append(rec.Heritage, HeritageClause{
			ChildName: childName, ParentName: parent, Kind: HeritageExtends, Line: startLine(fd),
		})
	})
}

func extractGoEmbeddedInterfaces(ifaceType *sitter.Node, src []byte, childName string, rec *ExtractedRecord) {
	walkChildren(ifaceType, func(c *sitter.Node) {
		if c.Type() != "type_elem" {
			return
		}
		for i := 0; i < int(c.ChildCount()); i++ {
			cc := c.Child(i)
			if cc.Type() == "type_identifier" {
				rec.Heritage = append(rec.Heritage, HeritageClause{
					ChildName: childName, ParentName: nodeText(cc, src), Kind: HeritageExtends, Line: startLine(c),
				})
			}
		}
	})
}

func extractGoCalleeName(n *sitter.Node, src []byte) string {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	return calleeNameFromExpr(fn, src)
}

// calleeNameFromExpr resolves the textual callee name from a call's
// "function" expression, including generic instantiations like Foo[int]()
// whose function expression is an index_expression wrapping the identifier.
func calleeNameFromExpr(fn *sitter.Node, src []byte) string {
	switch fn.Type() {
	case "identifier":
		return nodeText(fn, src)
	case "selector_expression":
		field := fn.ChildByFieldName("field")
		return nodeText(field, src)
	case "index_expression", "index_expression_with_list":
		operand := fn.ChildByFieldName("operand")
		if operand == nil {
			return ""
		}
		return calleeNameFromExpr(operand, src)
	default:
		return ""
	}
}
