// Package locator finds the source position of a validation failure inside
// the original document text, so diagnostics can carry file:line:column
// positions. It parses the document with goccy/go-yaml, which covers both
// YAML and plain JSON input.
package locator

import (
	"strconv"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// Position is a 1-based line/column location in the source text.
type Position struct {
	Line   int
	Column int
}

// Locate resolves instance-path segments (object keys and array indices,
// rendered as strings) to the position of the addressed value. When the full
// path does not resolve it falls back to the deepest ancestor that does, and
// reports found=false only when nothing at all could be located.
func Locate(src []byte, segments []string) (Position, bool) {
	file, err := parser.ParseBytes(src, 0)
	if err != nil || len(file.Docs) == 0 {
		return Position{}, false
	}
	root := file.Docs[0].Body
	if root == nil {
		return Position{}, false
	}

	node := root
	for _, segment := range segments {
		next := child(node, segment)
		if next == nil {
			break
		}
		node = next
	}
	return nodePosition(node)
}

// LocateKey resolves the path like Locate but positions the mapping key
// rather than its value, which reads better for property-level findings.
func LocateKey(src []byte, segments []string) (Position, bool) {
	if len(segments) == 0 {
		return Locate(src, segments)
	}
	file, err := parser.ParseBytes(src, 0)
	if err != nil || len(file.Docs) == 0 {
		return Position{}, false
	}
	node := file.Docs[0].Body
	for _, segment := range segments[:len(segments)-1] {
		next := child(node, segment)
		if next == nil {
			return nodePosition(node)
		}
		node = next
	}

	last := segments[len(segments)-1]
	if mapping, ok := node.(*ast.MappingNode); ok {
		for _, entry := range mapping.Values {
			if keyEquals(entry.Key, last) {
				return nodePosition(entry.Key)
			}
		}
	}
	if next := child(node, last); next != nil {
		return nodePosition(next)
	}
	return nodePosition(node)
}

// child steps one segment down from a mapping or sequence node.
func child(node ast.Node, segment string) ast.Node {
	switch n := node.(type) {
	case *ast.MappingNode:
		for _, entry := range n.Values {
			if keyEquals(entry.Key, segment) {
				return entry.Value
			}
		}
	case *ast.MappingValueNode:
		if keyEquals(n.Key, segment) {
			return n.Value
		}
	case *ast.SequenceNode:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= len(n.Values) {
			return nil
		}
		return n.Values[idx]
	}
	return nil
}

func keyEquals(key ast.MapKeyNode, segment string) bool {
	if key == nil {
		return false
	}
	if tok := key.GetToken(); tok != nil {
		return tok.Value == segment
	}
	return false
}

func nodePosition(node ast.Node) (Position, bool) {
	if node == nil {
		return Position{}, false
	}
	tok := node.GetToken()
	if tok == nil || tok.Position == nil {
		return Position{}, false
	}
	return Position{Line: tok.Position.Line, Column: tok.Position.Column}, true
}
