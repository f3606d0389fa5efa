package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/treemark/treemark/pkg/ast"
)

var alignFromString = map[string]ast.Alignment{
	"":       ast.AlignNone,
	"none":   ast.AlignNone,
	"left":   ast.AlignLeft,
	"center": ast.AlignCenter,
	"right":  ast.AlignRight,
}

func fromWire(w *wireNode) (*ast.Node, error) {
	kind, ok := ast.KindFromName(w.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown node kind %q", w.Kind)
	}
	n := &ast.Node{
		Kind:        kind,
		Literal:     w.Literal,
		Meta:        w.Meta,
		Level:       w.Level,
		Ordered:     w.Ordered,
		Start:       w.Start,
		Tight:       w.Tight,
		Checked:     w.Checked,
		Language:    w.Language,
		Destination: w.Destination,
		Title:       w.Title,
		Span:        w.Span,
	}
	if len(w.Alignments) > 0 {
		n.Alignments = make([]ast.Alignment, len(w.Alignments))
		for i, name := range w.Alignments {
			a, ok := alignFromString[name]
			if !ok {
				return nil, fmt.Errorf("unknown alignment %q", name)
			}
			n.Alignments[i] = a
		}
	}
	if w.Header != nil {
		header, err := fromWire(w.Header)
		if err != nil {
			return nil, err
		}
		n.Header = header
	}
	if len(w.Children) > 0 {
		n.Children = make([]*ast.Node, len(w.Children))
		for i, child := range w.Children {
			c, err := fromWire(child)
			if err != nil {
				return nil, err
			}
			n.Children[i] = c
		}
	}
	return n, nil
}

// Unmarshal decodes a tree from compact or indented JSON bytes.
func Unmarshal(data []byte) (*ast.Node, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return fromWire(&w)
}

// ReadJSON decodes a JSON tree from r.
//
// The input must be a single node object with a "kind" tag; children nest
// recursively. ReadJSON returns an error if the JSON is malformed, a node
// carries an unknown kind, or an alignment tag is not one of left, center,
// right or none. Errors name the offending value.
//
// The returned tree is independent of r and can be modified safely after
// ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*ast.Node, error) {
	var w wireNode
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return fromWire(&w)
}

// ImportJSON reads a JSON file at path and returns the decoded tree.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. Errors wrap the underlying cause with the file path for context.
func ImportJSON(path string) (*ast.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
