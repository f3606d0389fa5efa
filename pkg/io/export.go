package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/treemark/treemark/pkg/ast"
)

var alignToString = map[ast.Alignment]string{
	ast.AlignLeft:   "left",
	ast.AlignCenter: "center",
	ast.AlignRight:  "right",
}

// wireNode is the JSON shape of one tree node. Payload fields are omitted
// when empty so leaf nodes stay compact.
type wireNode struct {
	Kind        string       `json:"kind"`
	Literal     string       `json:"literal,omitempty"`
	Meta        ast.Metadata `json:"meta,omitempty"`
	Level       int          `json:"level,omitempty"`
	Ordered     bool         `json:"ordered,omitempty"`
	Start       int          `json:"start,omitempty"`
	Tight       bool         `json:"tight,omitempty"`
	Checked     *bool        `json:"checked,omitempty"`
	Language    string       `json:"language,omitempty"`
	Destination string       `json:"destination,omitempty"`
	Title       string       `json:"title,omitempty"`
	Alignments  []string     `json:"alignments,omitempty"`
	Span        *ast.Span    `json:"span,omitempty"`
	Header      *wireNode    `json:"header,omitempty"`
	Children    []*wireNode  `json:"children,omitempty"`
}

func toWire(n *ast.Node) *wireNode {
	w := &wireNode{
		Kind:        n.Kind.String(),
		Literal:     n.Literal,
		Meta:        n.Meta,
		Level:       n.Level,
		Ordered:     n.Ordered,
		Start:       n.Start,
		Tight:       n.Tight,
		Checked:     n.Checked,
		Language:    n.Language,
		Destination: n.Destination,
		Title:       n.Title,
		Span:        n.Span,
	}
	if len(n.Alignments) > 0 {
		w.Alignments = make([]string, len(n.Alignments))
		for i, a := range n.Alignments {
			w.Alignments[i] = alignToString[a]
		}
	}
	if n.Header != nil {
		w.Header = toWire(n.Header)
	}
	if len(n.Children) > 0 {
		w.Children = make([]*wireNode, len(n.Children))
		for i, child := range n.Children {
			w.Children[i] = toWire(child)
		}
	}
	return w
}

// Marshal encodes a tree as compact JSON. The output is deterministic for
// a given tree (metadata keys are sorted), which makes it suitable for
// hashing into cache keys.
func Marshal(doc *ast.Node) ([]byte, error) {
	data, err := json.Marshal(toWire(doc))
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// WriteJSON encodes a tree as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(doc *ast.Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toWire(doc)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a tree to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(doc *ast.Node, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(doc, f)
}
