// Package transform defines the tree-to-tree transform protocol and the
// registry of named, parameterized transforms.
//
// A transform implements one operation: Apply(node) returning a replacement
// node or nil. Returning nil removes the node - and, transitively, everything
// it owns - from the tree. The default behavior for node kinds a transform
// does not specially handle is structural recursion via [Children]: each
// owned child is transformed, survivors are kept in order, and the node is
// returned otherwise unchanged. Transform authors override only the kinds
// they care about and get the recursion for free:
//
//	type dropImages struct{}
//
//	func (d dropImages) Apply(n *ast.Node) (*ast.Node, error) {
//	    if n.Kind == ast.KindImage {
//	        return nil, nil
//	    }
//	    return transform.Children(d, n)
//	}
//
// Transforms never mutate their input: replacement nodes are copies, and
// [Children] rebuilds containers copy-on-write. Removing the Document root
// is not a transform decision - the pipeline rejects it with
// ErrCodeProtectedRoot.
package transform

import (
	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/errors"
)

// Transform is a tree-to-tree function over document nodes.
type Transform interface {
	// Apply transforms a single node. Returning (nil, nil) removes the node
	// from its parent's child sequence. Returning a node (the same instance
	// or a new one) replaces it. Errors abort the whole pipeline run.
	Apply(n *ast.Node) (*ast.Node, error)
}

// Func adapts an ordinary function to the Transform interface.
type Func func(*ast.Node) (*ast.Node, error)

// Apply calls f.
func (f Func) Apply(n *ast.Node) (*ast.Node, error) { return f(n) }

// Children applies t to every owned child of n (including a table header),
// rebuilding the container with the surviving transformed children in order.
// When nothing changed, n is returned as-is; otherwise a shallow copy with
// the new child sequence is returned, leaving the input untouched.
//
// This is the structural-recursion default every transform falls back to
// for node kinds it does not handle specially.
func Children(t Transform, n *ast.Node) (*ast.Node, error) {
	if n == nil {
		return nil, nil
	}

	changed := false

	var header *ast.Node
	if n.Header != nil {
		h, err := t.Apply(n.Header)
		if err != nil {
			return nil, err
		}
		header = h
		if h != n.Header {
			changed = true
		}
	}

	children := n.Children
	if len(n.Children) > 0 {
		rebuilt := make([]*ast.Node, 0, len(n.Children))
		for _, child := range n.Children {
			out, err := t.Apply(child)
			if err != nil {
				return nil, err
			}
			if out == nil {
				changed = true
				continue
			}
			if out != child {
				changed = true
			}
			rebuilt = append(rebuilt, out)
		}
		children = rebuilt
	}

	if !changed {
		return n, nil
	}
	c := n.WithChildren(children)
	c.Header = header
	return c, nil
}

// ApplyDocument applies t to the document root and enforces the root
// protection invariant: a transform may rewrite the Document node but never
// remove it. Returns ErrCodeProtectedRoot when t removes the root and
// ErrCodeEmptyDocument when the result is not a Document.
func ApplyDocument(t Transform, doc *ast.Node) (*ast.Node, error) {
	out, err := t.Apply(doc)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New(errors.ErrCodeProtectedRoot, "transform removed the document root")
	}
	if out.Kind != ast.KindDocument {
		return nil, errors.New(errors.ErrCodeEmptyDocument, "transform replaced the root with a %s node", out.Kind)
	}
	return out, nil
}
