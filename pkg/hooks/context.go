package hooks

import "github.com/treemark/treemark/pkg/ast"

// Context threads through one pipeline execution and is handed to every
// hook. It carries the document being converted, a copy of its original
// metadata, and a shared scratch map for cross-hook and cross-transform
// data exchange.
//
// Context is owned by a single pipeline run and is not safe for concurrent
// use.
type Context struct {
	// Document is the tree as of the current stage, possibly partially
	// transformed.
	Document *ast.Node

	// OriginalMeta is a copy of the document metadata taken before any
	// transform ran. Hooks can consult it without worrying about what
	// earlier stages rewrote.
	OriginalMeta ast.Metadata

	// Scratch is a mutable shared map for hooks and transforms to exchange
	// data within one execution. Never nil.
	Scratch map[string]any

	// Transform names the transform currently executing, or "" outside the
	// transform stage.
	Transform string

	// path holds the ancestors of the node currently being visited. It is
	// maintained only during node-kind-hook traversal.
	path []*ast.Node
}

// NewContext creates a context for one pipeline execution.
func NewContext(doc *ast.Node) *Context {
	var meta ast.Metadata
	if doc != nil {
		meta = doc.Meta.Clone()
	}
	return &Context{
		Document:     doc,
		OriginalMeta: meta,
		Scratch:      make(map[string]any),
	}
}

// Path returns the ancestor stack of the node currently being visited,
// outermost first. Empty outside node-kind-hook traversal.
func (c *Context) Path() []*ast.Node { return c.path }

// Parent returns the immediate parent of the node currently being visited,
// or nil at the root.
func (c *Context) Parent() *ast.Node {
	if len(c.path) == 0 {
		return nil
	}
	return c.path[len(c.path)-1]
}

// Depth returns the nesting depth of the node currently being visited.
func (c *Context) Depth() int { return len(c.path) }

func (c *Context) push(n *ast.Node) { c.path = append(c.path, n) }

func (c *Context) pop() { c.path = c.path[:len(c.path)-1] }
