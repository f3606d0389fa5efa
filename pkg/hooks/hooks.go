// Package hooks implements the interception layer of the conversion
// pipeline: lightweight callbacks attached to a pipeline stage or to a node
// kind, orthogonal to the named transforms.
//
// Hooks are best-effort by default. A failing hook is logged with its target
// and priority and skipped, so a telemetry or annotation hook can never
// break an otherwise-working conversion. Strict mode flips this: any hook
// error aborts the pipeline, which is the right setting for development and
// test environments.
//
// Execution order is computed lazily at call time - a stable sort by
// priority with registration order as the tiebreak - so registration stays
// cheap.
//
// A Manager holds mutable registration state with no internal locking; give
// each concurrent pipeline run its own instance, or finish all registration
// before the first execution.
package hooks

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/errors"
)

// Stage identifies a pipeline interception point.
type Stage string

const (
	StagePostIngest    Stage = "post_ingest"
	StagePreTransform  Stage = "pre_transform"
	StagePostTransform Stage = "post_transform"
	StagePreRender     Stage = "pre_render"
	StagePostRender    Stage = "post_render"
)

// DefaultPriority is used when hooks are registered without one.
const DefaultPriority = 100

// Result is the outcome of a node or stage hook: either a kept node
// (possibly rewritten) or an explicit removal. Removal is a checked branch
// rather than a nil sentinel so callers cannot confuse "removed" with a
// forgotten return.
type Result struct {
	node    *ast.Node
	removed bool
}

// Keep returns a result carrying the (possibly replaced) node.
func Keep(n *ast.Node) Result { return Result{node: n} }

// Remove returns the removal result. The fold stops immediately and the
// removal propagates.
func Remove() Result { return Result{removed: true} }

// Removed reports whether the result is a removal.
func (r Result) Removed() bool { return r.removed }

// Node returns the kept node, or nil for removals.
func (r Result) Node() *ast.Node { return r.node }

// NodeHook runs against a document node during stage or kind execution.
type NodeHook func(n *ast.Node, ctx *Context) (Result, error)

// TextHook runs against the rendered output during the post-render stage.
type TextHook func(text string, ctx *Context) (string, error)

// Classify maps a node to its canonical kind tag for hook routing. Because
// every node carries an explicit Kind from construction there is no type
// probing; the function exists to reject nil and invalid nodes in one place.
func Classify(n *ast.Node) (ast.Kind, bool) {
	if n == nil || n.Kind == ast.KindInvalid {
		return ast.KindInvalid, false
	}
	if n.Kind.String() == "invalid" {
		return ast.KindInvalid, false
	}
	return n.Kind, true
}

type nodeEntry struct {
	fn       NodeHook
	priority int
	seq      int
}

type textEntry struct {
	fn       TextHook
	priority int
	seq      int
}

// Manager is the registry of stage and node-kind hooks for one pipeline
// session.
type Manager struct {
	logger *log.Logger
	strict bool
	seq    int

	stage map[Stage][]nodeEntry
	kind  map[ast.Kind][]nodeEntry
	text  []textEntry
}

// Option configures a Manager.
type Option func(*Manager)

// WithStrict makes hook failures fatal instead of logged-and-skipped.
func WithStrict() Option {
	return func(m *Manager) { m.strict = true }
}

// WithLogger sets the logger used for isolated hook failures.
func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates an empty hook manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		stage:  make(map[Stage][]nodeEntry),
		kind:   make(map[ast.Kind][]nodeEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Strict reports whether hook failures abort the pipeline.
func (m *Manager) Strict() bool { return m.strict }

// OnStage registers a hook for a pipeline stage. Lower priority runs first;
// equal priorities run in registration order. Post-render hooks rewrite
// text, not nodes - register those with OnPostRender.
func (m *Manager) OnStage(stage Stage, priority int, fn NodeHook) {
	m.seq++
	m.stage[stage] = append(m.stage[stage], nodeEntry{fn: fn, priority: priority, seq: m.seq})
}

// OnKind registers a hook for every node of the given kind, applied during
// the dedicated node-kind traversal.
func (m *Manager) OnKind(kind ast.Kind, priority int, fn NodeHook) {
	m.seq++
	m.kind[kind] = append(m.kind[kind], nodeEntry{fn: fn, priority: priority, seq: m.seq})
}

// OnPostRender registers a hook over the rendered Markdown text.
func (m *Manager) OnPostRender(priority int, fn TextHook) {
	m.seq++
	m.text = append(m.text, textEntry{fn: fn, priority: priority, seq: m.seq})
}

// HasKindHooks reports whether any node-kind hook is registered. The
// pipeline skips the node-kind traversal entirely when this is false, since
// the traversal costs O(tree size).
func (m *Manager) HasKindHooks() bool { return len(m.kind) > 0 }

// HasAnyHooks reports whether any hook is registered at all, on any
// stage or kind. Cached execution paths check this: hook effects are not
// part of a cache key, so a pipeline with hooks must run every time.
func (m *Manager) HasAnyHooks() bool {
	if len(m.kind) > 0 || len(m.text) > 0 {
		return true
	}
	for _, entries := range m.stage {
		if len(entries) > 0 {
			return true
		}
	}
	return false
}

// HasStageHooks reports whether any hook is registered for the stage.
func (m *Manager) HasStageHooks(stage Stage) bool {
	if stage == StagePostRender {
		return len(m.text) > 0
	}
	return len(m.stage[stage]) > 0
}

func sortedNodeEntries(entries []nodeEntry) []nodeEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b nodeEntry) int {
		if a.priority != b.priority {
			return a.priority - b.priority
		}
		return a.seq - b.seq
	})
	return out
}

// RunStage folds the stage's hooks over the document: each hook's output
// becomes the next hook's input. A removal stops the fold and returns the
// removal result. A hook error is fatal in strict mode; otherwise it is
// logged and the fold continues from the last successful value.
func (m *Manager) RunStage(stage Stage, doc *ast.Node, ctx *Context) (Result, error) {
	return m.fold(string(stage), m.stage[stage], doc, ctx)
}

// RunKind folds the hooks registered for the node's kind over the node.
// Nodes that classify as invalid are kept untouched.
func (m *Manager) RunKind(n *ast.Node, ctx *Context) (Result, error) {
	kind, ok := Classify(n)
	if !ok {
		return Keep(n), nil
	}
	return m.fold(kind.String(), m.kind[kind], n, ctx)
}

func (m *Manager) fold(target string, entries []nodeEntry, value *ast.Node, ctx *Context) (Result, error) {
	for _, e := range sortedNodeEntries(entries) {
		res, err := e.fn(value, ctx)
		if err != nil {
			if m.strict {
				return Keep(value), errors.Wrap(errors.ErrCodeHookFailed, err,
					"hook on %q (priority %d)", target, e.priority)
			}
			m.logger.Error("hook failed, continuing",
				"target", target, "priority", e.priority, "transform", ctx.Transform, "err", err)
			continue
		}
		if res.Removed() {
			return res, nil
		}
		value = res.Node()
	}
	return Keep(value), nil
}

// RunPostRender folds the post-render hooks over the rendered text.
func (m *Manager) RunPostRender(text string, ctx *Context) (string, error) {
	entries := slices.Clone(m.text)
	slices.SortStableFunc(entries, func(a, b textEntry) int {
		if a.priority != b.priority {
			return a.priority - b.priority
		}
		return a.seq - b.seq
	})

	for _, e := range entries {
		out, err := e.fn(text, ctx)
		if err != nil {
			if m.strict {
				return text, errors.Wrap(errors.ErrCodeHookFailed, err,
					"hook on %q (priority %d)", StagePostRender, e.priority)
			}
			m.logger.Error("hook failed, continuing",
				"target", StagePostRender, "priority", e.priority, "err", err)
			continue
		}
		text = out
	}
	return text, nil
}

// Traverse performs one full depth-first pass applying node-kind hooks to
// every node, maintaining the context's ancestor path stack. Nodes removed
// by a hook are dropped together with everything they own. Removing the
// Document root is rejected.
//
// Callers should check HasKindHooks first; the traversal costs O(tree size).
func (m *Manager) Traverse(doc *ast.Node, ctx *Context) (*ast.Node, error) {
	res, err := m.visit(doc, ctx)
	if err != nil {
		return nil, err
	}
	if res.Removed() {
		return nil, errors.New(errors.ErrCodeProtectedRoot, "node hook removed the document root")
	}
	return res.Node(), nil
}

func (m *Manager) visit(n *ast.Node, ctx *Context) (Result, error) {
	res, err := m.RunKind(n, ctx)
	if err != nil || res.Removed() {
		return res, err
	}
	n = res.Node()

	ctx.push(n)
	defer ctx.pop()

	changed := false

	var header *ast.Node
	if n.Header != nil {
		hres, err := m.visit(n.Header, ctx)
		if err != nil {
			return Result{}, err
		}
		if hres.Removed() {
			changed = true
		} else {
			header = hres.Node()
			if header != n.Header {
				changed = true
			}
		}
	}

	children := n.Children
	if len(n.Children) > 0 {
		rebuilt := make([]*ast.Node, 0, len(n.Children))
		for _, child := range n.Children {
			cres, err := m.visit(child, ctx)
			if err != nil {
				return Result{}, err
			}
			if cres.Removed() {
				changed = true
				continue
			}
			if cres.Node() != child {
				changed = true
			}
			rebuilt = append(rebuilt, cres.Node())
		}
		children = rebuilt
	}

	if !changed {
		return Keep(n), nil
	}
	c := n.WithChildren(children)
	c.Header = header
	return Keep(c), nil
}
