// Package pipeline orchestrates the conversion of a document tree to
// Markdown text: post-ingest hooks, dependency-resolved transform
// application with pre/post hooks, node-kind hook traversal, rendering,
// and post-render text hooks.
//
// # Architecture
//
// The stage machine is strictly ordered and every stage is skipped when
// nothing is registered for it:
//
//  1. Post-ingest hooks on the raw input tree
//  2. Transforms in registry-resolved order, each bracketed by
//     pre-transform and post-transform hooks
//  3. Pre-render hooks
//  4. One node-kind hook traversal, only if node-kind hooks exist
//  5. Rendering
//  6. Post-render hooks over the rendered text
//
// Transform failures are fatal and carry the transform's name; hook
// failures are isolated unless the hook manager is strict. The pipeline
// has no internal cancellation points: callers needing bounded execution
// wrap Execute externally.
//
// # Usage
//
// Build a pipeline per execution (or per session) and run it:
//
//	reg := transform.NewRegistry(logger)
//	_ = builtin.RegisterAll(reg)
//	p := pipeline.New(reg, hooks.NewManager(), pipeline.WithLogger(logger))
//	result, err := p.Execute(doc, pipeline.Options{
//	    Transforms: []pipeline.TransformSpec{{Name: "toc"}},
//	    RenderOptions: []markdown.Option{markdown.WithFlavor(markdown.FlavorGFM)},
//	})
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/errors"
	"github.com/treemark/treemark/pkg/hooks"
	"github.com/treemark/treemark/pkg/observability"
	"github.com/treemark/treemark/pkg/render/markdown"
	"github.com/treemark/treemark/pkg/transform"
)

// TransformSpec names a registered transform with its parameters, or
// carries a ready-made instance. Specs of both kinds may be freely
// intermixed in one Options.Transforms list.
type TransformSpec struct {
	// Name is a registry key, resolved (dependencies included) before
	// execution. Ignored when Instance is set.
	Name string

	// Params configures the named transform.
	Params transform.Params

	// Instance is a ready-made transform, executed at this position
	// without registry resolution.
	Instance transform.Transform
}

// Options configures one pipeline execution.
type Options struct {
	Transforms    []TransformSpec
	RenderOptions []markdown.Option
}

// Stats carries per-stage timings for one execution.
type Stats struct {
	TransformTime time.Duration
	RenderTime    time.Duration

	// Applied lists the executed transforms in order, dependencies
	// included.
	Applied []string

	NodeCount int
}

// Result is the outcome of one pipeline execution.
type Result struct {
	// Markdown is the rendered text after post-render hooks.
	Markdown string

	// Document is the tree as rendered, after all transforms and hooks.
	Document *ast.Node

	Stats Stats
}

// Pipeline sequences the conversion stages. One instance serves one
// logical session; give concurrent executions their own registry and hook
// manager (see the shared-resource policy on those types).
type Pipeline struct {
	registry *transform.Registry
	hooks    *hooks.Manager
	logger   *log.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline's logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates a pipeline around a transform registry and a hook manager.
// Either may be nil, leaving that extension surface empty.
func New(reg *transform.Registry, mgr *hooks.Manager, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: reg,
		hooks:    mgr,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	if p.registry == nil {
		p.registry = transform.NewRegistry(nil)
	}
	if p.hooks == nil {
		p.hooks = hooks.NewManager()
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Execute runs the full stage machine over the document and returns the
// rendered Markdown.
func (p *Pipeline) Execute(doc *ast.Node, opts Options) (*Result, error) {
	if doc == nil || doc.Kind != ast.KindDocument {
		return nil, errors.New(errors.ErrCodeInvalidInput, "pipeline requires a document root")
	}

	ctx := hooks.NewContext(doc)
	result := &Result{}

	doc, err := p.runStage(hooks.StagePostIngest, doc, ctx)
	if err != nil {
		return nil, err
	}

	transformStart := time.Now()
	doc, applied, err := p.applyTransforms(doc, opts.Transforms, ctx)
	if err != nil {
		return nil, err
	}
	result.Stats.TransformTime = time.Since(transformStart)
	result.Stats.Applied = applied

	doc, err = p.runStage(hooks.StagePreRender, doc, ctx)
	if err != nil {
		return nil, err
	}

	// The node-kind traversal costs a full tree pass, so it only happens
	// when at least one node-kind hook is registered.
	if p.hooks.HasKindHooks() {
		doc, err = p.hooks.Traverse(doc, ctx)
		if err != nil {
			return nil, err
		}
		ctx.Document = doc
	}

	renderStart := time.Now()
	o := markdown.NewOptions(opts.RenderOptions...)
	observability.Pipeline().OnRenderStart(context.Background(), string(o.Flavor))
	text, err := markdown.Render(doc, opts.RenderOptions...)
	observability.Pipeline().OnRenderComplete(context.Background(), string(o.Flavor),
		len(text), time.Since(renderStart), err)
	if err != nil {
		return nil, err
	}
	result.Stats.RenderTime = time.Since(renderStart)

	text, err = p.hooks.RunPostRender(text, ctx)
	if err != nil {
		return nil, err
	}

	result.Markdown = text
	result.Document = doc
	result.Stats.NodeCount = doc.Count()
	return result, nil
}

// Render is a convenience wrapper running named transforms with default
// parameters and returning only the text.
func (p *Pipeline) Render(doc *ast.Node, transforms ...string) (string, error) {
	specs := make([]TransformSpec, len(transforms))
	for i, name := range transforms {
		specs[i] = TransformSpec{Name: name}
	}
	result, err := p.Execute(doc, Options{Transforms: specs})
	if err != nil {
		return "", err
	}
	return result.Markdown, nil
}

// runStage folds a stage's hooks over the document. A removal here means
// no document remains, which is a hard error.
func (p *Pipeline) runStage(stage hooks.Stage, doc *ast.Node, ctx *hooks.Context) (*ast.Node, error) {
	if !p.hooks.HasStageHooks(stage) {
		return doc, nil
	}
	res, err := p.hooks.RunStage(stage, doc, ctx)
	if err != nil {
		return nil, err
	}
	if res.Removed() || res.Node() == nil {
		return nil, errors.New(errors.ErrCodeEmptyDocument,
			"pipeline produced no document: a %q hook removed it", stage)
	}
	ctx.Document = res.Node()
	return res.Node(), nil
}

// applyTransforms resolves the named transforms through the registry and
// executes the mixed list. Named specs pull their registry-resolved
// dependencies in ahead of themselves; instances run at their own
// position.
func (p *Pipeline) applyTransforms(doc *ast.Node, specs []TransformSpec, ctx *hooks.Context) (*ast.Node, []string, error) {
	if len(specs) == 0 {
		return doc, nil, nil
	}

	var names []string
	params := make(map[string]transform.Params)
	for _, spec := range specs {
		if spec.Instance != nil {
			continue
		}
		names = append(names, spec.Name)
		if spec.Params != nil {
			params[spec.Name] = spec.Params
		}
	}
	resolved, err := p.registry.Resolve(names)
	if err != nil {
		return nil, nil, err
	}

	var applied []string
	ran := make(map[string]bool)
	pos := 0

	runOne := func(name string, t transform.Transform) error {
		ctx.Transform = name
		defer func() { ctx.Transform = "" }()

		var err error
		doc, err = p.runTransformStage(hooks.StagePreTransform, doc, ctx)
		if err != nil {
			return err
		}

		start := time.Now()
		observability.Pipeline().OnTransformStart(context.Background(), name)
		out, err := transform.ApplyDocument(t, doc)
		observability.Pipeline().OnTransformComplete(context.Background(), name, time.Since(start), err)
		if err != nil {
			p.logger.Error("transform failed", "transform", name, "err", err)
			return errors.Wrap(errors.ErrCodeTransformFailed, err, "transform %q", name)
		}
		doc = out
		ctx.Document = doc
		applied = append(applied, name)

		doc, err = p.runTransformStage(hooks.StagePostTransform, doc, ctx)
		return err
	}

	runNamed := func(name string) error {
		if ran[name] {
			return nil
		}
		ran[name] = true
		t, err := p.registry.Instantiate(name, params[name])
		if err != nil {
			return err
		}
		return runOne(name, t)
	}

	for _, spec := range specs {
		if spec.Instance != nil {
			name := spec.Name
			if name == "" {
				name = "(inline)"
			}
			if err := runOne(name, spec.Instance); err != nil {
				return nil, nil, err
			}
			continue
		}
		for pos < len(resolved) && !ran[spec.Name] {
			name := resolved[pos]
			pos++
			if err := runNamed(name); err != nil {
				return nil, nil, err
			}
		}
	}
	// Anything left in the resolved order is a dependency that sorted
	// after its dependents' positions; run it for completeness.
	for ; pos < len(resolved); pos++ {
		if err := runNamed(resolved[pos]); err != nil {
			return nil, nil, err
		}
	}

	return doc, applied, nil
}

func (p *Pipeline) runTransformStage(stage hooks.Stage, doc *ast.Node, ctx *hooks.Context) (*ast.Node, error) {
	if !p.hooks.HasStageHooks(stage) {
		return doc, nil
	}
	res, err := p.hooks.RunStage(stage, doc, ctx)
	if err != nil {
		return nil, err
	}
	if res.Removed() || res.Node() == nil {
		return nil, errors.New(errors.ErrCodeEmptyDocument,
			"pipeline produced no document: a %q hook removed it during transform %q", stage, ctx.Transform)
	}
	ctx.Document = res.Node()
	return res.Node(), nil
}
