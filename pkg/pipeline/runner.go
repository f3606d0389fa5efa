package pipeline

import (
	"context"
	"fmt"
	goio "io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/cache"
	"github.com/treemark/treemark/pkg/io"
	"github.com/treemark/treemark/pkg/observability"
	"github.com/treemark/treemark/pkg/render/markdown"
)

// Runner wraps a Pipeline with a cache for rendered output. A cache hit
// skips transforms and rendering entirely; the cached Markdown is
// returned as-is. Hits can only occur for executions whose tree, options
// and transform list are byte-identical, so skipping is safe as long as
// every transform is deterministic. Pipelines using instance transforms
// or hooks bypass the cache, since neither contributes to the key.
type Runner struct {
	Pipeline *Pipeline
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
}

// CacheInfo reports where a Runner execution's output came from.
type CacheInfo struct {
	Hit bool
	Key string
}

// NewRunner creates a runner with sensible defaults: a null cache when
// cache is nil and the standard keyer when keyer is nil.
func NewRunner(p *Pipeline, c cache.Cache, keyer cache.Keyer) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Runner{
		Pipeline: p,
		Cache:    c,
		Keyer:    keyer,
		Logger:   log.NewWithOptions(goio.Discard, log.Options{}),
	}
}

// Execute runs the pipeline through the cache.
func (r *Runner) Execute(ctx context.Context, doc *ast.Node, opts Options) (*Result, error) {
	result, _, err := r.ExecuteWithCacheInfo(ctx, doc, opts)
	return result, err
}

// ExecuteWithCacheInfo runs the pipeline through the cache and reports
// whether the output was served from it.
func (r *Runner) ExecuteWithCacheInfo(ctx context.Context, doc *ast.Node, opts Options) (*Result, CacheInfo, error) {
	key, cacheable := r.renderKey(doc, opts)
	if !cacheable {
		result, err := r.Pipeline.Execute(doc, opts)
		return result, CacheInfo{}, err
	}

	if data, ok, err := r.Cache.Get(ctx, key); err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	} else if ok {
		observability.Cache().OnCacheHit(ctx, "render")
		return &Result{Markdown: string(data)}, CacheInfo{Hit: true, Key: key}, nil
	} else {
		observability.Cache().OnCacheMiss(ctx, "render")
	}

	result, err := r.Pipeline.Execute(doc, opts)
	if err != nil {
		return nil, CacheInfo{Key: key}, err
	}

	if err := r.Cache.Set(ctx, key, []byte(result.Markdown), cache.TTLRender); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "render", len(result.Markdown))
	}
	return result, CacheInfo{Key: key}, nil
}

// Invalidate drops the cached output for one document and option set.
func (r *Runner) Invalidate(ctx context.Context, doc *ast.Node, opts Options) error {
	key, cacheable := r.renderKey(doc, opts)
	if !cacheable {
		return nil
	}
	return r.Cache.Delete(ctx, key)
}

// Close releases the cache backend.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// renderKey fingerprints the execution. The second return is false when
// the execution cannot be keyed completely, which disables caching.
func (r *Runner) renderKey(doc *ast.Node, opts Options) (string, bool) {
	if r.Pipeline != nil && r.Pipeline.hooks.HasAnyHooks() {
		return "", false
	}

	data, err := io.Marshal(doc)
	if err != nil {
		return "", false
	}

	var transforms []string
	for _, spec := range opts.Transforms {
		if spec.Instance != nil {
			return "", false
		}
		transforms = append(transforms, fmt.Sprintf("%s=%s", spec.Name, paramFingerprint(spec.Params)))
	}

	o := markdown.NewOptions(opts.RenderOptions...)
	return r.Keyer.RenderKey(cache.Hash(data), cache.RenderKeyOpts{
		Flavor:     string(o.Flavor),
		Options:    fmt.Sprintf("%+v", o),
		Transforms: transforms,
	}), true
}

func paramFingerprint(p map[string]any) string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := ""
	for _, k := range keys {
		s += fmt.Sprintf("%s:%v;", k, p[k])
	}
	return s
}
