package transform

import (
	"cmp"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/treemark/treemark/pkg/errors"
)

// Factory constructs a transform instance from validated parameters.
type Factory func(params Params) (Transform, error)

// Meta describes a registered transform: everything the registry needs to
// list, resolve, and instantiate it.
type Meta struct {
	// Name is the unique registry key (lowercase, hyphen-separated).
	Name string

	// Description is a short human-readable summary for listings.
	Description string

	// Factory builds the transform from validated parameters.
	Factory Factory

	// Params declares the parameter schema, keyed by parameter name.
	Params map[string]ParamSpec

	// Priority orders transforms that have no dependency constraint
	// relative to each other. Lower runs first. Defaults to 100.
	Priority int

	// Requires names transforms that must run before this one.
	Requires []string

	// Tags are free-form labels for discovery and filtering.
	Tags []string
}

// DefaultPriority is assigned to metas registered with priority zero.
const DefaultPriority = 100

// Registry owns the catalog of named transforms. It holds mutable state
// with no internal locking: registration is expected to happen once at
// startup, and each concurrent pipeline run should own its instances or
// share a registry that is no longer being written to.
type Registry struct {
	logger *log.Logger
	metas  map[string]Meta
}

// NewRegistry creates an empty registry. A nil logger discards warnings.
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Registry{
		logger: logger,
		metas:  make(map[string]Meta),
	}
}

// Register inserts a transform by name, overwriting any existing entry.
// Overwriting logs a warning but never fails - plugins are allowed to
// shadow built-ins deliberately. Returns an error only for invalid metadata
// (bad name, missing factory).
func (r *Registry) Register(m Meta) error {
	if err := errors.ValidateTransformName(m.Name); err != nil {
		return err
	}
	if m.Factory == nil {
		return errors.New(errors.ErrCodeInvalidInput, "transform %q has no factory", m.Name)
	}
	if m.Priority == 0 {
		m.Priority = DefaultPriority
	}
	if _, exists := r.metas[m.Name]; exists {
		r.logger.Warn("overwriting registered transform", "name", m.Name)
	}
	r.metas[m.Name] = m
	return nil
}

// RegisterAll registers a batch of metadata objects. This is the bulk entry
// point consumed by plugin-discovery collaborators at process startup.
// Registration stops at the first invalid entry.
func (r *Registry) RegisterAll(metas ...Meta) error {
	for _, m := range metas {
		if err := r.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the metadata for name and true, or a zero Meta and false.
func (r *Registry) Get(name string) (Meta, bool) {
	m, ok := r.metas[name]
	return m, ok
}

// Names returns all registered names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.metas))
	for name := range r.metas {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// WithTag returns the names of transforms carrying the given tag, sorted.
func (r *Registry) WithTag(tag string) []string {
	var names []string
	for name, m := range r.metas {
		if slices.Contains(m.Tags, tag) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Resolve expands the named transforms with their transitive dependencies
// and returns them in execution order: dependencies before dependents, ties
// broken by ascending priority (then name, for determinism).
//
// Returns ErrCodeUnknownTransform when a name (or a declared dependency) is
// not registered, and ErrCodeCircularDependency naming the offending
// transform when the dependency graph contains a cycle.
func (r *Registry) Resolve(names []string) ([]string, error) {
	closure, err := r.closure(names)
	if err != nil {
		return nil, err
	}

	// Deterministic visit order: priority ascending, then name. The DFS
	// appends post-order, so dependencies always precede dependents, and
	// unconstrained groups come out in priority order.
	ordered := slices.Clone(closure)
	slices.SortFunc(ordered, func(a, b string) int {
		if c := cmp.Compare(r.metas[a].Priority, r.metas[b].Priority); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(ordered))
	result := make([]string, 0, len(ordered))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visited:
			return nil
		case visiting:
			return errors.New(errors.ErrCodeCircularDependency,
				"transform %q participates in a dependency cycle", name)
		}
		state[name] = visiting

		deps := slices.Clone(r.metas[name].Requires)
		slices.SortFunc(deps, func(a, b string) int {
			if c := cmp.Compare(r.metas[a].Priority, r.metas[b].Priority); c != 0 {
				return c
			}
			return strings.Compare(a, b)
		})
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}

		state[name] = visited
		result = append(result, name)
		return nil
	}

	for _, name := range ordered {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// closure recursively includes every named transform's dependencies,
// failing on the first unknown name.
func (r *Registry) closure(names []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	var include func(name string) error
	include = func(name string) error {
		if seen[name] {
			return nil
		}
		m, ok := r.metas[name]
		if !ok {
			return errors.New(errors.ErrCodeUnknownTransform, "no transform named %q", name)
		}
		seen[name] = true
		out = append(out, name)
		for _, dep := range m.Requires {
			if err := include(dep); err != nil {
				return err
			}
		}
		return nil
	}

	for _, name := range names {
		if err := include(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Instantiate validates params against the transform's declared schema,
// fills defaults, and constructs the instance. Unknown extra parameters are
// logged at debug level and passed through rather than rejected.
func (r *Registry) Instantiate(name string, params Params) (Transform, error) {
	m, ok := r.metas[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownTransform, "no transform named %q", name)
	}

	validated, err := validateParams(m.Params, params, func(key string) {
		r.logger.Debug("ignoring unknown parameter", "transform", name, "param", key)
	})
	if err != nil {
		return nil, err
	}

	t, err := m.Factory(validated)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParam, err, "instantiate transform %q", name)
	}
	return t, nil
}

// Describe returns a one-line parameter summary for CLI listings.
func (m Meta) Describe() string {
	if len(m.Params) == 0 {
		return m.Description
	}
	keys := make([]string, 0, len(m.Params))
	for key := range m.Params {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = describeParam(key, m.Params[key])
	}
	return m.Description + " [" + strings.Join(parts, "; ") + "]"
}
