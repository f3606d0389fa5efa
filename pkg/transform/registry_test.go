package transform

import (
	"fmt"
	"slices"
	"testing"

	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/errors"
)

func noop(Params) (Transform, error) {
	return Func(func(n *ast.Node) (*ast.Node, error) { return n, nil }), nil
}

func meta(name string, priority int, requires ...string) Meta {
	return Meta{Name: name, Description: name, Factory: noop, Priority: priority, Requires: requires}
}

func TestRegister_InvalidName(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(meta("Bad Name", 0)); err == nil {
		t.Error("expected error for invalid name")
	}
	if err := r.Register(Meta{Name: "no-factory"}); err == nil {
		t.Error("expected error for missing factory")
	}
}

func TestRegister_OverwriteDoesNotFail(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(meta("alpha", 10)); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(meta("alpha", 20)); err != nil {
		t.Fatalf("overwrite register: %v", err)
	}
	m, _ := r.Get("alpha")
	if m.Priority != 20 {
		t.Errorf("priority = %d, want 20 (overwritten)", m.Priority)
	}
}

func TestResolve_DependencyBeforeDependent(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(meta("a", 0, "b"))
	r.Register(meta("b", 0))

	order, err := r.Resolve([]string{"a"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	want := []string{"b", "a"}
	if !slices.Equal(order, want) {
		t.Errorf("Resolve([a]) = %v, want %v", order, want)
	}
}

func TestResolve_TransitiveDependencies(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(meta("a", 0, "b"))
	r.Register(meta("b", 0, "c"))
	r.Register(meta("c", 0))

	order, err := r.Resolve([]string{"a"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	want := []string{"c", "b", "a"}
	if !slices.Equal(order, want) {
		t.Errorf("Resolve([a]) = %v, want %v", order, want)
	}
}

func TestResolve_PriorityBreaksTies(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(meta("slow", 300))
	r.Register(meta("fast", 10))
	r.Register(meta("medium", 100))

	order, err := r.Resolve([]string{"slow", "fast", "medium"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	want := []string{"fast", "medium", "slow"}
	if !slices.Equal(order, want) {
		t.Errorf("Resolve() = %v, want %v", order, want)
	}
}

func TestResolve_UnknownName(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(meta("a", 0, "ghost"))

	if _, err := r.Resolve([]string{"a"}); !errors.Is(err, errors.ErrCodeUnknownTransform) {
		t.Errorf("got %v, want UNKNOWN_TRANSFORM", err)
	}
	if _, err := r.Resolve([]string{"missing"}); !errors.Is(err, errors.ErrCodeUnknownTransform) {
		t.Errorf("got %v, want UNKNOWN_TRANSFORM", err)
	}
}

func TestResolve_CycleDetected(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(meta("a", 0, "b"))
	r.Register(meta("b", 0, "a"))

	_, err := r.Resolve([]string{"a"})
	if !errors.Is(err, errors.ErrCodeCircularDependency) {
		t.Fatalf("got %v, want CIRCULAR_DEPENDENCY", err)
	}
}

func TestResolve_DuplicatesCollapse(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(meta("a", 0, "b"))
	r.Register(meta("b", 0))

	order, err := r.Resolve([]string{"a", "b", "a"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	want := []string{"b", "a"}
	if !slices.Equal(order, want) {
		t.Errorf("Resolve() = %v, want %v", order, want)
	}
}

func TestInstantiate_MissingRequiredParam(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(Meta{
		Name:        "needs-offset",
		Description: "test",
		Factory:     noop,
		Params: map[string]ParamSpec{
			"offset": {Type: TypeInt, Required: true},
		},
	})

	_, err := r.Instantiate("needs-offset", nil)
	if !errors.Is(err, errors.ErrCodeMissingParam) {
		t.Errorf("got %v, want MISSING_PARAM", err)
	}
}

func TestInstantiate_TypeMismatch(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(Meta{
		Name:    "typed",
		Factory: noop,
		Params:  map[string]ParamSpec{"offset": {Type: TypeInt}},
	})

	_, err := r.Instantiate("typed", Params{"offset": "two"})
	if !errors.Is(err, errors.ErrCodeInvalidParam) {
		t.Errorf("got %v, want INVALID_PARAM", err)
	}
}

func TestInstantiate_IntegralFloatAccepted(t *testing.T) {
	var got Params
	r := NewRegistry(nil)
	r.Register(Meta{
		Name: "typed",
		Factory: func(p Params) (Transform, error) {
			got = p
			return Func(func(n *ast.Node) (*ast.Node, error) { return n, nil }), nil
		},
		Params: map[string]ParamSpec{"offset": {Type: TypeInt}},
	})

	// JSON decoding hands every number over as float64.
	if _, err := r.Instantiate("typed", Params{"offset": float64(3)}); err != nil {
		t.Fatalf("Instantiate error: %v", err)
	}
	if got.Int("offset") != 3 {
		t.Errorf("offset = %v, want 3", got["offset"])
	}
	if _, err := r.Instantiate("typed", Params{"offset": 2.5}); !errors.Is(err, errors.ErrCodeInvalidParam) {
		t.Errorf("fractional float: got %v, want INVALID_PARAM", err)
	}
}

func TestInstantiate_ChoiceMembership(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(Meta{
		Name:    "choosy",
		Factory: noop,
		Params: map[string]ParamSpec{
			"mode": {Type: TypeString, Choices: []string{"drop", "keep"}},
		},
	})

	if _, err := r.Instantiate("choosy", Params{"mode": "keep"}); err != nil {
		t.Errorf("valid choice rejected: %v", err)
	}
	if _, err := r.Instantiate("choosy", Params{"mode": "explode"}); !errors.Is(err, errors.ErrCodeInvalidParam) {
		t.Errorf("got %v, want INVALID_PARAM", err)
	}
}

func TestInstantiate_ListElementTypeChecked(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(Meta{
		Name:    "listy",
		Factory: noop,
		Params:  map[string]ParamSpec{"kinds": {Type: TypeStringList}},
	})

	if _, err := r.Instantiate("listy", Params{"kinds": []any{"a", "b"}}); err != nil {
		t.Errorf("valid list rejected: %v", err)
	}
	if _, err := r.Instantiate("listy", Params{"kinds": []any{"a", 7}}); !errors.Is(err, errors.ErrCodeInvalidParam) {
		t.Errorf("got %v, want INVALID_PARAM", err)
	}
}

func TestInstantiate_DefaultsFilled(t *testing.T) {
	var got Params
	r := NewRegistry(nil)
	r.Register(Meta{
		Name: "defaulted",
		Factory: func(p Params) (Transform, error) {
			got = p
			return Func(func(n *ast.Node) (*ast.Node, error) { return n, nil }), nil
		},
		Params: map[string]ParamSpec{
			"depth": {Type: TypeInt, Default: 3},
		},
	})

	if _, err := r.Instantiate("defaulted", nil); err != nil {
		t.Fatalf("Instantiate error: %v", err)
	}
	if got.Int("depth") != 3 {
		t.Errorf("depth = %v, want default 3", got["depth"])
	}
}

func TestInstantiate_UnknownParamTolerated(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(Meta{Name: "lenient", Factory: noop})

	if _, err := r.Instantiate("lenient", Params{"future_knob": true}); err != nil {
		t.Errorf("unknown parameter should be tolerated, got %v", err)
	}
}

func TestInstantiate_CustomValidator(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(Meta{
		Name:    "validated",
		Factory: noop,
		Params: map[string]ParamSpec{
			"offset": {
				Type: TypeInt,
				Validate: func(v any) error {
					if v.(int) < 0 {
						return fmt.Errorf("must be non-negative")
					}
					return nil
				},
			},
		},
	})

	if _, err := r.Instantiate("validated", Params{"offset": 1}); err != nil {
		t.Errorf("valid value rejected: %v", err)
	}
	if _, err := r.Instantiate("validated", Params{"offset": -1}); !errors.Is(err, errors.ErrCodeInvalidParam) {
		t.Errorf("got %v, want INVALID_PARAM", err)
	}
}
