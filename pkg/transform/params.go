package transform

import (
	"fmt"
	"math"
	"slices"

	"github.com/treemark/treemark/pkg/errors"
)

// ParamType identifies the expected type of a transform parameter.
type ParamType string

const (
	TypeString     ParamType = "string"
	TypeInt        ParamType = "int"
	TypeFloat      ParamType = "float"
	TypeBool       ParamType = "bool"
	TypeStringList ParamType = "string_list"
)

// ParamSpec declares one parameter of a transform: its type, default,
// required flag, permitted choices, and an optional custom validator.
type ParamSpec struct {
	Type        ParamType
	Description string
	Default     any
	Required    bool

	// Choices restricts the permitted values when non-empty. For string
	// lists, each element must be a member.
	Choices []string

	// Validate is an optional custom check run after the type check.
	Validate func(value any) error
}

// Params holds the concrete parameter values a transform is instantiated
// with. Values are already validated and defaulted by the registry.
type Params map[string]any

// String returns the string value for key, or "" when absent.
func (p Params) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Int returns the int value for key, or 0 when absent.
func (p Params) Int(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns the bool value for key, or false when absent.
func (p Params) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// StringList returns the string-list value for key, or nil when absent.
func (p Params) StringList(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// checkType verifies that value matches the declared type, returning the
// possibly-normalized value. JSON decoding produces float64 for all numbers,
// so integral floats are accepted for int parameters.
func (s ParamSpec) checkType(name string, value any) (any, error) {
	switch s.Type {
	case TypeString:
		if _, ok := value.(string); !ok {
			return nil, typeError(name, s.Type, value)
		}
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return nil, typeError(name, s.Type, value)
		}
	case TypeInt:
		switch v := value.(type) {
		case int:
		case float64:
			if v != math.Trunc(v) {
				return nil, typeError(name, s.Type, value)
			}
			value = int(v)
		default:
			return nil, typeError(name, s.Type, value)
		}
	case TypeFloat:
		switch v := value.(type) {
		case float64:
		case int:
			value = float64(v)
		default:
			return nil, typeError(name, s.Type, value)
		}
	case TypeStringList:
		switch v := value.(type) {
		case []string:
		case []any:
			list := make([]string, len(v))
			for i, item := range v {
				str, ok := item.(string)
				if !ok {
					return nil, errors.New(errors.ErrCodeInvalidParam,
						"parameter %q element %d: expected string, got %T", name, i, item)
				}
				list[i] = str
			}
			value = list
		default:
			return nil, typeError(name, s.Type, value)
		}
	default:
		return nil, errors.New(errors.ErrCodeInternal, "parameter %q has unknown type %q", name, s.Type)
	}
	return value, nil
}

// checkChoices verifies choice membership for scalar strings and every
// element of string lists.
func (s ParamSpec) checkChoices(name string, value any) error {
	if len(s.Choices) == 0 {
		return nil
	}
	check := func(v string) error {
		if !slices.Contains(s.Choices, v) {
			return errors.New(errors.ErrCodeInvalidParam,
				"parameter %q: %q is not one of %v", name, v, s.Choices)
		}
		return nil
	}
	switch v := value.(type) {
	case string:
		return check(v)
	case []string:
		for _, item := range v {
			if err := check(item); err != nil {
				return err
			}
		}
	}
	return nil
}

func typeError(name string, want ParamType, got any) error {
	return errors.New(errors.ErrCodeInvalidParam,
		"parameter %q: expected %s, got %T", name, want, got)
}

// validateParams checks supplied values against the declared specs, fills
// defaults for unset optional parameters, and fails on missing required
// ones. Unknown extra keys are tolerated (and reported via onUnknown) to
// keep forward and backward compatibility across plugin versions.
func validateParams(specs map[string]ParamSpec, supplied Params, onUnknown func(key string)) (Params, error) {
	out := make(Params, len(specs))

	for key, value := range supplied {
		spec, ok := specs[key]
		if !ok {
			if onUnknown != nil {
				onUnknown(key)
			}
			out[key] = value
			continue
		}
		normalized, err := spec.checkType(key, value)
		if err != nil {
			return nil, err
		}
		if err := spec.checkChoices(key, normalized); err != nil {
			return nil, err
		}
		if spec.Validate != nil {
			if err := spec.Validate(normalized); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidParam, err, "parameter %q", key)
			}
		}
		out[key] = normalized
	}

	for key, spec := range specs {
		if _, ok := out[key]; ok {
			continue
		}
		if spec.Required {
			return nil, errors.New(errors.ErrCodeMissingParam, "required parameter %q is missing", key)
		}
		if spec.Default != nil {
			out[key] = spec.Default
		}
	}

	return out, nil
}

// describeParam formats a spec for CLI listings, e.g. "offset (int, required)".
func describeParam(name string, s ParamSpec) string {
	attrs := string(s.Type)
	if s.Required {
		attrs += ", required"
	} else if s.Default != nil {
		attrs += fmt.Sprintf(", default %v", s.Default)
	}
	return fmt.Sprintf("%s (%s)", name, attrs)
}
