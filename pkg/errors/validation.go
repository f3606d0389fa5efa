package errors

import (
	"regexp"
	"unicode"
)

// transformNameRegex matches valid transform names: lowercase words
// separated by single hyphens (e.g., "heading-offset").
var transformNameRegex = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// ValidateTransformName validates a transform name for registry use.
// Names are lowercase, hyphen-separated identifiers up to 64 characters.
func ValidateTransformName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "transform name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "transform name too long (max 64 characters)")
	}
	if !transformNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid transform name: %q", name)
	}
	return nil
}

// ValidateOutputPath validates a user-supplied output file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}
	return nil
}
