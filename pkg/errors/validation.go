package errors

import (
	"slices"
	"strings"
	"unicode"
)

// MaxGraphNameLength bounds saved graph names.
const MaxGraphNameLength = 128

// ValidateGraphName validates a saved graph name.
//
// Validation rules:
//   - Name cannot be empty or only whitespace
//   - Maximum length of MaxGraphNameLength bytes
//   - No control characters
//   - No path separators, since names become download file names
func ValidateGraphName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "graph name cannot be empty")
	}
	if len(name) > MaxGraphNameLength {
		return New(ErrCodeInvalidName, "graph name too long (max %d characters)", MaxGraphNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "graph name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidName, "graph name cannot contain path separators")
	}
	return nil
}

// ValidateFormat checks format against the allowed set, case-sensitively.
func ValidateFormat(format string, allowed ...string) error {
	if slices.Contains(allowed, format) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}

// ValidateAlgorithm checks an algorithm name against the allowed set.
func ValidateAlgorithm(name string, allowed ...string) error {
	if slices.Contains(allowed, name) {
		return nil
	}
	return New(ErrCodeInvalidAlgorithm, "unknown algorithm %q (want one of %s)", name, strings.Join(allowed, ", "))
}
