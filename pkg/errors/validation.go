package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxNameLength  = 128
	maxLabelLength = 256
	maxPathLength  = 500
)

// documentNameRegex matches store-safe document names.
var documentNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateDocumentName validates a document name before it is used as a file
// name, a Redis key or a Mongo id.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No path separators or traversal sequences
//   - Letters, digits, '.', '_' and '-' only, starting with a letter or digit
//   - Maximum length of 128 characters
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "document name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "document name too long (max %d characters)", maxNameLength)
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "document name cannot contain path traversal sequences (..)")
	}

	if !documentNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid document name: %q", name)
	}

	return nil
}

// ValidateLabel validates a node label. Labels are free text but must be
// printable and bounded.
func ValidateLabel(label string) error {
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", maxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}

	return nil
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
