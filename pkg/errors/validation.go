package errors

import (
	"slices"
	"strings"
	"unicode"
)

// Maximum lengths accepted for user-supplied graph fields.
const (
	MaxNodeIDLength = 128
	MaxTextLength   = 4096
)

// ValidateNodeID validates a node or edge identifier.
//
// The rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or whitespace
//   - Maximum length of MaxNodeIDLength characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}

	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", MaxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "id contains invalid characters: %q", id)
		}
	}

	return nil
}

// ValidateText validates free-form text such as labels and comments.
// Newlines and tabs are allowed; null bytes and other control characters are not.
func ValidateText(field, text string) error {
	if len(text) > MaxTextLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", field, MaxTextLength)
	}

	for _, r := range text {
		if r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", field)
		}
	}

	return nil
}

// ValidateFilename validates a document filename received over the network.
// It ensures the filename is a simple basename without path components.
func ValidateFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidPath, "filename cannot be a hidden file")
	}

	if strings.Contains(filename, "\x00") {
		return New(ErrCodeInvalidPath, "filename contains invalid characters")
	}

	return nil
}

// ValidateFormat checks that format is one of the keys in valid.
func ValidateFormat(format string, valid map[string]bool) error {
	if !valid[format] {
		names := make([]string, 0, len(valid))
		for k := range valid {
			names = append(names, k)
		}
		slices.Sort(names)
		return New(ErrCodeInvalidFormat, "invalid format: %s (must be one of %s)", format, strings.Join(names, ", "))
	}
	return nil
}

// ValidatePath validates a local document path given on the command line.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if strings.Contains(path, "\x00") {
		return New(ErrCodeInvalidPath, "path contains invalid characters")
	}
	return nil
}
