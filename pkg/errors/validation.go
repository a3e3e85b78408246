package errors

import (
	"regexp"
	"unicode"
)

// identifierRegex matches step ids, provider kinds and property keys.
var identifierRegex = regexp.MustCompile(`^[a-z][a-z0-9_.-]*$`)

// ValidateIdentifier validates a configuration identifier such as a step id
// or provider kind. what names the identifier in error messages.
//
// Validation rules:
//   - Identifier cannot be empty
//   - Maximum length of 64 characters
//   - No control characters
//   - Lowercase letters, digits, '_', '.', '-', starting with a letter
func ValidateIdentifier(what, id string) error {
	if id == "" {
		return New(ErrCodeInvalidConfig, "%s cannot be empty", what)
	}

	const maxLen = 64
	if len(id) > maxLen {
		return New(ErrCodeInvalidConfig, "%s too long (max %d characters)", what, maxLen)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "%s contains invalid control characters", what)
		}
	}

	if !identifierRegex.MatchString(id) {
		return New(ErrCodeInvalidConfig, "invalid %s: %q", what, id)
	}
	return nil
}

// ValidatePropertyKey validates a key for the shared property bag.
// Keys are free-form but must be printable and reasonably short.
func ValidatePropertyKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "property key cannot be empty")
	}
	if len(key) > 128 {
		return New(ErrCodeInvalidInput, "property key too long (max 128 characters)")
	}
	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "property key contains invalid characters")
		}
	}
	return nil
}
