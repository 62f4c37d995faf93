package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Hard limits applied to every document kind.
const (
	// MaxNameLength is the maximum length, in characters, of a document name.
	MaxNameLength = 100

	// MaxDescriptionLength is the maximum length, in characters, of a description.
	MaxDescriptionLength = 200
)

// ValidateName checks that a document name is safe to use as a prompt name
// or as the path part of a resource URI.
//
// A valid name is non-empty, at most MaxNameLength characters, never contains
// ".." or a backslash, and otherwise consists of ASCII letters, digits, '_',
// '-' and spaces. Forward slashes are accepted only when allowSlashes is true.
func ValidateName(name string, allowSlashes bool) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: exceeds maximum length of %d", ErrInvalidName, MaxNameLength)
	}

	if strings.Contains(name, "..") || strings.ContainsRune(name, '\\') {
		return fmt.Errorf("%w: contains path traversal characters", ErrInvalidName)
	}

	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}

	for _, r := range name {
		if isNameRune(r) || (allowSlashes && r == '/') {
			continue
		}
		if allowSlashes {
			return fmt.Errorf("%w: only alphanumeric, dash, underscore, slash and spaces allowed", ErrInvalidName)
		}
		return fmt.Errorf("%w: only alphanumeric, dash, underscore and spaces allowed", ErrInvalidName)
	}

	return nil
}

// ValidArgumentName reports whether name matches [A-Za-z0-9_]+.
func ValidArgumentName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !isIdentRune(r) {
			return false
		}
	}
	return true
}

func isIdentRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

func isNameRune(r rune) bool {
	return isIdentRune(r) || r == '-' || r == ' '
}
