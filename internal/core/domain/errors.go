package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidName indicates a document name failed the safety rules.
	ErrInvalidName = errors.New("invalid name")

	// ErrMissingArgument indicates a required template argument was not supplied.
	ErrMissingArgument = errors.New("missing required argument")

	// Frontmatter Errors.

	// ErrFrontmatter matches every frontmatter parse failure.
	ErrFrontmatter = errors.New("frontmatter error")

	// ErrMissingFrontmatter indicates the first line is not the "---" delimiter.
	ErrMissingFrontmatter = errors.New("no valid frontmatter found")

	// ErrUnterminatedFrontmatter indicates no closing delimiter within the scan window.
	ErrUnterminatedFrontmatter = errors.New("no closing frontmatter delimiter found")

	// ErrInvalidHeaderSyntax indicates the header block is not a valid YAML mapping.
	ErrInvalidHeaderSyntax = errors.New("invalid YAML in frontmatter")

	// ErrMissingRequiredField indicates name or description is absent, empty or not a string.
	ErrMissingRequiredField = errors.New("frontmatter must include string 'name' and 'description'")

	// ErrFieldTooLong indicates name or description exceeds its length ceiling.
	ErrFieldTooLong = errors.New("field exceeds maximum length")

	// ErrInvalidArgumentName indicates an argument name outside [A-Za-z0-9_]+.
	ErrInvalidArgumentName = errors.New("invalid argument name")

	// ErrInvalidArgumentSpec indicates the arguments field has the wrong shape or types.
	ErrInvalidArgumentSpec = errors.New("invalid argument definition")

	// Loader Errors.

	// ErrDirectoryNotFound indicates the scan root does not exist or cannot be read.
	// This is fatal to a load.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrNotADirectory indicates the scan root exists but is not a directory.
	// This is fatal to a load.
	ErrNotADirectory = errors.New("path is not a directory")

	// ErrNoValidDocuments indicates a load that requires documents produced none.
	ErrNoValidDocuments = errors.New("no valid documents found")

	// ErrSymlinkRejected indicates a directory entry is a symbolic link.
	ErrSymlinkRejected = errors.New("symlinks not allowed")

	// ErrNotRegularFile indicates a directory entry is not a regular file.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrPathEscape indicates a canonical path resolved outside the scan root.
	ErrPathEscape = errors.New("path traversal detected")

	// ErrFileTooLarge indicates a file exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file exceeds size limit")

	// ErrFileChanged indicates a file was replaced between validation and read.
	ErrFileChanged = errors.New("file changed during load")

	// ErrInvalidEncoding indicates file content is not valid UTF-8.
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")

	// ErrUnreadable indicates an I/O failure while reading a file.
	// The underlying OS error is deliberately not attached.
	ErrUnreadable = errors.New("file could not be read")
)

// ParseError describes a frontmatter failure.
// It matches both ErrFrontmatter and its specific Kind via errors.Is.
type ParseError struct {
	// Kind is one of the frontmatter sentinels, or ErrInvalidName.
	Kind error

	// Detail is an optional human-readable elaboration.
	Detail string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

// Unwrap exposes the frontmatter category and the specific kind.
func (e *ParseError) Unwrap() []error {
	return []error{ErrFrontmatter, e.Kind}
}

// NewParseError creates a ParseError of the given kind.
func NewParseError(kind error, detail string) *ParseError {
	return &ParseError{Kind: kind, Detail: detail}
}
