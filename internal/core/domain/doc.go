// Package domain defines the core entities for file-prompts.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A parsed document (name, description, body, argument schema)
//   - Argument: A named placeholder slot inside a document body
//   - LoadedDocument: A Document plus the file it was read from
//   - Collection: The name-keyed result of one directory load
//   - LoadPolicy: The security and parsing rules applied to one load
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
