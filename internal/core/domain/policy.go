package domain

import "strings"

// DefaultMaxFileSize is the default per-file size limit (10 MiB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// DocumentKind identifies what a loaded directory is used for.
type DocumentKind string

const (
	// KindPrompt documents become parameterised prompts.
	KindPrompt DocumentKind = "prompt"

	// KindResource documents become read-only resources addressed by name.
	KindResource DocumentKind = "resource"
)

// String returns the kind name used in log and error messages.
func (k DocumentKind) String() string {
	if k == "" {
		return "document"
	}
	return string(k)
}

// Title returns the kind name with an upper-case first letter.
func (k DocumentKind) Title() string {
	s := k.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// LoadPolicy holds the rules applied to a single directory load.
type LoadPolicy struct {
	// Kind is used for log and error messages.
	Kind DocumentKind

	// Extensions lists accepted filename suffixes (".md") or glob patterns ("*.prompt.md").
	Extensions []string

	// AllowSlashesInName permits '/' in document names.
	AllowSlashesInName bool

	// MaxFileSize is the largest accepted file in bytes. Zero means DefaultMaxFileSize.
	MaxFileSize int64

	// ParseArguments enables parsing of the arguments header field.
	ParseArguments bool

	// RequireDocuments makes an empty result fail with ErrNoValidDocuments.
	RequireDocuments bool
}

// EffectiveMaxFileSize returns MaxFileSize, or the default when unset.
func (p LoadPolicy) EffectiveMaxFileSize() int64 {
	if p.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return p.MaxFileSize
}

// PromptPolicy returns the policy for prompt directories: markdown files,
// no slashes in names, arguments parsed and at least one document required.
func PromptPolicy() LoadPolicy {
	return LoadPolicy{
		Kind:             KindPrompt,
		Extensions:       []string{".md"},
		MaxFileSize:      DefaultMaxFileSize,
		ParseArguments:   true,
		RequireDocuments: true,
	}
}

// ResourcePolicy returns the policy for resource directories: markdown files,
// slashes allowed for URI-style names, no argument parsing, may be empty.
func ResourcePolicy() LoadPolicy {
	return LoadPolicy{
		Kind:               KindResource,
		Extensions:         []string{".md"},
		AllowSlashesInName: true,
		MaxFileSize:        DefaultMaxFileSize,
	}
}
