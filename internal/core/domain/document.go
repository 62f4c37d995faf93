package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Document is one successfully parsed document.
// Name and Description are always present and within the length limits.
type Document struct {
	// Name is the validated, unique-per-load identifier.
	Name string `json:"name"`

	// Description is a short human-readable summary.
	Description string `json:"description"`

	// Content is the body following the frontmatter, returned verbatim.
	// It is never sanitised; consumers must treat it as untrusted.
	Content string `json:"content"`

	// Arguments is the ordered argument schema. It is nil unless argument
	// parsing was requested and the header declared an arguments field.
	Arguments []Argument `json:"arguments,omitempty"`
}

// Argument is a named template slot inside a document body.
type Argument struct {
	// Name matches [A-Za-z0-9_]+ and is referenced in content as {Name}.
	Name string `json:"name"`

	// Description is optional; empty means not provided.
	Description string `json:"description,omitempty"`

	// Required marks arguments the caller must supply.
	Required bool `json:"required"`
}

// Placeholder returns the token substituted for this argument.
func (a Argument) Placeholder() string {
	return "{" + a.Name + "}"
}

// MissingArguments returns the names of required arguments absent from values.
func (d *Document) MissingArguments(values map[string]string) []string {
	var missing []string
	for _, arg := range d.Arguments {
		if !arg.Required {
			continue
		}
		if _, ok := values[arg.Name]; !ok {
			missing = append(missing, arg.Name)
		}
	}
	return missing
}

// Render substitutes {name} placeholders for declared arguments with values.
//
// Substitution is a single literal pass: values are not re-scanned, so a
// value containing "{other}" is inserted as-is. Placeholders of undeclared
// or unsupplied arguments are left untouched. A missing required argument
// fails with ErrMissingArgument.
func (d *Document) Render(values map[string]string) (string, error) {
	if missing := d.MissingArguments(values); len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, strings.Join(missing, ", "))
	}

	var pairs []string
	for _, arg := range d.Arguments {
		if v, ok := values[arg.Name]; ok {
			pairs = append(pairs, arg.Placeholder(), v)
		}
	}
	if len(pairs) == 0 {
		return d.Content, nil
	}

	return strings.NewReplacer(pairs...).Replace(d.Content), nil
}

// LoadedDocument pairs a Document with the absolute path it was read from.
type LoadedDocument struct {
	Document
	SourcePath string `json:"source_path"`
}

// Collection maps document name to the loaded document.
// Keys are unique; a later file with the same name replaces an earlier one.
type Collection map[string]LoadedDocument

// Names returns the document names in sorted order.
func (c Collection) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sorted returns the documents ordered by name.
func (c Collection) Sorted() []LoadedDocument {
	docs := make([]LoadedDocument, 0, len(c))
	for _, name := range c.Names() {
		docs = append(docs, c[name])
	}
	return docs
}
