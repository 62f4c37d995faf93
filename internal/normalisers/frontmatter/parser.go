package frontmatter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/file-prompts/internal/core/domain"
	"github.com/custodia-labs/file-prompts/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

const (
	// Delimiter opens and closes the header block.
	Delimiter = "---"

	// MaxHeaderLines bounds how many lines, including the opening delimiter,
	// are examined when looking for the closing delimiter.
	MaxHeaderLines = 100
)

// Options controls validation of a single document.
type Options struct {
	// AllowSlashesInName permits '/' in the name field.
	AllowSlashesInName bool

	// ParseArguments enables parsing of the arguments field.
	ParseArguments bool
}

// Parser adapts Parse to the driven.DocumentParser port.
type Parser struct{}

// New creates a new frontmatter parser.
func New() *Parser {
	return &Parser{}
}

// ParseDocument parses raw using the name and argument settings of policy.
func (p *Parser) ParseDocument(raw string, policy domain.LoadPolicy) (*domain.Document, error) {
	return Parse(raw, Options{
		AllowSlashesInName: policy.AllowSlashesInName,
		ParseArguments:     policy.ParseArguments,
	})
}

// Parse splits raw into header and body, decodes the header and validates
// the result. Every failure is a *domain.ParseError.
func Parse(raw string, opts Options) (*domain.Document, error) {
	header, body, err := Split(raw)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if err := yaml.Unmarshal([]byte(header), &fields); err != nil {
		return nil, domain.NewParseError(domain.ErrInvalidHeaderSyntax, err.Error())
	}

	name, ok := requiredString(fields, "name")
	if !ok {
		return nil, domain.NewParseError(domain.ErrMissingRequiredField, "name")
	}
	description, ok := requiredString(fields, "description")
	if !ok {
		return nil, domain.NewParseError(domain.ErrMissingRequiredField, "description")
	}

	if utf8.RuneCountInString(name) > domain.MaxNameLength {
		return nil, domain.NewParseError(domain.ErrFieldTooLong,
			fmt.Sprintf("name exceeds maximum length of %d", domain.MaxNameLength))
	}
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		return nil, domain.NewParseError(domain.ErrFieldTooLong,
			fmt.Sprintf("description exceeds maximum length of %d", domain.MaxDescriptionLength))
	}

	if err := domain.ValidateName(name, opts.AllowSlashesInName); err != nil {
		return nil, domain.NewParseError(domain.ErrInvalidName, strings.TrimPrefix(err.Error(), domain.ErrInvalidName.Error()+": "))
	}

	doc := &domain.Document{
		Name:        name,
		Description: description,
		Content:     body,
	}

	if opts.ParseArguments {
		if rawArgs, present := fields["arguments"]; present && rawArgs != nil {
			args, err := parseArguments(rawArgs)
			if err != nil {
				return nil, err
			}
			doc.Arguments = args
		}
	}

	return doc, nil
}

// Split returns the header block and the body of raw.
//
// Only the first MaxHeaderLines lines are inspected, so the cost of a
// document without a closing delimiter does not grow with its length.
func Split(raw string) (header, body string, err error) {
	first, pos, more := nextLine(raw, 0)
	if strings.TrimSpace(first) != Delimiter {
		return "", "", domain.NewParseError(domain.ErrMissingFrontmatter, "")
	}

	headerStart := pos
	for i := 1; i < MaxHeaderLines && more; i++ {
		lineStart := pos
		var line string
		line, pos, more = nextLine(raw, pos)
		if strings.TrimSpace(line) != Delimiter {
			continue
		}
		if more {
			body = raw[pos:]
		}
		return raw[headerStart:lineStart], body, nil
	}

	return "", "", domain.NewParseError(domain.ErrUnterminatedFrontmatter,
		fmt.Sprintf("not found within the first %d lines", MaxHeaderLines))
}

// nextLine returns the line starting at pos, the offset just past its
// newline, and whether a newline terminated it.
func nextLine(s string, pos int) (line string, next int, more bool) {
	i := strings.IndexByte(s[pos:], '\n')
	if i < 0 {
		return s[pos:], len(s), false
	}
	return s[pos : pos+i], pos + i + 1, true
}

// requiredString returns fields[key] when it is a non-empty string.
func requiredString(fields map[string]any, key string) (string, bool) {
	s, ok := fields[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func parseArguments(raw any) ([]domain.Argument, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, domain.NewParseError(domain.ErrInvalidArgumentSpec, "arguments must be a list")
	}

	args := make([]domain.Argument, 0, len(list))
	seen := make(map[string]bool, len(list))
	for i, item := range list {
		arg, err := parseArgument(i, item)
		if err != nil {
			return nil, err
		}
		if seen[arg.Name] {
			return nil, domain.NewParseError(domain.ErrInvalidArgumentSpec,
				fmt.Sprintf("duplicate argument name %q", arg.Name))
		}
		seen[arg.Name] = true
		args = append(args, arg)
	}

	return args, nil
}

func parseArgument(index int, item any) (domain.Argument, error) {
	fields, ok := item.(map[string]any)
	if !ok {
		return domain.Argument{}, domain.NewParseError(domain.ErrInvalidArgumentSpec,
			fmt.Sprintf("argument %d must be an object with a 'name' field", index))
	}

	name, ok := fields["name"].(string)
	if !ok {
		return domain.Argument{}, domain.NewParseError(domain.ErrInvalidArgumentSpec,
			fmt.Sprintf("argument %d must have a string 'name' field", index))
	}
	if !domain.ValidArgumentName(name) {
		return domain.Argument{}, domain.NewParseError(domain.ErrInvalidArgumentName,
			fmt.Sprintf("%q (only alphanumeric and underscore allowed)", name))
	}

	arg := domain.Argument{Name: name}

	if v, present := fields["description"]; present && v != nil {
		description, ok := v.(string)
		if !ok {
			return domain.Argument{}, domain.NewParseError(domain.ErrInvalidArgumentSpec,
				fmt.Sprintf("description must be a string for %q", name))
		}
		arg.Description = description
	}

	if v, present := fields["required"]; present {
		required, ok := v.(bool)
		if !ok {
			return domain.Argument{}, domain.NewParseError(domain.ErrInvalidArgumentSpec,
				fmt.Sprintf("'required' must be a boolean for %q", name))
		}
		arg.Required = required
	}

	return arg, nil
}
