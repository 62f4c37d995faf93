// Package frontmatter parses documents made of a YAML header delimited by
// "---" lines followed by a free-text body.
//
// Header grammar: the first line must be "---". The header ends at the next
// line that is "---" once surrounding whitespace is trimmed, searched within
// the first MaxHeaderLines lines only. The lines in between are decoded with
// gopkg.in/yaml.v3 and must form a mapping. Recognised keys are:
//
//	name:        string, required
//	description: string, required
//	arguments:   list of {name: string, description?: string, required?: bool}
//
// Unknown keys are ignored. The body is everything after the closing
// delimiter line and is returned without modification.
package frontmatter
