// ABOUTME: Optional YAML front matter for form definitions (title override, schema catalog metadata).
// ABOUTME: Absence of front matter is the common case; parsing falls back silently on any error.
package formcontext

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// FrontMatter is the set of metadata overrides a form markdown file may
// declare in a leading "---\n...\n---\n" block. This is a pure addition;
// its absence never changes the title/required-fields/field-types
// extraction contract.
type FrontMatter struct {
	Title string `yaml:"title"`
}

// splitFrontMatter strips a leading YAML front-matter block from raw, if
// present, and returns the parsed metadata alongside the remaining body. Any
// parse failure is treated as "no front matter" rather than an error, since
// front matter is a strict addition over the original markdown contract.
func splitFrontMatter(raw string) (FrontMatter, string) {
	const delim = "---"
	trimmed := strings.TrimLeft(raw, "\n")
	if !strings.HasPrefix(trimmed, delim) {
		return FrontMatter{}, raw
	}

	rest := trimmed[len(delim):]
	// Front matter's opening delimiter must be on its own line.
	if !strings.HasPrefix(rest, "\n") && rest != "" {
		return FrontMatter{}, raw
	}

	idx := strings.Index(rest, "\n"+delim)
	if idx == -1 {
		return FrontMatter{}, raw
	}

	block := rest[:idx]
	afterDelim := rest[idx+len("\n"+delim):]
	// Consume the rest of the closing delimiter's line.
	if nl := strings.IndexByte(afterDelim, '\n'); nl != -1 {
		afterDelim = afterDelim[nl+1:]
	} else {
		afterDelim = ""
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return FrontMatter{}, raw
	}
	return fm, afterDelim
}
