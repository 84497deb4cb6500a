// Package manifest defines the pattern registry that maps languages to
// manifest glob patterns and their parsers.
//
// The registry is the sole extension point for supporting additional
// languages or manifest formats: the harvest pipeline never hardcodes
// language-specific parsing. Each language subpackage (python, golang,
// javascript, ...) exports a Language value; pkg/manifest/languages
// assembles the built-in registry.
//
// Parsers are pure functions from file content to dependency names. They
// receive no path and perform no I/O, so they can be unit-tested without
// any network or filesystem.
package manifest

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ParseFunc extracts dependency names from manifest file content.
// The returned names are free-form strings; the parser is the sole
// authority on the manifest's syntax.
type ParseFunc func(content string) ([]string, error)

// Pattern ties a glob pattern to the parser for files matching it.
type Pattern struct {
	// Glob is a shell-style pattern (*, ?, character classes; doublestar
	// patterns like **/*.txt also work). A pattern without a slash
	// matches against the path's basename as well as the full path, so
	// "go.mod" matches "pkg/go.mod".
	Glob string

	// Parse extracts dependency names from a matching file's content.
	Parse ParseFunc
}

// Match reports whether p's glob matches the given repository-relative
// path. Invalid patterns never match.
func (p Pattern) Match(filePath string) bool {
	if ok, err := doublestar.Match(p.Glob, filePath); err == nil && ok {
		return true
	}
	if strings.Contains(p.Glob, "/") {
		return false
	}
	ok, err := doublestar.Match(p.Glob, path.Base(filePath))
	return err == nil && ok
}

// Language groups the manifest patterns of one language ecosystem.
type Language struct {
	// Name is the language identifier (e.g., "python", "go").
	Name string

	// Patterns are the manifest file patterns for this language.
	Patterns []Pattern
}

// Matches returns every pattern of l that matches filePath.
func (l *Language) Matches(filePath string) []Pattern {
	var out []Pattern
	for _, p := range l.Patterns {
		if p.Match(filePath) {
			out = append(out, p)
		}
	}
	return out
}

// Registry is an ordered collection of languages.
type Registry []*Language

// Find returns the language with the given name (case-insensitive),
// or nil if not found. Case-insensitivity matters because hosting APIs
// report display names ("Go", "JavaScript") while registries use
// lowercase identifiers.
func (r Registry) Find(name string) *Language {
	for _, l := range r {
		if strings.EqualFold(l.Name, name) {
			return l
		}
	}
	return nil
}

// Scoped returns the candidate languages for a harvest. An empty scope
// yields the full registry; otherwise only the named language's patterns
// are consulted, so manifests of other languages stay invisible.
func (r Registry) Scoped(scope string) Registry {
	if scope == "" {
		return r
	}
	if l := r.Find(scope); l != nil {
		return Registry{l}
	}
	return nil
}

// MatchAny reports whether any pattern in the registry matches filePath.
func (r Registry) MatchAny(filePath string) bool {
	for _, l := range r {
		for _, p := range l.Patterns {
			if p.Match(filePath) {
				return true
			}
		}
	}
	return false
}
