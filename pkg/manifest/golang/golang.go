// Package golang provides the go.mod manifest parser.
package golang

import (
	"bufio"
	"strings"

	"github.com/matzehuels/depharvest/pkg/manifest"
)

// Language describes the Go manifest patterns.
var Language = &manifest.Language{
	Name: "go",
	Patterns: []manifest.Pattern{
		{Glob: "go.mod", Parse: ParseGoMod},
	},
}

// ParseGoMod extracts direct dependency module paths from go.mod content.
// Indirect dependencies are skipped.
func ParseGoMod(content string) ([]string, error) {
	seen := make(map[string]bool)
	var deps []string
	inRequire := false

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "require (") || line == "require(" {
			inRequire = true
			continue
		}
		if inRequire && line == ")" {
			inRequire = false
			continue
		}

		// Single-line require
		if strings.HasPrefix(line, "require ") && !strings.Contains(line, "(") {
			line = strings.TrimPrefix(line, "require ")
		} else if !inRequire {
			continue
		}

		if dep := parseRequireLine(line); dep != "" && !seen[dep] {
			seen[dep] = true
			deps = append(deps, dep)
		}
	}

	return deps, scanner.Err()
}

func parseRequireLine(line string) string {
	// Skip indirect dependencies
	if strings.Contains(line, "// indirect") {
		return ""
	}

	// Remove inline comments
	if idx := strings.Index(line, "//"); idx != -1 {
		line = line[:idx]
	}

	fields := strings.Fields(line)
	if len(fields) >= 1 {
		return fields[0]
	}
	return ""
}
