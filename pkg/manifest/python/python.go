// Package python provides manifest parsers for the Python ecosystem:
// requirements files, PEP 621 pyproject.toml, and Pipfile.
package python

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depharvest/pkg/manifest"
)

// Language describes the Python manifest patterns.
var Language = &manifest.Language{
	Name: "python",
	Patterns: []manifest.Pattern{
		{Glob: "requirements*.txt", Parse: ParseRequirements},
		{Glob: "pyproject.toml", Parse: ParsePyproject},
		{Glob: "Pipfile", Parse: ParsePipfile},
	},
}

var depNameRE = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)`)

// ParseRequirements extracts package names from requirements.txt content.
// Comments, pip options, and URL requirements are skipped; version
// specifiers and extras are stripped.
func ParseRequirements(content string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}
		if m := depNameRE.FindStringSubmatch(line); len(m) > 1 {
			name := Normalize(m[1])
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
	}

	return result, scanner.Err()
}

// pyprojectFile is the subset of PEP 621 metadata we read.
type pyprojectFile struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
}

// ParsePyproject extracts the [project] dependencies of a PEP 621
// pyproject.toml. Poetry-style dependency tables are out of scope.
func ParsePyproject(content string) ([]string, error) {
	var pp pyprojectFile
	if err := toml.Unmarshal([]byte(content), &pp); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var result []string
	for _, spec := range pp.Project.Dependencies {
		name := Normalize(stripSpecifier(spec))
		if name != "" && !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	return result, nil
}

// pipfileFile is the subset of Pipfile we read.
type pipfileFile struct {
	Packages    map[string]toml.Primitive `toml:"packages"`
	DevPackages map[string]toml.Primitive `toml:"dev-packages"`
}

// ParsePipfile extracts package names from [packages] and [dev-packages].
func ParsePipfile(content string) ([]string, error) {
	var pf pipfileFile
	if err := toml.Unmarshal([]byte(content), &pf); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var result []string
	for _, section := range []map[string]toml.Primitive{pf.Packages, pf.DevPackages} {
		for name := range section {
			n := Normalize(name)
			if n != "" && !seen[n] {
				seen[n] = true
				result = append(result, n)
			}
		}
	}
	return result, nil
}

// stripSpecifier reduces a PEP 508 requirement to its bare package name:
// extras ("inboard[fastapi]"), version specifiers ("requests>=2.0"), and
// environment markers are removed.
func stripSpecifier(spec string) string {
	name := strings.TrimSpace(spec)
	if idx := strings.Index(name, "["); idx != -1 {
		name = name[:idx]
	}
	for _, op := range []string{">", "<", "=", "!", "~", "@", ";", " "} {
		if idx := strings.Index(name, op); idx != -1 {
			name = name[:idx]
		}
	}
	return strings.TrimSpace(name)
}

// Normalize converts a package name to its canonical form following
// PEP 503: lowercase with underscores replaced by hyphens.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}
