// Package php provides the composer.json manifest parser.
package php

import (
	"encoding/json"
	"strings"

	"github.com/matzehuels/depharvest/pkg/manifest"
)

// Language describes the PHP manifest patterns.
var Language = &manifest.Language{
	Name: "php",
	Patterns: []manifest.Pattern{
		{Glob: "composer.json", Parse: ParseComposer},
	},
}

// ParseComposer extracts package names from composer.json content.
// Platform requirements (php itself, ext-*, lib-*) are skipped since
// they are not installable packages.
func ParseComposer(content string) ([]string, error) {
	var pkg struct {
		Require    map[string]string `json:"require"`
		RequireDev map[string]string `json:"require-dev"`
	}
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var deps []string
	for _, section := range []map[string]string{pkg.Require, pkg.RequireDev} {
		for name := range section {
			if isPlatform(name) || seen[name] {
				continue
			}
			seen[name] = true
			deps = append(deps, name)
		}
	}
	return deps, nil
}

func isPlatform(name string) bool {
	return name == "php" ||
		strings.HasPrefix(name, "ext-") ||
		strings.HasPrefix(name, "lib-")
}
