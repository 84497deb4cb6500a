// Package javascript provides the package.json manifest parser.
package javascript

import (
	"encoding/json"

	"github.com/matzehuels/depharvest/pkg/manifest"
)

// Language describes the JavaScript manifest patterns.
var Language = &manifest.Language{
	Name: "javascript",
	Patterns: []manifest.Pattern{
		{Glob: "package.json", Parse: ParsePackageJSON},
	},
}

// ParsePackageJSON extracts dependency names from package.json content.
// Runtime and development dependencies are both included.
func ParsePackageJSON(content string) ([]string, error) {
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var deps []string
	for _, section := range []map[string]string{pkg.Dependencies, pkg.DevDependencies} {
		for name := range section {
			if !seen[name] {
				seen[name] = true
				deps = append(deps, name)
			}
		}
	}
	return deps, nil
}
