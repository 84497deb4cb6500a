// Package rust provides the Cargo.toml manifest parser.
package rust

import (
	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depharvest/pkg/manifest"
)

// Language describes the Rust manifest patterns.
var Language = &manifest.Language{
	Name: "rust",
	Patterns: []manifest.Pattern{
		{Glob: "Cargo.toml", Parse: ParseCargo},
	},
}

// cargoFile is the subset of Cargo.toml we read. Dependency values can be
// version strings or tables, so toml.Primitive accepts both.
type cargoFile struct {
	Dependencies      map[string]toml.Primitive `toml:"dependencies"`
	DevDependencies   map[string]toml.Primitive `toml:"dev-dependencies"`
	BuildDependencies map[string]toml.Primitive `toml:"build-dependencies"`
}

// ParseCargo extracts crate names from Cargo.toml content.
func ParseCargo(content string) ([]string, error) {
	var cargo cargoFile
	if err := toml.Unmarshal([]byte(content), &cargo); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var deps []string
	for _, section := range []map[string]toml.Primitive{
		cargo.Dependencies, cargo.DevDependencies, cargo.BuildDependencies,
	} {
		for name := range section {
			if !seen[name] {
				seen[name] = true
				deps = append(deps, name)
			}
		}
	}
	return deps, nil
}
