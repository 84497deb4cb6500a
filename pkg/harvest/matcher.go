package harvest

import "github.com/matzehuels/depharvest/pkg/manifest"

// MatchPaths filters paths to those matching at least one pattern in the
// registry, preserving input order. A path matching patterns of several
// languages appears once; language attribution happens at extraction
// time so overlapping patterns each see the file.
func MatchPaths(paths []string, registry manifest.Registry) []string {
	matched := make([]string, 0, len(paths))
	for _, path := range paths {
		if registry.MatchAny(path) {
			matched = append(matched, path)
		}
	}
	return matched
}
