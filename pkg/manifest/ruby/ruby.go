// Package ruby provides the Gemfile manifest parser.
package ruby

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/matzehuels/depharvest/pkg/manifest"
)

// Language describes the Ruby manifest patterns.
var Language = &manifest.Language{
	Name: "ruby",
	Patterns: []manifest.Pattern{
		{Glob: "Gemfile", Parse: ParseGemfile},
	},
}

var gemPattern = regexp.MustCompile(`^\s*gem\s+['"]([^'"]+)['"]`)

// ParseGemfile extracts gem names from Gemfile content.
func ParseGemfile(content string) ([]string, error) {
	var gems []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		if match := gemPattern.FindStringSubmatch(line); len(match) > 1 {
			name := match[1]
			if !seen[name] {
				seen[name] = true
				gems = append(gems, name)
			}
		}
	}

	return gems, scanner.Err()
}
