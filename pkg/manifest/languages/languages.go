// Package languages provides the built-in manifest pattern registry.
//
// This package exists to break import cycles: the individual language
// packages (python, golang, etc.) import pkg/manifest, so pkg/manifest
// cannot import them back. Consumers that need the full registry import
// this package instead.
//
// Usage:
//
//	registry := languages.Default()
//	for _, lang := range registry {
//	    fmt.Println(lang.Name)
//	}
package languages

import (
	"github.com/matzehuels/depharvest/pkg/manifest"
	"github.com/matzehuels/depharvest/pkg/manifest/golang"
	"github.com/matzehuels/depharvest/pkg/manifest/javascript"
	"github.com/matzehuels/depharvest/pkg/manifest/php"
	"github.com/matzehuels/depharvest/pkg/manifest/python"
	"github.com/matzehuels/depharvest/pkg/manifest/ruby"
	"github.com/matzehuels/depharvest/pkg/manifest/rust"
)

// Default returns the canonical registry of supported language
// ecosystems. Each call returns a fresh Registry so callers can append
// custom languages without affecting others.
func Default() manifest.Registry {
	return manifest.Registry{
		python.Language,
		golang.Language,
		javascript.Language,
		ruby.Language,
		php.Language,
		rust.Language,
	}
}

// Find returns the built-in language with the given name, or nil.
func Find(name string) *manifest.Language {
	return Default().Find(name)
}
