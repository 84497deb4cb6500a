package php

import (
	"slices"
	"testing"
)

func TestParseComposer(t *testing.T) {
	content := `{
  "name": "acme/app",
  "require": {
    "php": ">=8.1",
    "ext-json": "*",
    "symfony/console": "^6.0",
    "guzzlehttp/guzzle": "^7.5"
  },
  "require-dev": {
    "phpunit/phpunit": "^10.0"
  }
}`
	got, err := ParseComposer(content)
	if err != nil {
		t.Fatalf("ParseComposer: %v", err)
	}

	slices.Sort(got)
	want := []string{"guzzlehttp/guzzle", "phpunit/phpunit", "symfony/console"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseComposerMalformed(t *testing.T) {
	if _, err := ParseComposer("{oops"); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
