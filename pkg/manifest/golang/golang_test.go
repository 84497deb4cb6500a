package golang

import (
	"slices"
	"testing"
)

func TestParseGoMod(t *testing.T) {
	content := `module example.com/myapp

go 1.22

require (
	github.com/spf13/cobra v1.8.0
	github.com/charmbracelet/log v0.4.0 // structured logging
	github.com/stretchr/testify v1.8.0 // indirect
)

require golang.org/x/sync v0.7.0
`
	got, err := ParseGoMod(content)
	if err != nil {
		t.Fatalf("ParseGoMod: %v", err)
	}

	want := []string{
		"github.com/spf13/cobra",
		"github.com/charmbracelet/log",
		"golang.org/x/sync",
	}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseGoModSpecScenario(t *testing.T) {
	got, err := ParseGoMod("module x\nrequire example.com/a/b v1.0.0\n")
	if err != nil {
		t.Fatalf("ParseGoMod: %v", err)
	}
	if !slices.Equal(got, []string{"example.com/a/b"}) {
		t.Errorf("got %v", got)
	}
}

func TestParseGoModNoRequires(t *testing.T) {
	got, err := ParseGoMod("module example.com/empty\n\ngo 1.22\n")
	if err != nil {
		t.Fatalf("ParseGoMod: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}
