package render

import (
	"strings"
	"testing"
)

func TestToDOT(t *testing.T) {
	dot := ToDOT(map[string][]string{
		"python": {"flask", "requests"},
		"go":     {"example.com/a/b"},
	})

	for _, want := range []string{
		`"lang:python"`,
		`"lang:go"`,
		`"dep:flask"`,
		`"lang:python" -> "dep:flask";`,
		`"lang:go" -> "dep:example.com/a/b";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %s:\n%s", want, dot)
		}
	}
}

func TestToDOTSharedDependency(t *testing.T) {
	dot := ToDOT(map[string][]string{
		"python":     {"protobuf"},
		"javascript": {"protobuf"},
	})
	if strings.Count(dot, `"dep:protobuf" [label="protobuf"];`) != 1 {
		t.Errorf("shared name should yield a single node:\n%s", dot)
	}
	if strings.Count(dot, `-> "dep:protobuf";`) != 2 {
		t.Errorf("shared name should have one edge per language:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(nil)
	if !strings.HasPrefix(dot, "digraph dependencies {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("empty input should still be a valid graph:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00">`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
}
