package javascript

import (
	"slices"
	"testing"
)

func TestParsePackageJSON(t *testing.T) {
	content := `{
  "name": "myapp",
  "version": "1.0.0",
  "dependencies": {
    "express": "^4.18.0",
    "lodash": "~4.17.21"
  },
  "devDependencies": {
    "jest": "^29.0.0"
  }
}`
	got, err := ParsePackageJSON(content)
	if err != nil {
		t.Fatalf("ParsePackageJSON: %v", err)
	}

	slices.Sort(got)
	want := []string{"express", "jest", "lodash"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParsePackageJSONNoDeps(t *testing.T) {
	got, err := ParsePackageJSON(`{"name": "empty"}`)
	if err != nil {
		t.Fatalf("ParsePackageJSON: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestParsePackageJSONMalformed(t *testing.T) {
	if _, err := ParsePackageJSON("{not json"); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
