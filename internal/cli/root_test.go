package cli

import (
	"testing"
)

func TestSetVersion(t *testing.T) {
	SetVersion("1.0.0", "abc123", "2024-01-01")

	if version != "1.0.0" {
		t.Errorf("version = %q, want %q", version, "1.0.0")
	}
	if commit != "abc123" {
		t.Errorf("commit = %q, want %q", commit, "abc123")
	}
	if date != "2024-01-01" {
		t.Errorf("date = %q, want %q", date, "2024-01-01")
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if dir == "" {
		t.Error("cacheDir returned empty path")
	}
}

func TestSupportedLanguages(t *testing.T) {
	langs := supportedLanguages()
	if len(langs) == 0 {
		t.Fatal("no supported languages")
	}
	found := map[string]bool{}
	for _, l := range langs {
		found[l] = true
	}
	for _, want := range []string{"python", "go", "javascript", "ruby", "php", "rust"} {
		if !found[want] {
			t.Errorf("missing language %s", want)
		}
	}
}
