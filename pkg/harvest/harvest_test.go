package harvest

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/matzehuels/depharvest/pkg/errors"
	"github.com/matzehuels/depharvest/pkg/manifest"
	"github.com/matzehuels/depharvest/pkg/manifest/languages"
)

// fakeSource implements TreeLister, ContentSource, and LanguageSource
// from in-memory data.
type fakeSource struct {
	mu     sync.Mutex
	paths  []string
	files  map[string]string
	shares []LanguageShare

	listErr  error
	fetchErr error

	fetchCalls int
	batchSizes []int
}

func (f *fakeSource) ListPaths(context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.paths, nil
}

func (f *fakeSource) FetchBatch(_ context.Context, batch []string) (map[string]string, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.batchSizes = append(f.batchSizes, len(batch))
	f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make(map[string]string)
	for _, p := range batch {
		if content, ok := f.files[p]; ok {
			out[p] = content
		}
	}
	return out, nil
}

func (f *fakeSource) LanguageShares(context.Context) ([]LanguageShare, error) {
	return f.shares, nil
}

func TestMatchPaths(t *testing.T) {
	reg := languages.Default()
	paths := []string{
		"README.md",
		"requirements.txt",
		"pkg/go.mod",
		"docs/setup.py",
		"web/package.json",
		"Gemfile",
	}
	got := MatchPaths(paths, reg)
	want := []string{"requirements.txt", "pkg/go.mod", "web/package.json", "Gemfile"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchPaths = %v, want %v", got, want)
	}

	// Filtering an already-filtered list changes nothing, order included.
	again := MatchPaths(got, reg)
	if !reflect.DeepEqual(again, got) {
		t.Errorf("MatchPaths reapplied = %v, want %v", again, got)
	}
}

func TestMatchPathsScoped(t *testing.T) {
	reg := languages.Default().Scoped("python")
	paths := []string{"requirements.txt", "go.mod", "package.json"}
	got := MatchPaths(paths, reg)
	want := []string{"requirements.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchPaths scoped = %v, want %v", got, want)
	}
}

func TestPrimaryLanguage(t *testing.T) {
	tests := []struct {
		name   string
		shares []LanguageShare
		want   string
		ok     bool
	}{
		{"empty", nil, "", false},
		{"single", []LanguageShare{{"Go", 100}}, "Go", true},
		{"largest wins", []LanguageShare{{"Ruby", 30}, {"Go", 60}, {"Shell", 10}}, "Go", true},
		{"tie keeps first", []LanguageShare{{"Ruby", 45}, {"Go", 45}, {"Shell", 10}}, "Ruby", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PrimaryLanguage(tt.shares)
			if got != tt.want || ok != tt.ok {
				t.Errorf("PrimaryLanguage = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	r := NewRecord()
	r.Add("python", []string{"flask", "requests"})
	r.Add("python", []string{"requests", "click"})
	r.Add("go", []string{"example.com/a/b"})
	r.Add("ruby", nil)

	deps, _ := r.Snapshot()
	want := map[string][]string{
		"python": {"click", "flask", "requests"},
		"go":     {"example.com/a/b"},
	}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("Snapshot = %v, want %v", deps, want)
	}
	if _, ok := deps["ruby"]; ok {
		t.Error("empty Add should not create a language entry")
	}
}

func TestChunk(t *testing.T) {
	paths := make([]string, 101)
	for i := range paths {
		paths[i] = fmt.Sprintf("p%d", i)
	}
	batches := chunk(paths, 100)
	if len(batches) != 2 {
		t.Fatalf("chunk(101, 100) = %d batches, want 2", len(batches))
	}
	if len(batches[0]) != 100 || len(batches[1]) != 1 {
		t.Errorf("batch sizes = %d, %d, want 100, 1", len(batches[0]), len(batches[1]))
	}
	if got := chunk(nil, 100); got != nil {
		t.Errorf("chunk(nil) = %v, want nil", got)
	}
}

func TestRunMixedRepository(t *testing.T) {
	src := &fakeSource{
		paths: []string{"requirements.txt", "pkg/go.mod", "README.md"},
		files: map[string]string{
			"requirements.txt": "flask==2.0\nrequests>=1.0\n",
			"pkg/go.mod":       "module x\n\nrequire example.com/a/b v1.0.0\n",
			"README.md":        "# readme\n",
		},
	}
	result, err := NewRunner(src, "group/repo").Run(t.Context(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := map[string][]string{
		"python": {"flask", "requests"},
		"go":     {"example.com/a/b"},
	}
	if !reflect.DeepEqual(result.Dependencies, want) {
		t.Errorf("Dependencies = %v, want %v", result.Dependencies, want)
	}
	if result.Stats.PathsListed != 3 || result.Stats.Matched != 2 {
		t.Errorf("Stats = %+v, want 3 listed, 2 matched", result.Stats)
	}
}

func TestRunEmptyTreeSkipsFetch(t *testing.T) {
	src := &fakeSource{}
	result, err := NewRunner(src, "group/repo").Run(t.Context(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Dependencies) != 0 {
		t.Errorf("Dependencies = %v, want empty", result.Dependencies)
	}
	if src.fetchCalls != 0 {
		t.Errorf("fetchCalls = %d, want 0", src.fetchCalls)
	}
}

func TestRunNoMatchesSkipsFetch(t *testing.T) {
	src := &fakeSource{paths: []string{"README.md", "main.c"}}
	result, err := NewRunner(src, "group/repo").Run(t.Context(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Dependencies) != 0 || src.fetchCalls != 0 {
		t.Errorf("got %v deps, %d fetches, want none", result.Dependencies, src.fetchCalls)
	}
}

func TestRunBatching(t *testing.T) {
	paths := make([]string, 101)
	files := make(map[string]string, 101)
	for i := range paths {
		p := fmt.Sprintf("mod%d/go.mod", i)
		paths[i] = p
		files[p] = fmt.Sprintf("module m%d\n\nrequire example.com/dep%d v1.0.0\n", i, i)
	}
	src := &fakeSource{paths: paths, files: files}
	result, err := NewRunner(src, "group/repo").Run(t.Context(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if src.fetchCalls != 2 {
		t.Fatalf("fetchCalls = %d, want 2", src.fetchCalls)
	}
	if src.batchSizes[0] != 100 || src.batchSizes[1] != 1 {
		t.Errorf("batch sizes = %v, want [100 1]", src.batchSizes)
	}
	if len(result.Dependencies["go"]) != 101 {
		t.Errorf("go deps = %d, want 101", len(result.Dependencies["go"]))
	}
}

func TestRunParseFailureIsolation(t *testing.T) {
	src := &fakeSource{
		paths: []string{"package.json", "requirements.txt"},
		files: map[string]string{
			"package.json":     "{not json",
			"requirements.txt": "flask\n",
		},
	}
	result, err := NewRunner(src, "group/repo").Run(t.Context(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := result.Dependencies["javascript"]; ok {
		t.Error("failed parse should contribute no names")
	}
	if !reflect.DeepEqual(result.Dependencies["python"], []string{"flask"}) {
		t.Errorf("python deps = %v, want [flask]", result.Dependencies["python"])
	}
	found := false
	for _, d := range result.Diagnostics {
		if d.Kind == DiagParseFailure && d.Path == "package.json" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing parse_failure diagnostic, got %v", result.Diagnostics)
	}
}

func TestRunMultiLanguageOverlap(t *testing.T) {
	alpha := &manifest.Language{Name: "alpha", Patterns: []manifest.Pattern{{
		Glob:  "deps.txt",
		Parse: func(string) ([]string, error) { return []string{"from-alpha"}, nil },
	}}}
	beta := &manifest.Language{Name: "beta", Patterns: []manifest.Pattern{{
		Glob:  "deps.txt",
		Parse: func(string) ([]string, error) { return []string{"from-beta"}, nil },
	}}}
	src := &fakeSource{
		paths: []string{"deps.txt"},
		files: map[string]string{"deps.txt": "whatever"},
	}
	result, err := NewRunner(src, "group/repo").Run(t.Context(), Options{
		Registry: manifest.Registry{alpha, beta},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := map[string][]string{
		"alpha": {"from-alpha"},
		"beta":  {"from-beta"},
	}
	if !reflect.DeepEqual(result.Dependencies, want) {
		t.Errorf("Dependencies = %v, want %v", result.Dependencies, want)
	}
	if src.fetchCalls != 1 {
		t.Errorf("fetchCalls = %d, want 1 (shared path fetched once)", src.fetchCalls)
	}
}

func TestRunBatchFailureSoft(t *testing.T) {
	src := &fakeSource{
		paths:    []string{"go.mod"},
		fetchErr: fmt.Errorf("boom"),
	}
	result, err := NewRunner(src, "group/repo").Run(t.Context(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Dependencies) != 0 {
		t.Errorf("Dependencies = %v, want empty", result.Dependencies)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Kind != DiagBatchFailure {
		t.Errorf("Diagnostics = %v, want one batch_failure", result.Diagnostics)
	}
}

func TestRunBatchFailureFast(t *testing.T) {
	src := &fakeSource{
		paths:    []string{"go.mod"},
		fetchErr: fmt.Errorf("boom"),
	}
	_, err := NewRunner(src, "group/repo").Run(t.Context(), Options{FailFast: true})
	if err == nil {
		t.Fatal("expected error in fail-fast mode")
	}
	if errors.GetCode(err) != errors.ErrCodeTransport {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeTransport)
	}
}

func TestRunAutoScope(t *testing.T) {
	src := &fakeSource{
		paths: []string{"requirements.txt", "go.mod"},
		files: map[string]string{
			"requirements.txt": "flask\n",
			"go.mod":           "module x\n\nrequire example.com/a/b v1.0.0\n",
		},
		shares: []LanguageShare{{"Python", 70}, {"Go", 30}},
	}
	result, err := NewRunner(src, "group/repo").Run(t.Context(), Options{AutoScope: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := result.Dependencies["go"]; ok {
		t.Error("auto scope should exclude non-primary languages")
	}
	if !reflect.DeepEqual(result.Dependencies["python"], []string{"flask"}) {
		t.Errorf("python deps = %v, want [flask]", result.Dependencies["python"])
	}
	if result.Scope != "python" {
		t.Errorf("Scope = %q, want python", result.Scope)
	}
}

func TestRunAutoScopeUnsupportedPrimary(t *testing.T) {
	src := &fakeSource{
		paths:  []string{"requirements.txt"},
		files:  map[string]string{"requirements.txt": "flask\n"},
		shares: []LanguageShare{{"C", 80}, {"Python", 20}},
	}
	result, err := NewRunner(src, "group/repo").Run(t.Context(), Options{AutoScope: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Dependencies) != 0 {
		t.Errorf("Dependencies = %v, want empty", result.Dependencies)
	}
	if src.fetchCalls != 0 {
		t.Errorf("fetchCalls = %d, want 0", src.fetchCalls)
	}
}

func TestRunScopeCanonicalName(t *testing.T) {
	src := &fakeSource{
		paths: []string{"requirements.txt"},
		files: map[string]string{"requirements.txt": "flask\n"},
	}
	result, err := NewRunner(src, "group/repo").Run(t.Context(), Options{Scope: "Python"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Scope != "python" {
		t.Errorf("Scope = %q, want python", result.Scope)
	}
	if !reflect.DeepEqual(result.Dependencies["python"], []string{"flask"}) {
		t.Errorf("python deps = %v, want [flask]", result.Dependencies["python"])
	}
}

func TestRunAutoScopeNoLanguages(t *testing.T) {
	src := &fakeSource{paths: []string{"requirements.txt"}}
	result, err := NewRunner(src, "group/repo").Run(t.Context(), Options{AutoScope: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Dependencies) != 0 || src.fetchCalls != 0 {
		t.Errorf("got %v deps, %d fetches, want none", result.Dependencies, src.fetchCalls)
	}
}

func TestRunUnknownScope(t *testing.T) {
	src := &fakeSource{paths: []string{"go.mod"}}
	_, err := NewRunner(src, "group/repo").Run(t.Context(), Options{Scope: "cobol"})
	if err == nil {
		t.Fatal("expected error for unsupported language")
	}
	if errors.GetCode(err) != errors.ErrCodeInvalidLanguage {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidLanguage)
	}
}

func TestRunWorkers(t *testing.T) {
	paths := make([]string, 250)
	files := make(map[string]string, 250)
	for i := range paths {
		p := fmt.Sprintf("m%d/requirements.txt", i)
		paths[i] = p
		files[p] = fmt.Sprintf("pkg%d\n", i)
	}
	src := &fakeSource{paths: paths, files: files}
	result, err := NewRunner(src, "group/repo").Run(t.Context(), Options{Workers: 4})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Dependencies["python"]) != 250 {
		t.Errorf("python deps = %d, want 250", len(result.Dependencies["python"]))
	}
	if src.fetchCalls != 3 {
		t.Errorf("fetchCalls = %d, want 3", src.fetchCalls)
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://gitlab.com/group/repo", "https://gitlab.com"},
		{"http://git.corp.example/team/app", "http://git.corp.example"},
		{"group/repo", "https://gitlab.com"},
	}
	for _, tt := range tests {
		got, err := BaseURL(tt.in)
		if err != nil {
			t.Errorf("BaseURL(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("BaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
