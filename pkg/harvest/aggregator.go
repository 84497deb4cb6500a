package harvest

import (
	"sort"
	"sync"
)

// Record accumulates harvest output across files and batches. It is the
// only state shared between workers, so all access is mutex-guarded.
// The zero value is not usable; call NewRecord.
type Record struct {
	mu    sync.Mutex
	sets  map[string]map[string]struct{}
	diags []Diagnostic
}

// NewRecord returns an empty accumulator.
func NewRecord() *Record {
	return &Record{sets: make(map[string]map[string]struct{})}
}

// Add merges names into the language's set. A language key exists only
// once at least one name was recorded for it, so failed or empty parses
// never produce empty entries.
func (r *Record) Add(language string, names []string) {
	if len(names) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[language]
	if !ok {
		set = make(map[string]struct{})
		r.sets[language] = set
	}
	for _, n := range names {
		set[n] = struct{}{}
	}
}

// Diagnose appends a non-fatal event to the run's diagnostics.
func (r *Record) Diagnose(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, d)
}

// Snapshot returns the accumulated mapping with each language's names
// sorted, plus the recorded diagnostics. Safe to call while workers are
// still adding; the returned data is a copy.
func (r *Record) Snapshot() (map[string][]string, []Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]string, len(r.sets))
	for lang, set := range r.sets {
		names := make([]string, 0, len(set))
		for n := range set {
			names = append(names, n)
		}
		sort.Strings(names)
		out[lang] = names
	}
	diags := make([]Diagnostic, len(r.diags))
	copy(diags, r.diags)
	return out, diags
}
