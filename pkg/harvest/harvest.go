// Package harvest implements the manifest harvesting pipeline.
//
// # Architecture
//
// A harvest runs five stages against a remote repository:
//
//  1. List: enumerate every file path in the tree (paginated)
//  2. Detect: optionally pick the primary language from share data
//  3. Match: filter paths against the manifest pattern registry
//  4. Fetch: retrieve matched file contents in bounded batches
//  5. Extract: dispatch each file to every matching parser and merge
//     the resulting names into a language -> set mapping
//
// The hosting API is hidden behind small capability interfaces
// ([TreeLister], [ContentSource], [LanguageSource]) so the pipeline can
// be tested without network access; [NewGitLabSource] adapts a GitLab
// client to all three.
//
// # Usage
//
//	runner := harvest.NewRunner(source, logger)
//	result, err := runner.Run(ctx, harvest.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for lang, names := range result.Dependencies {
//	    fmt.Println(lang, names)
//	}
package harvest

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depharvest/pkg/manifest"
	"github.com/matzehuels/depharvest/pkg/manifest/languages"
)

// MaxBatchSize is the hard cap on paths per content-fetch request,
// matching the hosting API's limit.
const MaxBatchSize = 100

// TreeLister enumerates every file path of the target repository ref.
// The returned slice is in page-arrival order and fully materialized.
type TreeLister interface {
	ListPaths(ctx context.Context) ([]string, error)
}

// ContentSource retrieves raw text for a batch of paths. Paths whose
// content is unavailable (binary, oversized, unresolved) are absent from
// the returned map. Implementations must accept up to [MaxBatchSize]
// paths per call.
type ContentSource interface {
	FetchBatch(ctx context.Context, paths []string) (map[string]string, error)
}

// LanguageSource reports the repository's per-language size shares in
// backend order. Only consulted when Options.AutoScope is set.
type LanguageSource interface {
	LanguageShares(ctx context.Context) ([]LanguageShare, error)
}

// LanguageShare is one entry of a repository's language breakdown.
type LanguageShare struct {
	Name  string
	Share float64
}

// Options configures a harvest run.
type Options struct {
	// Registry maps languages to manifest patterns and parsers.
	// Defaults to the built-in registry.
	Registry manifest.Registry

	// Scope restricts matching to one language's patterns. Empty means
	// all languages. Ignored when AutoScope is set.
	Scope string

	// AutoScope detects the repository's primary language and scopes
	// the harvest to it. Requires the runner's LanguageSource.
	AutoScope bool

	// BatchSize caps paths per content-fetch request. Values outside
	// (0, MaxBatchSize] are clamped to MaxBatchSize.
	BatchSize int

	// Workers bounds concurrent batch processing. Values below 1 mean
	// sequential execution.
	Workers int

	// FailFast aborts the run on the first failed content batch instead
	// of skipping it and keeping partial results.
	FailFast bool

	// Logger receives progress and diagnostic output. Defaults to a
	// discard logger.
	Logger *log.Logger
}

// withDefaults fills unset option fields.
func (o Options) withDefaults() Options {
	if o.Registry == nil {
		o.Registry = languages.Default()
	}
	if o.BatchSize <= 0 || o.BatchSize > MaxBatchSize {
		o.BatchSize = MaxBatchSize
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// DiagnosticKind classifies a diagnostic entry.
type DiagnosticKind string

const (
	// DiagParseFailure records a parser error on one file. The file
	// contributes zero names; the run continues.
	DiagParseFailure DiagnosticKind = "parse_failure"

	// DiagEmptyParse records a parser returning no names.
	DiagEmptyParse DiagnosticKind = "empty_parse"

	// DiagBatchFailure records a skipped content batch (fail-soft mode).
	DiagBatchFailure DiagnosticKind = "batch_failure"
)

// Diagnostic is one non-fatal event recorded during a run.
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	Path     string         `json:"path,omitempty"`
	Language string         `json:"language,omitempty"`
	Pattern  string         `json:"pattern,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// Stats summarizes a run.
type Stats struct {
	PathsListed int           `json:"paths_listed"`
	Matched     int           `json:"matched"`
	Batches     int           `json:"batches"`
	Fetched     int           `json:"fetched"`
	ListTime    time.Duration `json:"list_time"`
	FetchTime   time.Duration `json:"fetch_time"`
	ExtractTime time.Duration `json:"extract_time"`
}

// Result is the outcome of a harvest run.
type Result struct {
	// Dependencies maps language name to the sorted, deduplicated set
	// of dependency names found for it.
	Dependencies map[string][]string `json:"dependencies"`

	// Scope is the language the run was restricted to, if any.
	Scope string `json:"scope,omitempty"`

	// Diagnostics lists non-fatal events (parse failures, skipped
	// batches, empty parses).
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	Stats Stats `json:"stats"`
}

// TotalNames returns the number of distinct names across all languages.
func (r *Result) TotalNames() int {
	n := 0
	for _, names := range r.Dependencies {
		n += len(names)
	}
	return n
}

// emptyResult is the well-formed zero outcome: no languages, no names.
func emptyResult(scope string) *Result {
	return &Result{Dependencies: map[string][]string{}, Scope: scope}
}
