package harvest

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/depharvest/pkg/cache"
	"github.com/matzehuels/depharvest/pkg/errors"
	"github.com/matzehuels/depharvest/pkg/gitlab"
	"github.com/matzehuels/depharvest/pkg/manifest"
	"github.com/matzehuels/depharvest/pkg/observability"
)

// Runner executes the harvest pipeline against one repository.
type Runner struct {
	Lister    TreeLister
	Content   ContentSource
	Languages LanguageSource

	// Project is used for logging and observability only.
	Project string
}

// NewRunner wires a runner from a source implementing all three
// capabilities, such as [GitLabSource].
func NewRunner(src interface {
	TreeLister
	ContentSource
	LanguageSource
}, project string) *Runner {
	return &Runner{Lister: src, Content: src, Languages: src, Project: project}
}

// Run executes the pipeline: list the tree, resolve the scope, match
// manifest paths, fetch contents in batches, and extract dependencies.
//
// Failed content batches are skipped with a diagnostic unless
// opts.FailFast is set. Parser failures never abort the run; the
// affected file contributes zero names. A detected primary language
// without manifest patterns yields an empty result rather than an
// error; an explicitly requested unknown scope is still rejected.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	start := time.Now()

	scope := opts.Scope
	if opts.AutoScope {
		if r.Languages == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "language detection requires a language source")
		}
		shares, err := r.Languages.LanguageShares(ctx)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeTransport, err, "detecting primary language")
		}
		primary, ok := PrimaryLanguage(shares)
		if !ok {
			opts.Logger.Info("no languages reported, nothing to harvest", "project", r.Project)
			return emptyResult(""), nil
		}
		scope = primary
		opts.Logger.Info("detected primary language", "project", r.Project, "language", scope)
		if opts.Registry.Find(scope) == nil {
			opts.Logger.Info("no manifest patterns for detected language",
				"project", r.Project, "language", scope)
			return emptyResult(scope), nil
		}
	}

	// Registry identifiers are the canonical spelling; a detected or
	// requested scope like "Python" resolves to "python".
	if l := opts.Registry.Find(scope); l != nil {
		scope = l.Name
	}
	registry := opts.Registry.Scoped(scope)
	if registry == nil {
		return nil, errors.New(errors.ErrCodeInvalidLanguage, "unsupported language %q", scope)
	}

	listStart := time.Now()
	paths, err := r.Lister.ListPaths(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "listing repository tree")
	}
	listTime := time.Since(listStart)
	opts.Logger.Info("listed repository tree", "project", r.Project, "paths", len(paths))

	matched := MatchPaths(paths, registry)
	opts.Logger.Info("matched manifest paths", "matched", len(matched))

	result := emptyResult(scope)
	result.Stats.PathsListed = len(paths)
	result.Stats.Matched = len(matched)
	result.Stats.ListTime = listTime
	if len(matched) == 0 {
		return result, nil
	}

	record := NewRecord()
	var fetched atomic.Int64
	var extractNanos atomic.Int64

	batches := chunk(matched, opts.BatchSize)
	result.Stats.Batches = len(batches)

	fetchStart := time.Now()
	if err := r.runBatches(ctx, batches, registry, opts, record, &fetched, &extractNanos); err != nil {
		return nil, err
	}
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.Fetched = int(fetched.Load())
	result.Stats.ExtractTime = time.Duration(extractNanos.Load())

	result.Dependencies, result.Diagnostics = record.Snapshot()
	names := result.TotalNames()
	observability.Harvest().OnRunComplete(ctx, r.Project, len(result.Dependencies), names, time.Since(start), nil)
	opts.Logger.Info("harvest complete",
		"languages", len(result.Dependencies),
		"dependencies", names,
		"duration", time.Since(start))
	return result, nil
}

// runBatches processes content batches, sequentially or with a bounded
// worker pool. The record is the only shared state; the first error in
// fail-fast mode cancels the remaining work.
func (r *Runner) runBatches(ctx context.Context, batches [][]string, registry manifest.Registry, opts Options, record *Record, fetched, extractNanos *atomic.Int64) error {
	if opts.Workers <= 1 || len(batches) == 1 {
		for _, batch := range batches {
			if err := r.processBatch(ctx, batch, registry, opts, record, fetched, extractNanos); err != nil {
				return err
			}
		}
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		firstErr error
		once     sync.Once
	)
	sem := make(chan struct{}, opts.Workers)
	for _, batch := range batches {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(batch []string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := r.processBatch(ctx, batch, registry, opts, record, fetched, extractNanos); err != nil {
				once.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}(batch)
	}
	wg.Wait()
	return firstErr
}

// processBatch fetches one batch and extracts every returned file.
func (r *Runner) processBatch(ctx context.Context, batch []string, registry manifest.Registry, opts Options, record *Record, fetched, extractNanos *atomic.Int64) error {
	contents, err := r.Content.FetchBatch(ctx, batch)
	observability.Harvest().OnBatchFetch(ctx, r.Project, len(batch), len(contents), err)
	if err != nil {
		if opts.FailFast {
			return errors.Wrap(errors.ErrCodeTransport, err, "fetching manifest contents")
		}
		opts.Logger.Warn("skipping failed batch", "paths", len(batch), "error", err)
		record.Diagnose(Diagnostic{
			Kind:    DiagBatchFailure,
			Message: fmt.Sprintf("batch of %d paths: %v", len(batch), err),
		})
		return nil
	}
	fetched.Add(int64(len(contents)))

	extractStart := time.Now()
	for _, path := range batch {
		content, ok := contents[path]
		if !ok {
			opts.Logger.Debug("no content returned", "path", path)
			continue
		}
		Extract(ctx, registry, path, content, record, opts.Logger)
	}
	extractNanos.Add(int64(time.Since(extractStart)))
	return nil
}

// chunk splits paths into batches of at most size elements.
func chunk(paths []string, size int) [][]string {
	var out [][]string
	for len(paths) > size {
		out = append(out, paths[:size])
		paths = paths[size:]
	}
	if len(paths) > 0 {
		out = append(out, paths)
	}
	return out
}

// Harvest runs the full pipeline against a GitLab project URL with the
// built-in registry. It is the programmatic one-call entrypoint; the CLI
// builds the same wiring with caching and configuration on top.
func Harvest(ctx context.Context, projectURL, token, ref string, opts Options) (*Result, error) {
	project, err := gitlab.ProjectFromURL(projectURL)
	if err != nil {
		return nil, err
	}
	base, err := BaseURL(projectURL)
	if err != nil {
		return nil, err
	}
	client := gitlab.NewClient(base, token, cache.NewNullCache())
	src := NewGitLabSource(client, project, ref)
	return NewRunner(src, project).Run(ctx, opts)
}

// BaseURL extracts the instance origin from a project URL, defaulting
// to gitlab.com for host-less inputs like "group/project".
func BaseURL(projectURL string) (string, error) {
	u, err := url.Parse(projectURL)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidProject, err, "parsing project URL")
	}
	if u.Host == "" {
		return "https://gitlab.com", nil
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + u.Host, nil
}
