package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depharvest/pkg/gitlab"
	"github.com/matzehuels/depharvest/pkg/harvest"
	"github.com/matzehuels/depharvest/pkg/manifest/languages"
	"github.com/matzehuels/depharvest/pkg/render"
)

// harvestOpts holds the command-line flags for the harvest command.
type harvestOpts struct {
	ref         string // git ref to harvest (branch, tag, or commit)
	language    string // restrict to one language's manifests
	auto        bool   // detect the primary language and scope to it
	interactive bool   // pick the language interactively
	rest        bool   // fetch contents via REST instead of GraphQL
	failFast    bool   // abort on the first failed batch
	workers     int    // concurrent batch fetches
	output      string // output file path (stdout if empty)
	format      string // output format: json or dot
}

// newHarvestCmd creates the harvest command.
//
// The project argument accepts a full URL ("https://gitlab.com/group/repo")
// or a bare path ("group/repo", resolved against the configured base URL).
func newHarvestCmd(root *rootOpts) *cobra.Command {
	opts := harvestOpts{format: "json"}

	cmd := &cobra.Command{
		Use:   "harvest <project-url>",
		Short: "Extract dependency names from a repository's manifests",
		Long: `Harvest enumerates the repository tree, matches dependency manifest
files (requirements.txt, go.mod, package.json, ...), fetches their
contents in batches, and prints the extracted dependency names grouped
by language.

Examples:
  depharvest harvest gitlab-org/gitlab-runner
  depharvest harvest https://gitlab.com/group/repo --ref v2.1.0
  depharvest harvest group/repo --language python
  depharvest harvest group/repo --auto -o deps.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarvest(cmd, root, &opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.ref, "ref", "", "git ref to harvest (default from config, usually main)")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "restrict to one language's manifests")
	cmd.Flags().BoolVar(&opts.auto, "auto", false, "detect the primary language and scope to it")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick the language interactively")
	cmd.Flags().BoolVar(&opts.rest, "rest", false, "fetch file contents via the REST API instead of GraphQL")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "abort on the first failed content batch")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "concurrent batch fetches (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "output format: json or dot")

	return cmd
}

func runHarvest(cmd *cobra.Command, root *rootOpts, opts *harvestOpts, projectURL string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if opts.ref == "" {
		opts.ref = cfg.Ref
	}
	if opts.workers <= 0 {
		opts.workers = cfg.Workers
	}

	if opts.interactive {
		lang, ok, err := pickLanguage()
		if err != nil {
			return err
		}
		if !ok {
			printInfo("No language selected")
			return nil
		}
		opts.language = lang
	}

	project, err := gitlab.ProjectFromURL(projectURL)
	if err != nil {
		return err
	}
	base := cfg.BaseURL
	if derived, err := harvest.BaseURL(projectURL); err == nil && derived != "https://gitlab.com" {
		base = derived
	}

	backend, err := root.openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	client := gitlab.NewClient(base, cfg.Token, backend)
	src := harvest.NewGitLabSource(client, project, opts.ref)
	src.UseREST = opts.rest

	spinner := newSpinner(ctx, fmt.Sprintf("Harvesting %s @ %s", project, opts.ref))
	spinner.Start()

	track := newProgress(logger)
	result, err := harvest.NewRunner(src, project).Run(ctx, harvest.Options{
		Scope:     opts.language,
		AutoScope: opts.auto,
		BatchSize: cfg.BatchSize,
		Workers:   opts.workers,
		FailFast:  opts.failFast,
		Logger:    logger,
	})
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError(fmt.Sprintf("Harvest failed: %v", err))
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Harvested %s @ %s", project, opts.ref))
	track.done(fmt.Sprintf("Extracted %d dependencies across %d languages",
		result.TotalNames(), len(result.Dependencies)))

	printSummary(result)
	return writeResult(result, opts.output, opts.format)
}

// printSummary prints the per-language counts and any diagnostics.
func printSummary(result *harvest.Result) {
	langs := make([]string, 0, len(result.Dependencies))
	for lang := range result.Dependencies {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		printLanguage(lang, len(result.Dependencies[lang]))
	}
	for _, d := range result.Diagnostics {
		switch d.Kind {
		case harvest.DiagParseFailure:
			printWarning("Parse failed: %s (%s)", d.Path, d.Message)
		case harvest.DiagBatchFailure:
			printWarning("Skipped batch: %s", d.Message)
		}
	}
	printDetail("%d paths listed, %d matched, %d fetched",
		result.Stats.PathsListed, result.Stats.Matched, result.Stats.Fetched)
}

// writeResult serializes the result to the output file or stdout.
func writeResult(result *harvest.Result, output, format string) error {
	var data []byte
	switch format {
	case "json":
		var err error
		data, err = json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
	case "dot":
		data = []byte(render.ToDOT(result.Dependencies))
	default:
		return fmt.Errorf("unknown format %q (must be json or dot)", format)
	}

	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printFile(output)
	return nil
}

// supportedLanguages returns the registry's language names in order.
func supportedLanguages() []string {
	var names []string
	for _, lang := range languages.Default() {
		names = append(names, lang.Name)
	}
	return names
}
