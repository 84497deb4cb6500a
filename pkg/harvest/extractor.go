package harvest

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depharvest/pkg/manifest"
	"github.com/matzehuels/depharvest/pkg/observability"
)

// Extract dispatches one file to every matching parser in the registry
// and merges the results into the record. A path matching patterns of
// several languages is parsed once per match, each contributing to its
// own language's set.
//
// Parser errors are isolated: the failing file contributes nothing, a
// diagnostic is recorded, and extraction continues. A parser returning
// zero names is recorded separately since it usually signals a manifest
// variant the parser does not understand.
func Extract(ctx context.Context, registry manifest.Registry, path, content string, record *Record, logger *log.Logger) {
	for _, lang := range registry {
		for _, pattern := range lang.Matches(path) {
			names, err := pattern.Parse(content)
			if err != nil {
				logger.Warn("parse failed", "path", path, "language", lang.Name, "error", err)
				record.Diagnose(Diagnostic{
					Kind:     DiagParseFailure,
					Path:     path,
					Language: lang.Name,
					Pattern:  pattern.Glob,
					Message:  err.Error(),
				})
				observability.Harvest().OnFileParsed(ctx, path, lang.Name, 0, err)
				continue
			}
			if len(names) == 0 {
				logger.Debug("no dependencies found", "path", path, "language", lang.Name)
				record.Diagnose(Diagnostic{
					Kind:     DiagEmptyParse,
					Path:     path,
					Language: lang.Name,
					Pattern:  pattern.Glob,
				})
			}
			record.Add(lang.Name, names)
			observability.Harvest().OnFileParsed(ctx, path, lang.Name, len(names), nil)
		}
	}
}
