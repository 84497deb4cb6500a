package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depharvest/pkg/harvest"
	"github.com/matzehuels/depharvest/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output string // output file path; format inferred from extension
}

// newRenderCmd creates the render command for visualizing harvest
// results. The input is a result JSON produced by "harvest -o"; the
// output format is inferred from the output file extension (.dot, .svg,
// or .png).
func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <result.json>",
		Short: "Render a harvest result as a dependency diagram",
		Long: `Render turns a harvest result into a bipartite language/dependency
diagram using Graphviz.

Examples:
  depharvest render deps.json -o deps.svg
  depharvest render deps.json -o deps.png
  depharvest render deps.json -o deps.dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (.dot, .svg, or .png)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runRender(input string, opts *renderOpts) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	var result harvest.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}

	dot := render.ToDOT(result.Dependencies)

	var data []byte
	switch strings.ToLower(filepath.Ext(opts.output)) {
	case ".dot":
		data = []byte(dot)
	case ".svg":
		data, err = render.RenderSVG(dot)
	case ".png":
		data, err = render.RenderPNG(dot)
	default:
		return fmt.Errorf("unsupported output extension %q (must be .dot, .svg, or .png)", filepath.Ext(opts.output))
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Rendered %d languages", len(result.Dependencies))
	printFile(opts.output)
	return nil
}
