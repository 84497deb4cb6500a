// Package render turns harvest results into Graphviz visualizations.
//
// The output is a bipartite graph: one node per language, one node per
// dependency name, with an edge from each language to every dependency
// found for it. Names shared across languages converge on one node,
// which makes cross-ecosystem reuse visible at a glance.
package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts a language -> dependencies mapping to Graphviz DOT.
// Languages and names are emitted in sorted order so output is stable.
func ToDOT(deps map[string][]string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=1.0;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	langs := slices.Sorted(maps.Keys(deps))
	for _, lang := range langs {
		fmt.Fprintf(&buf, "  %q [fillcolor=lightblue, fontsize=18];\n", "lang:"+lang)
	}

	seen := make(map[string]bool)
	for _, lang := range langs {
		for _, name := range deps[lang] {
			if !seen[name] {
				seen[name] = true
				fmt.Fprintf(&buf, "  %q [label=%q];\n", "dep:"+name, name)
			}
		}
	}

	buf.WriteString("\n")
	for _, lang := range langs {
		for _, name := range deps[lang] {
			fmt.Fprintf(&buf, "  %q -> %q;\n", "lang:"+lang, "dep:"+name)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	out, err := renderFormat(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the image origin is
// (0, 0) and width/height match the viewBox, which embeds cleanly in
// HTML without Graphviz's point-based sizing.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
