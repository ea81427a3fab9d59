package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/motorrutas/pkg/flow"
	"github.com/matzehuels/motorrutas/pkg/scene"
)

// Options configures diagram generation.
type Options struct {
	// Title is drawn above the diagram when non-empty.
	Title string
	// Detailed appends the node ID to labels that differ from it.
	Detailed bool
}

// ToDOT converts scene elements to Graphviz DOT. Nodes are emitted in
// element order, then edges.
func ToDOT(elements []scene.Element, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("\n")

	for _, el := range elements {
		if el.IsNode() {
			fmt.Fprintf(&buf, "  %q [%s];\n", el.ID, strings.Join(nodeAttrs(el, opts.Detailed), ", "))
		}
	}

	buf.WriteString("\n")
	for _, el := range elements {
		if el.IsEdge() {
			fmt.Fprintf(&buf, "  %q -> %q [id=%q];\n", el.Source, el.Target, el.ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(el scene.Element, detailed bool) string {
	label := el.Label
	if label == "" {
		return el.ID
	}
	if detailed && label != el.ID {
		return label + "\n" + el.ID
	}
	return label
}

func nodeAttrs(el scene.Element, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(el, detailed))}
	switch el.ID {
	case string(flow.Start), string(flow.End):
		attrs = append(attrs, "shape=ellipse", "fillcolor=\"#e8f0fe\"")
	}
	switch {
	case el.HasClass(flow.ClassSource):
		attrs = append(attrs, "fillcolor=\"#fde68a\"", "penwidth=2")
	case el.HasClass(flow.ClassTarget):
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "color=\"#2563eb\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the diagram scales to its
// container.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
