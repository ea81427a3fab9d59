package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/motorrutas/pkg/editor"
	"github.com/matzehuels/motorrutas/pkg/flow"
	"github.com/matzehuels/motorrutas/pkg/partition"
	"github.com/matzehuels/motorrutas/pkg/render"
	"github.com/matzehuels/motorrutas/pkg/render/nodelink"
)

// Export formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

var exportFormats = []string{formatDOT, formatSVG, formatPDF, formatPNG}

type exportOpts struct {
	selected []string
	edges    []string
	format   string
	output   string
	title    string
	detailed bool
	scale    float64
}

// exportCommand creates the command that builds a route headlessly and
// writes its diagram.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{format: formatDOT, scale: 2}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build a route from flags and write its diagram",
		Long: `Export selects the given establishments, connects the given edges and
writes the resulting diagram. Edges that break a route rule (self loops,
duplicates, FIN as source, unknown endpoints) are skipped with a warning.`,
		Example: `  motorrutas export --selected 1=Mesa,2=Decanato --edge INICIO:1 --edge 1:2 --edge 2:FIN
  motorrutas export --selected 1,2 --edge 1:2 --format svg -o ruta.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.selected, "selected", nil, "selected establishments as id or id=label")
	cmd.Flags().StringArrayVar(&opts.edges, "edge", nil, "edge as source:target (repeatable)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, pdf, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show ids under labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = cmd.RegisterFlagCompletionFunc("edge", completeEdge)

	return cmd
}

func (c *CLI) runExport(ctx context.Context, opts exportOpts) error {
	if !slices.Contains(exportFormats, opts.format) {
		return fmt.Errorf("unknown format %q (want %s)", opts.format, strings.Join(exportFormats, ", "))
	}
	edges, err := parseEdges(opts.edges)
	if err != nil {
		return err
	}

	ed, refused := buildRoute(parseSelected(opts.selected), edges)
	for _, e := range refused {
		printWarning("Skipped edge %s", e.ID())
	}

	sp := startSpinner(ctx, os.Stderr, "Rendering "+strings.ToUpper(opts.format)+"...")
	defer sp.stop()

	data, err := renderDiagram(ctx, ed, opts)
	if err != nil {
		return err
	}
	if opts.output == "" {
		sp.stop()
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	snap := ed.Snapshot()
	sp.succeed("Exported route")
	printStats(len(snap.Selected), len(snap.Edges))
	printFile(opts.output)
	return nil
}

// parseSelected turns "id" and "id=label" specs into items.
func parseSelected(specs []string) []partition.Item {
	items := make([]partition.Item, 0, len(specs))
	for _, s := range specs {
		id, label, _ := strings.Cut(strings.TrimSpace(s), "=")
		if id == "" {
			continue
		}
		items = append(items, partition.Item{ID: partition.ItemID(id), Label: label})
	}
	return items
}

// parseEdges parses "source:target" specs.
func parseEdges(specs []string) ([]flow.Edge, error) {
	edges := make([]flow.Edge, 0, len(specs))
	for _, s := range specs {
		src, tgt, ok := strings.Cut(s, ":")
		src, tgt = strings.TrimSpace(src), strings.TrimSpace(tgt)
		if !ok || src == "" || tgt == "" {
			return nil, fmt.Errorf("invalid edge %q (want source:target)", s)
		}
		edges = append(edges, flow.Edge{Source: partition.ItemID(src), Target: partition.ItemID(tgt)})
	}
	return edges, nil
}

// buildRoute selects every item and connects edges in order. It returns
// the edges the engine refused.
func buildRoute(items []partition.Item, edges []flow.Edge) (*editor.Editor, []flow.Edge) {
	ed := editor.New(nil, editor.WithItems(items))
	ed.Move(editor.AllRight)

	var refused []flow.Edge
	for _, e := range edges {
		if !ed.Connect(e.Source, e.Target) {
			refused = append(refused, e)
		}
	}
	return ed, refused
}

func renderDiagram(ctx context.Context, ed *editor.Editor, opts exportOpts) ([]byte, error) {
	dot := nodelink.ToDOT(ed.Elements(), nodelink.Options{Title: opts.title, Detailed: opts.detailed})
	if opts.format == formatDOT {
		return []byte(dot), nil
	}
	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch opts.format {
	case formatPDF:
		return render.ToPDF(ctx, svg)
	case formatPNG:
		return render.ToPNG(ctx, svg, opts.scale)
	default:
		return svg, nil
	}
}
