// Package render converts exported route diagrams between formats.
//
// Diagrams are produced as SVG by the [nodelink] subpackage. [ToPDF] and
// [ToPNG] convert SVG with the external rsvg-convert tool from librsvg:
//
//	dot := nodelink.ToDOT(elements, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/motorrutas/pkg/render/nodelink
package render
