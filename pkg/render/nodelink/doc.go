// Package nodelink renders a route scene as a node-link diagram.
//
// # Overview
//
// Nodes appear as rounded boxes connected by arrows, flowing left to right
// from INICIO to FIN. The pseudo-nodes are drawn as ellipses. Nodes carrying
// the connection-session classes are highlighted so an exported diagram
// shows a pending edge the same way the editor does.
//
// # Usage
//
//	dot := nodelink.ToDOT(ed.Elements(), nodelink.Options{Title: "Ruta X"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, convert the SVG with [render.ToPDF] or
// [render.ToPNG].
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
