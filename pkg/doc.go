// Package pkg provides the core libraries for Motor de Rutas route authoring.
//
// # Overview
//
// A route is a directed graph of procedure steps from INICIO to FIN. The
// steps are establishments picked from a remote route template. The pkg
// directory is organized into these areas:
//
//  1. [partition] - the available and selected lists and their moves
//  2. [flow] and [scene] - the graph engine and the renderer it drives
//  3. [editor] - one user's editing state over the two
//  4. [integrations] - the route template client and its fallback chain
//  5. [cache], [session], [observability] - infrastructure
//  6. [render] - DOT, SVG, PDF and PNG export
//
// # Data Flow
//
//	Route template API (primary, secondary, placeholder)
//	         ↓
//	    [editor] Load → [partition] available list
//	         ↓  move right / left
//	    [partition] selected list
//	         ↓  reconcile
//	    [flow] nodes + edges → [scene] renderer
//	         ↓
//	    [render/nodelink] DOT / SVG
package pkg
