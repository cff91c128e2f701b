// Package nodelink renders hierarchical network documents as node-link
// diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz, where
// nodes appear as boxes connected by arrows and boundary ports as colored
// ellipses.
//
// # Usage
//
// Convert a level of a document to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(m.Current(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0) // 2x scale
//
// # Views
//
// The collapsed view (the default) draws exactly what an editor shows at one
// context level: components are single boxes in their palette color and deep
// edges end at the component they enter.
//
// The expanded view ([Options].Expand) draws every nested component as a
// Graphviz cluster and every edge of the document between its logical
// endpoints, so a deep edge runs straight into the port it targets.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
