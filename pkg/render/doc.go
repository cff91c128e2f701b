// Package render converts rendered network diagrams between output formats.
//
// The [nodelink] subpackage turns a document level into Graphviz DOT and
// SVG. [ToPDF] and [ToPNG] convert that SVG further using the external
// rsvg-convert tool (from librsvg):
//
//	dot := nodelink.ToDOT(m.Current(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [nodelink]: github.com/matzehuels/hiernet/pkg/render/nodelink
package render
