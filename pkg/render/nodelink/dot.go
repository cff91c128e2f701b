package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/hiernet/pkg/errors"
	"github.com/matzehuels/hiernet/pkg/network"
	"github.com/matzehuels/hiernet/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Expand draws nested components as clusters and deep edges between
	// their logical endpoints. When false only the given level is drawn and
	// components appear as single boxes.
	Expand bool
	// Detailed appends node ids to labels.
	Detailed bool
	// Title is drawn above the diagram when set.
	Title string
}

// ToDOT converts a document level to Graphviz DOT format.
//
// Input ports are drawn as green ellipses, output ports as red ellipses and
// components as boxes filled with their palette color. Deep edges end at the
// component boundary in the collapsed view.
func ToDOT(g *network.Subgraph, opts Options) string {
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
	if opts.Expand {
		buf.WriteString("  compound=true;\n")
	}
	buf.WriteString("\n")

	if opts.Expand {
		writeCluster(&buf, g, opts, "  ")
		buf.WriteString("\n")
		writeDeepEdges(&buf, g)
	} else {
		for _, n := range g.Nodes {
			fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
		}
		buf.WriteString("\n")
		for _, e := range g.Edges {
			attrs := ""
			if e.IsDeep() {
				attrs = " [style=bold]"
			}
			fmt.Fprintf(&buf, "  %q -> %q%s;\n", e.From, e.To, attrs)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeCluster(buf *bytes.Buffer, g *network.Subgraph, opts Options, indent string) {
	for _, n := range g.Nodes {
		if !n.IsComponent() {
			fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
			continue
		}
		s := network.StyleOf(n)
		fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, clusterID(n.ID))
		fmt.Fprintf(buf, "%s  label=%q;\n", indent, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(buf, "%s  style=\"rounded,filled\";\n", indent)
		fmt.Fprintf(buf, "%s  fillcolor=%q;\n", indent, s.Fill)
		fmt.Fprintf(buf, "%s  color=%q;\n", indent, s.Border)
		// Anchor for edges that end at the component itself.
		fmt.Fprintf(buf, "%s  %q [shape=point, style=invis, label=\"\"];\n", indent, n.ID)
		writeCluster(buf, &n.Component.Graph, opts, indent+"  ")
		fmt.Fprintf(buf, "%s}\n", indent)
	}
}

// writeDeepEdges emits every edge of the document between logical endpoints.
func writeDeepEdges(buf *bytes.Buffer, g *network.Subgraph) {
	for _, e := range g.Edges {
		var attrs []string
		if n := g.Node(e.ModelFrom); n != nil && n.IsComponent() {
			attrs = append(attrs, fmt.Sprintf("ltail=%q", clusterID(n.ID)))
		}
		if n := g.Node(e.ModelTo); n != nil && n.IsComponent() {
			attrs = append(attrs, fmt.Sprintf("lhead=%q", clusterID(n.ID)))
		}
		if e.IsDeep() {
			attrs = append(attrs, "style=bold")
		}
		suffix := ""
		if len(attrs) > 0 {
			suffix = " [" + strings.Join(attrs, ", ") + "]"
		}
		fmt.Fprintf(buf, "  %q -> %q%s;\n", e.ModelFrom, e.ModelTo, suffix)
	}
	for _, c := range g.Components() {
		writeDeepEdges(buf, &c.Component.Graph)
	}
}

func clusterID(id string) string { return "cluster_" + id }

func fmtLabel(n *network.Node, detailed bool) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if detailed {
		label += "\n" + n.ID
	}
	return label
}

func fmtAttrs(n *network.Node, detailed bool) []string {
	s := network.StyleOf(n)
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("fillcolor=%q", s.Fill),
		fmt.Sprintf("color=%q", s.Border),
	}
	switch n.Kind {
	case network.KindInput, network.KindOutput:
		attrs = append(attrs, "shape=ellipse", "style=filled")
	case network.KindComponent:
		attrs = append(attrs, "penwidth=2", `peripheries=2`)
	case network.KindPlain:
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag to a zero-origin viewBox with
// matching pixel size.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
