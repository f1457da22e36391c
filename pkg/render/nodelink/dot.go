package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/poagraph/pkg/alphabet"
	"github.com/matzehuels/poagraph/pkg/dag"
	"github.com/matzehuels/poagraph/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the node ID and weight in node labels.
	// When false, only the base is shown.
	Detailed bool
	// Consensus is a path to highlight, typically the consensus path.
	Consensus []dag.NodeID
	// Aligned draws an undirected dotted link between aligned nodes.
	Aligned bool
	// Sentinels draws Source and Sink and their edges.
	Sentinels bool
}

// BaseColors maps each base to its fill color. The terminal viewer uses the
// same palette.
var BaseColors = map[alphabet.Symbol]string{
	alphabet.A: "#8fd694",
	alphabet.C: "#7fb3ff",
	alphabet.G: "#ffc46b",
	alphabet.T: "#ff8c8c",
	alphabet.N: "#d0d0d0",
}

const highlight = "#c2185b"

// ToDOT converts a graph to Graphviz DOT format. Nodes are emitted in
// topological order, so the output is deterministic. It fails if the graph
// has a cycle.
func ToDOT(g *dag.Graph, opts Options) (string, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return "", err
	}
	onPath := make(map[dag.NodeID]bool, len(opts.Consensus))
	pathEdge := make(map[[2]dag.NodeID]bool, len(opts.Consensus)+1)
	prev := dag.Source
	for _, id := range opts.Consensus {
		onPath[id] = true
		pathEdge[[2]dag.NodeID{prev, id}] = true
		prev = id
	}
	if len(opts.Consensus) > 0 {
		pathEdge[[2]dag.NodeID{prev, dag.Sink}] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=18, fixedsize=true, width=0.5];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("  ranksep=0.3;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	for _, id := range order {
		if id.IsSentinel() && !opts.Sentinels {
			continue
		}
		n, _ := g.Node(id)
		fmt.Fprintf(&buf, "  n%d [%s];\n", id, strings.Join(nodeAttrs(n, opts.Detailed, onPath[id]), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if (e.From.IsSentinel() || e.To.IsSentinel()) && !opts.Sentinels {
			continue
		}
		fmt.Fprintf(&buf, "  n%d -> n%d [%s];\n", e.From, e.To, strings.Join(edgeAttrs(e, pathEdge[[2]dag.NodeID{e.From, e.To}]), ", "))
	}

	if opts.Aligned {
		buf.WriteString("\n")
		for _, id := range order {
			peers, _ := g.Aligned(id)
			for _, p := range peers {
				if p > id {
					fmt.Fprintf(&buf, "  n%d -> n%d [dir=none, style=dotted, color=grey, constraint=false];\n", id, p)
				}
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func nodeAttrs(n dag.Node, detailed, highlighted bool) []string {
	label := n.Symbol.String()
	switch n.ID {
	case dag.Source:
		label = "S"
	case dag.Sink:
		label = "E"
	}
	if detailed {
		label = fmt.Sprintf("%s\n%d:%d", label, n.ID, n.Weight)
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	if detailed {
		attrs = append(attrs, "fixedsize=false", "fontsize=12")
	}
	if n.Sentinel {
		return append(attrs, "shape=doublecircle", "fillcolor=lightgrey")
	}
	if c, ok := BaseColors[n.Symbol]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c))
	}
	if highlighted {
		attrs = append(attrs, "penwidth=3", fmt.Sprintf("color=%q", highlight))
	}
	return attrs
}

func edgeAttrs(e dag.Edge, highlighted bool) []string {
	attrs := []string{
		"penwidth=" + penWidth(e.Weight),
		fmt.Sprintf("tooltip=\"%d\"", e.Weight),
	}
	if highlighted {
		attrs = append(attrs, fmt.Sprintf("color=%q", highlight))
	}
	return attrs
}

// penWidth grows with weight and caps at 6.
func penWidth(w int) string {
	return strconv.FormatFloat(min(1+0.5*float64(max(w-1, 0)), 6), 'f', 1, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// The SVG can be converted further with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox swaps the Graphviz svg header for one with a zero-origin
// viewBox and pixel dimensions.
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

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
