// Package nodelink draws alignment graphs as Graphviz node-link diagrams.
//
// Nodes are circles labeled and filled by base ([BaseColors]). Edge pen
// width follows the number of sequences that take the edge, and ranks run
// left to right in sequence order. [ToDOT] writes the DOT source;
// [RenderSVG] lays it out in process with go-graphviz, and [RenderPDF] and
// [RenderPNG] additionally need rsvg-convert.
//
//	dot, err := nodelink.ToDOT(g, nodelink.Options{Consensus: cons.Path, Aligned: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// [Options] adds node IDs and weights to labels, dotted links between
// aligned nodes, and the Source and Sink sentinels.
package nodelink
