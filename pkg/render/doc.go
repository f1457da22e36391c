// Package render turns SVG diagrams into print and raster formats by piping
// them through rsvg-convert.
//
//	svg, _ := nodelink.RenderSVG(dot)
//	png, err := render.ToPNG(svg, 2)
//
// Diagrams themselves come from [nodelink].
//
// [nodelink]: github.com/matzehuels/poagraph/pkg/render/nodelink
package render
