// Package render converts rendered dependency graphs between output formats.
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). The [nodelink] subpackage
// produces the SVG.
//
//	dot := nodelink.ToDOT(result, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//
// [nodelink]: github.com/matzehuels/pacstage/pkg/render/nodelink
package render
