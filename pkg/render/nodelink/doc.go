// Package nodelink renders dependency closures as node-link diagrams.
//
// # Usage
//
// Convert a resolution result to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(result, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// Or let [Render] pick by format name:
//
//	data, err := nodelink.Render(dot, "png")
//
// # DOT Format
//
// Nodes are the normalized package names, in discovery order. Edges come
// from the raw tokens each package reported, normalized and deduplicated,
// so "bash -> readline>=7.0" becomes "bash" -> "readline". Seed packages
// are filled in a distinct color. With Options.Detailed, labels also carry
// the discovery depth and the raw tokens that mapped to the name.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
