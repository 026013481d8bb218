package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pacstage/pkg/deps"
	"github.com/matzehuels/pacstage/pkg/errors"
	"github.com/matzehuels/pacstage/pkg/render"
)

// Output formats accepted by Render.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// Formats lists the supported output formats.
var Formats = []string{FormatDOT, FormatSVG, FormatPDF, FormatPNG}

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the depth and raw tokens in node labels.
	// When false, only the package name is shown.
	Detailed bool
}

// node aggregates every visit that normalized to the same name.
type node struct {
	name   string
	depth  int
	tokens []string
	seed   bool
}

// ToDOT converts a resolution result to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [Render].
func ToDOT(res *deps.Result, opts Options) string {
	nodes, edges := collect(res)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// collect merges visits by normalized name and normalizes and deduplicates
// the edges, both in discovery order.
func collect(res *deps.Result) ([]*node, []deps.Edge) {
	byName := make(map[string]*node)
	var nodes []*node

	add := func(name string, depth int) *node {
		if n, ok := byName[name]; ok {
			return n
		}
		n := &node{name: name, depth: depth}
		byName[name] = n
		nodes = append(nodes, n)
		return n
	}

	for _, v := range res.Visits {
		n := add(v.Name, v.Depth)
		if !slices.Contains(n.tokens, v.Token) {
			n.tokens = append(n.tokens, v.Token)
		}
	}
	for _, s := range res.Seeds {
		if n, ok := byName[deps.StripConstraint(s)]; ok {
			n.seed = true
		}
	}

	seen := make(map[deps.Edge]bool)
	var edges []deps.Edge
	for _, e := range res.Edges {
		ne := deps.Edge{From: deps.StripConstraint(e.From), To: deps.StripConstraint(e.To)}
		if seen[ne] {
			continue
		}
		seen[ne] = true
		add(ne.From, 0)
		add(ne.To, 0)
		edges = append(edges, ne)
	}
	return nodes, edges
}

func fmtLabel(n *node, detailed bool) string {
	if !detailed {
		return n.name
	}

	parts := []string{fmt.Sprintf("depth: %d", n.depth)}
	for _, tok := range n.tokens {
		if tok != n.name {
			parts = append(parts, "as: "+tok)
		}
	}
	return n.name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.seed {
		attrs = append(attrs, "style=\"rounded,filled,bold\"", "fillcolor=lightblue", "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// Render produces the graph in the named format: dot, svg, pdf or png.
// PNG output is rendered at 2x scale.
func Render(dot, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(dot)
	case FormatPDF:
		svg, err := RenderSVG(dot)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(svg)
	case FormatPNG:
		svg, err := RenderSVG(dot)
		if err != nil {
			return nil, err
		}
		return render.ToPNG(svg, 2.0)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
}

// FormatFromPath infers the output format from a file extension, defaulting
// to dot.
func FormatFromPath(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return FormatDOT
	}
	ext := strings.ToLower(path[i+1:])
	if slices.Contains(Formats, ext) {
		return ext
	}
	return FormatDOT
}
