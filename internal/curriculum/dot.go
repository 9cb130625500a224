package curriculum

import (
	"fmt"
	"sort"
	"strings"
)

type dotStyle struct {
	fill string
	font string
}

var dotStyles = map[Status]dotStyle{
	StatusCompleted: {fill: "#d4edda", font: "#155724"},
	StatusAvailable: {fill: "#cce5ff", font: "#004085"},
	StatusLocked:    {fill: "#e2e3e5", font: "#383d41"},
}

// RenderGraphDescription returns a Graphviz DOT description of the graph.
// Nodes appear in insertion order and edges in adjacency order, so equal
// states always render identically.
func (g *Graph) RenderGraphDescription() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var b strings.Builder
	b.WriteString("digraph G {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=filled, fontname=\"Helvetica\"];\n")

	for _, id := range g.order {
		style, ok := dotStyles[g.statuses[id]]
		if !ok {
			style = dotStyle{fill: "white", font: "black"}
		}
		fmt.Fprintf(&b, "  %s [label=%s, fillcolor=\"%s\", fontcolor=\"%s\"];\n",
			dotQuote(id), dotQuote(g.labels[id]), style.fill, style.font)
	}

	for _, src := range g.edgeSources() {
		for _, tgt := range g.adjacency[src] {
			fmt.Fprintf(&b, "  %s -> %s;\n", dotQuote(src), dotQuote(tgt))
		}
	}

	b.WriteString("}")
	return b.String()
}

// edgeSources lists adjacency keys: known nodes in insertion order, then any
// other keys sorted.
func (g *Graph) edgeSources() []string {
	sources := make([]string, 0, len(g.adjacency))
	seen := make(map[string]bool, len(g.order))
	for _, id := range g.order {
		sources = append(sources, id)
		seen[id] = true
	}
	var extra []string
	for id := range g.adjacency {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(sources, extra...)
}

func dotQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}
