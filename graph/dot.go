package graph

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// WriteDOT writes the components with at least minSize members as a Graphviz
// digraph, largest first. A limit of zero writes every qualifying component.
// Nodes are labeled with their key and distance from the canonical key,
// which is drawn bold.
func WriteDOT(w io.Writer, res *Result, minSize, limit int) error {
	comps := make([]Component, 0, len(res.Components))
	for _, c := range res.Components {
		if len(c.Members) >= minSize {
			comps = append(comps, c)
		}
	}
	sort.SliceStable(comps, func(i, j int) bool {
		return len(comps[i].Members) > len(comps[j].Members)
	})
	if limit > 0 && len(comps) > limit {
		comps = comps[:limit]
	}

	var sb strings.Builder
	sb.WriteString("digraph postsale {\n")
	sb.WriteString("\trankdir=LR;\n")
	sb.WriteString("\tnode [shape=box];\n")
	for i, c := range comps {
		fmt.Fprintf(&sb, "\tsubgraph cluster_%d {\n", i)
		fmt.Fprintf(&sb, "\t\tlabel=%s;\n", quote(c.Canonical.String()))
		steps := make(map[string]int, len(c.Members))
		for _, m := range c.Members {
			id := m.Key.String()
			steps[id] = m.Steps
			attrs := fmt.Sprintf("label=%s", quote(fmt.Sprintf("%s\nsteps %d", id, m.Steps)))
			if m.Key == c.Canonical {
				attrs += ", style=bold"
			}
			fmt.Fprintf(&sb, "\t\t%s [%s];\n", quote(id), attrs)
		}
		for _, l := range c.Links {
			from, to := l.From.String(), l.To.String()
			n := steps[to]
			if steps[from] > n {
				n = steps[from]
			}
			fmt.Fprintf(&sb, "\t\t%s -> %s [label=%s];\n", quote(from), quote(to), quote(fmt.Sprintf("%d steps", n)))
		}
		sb.WriteString("\t}\n")
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}
