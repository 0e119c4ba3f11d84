package parser

import (
	"fmt"
	"strings"
)

// Dump renders the tree as indented text, one node per line, for debug logs and golden tests:
//
//	#0 raw "[n:hero]#n#"
//	  #1 action "n:hero"
//	  #2 symbol "n"
func Dump(t *Tree) string {
	var b strings.Builder
	var visit func(id, depth int)
	visit = func(id, depth int) {
		n := t.Node(id)
		b.WriteString(strings.Repeat("  ", depth))
		fmt.Fprintf(&b, "#%d %s %q", n.ID, n.Kind, n.Span)
		if len(n.Modifiers) > 0 {
			fmt.Fprintf(&b, " mods=%s", strings.Join(n.Modifiers, ","))
		}
		b.WriteByte('\n')
		for _, child := range n.Children {
			visit(child, depth+1)
		}
	}
	for _, root := range t.Roots() {
		visit(root, 0)
	}
	return b.String()
}
