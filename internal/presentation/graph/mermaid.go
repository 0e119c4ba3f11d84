package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/tracery/internal/parser"
	"github.com/aretw0/tracery/pkg/grammar"
)

// GraphOverlay highlights symbols on the graph.
type GraphOverlay struct {
	// Start is drawn as a circle.
	Start string
	// Missing symbols get the "missing" class.
	Missing []string
}

// GenerateMermaid produces a Mermaid flowchart of which rules reference which.
// It applies semantic styling:
// - Start symbol: ((Circle))
// - Rule with several variants: {{Hexagon}}
// - Single-text rule: [Rectangle]
// - Symbol only bound by actions: [/Parallelogram/]
// Plain references are solid arrows; writes into a binding are dotted
// arrows labelled with the binding name.
func GenerateMermaid(g grammar.Grammar, overlay *GraphOverlay) string {
	start := ""
	if overlay != nil {
		start = overlay.Start
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	bindingsDrawn := map[string]bool{}
	for _, name := range g.Symbols() {
		rule := g[name]
		safeID := sanitizeMermaidID(name)

		opener, closer := "[", "]"
		switch {
		case name == start:
			opener, closer = "((", "))"
		case !rule.IsSingle():
			opener, closer = "{{", "}}"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, name, closer))

		seen := map[string]bool{}
		for _, v := range rule.Variants() {
			symbols, bindings := parser.References(v)
			for _, s := range symbols {
				if seen[s] {
					continue
				}
				seen[s] = true
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(s)))
			}
			for _, b := range bindings {
				if seen["["+b] {
					continue
				}
				seen["["+b] = true
				safeB := sanitizeMermaidID(b)
				if _, isRule := g[b]; !isRule && !bindingsDrawn[b] {
					bindingsDrawn[b] = true
					sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", safeB, b))
				}
				sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n", safeID, b, safeB))
			}
		}
	}

	if overlay != nil && len(overlay.Missing) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on both light and dark themes.
		sb.WriteString("    classDef missing fill:#ffebee,stroke:#c62828,stroke-width:2px,stroke-dasharray:4,color:#000;\n")

		styled := make(map[string]bool)
		for _, id := range overlay.Missing {
			safeID := sanitizeMermaidID(id)
			if !styled[safeID] && safeID != "" {
				styled[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s missing;\n", safeID))
			}
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
