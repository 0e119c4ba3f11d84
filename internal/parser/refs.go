package parser

import (
	"strings"

	"github.com/aretw0/tracery/pkg/domain"
)

// References lists the symbol keys a template reads and the binding names
// its actions write, each in first-appearance order without duplicates.
// Action payloads are scanned too; POP payloads are not.
func References(text string) (symbols, bindings []string) {
	seenSym := map[string]bool{}
	seenBind := map[string]bool{}

	tree := NewTree()
	var walk func(id int)
	walk = func(id int) {
		for _, child := range tree.Parse(id) {
			n := *tree.Node(child)
			switch n.Kind {
			case KindSymbol:
				if !seenSym[n.Key] {
					seenSym[n.Key] = true
					symbols = append(symbols, n.Key)
				}
			case KindAction:
				name, payload, found := strings.Cut(n.Span, domain.ActionSeparator)
				if !found {
					continue
				}
				if !seenBind[name] {
					seenBind[name] = true
					bindings = append(bindings, name)
				}
				if payload != domain.PopKeyword {
					walk(tree.NewRaw(child, payload))
				}
			}
		}
	}
	walk(tree.NewRaw(NoParent, text))
	return symbols, bindings
}
