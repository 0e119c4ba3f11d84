package runtime

import (
	"context"
	"strings"
	"time"

	"github.com/aretw0/tracery/internal/parser"
	"github.com/aretw0/tracery/pkg/domain"
)

// evaluation is the state of one Flatten call.
type evaluation struct {
	*Engine
	ctx  context.Context
	tree *parser.Tree
}

// evalRaw tokenizes a Raw node and renders its children depth-first.
func (ev *evaluation) evalRaw(id, depth int) (string, error) {
	var b strings.Builder
	for _, child := range ev.tree.Parse(id) {
		// Copy: evaluating a child appends to the arena.
		n := *ev.tree.Node(child)

		switch n.Kind {
		case parser.KindText:
			b.WriteString(n.Span)

		case parser.KindSymbol:
			text, err := ev.evalSymbol(n, depth)
			if err != nil {
				return "", err
			}
			b.WriteString(text)

		case parser.KindAction:
			if err := ev.evalAction(n, depth); err != nil {
				return "", err
			}

		case parser.KindRaw:
			// Parse never emits Raw children.
		}
	}
	return b.String(), nil
}

// evalSymbol resolves the key (bindings, then grammar, then the key itself),
// renders the replacement and applies modifiers left to right.
func (ev *evaluation) evalSymbol(n parser.Node, depth int) (string, error) {
	var (
		replacement string
		source      domain.SymbolSource
	)
	if v, ok := ev.bindings.Lookup(n.Key); ok {
		replacement, source = v, domain.SourceBinding
	} else if rule, ok := ev.grammar.Lookup(n.Key); ok {
		replacement, source = rule.Pick(ev.source.Intn), domain.SourceGrammar
	} else {
		replacement, source = n.Key, domain.SourceFallback
	}

	if ev.hooks.OnSymbol != nil {
		ev.hooks.OnSymbol(ev.ctx, &domain.SymbolEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSymbol},
			Key:       n.Key,
			Modifiers: n.Modifiers,
			Source:    source,
			Depth:     depth + 1,
		})
	}

	text := replacement
	if source != domain.SourceFallback {
		var err error
		text, err = ev.descend(n.ID, n.Key, replacement, depth)
		if err != nil {
			return "", err
		}
	} else {
		ev.logger.Debug("Symbol not found, using key", "symbol", n.Key)
	}

	return ev.modifiers.ApplyAll(text, n.Modifiers), nil
}

// evalAction mutates the bindings. Actions never render text.
func (ev *evaluation) evalAction(n parser.Node, depth int) error {
	name, payload, found := strings.Cut(n.Span, domain.ActionSeparator)

	op := domain.ActionPush
	switch {
	case !found:
		op = domain.ActionIgnored
		ev.logger.Debug("Action without separator ignored", "action", n.Span)
	case payload == domain.PopKeyword:
		op = domain.ActionPop
		ev.bindings.Pop(name)
	default:
		value, err := ev.descend(n.ID, name, payload, depth)
		if err != nil {
			return err
		}
		ev.bindings.Push(name, value)
	}

	if ev.hooks.OnAction != nil {
		ev.hooks.OnAction(ev.ctx, &domain.ActionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventAction},
			Name:      name,
			Op:        op,
		})
	}
	return nil
}

// descend attaches input as a Raw child of parent and renders it one level deeper.
func (ev *evaluation) descend(parent int, symbol, input string, depth int) (string, error) {
	if depth+1 > ev.maxDepth {
		return "", &domain.RecursionError{Symbol: symbol, Depth: depth + 1, Limit: ev.maxDepth}
	}
	return ev.evalRaw(ev.tree.NewRaw(parent, input), depth+1)
}
