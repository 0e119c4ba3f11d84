// Package parser turns template strings into node trees.
//
// Nodes live in an arena (Tree) and refer to each other by index. A Tree is
// created for one Flatten call and dropped when the call returns, so node ids
// restart at zero for every call.
package parser

import (
	"fmt"
	"strings"

	"github.com/aretw0/tracery/pkg/domain"
)

// Kind is the closed set of node kinds.
type Kind int8

const (
	// KindRaw holds unparsed input (a template or a resolved replacement).
	KindRaw Kind = iota
	// KindText is literal output.
	KindText
	// KindSymbol is a #key.mod# reference.
	KindSymbol
	// KindAction is a [name:rule] directive.
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindText:
		return "text"
	case KindSymbol:
		return "symbol"
	case KindAction:
		return "action"
	default:
		return fmt.Sprintf("kind(%d)", int8(k))
	}
}

// NoParent marks a root node.
const NoParent = -1

// Node is one element of the tree.
type Node struct {
	ID   int
	Kind Kind
	// Span is the literal text the node covers; for Raw nodes the whole input.
	Span string
	// Key and Modifiers are set for Symbol nodes only, with escapes resolved.
	Key       string
	Modifiers []string
	Children  []int
	Parent    int
}

// Tree is an arena of nodes addressed by index.
type Tree struct {
	nodes []Node
}

// NewTree returns an empty arena.
func NewTree() *Tree {
	return &Tree{}
}

// Len returns the number of nodes created so far.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node with the given id.
// The pointer is invalidated by the next node creation.
func (t *Tree) Node(id int) *Node {
	return &t.nodes[id]
}

// Roots returns ids of nodes without a parent, in creation order.
func (t *Tree) Roots() []int {
	var roots []int
	for _, n := range t.nodes {
		if n.Parent == NoParent {
			roots = append(roots, n.ID)
		}
	}
	return roots
}

// NewRaw adds an unparsed node. Pass NoParent for a root.
func (t *Tree) NewRaw(parent int, input string) int {
	return t.add(parent, KindRaw, input)
}

func (t *Tree) add(parent int, kind Kind, span string) int {
	id := len(t.nodes)
	n := Node{
		ID:     id,
		Kind:   kind,
		Span:   span,
		Parent: parent,
	}
	if kind == KindSymbol {
		parts := splitModifiers(span)
		n.Key = parts[0]
		if len(parts) > 1 {
			n.Modifiers = parts[1:]
		}
	}
	t.nodes = append(t.nodes, n)
	if parent != NoParent {
		t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	}
	return id
}

// splitModifiers splits a tag on unescaped separators and unescapes each part.
func splitModifiers(span string) []string {
	if !strings.ContainsRune(span, domain.Escape) {
		return strings.Split(span, domain.ModifierSeparator)
	}
	var (
		parts []string
		cur   strings.Builder
	)
	for i := 0; i < len(span); i++ {
		switch {
		case span[i] == domain.Escape:
			if i+1 < len(span) {
				i++
				cur.WriteByte(span[i])
			}
		case strings.HasPrefix(span[i:], domain.ModifierSeparator):
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(span[i])
		}
	}
	return append(parts, cur.String())
}
