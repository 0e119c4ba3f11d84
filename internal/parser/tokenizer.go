package parser

import (
	"strings"

	"github.com/aretw0/tracery/pkg/domain"
)

// Parse tokenizes the Span of node id into Text, Symbol and Action children
// and returns their ids in order.
//
// The scan is a single pass that never fails:
//   - '\' makes the next character literal. In plain text the backslash is
//     dropped; inside an action the raw text is kept so the payload's escapes
//     apply when it is evaluated. Inside a tag it is kept until the key and
//     modifiers are split, so an escaped '.' stays part of the key.
//   - '[' at depth 0 (outside a tag) starts an action; ']' closing back to depth
//     0 emits it. Nested brackets only change the depth.
//   - '#' at depth 0 opens or closes a symbol.
//   - At the end, leftover text is emitted as Text. A dangling tag loses its
//     '#' marker and degrades to Text; unbalanced brackets are tolerated.
func (t *Tree) Parse(id int) []int {
	s := t.nodes[id].Span

	var (
		escaped bool
		depth   int
		inTag   bool
		start   int
		pending strings.Builder // escaped runs of the current segment
	)

	segment := func(end int) string {
		if pending.Len() == 0 {
			return s[start:end]
		}
		pending.WriteString(s[start:end])
		out := pending.String()
		pending.Reset()
		return out
	}
	flushText := func(end int) {
		if text := segment(end); text != "" {
			t.add(id, KindText, text)
		}
	}

	for i := 0; i < len(s); i++ {
		if escaped {
			escaped = false
			continue
		}

		switch s[i] {
		case domain.ActionOpen:
			if depth == 0 && !inTag {
				flushText(i)
				start = i + 1
			}
			depth++

		case domain.ActionClose:
			depth--
			if depth == 0 && !inTag {
				t.add(id, KindAction, segment(i))
				start = i + 1
			}

		case domain.SymbolDelimiter:
			if depth != 0 {
				break
			}
			if inTag {
				t.add(id, KindSymbol, segment(i))
			} else {
				flushText(i)
			}
			start = i + 1
			inTag = !inTag

		case domain.Escape:
			escaped = true
			if depth > 0 || inTag {
				break
			}
			pending.WriteString(s[start:i])
			start = i + 1
		}
	}

	if inTag {
		if text := unescape(segment(len(s))); text != "" {
			t.add(id, KindText, text)
		}
	} else {
		flushText(len(s))
	}

	return t.nodes[id].Children
}

// unescape drops each '\' and keeps the character after it.
func unescape(s string) string {
	if !strings.ContainsRune(s, domain.Escape) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == domain.Escape {
			i++
			if i == len(s) {
				break
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
