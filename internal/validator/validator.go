// Package validator inspects a grammar for references that cannot resolve
// and rules that can never be reached.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/tracery/internal/parser"
	"github.com/aretw0/tracery/pkg/grammar"
)

// Reference is a symbol read by a rule.
type Reference struct {
	Rule   string
	Symbol string
}

// Report is the outcome of Validate. Neither finding stops a grammar from
// expanding: undefined symbols render as their own key.
type Report struct {
	// Undefined lists symbols that are neither rules nor bound by any action.
	Undefined []Reference
	// Unreachable lists rules that no expansion from the start symbol can touch.
	Unreachable []string
}

// OK reports whether there are no findings.
func (r *Report) OK() bool {
	return len(r.Undefined) == 0 && len(r.Unreachable) == 0
}

// Err summarizes the findings, or returns nil when there are none.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	var lines []string
	for _, ref := range r.Undefined {
		lines = append(lines, fmt.Sprintf("Undefined symbol '%s' in rule '%s'", ref.Symbol, ref.Rule))
	}
	for _, name := range r.Unreachable {
		lines = append(lines, fmt.Sprintf("Unreachable rule '%s'", name))
	}
	return fmt.Errorf("found %d problems:\n- %s", len(lines), strings.Join(lines, "\n- "))
}

// Validate crawls g from start. Every variant of every rule is scanned, so a
// binding made anywhere counts as a definition everywhere.
// An empty start skips the reachability check.
func Validate(g grammar.Grammar, start string) *Report {
	symbols := make(map[string][]string, len(g))
	bound := map[string]bool{}
	for _, name := range g.Symbols() {
		rule := g[name]
		seen := map[string]bool{}
		for _, v := range rule.Variants() {
			syms, binds := parser.References(v)
			for _, s := range syms {
				if !seen[s] {
					seen[s] = true
					symbols[name] = append(symbols[name], s)
				}
			}
			for _, b := range binds {
				bound[b] = true
			}
		}
	}

	report := &Report{}
	for _, name := range g.Symbols() {
		for _, s := range symbols[name] {
			if _, ok := g[s]; !ok && !bound[s] {
				report.Undefined = append(report.Undefined, Reference{Rule: name, Symbol: s})
			}
		}
	}

	if start == "" {
		return report
	}

	visited := map[string]bool{}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		for _, s := range symbols[current] {
			if !visited[s] {
				queue = append(queue, s)
			}
		}
	}

	for _, name := range g.Symbols() {
		if !visited[name] {
			report.Unreachable = append(report.Unreachable, name)
		}
	}
	sort.Strings(report.Unreachable)
	return report
}
