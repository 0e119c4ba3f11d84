// Package modifiers holds the named text transformations applied to a resolved symbol,
// as in "#animal.a.capitalize#".
//
// Modifiers are pure functions. Unknown names are a no-op, never an error.
package modifiers

import (
	"sort"
	"strings"
	"sync"
)

// Func transforms a fragment of rendered text.
type Func func(text string) string

// ParamFunc is a modifier taking literal parameters, written as name(a,b).
type ParamFunc func(text string, params []string) string

// Registry maps modifier names to functions. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	funcs  map[string]Func
	params map[string]ParamFunc
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		funcs:  make(map[string]Func),
		params: make(map[string]ParamFunc),
	}
}

// Default returns a registry pre-loaded with the English modifiers.
func Default() *Registry {
	r := New()
	r.Register("capitalize", Capitalize)
	r.Register("capitalizeAll", CapitalizeAll)
	r.Register("s", Pluralize)
	r.Register("firstS", FirstS)
	r.Register("a", Article)
	r.Register("ed", PastTense)
	r.Register("spaceBefore", SpaceBefore)
	r.Register("spaceAfter", SpaceAfter)
	r.Register("inQuotes", InQuotes)
	r.Register("comma", Comma)
	r.RegisterParam("replace", Replace)
	return r
}

// Register adds or replaces a modifier.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// RegisterParam adds or replaces a parameterised modifier.
func (r *Registry) RegisterParam(name string, fn ParamFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params[name] = fn
}

// Lookup reports whether a modifier spec (with or without parameters) is known.
func (r *Registry) Lookup(spec string) bool {
	name, _, hasParams := ParseSpec(spec)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if hasParams {
		_, ok := r.params[name]
		return ok
	}
	_, ok := r.funcs[name]
	return ok
}

// Names returns every registered modifier name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs)+len(r.params))
	for k := range r.funcs {
		names = append(names, k)
	}
	for k := range r.params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Apply runs one modifier spec on text. Unknown modifiers return text unchanged.
func (r *Registry) Apply(text, spec string) string {
	name, params, hasParams := ParseSpec(spec)

	r.mu.RLock()
	fn, okFn := r.funcs[name]
	pfn, okParam := r.params[name]
	r.mu.RUnlock()

	switch {
	case hasParams && okParam:
		return pfn(text, params)
	case !hasParams && okFn:
		return fn(text)
	default:
		return text
	}
}

// ApplyAll runs specs in order, each consuming the previous output.
func (r *Registry) ApplyAll(text string, specs []string) string {
	for _, spec := range specs {
		text = r.Apply(text, spec)
	}
	return text
}

// ParseSpec splits "name(a,b)" into its name and parameters.
// A spec without a closing parenthesis is treated as a plain name.
func ParseSpec(spec string) (name string, params []string, hasParams bool) {
	open := strings.IndexByte(spec, '(')
	if open < 0 || !strings.HasSuffix(spec, ")") {
		return spec, nil, false
	}
	inner := spec[open+1 : len(spec)-1]
	if inner == "" {
		return spec[:open], nil, true
	}
	return spec[:open], strings.Split(inner, ","), true
}
