package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventFlattenStart EventType = "flatten_start"
	EventFlattenEnd   EventType = "flatten_end"
	EventSymbol       EventType = "symbol"
	EventAction       EventType = "action"
)

// SymbolSource tells where a symbol's replacement came from.
type SymbolSource string

const (
	SourceBinding  SymbolSource = "binding"
	SourceGrammar  SymbolSource = "grammar"
	SourceFallback SymbolSource = "fallback"
)

// ActionOp describes what an action did to the temporary bindings.
type ActionOp string

const (
	ActionPush    ActionOp = "push"
	ActionPop     ActionOp = "pop"
	ActionIgnored ActionOp = "ignored"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// FlattenEvent marks the start or end of a top-level Flatten call.
type FlattenEvent struct {
	EventBase
	Template string        `json:"template"`
	Output   string        `json:"output,omitempty"`
	Nodes    int           `json:"nodes,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// SymbolEvent reports one symbol resolution.
type SymbolEvent struct {
	EventBase
	Key       string       `json:"key"`
	Modifiers []string     `json:"modifiers,omitempty"`
	Source    SymbolSource `json:"source"`
	Depth     int          `json:"depth"`
}

// ActionEvent reports one action node.
type ActionEvent struct {
	EventBase
	Name string   `json:"name"`
	Op   ActionOp `json:"op"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnFlattenStart func(context.Context, *FlattenEvent)
	OnFlattenEnd   func(context.Context, *FlattenEvent)
	OnSymbol       func(context.Context, *SymbolEvent)
	OnAction       func(context.Context, *ActionEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnFlattenStart: chain(h.OnFlattenStart, other.OnFlattenStart),
		OnFlattenEnd:   chain(h.OnFlattenEnd, other.OnFlattenEnd),
		OnSymbol:       chain(h.OnSymbol, other.OnSymbol),
		OnAction:       chain(h.OnAction, other.OnAction),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
