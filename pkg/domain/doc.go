/*
Package domain contains the core vocabulary shared by the Tracery engine and its adapters.

It defines the error values returned by evaluation, the lifecycle events emitted while a
template is flattened, and the constants that make up the template syntax. The package is
kept free of I/O so that every adapter (HTTP, MCP, storage) can depend on it.

# Key Entities

  - RecursionError: The only hard failure of evaluation, raised when a self-referential
    grammar exceeds the configured depth bound.
  - LifecycleHooks: Callbacks for observability (metrics, debug logging).
  - SymbolSource / ActionOp: Labels describing how a symbol was resolved and how an action
    changed the temporary bindings.
*/
package domain
