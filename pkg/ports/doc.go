/*
Package ports defines the driven ports (interfaces) for the tracery engine.

These interfaces decouple generation from where grammars live, allowing
the engine to work with various storage backends and replicas.

# Key Interfaces

  - GrammarLoader: Retrieves grammars by name (e.g., from files, Loam or Memory).
  - GrammarStore: A GrammarLoader that can also persist and delete grammars.
  - Watchable: Loaders that can notify about backend changes (hot reload).
  - DistributedLocker: Coordinates session access across replicas.
*/
package ports
