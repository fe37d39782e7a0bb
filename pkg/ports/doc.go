/*
Package ports defines the driven ports (interfaces) for the colloquy engine.

These interfaces decouple the turn logic from external implementations, allowing
the engine to work with various flow sources and session storage backends.

# Key Interfaces

  - FlowLoader: loads the authored flows (e.g., from Loam, YAML bundles or memory).
  - SessionStore: persists and loads SessionState between turns.
  - DistributedLocker: serializes turns of the same session across replicas.
*/
package ports
