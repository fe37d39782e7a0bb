/*
Package domain contains the core domain models of the colloquy dialog engine.

It defines the read-only flow graph authored by bot designers and the per-session
turn state the engine reads and rewrites on every incoming message. The package is
kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Flow / Node / Transition: the authored conversation graph.
  - Expression: a transition condition, either a literal boolean or an opaque reference
    evaluated by the host.
  - Position: where a session is in the graph, plus where it came from.
  - Slot: a named value extracted from user input, with expiry and overwrite protection.
  - NLUContext: a named context biasing the classifier for a number of turns.
  - Trigger: a candidate dialog entry point scored by the classifier.
  - Understanding: the classifier output consumed by a turn.
  - SessionState: the full snapshot persisted between turns.
*/
package domain
