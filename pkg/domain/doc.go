/*
Package domain contains the core domain models for the stoptime engine.

It defines the trajectory state that the engine mutates and the checkpoint record that
stores persist. This package is kept pure and free of I/O, following Hexagonal
Architecture principles.

# Key Entities

  - State: The in-memory snapshot of a trajectory (current value, origin, counters).
  - ProblemKey: The decimal digit count addressing a checkpoint in a store.
  - Checkpoint: The serialized record of a State, exact for arbitrarily large integers.
  - Hooks: Observer callbacks fired by the engine.
*/
package domain
