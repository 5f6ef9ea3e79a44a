/*
Package ports defines the driven ports (interfaces) for the stoptime engine.

These interfaces decouple the stepping engine from its storage backends, so the same
engine runs against an in-memory map in tests and a file, SQLite or Redis backend in
production.

# Key Interfaces

  - CheckpointStore: Persists the latest TrajectoryState per problem key.
  - Locker: Advisory lock on a problem key, guarding against two runs sharing a checkpoint.
*/
package ports
