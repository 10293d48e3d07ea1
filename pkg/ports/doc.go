/*
Package ports defines the driven ports (interfaces) for the waypoint engine.

These interfaces decouple the engine from the place its configuration lives, so the
same machine definition can come from a file, a Loam vault, a Redis key or plain Go
values.

# Key Interfaces

  - ConfigLoader: produces the ordered state configuration an engine is built from.
  - Watchable: optional; notifies that the configuration source changed.
*/
package ports
