/*
Package domain contains the core domain model of the waypoint engine.

It defines the identities, the raw configuration shape produced by loaders, the hook
capabilities callers implement, and the results and events emitted by a dispatch.
This package is kept pure and free of I/O, following the same hexagonal split as the
rest of the module: loaders live in pkg/adapters, the dispatch algorithm lives in
internal/runtime.

# Key Entities

  - StateID / MessageID: typed identities of states and messages.
  - Config: ordered states and their transitions, as returned by a ConfigLoader.
  - Action: the hook set (Entry, Action, AfterTransition, Exit) run around a transition attempt.
  - StateHook: a state-level hook fired before or after any transition into a state.
  - Result: what a dispatch resolved and whether the transition was committed.
*/
package domain
