/*
Package waypoint is an embeddable finite-state-machine engine.

A machine is a table of states, the messages each state accepts and the state each
message leads to. The engine holds one current state. Every dispatched message is
resolved against it and the engine runs caller-supplied hooks around the transition,
committing it only when the governing action agrees.

# Concept

The definition of a machine (which states exist, which messages move between them) is
data, loaded through a ports.ConfigLoader from an XML or YAML file, a Loam vault, a
Redis key or plain Go values. Behavior is code: the host binds domain.Action values to
transitions and domain.StateHook values to states. The same definition can back many
independent engines.

# Dispatch Order

For a message handled by the current state, the engine runs:

  - the target state's before-hook
  - Entry and Action of the governing action (bound to the transition, else the default)
  - the commit, if Action returned true or no action governs the transition
  - AfterTransition, only after a commit
  - Exit, always
  - the target state's after-hook

A message the current state does not handle returns a Result with OutcomeUnhandled and
nothing else happens. The first hook returning an error stops the sequence.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/waypoint"
		"github.com/aretw0/waypoint/pkg/domain"
	)

	func main() {
		ctx := context.Background()

		eng, err := waypoint.Open(ctx, "./walker.xml",
			waypoint.WithDefaultAction(domain.Always()),
		)
		if err != nil {
			log.Fatal(err)
		}

		eng.SetAction("MOVELEFT", domain.ActionFunc(
			func(cur domain.StateID, msg domain.MessageID, next domain.StateID, shared any) (bool, error) {
				log.Printf("%s --%s--> %s", cur, msg, next)
				return true, nil
			}))

		res, err := eng.Dispatch(ctx, "MOVELEFT")
		if err != nil {
			log.Fatal(err)
		}
		log.Println(res.Outcome, eng.Current())
	}
*/
package waypoint
