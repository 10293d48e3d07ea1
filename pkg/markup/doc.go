/*
Package markup decodes and encodes machine definitions.

XML is the historical layout. Every STATE element anywhere in the document declares
a state (attribute "id") and each of its element children declares one transition
through the attributes "id" (message), "action" and "nextState". Child tag names are
not interpreted.

	<FSM>
	    <STATE id="START">
	        <MESSAGE id="MOVE" action="move" nextState="START"/>
	        <MESSAGE id="MOVELEFT" action="moveLeft" nextState="INTERMEDIATE"/>
	    </STATE>
	    <STATE id="INTERMEDIATE"/>
	</FSM>

YAML lists transitions explicitly and also accepts a compact "on" map whose values
use the "action:next" pair form:

	name: walker
	states:
	  - id: START
	    transitions:
	      - {message: MOVE, action: move, next: START}
	    on:
	      MOVELEFT: moveLeft:INTERMEDIATE
	  - id: INTERMEDIATE

Decoding only checks that the document is well formed. Semantic rules are enforced by
domain.Config.Validate.
*/
package markup
