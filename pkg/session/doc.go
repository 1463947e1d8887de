/*
Package session implements the experiment session state machine.

A Machine sequences the phases of every trial, draws the randomized fixation
interval, and emits the trigger bound to each transition before the new phase
becomes externally visible. It advances only inside scheduler callbacks or the
explicit Start and Abort operations, all of which must run on one goroutine
(see package loop). The machine holds at most one pending timer; every
transition cancels the previous handle before scheduling the next.

Two cycles are supported and fixed per machine:

	ThreePhase: Fixation -> Instruction -> Execute -> (Fixation | Ended)
	TwoPhase:   Fixation -> Instruction -> (Fixation | Ended)

Abort is accepted in any running state and returns the machine to Idle via
Aborted. After Ended the machine waits for the grace period, returns to Idle
and calls the OnComplete hook.
*/
package session
