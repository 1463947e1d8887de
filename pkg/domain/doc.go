/*
Package domain contains the core domain models of the cadence experiment runner.

It defines the entities the session state machine works with: the trials loaded
from the task catalog, the phases of a trial's display cycle, the trigger kinds
sent to the recording apparatus and the events published on every transition.
This package is kept pure and free of I/O, timers and persistence.

# Key Entities

  - Trial: One unit of task stimulus (ID and description text).
  - SequenceEntry: One row of the task order table.
  - Phase: One stage of a trial's display cycle (fixation, instruction, execute).
  - TriggerKind: The semantic event encoded into a wire marker.
  - Snapshot: The observable state of a session.
  - PhaseChanged / TriggerEvent: Events delivered to LifecycleHooks and subscribers.
*/
package domain
