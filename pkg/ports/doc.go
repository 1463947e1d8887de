/*
Package ports defines the driven ports (interfaces) of the cadence session core.

These interfaces decouple the state machine from timers, network transports and
persistence, so the core can be driven deterministically in tests.

# Key Interfaces

  - Scheduler: One-shot cancellable timers (ScheduleOnce).
  - Transport: Outbound delivery of encoded trigger markers.
  - Emitter: Semantic trigger emission used by the state machine.
  - ParamStore: Process-local key/value store for session parameters.
*/
package ports
