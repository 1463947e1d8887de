/*
Package observability provides monitoring for cadence sessions.

Metrics are Prometheus collectors fed by the session lifecycle hooks and the
trigger emitter's outcome observer. LogHooks mirrors the same events into a
structured log for post-hoc alignment with recorded data.
*/
package observability
