/*
Package trigger encodes semantic session events into short wire markers and
ships them to the recording apparatus.

Encoding uses a deployment Codebook: one code per kind, plus distinguished
task_start codes for known trial ids. Delivery is fire-and-forget: Emit hands
the marker to a single sender goroutine that owns the Transport, so a slow or
failing network never delays a phase transition. Failures are logged, counted
and remembered as the last Outcome; they never propagate into the caller.
*/
package trigger
