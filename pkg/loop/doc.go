/*
Package loop provides the single-threaded cooperative executor that drives a
session.

Every entry point into the state machine (timer expiry, operator start and
abort) is posted to the Loop and runs on its goroutine, one at a time. Timers
are one-shot and cancellable: once a CancelFunc returns, the callback is
guaranteed not to run, even if its timer already fired and the callback is
sitting in the queue.
*/
package loop
