// Package http exposes the operator controls of a cadence station: catalog
// upload, start, abort, live phase events over SSE and Prometheus metrics.
package http
