// Package progress provides the event primitives, non-blocking hub, and
// emitter interfaces used to report lookup-run progress. Events are batched
// on a background goroutine and fanned out to pluggable sinks such as
// structured logging, Prometheus metrics, or in-memory capture.
package progress
