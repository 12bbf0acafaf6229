// Package errors provides structured errors for the Strada navigation engine.
//
// Every failure the engine can surface carries a category that the router
// uses to decide between absorbing the failure locally and escalating to a
// full document navigation:
//   - network: document fetch failed or returned a non-OK status
//   - data: the embedded page data block is missing or malformed
//   - module: a component module could not be loaded or is not invocable
//   - layout: a layout invocation failed (always absorbed, never escalates)
//   - render: a paint produced an empty container
//   - config: engine misconfiguration
//   - cli: command-line tool errors
//
// Each registered error has a stable code (e.g. "E101") mapping to a message
// and category, so log lines and tests can match on codes rather than text.
package errors
