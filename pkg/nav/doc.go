// Package nav orchestrates client-side navigation: it drives the page
// loader, module loader, layout resolver, and renderer through the
// navigation state machine, keeps history and document metadata in sync,
// and decides which link activations belong to the engine at all.
//
// A navigation moves Idle → Loading → Composing → Painting → Committed,
// with Failed reachable from the three middle states. Failures escalate to
// a full document navigation instead of leaving a blank page; only layout
// render failures are absorbed before they ever reach the router.
//
// Every navigation takes a monotonically increasing token. Continuations
// past a suspension point re-check the token and silently discard stale
// work, so two overlapping navigations cannot commit out of order.
package nav
