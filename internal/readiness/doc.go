// Package readiness replaces fixed sleeps with bounded polls against the
// cluster API.
//
// Every wait takes an explicit timeout. When it expires the wait fails with
// a *util.TimeoutError naming what was awaited; when the caller's context is
// cancelled it fails with util.ErrCancelled. Transient API errors during a
// poll are logged and retried until the deadline.
package readiness
