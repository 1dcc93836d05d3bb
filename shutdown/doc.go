// Package shutdown runs an ordered list of shutdown steps exactly once,
// no matter how many callers trigger it or how often.
//
// The first Shutdown call claims the run and executes every step in order.
// A step that fails, panics or overruns its grace period is logged and the
// next step still runs. Later callers return immediately; callers that need
// the run to be over wait on Done.
package shutdown
