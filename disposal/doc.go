// Package disposal collects cleanup actions and runs them together, once.
//
// Actions have no ordering among themselves. RunAll starts all of them
// concurrently and returns when every one has settled; a failing or
// panicking action is logged and never affects its siblings or the caller.
package disposal
