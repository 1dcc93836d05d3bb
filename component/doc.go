// Package component defines the lifecycle contract shared by the health
// listener and any auxiliary services an App manages next to its program.
//
// # Interfaces
//
//   - Component: Name/Start/Stop/Health
//   - Describable: self-description logged next to the startup banner
//   - RouteProvider: HTTP routes served by a component
//
// Registry starts components in registration order and stops them in
// reverse order. Func builds a Component from plain start/stop functions.
package component
