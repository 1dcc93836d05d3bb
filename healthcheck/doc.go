// Package healthcheck provides the liveness listener started before a
// service's program.
//
// The listener answers every request for /healthCheck with 200 and the
// plain-text body AVAILABLE, and every other path with 404 NOT FOUND. It
// exists to signal process liveness to orchestrators and load balancers;
// it carries no application logic.
//
// A Server moves through Unbound, Listening, Closing and Closed exactly
// once. Stop force-closes open connections before releasing the port and
// may be called any number of times.
package healthcheck
