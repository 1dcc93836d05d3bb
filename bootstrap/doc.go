// Package bootstrap orchestrates the lifecycle of a long-running service.
//
// An App is configured through chainable calls, then Bootstrap starts the
// lifecycle in the background:
//
//  1. bootstrap the DI container (when the App owns it)
//  2. start the health check listener and any added components
//  3. resolve the program from the container and log the service banner
//  4. start the program
//
// Shutdown runs exactly once, whatever triggers it (the program returning,
// an error, Shutdown, or a signal wired with ShutdownOnSignal): the program
// is stopped, the health check listener is closed, and every dispose action
// runs. Failures at each step are logged and never block the next step.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.RegisterProgram(NewWorker)
//	if err := app.Bootstrap(); err != nil {
//	    log.Fatal(err)
//	}
//	defer app.ShutdownOnSignal(context.Background())()
//	app.Wait()
//
// The exit function (os.Exit unless WithExitFunc is given) receives 0 after
// normal completion and 1 after a failure.
package bootstrap
