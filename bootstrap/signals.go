package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/kbukum/svcapp/logger"
)

// ShutdownOnSignal triggers Shutdown when one of sigs arrives (SIGINT and
// SIGTERM when none are given). A signal received while the app is still
// bootstrapping takes effect once the program is running. The returned
// function stops listening; it is safe to call more than once.
//
// The App never installs signal handlers on its own; hosts opt in here.
func (a *App[C]) ShutdownOnSignal(ctx context.Context, sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, sigs...)

	quit := make(chan struct{})
	var once sync.Once
	stop = func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(quit)
		})
	}

	go func() {
		select {
		case sig := <-sigCh:
			a.onSignal(ctx, sig.String(), quit)
		case <-ctx.Done():
		case <-quit:
		case <-a.done:
		}
	}()
	return stop
}

// onSignal waits for the program to be running, then shuts down. The
// logger is only safe to use once bootstrap has handed off to the run.
func (a *App[C]) onSignal(ctx context.Context, name string, quit <-chan struct{}) {
	select {
	case <-a.running:
	case <-a.done:
		return
	case <-ctx.Done():
		return
	case <-quit:
		return
	}
	a.log.Warn("SIGNAL RECEIVED ("+name+")", logger.Fields("signal", name))
	if err := a.Shutdown(ctx); err != nil {
		a.log.LogError(err)
	}
}
