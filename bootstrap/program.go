package bootstrap

import (
	"context"
	"errors"
	"sync"
)

// Program is the application unit an App starts and stops.
//
// Start runs until the program finishes on its own, fails, or is asked to
// stop; a program that stops because Stop was called should return nil.
// Stop requests graceful termination and may be called while Start is
// still running.
type Program interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// FuncProgram returns a program constructor for RegisterProgram that runs
// run as the program body. Stop cancels the context given to run, and a
// context.Canceled result caused by Stop counts as a clean exit.
func FuncProgram(run func(ctx context.Context) error) func() Program {
	return func() Program {
		return &funcProgram{run: run, stopped: make(chan struct{})}
	}
}

type funcProgram struct {
	run      func(ctx context.Context) error
	stopped  chan struct{}
	stopOnce sync.Once
}

func (p *funcProgram) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-p.stopped:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := p.run(ctx)
	if err != nil && errors.Is(err, context.Canceled) && p.isStopped() {
		return nil
	}
	return err
}

func (p *funcProgram) Stop(context.Context) error {
	p.stopOnce.Do(func() { close(p.stopped) })
	return nil
}

func (p *funcProgram) isStopped() bool {
	select {
	case <-p.stopped:
		return true
	default:
		return false
	}
}
