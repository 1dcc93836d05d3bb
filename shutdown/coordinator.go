package shutdown

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/svcapp/logger"
	"github.com/kbukum/svcapp/observability"
	"github.com/kbukum/svcapp/settle"
)

const metricKind = "shutdown"

// NoTimeout disables the grace period for a single step.
const NoTimeout time.Duration = -1

// Step is one named shutdown step.
type Step struct {
	Name string
	Fn   settle.Func
	// Timeout overrides the coordinator's step timeout when non-zero.
	Timeout time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithStepTimeout bounds each step. Zero or negative waits indefinitely.
func WithStepTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.stepTimeout = d
	}
}

// Coordinator runs its steps once, in order, on the first Shutdown call.
type Coordinator struct {
	log         *logger.Logger
	steps       []Step
	stepTimeout time.Duration
	started     atomic.Bool
	done        chan struct{}
}

// New creates a Coordinator. The step list is copied and cannot change
// afterwards.
func New(log *logger.Logger, steps []Step, opts ...Option) *Coordinator {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	c := &Coordinator{
		log:   log.WithComponent("shutdown"),
		steps: append([]Step(nil), steps...),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsShutdown reports whether shutdown has been triggered.
func (c *Coordinator) IsShutdown() bool {
	return c.started.Load()
}

// Done is closed once every step has finished.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Shutdown runs the steps if no earlier call has, and blocks until they are
// finished. It returns false without waiting when shutdown was already
// triggered.
func (c *Coordinator) Shutdown(ctx context.Context) bool {
	if !c.started.CompareAndSwap(false, true) {
		return false
	}
	defer close(c.done)

	ctx, span := observability.StartSpan(ctx, observability.SpanShutdown)
	defer span.End()

	c.log.Debug("Shutdown started", logger.Fields("steps", len(c.steps)))
	for i, step := range c.steps {
		c.runStep(ctx, i, step)
	}
	return true
}

func (c *Coordinator) runStep(ctx context.Context, index int, step Step) {
	name := step.Name
	if name == "" {
		name = "step-" + strconv.Itoa(index)
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanShutdownStep,
		trace.WithAttributes(attribute.String(observability.AttrStep, name)))
	start := time.Now()
	timeout := c.stepTimeout
	if step.Timeout != 0 {
		timeout = step.Timeout
	}
	err := settle.Run(ctx, name, timeout, step.Fn)
	duration := time.Since(start)
	observability.EndSpan(span, err)
	observability.Lifecycle().RecordStep(ctx, metricKind, name, err, duration)

	if err != nil {
		c.log.LogError(err, logger.Fields(logger.FieldStep, name))
		return
	}
	c.log.Debug("Shutdown step finished", logger.DurationFields(name, duration))
}
