package disposal

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/svcapp/errors"
	"github.com/kbukum/svcapp/logger"
	"github.com/kbukum/svcapp/observability"
	"github.com/kbukum/svcapp/settle"
)

const metricKind = "dispose"

// Action is a cleanup callback.
type Action = settle.Func

// Option configures a Registry.
type Option func(*Registry)

// WithActionTimeout bounds each action. Zero or negative waits indefinitely.
func WithActionTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.timeout = d
	}
}

// Registry holds dispose actions until RunAll.
type Registry struct {
	log     *logger.Logger
	timeout time.Duration

	mu      sync.Mutex
	actions []settle.Task
	ran     bool
}

// New creates an empty Registry.
func New(log *logger.Logger, opts ...Option) *Registry {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	r := &Registry{log: log.WithComponent("disposal")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends an action. It fails once RunAll has started.
func (r *Registry) Register(name string, action Action) error {
	if action == nil {
		return apperrors.InvalidArgument("action", "is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ran {
		return apperrors.InvalidPhase("disposal.Register", "disposed")
	}
	r.actions = append(r.actions, settle.Task{Name: name, Fn: action})
	return nil
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions)
}

// RunAll runs every action concurrently and waits for all of them. Each
// failure is logged once as a DISPOSE_ACTION_FAILED error. Only the first
// call runs anything; it returns the number of failed actions.
func (r *Registry) RunAll(ctx context.Context) int {
	r.mu.Lock()
	if r.ran {
		r.mu.Unlock()
		return 0
	}
	r.ran = true
	tasks := make([]settle.Task, len(r.actions))
	for i, task := range r.actions {
		tasks[i] = settle.Task{Name: task.Name, Fn: r.instrument(task)}
	}
	r.mu.Unlock()

	failed := 0
	for i, err := range settle.All(ctx, r.timeout, tasks) {
		if err == nil {
			continue
		}
		failed++
		name := tasks[i].Name
		r.log.LogError(apperrors.DisposeAction(name, err), logger.Fields(logger.FieldAction, name))
	}
	return failed
}

// instrument wraps an action with a span and lifecycle metrics.
func (r *Registry) instrument(task settle.Task) settle.Func {
	return func(ctx context.Context) (err error) {
		ctx, span := observability.StartSpan(ctx, observability.SpanDisposeAction,
			trace.WithAttributes(attribute.String(observability.AttrAction, task.Name)))
		start := time.Now()
		defer func() {
			if p := recover(); p != nil {
				err = apperrors.Panic(task.Name, p)
			}
			observability.EndSpan(span, err)
			observability.Lifecycle().RecordStep(ctx, metricKind, task.Name, err, time.Since(start))
		}()
		return task.Fn(ctx)
	}
}
