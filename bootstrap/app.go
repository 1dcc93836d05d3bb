package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/svcapp/component"
	"github.com/kbukum/svcapp/config"
	"github.com/kbukum/svcapp/di"
	"github.com/kbukum/svcapp/disposal"
	apperrors "github.com/kbukum/svcapp/errors"
	"github.com/kbukum/svcapp/healthcheck"
	"github.com/kbukum/svcapp/logger"
	"github.com/kbukum/svcapp/observability"
	"github.com/kbukum/svcapp/settle"
	"github.com/kbukum/svcapp/shutdown"
)

// App orchestrates the lifecycle of one long-running service: dependency
// wiring, the health check listener, the program, and a single ordered
// shutdown followed by cleanup, whatever triggered it.
//
// The type parameter C is the config type. Any struct embedding
// config.ServiceConfig satisfies Config.
//
// Example:
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.UseInstaller(installer).
//	    RegisterProgram(NewWorker).
//	    RegisterDisposeAction(flushCache)
//	if err := app.Bootstrap(); err != nil {
//	    return err
//	}
//	stop := app.ShutdownOnSignal(context.Background())
//	defer stop()
//	os.Exit(app.Wait())
type App[C Config] struct {
	Cfg C

	service       *config.ServiceConfig
	container     di.Container
	ownsContainer bool
	log           *logger.Logger
	instanceID    string
	exit          func(code int)
	summaryOut    io.Writer

	// guarded by mu while configuring
	mu                sync.Mutex
	phase             phaseState
	configErrs        []error
	programRegistered bool
	healthPort        int
	disposeSeq        int
	pendingDispose    []settle.Task
	pendingComponents []component.Component

	// set during bootstrap; coordinator, disposer and components exist
	// before the background run starts
	health      *healthcheck.Server
	components  *component.Registry
	disposer    *disposal.Registry
	coordinator *shutdown.Coordinator
	program     Program

	cleanupOnce sync.Once
	isCleanUp   atomic.Bool
	running     chan struct{}
	cleaned     chan struct{}
	done        chan struct{}
	exitCode    int
	failure     error
}

// NewApp creates an application from a typed config. It applies defaults
// and validates the config before anything else happens.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Cfg:        cfg,
		service:    base,
		container:  o.container,
		log:        o.logger,
		instanceID: uuid.NewString(),
		exit:       o.exit,
		summaryOut: o.summary,
		healthPort: base.HealthCheck.Port,
		running:    make(chan struct{}),
		cleaned:    make(chan struct{}),
		done:       make(chan struct{}),
	}
	if app.container == nil {
		app.container = di.NewContainer()
		app.ownsContainer = true
	}
	if err := app.container.RegisterSingleton(di.Keys.Config, cfg); err != nil {
		return nil, err
	}
	return app, nil
}

// InstanceID identifies this run in logs and telemetry.
func (a *App[C]) InstanceID() string { return a.instanceID }

// Container returns the DI container.
func (a *App[C]) Container() di.Container { return a.container }

// Phase returns the current lifecycle phase.
func (a *App[C]) Phase() Phase { return a.phase.load() }

// Err returns every configuration failure recorded so far, joined.
func (a *App[C]) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return errors.Join(a.configErrs...)
}

// configure runs fn if the app is still configuring and records any failure.
func (a *App[C]) configure(op string, fn func() error) *App[C] {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p := a.phase.load(); p != PhaseConfiguring {
		a.configErrs = append(a.configErrs, apperrors.InvalidPhase(op, p.String()))
		return a
	}
	if err := fn(); err != nil {
		a.configErrs = append(a.configErrs, err)
	}
	return a
}

// UseLogger sets the logger. Without one, Bootstrap builds a logger from
// the service config: JSON unless the environment is development.
func (a *App[C]) UseLogger(l *logger.Logger) *App[C] {
	return a.configure("UseLogger", func() error {
		if l == nil {
			return apperrors.InvalidArgument("logger", "is required")
		}
		a.log = l
		return nil
	})
}

// UseInstaller applies an installer to the container immediately.
func (a *App[C]) UseInstaller(installer di.Installer) *App[C] {
	return a.configure("UseInstaller", func() error {
		if installer == nil {
			return apperrors.InvalidArgument("installer", "is required")
		}
		return a.container.Install(installer)
	})
}

// RegisterProgram registers the program constructor. It is constructed
// lazily, once, under di.Keys.Program. Only one program may be registered.
func (a *App[C]) RegisterProgram(constructor any) *App[C] {
	return a.configure("RegisterProgram", func() error {
		if a.programRegistered {
			return apperrors.New(apperrors.ErrCodeInvalidPhase, "a program is already registered").
				WithDetail("operation", "RegisterProgram")
		}
		if constructor == nil || reflect.TypeOf(constructor).Kind() != reflect.Func {
			return apperrors.InvalidArgument("program", "must be a constructor function")
		}
		if err := a.container.Register(di.Keys.Program, constructor); err != nil {
			return err
		}
		a.programRegistered = true
		return nil
	})
}

// RegisterDisposeAction adds a cleanup action run during the cleanup
// sequence. Actions run concurrently with no ordering among them.
func (a *App[C]) RegisterDisposeAction(action settle.Func) *App[C] {
	return a.configure("RegisterDisposeAction", func() error {
		if action == nil {
			return apperrors.InvalidArgument("action", "is required")
		}
		a.disposeSeq++
		a.pendingDispose = append(a.pendingDispose, settle.Task{
			Name: fmt.Sprintf("dispose-%d", a.disposeSeq),
			Fn:   action,
		})
		return nil
	})
}

// UseHealthCheckServerPort overrides the health check port. 0 picks a free
// port; the bound port is logged.
func (a *App[C]) UseHealthCheckServerPort(port int) *App[C] {
	return a.configure("UseHealthCheckServerPort", func() error {
		cfg := healthcheck.Config{Port: port}
		if err := cfg.Validate(); err != nil {
			return err
		}
		a.healthPort = port
		return nil
	})
}

// AddComponent adds an auxiliary component. Components start in order
// after the health check listener and stop in reverse order during cleanup.
func (a *App[C]) AddComponent(c component.Component) *App[C] {
	return a.configure("AddComponent", func() error {
		if c == nil {
			return apperrors.InvalidArgument("component", "is required")
		}
		a.pendingComponents = append(a.pendingComponents, c)
		return nil
	})
}

// Bootstrap validates the configuration and starts the lifecycle in the
// background. It returns an error, without side effects, if the app was
// already bootstrapped, has no program, or recorded configuration errors.
// The outcome is reported through logs and the exit code; see Wait.
func (a *App[C]) Bootstrap() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if p := a.phase.load(); p != PhaseConfiguring {
		return apperrors.InvalidPhase("Bootstrap", p.String())
	}
	if len(a.configErrs) > 0 {
		return errors.Join(a.configErrs...)
	}
	if !a.programRegistered {
		return apperrors.New(apperrors.ErrCodeInvalidPhase, "no program registered").
			WithDetail("operation", "Bootstrap")
	}

	if a.log == nil {
		a.log = logger.ForEnvironment(a.service.Environment, a.service.Name, a.service.Logging)
	}
	a.log = a.log.WithFields(logger.Fields(logger.FieldInstanceID, a.instanceID))

	a.disposer = disposal.New(a.log, disposal.WithActionTimeout(a.service.Shutdown.DisposeTimeout))
	a.components = component.NewRegistry(a.log)
	for _, task := range a.pendingDispose {
		a.registerInternal(task.Name, task.Fn)
	}
	a.configureShutdown()

	a.phase.advance(PhaseBootstrapping)
	go a.run()
	return nil
}

// Wait blocks until the lifecycle has finished and returns the exit code
// handed to the exit function: 0 after normal completion, 1 after a failure.
func (a *App[C]) Wait() int {
	<-a.done
	return a.exitCode
}

// Done is closed when the lifecycle has finished.
func (a *App[C]) Done() <-chan struct{} { return a.done }

// Failure returns the error that ended the lifecycle, if any. It is only
// meaningful after Done is closed.
func (a *App[C]) Failure() error {
	select {
	case <-a.done:
		return a.failure
	default:
		return nil
	}
}

// IsShutdown reports whether shutdown has been triggered. A run that ended
// through completion or failure was never shut down.
func (a *App[C]) IsShutdown() bool {
	return a.phase.load() >= PhaseBootstrapping && a.coordinator.IsShutdown()
}

// Shutdown triggers the shutdown sequence and waits until its steps have
// finished or ctx is done. It fails before the program is running. Once
// completion or a failure has started the cleanup sequence, it only waits
// for that cleanup to finish.
func (a *App[C]) Shutdown(ctx context.Context) error {
	p := a.phase.load()
	if p < PhaseRunning {
		return apperrors.InvalidPhase("Shutdown", p.String())
	}
	if a.isCleanUp.Load() && !a.coordinator.IsShutdown() {
		select {
		case <-a.cleaned:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	a.phase.advance(PhaseShuttingDown)
	if a.coordinator.Shutdown(ctx) {
		return nil
	}
	select {
	case <-a.coordinator.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the background lifecycle started by Bootstrap.
func (a *App[C]) run() {
	defer close(a.done)
	ctx := context.Background()

	if err := a.start(ctx); err != nil {
		a.failure = apperrors.UnhandledBootstrap(err)
		a.exitCode = a.fail(ctx, err)
	}
	a.exit(a.exitCode)
}

func (a *App[C]) start(ctx context.Context) error {
	started := time.Now()
	ctx, span := observability.StartSpan(ctx, observability.SpanBootstrap, trace.WithAttributes(
		attribute.String(observability.AttrServiceName, a.service.Name),
		attribute.String(observability.AttrInstanceID, a.instanceID),
	))

	a.configureTelemetry(ctx)
	if err := a.configureContainer(); err != nil {
		observability.EndSpan(span, err)
		return err
	}
	if err := a.configureStartup(ctx); err != nil {
		observability.EndSpan(span, err)
		return err
	}

	a.phase.advance(PhaseRunning)
	close(a.running)

	result := make(chan error, 1)
	go func() {
		result <- settle.Run(context.Background(), "program.Start", 0, a.program.Start)
	}()
	a.log.Info("SERVICE STARTED")
	observability.EndSpan(span, nil)
	a.printSummary(time.Since(started))

	if err := <-result; err != nil {
		return err
	}
	if a.coordinator.IsShutdown() {
		<-a.coordinator.Done()
		a.cleanUp(ctx)
		return nil
	}
	a.cleanUp(ctx)
	a.log.Info("SERVICE COMPLETE")
	return nil
}

// fail is the single failure boundary: it logs, cleans up and picks the
// exit code.
func (a *App[C]) fail(ctx context.Context, err error) int {
	a.log.Warn("SERVICE ERROR")
	a.log.LogError(err)
	a.cleanUp(ctx)
	if a.coordinator.IsShutdown() {
		<-a.coordinator.Done()
	}
	return 1
}

func (a *App[C]) configureTelemetry(ctx context.Context) {
	if !a.service.Telemetry.Enabled {
		return
	}
	providers, err := observability.Setup(ctx, a.service.Telemetry,
		a.service.Name, NewBanner(a.service).Version, a.service.Environment)
	if err != nil {
		a.log.Warn("Telemetry disabled", logger.ErrorFields("telemetry.setup", err))
		return
	}
	a.registerInternal("telemetry-traces", providers.ShutdownTracer)
	a.registerInternal("telemetry-metrics", providers.ShutdownMeter)
}

func (a *App[C]) configureContainer() error {
	if err := a.container.RegisterSingleton(di.Keys.Logger, a.log); err != nil {
		return err
	}
	if !a.ownsContainer {
		return nil
	}
	a.registerInternal("container", func(context.Context) error {
		return a.container.Close()
	})
	return a.container.Bootstrap()
}

func (a *App[C]) configureStartup(ctx context.Context) error {
	a.log.Info("SERVICE STARTING...")

	a.health = healthcheck.New(healthcheck.Config{Port: a.healthPort}, a.log)
	if err := a.health.Start(ctx); err != nil {
		a.log.Error(fmt.Sprintf("ERROR STARTING HEALTH CHECK SERVER ON PORT %d", a.healthPort),
			logger.Fields(logger.FieldPort, a.healthPort))
		return err
	}
	port := a.health.Port()
	a.log.Info(fmt.Sprintf("STARTED HEALTH CHECK SERVER ON PORT %d", port),
		logger.Fields(logger.FieldPort, port))
	a.registerInternal("healthcheck", a.health.Stop)

	a.registerInternal("components", a.components.StopAll)
	for _, c := range a.pendingComponents {
		if err := a.components.Register(c); err != nil {
			return err
		}
	}
	if err := a.components.StartAll(ctx); err != nil {
		return err
	}

	program, err := di.Resolve[Program](a.container, di.Keys.Program)
	if err != nil {
		return err
	}
	a.program = program

	a.log.Info(NewBanner(a.service).String())
	for _, desc := range a.components.Describe() {
		a.log.Debug("Component", logger.Fields(
			logger.FieldComponent, desc.Name,
			"type", desc.Type,
			"details", desc.Details,
		))
	}
	return nil
}

func (a *App[C]) configureShutdown() {
	a.registerInternal("cleanup-notice", func(context.Context) error {
		a.log.Info("CLEANING UP. PLEASE WAIT...")
		return nil
	})

	a.coordinator = shutdown.New(a.log, []shutdown.Step{
		{Name: "stop-program", Fn: a.stopProgram},
		{Name: "stop-healthcheck", Fn: a.stopHealthCheck},
		{Name: "cleanup", Fn: func(ctx context.Context) error {
			a.cleanUp(ctx)
			return nil
		}, Timeout: shutdown.NoTimeout},
	}, shutdown.WithStepTimeout(a.service.Shutdown.StepTimeout))
}

func (a *App[C]) stopProgram(ctx context.Context) error {
	if a.program == nil {
		return nil
	}
	a.log.Info("STOPPING PROGRAM...")
	if err := settle.Run(ctx, "program.Stop", 0, a.program.Stop); err != nil {
		a.log.Warn("ERROR STOPPING PROGRAM")
		a.log.LogError(apperrors.ProgramStop(err))
		return nil
	}
	a.log.Info("PROGRAM STOPPED")
	return nil
}

func (a *App[C]) stopHealthCheck(ctx context.Context) error {
	if a.health == nil {
		return nil
	}
	port := a.health.Port()
	if err := a.health.Stop(ctx); err != nil {
		a.log.Warn(fmt.Sprintf("ERROR STOPPING HEALTH CHECK SERVER ON PORT %d", port))
		a.log.LogError(err)
		return nil
	}
	a.log.Info(fmt.Sprintf("STOPPED HEALTH CHECK SERVER ON PORT %d", port))
	return nil
}

// cleanUp runs the dispose actions exactly once. Concurrent callers block
// until the first has finished.
func (a *App[C]) cleanUp(ctx context.Context) {
	a.cleanupOnce.Do(func() {
		a.isCleanUp.Store(true)
		a.phase.advance(PhaseShuttingDown)

		ctx, span := observability.StartSpan(ctx, observability.SpanCleanup)
		a.log.Info("DISPOSE ACTIONS EXECUTING...")
		// Actions are recovered one by one inside the registry. This only
		// catches a fault in the registry itself, so cleanup still finishes.
		failed := 0
		err := settle.Run(ctx, "dispose", 0, func(ctx context.Context) error {
			failed = a.disposer.RunAll(ctx)
			return nil
		})
		if err != nil {
			a.log.Warn("DISPOSE ACTIONS ERROR")
			a.log.LogError(err)
		} else {
			a.log.Info("DISPOSE ACTIONS COMPLETE", logger.Fields("failed", failed))
		}
		observability.EndSpan(span, err)
		a.phase.advance(PhaseCleanedUp)
		close(a.cleaned)
	})
}

// registerInternal adds an orchestrator-owned dispose action. The registry
// only rejects actions once cleanup has started, and by then nothing is
// left to release, so the error is logged rather than returned.
func (a *App[C]) registerInternal(name string, action settle.Func) {
	if err := a.disposer.Register(name, action); err != nil {
		a.log.LogError(err, logger.Fields(logger.FieldAction, name))
	}
}

func (a *App[C]) printSummary(d time.Duration) {
	if a.summaryOut == nil {
		return
	}
	s := NewSummary(NewBanner(a.service), a.instanceID)
	s.SetStartupDuration(d)
	s.Track(a.health)
	for _, c := range a.components.All() {
		s.Track(c)
	}
	s.Render(a.summaryOut, a.components)
}
