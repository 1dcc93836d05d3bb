// Command heartbeat is a minimal svcapp service: it logs a heartbeat on an
// interval until stopped by a signal or until it has beaten the configured
// number of times.
package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/kbukum/svcapp/bootstrap"
	"github.com/kbukum/svcapp/component"
	"github.com/kbukum/svcapp/config"
	"github.com/kbukum/svcapp/di"
	apperrors "github.com/kbukum/svcapp/errors"
	"github.com/kbukum/svcapp/logger"
)

const serviceName = "heartbeat"

// Config is the heartbeat service configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// Beats stops the program after this many heartbeats; 0 runs until stopped.
	Beats int `yaml:"beats" mapstructure:"beats"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Interval == 0 {
		c.Interval = 5 * time.Second
	}
}

// Validate checks the service fields and then the heartbeat fields.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if c.Interval < 0 {
		return apperrors.InvalidArgument("interval", "must not be negative")
	}
	if c.Beats < 0 {
		return apperrors.InvalidArgument("beats", "must not be negative")
	}
	return nil
}

type heartbeat struct {
	cfg *Config
	log *logger.Logger
}

func newHeartbeat(c di.Container) (bootstrap.Program, error) {
	cfg, err := di.Resolve[*Config](c, di.Keys.Config)
	if err != nil {
		return nil, err
	}
	log, err := di.Resolve[*logger.Logger](c, di.Keys.Logger)
	if err != nil {
		return nil, err
	}
	hb := &heartbeat{cfg: cfg, log: log.WithComponent("heartbeat")}
	return bootstrap.FuncProgram(hb.run)(), nil
}

func (h *heartbeat) run(ctx context.Context) error {
	ticker := time.NewTicker(h.cfg.Interval)
	defer ticker.Stop()

	for beat := 1; ; beat++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.log.Info("heartbeat", logger.Fields("beat", beat))
			if h.cfg.Beats > 0 && beat >= h.cfg.Beats {
				return nil
			}
		}
	}
}

// uptime reports how long the service ran. It picks up the app logger once
// the container has it, which is before any component starts.
type uptime struct {
	container di.Container
	log       atomic.Pointer[logger.Logger]
	started   time.Time
}

func (u *uptime) start(ctx context.Context) error {
	log, err := di.Resolve[*logger.Logger](u.container, di.Keys.Logger)
	if err != nil {
		return err
	}
	u.log.Store(log.WithComponent("uptime"))
	u.started = time.Now()
	return nil
}

func (u *uptime) stop(ctx context.Context) error {
	u.currentLog().Info("uptime", logger.DurationFields("run", time.Since(u.started)))
	return nil
}

// currentLog falls back to the global logger when startup failed before the
// component ran.
func (u *uptime) currentLog() *logger.Logger {
	if l := u.log.Load(); l != nil {
		return l
	}
	return logger.GetGlobalLogger()
}

func main() {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}

	app, err := bootstrap.NewApp(&cfg, bootstrap.WithSummary(os.Stdout))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	up := &uptime{container: app.Container()}
	app.RegisterProgram(newHeartbeat).
		AddComponent(component.NewFunc("uptime", up.start, up.stop)).
		RegisterDisposeAction(func(ctx context.Context) error {
			up.currentLog().Info("heartbeat stopped")
			return nil
		})
	if err := app.Bootstrap(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	stop := app.ShutdownOnSignal(context.Background())
	defer stop()
	app.Wait()
}
