package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/svcapp/component"
	"github.com/kbukum/svcapp/config"
	"github.com/kbukum/svcapp/version"
)

// Banner is the service identity logged once the program is resolved.
type Banner struct {
	Environment string
	Name        string
	Version     string
	Description string
}

// NewBanner reads the identity from the service config. An empty version
// falls back to the build version.
func NewBanner(cfg *config.ServiceConfig) Banner {
	return Banner{
		Environment: cfg.Environment,
		Name:        cfg.Name,
		Version:     version.Resolve(cfg.Version),
		Description: cfg.Description,
	}
}

// String renders the banner line.
func (b Banner) String() string {
	return fmt.Sprintf("ENV: %s; NAME: %s; VERSION: %s; DESCRIPTION: %s.",
		b.Environment, b.Name, b.Version, b.Description)
}

// Summary renders the managed components after startup.
type Summary struct {
	banner          Banner
	instanceID      string
	startupDuration time.Duration
	infrastructure  []component.Description
	routes          []component.Route
}

// NewSummary creates a summary for the given service identity.
func NewSummary(banner Banner, instanceID string) *Summary {
	return &Summary{banner: banner, instanceID: instanceID}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Track adds a component's description, and its routes when it serves any.
func (s *Summary) Track(c component.Component) {
	if d, ok := c.(component.Describable); ok {
		desc := d.Describe()
		if desc.Name == "" {
			desc.Name = c.Name()
		}
		s.infrastructure = append(s.infrastructure, desc)
	}
	if rp, ok := c.(component.RouteProvider); ok {
		s.routes = append(s.routes, rp.Routes()...)
	}
}

// Render writes the summary, including live health from the registry.
func (s *Summary) Render(w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🚀 %s v%s started in %.2fs (%s)\n\n",
		s.banner.Name, s.banner.Version, s.startupDuration.Seconds(), s.instanceID)

	if len(s.infrastructure) > 0 {
		fmt.Fprintf(w, "📊 Infrastructure\n")
		for i, inf := range s.infrastructure {
			details := inf.Details
			if inf.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, inf.Port)
			}
			fmt.Fprintf(w, "   %s %s [%s]: %s\n", treePrefix(i, len(s.infrastructure)), inf.Name, inf.Type, details)
		}
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", treePrefix(i, len(s.routes)), r.Method, r.Path, r.Handler)
		}
	}

	if registry != nil {
		healthResults := registry.HealthAll(context.Background())
		if len(healthResults) > 0 {
			fmt.Fprintf(w, "\n🏥 Health Check\n")
			for i, h := range healthResults {
				msg := ""
				if h.Message != "" {
					msg = fmt.Sprintf(" (%s)", h.Message)
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(healthResults)),
					healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
			}
		}
	}

	fmt.Fprintf(w, "\n")
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
