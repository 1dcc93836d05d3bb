package healthcheck

import (
	"context"
	"fmt"

	"github.com/kbukum/svcapp/component"
)

const componentName = "healthcheck"

var (
	_ component.Component     = (*Server)(nil)
	_ component.Describable   = (*Server)(nil)
	_ component.RouteProvider = (*Server)(nil)
)

// Name returns the component name used for registration.
func (s *Server) Name() string { return componentName }

// Health reports healthy only while the listener is serving.
func (s *Server) Health(ctx context.Context) component.Health {
	state := s.State()
	if state == StateListening {
		return component.Health{Name: componentName, Status: component.StatusHealthy}
	}
	return component.Health{
		Name:    componentName,
		Status:  component.StatusUnhealthy,
		Message: "listener " + state.String(),
	}
}

// Describe returns summary info logged at startup.
func (s *Server) Describe() component.Description {
	return component.Description{
		Name:    "Health Check",
		Type:    "server",
		Details: fmt.Sprintf("%s %s (h2c)", s.Addr(), Path),
		Port:    s.Port(),
	}
}

// Routes returns the routes answered with 200.
func (s *Server) Routes() []component.Route {
	ginRoutes := s.engine.Routes()
	routes := make([]component.Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, component.Route{Method: r.Method, Path: r.Path, Handler: "available"})
	}
	return routes
}
