package component

import (
	"context"
	"fmt"
	"testing"

	apperrors "github.com/kbukum/svcapp/errors"
	"github.com/kbukum/svcapp/logger/loggertest"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

type describedComponent struct {
	mockComponent
	desc Description
}

func (d *describedComponent) Describe() Description { return d.desc }

func newRegistry() *Registry {
	log, _ := loggertest.New("test")
	return NewRegistry(log)
}

func TestRegisterValidation(t *testing.T) {
	r := newRegistry()

	if err := r.Register(&mockComponent{name: "db"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name string
		c    Component
	}{
		{"nil", nil},
		{"empty name", &mockComponent{}},
		{"duplicate", &mockComponent{name: "db"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.Register(tt.c); !apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument) {
				t.Errorf("expected invalid argument, got %v", err)
			}
		})
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 component, got %d", r.Len())
	}
}

func TestGet(t *testing.T) {
	r := newRegistry()
	_ = r.Register(&mockComponent{name: "db"})

	if got := r.Get("db"); got == nil || got.Name() != "db" {
		t.Fatalf("expected registered component, got %v", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestStartAllInOrder(t *testing.T) {
	r := newRegistry()
	order := []string{}
	_ = r.Register(&mockComponent{name: "db", startOrder: &order})
	_ = r.Register(&mockComponent{name: "cache", startOrder: &order})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if len(order) != 2 || order[0] != "db" || order[1] != "cache" {
		t.Errorf("expected start order [db, cache], got %v", order)
	}

	// already started components are not started again
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("second StartAll failed: %v", err)
	}
	if len(order) != 2 {
		t.Errorf("expected no restarts, got %v", order)
	}
}

func TestStartAllErrorStopsStartedOnly(t *testing.T) {
	r := newRegistry()
	started, stopped := []string{}, []string{}
	_ = r.Register(&mockComponent{name: "db", startOrder: &started, stopOrder: &stopped})
	_ = r.Register(&mockComponent{name: "queue", startErr: fmt.Errorf("connection refused"), startOrder: &started, stopOrder: &stopped})
	_ = r.Register(&mockComponent{name: "cache", startOrder: &started, stopOrder: &stopped})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected error from StartAll")
	}
	if len(started) != 2 {
		t.Errorf("expected start to halt at the failure, got %v", started)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(stopped) != 1 || stopped[0] != "db" {
		t.Errorf("expected only db stopped, got %v", stopped)
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := newRegistry()
	order := []string{}
	_ = r.Register(&mockComponent{name: "db", stopOrder: &order})
	_ = r.Register(&mockComponent{name: "cache", stopOrder: &order})
	_ = r.Register(&mockComponent{name: "worker", stopOrder: &order})

	_ = r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 3 || order[0] != "worker" || order[1] != "cache" || order[2] != "db" {
		t.Errorf("expected reverse stop order [worker, cache, db], got %v", order)
	}

	// stopping twice is a no-op
	_ = r.StopAll(context.Background())
	if len(order) != 3 {
		t.Errorf("expected no second stop, got %v", order)
	}
}

func TestStopAllAttemptsEveryComponent(t *testing.T) {
	r := newRegistry()
	order := []string{}
	_ = r.Register(&mockComponent{name: "db", stopOrder: &order})
	_ = r.Register(&mockComponent{name: "cache", stopErr: fmt.Errorf("stop failed"), stopOrder: &order})
	_ = r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected error from StopAll")
	}
	if len(order) != 2 {
		t.Errorf("expected both components stopped, got %v", order)
	}
}

func TestHealthAll(t *testing.T) {
	r := newRegistry()
	_ = r.Register(&mockComponent{name: "db", health: Health{Name: "db", Status: StatusHealthy, Message: "connected"}})
	_ = r.Register(&mockComponent{name: "cache", health: Health{Name: "cache", Status: StatusUnhealthy, Message: "timeout"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusUnhealthy {
		t.Errorf("unexpected health results: %+v", results)
	}
}

func TestDescribe(t *testing.T) {
	r := newRegistry()
	_ = r.Register(&mockComponent{name: "plain"})
	_ = r.Register(&describedComponent{
		mockComponent: mockComponent{name: "metrics"},
		desc:          Description{Type: "server", Details: "127.0.0.1:9000", Port: 9000},
	})

	descs := r.Describe()
	if len(descs) != 1 {
		t.Fatalf("expected 1 description, got %d", len(descs))
	}
	if descs[0].Name != "metrics" || descs[0].Port != 9000 {
		t.Errorf("unexpected description: %+v", descs[0])
	}
}

func TestFuncComponent(t *testing.T) {
	stops := 0
	f := NewFunc("ticker", nil, func(context.Context) error {
		stops++
		return nil
	})

	if h := f.Health(context.Background()); h.Status != StatusDegraded {
		t.Errorf("expected degraded before start, got %s", h.Status)
	}
	if err := f.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if h := f.Health(context.Background()); h.Status != StatusHealthy {
		t.Errorf("expected healthy while running, got %s", h.Status)
	}
	_ = f.Stop(context.Background())
	_ = f.Stop(context.Background())
	if stops != 1 {
		t.Errorf("expected stop function once, got %d", stops)
	}

	failing := NewFunc("bad", func(context.Context) error { return fmt.Errorf("boom") }, nil)
	if err := failing.Start(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
	if h := failing.Health(context.Background()); h.Status != StatusUnhealthy || h.Message != "boom" {
		t.Errorf("expected unhealthy with message, got %+v", h)
	}
}
