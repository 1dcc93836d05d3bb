package di

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	apperrors "github.com/kbukum/svcapp/errors"
)

func TestRegisterAndResolve(t *testing.T) {
	c := NewContainer()

	if err := c.Register("greeting", func() string { return "hello" }); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	val, err := c.Resolve("greeting")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if val != "hello" {
		t.Errorf("expected 'hello', got %v", val)
	}
}

func TestResolveNotRegistered(t *testing.T) {
	c := NewContainer()
	_, err := c.Resolve("nonexistent")
	if err == nil {
		t.Fatal("expected error for unregistered component")
	}
	if !strings.Contains(err.Error(), "not registered") {
		t.Errorf("expected 'not registered' in error, got %q", err.Error())
	}
}

func TestRegisterSingleton(t *testing.T) {
	c := NewContainer()
	instance := "singleton-value"

	if err := c.RegisterSingleton("single", instance); err != nil {
		t.Fatalf("RegisterSingleton failed: %v", err)
	}
	val, err := c.Resolve("single")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if val != instance {
		t.Errorf("expected %q, got %v", instance, val)
	}
}

func TestRegisterValidation(t *testing.T) {
	c := NewContainer()

	tests := []struct {
		name        string
		constructor interface{}
	}{
		{"nil", nil},
		{"not a func", "value"},
		{"two params", func(a, b int) int { return a + b }},
		{"wrong param", func(n int) int { return n }},
		{"no results", func() {}},
		{"second result not error", func() (int, int) { return 1, 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Register("x", tt.constructor)
			if !apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument) {
				t.Errorf("expected invalid argument, got %v", err)
			}
		})
	}

	if err := c.Register("", func() int { return 1 }); !apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument) {
		t.Errorf("expected invalid argument for empty key, got %v", err)
	}
	if err := c.RegisterSingleton("x", nil); !apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument) {
		t.Errorf("expected invalid argument for nil instance, got %v", err)
	}
}

func TestLazyConstructedOnce(t *testing.T) {
	c := NewContainer()
	var calls int32
	_ = c.Register("counter", func() *int32 {
		atomic.AddInt32(&calls, 1)
		return new(int32)
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Resolve("counter"); err != nil {
				t.Errorf("Resolve failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected constructor to run once, ran %d times", got)
	}
	a, _ := c.Resolve("counter")
	b, _ := c.Resolve("counter")
	if a != b {
		t.Error("expected the same cached instance")
	}
}

func TestLazyErrorNotCached(t *testing.T) {
	c := NewContainer()
	fail := true
	_ = c.Register("flaky", func() (string, error) {
		if fail {
			return "", errors.New("not yet")
		}
		return "ok", nil
	})

	if _, err := c.Resolve("flaky"); err == nil {
		t.Fatal("expected first resolve to fail")
	}
	fail = false
	val, err := c.Resolve("flaky")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if val != "ok" {
		t.Errorf("expected 'ok', got %v", val)
	}
}

func TestConstructorPanicBecomesError(t *testing.T) {
	c := NewContainer()
	_ = c.Register("boom", func() int { panic("kaboom") })

	_, err := c.Resolve("boom")
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("expected panic to surface as error, got %v", err)
	}
}

func TestConstructorParameters(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterSingleton("base", 40)
	_ = c.Register("derived", func(c Container) (int, error) {
		base, err := Resolve[int](c, "base")
		return base + 2, err
	})
	_ = c.Register("ctx", func(ctx context.Context) bool { return ctx != nil })

	if got := MustResolve[int](c, "derived"); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := MustResolve[bool](c, "ctx"); !got {
		t.Error("expected a non-nil context")
	}
}

func TestEagerConstructedAtBootstrap(t *testing.T) {
	c := NewContainer()
	var built bool
	_ = c.RegisterEager("eager", func() string {
		built = true
		return "ready"
	})

	if built {
		t.Fatal("eager component built before bootstrap")
	}
	if _, err := c.Resolve("eager"); err == nil {
		t.Error("expected resolve before bootstrap to fail")
	}
	if err := c.Bootstrap(); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if !built || !c.IsBootstrapped() {
		t.Fatal("expected eager component built at bootstrap")
	}
	if got := MustResolve[string](c, "eager"); got != "ready" {
		t.Errorf("expected 'ready', got %q", got)
	}

	// registered after bootstrap: constructed immediately
	if err := c.RegisterEager("late", func() int { return 7 }); err != nil {
		t.Fatalf("RegisterEager failed: %v", err)
	}
	if got := MustResolve[int](c, "late"); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}

func TestBootstrapPropagatesEagerFailure(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterEager("bad", func() (int, error) { return 0, errors.New("no database") })

	err := c.Bootstrap()
	if err == nil || !strings.Contains(err.Error(), "no database") {
		t.Errorf("expected eager failure, got %v", err)
	}
}

func TestInstall(t *testing.T) {
	c := NewContainer()
	err := c.Install(InstallerFunc(func(c Container) error {
		if err := c.RegisterSingleton("a", "A"); err != nil {
			return err
		}
		return c.Register("b", func() string { return "B" })
	}))
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	regs := c.Registrations()
	if len(regs) != 2 || regs[0].Key != "a" || regs[1].Key != "b" {
		t.Fatalf("unexpected registrations: %+v", regs)
	}
	if regs[0].Mode != Singleton || regs[1].Mode != Lazy {
		t.Errorf("unexpected modes: %s, %s", regs[0].Mode, regs[1].Mode)
	}

	failing := InstallerFunc(func(Container) error { return errors.New("bad installer") })
	if err := c.Install(failing); err == nil {
		t.Error("expected installer error to propagate")
	}
	if err := c.Install(nil); !apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument) {
		t.Errorf("expected invalid argument for nil installer, got %v", err)
	}
}

type closer struct {
	name   string
	closed *[]string
	err    error
}

func (c *closer) Close() error {
	*c.closed = append(*c.closed, c.name)
	return c.err
}

func TestCloseReverseOrderAndCollectsErrors(t *testing.T) {
	var closed []string
	c := NewContainer()
	_ = c.RegisterSingleton("first", &closer{name: "first", closed: &closed})
	_ = c.RegisterSingleton("second", &closer{name: "second", closed: &closed, err: errors.New("second failed")})
	_ = c.Register("never", func() *closer { return &closer{name: "never", closed: &closed} })
	_ = c.Register("third", func() *closer { return &closer{name: "third", closed: &closed} })
	_, _ = c.Resolve("third")

	err := c.Close()
	if err == nil || !strings.Contains(err.Error(), "second failed") {
		t.Errorf("expected joined close error, got %v", err)
	}
	want := []string{"third", "second", "first"}
	if strings.Join(closed, ",") != strings.Join(want, ",") {
		t.Errorf("expected close order %v, got %v", want, closed)
	}

	if err := c.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if len(closed) != 3 {
		t.Errorf("expected no further closes, got %v", closed)
	}
	if _, err := c.Resolve("first"); !apperrors.IsCode(err, apperrors.ErrCodeInvalidPhase) {
		t.Errorf("expected invalid phase after close, got %v", err)
	}
	if err := c.Register("x", func() int { return 1 }); !apperrors.IsCode(err, apperrors.ErrCodeInvalidPhase) {
		t.Errorf("expected invalid phase registering after close, got %v", err)
	}
}

func TestTypedResolve(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterSingleton("name", "svc")

	if _, err := Resolve[int](c, "name"); err == nil {
		t.Error("expected type mismatch error")
	}
	if _, ok := TryResolve[string](c, "missing"); ok {
		t.Error("expected TryResolve to report missing component")
	}
	if v, ok := TryResolve[string](c, "name"); !ok || v != "svc" {
		t.Errorf("expected svc, got %q %v", v, ok)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected MustResolve to panic")
		}
	}()
	MustResolve[int](c, "name")
}
