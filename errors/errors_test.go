package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeInvalidPhase, "too late")
	if err.Code != ErrCodeInvalidPhase {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidPhase, err.Code)
	}
	if err.Message != "too late" {
		t.Errorf("expected message 'too late', got %q", err.Message)
	}
}

func TestAppError_InvalidPhase_Details(t *testing.T) {
	err := InvalidPhase("UseLogger", "running")
	if err.Details["operation"] != "UseLogger" {
		t.Errorf("expected operation=UseLogger, got %v", err.Details["operation"])
	}
	if err.Details["phase"] != "running" {
		t.Errorf("expected phase=running, got %v", err.Details["phase"])
	}
	if !strings.Contains(err.Error(), "UseLogger is not allowed in phase running") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	cause := fmt.Errorf("boom")
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
	}{
		{"invalid argument", InvalidArgument("logger", "is required"), ErrCodeInvalidArgument},
		{"bind", Bind(":8080", cause), ErrCodeBindFailed},
		{"close", Close(":8080", cause), ErrCodeCloseFailed},
		{"program stop", ProgramStop(cause), ErrCodeProgramStopFailed},
		{"dispose action", DisposeAction("db", cause), ErrCodeDisposeActionFailed},
		{"timeout", Timeout("stop", time.Second), ErrCodeTimeout},
		{"panic", Panic("stop", "oops"), ErrCodePanic},
		{"unhandled", UnhandledBootstrap(cause), ErrCodeUnhandledBootstrap},
		{"internal", Internal(cause), ErrCodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Message == "" {
				t.Error("expected non-empty message")
			}
		})
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := New(ErrCodeInternal, "wrapped").WithCause(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := New(ErrCodeInternal, "x").WithDetail("a", 1).WithDetails(map[string]any{"b": 2})
	if err.Details["a"] != 1 || err.Details["b"] != 2 {
		t.Errorf("expected merged details, got %v", err.Details)
	}
}

func TestIsCode_ThroughWrapping(t *testing.T) {
	base := InvalidPhase("RegisterProgram", "configuring")
	wrapped := fmt.Errorf("configure: %w", base)
	if !IsCode(wrapped, ErrCodeInvalidPhase) {
		t.Error("expected IsCode to match through fmt wrapping")
	}
	if IsCode(wrapped, ErrCodeInvalidArgument) {
		t.Error("expected IsCode not to match a different code")
	}
}

func TestIsCode_ThroughJoin(t *testing.T) {
	joined := Join(InvalidArgument("logger", "is required"), InvalidPhase("UseLogger", "running"))
	if !IsCode(joined, ErrCodeInvalidArgument) {
		t.Error("expected joined error to contain INVALID_ARGUMENT")
	}
	if !IsCode(joined, ErrCodeInvalidPhase) {
		t.Error("expected joined error to contain INVALID_PHASE")
	}
}

func TestIsCode_Nil(t *testing.T) {
	if IsCode(nil, ErrCodeInternal) {
		t.Error("nil error should not match any code")
	}
}

func TestUnhandledBootstrap_NoDoubleWrap(t *testing.T) {
	first := UnhandledBootstrap(fmt.Errorf("x"))
	second := UnhandledBootstrap(first)
	if first != second {
		t.Error("expected an UnhandledBootstrap error to pass through unchanged")
	}
}

func TestAsAppError(t *testing.T) {
	err := fmt.Errorf("ctx: %w", Bind(":1", nil))
	appErr, ok := AsAppError(err)
	if !ok {
		t.Fatal("expected AsAppError to succeed")
	}
	if appErr.Code != ErrCodeBindFailed {
		t.Errorf("expected BIND_FAILED, got %s", appErr.Code)
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("plain error should not be an AppError")
	}
}

func TestIsFatalCode_Table(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{ErrCodeBindFailed, true},
		{ErrCodeUnhandledBootstrap, true},
		{ErrCodeCloseFailed, false},
		{ErrCodeDisposeActionFailed, false},
		{ErrCodeProgramStopFailed, false},
	}
	for _, tc := range tests {
		if got := IsFatalCode(tc.code); got != tc.want {
			t.Errorf("IsFatalCode(%s) = %v, want %v", tc.code, got, tc.want)
		}
	}
}
