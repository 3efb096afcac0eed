// Unit tests for unified error handling
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	"errors"
	"strings"
	"testing"
)

// TestErrorFormat tests the Error() string format
func TestErrorFormat(t *testing.T) {
	err := WorkspaceError("theta3 complex")
	if !strings.Contains(err.Error(), "WORKSPACE") {
		t.Errorf("expected code in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "theta3 complex") {
		t.Errorf("expected reason in message, got %q", err.Error())
	}

	err = RuntimeInitError("controller", "missing gains")
	if !strings.Contains(err.Error(), "controller") {
		t.Errorf("expected component in message, got %q", err.Error())
	}
}

// TestCodePredicates tests the Is* category predicates
func TestCodePredicates(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		config     bool
		workspace  bool
		degenerate bool
	}{
		{"config param", ConfigParamError("damping", "must be positive"), true, false, false},
		{"config length", ConfigLengthError("link lengths", 5, 3), true, false, false},
		{"config chain", ConfigChainError("empty chain"), true, false, false},
		{"workspace", WorkspaceError("out of reach"), false, true, false},
		{"degenerate orientation", DegenerateOrientationError("nan angle"), false, false, true},
		{"degenerate pinv", DegeneratePinvError("non-finite jacobian"), false, false, true},
		{"plain error", errors.New("boom"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfig(tt.err); got != tt.config {
				t.Errorf("IsConfig = %v, want %v", got, tt.config)
			}
			if got := IsWorkspace(tt.err); got != tt.workspace {
				t.Errorf("IsWorkspace = %v, want %v", got, tt.workspace)
			}
			if got := IsDegenerate(tt.err); got != tt.degenerate {
				t.Errorf("IsDegenerate = %v, want %v", got, tt.degenerate)
			}
		})
	}
}

// TestCodeOf tests code extraction from arbitrary errors
func TestCodeOf(t *testing.T) {
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %q, want empty", got)
	}
	if got := CodeOf(WorkspaceError("out of reach")); got != ErrWorkspace {
		t.Errorf("CodeOf = %q, want %q", got, ErrWorkspace)
	}
	if got := CodeOf(errors.New("boom")); got != ErrRuntime {
		t.Errorf("CodeOf = %q, want %q", got, ErrRuntime)
	}
}

// TestWrapUnwrap tests wrapping an underlying error
func TestWrapUnwrap(t *testing.T) {
	inner := errors.New("file not found")
	err := Wrap(inner, ErrConfigParam, "failed to load arm config")

	if !errors.Is(err, inner) {
		t.Error("expected wrapped error to match with errors.Is")
	}
	if err.Unwrap() != inner {
		t.Error("expected Unwrap to return the inner error")
	}
}
