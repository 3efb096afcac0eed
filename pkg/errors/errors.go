// Unified error handling for the armctl host
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	"fmt"
)

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Configuration errors (rejected at construction or call boundary)
	ErrConfigParam  ErrorCode = "CONFIG_PARAM"
	ErrConfigLength ErrorCode = "CONFIG_LENGTH"
	ErrConfigChain  ErrorCode = "CONFIG_CHAIN"

	// Workspace/reachability errors from the IK solver
	ErrWorkspace ErrorCode = "WORKSPACE"

	// Numerical degeneracy (recoverable; caller falls back to a safe command)
	ErrDegenerateOrientation ErrorCode = "DEGENERATE_ORIENTATION"
	ErrDegeneratePinv        ErrorCode = "DEGENERATE_PINV"

	// Runtime errors
	ErrRuntime     ErrorCode = "RUNTIME"
	ErrRuntimeInit ErrorCode = "RUNTIME_INIT"
)

// ArmError is the unified error type for the host system
type ArmError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Component is the subsystem the error originated in (if set)
	Component string

	// Err wraps the underlying error
	Err error
}

// Error implements the error interface
func (e *ArmError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Code, e.Component, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ArmError) Unwrap() error {
	return e.Err
}

// SetComponent sets the originating subsystem
func (e *ArmError) SetComponent(component string) *ArmError {
	e.Component = component
	return e
}

// New creates a new ArmError
func New(code ErrorCode, message string) *ArmError {
	return &ArmError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *ArmError {
	return &ArmError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Configuration errors

// ConfigParamError creates an error for an invalid configuration parameter
func ConfigParamError(param string, reason string) *ArmError {
	return New(ErrConfigParam, fmt.Sprintf("parameter '%s': %s", param, reason))
}

// ConfigLengthError creates an error for a mismatched array length
func ConfigLengthError(what string, want, got int) *ArmError {
	return New(ErrConfigLength, fmt.Sprintf("%s: expected length %d, got %d", what, want, got))
}

// ConfigChainError creates an error for an invalid kinematic chain definition
func ConfigChainError(reason string) *ArmError {
	return New(ErrConfigChain, reason)
}

// Workspace errors

// WorkspaceError creates an error for an unreachable IK target
func WorkspaceError(reason string) *ArmError {
	return New(ErrWorkspace, fmt.Sprintf("target out of workspace: %s", reason))
}

// Numerical degeneracy errors

// DegenerateOrientationError creates an error for a non-finite IK angle
func DegenerateOrientationError(reason string) *ArmError {
	return New(ErrDegenerateOrientation, fmt.Sprintf("degenerate orientation: %s", reason))
}

// DegeneratePinvError creates a warning for a pseudo-inverse that could not
// be computed even with damping. The associated result is an all-zero matrix
// and callers must treat it as "no safe motion command available".
func DegeneratePinvError(reason string) *ArmError {
	return New(ErrDegeneratePinv, fmt.Sprintf("degenerate pseudo-inverse: %s", reason))
}

// Runtime errors

// RuntimeError creates a general runtime error
func RuntimeError(message string) *ArmError {
	return New(ErrRuntime, message)
}

// RuntimeInitError creates an error for initialization failure
func RuntimeInitError(component string, reason string) *ArmError {
	return New(ErrRuntimeInit, fmt.Sprintf("failed to initialize %s: %s", component, reason)).
		SetComponent(component)
}

// CodeOf returns the error's category code. Nil maps to the empty code and
// foreign error types map to ErrRuntime.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if armErr, ok := err.(*ArmError); ok {
		return armErr.Code
	}
	return ErrRuntime
}

// Is checks if error matches given error code
func Is(err error, code ErrorCode) bool {
	if armErr, ok := err.(*ArmError); ok {
		return armErr.Code == code
	}
	return false
}

// IsConfig checks if error is a configuration error
func IsConfig(err error) bool {
	return Is(err, ErrConfigParam) ||
		Is(err, ErrConfigLength) ||
		Is(err, ErrConfigChain)
}

// IsWorkspace checks if error is a workspace/reachability error
func IsWorkspace(err error) bool {
	return Is(err, ErrWorkspace)
}

// IsDegenerate checks if error is a numerical-degeneracy warning
func IsDegenerate(err error) bool {
	return Is(err, ErrDegenerateOrientation) ||
		Is(err, ErrDegeneratePinv)
}
