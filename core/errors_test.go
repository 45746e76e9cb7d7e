package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestOpErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *OpError
		expected string
	}{
		{
			name:     "explicit message wins",
			err:      &OpError{Op: "Config.Validate", Message: "invalid port: 0", Err: ErrInvalidConfiguration},
			expected: "invalid port: 0",
		},
		{
			name:     "op and wrapped error",
			err:      &OpError{Op: "Session.Get", Err: ErrSessionNotFound},
			expected: "Session.Get: session not found",
		},
		{
			name:     "op with id",
			err:      &OpError{Op: "Session.Get", ID: "abc", Err: ErrSessionExpired},
			expected: "Session.Get [abc]: session expired",
		},
		{
			name:     "wrapped error only",
			err:      &OpError{Err: ErrRequestFailed},
			expected: "request failed",
		},
		{
			name:     "kind only",
			err:      &OpError{Kind: "config"},
			expected: "config error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestOpErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewOpError("Config.Validate", "config", ErrMissingConfiguration))

	if !errors.Is(err, ErrMissingConfiguration) {
		t.Error("expected errors.Is to find ErrMissingConfiguration through OpError")
	}

	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatal("expected errors.As to find *OpError")
	}
	if opErr.Kind != "config" {
		t.Errorf("Kind = %q, want config", opErr.Kind)
	}
}

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		config  bool
		session bool
		state   bool
	}{
		{"invalid configuration", ErrInvalidConfiguration, true, false, false},
		{"wrapped missing configuration", fmt.Errorf("x: %w", ErrMissingConfiguration), true, false, false},
		{"session not found", ErrSessionNotFound, false, true, false},
		{"session expired", &OpError{Err: ErrSessionExpired}, false, true, false},
		{"already started", ErrAlreadyStarted, false, false, true},
		{"unrelated", errors.New("boom"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfigurationError(tt.err); got != tt.config {
				t.Errorf("IsConfigurationError = %v, want %v", got, tt.config)
			}
			if got := IsSessionError(tt.err); got != tt.session {
				t.Errorf("IsSessionError = %v, want %v", got, tt.session)
			}
			if got := IsStateError(tt.err); got != tt.state {
				t.Errorf("IsStateError = %v, want %v", got, tt.state)
			}
		})
	}
}
