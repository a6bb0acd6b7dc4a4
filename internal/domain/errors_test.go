package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestAsVoiceError_UnwrapsWrappedKind(t *testing.T) {
	// Arrange
	inner := NewVoiceError(ErrBackendTimeout, "backend took too long")
	wrapped := fmt.Errorf("process transcript: %w", inner)

	// Act
	ve := AsVoiceError(wrapped, ErrBackendUnreachable)

	// Assert
	if ve.Kind != ErrBackendTimeout {
		t.Errorf("expected backend_timeout to survive wrapping, got %s", ve.Kind)
	}
	if !errors.Is(wrapped, inner) {
		t.Errorf("expected wrapped error to match the original")
	}
}

func TestAsVoiceError_PlainErrorGetsFallbackKind(t *testing.T) {
	// Arrange
	plain := errors.New("connection reset by peer")

	// Act
	ve := AsVoiceError(plain, ErrBackendUnreachable)

	// Assert
	if ve.Kind != ErrBackendUnreachable {
		t.Errorf("expected backend_unreachable fallback, got %s", ve.Kind)
	}
	if ve.Message != "connection reset by peer" {
		t.Errorf("original message lost: %s", ve.Message)
	}
}

func TestAsVoiceError_NilStaysNil(t *testing.T) {
	if ve := AsVoiceError(nil, ErrRecognitionFatal); ve != nil {
		t.Errorf("expected nil for nil input, got %+v", ve)
	}
}

func TestNewVoiceError_RecoverableKinds(t *testing.T) {
	cases := []struct {
		kind        ErrorKind
		recoverable bool
	}{
		{ErrEngineBusy, true},
		{ErrTransientClient, true},
		{ErrPermissionDenied, false},
		{ErrBackendUnreachable, false},
		{ErrPlaybackFailure, false},
	}
	for _, tc := range cases {
		ve := NewVoiceError(tc.kind, "x")
		if ve.Recoverable != tc.recoverable {
			t.Errorf("kind %s: expected recoverable=%v, got %v", tc.kind, tc.recoverable, ve.Recoverable)
		}
	}
}
