package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the voice session flow can surface.
type ErrorKind string

const (
	ErrPermissionDenied   ErrorKind = "permission_denied"
	ErrEngineUnavailable  ErrorKind = "engine_unavailable"
	ErrEngineBusy         ErrorKind = "engine_busy"
	ErrTransientClient    ErrorKind = "transient_client"
	ErrRecognitionFatal   ErrorKind = "recognition_fatal"
	ErrBackendUnreachable ErrorKind = "backend_unreachable"
	ErrBackendAuthExpired ErrorKind = "backend_auth_expired"
	ErrBackendTimeout     ErrorKind = "backend_timeout"
	ErrPlaybackFailure    ErrorKind = "playback_failure"
)

// VoiceError is the typed failure carried through sessions and events.
// Recoverable errors never abort the session.
type VoiceError struct {
	Kind        ErrorKind
	Message     string
	Recoverable bool
}

func (e *VoiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewVoiceError(kind ErrorKind, message string) *VoiceError {
	recoverable := kind == ErrEngineBusy || kind == ErrTransientClient
	return &VoiceError{Kind: kind, Message: message, Recoverable: recoverable}
}

// AsVoiceError unwraps err into a *VoiceError, wrapping unknown errors
// under the given fallback kind.
func AsVoiceError(err error, fallback ErrorKind) *VoiceError {
	if err == nil {
		return nil
	}
	var ve *VoiceError
	if errors.As(err, &ve) {
		return ve
	}
	return NewVoiceError(fallback, err.Error())
}
