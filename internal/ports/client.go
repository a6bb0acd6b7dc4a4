package ports

import (
	"context"
	"time"

	"github.com/seu-repo/voxmart/internal/domain"
)

// AudioCapture records microphone audio for one session at a time.
type AudioCapture interface {
	// Start begins recording. Fails with a permission_denied or
	// transient_client VoiceError when the microphone cannot be acquired.
	Start(ctx context.Context) error

	// Stop ends the recording and returns the captured audio. Calling Stop
	// when no recording is active is an error.
	Stop(ctx context.Context) (*domain.Recording, error)

	// Cancel discards the in-progress recording. Best effort.
	Cancel(ctx context.Context) error

	// OnProgress registers a callback invoked with the elapsed recording
	// duration. A nil callback removes the previous one.
	OnProgress(fn func(elapsed time.Duration))
}

// SpeechRecognizer is the on-device recognition engine. Events are tagged
// with the session ID passed to Start so stale attempts can be discarded.
type SpeechRecognizer interface {
	// Available reports whether an engine is present. Non-blocking; callers
	// cache the answer and re-check only after a destructive reset.
	Available() bool

	// Start begins a recognition attempt for the given session. Fails when
	// an attempt is already active or the engine is busy or unavailable.
	Start(ctx context.Context, sessionID, locale string) error

	// Stop ends the attempt gracefully; a trailing final or ended event may
	// still be delivered.
	Stop(ctx context.Context) error

	// Cancel discards the attempt. No further events are delivered for it.
	Cancel(ctx context.Context) error

	// Destroy releases the engine entirely. The next Start reinitializes it.
	Destroy(ctx context.Context) error

	EngineState() domain.EngineState

	Events() <-chan domain.RecognitionEvent
}

// AudioPlayer plays a response clip.
type AudioPlayer interface {
	// Play blocks until playback completes or fails. Exactly one of the two
	// outcomes is reported per call.
	Play(ctx context.Context, audio []byte) error

	// Stop halts playback. Idempotent and safe when nothing is playing.
	Stop(ctx context.Context) error
}

// VoiceBackend is the remote voice-processing endpoint. The two Process
// variants honor the same response contract; which one a session uses
// depends on whether on-device recognition produced a transcript.
type VoiceBackend interface {
	ProcessAudio(ctx context.Context, rec *domain.Recording) (*domain.ProcessResult, error)
	ProcessTranscript(ctx context.Context, transcript string) (*domain.ProcessResult, error)
	FetchAudio(ctx context.Context, filename string) ([]byte, error)
}
