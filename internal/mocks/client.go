package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/seu-repo/voxmart/internal/domain"
)

// MockAudioCapture is a mock implementation of the AudioCapture interface
type MockAudioCapture struct {
	StartFunc  func(ctx context.Context) error
	StopFunc   func(ctx context.Context) (*domain.Recording, error)
	CancelFunc func(ctx context.Context) error

	mu          sync.Mutex
	StartCalls  int
	StopCalls   int
	CancelCalls int
	progress    func(elapsed time.Duration)
}

func (m *MockAudioCapture) Start(ctx context.Context) error {
	m.mu.Lock()
	m.StartCalls++
	m.mu.Unlock()
	if m.StartFunc != nil {
		return m.StartFunc(ctx)
	}
	return nil
}

func (m *MockAudioCapture) Stop(ctx context.Context) (*domain.Recording, error) {
	m.mu.Lock()
	m.StopCalls++
	m.mu.Unlock()
	if m.StopFunc != nil {
		return m.StopFunc(ctx)
	}
	return &domain.Recording{Data: []byte("audio"), MIMEType: "audio/wav"}, nil
}

func (m *MockAudioCapture) Cancel(ctx context.Context) error {
	m.mu.Lock()
	m.CancelCalls++
	m.mu.Unlock()
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx)
	}
	return nil
}

func (m *MockAudioCapture) OnProgress(fn func(elapsed time.Duration)) {
	m.mu.Lock()
	m.progress = fn
	m.mu.Unlock()
}

// Calls returns the number of Start, Stop and Cancel invocations.
func (m *MockAudioCapture) Calls() (start, stop, cancel int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StartCalls, m.StopCalls, m.CancelCalls
}

// MockSpeechRecognizer is a mock implementation of the SpeechRecognizer interface
type MockSpeechRecognizer struct {
	AvailableFunc func() bool
	StartFunc     func(ctx context.Context, sessionID, locale string) error
	StopFunc      func(ctx context.Context) error
	CancelFunc    func(ctx context.Context) error
	DestroyFunc   func(ctx context.Context) error

	EventsCh chan domain.RecognitionEvent

	mu             sync.Mutex
	State          domain.EngineState
	AvailableCalls int
	StartCalls     int
	StopCalls      int
	CancelCalls    int
	DestroyCalls   int
	LastSessionID  string
}

func NewMockSpeechRecognizer() *MockSpeechRecognizer {
	return &MockSpeechRecognizer{
		EventsCh: make(chan domain.RecognitionEvent, 16),
		State:    domain.EngineReady,
	}
}

func (m *MockSpeechRecognizer) Available() bool {
	m.mu.Lock()
	m.AvailableCalls++
	m.mu.Unlock()
	if m.AvailableFunc != nil {
		return m.AvailableFunc()
	}
	return true
}

func (m *MockSpeechRecognizer) Start(ctx context.Context, sessionID, locale string) error {
	m.mu.Lock()
	m.StartCalls++
	m.LastSessionID = sessionID
	m.mu.Unlock()
	if m.StartFunc != nil {
		return m.StartFunc(ctx, sessionID, locale)
	}
	return nil
}

func (m *MockSpeechRecognizer) Stop(ctx context.Context) error {
	m.mu.Lock()
	m.StopCalls++
	m.mu.Unlock()
	if m.StopFunc != nil {
		return m.StopFunc(ctx)
	}
	return nil
}

func (m *MockSpeechRecognizer) Cancel(ctx context.Context) error {
	m.mu.Lock()
	m.CancelCalls++
	m.mu.Unlock()
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx)
	}
	return nil
}

func (m *MockSpeechRecognizer) Destroy(ctx context.Context) error {
	m.mu.Lock()
	m.DestroyCalls++
	m.State = domain.EngineDestroyed
	m.mu.Unlock()
	if m.DestroyFunc != nil {
		return m.DestroyFunc(ctx)
	}
	return nil
}

func (m *MockSpeechRecognizer) EngineState() domain.EngineState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.State
}

func (m *MockSpeechRecognizer) Events() <-chan domain.RecognitionEvent {
	return m.EventsCh
}

// Emit delivers a recognition event as if the engine produced it.
func (m *MockSpeechRecognizer) Emit(ev domain.RecognitionEvent) {
	m.EventsCh <- ev
}

// AvailableCount returns the number of Available invocations.
func (m *MockSpeechRecognizer) AvailableCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AvailableCalls
}

// SessionID returns the session passed to the most recent Start.
func (m *MockSpeechRecognizer) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastSessionID
}

// Calls returns the invocation counts for Start, Stop, Cancel and Destroy.
func (m *MockSpeechRecognizer) Calls() (start, stop, cancel, destroy int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StartCalls, m.StopCalls, m.CancelCalls, m.DestroyCalls
}

// MockAudioPlayer is a mock implementation of the AudioPlayer interface
type MockAudioPlayer struct {
	PlayFunc func(ctx context.Context, audio []byte) error
	StopFunc func(ctx context.Context) error

	mu        sync.Mutex
	PlayCalls int
	StopCalls int
	Played    [][]byte
}

func (m *MockAudioPlayer) Play(ctx context.Context, audio []byte) error {
	m.mu.Lock()
	m.PlayCalls++
	m.Played = append(m.Played, audio)
	m.mu.Unlock()
	if m.PlayFunc != nil {
		return m.PlayFunc(ctx, audio)
	}
	return nil
}

func (m *MockAudioPlayer) Stop(ctx context.Context) error {
	m.mu.Lock()
	m.StopCalls++
	m.mu.Unlock()
	if m.StopFunc != nil {
		return m.StopFunc(ctx)
	}
	return nil
}

// Calls returns the number of Play and Stop invocations.
func (m *MockAudioPlayer) Calls() (play, stop int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PlayCalls, m.StopCalls
}

// MockVoiceBackend is a mock implementation of the VoiceBackend interface
type MockVoiceBackend struct {
	ProcessAudioFunc      func(ctx context.Context, rec *domain.Recording) (*domain.ProcessResult, error)
	ProcessTranscriptFunc func(ctx context.Context, transcript string) (*domain.ProcessResult, error)
	FetchAudioFunc        func(ctx context.Context, filename string) ([]byte, error)

	mu                   sync.Mutex
	AudioCalls           int
	TranscriptCalls      int
	FetchCalls           int
	LastTranscript       string
}

func (m *MockVoiceBackend) ProcessAudio(ctx context.Context, rec *domain.Recording) (*domain.ProcessResult, error) {
	m.mu.Lock()
	m.AudioCalls++
	m.mu.Unlock()
	if m.ProcessAudioFunc != nil {
		return m.ProcessAudioFunc(ctx, rec)
	}
	return &domain.ProcessResult{}, nil
}

func (m *MockVoiceBackend) ProcessTranscript(ctx context.Context, transcript string) (*domain.ProcessResult, error) {
	m.mu.Lock()
	m.TranscriptCalls++
	m.LastTranscript = transcript
	m.mu.Unlock()
	if m.ProcessTranscriptFunc != nil {
		return m.ProcessTranscriptFunc(ctx, transcript)
	}
	return &domain.ProcessResult{Transcript: transcript}, nil
}

func (m *MockVoiceBackend) FetchAudio(ctx context.Context, filename string) ([]byte, error) {
	m.mu.Lock()
	m.FetchCalls++
	m.mu.Unlock()
	if m.FetchAudioFunc != nil {
		return m.FetchAudioFunc(ctx, filename)
	}
	return []byte("wav"), nil
}

// Calls returns the number of audio, transcript and fetch invocations.
func (m *MockVoiceBackend) Calls() (audio, transcript, fetch int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AudioCalls, m.TranscriptCalls, m.FetchCalls
}
