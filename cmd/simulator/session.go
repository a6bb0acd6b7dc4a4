package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/adapter/capture"
	"github.com/seu-repo/voxmart/internal/adapter/playback"
	"github.com/seu-repo/voxmart/internal/adapter/recognition"
	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/service/session"
)

const feedFrameSize = 3200 // 100ms of 16kHz mono pcm16

// consoleListener prints everything the session controller surfaces, the
// way a storefront UI would render it.
type consoleListener struct {
	idle chan struct{}
}

func newConsoleListener() *consoleListener {
	return &consoleListener{idle: make(chan struct{}, 1)}
}

func (l *consoleListener) OnStateChange(state domain.SessionState, status string) {
	fmt.Printf("  [%s] %s\n", state, status)
	if state == domain.StateIdle || state == domain.StateAborted {
		select {
		case l.idle <- struct{}{}:
		default:
		}
	}
}

func (l *consoleListener) OnTranscript(text string, final bool) {
	marker := "~"
	if final {
		marker = "="
	}
	fmt.Printf("  %s %s\n", marker, text)
}

func (l *consoleListener) OnAction(action domain.Action) {
	switch action.Type {
	case domain.ActionNavigate:
		fmt.Printf("  app: navigate to %s %v\n", action.Screen, action.Params)
	case domain.ActionSetSearchTerm:
		fmt.Printf("  app: search for %q\n", action.SearchTerm)
	}
}

func (l *consoleListener) OnAuthExpired() {
	fmt.Println("  app: session expired, please log in again")
}

func (l *consoleListener) OnError(err *domain.VoiceError) {
	fmt.Printf("  error: %s\n", err)
}

// RunSession drives the full on-device stack for one push-to-talk attempt:
// buffered capture, streaming recognition against a live engine, the real
// backend client, and paced playback of the reply.
func (s *Simulator) RunSession(ctx context.Context, engineURL, wavPath string) error {
	pcm, err := os.ReadFile(wavPath)
	if err != nil {
		return fmt.Errorf("read utterance audio: %w", err)
	}
	if len(pcm) > 44 && string(pcm[:4]) == "RIFF" {
		pcm = pcm[44:]
	}

	mic := capture.NewBufferCapture(16000, s.log)
	recognizer := recognition.NewStreamRecognizer(engineURL, s.log)
	speaker := playback.NewStreamPlayer(func(frame []byte) error {
		return nil
	}, s.log)

	listener := newConsoleListener()
	ctrl := session.NewController(
		mic, recognizer, speaker, s.backend, s.dispatcher,
		listener, session.Config{Locale: s.config.Language}, s.log,
	)
	defer ctrl.Close()

	ctrl.Start()

	// Feed the recording in real time, to the mic buffer and the engine both,
	// the way the platform audio callback would.
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for off := 0; off < len(pcm); off += feedFrameSize {
		end := off + feedFrameSize
		if end > len(pcm) {
			end = len(pcm)
		}
		frame := pcm[off:end]
		mic.Feed(frame)
		if err := recognizer.SendAudio(ctx, frame); err != nil {
			s.log.Debug("Engine rejected audio frame", zap.Error(err))
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			ctrl.Cancel()
			return ctx.Err()
		}
	}

	ctrl.Stop()

	select {
	case <-listener.idle:
		return nil
	case <-time.After(time.Minute):
		ctrl.Cancel()
		return fmt.Errorf("session did not settle")
	case <-ctx.Done():
		ctrl.Cancel()
		return ctx.Err()
	}
}
