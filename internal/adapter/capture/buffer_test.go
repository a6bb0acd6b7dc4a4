package capture

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/domain"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestBufferCapture_StopProducesWAV(t *testing.T) {
	// Arrange
	c := NewBufferCapture(16000, newTestLogger())
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	pcm := make([]byte, 3200) // 100ms of 16kHz mono PCM16
	c.Feed(pcm[:1600])
	c.Feed(pcm[1600:])

	// Act
	rec, err := c.Stop(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if rec.MIMEType != "audio/wav" {
		t.Errorf("expected audio/wav, got '%s'", rec.MIMEType)
	}
	if len(rec.Data) != wavHeaderSize+len(pcm) {
		t.Fatalf("expected %d bytes, got %d", wavHeaderSize+len(pcm), len(rec.Data))
	}
	if string(rec.Data[0:4]) != "RIFF" || string(rec.Data[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE magic")
	}
	if got := binary.LittleEndian.Uint32(rec.Data[24:28]); got != 16000 {
		t.Errorf("expected sample rate 16000 in header, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(rec.Data[40:44]); got != uint32(len(pcm)) {
		t.Errorf("expected data chunk size %d, got %d", len(pcm), got)
	}
	if rec.Duration != 100*time.Millisecond {
		t.Errorf("expected 100ms duration, got %v", rec.Duration)
	}
}

func TestBufferCapture_DoubleStartFails(t *testing.T) {
	// Arrange
	c := NewBufferCapture(16000, newTestLogger())
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Act
	err := c.Start(context.Background())

	// Assert
	ve := domain.AsVoiceError(err, domain.ErrRecognitionFatal)
	if ve == nil || ve.Kind != domain.ErrTransientClient {
		t.Errorf("expected transient_client on double start, got %v", err)
	}
}

func TestBufferCapture_CancelDiscardsAudio(t *testing.T) {
	// Arrange
	c := NewBufferCapture(16000, newTestLogger())
	_ = c.Start(context.Background())
	c.Feed([]byte{1, 2, 3, 4})

	// Act
	if err := c.Cancel(context.Background()); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// Assert: nothing to stop, a fresh capture starts empty
	if _, err := c.Stop(context.Background()); err == nil {
		t.Error("expected stop to fail after cancel")
	}
	_ = c.Start(context.Background())
	rec, err := c.Stop(context.Background())
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if len(rec.Data) != wavHeaderSize {
		t.Errorf("expected empty recording, got %d payload bytes", len(rec.Data)-wavHeaderSize)
	}
}

func TestBufferCapture_FeedWhileIdleIsDropped(t *testing.T) {
	// Arrange
	c := NewBufferCapture(16000, newTestLogger())

	// Act
	c.Feed([]byte{1, 2, 3, 4})

	// Assert
	_ = c.Start(context.Background())
	rec, _ := c.Stop(context.Background())
	if len(rec.Data) != wavHeaderSize {
		t.Errorf("idle frame leaked into the next capture, %d bytes", len(rec.Data)-wavHeaderSize)
	}
}

func TestBufferCapture_ProgressCallback(t *testing.T) {
	// Arrange
	c := NewBufferCapture(16000, newTestLogger())
	var calls int
	c.OnProgress(func(elapsed time.Duration) { calls++ })
	_ = c.Start(context.Background())

	// Act
	c.Feed([]byte{0, 0})
	c.Feed([]byte{0, 0})

	// Assert
	if calls != 2 {
		t.Errorf("expected 2 progress callbacks, got %d", calls)
	}
}
