package capture

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/ports"
)

const (
	wavHeaderSize  = 44
	bytesPerSample = 2
	channels       = 1
)

// BufferCapture implements ports.AudioCapture for hosts that push raw PCM16
// frames as the platform recorder produces them. Stop wraps the accumulated
// samples in a WAV container so the backend can feed them straight to the
// transcriber.
type BufferCapture struct {
	sampleRate int
	log        *zap.Logger

	mu       sync.Mutex
	active   bool
	buf      []byte
	started  time.Time
	progress func(elapsed time.Duration)
}

func NewBufferCapture(sampleRate int, log *zap.Logger) *BufferCapture {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &BufferCapture{
		sampleRate: sampleRate,
		log:        log,
	}
}

var _ ports.AudioCapture = (*BufferCapture)(nil)

// Start begins a capture. A capture already in flight is an error; the
// session flow never overlaps two recordings.
func (c *BufferCapture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return domain.NewVoiceError(domain.ErrTransientClient, "capture already running")
	}
	c.active = true
	c.buf = c.buf[:0]
	c.started = time.Now()
	return nil
}

// Feed appends a PCM16 frame from the platform recorder. Frames pushed while
// no capture is active are dropped.
func (c *BufferCapture) Feed(frame []byte) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.buf = append(c.buf, frame...)
	elapsed := time.Since(c.started)
	fn := c.progress
	c.mu.Unlock()

	if fn != nil {
		fn(elapsed)
	}
}

// Stop finishes the capture and returns the utterance as a WAV recording.
func (c *BufferCapture) Stop(ctx context.Context) (*domain.Recording, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return nil, domain.NewVoiceError(domain.ErrTransientClient, "no capture running")
	}
	c.active = false

	pcm := make([]byte, len(c.buf))
	copy(pcm, c.buf)
	c.buf = c.buf[:0]

	duration := time.Duration(0)
	if c.sampleRate > 0 {
		samples := len(pcm) / bytesPerSample
		duration = time.Duration(samples) * time.Second / time.Duration(c.sampleRate)
	}

	return &domain.Recording{
		Data:       wrapWAV(pcm, c.sampleRate),
		MIMEType:   "audio/wav",
		SampleRate: c.sampleRate,
		Duration:   duration,
	}, nil
}

// Cancel discards whatever was recorded. Safe to call when idle.
func (c *BufferCapture) Cancel(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = false
	c.buf = c.buf[:0]
	return nil
}

func (c *BufferCapture) OnProgress(fn func(elapsed time.Duration)) {
	c.mu.Lock()
	c.progress = fn
	c.mu.Unlock()
}

// wrapWAV prefixes raw PCM16 mono samples with a canonical 44-byte RIFF
// header.
func wrapWAV(pcm []byte, sampleRate int) []byte {
	out := make([]byte, wavHeaderSize+len(pcm))

	byteRate := sampleRate * channels * bytesPerSample
	blockAlign := channels * bytesPerSample

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], channels)
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], bytesPerSample*8)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[wavHeaderSize:], pcm)

	return out
}
