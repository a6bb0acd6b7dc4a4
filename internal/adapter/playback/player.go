package playback

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/ports"
)

// Sink receives decoded PCM frames. The host binds it to the platform audio
// output.
type Sink func(frame []byte) error

// StreamPlayer implements ports.AudioPlayer by pacing WAV payload frames
// into a sink at real-time speed. Play blocks until the clip ends or Stop
// interrupts it.
type StreamPlayer struct {
	sink      Sink
	frameSize int
	log       *zap.Logger

	mu   sync.Mutex
	stop chan struct{}
}

func NewStreamPlayer(sink Sink, log *zap.Logger) *StreamPlayer {
	return &StreamPlayer{
		sink:      sink,
		frameSize: 3200, // 100ms of 16kHz mono PCM16
		log:       log,
	}
}

var _ ports.AudioPlayer = (*StreamPlayer)(nil)

// Play streams the clip to the sink. It returns once the last frame was
// delivered, the context expired, or Stop was called.
func (p *StreamPlayer) Play(ctx context.Context, audio []byte) error {
	if p.sink == nil {
		return domain.NewVoiceError(domain.ErrPlaybackFailure, "no audio sink bound")
	}

	pcm, sampleRate := stripWAV(audio)
	if len(pcm) == 0 {
		return nil
	}

	p.mu.Lock()
	if p.stop != nil {
		close(p.stop)
	}
	stop := make(chan struct{})
	p.stop = stop
	p.mu.Unlock()

	frameDur := frameDuration(p.frameSize, sampleRate)
	ticker := time.NewTicker(frameDur)
	defer ticker.Stop()

	for off := 0; off < len(pcm); off += p.frameSize {
		end := off + p.frameSize
		if end > len(pcm) {
			end = len(pcm)
		}
		if err := p.sink(pcm[off:end]); err != nil {
			return domain.NewVoiceError(domain.ErrPlaybackFailure, err.Error())
		}

		select {
		case <-ticker.C:
		case <-stop:
			p.log.Debug("playback interrupted")
			return nil
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

// Stop interrupts the current clip. Calling it with nothing playing is a
// no-op.
func (p *StreamPlayer) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
	return nil
}

// stripWAV drops a RIFF header when present and reports the sample rate.
// Raw payloads pass through at the default rate.
func stripWAV(audio []byte) ([]byte, int) {
	const headerSize = 44
	if len(audio) > headerSize && string(audio[0:4]) == "RIFF" && string(audio[8:12]) == "WAVE" {
		rate := int(binary.LittleEndian.Uint32(audio[24:28]))
		if rate <= 0 {
			rate = 16000
		}
		return audio[headerSize:], rate
	}
	return audio, 16000
}

func frameDuration(frameSize, sampleRate int) time.Duration {
	samples := frameSize / 2
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
