package recognition

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/ports"
)

// StreamRecognizer implements ports.SpeechRecognizer against a streaming
// recognition engine reachable over websocket. One connection per attempt;
// every event it emits is tagged with the session that opened it, so a frame
// from a torn-down attempt is harmless downstream.
type StreamRecognizer struct {
	endpoint string
	log      *zap.Logger

	events chan domain.RecognitionEvent

	mu        sync.Mutex
	conn      *websocket.Conn
	state     domain.EngineState
	sessionID string
}

func NewStreamRecognizer(endpoint string, log *zap.Logger) *StreamRecognizer {
	return &StreamRecognizer{
		endpoint: endpoint,
		log:      log,
		events:   make(chan domain.RecognitionEvent, 32),
		state:    domain.EngineReady,
	}
}

var _ ports.SpeechRecognizer = (*StreamRecognizer)(nil)

type startFrame struct {
	Type       string `json:"type"`
	SessionID  string `json:"session_id"`
	Locale     string `json:"locale"`
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
}

type audioFrame struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

type controlFrame struct {
	Type string `json:"type"`
}

type engineFrame struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Available probes the engine endpoint with a short dial.
func (r *StreamRecognizer) Available() bool {
	if r.endpoint == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, r.endpoint, nil)
	if err != nil {
		r.log.Warn("recognition engine probe failed", zap.Error(err))
		return false
	}
	_ = conn.Close(websocket.StatusNormalClosure, "probe")
	return true
}

// Start opens a recognition stream for the session. A second Start while a
// stream is open reports the engine as busy.
func (r *StreamRecognizer) Start(ctx context.Context, sessionID, locale string) error {
	r.mu.Lock()
	if r.conn != nil {
		r.mu.Unlock()
		return domain.NewVoiceError(domain.ErrEngineBusy, "recognition stream already open")
	}
	if r.state == domain.EngineDestroyed {
		r.state = domain.EngineReady
	}
	r.mu.Unlock()

	conn, _, err := websocket.Dial(ctx, r.endpoint, nil)
	if err != nil {
		return domain.NewVoiceError(domain.ErrEngineUnavailable, "cannot reach recognition engine: "+err.Error())
	}

	frame := startFrame{
		Type:       "start",
		SessionID:  sessionID,
		Locale:     locale,
		SampleRate: 16000,
		Encoding:   "pcm16",
	}
	if err := writeJSON(ctx, conn, frame); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "start failed")
		return domain.NewVoiceError(domain.ErrEngineUnavailable, "recognition handshake failed: "+err.Error())
	}

	r.mu.Lock()
	r.conn = conn
	r.state = domain.EngineBusyState
	r.sessionID = sessionID
	r.mu.Unlock()

	go r.readLoop(conn, sessionID)
	return nil
}

// SendAudio forwards a PCM16 chunk to the engine.
func (r *StreamRecognizer) SendAudio(ctx context.Context, chunk []byte) error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return domain.NewVoiceError(domain.ErrTransientClient, "no recognition stream open")
	}

	return writeJSON(ctx, conn, audioFrame{
		Type: "audio",
		Data: base64.StdEncoding.EncodeToString(chunk),
	})
}

// Stop asks the engine to finalize. The final transcript, if any, arrives as
// an event; the engine closes the stream afterwards.
func (r *StreamRecognizer) Stop(ctx context.Context) error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return nil
	}
	return writeJSON(ctx, conn, controlFrame{Type: "stop"})
}

// Cancel drops the stream without waiting for a final transcript.
func (r *StreamRecognizer) Cancel(ctx context.Context) error {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	if r.state == domain.EngineBusyState {
		r.state = domain.EngineReady
	}
	r.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close(websocket.StatusNormalClosure, "cancelled")
}

// Destroy tears the engine connection down hard. The next Start dials fresh.
func (r *StreamRecognizer) Destroy(ctx context.Context) error {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.state = domain.EngineDestroyed
	r.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close(websocket.StatusGoingAway, "destroyed")
}

func (r *StreamRecognizer) EngineState() domain.EngineState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *StreamRecognizer) Events() <-chan domain.RecognitionEvent {
	return r.events
}

func (r *StreamRecognizer) readLoop(conn *websocket.Conn, sessionID string) {
	ctx := context.Background()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			r.detach(conn)
			// A close after Cancel or Destroy is expected and carries no event.
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			r.mu.Lock()
			active := r.sessionID == sessionID
			r.mu.Unlock()
			if active {
				r.emit(domain.RecognitionEvent{
					SessionID: sessionID,
					Kind:      domain.RecognitionError,
					Err:       domain.NewVoiceError(domain.ErrTransientClient, "recognition stream dropped: "+err.Error()),
				})
			}
			return
		}

		var frame engineFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			r.log.Warn("unreadable engine frame", zap.Error(err))
			continue
		}

		switch frame.Type {
		case "started":
			r.emit(domain.RecognitionEvent{SessionID: sessionID, Kind: domain.RecognitionStarted})
		case "partial":
			r.emit(domain.RecognitionEvent{SessionID: sessionID, Kind: domain.RecognitionPartial, Text: frame.Text})
		case "final":
			r.emit(domain.RecognitionEvent{SessionID: sessionID, Kind: domain.RecognitionFinal, Text: frame.Text})
		case "ended":
			r.detach(conn)
			r.emit(domain.RecognitionEvent{SessionID: sessionID, Kind: domain.RecognitionEnded})
			return
		case "error":
			r.emit(domain.RecognitionEvent{
				SessionID: sessionID,
				Kind:      domain.RecognitionError,
				Err:       mapEngineError(frame.Error.Code, frame.Error.Message),
			})
		default:
			r.log.Debug("ignoring engine frame", zap.String("type", frame.Type))
		}
	}
}

// detach clears the connection if it is still the active one.
func (r *StreamRecognizer) detach(conn *websocket.Conn) {
	r.mu.Lock()
	if r.conn == conn {
		r.conn = nil
		if r.state == domain.EngineBusyState {
			r.state = domain.EngineReady
		}
	}
	r.mu.Unlock()
}

func (r *StreamRecognizer) emit(ev domain.RecognitionEvent) {
	select {
	case r.events <- ev:
	default:
		r.log.Warn("recognition event dropped, consumer too slow",
			zap.String("session_id", ev.SessionID),
		)
	}
}

func mapEngineError(code, message string) *domain.VoiceError {
	switch code {
	case "engine_busy":
		return domain.NewVoiceError(domain.ErrEngineBusy, message)
	case "no_speech", "no_match", "audio_underrun":
		return domain.NewVoiceError(domain.ErrTransientClient, message)
	case "permission_denied":
		return domain.NewVoiceError(domain.ErrPermissionDenied, message)
	default:
		return domain.NewVoiceError(domain.ErrRecognitionFatal, message)
	}
}

func writeJSON(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
