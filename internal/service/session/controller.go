package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/ports"
	"github.com/seu-repo/voxmart/internal/service/intent"
)

// Listener receives session notifications. All callbacks are invoked from
// the controller loop, one at a time.
type Listener interface {
	OnStateChange(state domain.SessionState, status string)
	OnTranscript(text string, final bool)
	OnAction(action domain.Action)
	OnAuthExpired()
	OnError(err *domain.VoiceError)
}

type nopListener struct{}

func (nopListener) OnStateChange(domain.SessionState, string) {}
func (nopListener) OnTranscript(string, bool)                 {}
func (nopListener) OnAction(domain.Action)                    {}
func (nopListener) OnAuthExpired()                            {}
func (nopListener) OnError(*domain.VoiceError)                {}

// Config tunes the session flow. The backend timeout is the only timeout in
// the whole flow; listening and playback run until their own events arrive.
type Config struct {
	Locale         string
	BackendTimeout time.Duration
	RestartDelay   time.Duration
	ReinitBackoff  time.Duration
	TransientGrace time.Duration
}

func (c *Config) withDefaults() {
	if c.Locale == "" {
		c.Locale = "en-US"
	}
	if c.BackendTimeout <= 0 {
		c.BackendTimeout = 30 * time.Second
	}
	if c.RestartDelay <= 0 {
		c.RestartDelay = 100 * time.Millisecond
	}
	if c.ReinitBackoff <= 0 {
		c.ReinitBackoff = 750 * time.Millisecond
	}
	if c.TransientGrace <= 0 {
		c.TransientGrace = 2 * time.Second
	}
}

const transientStatus = "Didn't catch that"

type eventKind int

const (
	evStart eventKind = iota
	evStop
	evCancel
	evListenReady
	evRecognition
	evBackendDone
	evPlaybackDone
	evRecovered
	evGraceElapsed
)

type event struct {
	kind      eventKind
	sessionID string
	rec       domain.RecognitionEvent
	result    *domain.ProcessResult
	err       error
}

// Controller owns the voice command session state machine. A single loop
// goroutine holds all session state; public methods and adapter completions
// post events to it, each tagged with the session that produced it so that
// work from a cancelled attempt lands on the floor.
type Controller struct {
	capture    ports.AudioCapture
	recognizer ports.SpeechRecognizer
	player     ports.AudioPlayer
	backend    ports.VoiceBackend
	dispatcher *intent.Dispatcher
	listener   Listener
	cfg        Config
	log        *zap.Logger

	events chan event
	done   chan struct{}
	once   sync.Once

	mu       sync.RWMutex
	snapshot domain.SessionState

	// Loop-owned. Never touched outside run().
	cur           *domain.VoiceSession
	finalText     string
	backendCalled bool
	busyRecovered bool
	available     *bool
}

func NewController(
	capture ports.AudioCapture,
	recognizer ports.SpeechRecognizer,
	player ports.AudioPlayer,
	backend ports.VoiceBackend,
	dispatcher *intent.Dispatcher,
	listener Listener,
	cfg Config,
	log *zap.Logger,
) *Controller {
	cfg.withDefaults()
	if listener == nil {
		listener = nopListener{}
	}

	c := &Controller{
		capture:    capture,
		recognizer: recognizer,
		player:     player,
		backend:    backend,
		dispatcher: dispatcher,
		listener:   listener,
		cfg:        cfg,
		log:        log,
		events:     make(chan event, 16),
		done:       make(chan struct{}),
		snapshot:   domain.StateIdle,
	}

	go c.pumpRecognition()
	go c.run()

	return c
}

// Start begins a new session. Ignored while a session is already active.
func (c *Controller) Start() {
	c.post(event{kind: evStart})
}

// Stop ends the listening phase and sends the utterance to the backend.
func (c *Controller) Stop() {
	c.post(event{kind: evStop})
}

// Cancel tears the active session down, best effort, and returns to idle.
func (c *Controller) Cancel() {
	c.post(event{kind: evCancel})
}

// Close shuts the controller loop down. The controller is not reusable.
func (c *Controller) Close() {
	c.once.Do(func() { close(c.done) })
}

// State returns the current session state.
func (c *Controller) State() domain.SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Controller) pumpRecognition() {
	for {
		select {
		case <-c.done:
			return
		case rec, ok := <-c.recognizer.Events():
			if !ok {
				return
			}
			c.post(event{kind: evRecognition, sessionID: rec.SessionID, rec: rec})
		}
	}
}

func (c *Controller) run() {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

func (c *Controller) handle(ev event) {
	// Commands carry no session ID. Everything else belongs to a specific
	// attempt and must carry its tag; an empty or mismatched tag means the
	// event is from an attempt that no longer exists, so it lands on the
	// floor instead of on the active session.
	switch ev.kind {
	case evStart, evStop, evCancel:
	default:
		if ev.sessionID == "" || c.cur == nil || c.cur.ID != ev.sessionID {
			c.log.Debug("dropping stale session event",
				zap.String("session_id", ev.sessionID),
				zap.Int("kind", int(ev.kind)),
			)
			return
		}
	}

	switch ev.kind {
	case evStart:
		c.handleStart()
	case evStop:
		c.handleStop()
	case evCancel:
		c.handleCancel()
	case evListenReady:
		c.handleListenReady(ev.err)
	case evRecognition:
		c.handleRecognition(ev.rec)
	case evBackendDone:
		c.handleBackendDone(ev.result, ev.err)
	case evPlaybackDone:
		c.handlePlaybackDone(ev.err)
	case evRecovered:
		c.handleRecovered()
	case evGraceElapsed:
		c.handleGraceElapsed()
	}
}

func (c *Controller) handleStart() {
	if c.cur != nil {
		c.log.Debug("start ignored, session already active",
			zap.String("session_id", c.cur.ID),
			zap.String("state", c.cur.State.String()),
		)
		return
	}

	if c.available == nil {
		ok := c.recognizer.Available()
		c.available = &ok
	}

	c.cur = &domain.VoiceSession{
		ID:        uuid.NewString(),
		State:     domain.StateListening,
		StartedAt: time.Now(),
	}
	c.finalText = ""
	c.backendCalled = false
	c.busyRecovered = false

	if !*c.available {
		c.abort(domain.NewVoiceError(domain.ErrEngineUnavailable, "no speech recognition engine on this device"))
		return
	}

	c.setState(domain.StateListening, "")
	c.log.Info("voice session started", zap.String("session_id", c.cur.ID))

	sid := c.cur.ID
	go func() {
		ctx := context.Background()
		// Some engines keep the previous attempt alive after it ended.
		// Stop first, give the engine a beat, then start clean.
		if err := c.recognizer.Stop(ctx); err != nil {
			c.log.Debug("pre-start recognizer stop", zap.Error(err))
		}
		time.Sleep(c.cfg.RestartDelay)

		if err := c.capture.Start(ctx); err != nil {
			c.post(event{kind: evListenReady, sessionID: sid, err: err})
			return
		}
		if err := c.recognizer.Start(ctx, sid, c.cfg.Locale); err != nil {
			if cerr := c.capture.Cancel(ctx); cerr != nil {
				c.log.Warn("capture cancel after recognizer start failure", zap.Error(cerr))
			}
			c.post(event{kind: evListenReady, sessionID: sid, err: err})
			return
		}
		c.post(event{kind: evListenReady, sessionID: sid})
	}()
}

func (c *Controller) handleListenReady(err error) {
	if err == nil || c.cur.State != domain.StateListening {
		return
	}

	ve := domain.AsVoiceError(err, domain.ErrRecognitionFatal)
	switch ve.Kind {
	case domain.ErrEngineBusy:
		c.recoverFromBusy()
	case domain.ErrTransientClient:
		c.log.Warn("transient failure while acquiring audio", zap.Error(ve))
		c.setState(domain.StateRecoverableError, "")
		c.toIdle()
	default:
		c.abort(ve)
	}
}

func (c *Controller) handleRecognition(rec domain.RecognitionEvent) {
	switch rec.Kind {
	case domain.RecognitionStarted:
		c.log.Debug("recognition started", zap.String("session_id", rec.SessionID))

	case domain.RecognitionPartial:
		if c.cur.State == domain.StateListening {
			c.cur.Transcript = rec.Text
			c.listener.OnTranscript(rec.Text, false)
		}

	case domain.RecognitionFinal:
		if c.cur.State == domain.StateListening {
			c.finalText = rec.Text
			c.cur.Transcript = rec.Text
			c.listener.OnTranscript(rec.Text, true)
			c.beginProcessing()
		}

	case domain.RecognitionEnded:
		if c.cur.State == domain.StateListening {
			c.beginProcessing()
		}

	case domain.RecognitionError:
		c.handleRecognitionError(rec.Err)
	}
}

func (c *Controller) handleRecognitionError(ve *domain.VoiceError) {
	if ve == nil {
		ve = domain.NewVoiceError(domain.ErrRecognitionFatal, "recognition failed")
	}

	switch ve.Kind {
	case domain.ErrEngineBusy:
		if c.cur.State == domain.StateListening {
			c.recoverFromBusy()
		}

	case domain.ErrTransientClient:
		// Non-fatal by contract. Keep listening, show a transient hint,
		// clear it after the grace period.
		if c.cur.State == domain.StateListening {
			c.log.Debug("transient recognition error suppressed", zap.String("session_id", c.cur.ID))
			c.listener.OnStateChange(domain.StateListening, transientStatus)
			sid := c.cur.ID
			go func() {
				time.Sleep(c.cfg.TransientGrace)
				c.post(event{kind: evGraceElapsed, sessionID: sid})
			}()
		}

	default:
		c.abort(ve)
	}
}

func (c *Controller) handleGraceElapsed() {
	if c.cur.State == domain.StateListening {
		c.listener.OnStateChange(domain.StateListening, domain.StateListening.Status())
	}
}

func (c *Controller) handleStop() {
	if c.cur == nil || c.cur.State != domain.StateListening {
		return
	}
	c.beginProcessing()
}

// beginProcessing closes the listening phase and makes the single backend
// call for this session: a transcript POST when recognition produced a final
// transcript, an audio upload otherwise.
func (c *Controller) beginProcessing() {
	if c.backendCalled {
		return
	}
	c.backendCalled = true
	c.setState(domain.StateProcessing, "")

	sid := c.cur.ID
	text := c.finalText
	go func() {
		bg := context.Background()
		if err := c.recognizer.Stop(bg); err != nil {
			c.log.Debug("recognizer stop on processing", zap.Error(err))
		}

		ctx, cancel := context.WithTimeout(bg, c.cfg.BackendTimeout)
		defer cancel()

		var result *domain.ProcessResult
		var err error
		if text != "" {
			if cerr := c.capture.Cancel(bg); cerr != nil {
				c.log.Debug("capture cancel on transcript path", zap.Error(cerr))
			}
			result, err = c.backend.ProcessTranscript(ctx, text)
		} else {
			var rec *domain.Recording
			rec, err = c.capture.Stop(bg)
			if err != nil {
				// The backend was never called; keep the failure on the
				// capture side of the taxonomy.
				err = domain.AsVoiceError(err, domain.ErrRecognitionFatal)
			} else {
				result, err = c.backend.ProcessAudio(ctx, rec)
			}
		}
		c.post(event{kind: evBackendDone, sessionID: sid, result: result, err: err})
	}()
}

func (c *Controller) handleBackendDone(result *domain.ProcessResult, err error) {
	if c.cur.State != domain.StateProcessing {
		return
	}

	if err != nil {
		ve := domain.AsVoiceError(err, domain.ErrBackendUnreachable)
		if ve.Kind == domain.ErrBackendUnreachable && errors.Is(err, context.DeadlineExceeded) {
			ve = domain.NewVoiceError(domain.ErrBackendTimeout, "voice backend did not answer in time")
		}
		if ve.Kind == domain.ErrBackendAuthExpired {
			c.listener.OnAuthExpired()
		}
		c.abort(ve)
		return
	}

	c.cur.Result = result
	c.cur.Transcript = result.Transcript
	c.listener.OnTranscript(result.Transcript, true)

	entities := result.Entities
	if result.OrderID != nil {
		entities = append(entities, domain.Entity{
			Kind:  intent.EntityOrderID,
			Value: formatOrderID(*result.OrderID),
		})
	}
	action := c.dispatcher.Dispatch(result.Intent.Name, entities)
	c.listener.OnAction(action)

	if result.AudioFilename == nil || *result.AudioFilename == "" {
		c.log.Info("voice session complete, no response audio",
			zap.String("session_id", c.cur.ID),
			zap.String("intent", result.Intent.Name),
		)
		c.toIdle()
		return
	}

	c.setState(domain.StateResponding, "")
	sid := c.cur.ID
	filename := *result.AudioFilename
	go func() {
		ctx := context.Background()
		audio, err := c.backend.FetchAudio(ctx, filename)
		if err == nil {
			err = c.player.Play(ctx, audio)
		}
		c.post(event{kind: evPlaybackDone, sessionID: sid, err: err})
	}()
}

func (c *Controller) handlePlaybackDone(err error) {
	if c.cur.State != domain.StateResponding {
		return
	}

	if err != nil {
		// The command already took effect; a broken speaker does not undo it.
		ve := domain.NewVoiceError(domain.ErrPlaybackFailure, err.Error())
		c.cur.Err = ve
		c.log.Warn("response playback failed",
			zap.String("session_id", c.cur.ID),
			zap.Error(err),
		)
		c.listener.OnError(ve)
	}
	c.toIdle()
}

func (c *Controller) handleCancel() {
	// Teardown runs even with no active session; a half-open capture or a
	// still-ringing player may outlive the attempt that used it.
	c.teardown()

	if c.cur == nil {
		return
	}

	c.log.Info("voice session cancelled",
		zap.String("session_id", c.cur.ID),
		zap.String("state", c.cur.State.String()),
	)
	c.toIdle()
}

// recoverFromBusy runs the one destroy-and-reinit cycle a session gets when
// the engine reports busy. The session ends at idle, never aborted.
func (c *Controller) recoverFromBusy() {
	if c.busyRecovered {
		c.toIdle()
		return
	}
	c.busyRecovered = true
	c.setState(domain.StateRecoverableError, "")

	sid := c.cur.ID
	go func() {
		ctx := context.Background()
		if err := c.capture.Cancel(ctx); err != nil {
			c.log.Debug("capture cancel during busy recovery", zap.Error(err))
		}
		if err := c.recognizer.Destroy(ctx); err != nil {
			c.log.Warn("recognizer destroy during busy recovery", zap.Error(err))
		}
		time.Sleep(c.cfg.ReinitBackoff)
		c.post(event{kind: evRecovered, sessionID: sid})
	}()
}

func (c *Controller) handleRecovered() {
	c.log.Info("recognizer reset after busy engine", zap.String("session_id", c.cur.ID))
	// The engine was torn down; probe availability again on the next start.
	c.available = nil
	c.toIdle()
}

func (c *Controller) abort(ve *domain.VoiceError) {
	c.cur.Err = ve
	c.log.Warn("voice session aborted",
		zap.String("session_id", c.cur.ID),
		zap.String("kind", string(ve.Kind)),
		zap.String("message", ve.Message),
	)
	c.listener.OnError(ve)
	c.setState(domain.StateAborted, "")
	c.teardown()
	c.toIdle()
}

// teardown releases capture, recognition and playback, best effort. Failures
// are logged, never surfaced; the session is already on its way out.
func (c *Controller) teardown() {
	go func() {
		ctx := context.Background()
		if err := c.capture.Cancel(ctx); err != nil {
			c.log.Debug("capture cancel on teardown", zap.Error(err))
		}
		if err := c.recognizer.Cancel(ctx); err != nil {
			c.log.Debug("recognizer cancel on teardown", zap.Error(err))
		}
		if err := c.player.Stop(ctx); err != nil {
			c.log.Debug("player stop on teardown", zap.Error(err))
		}
	}()
}

func (c *Controller) toIdle() {
	c.cur = nil
	c.finalText = ""
	c.backendCalled = false
	c.mu.Lock()
	c.snapshot = domain.StateIdle
	c.mu.Unlock()
	c.listener.OnStateChange(domain.StateIdle, domain.StateIdle.Status())
}

func (c *Controller) setState(s domain.SessionState, status string) {
	if c.cur != nil {
		c.cur.State = s
	}
	c.mu.Lock()
	c.snapshot = s
	c.mu.Unlock()
	if status == "" {
		status = s.Status()
	}
	c.listener.OnStateChange(s, status)
}

func formatOrderID(id int64) string {
	return strconv.FormatInt(id, 10)
}
