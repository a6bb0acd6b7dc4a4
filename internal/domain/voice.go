package domain

import "time"

// SessionState is the lifecycle state of a voice command session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateListening
	StateProcessing
	StateResponding
	StateRecoverableError
	StateAborted
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateResponding:
		return "responding"
	case StateRecoverableError:
		return "recoverable_error"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Status returns the user-facing status line for the state.
func (s SessionState) Status() string {
	switch s {
	case StateIdle:
		return "Tap to speak"
	case StateListening:
		return "Listening…"
	case StateProcessing:
		return "Processing…"
	case StateResponding:
		return "Playing response…"
	case StateRecoverableError:
		return "Please try again"
	case StateAborted:
		return "Something went wrong"
	default:
		return ""
	}
}

// VoiceSession is the record of a single push-to-talk attempt. All fields are
// owned by the session controller loop; Err is only set in the aborted and
// recoverable-error states, Result only at or after the responding transition.
type VoiceSession struct {
	ID         string
	State      SessionState
	Transcript string
	Result     *ProcessResult
	Err        *VoiceError
	StartedAt  time.Time
}

// EngineState is the observable lifecycle of the speech recognition engine.
type EngineState int

const (
	EngineReady EngineState = iota
	EngineBusyState
	EngineDestroyed
)

func (e EngineState) String() string {
	switch e {
	case EngineReady:
		return "ready"
	case EngineBusyState:
		return "busy"
	case EngineDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// RecognitionEventKind tags events emitted by a speech recognizer.
type RecognitionEventKind int

const (
	RecognitionStarted RecognitionEventKind = iota
	RecognitionPartial
	RecognitionFinal
	RecognitionError
	RecognitionEnded
)

// RecognitionEvent carries the owning session ID so that events from an
// earlier, cancelled attempt can be dropped.
type RecognitionEvent struct {
	SessionID string
	Kind      RecognitionEventKind
	Text      string
	Err       *VoiceError
}

// Recording is a finished audio capture ready for upload.
type Recording struct {
	Data       []byte
	MIMEType   string
	SampleRate int
	Duration   time.Duration
}

// Intent is the NLU classification of an utterance.
type Intent struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Entity is a single extracted slot. The canonical kind for a product
// mention is "subject".
type Entity struct {
	Kind  string `json:"entity"`
	Value string `json:"value"`
}

// NLUResult is the full parse of an utterance.
type NLUResult struct {
	Intent   Intent   `json:"intent"`
	Entities []Entity `json:"entities"`
}

// ProcessResult is the wire response of POST /voice/process.
type ProcessResult struct {
	Transcript    string   `json:"transcript"`
	Intent        Intent   `json:"intent"`
	Entities      []Entity `json:"entities"`
	ResponseText  string   `json:"response_text"`
	AudioFilename *string  `json:"audio_filename"`
	OrderID       *int64   `json:"order_id"`
}

// Screen identifies a storefront destination for navigation actions.
type Screen string

const (
	ScreenCart        Screen = "cart"
	ScreenOrders      Screen = "orders"
	ScreenOrderDetail Screen = "order_detail"
	ScreenProductList Screen = "product_list"
	ScreenProfile     Screen = "profile"
)

// ActionType discriminates the Action union.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionNavigate
	ActionSetSearchTerm
)

// Action is the host-visible effect of a dispatched intent.
type Action struct {
	Type       ActionType
	Screen     Screen
	Params     map[string]string
	SearchTerm string
}

func NavigateTo(screen Screen, params map[string]string) Action {
	return Action{Type: ActionNavigate, Screen: screen, Params: params}
}

func SetSearchTerm(term string) Action {
	return Action{Type: ActionSetSearchTerm, SearchTerm: term}
}

func NoAction() Action {
	return Action{Type: ActionNone}
}
