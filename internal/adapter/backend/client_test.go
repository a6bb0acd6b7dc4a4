package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/domain"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func staticToken(t string) TokenProvider {
	return func() string { return t }
}

func TestClient_ProcessTranscript(t *testing.T) {
	// Arrange
	var gotAuth, gotContentType, gotTranscript string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/voice/process" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")

		var body struct {
			Transcript string `json:"transcript"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotTranscript = body.Transcript

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"transcript":     body.Transcript,
			"intent":         map[string]string{"name": "view_cart"},
			"entities":       []map[string]string{},
			"response_text":  "Here is your shopping cart.",
			"audio_filename": nil,
			"order_id":       nil,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, staticToken("tok-123"), newTestLogger())

	// Act
	result, err := client.ProcessTranscript(context.Background(), "show my cart")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("expected bearer token header, got '%s'", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected json content type, got '%s'", gotContentType)
	}
	if gotTranscript != "show my cart" {
		t.Errorf("expected transcript forwarded, got '%s'", gotTranscript)
	}
	if result.Intent.Name != "view_cart" {
		t.Errorf("expected view_cart intent, got '%s'", result.Intent.Name)
	}
	if result.AudioFilename != nil {
		t.Errorf("expected nil audio filename, got %v", *result.AudioFilename)
	}
}

func TestClient_ProcessAudioUploadsMultipart(t *testing.T) {
	// Arrange
	var gotFilename string
	var gotBytes []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("expected multipart upload, got '%s'", r.Header.Get("Content-Type"))
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("audio part missing: %v", err)
		}
		defer file.Close()
		gotFilename = header.Filename
		buf := make([]byte, header.Size)
		n, _ := file.Read(buf)
		gotBytes = buf[:n]

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"transcript":    "add milk to my cart",
			"intent":        map[string]string{"name": "add_to_cart"},
			"entities":      []map[string]string{{"entity": "subject", "value": "milk"}},
			"response_text": "Okay, I've added Milk to your cart.",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, staticToken("tok"), newTestLogger())
	rec := &domain.Recording{Data: []byte("pcm-data"), MIMEType: "audio/wav", SampleRate: 16000}

	// Act
	result, err := client.ProcessAudio(context.Background(), rec)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFilename != "speech.wav" {
		t.Errorf("expected filename speech.wav, got '%s'", gotFilename)
	}
	if string(gotBytes) != "pcm-data" {
		t.Errorf("audio payload mangled: %q", gotBytes)
	}
	if len(result.Entities) != 1 || result.Entities[0].Kind != "subject" {
		t.Errorf("expected a subject entity, got %+v", result.Entities)
	}
}

func TestClient_UnauthorizedMapsToAuthExpired(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, staticToken("expired"), newTestLogger())

	// Act
	_, err := client.ProcessTranscript(context.Background(), "show my orders")

	// Assert
	ve := domain.AsVoiceError(err, domain.ErrBackendUnreachable)
	if ve.Kind != domain.ErrBackendAuthExpired {
		t.Errorf("expected backend_auth_expired, got %s", ve.Kind)
	}
}

func TestClient_TimeoutMapsToBackendTimeout(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body first; the client's disconnect is only observable
		// once the request has been consumed.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewClient(srv.URL, staticToken("tok"), newTestLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// Act
	_, err := client.ProcessTranscript(ctx, "search for milk")

	// Assert
	ve := domain.AsVoiceError(err, domain.ErrBackendUnreachable)
	if ve.Kind != domain.ErrBackendTimeout {
		t.Errorf("expected backend_timeout, got %s", ve.Kind)
	}
}

func TestClient_ConnectionRefusedMapsToUnreachable(t *testing.T) {
	// Arrange: a server that is already gone
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	client := NewClient(addr, staticToken("tok"), newTestLogger())

	// Act
	_, err := client.ProcessTranscript(context.Background(), "hello")

	// Assert
	ve := domain.AsVoiceError(err, domain.ErrRecognitionFatal)
	if ve.Kind != domain.ErrBackendUnreachable {
		t.Errorf("expected backend_unreachable, got %s", ve.Kind)
	}
}

func TestClient_FetchAudio(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voice/audio/reply.wav" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("riff-bytes"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, staticToken("tok"), newTestLogger())

	// Act
	audio, err := client.FetchAudio(context.Background(), "reply.wav")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "riff-bytes" {
		t.Errorf("unexpected audio payload: %q", audio)
	}
}
