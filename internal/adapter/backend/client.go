package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/voxmart/internal/ports"
)

// TokenProvider supplies the bearer token attached to every backend call.
// The host app refreshes it out of band; the client just asks each time.
type TokenProvider func() string

// Client talks to the voice processing backend over HTTP. It implements
// ports.VoiceBackend and translates transport failures into the session
// error taxonomy.
type Client struct {
	baseURL string
	http    *circuitbreaker.HTTPClient
	token   TokenProvider
	log     *zap.Logger
}

// NewClient creates a voice backend client. The request deadline comes from
// the caller's context, not from the underlying http.Client.
func NewClient(baseURL string, token TokenProvider, log *zap.Logger) *Client {
	breaker := circuitbreaker.New(circuitbreaker.Settings{Name: "voice-backend"}, log)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    circuitbreaker.NewHTTPClient(&http.Client{}, breaker, log),
		token:   token,
		log:     log,
	}
}

var _ ports.VoiceBackend = (*Client)(nil)

type transcriptRequest struct {
	Transcript string `json:"transcript"`
}

// ProcessAudio uploads a finished recording as multipart form data and
// returns the structured command result.
func (c *Client) ProcessAudio(ctx context.Context, rec *domain.Recording) (*domain.ProcessResult, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="audio"; filename="speech.wav"`}
	hdr["Content-Type"] = []string{rec.MIMEType}
	part, err := w.CreatePart(hdr)
	if err != nil {
		return nil, domain.NewVoiceError(domain.ErrBackendUnreachable, err.Error())
	}
	if _, err := part.Write(rec.Data); err != nil {
		return nil, domain.NewVoiceError(domain.ErrBackendUnreachable, err.Error())
	}
	if err := w.Close(); err != nil {
		return nil, domain.NewVoiceError(domain.ErrBackendUnreachable, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/voice/process", &body)
	if err != nil {
		return nil, domain.NewVoiceError(domain.ErrBackendUnreachable, err.Error())
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(req)

	return c.decodeResult(c.http.Do(req))
}

// ProcessTranscript sends an on-device transcript instead of audio. The
// backend skips transcription and goes straight to intent parsing.
func (c *Client) ProcessTranscript(ctx context.Context, transcript string) (*domain.ProcessResult, error) {
	payload, err := json.Marshal(transcriptRequest{Transcript: transcript})
	if err != nil {
		return nil, domain.NewVoiceError(domain.ErrBackendUnreachable, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/voice/process", bytes.NewReader(payload))
	if err != nil {
		return nil, domain.NewVoiceError(domain.ErrBackendUnreachable, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	return c.decodeResult(c.http.Do(req))
}

// FetchAudio downloads a synthesized response clip by filename.
func (c *Client) FetchAudio(ctx context.Context, filename string) ([]byte, error) {
	target := c.baseURL + "/voice/audio/" + url.PathEscape(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, domain.NewVoiceError(domain.ErrBackendUnreachable, err.Error())
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewVoiceError(domain.ErrBackendUnreachable, err.Error())
	}
	return audio, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}
}

func (c *Client) decodeResult(resp *http.Response, err error) (*domain.ProcessResult, error) {
	if err != nil {
		return nil, c.transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var result domain.ProcessResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, domain.NewVoiceError(domain.ErrBackendUnreachable, "malformed backend response: "+err.Error())
	}
	return &result, nil
}

func (c *Client) transportError(err error) *domain.VoiceError {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewVoiceError(domain.ErrBackendTimeout, "voice backend did not answer in time")
	}
	if circuitbreaker.IsCircuitOpen(err) {
		return domain.NewVoiceError(domain.ErrBackendUnreachable, "voice backend circuit open")
	}
	return domain.NewVoiceError(domain.ErrBackendUnreachable, err.Error())
}

func (c *Client) statusError(resp *http.Response) *domain.VoiceError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	c.log.Warn("voice backend rejected request",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", snippet),
	)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return domain.NewVoiceError(domain.ErrBackendAuthExpired, "session token rejected")
	default:
		return domain.NewVoiceError(domain.ErrBackendUnreachable,
			fmt.Sprintf("voice backend returned status %d", resp.StatusCode))
	}
}
