package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/voxmart/internal/ports"
)

// WhisperClient implements ports.Transcriber against a faster-whisper ASR
// server exposing POST /asr.
type WhisperClient struct {
	baseURL string
	http    *circuitbreaker.HTTPClient
	log     *zap.Logger
}

func NewWhisperClient(baseURL string, log *zap.Logger) *WhisperClient {
	breaker := circuitbreaker.New(circuitbreaker.Settings{Name: "asr"}, log)
	return &WhisperClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    circuitbreaker.NewHTTPClient(&http.Client{}, breaker, log),
		log:     log,
	}
}

var _ ports.Transcriber = (*WhisperClient)(nil)

type asrResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the audio file and returns the recognized text,
// trimmed. An empty string means the engine heard nothing usable.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("audio_file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/asr?output=json", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("asr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("asr returned status %d: %s", resp.StatusCode, snippet)
	}

	var parsed asrResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("asr response unreadable: %w", err)
	}
	return strings.TrimSpace(parsed.Text), nil
}
