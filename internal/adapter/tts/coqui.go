package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/voxmart/internal/ports"
)

// CoquiClient implements ports.Synthesizer against a Coqui TTS server
// exposing GET /api/tts.
type CoquiClient struct {
	baseURL   string
	speakerID string
	http      *circuitbreaker.HTTPClient
	log       *zap.Logger
}

func NewCoquiClient(baseURL, speakerID string, log *zap.Logger) *CoquiClient {
	breaker := circuitbreaker.New(circuitbreaker.Settings{Name: "tts"}, log)
	return &CoquiClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		speakerID: speakerID,
		http:      circuitbreaker.NewHTTPClient(&http.Client{}, breaker, log),
		log:       log,
	}
}

var _ ports.Synthesizer = (*CoquiClient)(nil)

// Synthesize renders the text as a WAV clip in the given language.
func (c *CoquiClient) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	q := url.Values{}
	q.Set("text", text)
	if language != "" {
		q.Set("language_id", language)
	}
	if c.speakerID != "" {
		q.Set("speaker_id", c.speakerID)
	}

	resp, err := c.http.Get(ctx, c.baseURL+"/api/tts?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts returned status %d: %s", resp.StatusCode, snippet)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts response truncated: %w", err)
	}
	return audio, nil
}
