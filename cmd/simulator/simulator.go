package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/adapter/backend"
	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/service/intent"
)

// SimulatorConfig holds the voice client simulator configuration
type SimulatorConfig struct {
	ServerURL string
	Email     string
	Password  string
	Name      string
	Register  bool
	Language  string
}

// Simulator plays the role of the mobile storefront: it authenticates,
// submits utterances the way the app would, and renders the replies plus
// the navigation the intent dispatcher would trigger on-device.
type Simulator struct {
	config     *SimulatorConfig
	httpClient *http.Client
	backend    *backend.Client
	dispatcher *intent.Dispatcher
	log        *zap.Logger

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

// NewSimulator creates a new voice client simulator
func NewSimulator(config *SimulatorConfig, log *zap.Logger) *Simulator {
	s := &Simulator{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		dispatcher: intent.NewDispatcher(),
		log:        log,
	}
	s.backend = backend.NewClient(config.ServerURL+"/api/v1", s.token, log)
	return s
}

func (s *Simulator) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	Tokens tokenPair `json:"tokens"`
}

// Authenticate logs in, registering the account first when requested.
func (s *Simulator) Authenticate(ctx context.Context) error {
	if s.config.Register {
		if err := s.register(ctx); err != nil {
			return err
		}
	}
	return s.login(ctx)
}

func (s *Simulator) register(ctx context.Context) error {
	payload := map[string]string{
		"name":               s.config.Name,
		"email":              s.config.Email,
		"password":           s.config.Password,
		"preferred_language": s.config.Language,
	}
	resp, err := s.postJSON(ctx, "/api/v1/auth/register", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		s.log.Info("Registered account", zap.String("email", s.config.Email))
		return nil
	case http.StatusConflict:
		s.log.Info("Account already exists", zap.String("email", s.config.Email))
		return nil
	default:
		return fmt.Errorf("register failed: status %d", resp.StatusCode)
	}
}

func (s *Simulator) login(ctx context.Context) error {
	payload := map[string]string{
		"email":    s.config.Email,
		"password": s.config.Password,
	}
	resp, err := s.postJSON(ctx, "/api/v1/auth/login", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: status %d", resp.StatusCode)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}

	s.mu.Lock()
	s.accessToken = auth.Tokens.AccessToken
	s.refreshToken = auth.Tokens.RefreshToken
	s.mu.Unlock()

	s.log.Info("Logged in", zap.String("email", s.config.Email))
	return nil
}

func (s *Simulator) postJSON(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.ServerURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.httpClient.Do(req)
}

// SendTranscript submits one utterance as text and prints the outcome.
func (s *Simulator) SendTranscript(ctx context.Context, transcript string) (*domain.ProcessResult, error) {
	result, err := s.backend.ProcessTranscript(ctx, transcript)
	if err != nil {
		return nil, err
	}
	s.render(result)
	return result, nil
}

// SendAudio uploads a recorded WAV file as the utterance.
func (s *Simulator) SendAudio(ctx context.Context, path string) (*domain.ProcessResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	rec := &domain.Recording{
		Data:     data,
		MIMEType: "audio/wav",
	}
	result, err := s.backend.ProcessAudio(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.render(result)
	return result, nil
}

func (s *Simulator) render(result *domain.ProcessResult) {
	fmt.Printf("  heard:  %q\n", result.Transcript)
	fmt.Printf("  intent: %s\n", result.Intent.Name)
	for _, e := range result.Entities {
		fmt.Printf("  entity: %s=%q\n", e.Kind, e.Value)
	}
	fmt.Printf("  reply:  %s\n", result.ResponseText)
	if result.OrderID != nil {
		fmt.Printf("  order:  #%d\n", *result.OrderID)
	}
	if result.AudioFilename != nil {
		fmt.Printf("  audio:  %s\n", *result.AudioFilename)
	}

	action := s.dispatcher.Dispatch(result.Intent.Name, result.Entities)
	switch action.Type {
	case domain.ActionNavigate:
		fmt.Printf("  app:    navigate to %s", action.Screen)
		if len(action.Params) > 0 {
			fmt.Printf(" %v", action.Params)
		}
		fmt.Println()
	case domain.ActionSetSearchTerm:
		fmt.Printf("  app:    search for %q\n", action.SearchTerm)
	}
}

// FetchAudio downloads a synthesized reply clip to a local file.
func (s *Simulator) FetchAudio(ctx context.Context, filename, dest string) error {
	data, err := s.backend.FetchAudio(ctx, filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	s.log.Info("Saved reply audio", zap.String("file", dest), zap.Int("bytes", len(data)))
	return nil
}

// RunInteractive reads utterances from stdin until EOF or "quit".
func (s *Simulator) RunInteractive(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}
		if _, err := s.SendTranscript(ctx, line); err != nil {
			fmt.Printf("  error: %v\n", err)
		}
	}
}

// StreamTranscripts drives the websocket endpoint instead of the REST one,
// sending each line as a JSON envelope and printing the server's replies.
func (s *Simulator) StreamTranscripts(ctx context.Context, lines []string) error {
	wsURL := strings.Replace(s.config.ServerURL, "http", "ws", 1) + "/ws/voice"

	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.token())

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return fmt.Errorf("dial voice stream: %w", err)
	}
	defer conn.Close()

	for _, line := range lines {
		envelope, _ := json.Marshal(map[string]string{"transcript": line})
		if err := conn.WriteMessage(websocket.TextMessage, envelope); err != nil {
			return fmt.Errorf("write utterance: %w", err)
		}

		_, payload, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read reply: %w", err)
		}

		var result domain.ProcessResult
		if err := json.Unmarshal(payload, &result); err != nil {
			fmt.Printf("  raw: %s\n", payload)
			continue
		}
		fmt.Printf("you> %s\n", line)
		s.render(&result)
	}

	return conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
}
