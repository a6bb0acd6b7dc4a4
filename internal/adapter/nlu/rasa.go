package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/voxmart/internal/ports"
)

// RasaClient implements ports.IntentParser against a Rasa NLU server
// exposing POST /model/parse. Engine-specific entity labels are normalized
// to the canonical kinds the dispatcher understands.
type RasaClient struct {
	baseURL string
	http    *circuitbreaker.HTTPClient
	log     *zap.Logger
}

func NewRasaClient(baseURL string, log *zap.Logger) *RasaClient {
	breaker := circuitbreaker.New(circuitbreaker.Settings{Name: "nlu"}, log)
	return &RasaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    circuitbreaker.NewHTTPClient(&http.Client{}, breaker, log),
		log:     log,
	}
}

var _ ports.IntentParser = (*RasaClient)(nil)

type parseRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

type parseResponse struct {
	Intent struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"intent"`
	Entities []struct {
		Entity string `json:"entity"`
		Value  string `json:"value"`
	} `json:"entities"`
}

// entityAliases maps engine labels to the canonical entity kinds.
var entityAliases = map[string]string{
	"product_name": "subject",
	"product":      "subject",
	"item":         "subject",
}

// Parse classifies the utterance with the given model.
func (c *RasaClient) Parse(ctx context.Context, text, model string) (*domain.NLUResult, error) {
	payload, err := json.Marshal(parseRequest{Text: text, Model: model})
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Post(ctx, c.baseURL+"/model/parse", "application/json", payload)
	if err != nil {
		return nil, fmt.Errorf("nlu request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("nlu returned status %d: %s", resp.StatusCode, snippet)
	}

	var parsed parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("nlu response unreadable: %w", err)
	}

	result := &domain.NLUResult{
		Intent: domain.Intent{
			Name:       parsed.Intent.Name,
			Confidence: parsed.Intent.Confidence,
		},
	}
	for _, e := range parsed.Entities {
		result.Entities = append(result.Entities, domain.Entity{
			Kind:  canonicalKind(e.Entity),
			Value: e.Value,
		})
	}
	return result, nil
}

func canonicalKind(label string) string {
	if canon, ok := entityAliases[strings.ToLower(label)]; ok {
		return canon
	}
	return label
}
