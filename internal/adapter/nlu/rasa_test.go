package nlu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestRasaClient_ParseNormalizesEntityKinds(t *testing.T) {
	// Arrange
	var gotText, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/model/parse" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body struct {
			Text  string `json:"text"`
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotText, gotModel = body.Text, body.Model

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"intent": map[string]interface{}{"name": "search_product", "confidence": 0.93},
			"entities": []map[string]interface{}{
				{"entity": "product_name", "value": "milk"},
				{"entity": "order_id", "value": "7"},
			},
		})
	}))
	defer srv.Close()

	client := NewRasaClient(srv.URL, newTestLogger())

	// Act
	result, err := client.Parse(context.Background(), "search for milk", "nlu-en")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotText != "search for milk" || gotModel != "nlu-en" {
		t.Errorf("request body mangled: text '%s' model '%s'", gotText, gotModel)
	}
	if result.Intent.Name != "search_product" {
		t.Errorf("expected search_product, got '%s'", result.Intent.Name)
	}
	if len(result.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(result.Entities))
	}
	if result.Entities[0].Kind != "subject" {
		t.Errorf("expected product_name normalized to subject, got '%s'", result.Entities[0].Kind)
	}
	if result.Entities[1].Kind != "order_id" {
		t.Errorf("unaliased kinds must pass through, got '%s'", result.Entities[1].Kind)
	}
}

func TestRasaClient_ServerErrorSurfaces(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusConflict)
	}))
	defer srv.Close()

	client := NewRasaClient(srv.URL, newTestLogger())

	// Act
	_, err := client.Parse(context.Background(), "hello", "nlu-en")

	// Assert
	if err == nil {
		t.Fatal("expected an error for non-200 response")
	}
}
