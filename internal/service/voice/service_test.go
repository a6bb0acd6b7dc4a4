package voice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

type fixture struct {
	transcriber *mocks.MockTranscriber
	parser      *mocks.MockIntentParser
	synthesizer *mocks.MockSynthesizer
	store       *mocks.MockAudioStore
	catalog     *mocks.MockCatalogService
	cart        *mocks.MockCartService
	cache       *mocks.MockCache
	queue       *mocks.MockMessageQueue
	svc         *Service
}

func newFixture() *fixture {
	f := &fixture{
		transcriber: &mocks.MockTranscriber{},
		parser:      &mocks.MockIntentParser{},
		synthesizer: &mocks.MockSynthesizer{},
		store:       mocks.NewMockAudioStore(),
		catalog:     &mocks.MockCatalogService{},
		cart:        &mocks.MockCartService{},
		cache:       mocks.NewMockCache(),
		queue:       mocks.NewMockMessageQueue(),
	}
	f.svc = NewService(
		f.transcriber, f.parser, f.synthesizer, f.store,
		f.catalog, f.cart, f.cache, f.queue, newTestLogger(),
	)
	return f
}

func intentResult(name string, entities ...domain.Entity) *domain.NLUResult {
	return &domain.NLUResult{
		Intent:   domain.Intent{Name: name, Confidence: 0.9},
		Entities: entities,
	}
}

func TestProcess_EmptyTranscriptApologizes(t *testing.T) {
	// Arrange
	f := newFixture()
	f.transcriber.TranscribeFunc = func(ctx context.Context, audio []byte, filename string) (string, error) {
		return "   ", nil
	}

	// Act
	result, err := f.svc.Process(context.Background(), "u1", []byte("wav"), "")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Intent.Name != "transcription_error" {
		t.Errorf("expected transcription_error intent, got '%s'", result.Intent.Name)
	}
	if result.ResponseText != msgCouldNotHear {
		t.Errorf("unexpected response text: '%s'", result.ResponseText)
	}
	if result.AudioFilename == nil {
		t.Error("apology should still be synthesized")
	}
}

func TestProcess_SuppliedTranscriptSkipsASR(t *testing.T) {
	// Arrange
	f := newFixture()
	asrCalled := false
	f.transcriber.TranscribeFunc = func(ctx context.Context, audio []byte, filename string) (string, error) {
		asrCalled = true
		return "", nil
	}
	f.parser.ParseFunc = func(ctx context.Context, text, model string) (*domain.NLUResult, error) {
		return intentResult("view_cart"), nil
	}

	// Act
	result, err := f.svc.Process(context.Background(), "u1", nil, "show my cart")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asrCalled {
		t.Error("transcriber must not run when a transcript is supplied")
	}
	if result.ResponseText != msgCartHere {
		t.Errorf("unexpected response: '%s'", result.ResponseText)
	}
}

func TestProcess_AddToCartHappyPath(t *testing.T) {
	// Arrange
	f := newFixture()
	f.parser.ParseFunc = func(ctx context.Context, text, model string) (*domain.NLUResult, error) {
		return intentResult("add_to_cart", domain.Entity{Kind: "subject", Value: "milk"}), nil
	}
	f.catalog.FindByNameFunc = func(ctx context.Context, name string) (*domain.Product, error) {
		return &domain.Product{ID: 5, Name: "Milk", Stock: 10}, nil
	}
	var addedProduct int64
	var addedQty int
	f.cart.AddItemFunc = func(ctx context.Context, userID string, productID int64, quantity int) (*domain.ShoppingCart, error) {
		addedProduct, addedQty = productID, quantity
		return &domain.ShoppingCart{}, nil
	}

	// Act
	result, err := f.svc.Process(context.Background(), "u1", nil, "add milk to my cart")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addedProduct != 5 || addedQty != 1 {
		t.Errorf("expected product 5 qty 1 added, got %d/%d", addedProduct, addedQty)
	}
	if result.ResponseText != "Okay, I've added Milk to your cart." {
		t.Errorf("unexpected response: '%s'", result.ResponseText)
	}
}

func TestProcess_AddToCartUnknownProduct(t *testing.T) {
	// Arrange
	f := newFixture()
	f.parser.ParseFunc = func(ctx context.Context, text, model string) (*domain.NLUResult, error) {
		return intentResult("add_to_cart", domain.Entity{Kind: "subject", Value: "unobtainium"}), nil
	}

	// Act
	result, err := f.svc.Process(context.Background(), "u1", nil, "add unobtainium")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ResponseText != "I couldn't find unobtainium in our catalog." {
		t.Errorf("unexpected response: '%s'", result.ResponseText)
	}
}

func TestProcess_AddToCartMissingSubject(t *testing.T) {
	// Arrange
	f := newFixture()
	f.parser.ParseFunc = func(ctx context.Context, text, model string) (*domain.NLUResult, error) {
		return intentResult("add_to_cart"), nil
	}

	// Act
	result, _ := f.svc.Process(context.Background(), "u1", nil, "add to my cart")

	// Assert
	if result.ResponseText != msgWhichProduct {
		t.Errorf("unexpected response: '%s'", result.ResponseText)
	}
}

func TestProcess_CheckoutReturnsOrderID(t *testing.T) {
	// Arrange
	f := newFixture()
	f.parser.ParseFunc = func(ctx context.Context, text, model string) (*domain.NLUResult, error) {
		return intentResult("checkout"), nil
	}
	f.cart.CheckoutFunc = func(ctx context.Context, userID string) (*domain.Order, error) {
		return &domain.Order{ID: 42, Status: domain.OrderStatusConfirmed, Total: 12.5}, nil
	}

	// Act
	result, err := f.svc.Process(context.Background(), "u1", nil, "check out")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OrderID == nil || *result.OrderID != 42 {
		t.Fatalf("expected order id 42, got %v", result.OrderID)
	}
	if result.ResponseText != "Your order has been placed. Your order number is 42." {
		t.Errorf("unexpected response: '%s'", result.ResponseText)
	}
}

func TestProcess_CheckoutEmptyCart(t *testing.T) {
	// Arrange
	f := newFixture()
	f.parser.ParseFunc = func(ctx context.Context, text, model string) (*domain.NLUResult, error) {
		return intentResult("checkout"), nil
	}
	f.cart.CheckoutFunc = func(ctx context.Context, userID string) (*domain.Order, error) {
		return nil, domain.ErrEmptyCart
	}

	// Act
	result, err := f.svc.Process(context.Background(), "u1", nil, "check out")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ResponseText != msgCartEmpty {
		t.Errorf("unexpected response: '%s'", result.ResponseText)
	}
	if result.OrderID != nil {
		t.Error("no order id on a failed checkout")
	}
}

func TestProcess_ArabicSelectsArabicModel(t *testing.T) {
	// Arrange
	f := newFixture()
	var gotModel string
	f.parser.ParseFunc = func(ctx context.Context, text, model string) (*domain.NLUResult, error) {
		gotModel = model
		return intentResult("greet"), nil
	}

	// Act
	_, err := f.svc.Process(context.Background(), "u1", nil, "مرحبا")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotModel != "nlu-ar" {
		t.Errorf("expected nlu-ar model for Arabic text, got '%s'", gotModel)
	}
}

func TestProcess_SynthesisFailureIsNotFatal(t *testing.T) {
	// Arrange
	f := newFixture()
	f.parser.ParseFunc = func(ctx context.Context, text, model string) (*domain.NLUResult, error) {
		return intentResult("greet"), nil
	}
	f.synthesizer.SynthesizeFunc = func(ctx context.Context, text, language string) ([]byte, error) {
		return nil, errors.New("tts down")
	}

	// Act
	result, err := f.svc.Process(context.Background(), "u1", nil, "hello")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AudioFilename != nil {
		t.Error("expected nil audio filename when synthesis fails")
	}
	if result.ResponseText != msgGreeting {
		t.Errorf("unexpected response: '%s'", result.ResponseText)
	}
}

func TestProcess_TTSCacheHitSkipsSynthesis(t *testing.T) {
	// Arrange
	f := newFixture()
	f.parser.ParseFunc = func(ctx context.Context, text, model string) (*domain.NLUResult, error) {
		return intentResult("greet"), nil
	}
	synthCalls := 0
	f.synthesizer.SynthesizeFunc = func(ctx context.Context, text, language string) ([]byte, error) {
		synthCalls++
		return []byte("wav"), nil
	}

	// Act: same response twice
	first, _ := f.svc.Process(context.Background(), "u1", nil, "hello")
	second, _ := f.svc.Process(context.Background(), "u1", nil, "hello")

	// Assert
	if synthCalls != 1 {
		t.Errorf("expected a single synthesis, got %d", synthCalls)
	}
	if first.AudioFilename == nil || second.AudioFilename == nil {
		t.Fatal("both results should carry an audio filename")
	}
	if *first.AudioFilename != *second.AudioFilename {
		t.Errorf("cache hit should reuse the clip: '%s' vs '%s'", *first.AudioFilename, *second.AudioFilename)
	}
}

func TestProcess_PublishesCommandEvent(t *testing.T) {
	// Arrange
	f := newFixture()
	f.parser.ParseFunc = func(ctx context.Context, text, model string) (*domain.NLUResult, error) {
		return intentResult("view_orders"), nil
	}

	// Act
	_, err := f.svc.Process(context.Background(), "u1", nil, "show my orders")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msgs := f.queue.GetPublishedMessages(SubjectVoiceCommands)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(msgs))
	}
	var ev struct {
		UserID string `json:"user_id"`
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal(msgs[0], &ev); err != nil {
		t.Fatalf("event unreadable: %v", err)
	}
	if ev.UserID != "u1" || ev.Intent != "view_orders" {
		t.Errorf("unexpected event payload: %+v", ev)
	}
}

func TestProcess_UnknownIntentFallsBack(t *testing.T) {
	// Arrange
	f := newFixture()
	f.parser.ParseFunc = func(ctx context.Context, text, model string) (*domain.NLUResult, error) {
		return intentResult("order_pizza"), nil
	}

	// Act
	result, _ := f.svc.Process(context.Background(), "u1", nil, "order a pizza")

	// Assert
	if result.ResponseText != msgFallback {
		t.Errorf("unexpected response: '%s'", result.ResponseText)
	}
}

func TestResponseAudio_ServesStoredClip(t *testing.T) {
	// Arrange
	f := newFixture()
	_ = f.store.Put(context.Background(), "clip.wav", []byte("riff"))

	// Act
	data, err := f.svc.ResponseAudio(context.Background(), "clip.wav")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "riff" {
		t.Errorf("unexpected payload: %q", data)
	}
}
