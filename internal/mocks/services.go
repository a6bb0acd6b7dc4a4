package mocks

import (
	"context"
	"fmt"

	"github.com/seu-repo/voxmart/internal/domain"
)

// MockAuthService is a mock implementation of AuthService interface
type MockAuthService struct {
	LoginFunc         func(ctx context.Context, email, password string) (string, string, error)
	RegisterFunc      func(ctx context.Context, user *domain.User) error
	RefreshTokenFunc  func(ctx context.Context, token string) (string, error)
	ValidateTokenFunc func(ctx context.Context, token string) (*domain.User, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return "", "", nil
}

func (m *MockAuthService) Register(ctx context.Context, user *domain.User) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, user)
	}
	return nil
}

func (m *MockAuthService) RefreshToken(ctx context.Context, token string) (string, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, token)
	}
	return "", nil
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, token)
	}
	return nil, nil
}

// MockVoiceService is a mock implementation of VoiceService interface
type MockVoiceService struct {
	ProcessFunc       func(ctx context.Context, userID string, audio []byte, transcript string) (*domain.ProcessResult, error)
	ResponseAudioFunc func(ctx context.Context, filename string) ([]byte, error)
}

func (m *MockVoiceService) Process(ctx context.Context, userID string, audio []byte, transcript string) (*domain.ProcessResult, error) {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, userID, audio, transcript)
	}
	return &domain.ProcessResult{}, nil
}

func (m *MockVoiceService) ResponseAudio(ctx context.Context, filename string) ([]byte, error) {
	if m.ResponseAudioFunc != nil {
		return m.ResponseAudioFunc(ctx, filename)
	}
	return nil, nil
}

// MockCatalogService is a mock implementation of CatalogService interface
type MockCatalogService struct {
	FindByNameFunc func(ctx context.Context, name string) (*domain.Product, error)
	SearchFunc     func(ctx context.Context, term string) ([]domain.Product, error)
}

func (m *MockCatalogService) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	if m.FindByNameFunc != nil {
		return m.FindByNameFunc(ctx, name)
	}
	return nil, nil
}

func (m *MockCatalogService) Search(ctx context.Context, term string) ([]domain.Product, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, term)
	}
	return []domain.Product{}, nil
}

// MockCartService is a mock implementation of CartService interface
type MockCartService struct {
	GetCartFunc    func(ctx context.Context, userID string) (*domain.ShoppingCart, error)
	AddItemFunc    func(ctx context.Context, userID string, productID int64, quantity int) (*domain.ShoppingCart, error)
	CheckoutFunc   func(ctx context.Context, userID string) (*domain.Order, error)
	ListOrdersFunc func(ctx context.Context, userID string) ([]domain.Order, error)
}

func (m *MockCartService) GetCart(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
	if m.GetCartFunc != nil {
		return m.GetCartFunc(ctx, userID)
	}
	return &domain.ShoppingCart{}, nil
}

func (m *MockCartService) AddItem(ctx context.Context, userID string, productID int64, quantity int) (*domain.ShoppingCart, error) {
	if m.AddItemFunc != nil {
		return m.AddItemFunc(ctx, userID, productID, quantity)
	}
	return &domain.ShoppingCart{}, nil
}

func (m *MockCartService) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	if m.CheckoutFunc != nil {
		return m.CheckoutFunc(ctx, userID)
	}
	return &domain.Order{}, nil
}

func (m *MockCartService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if m.ListOrdersFunc != nil {
		return m.ListOrdersFunc(ctx, userID)
	}
	return []domain.Order{}, nil
}

// MockTranscriber is a mock implementation of Transcriber interface
type MockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audio []byte, filename string) (string, error)
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio, filename)
	}
	return "", nil
}

// MockIntentParser is a mock implementation of IntentParser interface
type MockIntentParser struct {
	ParseFunc func(ctx context.Context, text, model string) (*domain.NLUResult, error)
}

func (m *MockIntentParser) Parse(ctx context.Context, text, model string) (*domain.NLUResult, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(ctx, text, model)
	}
	return &domain.NLUResult{Intent: domain.Intent{Name: "unknown"}}, nil
}

// MockSynthesizer is a mock implementation of Synthesizer interface
type MockSynthesizer struct {
	SynthesizeFunc func(ctx context.Context, text, language string) ([]byte, error)
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, language)
	}
	return []byte("wav"), nil
}

// MockAudioStore is a mock implementation of AudioStore interface
type MockAudioStore struct {
	clips      map[string][]byte
	PutFunc    func(ctx context.Context, filename string, data []byte) error
	OpenFunc   func(ctx context.Context, filename string) ([]byte, error)
	RemoveFunc func(ctx context.Context, filename string) error
}

func NewMockAudioStore() *MockAudioStore {
	return &MockAudioStore{clips: make(map[string][]byte)}
}

func (m *MockAudioStore) Put(ctx context.Context, filename string, data []byte) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, filename, data)
	}
	m.clips[filename] = data
	return nil
}

func (m *MockAudioStore) Open(ctx context.Context, filename string) ([]byte, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, filename)
	}
	if clip, ok := m.clips[filename]; ok {
		return clip, nil
	}
	return nil, fmt.Errorf("clip not found: %s", filename)
}

func (m *MockAudioStore) Remove(ctx context.Context, filename string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, filename)
	}
	delete(m.clips, filename)
	return nil
}

// Clips returns the stored clips by filename.
func (m *MockAudioStore) Clips() map[string][]byte {
	return m.clips
}
