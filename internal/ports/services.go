package ports

import (
	"context"
	"time"

	"github.com/seu-repo/voxmart/internal/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, string, error) // token, refresh, err
	Register(ctx context.Context, user *domain.User) error
	RefreshToken(ctx context.Context, token string) (string, error)
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
}

// VoiceService runs the server-side pipeline for one utterance: transcribe
// when no transcript is supplied, parse, act, synthesize.
type VoiceService interface {
	Process(ctx context.Context, userID string, audio []byte, transcript string) (*domain.ProcessResult, error)
	ResponseAudio(ctx context.Context, filename string) ([]byte, error)
}

type CatalogService interface {
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	Search(ctx context.Context, term string) ([]domain.Product, error)
}

type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.ShoppingCart, error)
	AddItem(ctx context.Context, userID string, productID int64, quantity int) (*domain.ShoppingCart, error)
	Checkout(ctx context.Context, userID string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
}

// Transcriber converts captured audio to text via a remote ASR engine.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// IntentParser classifies an utterance via a remote NLU engine.
type IntentParser interface {
	Parse(ctx context.Context, text, model string) (*domain.NLUResult, error)
}

// Synthesizer renders response text to audio via a remote TTS engine.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// AudioStore keeps synthesized response clips addressable by filename.
type AudioStore interface {
	Put(ctx context.Context, filename string, data []byte) error
	Open(ctx context.Context, filename string) ([]byte, error)
	Remove(ctx context.Context, filename string) error
}

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
