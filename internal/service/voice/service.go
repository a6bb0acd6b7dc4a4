package voice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/adapter/queue"
	"github.com/seu-repo/voxmart/internal/domain"
	"github.com/seu-repo/voxmart/internal/observability/telemetry"
	"github.com/seu-repo/voxmart/internal/ports"
)

// SubjectVoiceCommands is the queue subject for processed command events.
const SubjectVoiceCommands = "voice.commands"

// Canned responses. The mobile client renders these verbatim and plays the
// synthesized clip when one is available.
const (
	msgCouldNotHear   = "I'm sorry, I couldn't hear you clearly. Please try again."
	msgGreeting       = "Hello! How can I help you with your shopping today?"
	msgFallback       = "I'm not sure how to help with that, but I'm learning."
	msgWhichProduct   = "Which product would you like to add?"
	msgWhichSearch    = "What would you like to search for?"
	msgCartHere       = "Here is your shopping cart."
	msgOrdersHere     = "Here are your recent orders."
	msgCartEmpty      = "Your cart is empty, there's nothing to check out."
	msgCheckoutFailed = "I couldn't complete your checkout. Please try again."
)

const intentTranscriptionError = "transcription_error"

// Service runs the server-side voice pipeline: transcribe when needed,
// classify, act on the storefront, synthesize a spoken reply.
type Service struct {
	transcriber ports.Transcriber
	parser      ports.IntentParser
	synthesizer ports.Synthesizer
	store       ports.AudioStore
	catalog     ports.CatalogService
	cart        ports.CartService
	cache       ports.Cache
	queue       queue.MessageQueue
	log         *zap.Logger

	modelEN  string
	modelAR  string
	cacheTTL time.Duration
}

func NewService(
	transcriber ports.Transcriber,
	parser ports.IntentParser,
	synthesizer ports.Synthesizer,
	store ports.AudioStore,
	catalog ports.CatalogService,
	cart ports.CartService,
	cache ports.Cache,
	mq queue.MessageQueue,
	log *zap.Logger,
) *Service {
	return &Service{
		transcriber: transcriber,
		parser:      parser,
		synthesizer: synthesizer,
		store:       store,
		catalog:     catalog,
		cart:        cart,
		cache:       cache,
		queue:       mq,
		log:         log,
		modelEN:     "nlu-en",
		modelAR:     "nlu-ar",
		cacheTTL:    24 * time.Hour,
	}
}

var _ ports.VoiceService = (*Service)(nil)

// commandEvent is published to the queue after every processed utterance.
type commandEvent struct {
	UserID     string    `json:"user_id"`
	Transcript string    `json:"transcript"`
	Intent     string    `json:"intent"`
	OrderID    *int64    `json:"order_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Process runs the pipeline for one utterance. Either audio or transcript
// must be set; a supplied transcript skips transcription entirely.
func (s *Service) Process(ctx context.Context, userID string, audio []byte, transcript string) (*domain.ProcessResult, error) {
	started := time.Now()
	defer func() {
		telemetry.VoiceProcessingLatency.Observe(time.Since(started).Seconds())
	}()

	transcript = strings.TrimSpace(transcript)
	if transcript == "" && len(audio) > 0 {
		t0 := time.Now()
		text, err := s.transcriber.Transcribe(ctx, audio, "utterance.wav")
		telemetry.TranscriptionLatency.Observe(time.Since(t0).Seconds())
		if err != nil {
			telemetry.VoiceCommandsTotal.WithLabelValues("", "asr_error").Inc()
			return nil, fmt.Errorf("transcription failed: %w", err)
		}
		transcript = strings.TrimSpace(text)
	}

	language := detectLanguage(transcript)

	if transcript == "" {
		// Nothing usable was heard. Still a well-formed reply, so the client
		// can speak the apology.
		result := &domain.ProcessResult{
			Intent:       domain.Intent{Name: intentTranscriptionError},
			ResponseText: msgCouldNotHear,
		}
		s.attachAudio(ctx, result, language)
		telemetry.VoiceCommandsTotal.WithLabelValues(intentTranscriptionError, "empty").Inc()
		return result, nil
	}

	model := s.modelEN
	if language == "ar" {
		model = s.modelAR
	}
	parsed, err := s.parser.Parse(ctx, transcript, model)
	if err != nil {
		telemetry.VoiceCommandsTotal.WithLabelValues("", "nlu_error").Inc()
		return nil, fmt.Errorf("intent parsing failed: %w", err)
	}

	result := &domain.ProcessResult{
		Transcript: transcript,
		Intent:     parsed.Intent,
		Entities:   parsed.Entities,
	}
	s.execute(ctx, userID, result)
	s.attachAudio(ctx, result, language)
	s.publish(userID, result)

	telemetry.VoiceCommandsTotal.WithLabelValues(result.Intent.Name, "ok").Inc()
	s.log.Info("voice command processed",
		zap.String("user_id", userID),
		zap.String("intent", result.Intent.Name),
		zap.String("language", language),
		zap.Duration("took", time.Since(started)),
	)
	return result, nil
}

// ResponseAudio serves a synthesized clip by filename.
func (s *Service) ResponseAudio(ctx context.Context, filename string) ([]byte, error) {
	return s.store.Open(ctx, filename)
}

// execute acts on the storefront and fills in the response text.
func (s *Service) execute(ctx context.Context, userID string, result *domain.ProcessResult) {
	subject := entityValue(result.Entities, "subject")

	switch result.Intent.Name {
	case "greet":
		result.ResponseText = msgGreeting

	case "search_product":
		if subject == "" {
			result.ResponseText = msgWhichSearch
			return
		}
		result.ResponseText = fmt.Sprintf("Searching for %s now.", subject)

	case "add_to_cart":
		if subject == "" {
			result.ResponseText = msgWhichProduct
			return
		}
		product, err := s.catalog.FindByName(ctx, subject)
		if err != nil {
			s.log.Error("catalog lookup failed", zap.String("subject", subject), zap.Error(err))
			result.ResponseText = msgFallback
			return
		}
		if product == nil {
			result.ResponseText = fmt.Sprintf("I couldn't find %s in our catalog.", subject)
			return
		}
		if _, err := s.cart.AddItem(ctx, userID, product.ID, 1); err != nil {
			s.log.Error("cart add failed", zap.Int64("product_id", product.ID), zap.Error(err))
			result.ResponseText = msgFallback
			return
		}
		result.ResponseText = fmt.Sprintf("Okay, I've added %s to your cart.", product.Name)

	case "view_cart":
		result.ResponseText = msgCartHere

	case "view_orders":
		result.ResponseText = msgOrdersHere

	case "checkout":
		order, err := s.cart.Checkout(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrEmptyCart) {
				result.ResponseText = msgCartEmpty
				return
			}
			s.log.Error("checkout failed", zap.String("user_id", userID), zap.Error(err))
			result.ResponseText = msgCheckoutFailed
			return
		}
		telemetry.OrdersPlacedTotal.Inc()
		result.OrderID = &order.ID
		result.ResponseText = fmt.Sprintf("Your order has been placed. Your order number is %d.", order.ID)

	default:
		result.ResponseText = msgFallback
	}
}

// attachAudio synthesizes the response text and stores the clip. Synthesis
// failures leave AudioFilename nil; the reply text still reaches the client.
func (s *Service) attachAudio(ctx context.Context, result *domain.ProcessResult, language string) {
	if result.ResponseText == "" {
		return
	}

	key := ttsCacheKey(result.ResponseText, language)
	if s.cache != nil {
		if filename, err := s.cache.Get(ctx, key); err == nil && filename != "" {
			if _, err := s.store.Open(ctx, filename); err == nil {
				result.AudioFilename = &filename
				return
			}
		}
	}

	t0 := time.Now()
	clip, err := s.synthesizer.Synthesize(ctx, result.ResponseText, language)
	telemetry.SynthesisLatency.Observe(time.Since(t0).Seconds())
	if err != nil {
		s.log.Warn("speech synthesis failed, replying with text only", zap.Error(err))
		return
	}

	filename := uuid.NewString() + ".wav"
	if err := s.store.Put(ctx, filename, clip); err != nil {
		s.log.Warn("storing response clip failed", zap.Error(err))
		return
	}
	result.AudioFilename = &filename

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, filename, s.cacheTTL); err != nil {
			s.log.Debug("tts cache set failed", zap.Error(err))
		}
	}
}

func (s *Service) publish(userID string, result *domain.ProcessResult) {
	if s.queue == nil {
		return
	}
	payload, err := json.Marshal(commandEvent{
		UserID:     userID,
		Transcript: result.Transcript,
		Intent:     result.Intent.Name,
		OrderID:    result.OrderID,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.queue.Publish(SubjectVoiceCommands, payload); err != nil {
		s.log.Warn("publishing voice command event failed", zap.Error(err))
	}
}

func entityValue(entities []domain.Entity, kind string) string {
	for _, e := range entities {
		if e.Kind == kind {
			return strings.TrimSpace(e.Value)
		}
	}
	return ""
}

// detectLanguage picks Arabic when the utterance contains characters in the
// Arabic unicode block, English otherwise.
func detectLanguage(text string) string {
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return "ar"
		}
	}
	return "en"
}

func ttsCacheKey(text, language string) string {
	sum := sha256.Sum256([]byte(language + "|" + text))
	return "tts:" + hex.EncodeToString(sum[:16])
}
