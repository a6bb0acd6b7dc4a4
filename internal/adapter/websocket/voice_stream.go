package websocket

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/observability/telemetry"
	"github.com/seu-repo/voxmart/internal/ports"
)

// VoiceStreamHandler serves a persistent socket for voice-first clients.
// Each binary frame carries one complete WAV utterance; each text frame
// carries a JSON envelope with an on-device transcript. Either way the
// server answers with the ProcessResult for that utterance.
type VoiceStreamHandler struct {
	service ports.VoiceService
	log     *zap.Logger
}

func NewVoiceStreamHandler(service ports.VoiceService, log *zap.Logger) *VoiceStreamHandler {
	return &VoiceStreamHandler{
		service: service,
		log:     log,
	}
}

type streamRequest struct {
	Transcript string `json:"transcript"`
}

type streamError struct {
	Error string `json:"error"`
}

func (h *VoiceStreamHandler) HandleVoiceStream(c *websocket.Conn) {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		h.writeError(c, "Not authenticated")
		return
	}

	telemetry.ActiveVoiceStreams.Inc()
	defer telemetry.ActiveVoiceStreams.Dec()

	ctx := context.Background()

	for {
		messageType, payload, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("Voice stream closed unexpectedly",
					zap.String("user_id", userID),
					zap.Error(err),
				)
			}
			return
		}

		var audio []byte
		var transcript string

		switch messageType {
		case websocket.BinaryMessage:
			audio = payload
		case websocket.TextMessage:
			var req streamRequest
			if err := json.Unmarshal(payload, &req); err != nil {
				h.writeError(c, "Invalid request envelope")
				continue
			}
			transcript = strings.TrimSpace(req.Transcript)
			if transcript == "" {
				h.writeError(c, "Transcript is required")
				continue
			}
		default:
			continue
		}

		result, err := h.service.Process(ctx, userID, audio, transcript)
		if err != nil {
			h.log.Error("Failed to process streamed utterance",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			h.writeError(c, "Failed to process voice command")
			continue
		}

		response, err := json.Marshal(result)
		if err != nil {
			h.log.Error("Failed to encode stream response", zap.Error(err))
			continue
		}
		if err := c.WriteMessage(websocket.TextMessage, response); err != nil {
			h.log.Warn("Failed to write stream response",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return
		}
	}
}

func (h *VoiceStreamHandler) writeError(c *websocket.Conn, message string) {
	payload, _ := json.Marshal(streamError{Error: message})
	_ = c.WriteMessage(websocket.TextMessage, payload)
}

// SetupVoiceRoutes mounts the upgrade guard and the socket endpoint.
func SetupVoiceRoutes(app *fiber.App, handler *VoiceStreamHandler, auth fiber.Handler) {
	app.Use("/ws/voice", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/voice", auth, websocket.New(handler.HandleVoiceStream))
}
