package handlers

import (
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/adapter/audiostore"
	"github.com/seu-repo/voxmart/internal/ports"
)

type VoiceHandler struct {
	service ports.VoiceService
	log     *zap.Logger
}

func NewVoiceHandler(service ports.VoiceService, log *zap.Logger) *VoiceHandler {
	return &VoiceHandler{
		service: service,
		log:     log,
	}
}

type TranscriptRequest struct {
	Transcript string `json:"transcript"`
}

// ProcessCommand accepts one utterance, either as a multipart "audio" file
// or as a JSON body carrying an on-device transcript.
func (h *VoiceHandler) ProcessCommand(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	var audio []byte
	var transcript string

	contentType := string(c.Request().Header.ContentType())
	if strings.HasPrefix(contentType, "multipart/form-data") {
		fileHeader, err := c.FormFile("audio")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Audio file is required"})
		}
		file, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot read audio file"})
		}
		defer file.Close()
		audio, err = io.ReadAll(file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot read audio file"})
		}
	} else {
		var req TranscriptRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		transcript = strings.TrimSpace(req.Transcript)
		if transcript == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Transcript or audio is required"})
		}
	}

	result, err := h.service.Process(c.Context(), userID, audio, transcript)
	if err != nil {
		h.log.Error("Failed to process voice command",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to process voice command"})
	}

	return c.JSON(result)
}

// ResponseAudio serves a synthesized reply clip.
func (h *VoiceHandler) ResponseAudio(c *fiber.Ctx) error {
	filename := c.Params("filename")
	audio, err := h.service.ResponseAudio(c.Context(), filename)
	if err != nil {
		if errors.Is(err, audiostore.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Audio clip not found"})
		}
		h.log.Error("Failed to read response audio", zap.String("filename", filename), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid audio filename"})
	}

	c.Set("Content-Type", "audio/wav")
	return c.Send(audio)
}
