package handlers

import (
	"context"
	"encoding/base64"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/farmwise/internal/middleware"
	"github.com/example/farmwise/internal/models"
	"github.com/example/farmwise/internal/services"
)

// CropAdvisor wraps the generative crop recommendation call.
type CropAdvisor interface {
	CropRecommendations(ctx context.Context, soilType string, soilPH float64, location string) (string, error)
}

// VideoSearcher wraps the tutorial video search call.
type VideoSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]services.Video, error)
}

// WeatherProvider wraps the current-conditions lookup.
type WeatherProvider interface {
	Current(ctx context.Context, location string) (*services.Weather, error)
}

// SpeechConverter wraps text-to-speech and speech-to-text.
type SpeechConverter interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
	Recognize(ctx context.Context, audio []byte, language string) (string, error)
}

// cropFallback is returned when recommendations cannot be generated.
const cropFallback = "I'm sorry, I couldn't generate crop recommendations at this time. Please try again later."

// AssistHandler exposes the best-effort helper endpoints. Every operation
// here wraps a single external call and degrades to an empty or neutral
// result instead of failing the request.
type AssistHandler struct {
	db      *gorm.DB
	ai      Assistant
	crops   CropAdvisor
	videos  VideoSearcher
	weather WeatherProvider
	speech  SpeechConverter
}

// NewAssistHandler constructs an AssistHandler.
func NewAssistHandler(db *gorm.DB, ai Assistant, crops CropAdvisor, videos VideoSearcher, weather WeatherProvider, speech SpeechConverter) *AssistHandler {
	return &AssistHandler{db: db, ai: ai, crops: crops, videos: videos, weather: weather, speech: speech}
}

type cropRecommendationsRequest struct {
	SoilType string  `json:"soil_type"`
	SoilPH   float64 `json:"soil_ph"`
	Location string  `json:"location"`
	Language string  `json:"language"`
}

// CropRecommendations returns generated crop advice for the given soil and
// location.
func (h *AssistHandler) CropRecommendations(c *fiber.Ctx) error {
	var req cropRecommendationsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Location == "" {
		req.Location = h.callerLocation(c)
	}

	recommendations, err := h.crops.CropRecommendations(c.Context(), req.SoilType, req.SoilPH, req.Location)
	if err != nil {
		log.Printf("[Assist] crop recommendations failed: %v", err)
		recommendations = cropFallback
	} else if req.Language != "" && req.Language != models.DefaultLanguage {
		if translated, terr := h.ai.Translate(c.Context(), recommendations, req.Language); terr == nil {
			recommendations = translated
		} else {
			log.Printf("[Assist] recommendations translation failed: %v", terr)
		}
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"recommendations": recommendations,
	})
}

type videoSearchRequest struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

// SearchVideos looks up farming tutorial videos; failures come back as an
// empty list.
func (h *AssistHandler) SearchVideos(c *fiber.Ctx) error {
	var req videoSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	query := "agriculture farming " + req.Query + " india tutorial"
	if req.Language != "" && req.Language != models.DefaultLanguage {
		if translated, err := h.ai.Translate(c.Context(), query, models.DefaultLanguage); err == nil {
			query = translated
		}
	}

	videos, err := h.videos.Search(c.Context(), query, 5)
	if err != nil {
		log.Printf("[Assist] video search failed: %v", err)
		videos = []services.Video{}
	}

	if req.Language != "" && req.Language != models.DefaultLanguage {
		for i := range videos {
			if title, err := h.ai.Translate(c.Context(), videos[i].Title, req.Language); err == nil {
				videos[i].Title = title
			}
			if desc, err := h.ai.Translate(c.Context(), videos[i].Description, req.Language); err == nil {
				videos[i].Description = desc
			}
		}
	}

	return c.JSON(fiber.Map{"success": true, "videos": videos})
}

type translateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Translate converts free text into the target language, returning the input
// unchanged on failure.
func (h *AssistHandler) Translate(c *fiber.Ctx) error {
	var req translateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	translated, err := h.ai.Translate(c.Context(), req.Text, req.Language)
	if err != nil {
		log.Printf("[Assist] translation to %s failed: %v", req.Language, err)
		translated = req.Text
	}

	return c.JSON(fiber.Map{"success": true, "translated_text": translated})
}

type textToSpeechRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// TextToSpeech synthesizes audio for the given text; the audio comes back
// base64-encoded, empty on failure.
func (h *AssistHandler) TextToSpeech(c *fiber.Ctx) error {
	var req textToSpeechRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	encoded := ""
	audio, err := h.speech.Synthesize(c.Context(), req.Text, req.Language)
	if err != nil {
		log.Printf("[Assist] text-to-speech failed: %v", err)
	} else {
		encoded = base64.StdEncoding.EncodeToString(audio)
	}

	return c.JSON(fiber.Map{"success": true, "audio_data": encoded})
}

type speechToTextRequest struct {
	AudioData string `json:"audio_data"`
	Language  string `json:"language"`
}

// SpeechToText transcribes base64-encoded audio; failures come back as an
// empty string.
func (h *AssistHandler) SpeechToText(c *fiber.Ctx) error {
	var req speechToTextRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	text := ""
	audio, err := base64.StdEncoding.DecodeString(req.AudioData)
	if err != nil {
		log.Printf("[Assist] speech-to-text audio decode failed: %v", err)
	} else if transcript, rerr := h.speech.Recognize(c.Context(), audio, req.Language); rerr != nil {
		log.Printf("[Assist] speech-to-text failed: %v", rerr)
	} else {
		text = transcript
	}

	return c.JSON(fiber.Map{"success": true, "text": text})
}

// Weather returns current conditions for the query location, defaulting to
// the caller's account location; absent data comes back as null.
func (h *AssistHandler) Weather(c *fiber.Ctx) error {
	location := c.Query("location")
	if location == "" {
		location = h.callerLocation(c)
	}

	if location == "" {
		return c.JSON(fiber.Map{"success": true, "weather": nil})
	}

	weather, err := h.weather.Current(c.Context(), location)
	if err != nil {
		log.Printf("[Assist] weather lookup for %q failed: %v", location, err)
		weather = nil
	}

	return c.JSON(fiber.Map{"success": true, "weather": weather})
}

// ListLanguages returns the seeded language reference table.
func (h *AssistHandler) ListLanguages(c *fiber.Ctx) error {
	var languages []models.Language
	if err := h.db.Order("code").Find(&languages).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": languages})
}

func (h *AssistHandler) callerLocation(c *fiber.Ctx) string {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return ""
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return ""
	}
	return user.Location
}
