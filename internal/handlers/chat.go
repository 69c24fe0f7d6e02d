package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/farmwise/internal/middleware"
	"github.com/example/farmwise/internal/models"
	"github.com/example/farmwise/internal/utils"
)

// Assistant is the generative backend the conversation orchestrator talks to.
type Assistant interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Translate(ctx context.Context, text, targetCode string) (string, error)
}

// fallbackReply is returned to the user whenever the generative backend
// fails; the turn itself still completes and is persisted.
const fallbackReply = "I'm sorry, I'm having trouble processing your request right now. Please try again later."

// chatTitleLimit is how many characters of the first message become the
// auto-generated chat title.
const chatTitleLimit = 50

// ChatHandler manages chat sessions and the message exchange pipeline.
type ChatHandler struct {
	db *gorm.DB
	ai Assistant
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(db *gorm.DB, ai Assistant) *ChatHandler {
	return &ChatHandler{db: db, ai: ai}
}

// CreateChat opens a fresh chat with the sentinel title.
func (h *ChatHandler) CreateChat(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	chat := models.Chat{UserID: userID, Title: models.DefaultChatTitle}
	if err := h.db.Create(&chat).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    chat,
	})
}

// ListChats returns the caller's chats, newest first.
func (h *ChatHandler) ListChats(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pagination := utils.ParsePagination(c)

	var chats []models.Chat
	err := pagination.Apply(h.db.Where("user_id = ?", userID).Order("created_at DESC")).
		Find(&chats).Error
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": chats})
}

// GetChat returns one chat with its messages in conversation order.
func (h *ChatHandler) GetChat(c *fiber.Ctx) error {
	chat, err := h.ownedChat(c)
	if err != nil {
		return err
	}

	var messages []models.Message
	if err := h.db.Where("chat_id = ?", chat.ID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"chat":     chat,
			"messages": messages,
		},
	})
}

type renameChatRequest struct {
	Title string `json:"title"`
}

// RenameChat lets the owner set an explicit title.
func (h *ChatHandler) RenameChat(c *fiber.Ctx) error {
	chat, err := h.ownedChat(c)
	if err != nil {
		return err
	}

	var req renameChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title is required")
	}

	if err := h.db.Model(&models.Chat{}).Where("id = ?", chat.ID).
		Update("title", req.Title).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "chat renamed"})
}

// DeleteChat removes a chat and all of its messages atomically.
func (h *ChatHandler) DeleteChat(c *fiber.Ctx) error {
	chat, err := h.ownedChat(c)
	if err != nil {
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", chat.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Chat{}, "id = ?", chat.ID).Error
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete chat")
	}

	return c.JSON(fiber.Map{"success": true, "message": "chat deleted"})
}

type sendMessageRequest struct {
	Content  string `json:"content"`
	Language string `json:"language"`
}

// SendMessage runs one conversation turn: persist the user's message, build
// a profile-aware prompt, invoke the assistant, translate if the target
// language is not the default, persist the reply and auto-title the chat on
// its first exchange. Generative and translation failures never abort the
// turn; the reply falls back to a safe message or the untranslated text.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	chat, err := h.ownedChat(c)
	if err != nil {
		return err
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Content == "" {
		return fiber.NewError(fiber.StatusBadRequest, "message content is required")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	language := req.Language
	if language == "" {
		language = user.PreferredLanguage
	}

	userMessage := models.Message{ChatID: chat.ID, Content: req.Content, IsUser: true}
	if err := h.db.Create(&userMessage).Error; err != nil {
		return err
	}

	// A missing profile row just means no agronomic context yet.
	var profile *models.Profile
	var loaded models.Profile
	if err := h.db.Where("user_id = ?", userID).First(&loaded).Error; err == nil {
		profile = &loaded
	}

	prompt := buildPrompt(profile, user.Location, req.Content)

	reply, err := h.ai.Complete(c.Context(), prompt)
	if err != nil {
		log.Printf("[Chat] completion failed for chat %s: %v", chat.ID, err)
		reply = fallbackReply
	} else if language != models.DefaultLanguage {
		translated, terr := h.ai.Translate(c.Context(), reply, language)
		if terr != nil {
			log.Printf("[Chat] translation to %s failed for chat %s: %v", language, chat.ID, terr)
		} else {
			reply = translated
		}
	}

	assistantMessage := models.Message{ChatID: chat.ID, Content: reply, IsUser: false}
	if err := h.db.Create(&assistantMessage).Error; err != nil {
		return err
	}

	// The sentinel title marks a chat that has not had its first exchange
	// yet; the rename happens at most once.
	if chat.Title == models.DefaultChatTitle {
		if err := h.db.Model(&models.Chat{}).Where("id = ?", chat.ID).
			Update("title", titleFromMessage(req.Content)).Error; err != nil {
			log.Printf("[Chat] auto-title failed for chat %s: %v", chat.ID, err)
		}
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"response":   reply,
		"message_id": assistantMessage.ID,
	})
}

// ownedChat loads the chat in the :id param and enforces ownership.
func (h *ChatHandler) ownedChat(c *fiber.Ctx) (*models.Chat, error) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	chatID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid chat id")
	}

	var chat models.Chat
	if err := h.db.First(&chat, "id = ?", chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "chat not found")
		}
		return nil, err
	}

	if chat.UserID != userID {
		return nil, fiber.NewError(fiber.StatusForbidden, "forbidden")
	}

	return &chat, nil
}

func buildPrompt(profile *models.Profile, location, message string) string {
	var context strings.Builder
	context.WriteString("You are an agricultural assistant chatbot helping Indian farmers.")

	if profile != nil {
		farmLocation := profile.FarmLocation
		if farmLocation == "" {
			farmLocation = location
		}
		if farmLocation != "" {
			context.WriteString(fmt.Sprintf(" The farmer is from %s.", farmLocation))
		}
		if profile.SoilType != "" {
			if profile.SoilPH != nil {
				context.WriteString(fmt.Sprintf(" They have %s soil with pH %.1f.", profile.SoilType, *profile.SoilPH))
			} else {
				context.WriteString(fmt.Sprintf(" They have %s soil.", profile.SoilType))
			}
		}
		if profile.CropsGrown != "" {
			context.WriteString(fmt.Sprintf(" They grow %s.", profile.CropsGrown))
		}
	} else if location != "" {
		context.WriteString(fmt.Sprintf(" The farmer is from %s.", location))
	}

	instructions := `Based on the farmer's query, provide helpful agricultural advice.
If they ask about crops, suggest suitable options for their conditions.
If they ask about pests or diseases, provide identification tips and organic/chemical treatment options.
If they ask about irrigation, provide a schedule based on crop and season.
Structure your response clearly with headings and bullet points when appropriate.
Make your response informative but concise and easy to understand.
If they ask for videos, mention that you can suggest YouTube videos for them to watch.`

	return fmt.Sprintf("%s\n\n%s\n\nFarmer's query: %s", context.String(), instructions, message)
}

// titleFromMessage truncates the first user message into a chat title.
func titleFromMessage(content string) string {
	runes := []rune(content)
	if len(runes) <= chatTitleLimit {
		return content
	}
	return string(runes[:chatTitleLimit]) + "..."
}
