package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/farmwise/internal/config"
	"github.com/example/farmwise/internal/handlers"
	"github.com/example/farmwise/internal/middleware"
	"github.com/example/farmwise/internal/services"
)

// Deps carries the external collaborators handlers are wired with.
type Deps struct {
	Mail    handlers.MailDispatcher
	AI      handlers.Assistant
	Crops   handlers.CropAdvisor
	Videos  handlers.VideoSearcher
	Weather handlers.WeatherProvider
	Speech  handlers.SpeechConverter
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, deps Deps) {
	verify := services.NewVerificationService(db)

	authHandler := handlers.NewAuthHandler(db, cfg, deps.Mail, verify)
	resetHandler := handlers.NewPasswordResetHandler(db, deps.Mail, verify)
	chatHandler := handlers.NewChatHandler(db, deps.AI)
	profileHandler := handlers.NewProfileHandler(db)
	assistHandler := handlers.NewAssistHandler(db, deps.AI, deps.Crops, deps.Videos, deps.Weather, deps.Speech)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/verify-email", authHandler.VerifyEmail)
	auth.Post("/resend-otp", authHandler.ResendOTP)
	auth.Post("/forgot-password", resetHandler.ForgotPassword)
	auth.Get("/reset-password/:token", resetHandler.ValidateResetToken)
	auth.Post("/reset-password/:token", resetHandler.ResetPassword)

	// Static reference data
	api.Get("/languages", assistHandler.ListLanguages)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)

	chats := protected.Group("/chats")
	chats.Post("/", chatHandler.CreateChat)
	chats.Get("/", chatHandler.ListChats)
	chats.Get("/:id", chatHandler.GetChat)
	chats.Put("/:id", chatHandler.RenameChat)
	chats.Delete("/:id", chatHandler.DeleteChat)
	chats.Post("/:id/messages", chatHandler.SendMessage)

	protected.Post("/crops/recommendations", assistHandler.CropRecommendations)
	protected.Post("/videos/search", assistHandler.SearchVideos)
	protected.Post("/translate", assistHandler.Translate)
	protected.Post("/speech/synthesize", assistHandler.TextToSpeech)
	protected.Post("/speech/recognize", assistHandler.SpeechToText)
	protected.Get("/weather", assistHandler.Weather)
}
