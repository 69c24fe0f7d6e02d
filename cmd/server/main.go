package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/farmwise/internal/config"
	"github.com/example/farmwise/internal/database"
	"github.com/example/farmwise/internal/routes"
	"github.com/example/farmwise/internal/services"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	gemini, err := services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("gemini service init failed: %v", err)
	}

	deps := routes.Deps{
		Mail:    services.NewMailService(cfg.ResendAPIKey, cfg.MailFrom, cfg.BaseURL),
		AI:      gemini,
		Crops:   gemini,
		Videos:  services.NewYouTubeService(cfg.YouTubeAPIKey),
		Weather: services.NewWeatherService(cfg.WeatherAPIKey),
		Speech:  services.NewSpeechService(cfg.SpeechAPIKey),
	}

	app := fiber.New(fiber.Config{
		AppName: "FarmWise Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg, deps)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
