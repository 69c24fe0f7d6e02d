package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/farmwise/internal/middleware"
	"github.com/example/farmwise/internal/models"
)

// ProfileHandler manages account and farm profile endpoints.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the authenticated user's account and farm data. A user
// registered before their profile row committed simply has empty farm data.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	var profile models.Profile
	if err := h.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// No profile data yet.
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":                 user.ID,
			"username":           user.Username,
			"email":              user.Email,
			"preferred_language": user.PreferredLanguage,
			"location":           user.Location,
			"is_email_verified":  user.IsEmailVerified,
			"created_at":         user.CreatedAt,
			"profile": fiber.Map{
				"soil_type":     profile.SoilType,
				"soil_ph":       profile.SoilPH,
				"farm_size":     profile.FarmSize,
				"farm_location": profile.FarmLocation,
				"crops_grown":   profile.CropsGrown,
			},
		},
	})
}

type updateProfileRequest struct {
	Username          string   `json:"username"`
	Location          string   `json:"location"`
	PreferredLanguage string   `json:"preferred_language"`
	SoilType          string   `json:"soil_type"`
	SoilPH            *float64 `json:"soil_ph"`
	FarmSize          *float64 `json:"farm_size"`
	FarmLocation      string   `json:"farm_location"`
	CropsGrown        string   `json:"crops_grown"`
}

// UpdateProfile updates account fields and farm data. The profile row is
// created on first update if registration never managed to.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	userUpdates := map[string]interface{}{}
	if req.Username != "" {
		userUpdates["username"] = req.Username
	}
	if req.Location != "" {
		userUpdates["location"] = req.Location
	}
	if req.PreferredLanguage != "" {
		userUpdates["preferred_language"] = req.PreferredLanguage
	}
	if len(userUpdates) > 0 {
		userUpdates["updated_at"] = time.Now()
		if err := h.db.Model(&models.User{}).Where("id = ?", userID).Updates(userUpdates).Error; err != nil {
			return err
		}
	}

	var profile models.Profile
	err := h.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.Profile{UserID: userID}
	} else if err != nil {
		return err
	}

	if req.SoilType != "" {
		profile.SoilType = req.SoilType
	}
	if req.SoilPH != nil {
		profile.SoilPH = req.SoilPH
	}
	if req.FarmSize != nil {
		profile.FarmSize = req.FarmSize
	}
	if req.FarmLocation != "" {
		profile.FarmLocation = req.FarmLocation
	}
	if req.CropsGrown != "" {
		profile.CropsGrown = req.CropsGrown
	}

	if err := h.db.Save(&profile).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "profile updated"})
}
