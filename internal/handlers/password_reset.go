package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/farmwise/internal/models"
	"github.com/example/farmwise/internal/services"
	"github.com/example/farmwise/internal/utils"
)

// PasswordResetHandler manages forgot-password endpoints.
type PasswordResetHandler struct {
	db     *gorm.DB
	mail   MailDispatcher
	verify *services.VerificationService
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, mail MailDispatcher, verify *services.VerificationService) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, mail: mail, verify: verify}
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a reset token and emails a reset link. A fresh token
// is issued on every request even when unused ones exist. The differing
// response for unknown emails reveals account existence; kept as-is pending a
// product decision.
func (h *PasswordResetHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "email not found")
		}
		return err
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate reset token")
	}

	if err := h.db.Create(&models.PasswordReset{Email: req.Email, Token: token}).Error; err != nil {
		return err
	}

	if err := h.mail.SendPasswordResetEmail(c.Context(), req.Email, token); err != nil {
		log.Printf("[Auth] password reset email for %s failed: %v", req.Email, err)
		return fiber.NewError(fiber.StatusBadGateway, "failed to send reset email, please try again")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password reset instructions sent to your email",
	})
}

// ValidateResetToken reports whether a reset token is still usable, without
// consuming it.
func (h *PasswordResetHandler) ValidateResetToken(c *fiber.Ctx) error {
	token := c.Params("token")

	email, err := h.verify.VerifyResetToken(token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrResetTokenNotFound), errors.Is(err, services.ErrResetTokenExpired):
			return fiber.NewError(fiber.StatusBadRequest, "invalid or expired reset link")
		default:
			return err
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"email":   email,
	})
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ResetPassword sets a new password for the account the token was issued to.
// The token is validated first and consumed only after the password update
// commits, so a failed update never burns the token.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	token := c.Params("token")

	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "password is required")
	}

	if req.Password != req.ConfirmPassword {
		return fiber.NewError(fiber.StatusBadRequest, "passwords do not match")
	}

	email, err := h.verify.VerifyResetToken(token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrResetTokenNotFound), errors.Is(err, services.ErrResetTokenExpired):
			return fiber.NewError(fiber.StatusBadRequest, "invalid or expired reset link")
		default:
			return err
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	if err := h.db.Model(&models.User{}).
		Where("email = ?", email).
		Update("password_hash", hash).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update password")
	}

	if err := h.verify.ConsumeResetToken(token); err != nil {
		log.Printf("[Auth] failed to consume reset token for %s: %v", email, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "password reset successful, please login with your new password",
		"redirect": "/login",
	})
}
