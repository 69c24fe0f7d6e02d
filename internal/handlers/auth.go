package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/farmwise/internal/config"
	"github.com/example/farmwise/internal/models"
	"github.com/example/farmwise/internal/services"
	"github.com/example/farmwise/internal/utils"
)

// MailDispatcher is the slice of the mail service auth flows depend on.
type MailDispatcher interface {
	SendVerificationEmail(ctx context.Context, email, otp string) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}

// AuthHandler bundles dependencies for registration and login endpoints.
type AuthHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	mail   MailDispatcher
	verify *services.VerificationService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, mail MailDispatcher, verify *services.VerificationService) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, mail: mail, verify: verify}
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Location        string `json:"location"`
	Language        string `json:"language"`
}

// Register creates a new unverified account. The verification email is sent
// before anything is persisted so a failed delivery never leaves a
// partially-registered account behind. User and EmailVerification are
// committed atomically; the Profile row is a separate follow-up commit and a
// crash between the two leaves a user without a profile, which readers
// tolerate.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	if req.Password != req.ConfirmPassword {
		return fiber.NewError(fiber.StatusBadRequest, "passwords do not match")
	}

	var existing models.User
	if err := h.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate verification code")
	}

	if err := h.mail.SendVerificationEmail(c.Context(), req.Email, otp); err != nil {
		log.Printf("[Auth] verification email for %s failed: %v", req.Email, err)
		return fiber.NewError(fiber.StatusBadGateway, "failed to send verification email, please try again")
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	language := req.Language
	if language == "" {
		language = models.DefaultLanguage
	}

	user := models.User{
		Username:          req.Username,
		Email:             req.Email,
		PasswordHash:      passwordHash,
		PreferredLanguage: language,
		Location:          req.Location,
		IsEmailVerified:   false,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.EmailVerification{Email: req.Email, OTP: otp}).Error
	})
	if err != nil {
		// The email has already gone out; the recipient may hold a code
		// for an account that was never created.
		log.Printf("[Auth] registration commit for %s failed: %v", req.Email, err)
		return fiber.NewError(fiber.StatusInternalServerError, "registration failed, please try again")
	}

	if err := h.db.Create(&models.Profile{UserID: user.ID}).Error; err != nil {
		// Independently committed step; readers treat a missing profile
		// as "no profile data yet".
		log.Printf("[Auth] profile creation for %s failed: %v", req.Email, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "registration successful, please check your email for the verification code",
		"redirect": "/verify-email",
		"email":    req.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an existing user and issues a session token. Accounts
// that have not verified their email are redirected back to verification.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
	}

	if !user.IsEmailVerified {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success":  false,
			"message":  "please verify your email before logging in",
			"redirect": "/verify-email",
			"email":    user.Email,
		})
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":                 user.ID,
			"username":           user.Username,
			"email":              user.Email,
			"preferred_language": user.PreferredLanguage,
			"location":           user.Location,
		},
		"token": token,
	})
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyEmail validates the submitted OTP and marks the account verified.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req verifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" || req.OTP == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and otp are required")
	}

	if err := h.verify.VerifyOTP(req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, services.ErrOTPNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrOTPExpired), errors.Is(err, services.ErrOTPMismatch):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		default:
			return err
		}
	}

	if err := h.db.Model(&models.User{}).Where("email = ?", req.Email).
		Update("is_email_verified", true).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "email verified successfully, please login",
		"redirect": "/login",
	})
}

type resendOTPRequest struct {
	Email string `json:"email"`
}

// ResendOTP issues a fresh verification code. Prior unverified rows are left
// in place; only the newest is consulted at verification time, so they become
// unusable by supersession rather than deletion.
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req resendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "email not found")
		}
		return err
	}

	if user.IsEmailVerified {
		return fiber.NewError(fiber.StatusBadRequest, "email already verified")
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate verification code")
	}

	if err := h.db.Create(&models.EmailVerification{Email: req.Email, OTP: otp}).Error; err != nil {
		return err
	}

	if err := h.mail.SendVerificationEmail(c.Context(), req.Email, otp); err != nil {
		log.Printf("[Auth] resend verification email for %s failed: %v", req.Email, err)
		return fiber.NewError(fiber.StatusBadGateway, "failed to send verification email, please try again")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "new verification code sent, please check your email",
	})
}
