package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/example/farmwise/internal/models"
)

// OTPValidity is how long a verification OTP stays usable after issuance.
const OTPValidity = 10 * time.Minute

// ResetTokenValidity is how long a password-reset token stays usable.
const ResetTokenValidity = time.Hour

var (
	// ErrOTPNotFound means no unverified OTP exists for the email.
	ErrOTPNotFound = errors.New("no pending verification code")
	// ErrOTPExpired means the most recent OTP is past its validity window.
	ErrOTPExpired = errors.New("verification code expired")
	// ErrOTPMismatch means the submitted code does not match the issued one.
	ErrOTPMismatch = errors.New("invalid verification code")

	// ErrResetTokenNotFound means the token is unknown or already used.
	ErrResetTokenNotFound = errors.New("invalid reset token")
	// ErrResetTokenExpired means the token is past its validity window.
	ErrResetTokenExpired = errors.New("reset token expired")
)

// VerificationService implements OTP and reset-token consumption semantics
// over the credential store.
type VerificationService struct {
	db *gorm.DB
}

// NewVerificationService constructs a VerificationService.
func NewVerificationService(db *gorm.DB) *VerificationService {
	return &VerificationService{db: db}
}

// VerifyOTP checks the submitted code against the most recently issued
// unverified OTP for the email and, on a match, marks that row verified.
// A matched row can never be matched again; rows superseded by a reissue
// stay in place but are no longer selectable.
func (s *VerificationService) VerifyOTP(email, submitted string) error {
	var verification models.EmailVerification
	err := s.db.Where("email = ? AND verified = ?", email, false).
		Order("created_at DESC, id DESC").
		First(&verification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOTPNotFound
		}
		return err
	}

	if time.Since(verification.CreatedAt) > OTPValidity {
		// Expired rows are left unconsumed.
		return ErrOTPExpired
	}

	if verification.OTP != submitted {
		return ErrOTPMismatch
	}

	verification.Verified = true
	return s.db.Save(&verification).Error
}

// VerifyResetToken returns the email a valid unused reset token was issued
// for. It never marks the token used; consumption is a separate step taken
// only after the password change itself has committed.
func (s *VerificationService) VerifyResetToken(token string) (string, error) {
	var reset models.PasswordReset
	err := s.db.Where("token = ? AND used = ?", token, false).
		First(&reset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrResetTokenNotFound
		}
		return "", err
	}

	if time.Since(reset.CreatedAt) > ResetTokenValidity {
		return "", ErrResetTokenExpired
	}

	return reset.Email, nil
}

// ConsumeResetToken permanently marks an unused reset token as used.
func (s *VerificationService) ConsumeResetToken(token string) error {
	result := s.db.Model(&models.PasswordReset{}).
		Where("token = ? AND used = ?", token, false).
		Update("used", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrResetTokenNotFound
	}
	return nil
}
