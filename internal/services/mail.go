package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// DeliveryCategory classifies why a transactional email could not be sent.
type DeliveryCategory string

const (
	// DeliveryAuthFailure means the mail transport rejected our credentials.
	DeliveryAuthFailure DeliveryCategory = "auth"
	// DeliveryTransient covers rate limits, timeouts and upstream 5xx.
	DeliveryTransient DeliveryCategory = "transient"
	// DeliveryUnknown is everything else.
	DeliveryUnknown DeliveryCategory = "unknown"
)

// DeliveryError is surfaced after the retry budget is exhausted. It carries
// the category of the last attempt's failure.
type DeliveryError struct {
	Category DeliveryCategory
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("email delivery failed (%s): %v", e.Category, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

const (
	verificationMaxAttempts = 3
	verificationRetryDelay  = 5 * time.Second
)

// mailSender is the slice of the Resend client the dispatcher needs.
type mailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// MailService sends transactional email through Resend.
type MailService struct {
	sender     mailSender
	from       string
	baseURL    string
	retryDelay time.Duration
}

// NewMailService constructs a MailService.
func NewMailService(apiKey, from, baseURL string) *MailService {
	client := resend.NewClient(apiKey)
	return &MailService{
		sender:     client.Emails,
		from:       from,
		baseURL:    strings.TrimRight(baseURL, "/"),
		retryDelay: verificationRetryDelay,
	}
}

// SendVerificationEmail delivers the registration OTP, retrying up to three
// times with a fixed delay between attempts. Authentication, transient and
// unclassified failures are all retried identically; after the final attempt
// the last failure is surfaced as a DeliveryError.
func (s *MailService) SendVerificationEmail(ctx context.Context, email, otp string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email},
		Subject: "Verify Your Email - FarmWise",
		Html:    verificationHTML(otp),
		Text:    verificationText(otp),
		Headers: deliverabilityHeaders(s.from),
	}

	var lastErr error
	for attempt := 1; attempt <= verificationMaxAttempts; attempt++ {
		log.Printf("[Mail] sending verification email to %s (attempt %d/%d)", email, attempt, verificationMaxAttempts)

		_, err := s.sender.SendWithContext(ctx, params)
		if err == nil {
			log.Printf("[Mail] verification email sent to %s", email)
			return nil
		}

		lastErr = err
		log.Printf("[Mail] verification email to %s failed (%s): %v", email, classifyDeliveryError(err), err)

		if attempt < verificationMaxAttempts {
			time.Sleep(s.retryDelay)
		}
	}

	return &DeliveryError{Category: classifyDeliveryError(lastErr), Err: lastErr}
}

// SendPasswordResetEmail delivers the reset link. Unlike verification email
// it performs exactly one attempt; the asymmetry is intentional and must not
// be unified without an explicit decision.
func (s *MailService) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password/%s", s.baseURL, token)

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email},
		Subject: "Reset Your Password - FarmWise",
		Html:    passwordResetHTML(resetURL),
		Text:    passwordResetText(resetURL),
		Headers: deliverabilityHeaders(s.from),
	}

	if _, err := s.sender.SendWithContext(ctx, params); err != nil {
		log.Printf("[Mail] password reset email to %s failed (%s): %v", email, classifyDeliveryError(err), err)
		return &DeliveryError{Category: classifyDeliveryError(err), Err: err}
	}

	log.Printf("[Mail] password reset email sent to %s", email)
	return nil
}

func deliverabilityHeaders(from string) map[string]string {
	return map[string]string{
		"List-Unsubscribe":         fmt.Sprintf("<mailto:%s>", from),
		"Precedence":               "bulk",
		"X-Auto-Response-Suppress": "OOF, AutoReply",
	}
}

func classifyDeliveryError(err error) DeliveryCategory {
	if err == nil {
		return DeliveryUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return DeliveryTransient
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401"), strings.Contains(msg, "403"),
		strings.Contains(msg, "unauthorized"), strings.Contains(msg, "api key"):
		return DeliveryAuthFailure
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "500"), strings.Contains(msg, "502"),
		strings.Contains(msg, "503"), strings.Contains(msg, "timeout"):
		return DeliveryTransient
	default:
		return DeliveryUnknown
	}
}

func verificationHTML(otp string) string {
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:480px;margin:0 auto">
  <h2 style="color:#2e7d32">FarmWise</h2>
  <p>Your verification code is:</p>
  <p style="font-size:28px;letter-spacing:6px;font-weight:bold">%s</p>
  <p>This code will expire in 10 minutes.</p>
  <p style="color:#777">If you didn't request this code, please ignore this email.</p>
</div>`, otp)
}

func verificationText(otp string) string {
	return fmt.Sprintf(`Your FarmWise verification code is: %s

This code will expire in 10 minutes.

If you didn't request this code, please ignore this email.
`, otp)
}

func passwordResetHTML(resetURL string) string {
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:480px;margin:0 auto">
  <h2 style="color:#2e7d32">FarmWise</h2>
  <p>To reset your password, click the link below:</p>
  <p><a href="%s">%s</a></p>
  <p>This link will expire in 1 hour.</p>
  <p style="color:#777">If you didn't request this password reset, please ignore this email.</p>
</div>`, resetURL, resetURL)
}

func passwordResetText(resetURL string) string {
	return fmt.Sprintf(`To reset your FarmWise password, open the following link:
%s

This link will expire in 1 hour.

If you didn't request this password reset, please ignore this email.
`, resetURL)
}
