package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/farmwise/internal/models"
	"github.com/example/farmwise/internal/utils"
)

func TestForgotPassword_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodPost, "/api/auth/forgot-password",
		map[string]interface{}{"email": "nobody@x.com"}, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Zero(t, env.count(t, &models.PasswordReset{}))
}

func TestForgotPassword_IssuesToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@x.com", "pw123", true)

	resp, _ := env.request(t, http.MethodPost, "/api/auth/forgot-password",
		map[string]interface{}{"email": "alice@x.com"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reset models.PasswordReset
	require.NoError(t, env.db.Where("email = ?", "alice@x.com").First(&reset).Error)
	require.Len(t, reset.Token, 32)
	require.False(t, reset.Used)

	require.Len(t, env.mail.resets, 1)
	require.Equal(t, reset.Token, env.mail.resets[0].Payload)
}

func TestForgotPassword_AlwaysIssuesFreshToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@x.com", "pw123", true)

	env.request(t, http.MethodPost, "/api/auth/forgot-password",
		map[string]interface{}{"email": "alice@x.com"}, "")
	env.request(t, http.MethodPost, "/api/auth/forgot-password",
		map[string]interface{}{"email": "alice@x.com"}, "")

	require.EqualValues(t, 2, env.count(t, &models.PasswordReset{}))
}

func TestForgotPassword_DeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@x.com", "pw123", true)
	env.mail.resetErr = errors.New("email delivery failed (unknown): boom")

	resp, _ := env.request(t, http.MethodPost, "/api/auth/forgot-password",
		map[string]interface{}{"email": "alice@x.com"}, "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestValidateResetToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@x.com", "pw123", true)
	require.NoError(t, env.db.Create(&models.PasswordReset{Email: "alice@x.com", Token: "tok-valid"}).Error)

	resp, body := env.request(t, http.MethodGet, "/api/auth/reset-password/tok-valid", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "alice@x.com", body["email"])

	// Validation is read-only.
	var reset models.PasswordReset
	require.NoError(t, env.db.Where("token = ?", "tok-valid").First(&reset).Error)
	require.False(t, reset.Used)

	resp, _ = env.request(t, http.MethodGet, "/api/auth/reset-password/tok-missing", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResetPassword_MismatchLeavesTokenUnused(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@x.com", "pw123", true)
	require.NoError(t, env.db.Create(&models.PasswordReset{Email: "alice@x.com", Token: "tok-1"}).Error)

	resp, _ := env.request(t, http.MethodPost, "/api/auth/reset-password/tok-1",
		map[string]interface{}{"password": "newpw", "confirm_password": "other"}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var reset models.PasswordReset
	require.NoError(t, env.db.Where("token = ?", "tok-1").First(&reset).Error)
	require.False(t, reset.Used)
}

func TestResetPassword_SuccessConsumesToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@x.com", "pw123", true)
	require.NoError(t, env.db.Create(&models.PasswordReset{Email: "alice@x.com", Token: "tok-1"}).Error)

	resp, _ := env.request(t, http.MethodPost, "/api/auth/reset-password/tok-1",
		map[string]interface{}{"password": "newpw456", "confirm_password": "newpw456"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "alice@x.com").First(&user).Error)
	require.True(t, utils.CheckPassword(user.PasswordHash, "newpw456"))
	require.False(t, utils.CheckPassword(user.PasswordHash, "pw123"))

	// Consumption happens only after the password update committed, and
	// the token cannot be replayed.
	var reset models.PasswordReset
	require.NoError(t, env.db.Where("token = ?", "tok-1").First(&reset).Error)
	require.True(t, reset.Used)

	resp, _ = env.request(t, http.MethodPost, "/api/auth/reset-password/tok-1",
		map[string]interface{}{"password": "again789", "confirm_password": "again789"}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.True(t, utils.CheckPassword(user.PasswordHash, "newpw456"))
}
