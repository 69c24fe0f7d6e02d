package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/farmwise/internal/config"
	"github.com/example/farmwise/internal/database"
	"github.com/example/farmwise/internal/models"
	"github.com/example/farmwise/internal/routes"
	"github.com/example/farmwise/internal/services"
	"github.com/example/farmwise/internal/utils"
)

const testJWTSecret = "test-secret"

type sentMail struct {
	Email   string
	Payload string
}

type stubMail struct {
	verifyErr     error
	resetErr      error
	verifications []sentMail
	resets        []sentMail
}

func (m *stubMail) SendVerificationEmail(_ context.Context, email, otp string) error {
	if m.verifyErr != nil {
		return m.verifyErr
	}
	m.verifications = append(m.verifications, sentMail{Email: email, Payload: otp})
	return nil
}

func (m *stubMail) SendPasswordResetEmail(_ context.Context, email, token string) error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resets = append(m.resets, sentMail{Email: email, Payload: token})
	return nil
}

type stubAI struct {
	reply        string
	completeErr  error
	translateErr error
	translations int
}

func (a *stubAI) Complete(_ context.Context, _ string) (string, error) {
	if a.completeErr != nil {
		return "", a.completeErr
	}
	if a.reply == "" {
		return "Here is some farming advice.", nil
	}
	return a.reply, nil
}

func (a *stubAI) Translate(_ context.Context, text, targetCode string) (string, error) {
	if a.translateErr != nil {
		return "", a.translateErr
	}
	a.translations++
	return "[" + targetCode + "] " + text, nil
}

func (a *stubAI) CropRecommendations(_ context.Context, _ string, _ float64, _ string) (string, error) {
	if a.completeErr != nil {
		return "", a.completeErr
	}
	return "Grow rice and wheat.", nil
}

type stubVideos struct {
	videos []services.Video
	err    error
}

func (v *stubVideos) Search(_ context.Context, _ string, _ int) ([]services.Video, error) {
	return v.videos, v.err
}

type stubWeather struct {
	weather *services.Weather
	err     error
}

func (w *stubWeather) Current(_ context.Context, _ string) (*services.Weather, error) {
	return w.weather, w.err
}

type stubSpeech struct {
	audio    []byte
	synthErr error
	text     string
	recErr   error
}

func (s *stubSpeech) Synthesize(_ context.Context, _, _ string) ([]byte, error) {
	return s.audio, s.synthErr
}

func (s *stubSpeech) Recognize(_ context.Context, _ []byte, _ string) (string, error) {
	return s.text, s.recErr
}

type testEnv struct {
	app     *fiber.App
	db      *gorm.DB
	mail    *stubMail
	ai      *stubAI
	videos  *stubVideos
	weather *stubWeather
	speech  *stubSpeech
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	env := &testEnv{
		db:      db,
		mail:    &stubMail{},
		ai:      &stubAI{},
		videos:  &stubVideos{},
		weather: &stubWeather{},
		speech:  &stubSpeech{},
	}

	cfg := &config.Config{
		JWTSecret:    testJWTSecret,
		TokenExpires: time.Hour,
	}

	env.app = fiber.New()
	routes.Register(env.app, db, cfg, routes.Deps{
		Mail:    env.mail,
		AI:      env.ai,
		Crops:   env.ai,
		Videos:  env.videos,
		Weather: env.weather,
		Speech:  env.speech,
	})

	return env
}

func (e *testEnv) createUser(t *testing.T, username, email, password string, verified bool) models.User {
	t.Helper()

	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	user := models.User{
		Username:          username,
		Email:             email,
		PasswordHash:      hash,
		PreferredLanguage: models.DefaultLanguage,
		IsEmailVerified:   verified,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

func (e *testEnv) token(t *testing.T, user models.User) string {
	t.Helper()

	token, err := utils.GenerateToken(testJWTSecret, user.ID, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, token string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	parsed := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		// Error responses from fiber's default handler are plain text.
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}
