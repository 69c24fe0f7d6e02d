package handlers_test

import (
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/farmwise/internal/services"
)

func TestTranslate_FallsBackToInput(t *testing.T) {
	env := newTestEnv(t)
	env.ai.translateErr = errors.New("backend down")
	user := env.createUser(t, "alice", "alice@x.com", "pw123", true)

	resp, body := env.request(t, http.MethodPost, "/api/translate",
		map[string]interface{}{"text": "hello farmers", "language": "hi"}, env.token(t, user))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "hello farmers", body["translated_text"])
}

func TestTranslate_Success(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@x.com", "pw123", true)

	resp, body := env.request(t, http.MethodPost, "/api/translate",
		map[string]interface{}{"text": "hello farmers", "language": "hi"}, env.token(t, user))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "[hi] hello farmers", body["translated_text"])
}

func TestSearchVideos_EmptyListOnFailure(t *testing.T) {
	env := newTestEnv(t)
	env.videos.err = errors.New("quota exceeded")
	user := env.createUser(t, "alice", "alice@x.com", "pw123", true)

	resp, body := env.request(t, http.MethodPost, "/api/videos/search",
		map[string]interface{}{"query": "drip irrigation"}, env.token(t, user))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, body["videos"])
}

func TestSearchVideos_Success(t *testing.T) {
	env := newTestEnv(t)
	env.videos.videos = []services.Video{
		{ID: "abc123", Title: "Drip irrigation basics", URL: "https://www.youtube.com/watch?v=abc123"},
	}
	user := env.createUser(t, "alice", "alice@x.com", "pw123", true)

	resp, body := env.request(t, http.MethodPost, "/api/videos/search",
		map[string]interface{}{"query": "drip irrigation"}, env.token(t, user))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	videos := body["videos"].([]interface{})
	require.Len(t, videos, 1)
	require.Equal(t, "abc123", videos[0].(map[string]interface{})["id"])
}

func TestCropRecommendations_FallbackOnFailure(t *testing.T) {
	env := newTestEnv(t)
	env.ai.completeErr = errors.New("quota exceeded")
	user := env.createUser(t, "alice", "alice@x.com", "pw123", true)

	resp, body := env.request(t, http.MethodPost, "/api/crops/recommendations",
		map[string]interface{}{"soil_type": "loamy", "soil_ph": 6.5, "location": "Pune"}, env.token(t, user))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t,
		"I'm sorry, I couldn't generate crop recommendations at this time. Please try again later.",
		body["recommendations"])
}

func TestCropRecommendations_Success(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@x.com", "pw123", true)

	resp, body := env.request(t, http.MethodPost, "/api/crops/recommendations",
		map[string]interface{}{"soil_type": "loamy", "soil_ph": 6.5, "location": "Pune"}, env.token(t, user))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Grow rice and wheat.", body["recommendations"])
}

func TestWeather_NullOnFailure(t *testing.T) {
	env := newTestEnv(t)
	env.weather.err = errors.New("api key invalid")
	user := env.createUser(t, "alice", "alice@x.com", "pw123", true)

	resp, body := env.request(t, http.MethodGet, "/api/weather?location=Pune", nil, env.token(t, user))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Nil(t, body["weather"])
}

func TestWeather_Success(t *testing.T) {
	env := newTestEnv(t)
	env.weather.weather = &services.Weather{Temperature: 31.5, Humidity: 60, Description: "Sunny", Location: "Pune, Maharashtra"}
	user := env.createUser(t, "alice", "alice@x.com", "pw123", true)

	resp, body := env.request(t, http.MethodGet, "/api/weather?location=Pune", nil, env.token(t, user))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	weather := body["weather"].(map[string]interface{})
	require.Equal(t, "Sunny", weather["description"])
}

func TestTextToSpeech_EmptyAudioOnFailure(t *testing.T) {
	env := newTestEnv(t)
	env.speech.synthErr = errors.New("tts unreachable")
	user := env.createUser(t, "alice", "alice@x.com", "pw123", true)

	resp, body := env.request(t, http.MethodPost, "/api/speech/synthesize",
		map[string]interface{}{"text": "hello", "language": "hi"}, env.token(t, user))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "", body["audio_data"])
}

func TestTextToSpeech_ReturnsBase64Audio(t *testing.T) {
	env := newTestEnv(t)
	env.speech.audio = []byte{0x49, 0x44, 0x33}
	user := env.createUser(t, "alice", "alice@x.com", "pw123", true)

	resp, body := env.request(t, http.MethodPost, "/api/speech/synthesize",
		map[string]interface{}{"text": "hello", "language": "hi"}, env.token(t, user))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x49, 0x44, 0x33}), body["audio_data"])
}

func TestSpeechToText_EmptyOnFailure(t *testing.T) {
	env := newTestEnv(t)
	env.speech.recErr = errors.New("no transcription result")
	user := env.createUser(t, "alice", "alice@x.com", "pw123", true)

	audio := base64.StdEncoding.EncodeToString([]byte("not really audio"))
	resp, body := env.request(t, http.MethodPost, "/api/speech/recognize",
		map[string]interface{}{"audio_data": audio, "language": "en"}, env.token(t, user))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "", body["text"])
}

func TestSpeechToText_Success(t *testing.T) {
	env := newTestEnv(t)
	env.speech.text = "how do I grow rice"
	user := env.createUser(t, "alice", "alice@x.com", "pw123", true)

	audio := base64.StdEncoding.EncodeToString([]byte("pcm bytes"))
	resp, body := env.request(t, http.MethodPost, "/api/speech/recognize",
		map[string]interface{}{"audio_data": audio, "language": "en"}, env.token(t, user))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "how do I grow rice", body["text"])
}

func TestListLanguages_SeededReferenceData(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, http.MethodGet, "/api/languages", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	languages := body["data"].([]interface{})
	require.Len(t, languages, 10)

	first := languages[0].(map[string]interface{})
	require.Equal(t, "bn", first["code"])
}
