package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ttsLanguages maps UI language codes to codes accepted by the speech
// synthesis endpoint.
var ttsLanguages = map[string]string{
	"en": "en",
	"hi": "hi",
	"ta": "ta",
	"te": "te",
	"ml": "ml",
	"kn": "kn",
	"bn": "bn",
	"gu": "gu",
	"mr": "mr",
	"pa": "pa",
}

// recognitionLanguages maps UI language codes to BCP-47 locales used by the
// speech recognition endpoint.
var recognitionLanguages = map[string]string{
	"en": "en-US",
	"hi": "hi-IN",
	"ta": "ta-IN",
	"te": "te-IN",
	"ml": "ml-IN",
	"kn": "kn-IN",
	"bn": "bn-IN",
	"gu": "gu-IN",
	"mr": "mr-IN",
	"pa": "pa-IN",
}

// SpeechService converts between text and audio using Google's public speech
// endpoints.
type SpeechService struct {
	apiKey       string
	ttsURL       string
	recognizeURL string
	httpClient   *http.Client
}

// NewSpeechService constructs a SpeechService. The API key is used by speech
// recognition only; synthesis uses the unauthenticated endpoint.
func NewSpeechService(apiKey string) *SpeechService {
	return &SpeechService{
		apiKey:       apiKey,
		ttsURL:       "https://translate.google.com/translate_tts",
		recognizeURL: "https://www.google.com/speech-api/v2/recognize",
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Synthesize renders text as MP3 audio in the given language.
func (s *SpeechService) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	lang, ok := ttsLanguages[language]
	if !ok {
		lang = "en"
	}

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", lang)
	params.Set("client", "tw-ob")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ttsURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("tts request build: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts response read: %w", err)
	}

	return audio, nil
}

type recognizeResponse struct {
	Result []struct {
		Alternative []struct {
			Transcript string `json:"transcript"`
		} `json:"alternative"`
	} `json:"result"`
}

// Recognize transcribes audio in the given language. The endpoint streams
// one JSON object per line; the first non-empty result wins.
func (s *SpeechService) Recognize(ctx context.Context, audio []byte, language string) (string, error) {
	locale, ok := recognitionLanguages[language]
	if !ok {
		locale = "en-US"
	}

	params := url.Values{}
	params.Set("output", "json")
	params.Set("lang", locale)
	params.Set("key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.recognizeURL+"?"+params.Encode(), bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("recognize request build: %w", err)
	}
	req.Header.Set("Content-Type", "audio/l16; rate=16000")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("recognize request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("recognize returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("recognize response read: %w", err)
	}

	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var parsed recognizeResponse
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			continue
		}
		for _, result := range parsed.Result {
			if len(result.Alternative) > 0 && result.Alternative[0].Transcript != "" {
				return result.Alternative[0].Transcript, nil
			}
		}
	}

	return "", fmt.Errorf("no transcription result")
}
