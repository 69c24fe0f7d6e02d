package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Weather is the current conditions at a resolved location.
type Weather struct {
	Temperature float64 `json:"temperature"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	WindSpeed   float64 `json:"wind_speed"`
	Icon        string  `json:"icon"`
	Location    string  `json:"location"`
}

// WeatherService fetches current conditions from weatherapi.com.
type WeatherService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewWeatherService constructs a WeatherService.
func NewWeatherService(apiKey string) *WeatherService {
	return &WeatherService{
		apiKey:     apiKey,
		baseURL:    "http://api.weatherapi.com/v1/current.json",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type weatherAPIResponse struct {
	Location struct {
		Name   string `json:"name"`
		Region string `json:"region"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		Humidity  int     `json:"humidity"`
		WindKph   float64 `json:"wind_kph"`
		Condition struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
	} `json:"current"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Current returns the weather at a free-text location.
func (s *WeatherService) Current(ctx context.Context, location string) (*Weather, error) {
	params := url.Values{}
	params.Set("key", s.apiKey)
	params.Set("q", location)
	params.Set("aqi", "no")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather request build: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	var data weatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("weather response decode: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if data.Error != nil {
			return nil, fmt.Errorf("weather api error: %s", data.Error.Message)
		}
		return nil, fmt.Errorf("weather api returned status %d", resp.StatusCode)
	}

	return &Weather{
		Temperature: data.Current.TempC,
		Humidity:    data.Current.Humidity,
		Description: data.Current.Condition.Text,
		WindSpeed:   data.Current.WindKph,
		Icon:        data.Current.Condition.Icon,
		Location:    fmt.Sprintf("%s, %s", data.Location.Name, data.Location.Region),
	}, nil
}
