package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Video is one result from a tutorial video search.
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	URL         string `json:"url"`
}

// YouTubeService searches YouTube for farming tutorial videos.
type YouTubeService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewYouTubeService constructs a YouTubeService.
func NewYouTubeService(apiKey string) *YouTubeService {
	return &YouTubeService{
		apiKey:     apiKey,
		baseURL:    "https://www.googleapis.com/youtube/v3/search",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Thumbnails  struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search returns up to maxResults videos matching the query.
func (s *YouTubeService) Search(ctx context.Context, query string, maxResults int) ([]Video, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("key", s.apiKey)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("type", "video")
	params.Set("relevanceLanguage", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("youtube request build: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube returned status %d", resp.StatusCode)
	}

	var results youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("youtube response decode: %w", err)
	}

	videos := make([]Video, 0, len(results.Items))
	for _, item := range results.Items {
		videos = append(videos, Video{
			ID:          item.ID.VideoID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			Thumbnail:   item.Snippet.Thumbnails.Medium.URL,
			URL:         "https://www.youtube.com/watch?v=" + item.ID.VideoID,
		})
	}

	return videos, nil
}
