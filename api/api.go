// Package api is the HTTP client for the local event-agent backend:
// audio-file transcription and event search.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "http://127.0.0.1:8000"

// Event is a single search result, passed through verbatim from the
// backend and never mutated.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Price       string `json:"price"`
	Category    string `json:"category,omitempty"`
}

// Preferences mirrors the backend's user-preferences object.
type Preferences struct {
	HomeCity          string `json:"home_city"`
	Country           string `json:"country,omitempty"`
	RadiusMiles       int    `json:"radius_miles"`
	MaxTransitMinutes int    `json:"max_transit_minutes"`
	TimeWindowDays    int    `json:"time_window_days"`
}

// DefaultPreferences fills the search radius and time window the backend
// expects when the user has only provided a city.
func DefaultPreferences(city, country string) Preferences {
	return Preferences{
		HomeCity:          city,
		Country:           country,
		RadiusMiles:       5,
		MaxTransitMinutes: 30,
		TimeWindowDays:    7,
	}
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        4,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type transcribeRequest struct {
	FilePath string `json:"file_path"`
}

type transcribeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Transcribe posts the recording's file path to /transcribe-file and
// returns the raw transcription text. Whitespace-only text is returned
// as-is; the caller decides whether that counts as speech.
func (c *Client) Transcribe(ctx context.Context, filePath string) (string, error) {
	body, status, err := c.postJSON(ctx, "/transcribe-file", transcribeRequest{FilePath: filePath})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	if status != http.StatusOK {
		var tr transcribeResponse
		if json.Unmarshal(body, &tr) == nil && tr.Error != "" {
			return "", fmt.Errorf("transcription failed: %s", tr.Error)
		}
		return "", fmt.Errorf("transcription failed: server returned %d", status)
	}
	var tr transcribeResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("transcription response parse: %w", err)
	}
	return tr.Text, nil
}

type searchRequest struct {
	Query       string      `json:"query"`
	Preferences Preferences `json:"preferences"`
}

type searchResponse struct {
	Success bool    `json:"success"`
	Events  []Event `json:"events"`
	Message string  `json:"message"`
}

// Search posts the transcript and preferences to /search. An empty event
// list with a 2xx status is not an error; it comes back as a nil slice.
func (c *Client) Search(ctx context.Context, query string, prefs Preferences) ([]Event, error) {
	body, status, err := c.postJSON(ctx, "/search", searchRequest{Query: query, Preferences: prefs})
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search failed: server returned %d", status)
	}
	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("search response parse: %w", err)
	}
	if len(sr.Events) == 0 {
		return nil, nil
	}
	return sr.Events, nil
}

// BaseURL reports the resolved backend address, for display.
func (c *Client) BaseURL() string { return c.baseURL }

// Ping checks that the backend is accepting connections. Any HTTP
// response counts as reachable; only transport errors are reported.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
