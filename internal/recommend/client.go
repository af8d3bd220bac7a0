// Package recommend calls an OpenAI-compatible chat completions API to
// produce personalized dining suggestions for a customer.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrNoAPIKey = errors.New("recommendation API key not configured")

const systemPrompt = `You are the dining concierge for a coastal resort restaurant.
Given a guest's stay dates, dining preferences and profile, suggest dishes,
drinks and desserts from a coastal menu. Answer in exactly three sections,
each a short newline-separated list:

Dishes:
...

Drinks:
...

Desserts:
...`

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

func NewClient(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Request is what we know about the guest when asking for suggestions.
type Request struct {
	ReservationDates string
	Preferences      string
	Profile          string
}

// Suggestions is the parsed model answer.
type Suggestions struct {
	Dishes   string `json:"dishes"`
	Drinks   string `json:"drinks"`
	Desserts string `json:"desserts"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Suggest asks the model for dish, drink and dessert ideas.
func (c *Client) Suggest(ctx context.Context, req Request) (Suggestions, error) {
	if c.apiKey == "" {
		return Suggestions{}, ErrNoAPIKey
	}

	prompt := fmt.Sprintf("Reservation dates: %s\nDining preferences: %s\nGuest profile: %s",
		req.ReservationDates, req.Preferences, req.Profile)

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return Suggestions{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Suggestions{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Suggestions{}, fmt.Errorf("calling completions API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Suggestions{}, fmt.Errorf("reading response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Suggestions{}, fmt.Errorf("decoding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return Suggestions{}, fmt.Errorf("completions API: %s", parsed.Error.Message)
		}
		return Suggestions{}, fmt.Errorf("completions API: status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return Suggestions{}, errors.New("completions API returned no choices")
	}

	return parseSuggestions(parsed.Choices[0].Message.Content), nil
}

// parseSuggestions splits the model answer into its three sections.
// Text before the first header or under an unknown header is ignored.
func parseSuggestions(content string) Suggestions {
	var s Suggestions
	var current *string

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch strings.ToLower(strings.TrimSuffix(trimmed, ":")) {
		case "dishes":
			current = &s.Dishes
			continue
		case "drinks":
			current = &s.Drinks
			continue
		case "desserts":
			current = &s.Desserts
			continue
		}
		if current == nil || trimmed == "" {
			continue
		}
		if *current != "" {
			*current += "\n"
		}
		*current += trimmed
	}
	return s
}
