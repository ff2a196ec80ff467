// Package ai drafts listing descriptions through an OpenAI-compatible
// chat-completions endpoint. The draft is a suggestion only; nothing is
// persisted until the user submits the listing form themselves.
package ai

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

const defaultTimeout = 30 * time.Second

var (
	ErrNotConfigured    = errors.New("text generation service is not configured")
	ErrGenerationFailed = errors.New("failed to generate description")
)

// Client calls an OpenAI-compatible chat-completions API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient creates a new text-generation client. baseURL is the API root,
// e.g. "https://api.openai.com/v1".
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

// ListingDetails are the structured attributes the prompt is composed from.
type ListingDetails struct {
	Title          string
	PropertyType   string
	Status         string
	Bedrooms       *int
	Bathrooms      *int
	Area           *float64
	Location       string
	Amenities      string
	AdditionalInfo string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateDescription composes the copywriter prompt and returns the
// generated text trimmed of surrounding whitespace.
func (c *Client) GenerateDescription(ctx context.Context, d ListingDetails) (string, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return "", ErrNotConfigured
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a professional real estate copywriter."},
			{Role: "user", Content: buildPrompt(d)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: unexpected status %d", ErrGenerationFailed, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrGenerationFailed
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func buildPrompt(d ListingDetails) string {
	audience := "buyers"
	if d.Status == "rent" {
		audience = "tenants"
	}

	var b strings.Builder
	b.WriteString("You are a professional real estate copywriter specializing in the Solomon Islands market. Write a compelling, engaging property description for a listing in Honiara.\n\n")
	b.WriteString("Property Details:\n")
	fmt.Fprintf(&b, "- Title: %s\n", d.Title)
	fmt.Fprintf(&b, "- Type: %s\n", d.PropertyType)
	fmt.Fprintf(&b, "- Listing Type: For %s\n", d.Status)
	fmt.Fprintf(&b, "- Location: %s, Honiara, Solomon Islands\n", d.Location)
	if d.Bedrooms != nil {
		fmt.Fprintf(&b, "- Bedrooms: %d\n", *d.Bedrooms)
	}
	if d.Bathrooms != nil {
		fmt.Fprintf(&b, "- Bathrooms: %d\n", *d.Bathrooms)
	}
	if d.Area != nil {
		fmt.Fprintf(&b, "- Area: %g sqm\n", *d.Area)
	}
	if d.Amenities != "" {
		fmt.Fprintf(&b, "- Amenities: %s\n", d.Amenities)
	}
	if d.AdditionalInfo != "" {
		fmt.Fprintf(&b, "- Additional Info: %s\n", d.AdditionalInfo)
	}
	b.WriteString("\nWrite a 150-200 word description that:\n")
	b.WriteString("1. Highlights the property's best features\n")
	b.WriteString("2. Mentions the location benefits in Honiara\n")
	fmt.Fprintf(&b, "3. Appeals to potential %s\n", audience)
	b.WriteString("4. Uses professional but warm language\n")
	b.WriteString("5. Includes a call to action\n\n")
	b.WriteString("Return ONLY the description text, no additional formatting or labels.")
	return b.String()
}
