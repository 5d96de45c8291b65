// Package assistant wraps the chat-completion provider behind a small
// interface so the chat pipeline can be tested without the network.
package assistant

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/tripdesk/tripdesk/internal/flightparse"
	"github.com/tripdesk/tripdesk/internal/models"
)

// Completer produces one assistant reply for a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []*models.Message) (string, error)
}

const (
	openAIChatEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultModel       = "gpt-4o-mini"

	// maxHistory caps how much of the conversation is replayed per call.
	maxHistory = 20

	replyCacheTTL = 5 * time.Minute
)

// systemPrompt frames the travel-agent persona and states the flight
// payload contract the extractor relies on. The marker literal must stay in
// sync with flightparse.Marker.
var systemPrompt = "You are a travel planning assistant. Help the user plan trips: " +
	"suggest destinations, itineraries, accommodation and flights, and keep answers " +
	"concise and grounded in the conversation. When you present concrete flight " +
	"options, include the literal marker " + flightparse.Marker + " in your reply, " +
	"followed by a fenced ```json code block containing an object of the form " +
	`{"flights": [{"from": "...", "to": "...", "departure": "ISO-8601", ` +
	`"arrival": "ISO-8601", "airline": "...", "number": "...", ` +
	`"cost": {"amount": 0, "currency": "USD"}}]}. ` +
	"Do not mention the marker or the JSON block in your prose."

// Client calls the OpenAI chat completions API.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	cache      *gocache.Cache
}

// NewClient creates a client for the given API key. An empty model selects
// the default.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 45 * time.Second,
		},
		cache: gocache.New(replyCacheTTL, 2*replyCacheTTL),
	}
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

// Complete sends the conversation to the completion API and returns the
// assistant's reply. Identical conversations within the cache TTL are
// answered from cache; regenerating the same trip context repeatedly is
// common when the UI reloads a session.
func (c *Client) Complete(ctx context.Context, messages []*models.Message) (string, error) {
	payload := chatRequest{
		Model:    c.model,
		Messages: buildMessages(messages),
	}

	key := conversationKey(payload.Messages)
	if cached, ok := c.cache.Get(key); ok {
		return cached.(string), nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIChatEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", parseAPIError(resp)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if len(decoded.Choices) == 0 {
		return "", errors.New("assistant returned no choices")
	}
	reply := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if reply == "" {
		return "", errors.New("assistant returned an empty message")
	}

	c.cache.Set(key, reply, gocache.DefaultExpiration)
	return reply, nil
}

// buildMessages prepends the system prompt and replays the most recent
// turns of the conversation.
func buildMessages(messages []*models.Message) []chatMessage {
	out := []chatMessage{{Role: "system", Content: systemPrompt}}
	for _, m := range truncateConversation(messages, maxHistory) {
		if m.Content == "" {
			continue
		}
		if m.Role != models.RoleUser && m.Role != models.RoleAssistant {
			continue
		}
		out = append(out, chatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func truncateConversation(messages []*models.Message, limit int) []*models.Message {
	if len(messages) <= limit {
		return messages
	}
	return messages[len(messages)-limit:]
}

func conversationKey(messages []chatMessage) string {
	h := sha256.New()
	for _, m := range messages {
		io.WriteString(h, m.Role)
		io.WriteString(h, "\x00")
		io.WriteString(h, m.Content)
		io.WriteString(h, "\x00")
	}
	return hex.EncodeToString(h.Sum(nil))
}

// parseAPIError extracts the provider's error message when present.
func parseAPIError(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		return fmt.Errorf("completion api error: %s", resp.Status)
	}

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Error.Message == "" {
		return fmt.Errorf("completion api error: %s", resp.Status)
	}
	return errors.New(payload.Error.Message)
}
