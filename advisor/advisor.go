// Package advisor asks an external chat-completion service for a trading
// signal. The service is advisory only: every transport error, unexpected
// status, malformed body or ambiguous answer degrades to HOLD.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"fxsentinel/indicators"
	"fxsentinel/signal"
)

const systemPrompt = "You are a quantitative trading analyst. Your analysis is purely " +
	"technical, based on the indicators provided. Your answer must be a single " +
	"unambiguous trading signal."

const instruction = "Analyze the following technical indicator readings for the current " +
	"market. Consider trend, momentum, volatility and key levels. If the direction is " +
	"strongly bullish and the entry is favorable answer BUY. If strongly bearish answer " +
	"SELL. If there is no clear signal answer HOLD. Respond with EXACTLY one word: " +
	"BUY, SELL, or HOLD.\n\nData: %s"

// Client is a signal.Source backed by an OpenAI-style /chat/completions
// endpoint.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	hc       *http.Client
}

// New builds a client. endpoint is the full chat-completions URL.
func New(endpoint, model, apiKey string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		apiKey:   apiKey,
		hc:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Name() string { return "advisor" }

// Decide renders the snapshot, queries the service and parses the answer.
func (c *Client) Decide(ctx context.Context, snap indicators.Snapshot) signal.Decision {
	sig, err := c.query(ctx, renderSnapshot(snap))
	if err != nil {
		log.Printf("advisor: %v, defaulting to HOLD", err)
		return signal.Decision{Signal: signal.Hold, Reason: "advisory service unavailable"}
	}
	return sig
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) query(ctx context.Context, data string) (signal.Decision, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(instruction, data)},
		},
		Temperature: 0,
		MaxTokens:   5,
	})
	if err != nil {
		return signal.Decision{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return signal.Decision{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.hc.Do(req)
	if err != nil {
		return signal.Decision{}, fmt.Errorf("advisory request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return signal.Decision{}, fmt.Errorf("advisory status %d: %s", res.StatusCode, string(b))
	}

	var out chatResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return signal.Decision{}, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return signal.Decision{}, fmt.Errorf("advisory response has no choices")
	}

	return parseAnswer(out.Choices[0].Message.Content), nil
}

// parseAnswer accepts only an unambiguous BUY/SELL/HOLD as the first token;
// everything else is HOLD.
func parseAnswer(text string) signal.Decision {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(text)))
	if len(fields) == 0 {
		return signal.Decision{Signal: signal.Hold, Reason: "empty advisory answer"}
	}
	switch fields[0] {
	case "BUY":
		return signal.Decision{Signal: signal.Buy, Reason: "advisory BUY"}
	case "SELL":
		return signal.Decision{Signal: signal.Sell, Reason: "advisory SELL"}
	case "HOLD":
		return signal.Decision{Signal: signal.Hold, Reason: "advisory HOLD"}
	default:
		log.Printf("advisor: unexpected answer %q, defaulting to HOLD", fields[0])
		return signal.Decision{Signal: signal.Hold, Reason: "ambiguous advisory answer"}
	}
}

// renderSnapshot produces a stable name=value rendering of the snapshot.
func renderSnapshot(snap indicators.Snapshot) string {
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.5f", k, snap[k]))
	}
	return strings.Join(parts, ", ")
}
