// Package gemini implements the flavor-text client for LevelUp Hub.
// It asks Gemini for a unique celebratory line when someone levels up.
// The call sits behind a circuit breaker and is made strictly after the
// level-up has been committed: a flaky LLM can cost us flavor, never XP.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/economy"
	"github.com/promohub/levelup-hub/pkg/circuitbreaker"
	"github.com/promohub/levelup-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains configuration for the Gemini client.
type Config struct {
	// APIKey is the Generative Language API key. Empty disables the
	// client, every call falls through to canned lines.
	APIKey string

	// BaseURL is the Generative Language API base URL.
	BaseURL string

	// Model is the model name.
	Model string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		BaseURL: "https://generativelanguage.googleapis.com",
		Model:   "gemini-pro",
		Timeout: 10 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client generates level-up flavor text.
type Client struct {
	config     Config
	httpClient *http.Client
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
	rng        economy.Rand
	logger     *slog.Logger
}

// NewClient creates a new Gemini client.
func NewClient(config Config, rng economy.Rand) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if config.Model == "" {
		config.Model = "gemini-pro"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if rng == nil {
		rng = economy.NewRand()
	}

	logger := config.Logger
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		retrier:    retry.GeminiRetrier(),
		breaker: circuitbreaker.GeminiBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("gemini circuit state changed", "breaker", name, "from", from, "to", to)
		}),
		rng:    rng,
		logger: logger,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.config.APIKey != ""
}

// LevelUpLine returns a celebratory line for a level-up announcement.
// It never fails: when Gemini is unconfigured, tripped or erroring, a
// canned line is returned instead.
func (c *Client) LevelUpLine(ctx context.Context, displayName string, level int) string {
	if !c.Enabled() {
		return c.fallbackLine(displayName, level)
	}

	prompt := c.prompts(displayName, level)[c.rng.Intn(3)]

	var line string
	err := c.breaker.ExecuteWithFallback(ctx,
		func(ctx context.Context) error {
			return c.retrier.Do(ctx, func(ctx context.Context) error {
				text, err := c.generate(ctx, prompt)
				if err != nil {
					return err
				}
				line = text
				return nil
			})
		},
		func(err error) error {
			c.logger.Warn("gemini unavailable, using canned line", "error", err)
			return nil
		})
	if err != nil || line == "" {
		if err != nil {
			c.logger.Warn("gemini generation failed", "error", err)
		}
		return c.fallbackLine(displayName, level)
	}
	return line
}

func (c *Client) prompts(displayName string, level int) [3]string {
	return [3]string{
		fmt.Sprintf("Write a short, funny, motivating message for %s who just reached Level %d in a Telegram promotion community. Under 50 words. Include emojis. Be creative and unique.", displayName, level),
		fmt.Sprintf("Create an exciting congratulation message for %s achieving Level %d in a group chat. Add relevant emojis. Make it enthusiastic and encouraging.", displayName, level),
		fmt.Sprintf("Generate a creative level-up announcement for %s reaching Level %d. Be motivational, add humor if possible. Include 2-3 emojis.", displayName, level),
	}
}

func (c *Client) fallbackLine(displayName string, level int) string {
	lines := []string{
		fmt.Sprintf("🔥 Amazing! %s just hit Level %d! What a grind! 🚀", displayName, level),
		fmt.Sprintf("🎉 Level %d unlocked! %s is on fire! Keep growing! 💪", level, displayName),
		fmt.Sprintf("⚡ Woohoo! %s reached Level %d! The party is just getting started! 🎊", displayName, level),
		fmt.Sprintf("🌟 Level %d complete! Watching %s grow is a treat! 💯", level, displayName),
	}
	return lines[c.rng.Intn(len(lines))]
}

// ══════════════════════════════════════════════════════════════════════════════
// API CALL
// ══════════════════════════════════════════════════════════════════════════════

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generate performs one generateContent call.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.config.BaseURL, c.config.Model, c.config.APIKey)

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", retry.Retryable(fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", retry.Retryable(fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", retry.Retryable(fmt.Errorf("gemini api status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return "", retry.Permanent(fmt.Errorf("gemini api status %d: %s", resp.StatusCode, truncate(body, 200)))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", retry.Permanent(fmt.Errorf("unmarshal response: %w", err))
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", retry.Permanent(fmt.Errorf("gemini returned no candidates"))
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
