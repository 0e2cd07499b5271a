package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Completer turns a prompt into free-form reply text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyReply is returned when the model answers without any text.
var ErrEmptyReply = errors.New("model returned no text")

// StatusError carries a non-2xx response from the model endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model endpoint returned %d: %s", e.Code, e.Body)
}

// GeminiOptions configures a GeminiClient.
type GeminiOptions struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxAttempts int
	Backoff     time.Duration
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// GeminiClient calls the generateContent endpoint of the Gemini API.
type GeminiClient struct {
	http        *http.Client
	endpoint    string
	apiKey      string
	temperature float64
	maxAttempts int
	backoff     time.Duration
	logger      *zap.Logger
}

// NewGeminiClient validates options and builds a client.
func NewGeminiClient(opts GeminiOptions) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if opts.Model == "" {
		return nil, errors.New("gemini model is empty")
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if _, err := url.Parse(base); err != nil || base == "" {
		return nil, fmt.Errorf("invalid gemini base url %q", opts.BaseURL)
	}

	client := &GeminiClient{
		http:        opts.HTTPClient,
		endpoint:    fmt.Sprintf("%s/v1beta/models/%s:generateContent", base, url.PathEscape(opts.Model)),
		apiKey:      opts.APIKey,
		temperature: opts.Temperature,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		logger:      opts.Logger,
	}
	if client.http == nil {
		client.http = &http.Client{}
	}
	if client.maxAttempts <= 0 {
		client.maxAttempts = 1
	}
	if client.backoff <= 0 {
		client.backoff = 500 * time.Millisecond
	}
	if client.logger == nil {
		client.logger = zap.NewNop()
	}
	return client, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type content struct {
	Role  string `json:"role,omitempty"`
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

// Complete sends one prompt, retrying throttling, server errors and network failures with
// exponential backoff. Cancellation of ctx stops both the request and the retries.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: c.temperature},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	backoff := retry.WithMaxRetries(uint64(c.maxAttempts-1), retry.NewExponential(c.backoff))

	var reply string
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		text, err := c.generate(ctx, body)
		if err == nil {
			reply = text
			return nil
		}
		if retryable(err) {
			c.logger.Warn("gemini request failed; retrying", zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (c *GeminiClient) generate(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("make request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	var text strings.Builder
	for _, cand := range decoded.Candidates {
		for _, p := range cand.Content.Parts {
			text.WriteString(p.Text)
		}
		if text.Len() > 0 {
			break
		}
	}
	if text.Len() == 0 {
		return "", ErrEmptyReply
	}
	return text.String(), nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
