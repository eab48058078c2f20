// Package llm provides a client for OpenAI-compatible chat-completion
// endpoints. Completion calls are correctness critical, so they run
// under the ModelInference retry preset and propagate their terminal
// failure to the caller.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/deepquery/dqf/logger"
	"github.com/deepquery/dqf/retry"
	"github.com/deepquery/dqf/zlog"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options defines optional client configuration.
type Options struct {
	// Timeout bounds a single HTTP request, not the whole retry loop.
	Timeout time.Duration
	// Policy overrides the ModelInference retry preset.
	Policy *retry.Policy
	// Logger overrides the global zlog sink.
	Logger logger.Logger
}

// Client calls a chat-completion endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	httpc   *http.Client
	policy  retry.Policy
	log     logger.Logger
}

// New creates a completion client. baseURL may be empty for the OpenAI
// default; any provider compatible with the OpenAI request format works.
func New(apiKey, baseURL, model string, opts *Options) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   model,
		policy:  retry.ModelInference,
	}
	if baseURL != "" {
		c.baseURL = baseURL
	}

	timeout := 2 * time.Minute
	if opts != nil {
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		if opts.Policy != nil {
			c.policy = *opts.Policy
		}
		c.log = opts.Logger
	}
	c.httpc = &http.Client{Timeout: timeout}
	if c.log == nil {
		c.log = logger.NewZerologWith(zlog.Logger)
	}
	return c
}

// Complete sends the conversation to the model and returns the content
// of the first choice. Transient failures are retried per the client's
// policy; the terminal failure is returned unmodified.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	return retry.Do(ctx, func(ctx context.Context) (string, error) {
		return c.complete(ctx, messages)
	}, c.policy, retry.WithName("llm.complete"), retry.WithLogger(c.log))
}

// Prompt is a convenience for a single system+user exchange.
func (c *Client) Prompt(ctx context.Context, system, user string) (string, error) {
	msgs := make([]Message, 0, 2)
	if system != "" {
		msgs = append(msgs, Message{Role: "system", Content: system})
	}
	msgs = append(msgs, Message{Role: "user", Content: user})
	return c.Complete(ctx, msgs)
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// complete performs one attempt. Failures come back tagged with their
// retry kind so the policy's classifier can match on it.
func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", retry.Internal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", retry.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", retry.Connectivity(err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, data)
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", retry.Transient(fmt.Errorf("decode completion response: %w", err))
	}
	if len(out.Choices) == 0 {
		return "", retry.Transient(errors.New("completion response has no choices"))
	}
	return out.Choices[0].Message.Content, nil
}

// StatusError reports a non-2xx response from the endpoint.
type StatusError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("llm: status %d: %s", e.StatusCode, e.Message)
}

// classifyTransport tags network-level failures.
func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return retry.Timeout(err)
	}
	return retry.Connectivity(err)
}

// classifyStatus tags HTTP status failures: throttling and server errors
// are worth retrying, everything else means the request itself is bad.
func classifyStatus(code int, body []byte) error {
	msg := string(body)
	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error.Message != "" {
		msg = ae.Error.Message
	}
	se := &StatusError{StatusCode: code, Message: msg}

	switch {
	case code == http.StatusTooManyRequests:
		return retry.RateLimit(se)
	case code == http.StatusRequestTimeout:
		return retry.Timeout(se)
	case code >= 500:
		return retry.Transient(se)
	default:
		return retry.Validation(se)
	}
}
