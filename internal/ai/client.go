// Package ai implements the gateway to the upstream completion API:
// rate-limited, retried, optionally streamed chat completions.
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/interviewd/internal/config"
	"github.com/ashureev/interviewd/internal/domain"
)

// maxResponseBodySize caps how much of an upstream error body is read
// back for diagnostics.
const maxResponseBodySize = 64 << 10

// chatMessage is the wire shape of one history entry.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionRequest is the JSON body POSTed upstream.
type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream,omitempty"`
}

// completionResponse is the unary response shape.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// streamFragment is one decoded server-sent event in streaming mode.
type streamFragment struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Client is the completion gateway. It owns the shared rate window and
// the retrying transport; it has no knowledge of sessions and never
// touches persisted state.
type Client struct {
	cfg       config.AIConfig
	unary     *http.Client
	streaming *http.Client
	limiter   *RateLimiter
	retrier   *transport
	logger    *slog.Logger
}

// NewClient creates a completion gateway from configuration.
func NewClient(cfg config.AIConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg: cfg,
		// The unary client enforces the request timeout wholesale. The
		// streaming client must not: a healthy stream can outlive any
		// fixed deadline, so only connection setup is bounded.
		unary:     &http.Client{Timeout: cfg.RequestTimeout},
		streaming: &http.Client{},
		limiter:   NewRateLimiter(cfg.RateLimitPerWindow, cfg.RateLimitWindow),
		retrier: newTransport(RetryPolicy{
			MaxRetries:    cfg.MaxRetries,
			BaseDelay:     cfg.BaseDelay,
			MaxDelay:      cfg.MaxDelay,
			BackoffFactor: cfg.BackoffFactor,
		}, logger),
		logger: logger,
	}
}

// Configured reports whether an upstream credential is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// buildMessages converts history to wire form, appending phaseContext
// to the system message for this call only. The caller's history is
// never mutated.
func buildMessages(history []domain.Message, phaseContext string) []chatMessage {
	msgs := make([]chatMessage, len(history))
	for i, m := range history {
		msgs[i] = chatMessage{Role: m.Role, Content: m.Content}
	}
	if phaseContext != "" && len(msgs) > 0 && msgs[0].Role == domain.RoleSystem {
		msgs[0].Content += "\n\n" + phaseContext
	}
	return msgs
}

// GenerateReply sends the conversation upstream and returns the full
// reply text from the first completion choice.
func (c *Client) GenerateReply(ctx context.Context, history []domain.Message, phaseContext string) (string, error) {
	if !c.Configured() {
		return "", ErrMissingAPIKey
	}
	if !c.limiter.Allow() {
		return "", &RateLimitError{
			Message:    "Too many requests. Please wait a moment before trying again.",
			RetryAfter: time.Minute,
		}
	}

	payload := completionRequest{
		Model:       c.cfg.Model,
		Messages:    buildMessages(history, phaseContext),
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	var out completionResponse
	err := c.retrier.do(ctx, func(ctx context.Context) error {
		return c.postJSON(ctx, payload, &out)
	})
	if err != nil {
		return "", err
	}

	if len(out.Choices) == 0 {
		return "", &UpstreamError{Class: FailureRequest, Err: errors.New("response contained no choices")}
	}
	return out.Choices[0].Message.Content, nil
}

// StreamReply opens a streamed completion and yields incremental text
// chunks. The sequence is finite and not restartable. Retries cover
// connection establishment only: once a chunk has been yielded, a
// failure terminates the stream through the error side of the sequence
// so the caller can persist whatever was accumulated.
func (c *Client) StreamReply(ctx context.Context, history []domain.Message, phaseContext string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !c.Configured() {
			yield("", ErrMissingAPIKey)
			return
		}
		if !c.limiter.Allow() {
			yield("", &RateLimitError{
				Message:    "Too many requests. Please wait a moment before trying again.",
				RetryAfter: time.Minute,
			})
			return
		}

		payload := completionRequest{
			Model:       c.cfg.Model,
			Messages:    buildMessages(history, phaseContext),
			Temperature: c.cfg.Temperature,
			MaxTokens:   c.cfg.MaxTokens,
			Stream:      true,
		}

		resp, err := c.connectStream(ctx, payload)
		if err != nil {
			yield("", err)
			return
		}
		defer func() {
			if closeErr := resp.Body.Close(); closeErr != nil {
				c.logger.Debug("failed to close stream body", "error", closeErr)
			}
		}()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}

			var frag streamFragment
			if err := json.Unmarshal([]byte(data), &frag); err != nil {
				// Malformed fragments are skipped, not fatal.
				continue
			}
			if len(frag.Choices) == 0 {
				continue
			}
			delta := frag.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			if !yield(delta, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			// Mid-stream failure: never retried, reported as-is.
			yield("", classify(err))
		}
	}
}

// connectStream establishes the streaming connection, retrying with
// backoff until a 2xx response is obtained or attempts are exhausted.
func (c *Client) connectStream(ctx context.Context, payload completionRequest) (*http.Response, error) {
	var resp *http.Response
	err := c.retrier.do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = c.openStream(ctx, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) openStream(ctx context.Context, payload completionRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.streaming.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close error response body", "error", closeErr)
		}
		return nil, &statusError{status: resp.StatusCode, body: string(snippet)}
	}
	return resp, nil
}

// postJSON performs one unary attempt: POST the payload, check the
// status, decode the body into out.
func (c *Client) postJSON(ctx context.Context, payload completionRequest, out *completionResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.unary.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
		return &statusError{status: resp.StatusCode, body: string(snippet)}
	}

	*out = completionResponse{}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
}
