package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Options configures the OpenAI-compatible client.
type Options struct {
	APIKey         string
	BaseURL        string        // empty = provider default
	Model          string        // e.g. "gpt-4o-mini"
	RequestTimeout time.Duration // per-attempt bound; 0 = defaultTimeout
	MaxRetries     int           // retries on rate-limit/transport failures
	RequestsPerSec float64       // client-side rate limit; 0 = unlimited
}

const (
	defaultTimeout = 120 * time.Second
	defaultModel   = "gpt-4o-mini"
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 8 * time.Second
)

// OpenAI is a Client backed by any OpenAI-compatible chat completion
// endpoint.
type OpenAI struct {
	client     *openai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	limiter    *rate.Limiter
}

// NewOpenAI builds a client from options. APIKey is required.
func NewOpenAI(opts Options) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrAuth)
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1)
	}

	return &OpenAI{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		timeout:    timeout,
		maxRetries: opts.MaxRetries,
		limiter:    limiter,
	}, nil
}

// Complete sends the turns as a chat completion request. Rate-limit and
// transport failures are retried with jittered exponential backoff up to
// MaxRetries; auth failures and context cancellation are not.
func (o *OpenAI) Complete(ctx context.Context, msgs []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt); err != nil {
				return "", err
			}
		}
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return "", classify(err)
			}
		}

		text, err := o.once(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable(err) {
			return "", err
		}
	}
	return "", lastErr
}

// once performs a single bounded attempt.
func (o *OpenAI) once(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(attemptCtx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps provider and transport errors onto the package's typed
// failures, preserving the original detail via wrapping.
func classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

// retryable reports whether a failure is worth another attempt.
func retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrTimeout)
}

// sleepBackoff waits with jittered exponential delay, honoring cancellation.
func sleepBackoff(ctx context.Context, attempt int) error {
	delay := retryBaseDelay << (attempt - 1)
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	// Full jitter keeps concurrent cascades from synchronizing retries.
	delay = time.Duration(rand.Int63n(int64(delay)) + int64(delay)/2)

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
