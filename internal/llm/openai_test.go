package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestNewOpenAIRequiresKey(t *testing.T) {
	t.Parallel()
	if _, err := NewOpenAI(Options{}); !errors.Is(err, ErrAuth) {
		t.Errorf("err = %v, want ErrAuth", err)
	}
	if _, err := NewOpenAI(Options{APIKey: "sk-test"}); err != nil {
		t.Errorf("NewOpenAI with key: %v", err)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"deadline", context.DeadlineExceeded, ErrTimeout},
		{"unauthorized", &openai.APIError{HTTPStatusCode: http.StatusUnauthorized}, ErrAuth},
		{"forbidden", &openai.APIError{HTTPStatusCode: http.StatusForbidden}, ErrAuth},
		{"throttled", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, ErrRateLimited},
		{"server error", &openai.APIError{HTTPStatusCode: http.StatusInternalServerError}, ErrTransport},
		{"plain network failure", errors.New("connection refused"), ErrTransport},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classify(tt.in); !errors.Is(got, tt.want) {
				t.Errorf("classify(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	t.Run("cancellation passes through untyped", func(t *testing.T) {
		t.Parallel()
		if got := classify(context.Canceled); !errors.Is(got, context.Canceled) || errors.Is(got, ErrTransport) {
			t.Errorf("classify(Canceled) = %v", got)
		}
	})
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	if !retryable(ErrRateLimited) || !retryable(ErrTransport) || !retryable(ErrTimeout) {
		t.Error("transient failures must be retryable")
	}
	if retryable(ErrAuth) {
		t.Error("auth failures must not be retried")
	}
	if retryable(context.Canceled) {
		t.Error("cancellation must not be retried")
	}
}

func TestSleepBackoffHonorsCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepBackoff(ctx, 3); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFuncAdapter(t *testing.T) {
	t.Parallel()
	var got []Message
	client := Func(func(ctx context.Context, msgs []Message) (string, error) {
		got = msgs
		return "ok", nil
	})
	out, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil || out != "ok" {
		t.Fatalf("Complete = (%q, %v)", out, err)
	}
	if len(got) != 1 || got[0].Content != "hi" {
		t.Errorf("messages = %+v", got)
	}
}
