package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// RateLimited wraps a Client and blocks before each call until the limiter
// grants a slot. Concurrent sessions share one limiter so a single upstream
// quota is never exceeded.
type RateLimited struct {
	inner   Client
	limiter *rate.Limiter
}

// NewRateLimited creates a rate-limited client allowing requestsPerMinute
// calls, with a burst of one.
func NewRateLimited(inner Client, requestsPerMinute int) *RateLimited {
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
	}
}

// CreateChatCompletion implements Client.
func (c *RateLimited) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	return c.inner.CreateChatCompletion(ctx, req)
}
