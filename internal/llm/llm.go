package llm

import (
	"github.com/sashabaranov/go-openai"

	"github.com/trungvq/workmate/internal/config"
)

// NewClient creates a chat-completion client for any OpenAI-compatible
// endpoint. When the config sets a requests-per-minute limit the client is
// wrapped with a rate limiter.
func NewClient(cfg config.LLMConfig) Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	var c Client = openai.NewClientWithConfig(clientCfg)
	if cfg.RequestsPerMinute > 0 {
		c = NewRateLimited(c, cfg.RequestsPerMinute)
	}
	return c
}
