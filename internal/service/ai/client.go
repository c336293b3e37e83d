// Package ai wraps the generative model behind the single capability the
// resolution pipeline needs: invoke(prompt) -> text.
package ai

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/whimsylab/couplescourt/internal/config"
	"github.com/whimsylab/couplescourt/internal/model/court"
)

// Client invokes the analysis model through a compiled eino chain with a
// bounded per-call timeout.
type Client struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

// NewClient builds the model and compiles the prompt chain.
func NewClient(ctx context.Context, cfg config.AIConfig) (*Client, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile analysis chain: %w", err)
	}

	return &Client{chain: runnable, timeout: cfg.Timeout}, nil
}

// Invoke runs one analysis request and returns the raw model text. Failures
// surface as court.ErrAnalysisUnavailable; the call never retries, since a
// re-invocation has real cost and is the caller's decision.
func (c *Client) Invoke(ctx context.Context, system, query string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	response, err := c.chain.Invoke(ctx, map[string]any{
		"system": system,
		"query":  query,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", court.ErrAnalysisUnavailable, err)
	}

	log.Printf("[ai] analysis response received, length=%d", len(response.Content))
	return response.Content, nil
}
