package conversation

import (
	"context"

	"github.com/healthcareplus/clinic-assistant/pkg/logging"
)

// ChainClient wraps a primary LLM client with a secondary provider. If
// the primary fails, the request is retried once against the secondary.
type ChainClient struct {
	primary   LLMClient
	secondary LLMClient
	logger    *logging.Logger
}

// NewChainClient creates a failover-enabled LLM client. If secondary is
// nil, only the primary is used.
func NewChainClient(primary, secondary LLMClient, logger *logging.Logger) *ChainClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChainClient{primary: primary, secondary: secondary, logger: logger}
}

// Complete sends a completion request to the primary LLM, falling back to
// the secondary on error.
func (c *ChainClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	c.logger.Warn("primary LLM failed",
		"error", err.Error(),
		"secondary_available", c.secondary != nil,
	)

	if c.secondary == nil {
		return LLMResponse{}, err
	}

	secondResp, secondErr := c.secondary.Complete(ctx, req)
	if secondErr != nil {
		c.logger.Error("secondary LLM also failed",
			"primary_error", err.Error(),
			"secondary_error", secondErr.Error(),
		)
		return LLMResponse{}, secondErr
	}

	c.logger.Info("secondary LLM succeeded after primary failure")
	return secondResp, nil
}
