package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient implements LLMClient against Groq's OpenAI-compatible
// chat-completions API.
type GroqClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGroqClient creates a Groq LLM client. baseURL may be empty.
func NewGroqClient(apiKey, baseURL string) (*GroqClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("conversation: groq api key is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultGroqBaseURL
	}
	return &GroqClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type groqChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int32         `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

type groqChatResponse struct {
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends the conversation history to Groq and returns the reply.
func (c *GroqClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	messages := make([]ChatMessage, 0, len(req.Messages)+1)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, ChatMessage{Role: ChatRoleSystem, Content: req.System})
	}
	messages = append(messages, req.Messages...)
	if len(messages) == 0 {
		return LLMResponse{}, errors.New("conversation: groq requires at least one message")
	}

	body, err := json.Marshal(groqChatRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return LLMResponse{}, fmt.Errorf("conversation: encode groq request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return LLMResponse{}, fmt.Errorf("conversation: build groq request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("conversation: groq request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return LLMResponse{}, fmt.Errorf("conversation: read groq response: %w", err)
	}

	var parsed groqChatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return LLMResponse{}, fmt.Errorf("conversation: decode groq response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return LLMResponse{}, fmt.Errorf("conversation: groq returned %d: %s", resp.StatusCode, msg)
	}
	if len(parsed.Choices) == 0 {
		return LLMResponse{}, errors.New("conversation: groq returned no choices")
	}

	return LLMResponse{
		Text:       strings.TrimSpace(parsed.Choices[0].Message.Content),
		StopReason: parsed.Choices[0].FinishReason,
	}, nil
}
