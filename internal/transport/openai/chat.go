package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Chat generates short clarification replies when the pipeline finds nothing
// usable. It is an optional collaborator; absence of credentials is normal.
type Chat struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ChatConfig holds the reply generator settings.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewChat creates an OpenAI-compatible chat client. Returns nil when no API
// key is configured, which callers treat as "generator absent".
func NewChat(cfg *ChatConfig) *Chat {
	if cfg.APIKey == "" {
		return nil
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Chat{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

const replySystemPrompt = "You help people find chord sheets for worship songs. " +
	"The search found no exact match. Reply in one or two short sentences in the " +
	"user's language, suggesting close titles when provided and asking for a " +
	"clearer title otherwise. Never invent songs."

// Reply produces a short natural-language reply for a query that matched
// nothing, optionally mentioning near-miss titles and recent conversation turns.
func (c *Chat) Reply(ctx context.Context, query, lang string, titles, history []string) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Language hint: %s\n", lang)
	if len(history) > 0 {
		fmt.Fprintf(&sb, "Recent turns:\n%s\n", strings.Join(history, "\n"))
	}
	if len(titles) > 0 {
		fmt.Fprintf(&sb, "Close titles: %s\n", strings.Join(titles, ", "))
	}
	fmt.Fprintf(&sb, "Query: %s", query)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: 200,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: replySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty chat completion response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
