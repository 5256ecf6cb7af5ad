package remote

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModel sends prompts through an eino chat model. Only the current prompt
// is sent; there is no system message and no history.
type ChatModel struct {
	model model.BaseChatModel
}

// NewChatModel wraps an eino chat model.
func NewChatModel(m model.BaseChatModel) *ChatModel {
	return &ChatModel{model: m}
}

// NewArk builds a Volcengine Ark chat model from opts.
func NewArk(ctx context.Context, opts Options) (*ChatModel, error) {
	cfg := &ark.ChatModelConfig{
		APIKey:  opts.APIKey,
		Model:   opts.Model,
		BaseURL: opts.BaseURL,
		Region:  opts.Region,
	}

	cm, err := ark.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ark chat model: %w", err)
	}

	return NewChatModel(cm), nil
}

// Generate runs a single-message completion.
func (c *ChatModel) Generate(ctx context.Context, prompt string) (Result, error) {
	msg, err := c.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return Result{}, fmt.Errorf("chat model generate: %w", err)
	}

	if msg == nil || msg.Content == "" {
		return Result{}, ErrEmptyResponse
	}

	return Result{Text: msg.Content, Raw: msg}, nil
}
