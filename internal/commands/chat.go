package commands

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hay-kot/palaver/internal/core/chat"
	"github.com/hay-kot/palaver/internal/core/config"
	"github.com/hay-kot/palaver/pkg/tmpl"
)

// newCoordinator returns an idle coordinator over a fresh conversation,
// rendering prompts through the configured template.
func newCoordinator(cfg *config.Config, logger zerolog.Logger) (*chat.Coordinator, error) {
	prompt, err := tmpl.Prompt(cfg.PromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}

	return chat.NewCoordinator(chat.NewConversation(), logger).WithPrompt(prompt), nil
}
