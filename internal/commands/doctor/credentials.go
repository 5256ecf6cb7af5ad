package doctor

import (
	"context"

	"github.com/hay-kot/palaver/internal/core/config"
)

// CredentialCheck reports whether the provider's API key is present. A
// missing key is a warning: the program still starts and the failure shows
// up on the first request.
type CredentialCheck struct {
	config *config.Config
}

// NewCredentialCheck creates a new credential check.
func NewCredentialCheck(cfg *config.Config) *CredentialCheck {
	return &CredentialCheck{config: cfg}
}

func (c *CredentialCheck) Name() string {
	return "Credentials"
}

func (c *CredentialCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if c.config == nil {
		return result
	}

	if !c.config.NeedsAPIKey() {
		result.Items = append(result.Items, CheckItem{
			Label:  "API key",
			Status: StatusPass,
			Detail: "not required for " + c.config.Provider,
		})
		return result
	}

	if src := c.config.APIKeySource(); src != "" {
		result.Items = append(result.Items, CheckItem{
			Label:  "API key",
			Status: StatusPass,
			Detail: "found in " + src,
		})
		return result
	}

	for _, w := range c.config.Warnings() {
		label := w.Category
		if w.Item != "" {
			label += " (" + w.Item + ")"
		}
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusWarn,
			Detail: w.Message,
		})
	}

	return result
}
