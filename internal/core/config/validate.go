package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/palaver/internal/remote"
	"github.com/hay-kot/palaver/pkg/tmpl"
)

var envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Warning is a non-fatal configuration issue.
type Warning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is usable. It does not check that
// a credential is present; a missing key surfaces when a request fails.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if !remote.IsProvider(c.Provider) {
		errs = errs.Append("provider", fmt.Errorf("unknown provider %q (expected one of %s)",
			c.Provider, strings.Join(remote.Providers(), ", ")))
	}

	if c.Provider == remote.ProviderArk && c.Model == "" {
		errs = errs.Append("model", fmt.Errorf("is required for the ark provider"))
	}

	if c.APIKeyEnv != "" && !envNamePattern.MatchString(c.APIKeyEnv) {
		errs = errs.Append("api_key_env", fmt.Errorf("%q is not a valid environment variable name", c.APIKeyEnv))
	}

	if c.PromptTemplate != "" {
		if _, err := tmpl.Parse(c.PromptTemplate); err != nil {
			errs = errs.Append("prompt_template", fmt.Errorf("template error: %w", err))
		}
	}

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("data directory cannot be empty"))
	}

	return errs.ToError()
}

// Warnings returns issues that do not stop the program from starting.
func (c *Config) Warnings() []Warning {
	var warnings []Warning

	if c.NeedsAPIKey() && c.APIKey() == "" {
		names := c.APIKeyEnv
		if fallback, ok := providerKeyEnv[c.Provider]; ok && fallback != c.APIKeyEnv {
			names += " or " + fallback
		}
		warnings = append(warnings, Warning{
			Category: "Credentials",
			Item:     c.Provider,
			Message:  fmt.Sprintf("no API key found in %s; requests will fail", names),
		})
	}

	return warnings
}
