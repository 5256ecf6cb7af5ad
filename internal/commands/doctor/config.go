package doctor

import (
	"context"
	"errors"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/palaver/internal/core/config"
)

// ConfigCheck validates the configuration file.
type ConfigCheck struct {
	config     *config.Config
	configPath string
	loadErr    error
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{
		config:     cfg,
		configPath: configPath,
	}
}

// WithLoadError records why the config failed to load. A parsed but
// invalid config still gets its fields checked.
func (c *ConfigCheck) WithLoadError(err error) *ConfigCheck {
	c.loadErr = err
	return c
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if c.config == nil {
		detail := "configuration not loaded"
		if c.loadErr != nil {
			detail = c.loadErr.Error()
		}
		result.Items = append(result.Items, CheckItem{
			Label:  "Config loaded",
			Status: StatusFail,
			Detail: detail,
		})
		return result
	}

	if _, err := os.Stat(c.configPath); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Config file",
			Status: StatusWarn,
			Detail: "not found, using defaults (run 'palaver init')",
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "Config file",
			Status: StatusPass,
			Detail: c.configPath,
		})
	}

	err := c.config.Validate()
	if err == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Config valid",
			Status: StatusPass,
			Detail: c.config.Provider + " / " + c.config.Model,
		})
		return result
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			label := fe.Field
			if label == "" {
				label = "validation"
			}
			result.Items = append(result.Items, CheckItem{
				Label:  label,
				Status: StatusFail,
				Detail: fe.Err.Error(),
			})
		}
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "validation",
			Status: StatusFail,
			Detail: err.Error(),
		})
	}

	return result
}
