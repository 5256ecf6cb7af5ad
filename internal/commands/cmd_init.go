package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/palaver/internal/core/config"
	"github.com/hay-kot/palaver/internal/printer"
	"github.com/hay-kot/palaver/internal/remote"
	"github.com/hay-kot/palaver/internal/styles"
	"github.com/hay-kot/palaver/pkg/tmpl"
)

type InitCmd struct {
	flags *Flags
	force bool
}

// NewInitCmd creates a new init command
func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

// Register adds the init command to the application
func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Create a configuration file interactively",
		UsageText: "palaver init [options]",
		Description: `Walks through the provider, model, and display settings and writes
them to the config file (see --config).

The API key itself is never written; only the name of the environment
variable that holds it.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "force",
				Usage:       "overwrite an existing config file",
				Destination: &cmd.force,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *InitCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)
	path := cmd.flags.ConfigPath

	if _, err := os.Stat(path); err == nil && !cmd.force {
		return fmt.Errorf("config file %s already exists; use --force to overwrite", path)
	}

	cfg := config.DefaultConfig()
	if cmd.flags.Config != nil {
		cfg = *cmd.flags.Config
	}
	if cfg.DataDir == "" {
		cfg.DataDir = cmd.flags.DataDir
	}

	fmt.Println(styles.BannerStyle.Render(styles.Banner))
	fmt.Println()

	prevProvider := cfg.Provider
	if err := newInitForm(&cfg).WithTheme(styles.FormTheme()).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			p.Infof("aborted, nothing written")
			return nil
		}
		return fmt.Errorf("run form: %w", err)
	}

	resolveModel(&cfg, prevProvider)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.Save(path); err != nil {
		return err
	}

	p.Success("Config written", path)
	if cfg.NeedsAPIKey() && cfg.APIKey() == "" {
		p.Warnf("set %s in your environment or a .env file before chatting", cfg.APIKeyEnv)
	}
	return nil
}

// newInitForm builds the setup form bound to cfg.
func newInitForm(cfg *config.Config) *huh.Form {
	providers := make([]huh.Option[string], 0, len(remote.Providers()))
	for _, name := range remote.Providers() {
		providers = append(providers, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Provider").
				Description("echo replies locally and needs no key").
				Options(providers...).
				Value(&cfg.Provider),
			huh.NewInput().
				Title("Model").
				Description("leave blank for the provider default").
				Value(&cfg.Model),
			huh.NewInput().
				Title("API key variable *").
				Description("environment variable holding the credential").
				Value(&cfg.APIKeyEnv).
				Validate(requiredValidator("API key variable")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Window title").
				Value(&cfg.UI.Title),
			huh.NewInput().
				Title("Prompt template").
				Description("Go template; {{ .Input }} is the message").
				Placeholder("{{ .Input }}").
				Value(&cfg.PromptTemplate).
				Validate(templateValidator),
			huh.NewConfirm().
				Title("Use a 24-hour clock?").
				Value(&cfg.UI.Clock24h),
		),
	)
}

// resolveModel fills in the provider default when the model is blank. A
// model that was only the previous provider's default is dropped when the
// provider changes, since it would not exist on the new one.
func resolveModel(cfg *config.Config, prevProvider string) {
	model := strings.TrimSpace(cfg.Model)
	if cfg.Provider != prevProvider && model == remote.DefaultModel(prevProvider) {
		model = ""
	}
	if model == "" {
		model = remote.DefaultModel(cfg.Provider)
	}
	cfg.Model = model
}

// requiredValidator returns a validator that rejects blank values.
func requiredValidator(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func templateValidator(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := tmpl.Prompt(s); err != nil {
		return err
	}
	return nil
}
