package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/hay-kot/palaver/internal/core/config"
	"github.com/hay-kot/palaver/internal/remote"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Overrides for the configured provider and model
	Provider string
	Model    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// ConfigErr is set when doctor runs against a config that failed to load.
	ConfigErr error

	// Generator sends prompts to the configured provider. It is built in the
	// Before hook; provider clients connect on first use.
	Generator remote.Generator
}

// Overrides returns the command-line config overrides.
func (f *Flags) Overrides() config.Overrides {
	return config.Overrides{Provider: f.Provider, Model: f.Model}
}

// Setup loads the config and builds the generator for the named
// subcommand. init and doctor still run on a broken config: init rewrites
// it and doctor reports what is wrong with it. Neither gets a generator
// in that case.
func (f *Flags) Setup(command string) error {
	cfg, err := config.Load(f.ConfigPath, f.DataDir, f.Overrides())
	if err != nil {
		switch command {
		case "init":
			log.Warn().Err(err).Msg("ignoring invalid config")
			return nil
		case "doctor":
			f.ConfigErr = err
			// nil when the file does not parse
			f.Config, _ = config.Read(f.ConfigPath, f.DataDir, f.Overrides())
			return nil
		}
		return fmt.Errorf("load config: %w", err)
	}
	f.Config = cfg

	gen, err := remote.New(cfg.RemoteOptions())
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}
	f.Generator = remote.WithLogging(gen, log.With().Str("component", "remote").Logger())

	return nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "palaver", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "palaver")
}
