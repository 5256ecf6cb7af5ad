package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/palaver/internal/core/config"
	"github.com/hay-kot/palaver/internal/remote"
)

func TestInitCmd_RefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: echo\n"), 0o644))

	app, flags, _ := newTestApp(t, remote.Echo{})
	flags.ConfigPath = path
	app = NewInitCmd(flags).Register(app)

	err := app.Run(context.Background(), []string{"palaver", "init"})
	assert.ErrorContains(t, err, "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "provider: echo\n", string(data))
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		name     string
		prev     string
		provider string
		model    string
		want     string
	}{
		{name: "blank gets default", prev: "gemini", provider: "echo", model: "", want: "echo"},
		{name: "stale default dropped", prev: "gemini", provider: "ark", model: "gemini-1.5-flash", want: ""},
		{name: "stale default replaced", prev: "gemini", provider: "echo", model: "gemini-1.5-flash", want: "echo"},
		{name: "custom model kept", prev: "gemini", provider: "ark", model: "doubao-pro-32k", want: "doubao-pro-32k"},
		{name: "same provider keeps model", prev: "gemini", provider: "gemini", model: "gemini-1.5-flash", want: "gemini-1.5-flash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Provider = tt.provider
			cfg.Model = tt.model

			resolveModel(&cfg, tt.prev)
			assert.Equal(t, tt.want, cfg.Model)
		})
	}
}

func TestRequiredValidator(t *testing.T) {
	v := requiredValidator("API key variable")

	assert.NoError(t, v("GEMINI_API_KEY"))
	assert.ErrorContains(t, v("  "), "API key variable is required")
}

func TestTemplateValidator(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "blank", in: "", wantErr: false},
		{name: "input field", in: "Q: {{ .Input }}", wantErr: false},
		{name: "unclosed action", in: "{{ .Input ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := templateValidator(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewInitForm(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.NotNil(t, newInitForm(&cfg))
}
