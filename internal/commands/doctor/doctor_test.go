package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/palaver/internal/core/config"
	"github.com/hay-kot/palaver/internal/remote"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Model = "gemini-1.5-flash"
	cfg.DataDir = t.TempDir()
	return &cfg
}

func statuses(r Result) []Status {
	out := make([]Status, 0, len(r.Items))
	for _, item := range r.Items {
		out = append(out, item.Status)
	}
	return out
}

func TestConfigCheck(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(existing, []byte("provider: gemini\n"), 0o644))

	t.Run("not loaded", func(t *testing.T) {
		r := NewConfigCheck(nil, existing).Run(context.Background())
		assert.Equal(t, []Status{StatusFail}, statuses(r))
		assert.Equal(t, "configuration not loaded", r.Items[0].Detail)
	})

	t.Run("load error detail", func(t *testing.T) {
		r := NewConfigCheck(nil, existing).
			WithLoadError(errors.New("parse config file: yaml: line 1")).
			Run(context.Background())
		require.Equal(t, []Status{StatusFail}, statuses(r))
		assert.Contains(t, r.Items[0].Detail, "parse config file")
	})

	t.Run("valid with file", func(t *testing.T) {
		r := NewConfigCheck(testConfig(t), existing).Run(context.Background())
		assert.Equal(t, "Configuration", r.Name)
		assert.Equal(t, []Status{StatusPass, StatusPass}, statuses(r))
	})

	t.Run("missing file warns", func(t *testing.T) {
		r := NewConfigCheck(testConfig(t), filepath.Join(t.TempDir(), "nope.yaml")).Run(context.Background())
		assert.Equal(t, []Status{StatusWarn, StatusPass}, statuses(r))
	})

	t.Run("field errors become items", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Provider = "nope"
		cfg.APIKeyEnv = "1BAD"

		r := NewConfigCheck(cfg, existing).Run(context.Background())
		require.Len(t, r.Items, 3)
		assert.Equal(t, "provider", r.Items[1].Label)
		assert.Equal(t, StatusFail, r.Items[1].Status)
		assert.Equal(t, "api_key_env", r.Items[2].Label)
	})
}

func TestCredentialCheck(t *testing.T) {
	t.Run("echo needs no key", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Provider = remote.ProviderEcho

		r := NewCredentialCheck(cfg).Run(context.Background())
		assert.Equal(t, []Status{StatusPass}, statuses(r))
	})

	t.Run("key present", func(t *testing.T) {
		t.Setenv("PALAVER_TEST_KEY", "secret")
		cfg := testConfig(t)
		cfg.APIKeyEnv = "PALAVER_TEST_KEY"

		r := NewCredentialCheck(cfg).Run(context.Background())
		require.Equal(t, []Status{StatusPass}, statuses(r))
		assert.Contains(t, r.Items[0].Detail, "PALAVER_TEST_KEY")
		assert.NotContains(t, r.Items[0].Detail, "secret")
	})

	t.Run("key missing warns", func(t *testing.T) {
		t.Setenv("PALAVER_TEST_KEY", "")
		t.Setenv("GEMINI_API_KEY", "")
		cfg := testConfig(t)
		cfg.APIKeyEnv = "PALAVER_TEST_KEY"

		r := NewCredentialCheck(cfg).Run(context.Background())
		require.Equal(t, []Status{StatusWarn}, statuses(r))
		assert.Contains(t, r.Items[0].Detail, "GEMINI_API_KEY")
	})
}

func TestTemplateCheck(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		want Status
	}{
		{name: "empty", tmpl: "", want: StatusPass},
		{name: "renders", tmpl: "Q: {{ .Input }}", want: StatusPass},
		{name: "parse error", tmpl: "{{ .Input", want: StatusFail},
		{name: "unknown field", tmpl: "{{ .Nope }}", want: StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTemplateCheck(tt.tmpl).Run(context.Background())
			assert.Equal(t, []Status{tt.want}, statuses(r))
		})
	}
}

func TestRemoteCheck(t *testing.T) {
	ok := NewRemoteCheck(remote.Echo{}, time.Second).Run(context.Background())
	assert.Equal(t, []Status{StatusPass}, statuses(ok))

	failing := remote.Func(func(context.Context, string) (remote.Result, error) {
		return remote.Result{}, errors.New("401 unauthorized")
	})
	bad := NewRemoteCheck(failing, 0).Run(context.Background())
	require.Equal(t, []Status{StatusFail}, statuses(bad))
	assert.Contains(t, bad.Items[0].Detail, "401")
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(CheckItem{Label: "API key", Status: StatusWarn})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"API key","status":"warn"}`, string(data))

	var item CheckItem
	require.NoError(t, json.Unmarshal([]byte(`{"label":"x","status":"fail"}`), &item))
	assert.Equal(t, StatusFail, item.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"maybe"}`), &item))
}

func TestRunAllAndSummary(t *testing.T) {
	results := RunAll(context.Background(), []Check{
		NewTemplateCheck("{{ .Input }}"),
		NewTemplateCheck("{{ .Input"),
		NewCredentialCheck(&config.Config{Provider: remote.ProviderEcho}),
	})

	require.Len(t, results, 3)
	assert.Equal(t, StatusPass, results[0].Items[0].Status)
	assert.Equal(t, StatusFail, results[1].Items[0].Status)

	passed, warned, failed := Summary(results)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 0, warned)
	assert.Equal(t, 1, failed)
}
