package commands

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/palaver/internal/commands/doctor"
	"github.com/hay-kot/palaver/internal/remote"
)

func TestDoctorCmd_JSON(t *testing.T) {
	app, flags, out := newTestApp(t, remote.Echo{})
	flags.ConfigPath = filepath.Join(t.TempDir(), "missing.yaml")
	app = NewDoctorCmd(flags).Register(app)

	err := app.Run(context.Background(), []string{"palaver", "doctor", "--format", "json", "--ping"})
	require.NoError(t, err)

	var got struct {
		Healthy bool            `json:"healthy"`
		Summary summaryJSON     `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))

	assert.True(t, got.Healthy)
	assert.Equal(t, 1, got.Summary.Warned, "missing config file")
	assert.Equal(t, 0, got.Summary.Failed)

	names := make([]string, 0, len(got.Checks))
	for _, c := range got.Checks {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Configuration", "Credentials", "Prompt Template", "Provider"}, names)
}

func decodeDoctor(t *testing.T, data []byte) (bool, summaryJSON, []doctor.Result) {
	t.Helper()
	var got struct {
		Healthy bool            `json:"healthy"`
		Summary summaryJSON     `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	return got.Healthy, got.Summary, got.Checks
}

func TestDoctorCmd_JSONFailureExitCode(t *testing.T) {
	failing := remote.Func(func(context.Context, string) (remote.Result, error) {
		return remote.Result{}, errors.New("401 unauthorized")
	})
	app, flags, out := newTestApp(t, failing)
	flags.ConfigPath = filepath.Join(t.TempDir(), "missing.yaml")
	app = NewDoctorCmd(flags).Register(app)

	err := app.Run(context.Background(), []string{"palaver", "doctor", "--format", "json", "--ping"})

	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())

	healthy, summary, _ := decodeDoctor(t, out.Bytes())
	assert.False(t, healthy)
	assert.Equal(t, 1, summary.Failed)
}

func TestDoctorCmd_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: openai\n"), 0o644))

	app, _, out := newTestApp(t, nil)
	flags := &Flags{ConfigPath: path, DataDir: t.TempDir()}
	require.NoError(t, flags.Setup("doctor"))
	app = NewDoctorCmd(flags).Register(app)

	err := app.Run(context.Background(), []string{"palaver", "doctor", "--format", "json"})

	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)

	healthy, _, checks := decodeDoctor(t, out.Bytes())
	assert.False(t, healthy)
	require.NotEmpty(t, checks)

	var providerItem *doctor.CheckItem
	for i, item := range checks[0].Items {
		if item.Label == "provider" {
			providerItem = &checks[0].Items[i]
		}
	}
	require.NotNil(t, providerItem, "provider field error reported")
	assert.Equal(t, doctor.StatusFail, providerItem.Status)
	assert.Contains(t, providerItem.Detail, "openai")
}
