package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("PALAVER_DOTENV_TEST_PROVIDER=echo\nPALAVER_DOTENV_TEST_MODEL=from-file\n"), 0o644))
	t.Chdir(dir)

	t.Setenv("PALAVER_DOTENV_TEST_MODEL", "from-shell")
	t.Cleanup(func() { _ = os.Unsetenv("PALAVER_DOTENV_TEST_PROVIDER") })

	loadDotEnv()

	assert.Equal(t, "echo", os.Getenv("PALAVER_DOTENV_TEST_PROVIDER"))
	assert.Equal(t, "from-shell", os.Getenv("PALAVER_DOTENV_TEST_MODEL"), "shell wins over .env")
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.NotPanics(t, loadDotEnv)
}
