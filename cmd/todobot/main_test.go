package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExec(t *testing.T) {
	t.Setenv("TODOBOT_REPOSITORY_TYPE", "inmemory")

	out, err := runCLI(t, "exec", "--user", "42", "add", "купить", "хлеб")
	require.NoError(t, err)
	assert.Equal(t, "✅ Задача 1 добавлена\n", out)

	out, err = runCLI(t, "exec", "-u", "42", "/start")
	require.NoError(t, err)
	assert.Contains(t, out, "/add <текст>")

	out, err = runCLI(t, "exec", "-u", "42", "done", "-1")
	assert.Error(t, err)
	assert.Contains(t, out, "Номер задачи")
}

func TestExec_RequiresUser(t *testing.T) {
	_, err := runCLI(t, "exec", "list")
	assert.Error(t, err)

	for _, user := range []string{"", "   "} {
		out, err := runCLI(t, "exec", "--user", user, "add", "задача")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--user")
		assert.NotContains(t, out, "добавлена")
	}
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("numbering:\n  mode: nonsense\n"), 0o600))

	_, err := runCLI(t, "--config", path, "exec", "-u", "1", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonsense")
}

func TestMigrate_RequiresURL(t *testing.T) {
	t.Setenv("TODOBOT_DATABASE_URL", "")
	_, err := runCLI(t, "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url")
}
