package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNewEnvService_LoadsAndOverlays(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "E2E_TEST_ENV_A=base\nE2E_TEST_ENV_B=base\n")
	writeFile(t, filepath.Join(dir, ".env.ci"), "E2E_TEST_ENV_B=ci\n")

	t.Setenv("APP_ENV", "ci")
	t.Setenv("E2E_TEST_ENV_A", "")
	t.Setenv("E2E_TEST_ENV_B", "")
	os.Unsetenv("E2E_TEST_ENV_A")
	os.Unsetenv("E2E_TEST_ENV_B")

	svc, err := NewEnvService(dir)
	require.NoError(t, err)

	assert.Equal(t, "ci", svc.AppEnv())
	assert.Len(t, svc.Loaded(), 2)
	assert.Equal(t, "base", os.Getenv("E2E_TEST_ENV_A"))
	assert.Equal(t, "ci", os.Getenv("E2E_TEST_ENV_B"))
}

func TestNewEnvService_MissingFilesAreFine(t *testing.T) {
	t.Setenv("APP_ENV", "")
	svc, err := NewEnvService(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "dev", svc.AppEnv())
	assert.Empty(t, svc.Loaded())
}

func TestEnvService_GetBool(t *testing.T) {
	svc := &EnvService{}
	t.Setenv("E2E_TEST_BOOL", "true")
	t.Setenv("E2E_TEST_BAD_BOOL", "sometimes")

	assert.True(t, svc.GetBool("E2E_TEST_BOOL", false))
	assert.True(t, svc.GetBool("E2E_TEST_BAD_BOOL", true))
	assert.False(t, svc.GetBool("E2E_TEST_UNSET_BOOL", false))
}
