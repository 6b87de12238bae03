package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	t.Setenv("UT_STRING", "  value ")
	t.Setenv("UT_INT", "42")
	t.Setenv("UT_BAD_INT", "forty")
	t.Setenv("UT_BOOL", "true")
	t.Setenv("UT_DURATION", "1500ms")
	t.Setenv("UT_SECONDS", "15")

	assert.Equal(t, "value", GetEnv("UT_STRING"))
	assert.Equal(t, "value", GetStringOrDefault("UT_STRING", "x"))
	assert.Equal(t, "x", GetStringOrDefault("UT_MISSING", "x"))

	assert.Equal(t, int64(42), GetIntEnv("UT_INT"))
	assert.Equal(t, int64(0), GetIntEnv("UT_MISSING"))
	assert.Equal(t, 42, GetIntOrDefault("UT_INT", 1))
	assert.Equal(t, 1, GetIntOrDefault("UT_BAD_INT", 1))

	assert.True(t, GetBoolOrDefault("UT_BOOL", false))
	assert.True(t, GetBoolOrDefault("UT_BAD_INT", true))

	assert.Equal(t, 1500*time.Millisecond, GetDurationOrDefault("UT_DURATION", time.Second))
	assert.Equal(t, 15*time.Second, GetDurationOrDefault("UT_SECONDS", time.Second))
	assert.Equal(t, time.Second, GetDurationOrDefault("UT_BAD_INT", time.Second))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	assert.Error(t, LoadEnv("test"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("UT_FROM_FILE=mode\nUT_KEEP=file\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("UT_FROM_FILE=base\nUT_BASE_ONLY=base\n"), 0o600))
	t.Setenv("UT_KEEP", "env")
	t.Setenv("UT_FROM_FILE", "")
	os.Unsetenv("UT_FROM_FILE")
	t.Setenv("UT_BASE_ONLY", "")
	os.Unsetenv("UT_BASE_ONLY")

	require.NoError(t, LoadEnv("test"))
	assert.Equal(t, "mode", os.Getenv("UT_FROM_FILE"))
	assert.Equal(t, "base", os.Getenv("UT_BASE_ONLY"))
	assert.Equal(t, "env", os.Getenv("UT_KEEP"))
}
