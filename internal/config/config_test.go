package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the optional config file at a path that does not exist
// so a developer's ~/.mr-enhancer.yaml cannot leak into the tests.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("MR_ENHANCER_CONFIG", t.TempDir()+"/missing.yaml")
}

// TestLoad_DefaultPort tests loading config with default port.
// Follows AAA (Arrange, Act, Assert) pattern.
func TestLoad_DefaultPort(t *testing.T) {
	// Arrange
	isolate(t)
	t.Setenv("PORT", "")

	// Act
	cfg, err := Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
}

// TestLoad_CustomPort tests loading config with custom port from environment.
func TestLoad_CustomPort(t *testing.T) {
	// Arrange
	isolate(t)
	t.Setenv("PORT", "3000")

	// Act
	cfg, err := Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
}

// TestLoad_InvalidPort tests that invalid port falls back to default.
func TestLoad_InvalidPort(t *testing.T) {
	// Arrange
	isolate(t)
	t.Setenv("PORT", "invalid")

	// Act
	cfg, err := Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
}

// TestLoad_PollSettings tests the readiness poller defaults and overrides.
func TestLoad_PollSettings(t *testing.T) {
	// Arrange
	isolate(t)
	t.Setenv("POLL_MAX_ATTEMPTS", "")
	t.Setenv("POLL_INTERVAL", "250ms")

	// Act
	cfg, err := Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.PollMaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
}

// TestLoad_GitLabDefaults tests the GitLab URL fallback and token detection.
func TestLoad_GitLabDefaults(t *testing.T) {
	// Arrange
	isolate(t)
	t.Setenv("GITLAB_URL", "")
	t.Setenv("GITLAB_TOKEN", "glpat-test")

	// Act
	cfg, err := Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "https://gitlab.com", cfg.GitLabURL)
	assert.True(t, cfg.HasGitLabToken())
}
