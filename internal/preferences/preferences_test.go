package preferences

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilaca/mr-enhancer/internal/domain"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileProvider_YAML(t *testing.T) {
	// Arrange
	path := write(t, "prefs.yaml", `
display_source_and_target_branches: false
base_jira_url: https://jira.example.com
copy_mr_info_format: "{MR_JIRA_TICKET_ID}: {MR_TITLE}"
`)

	// Act
	prefs, err := NewFileProvider(path).GetAll(context.Background())

	// Assert
	require.NoError(t, err)
	assert.False(t, prefs.DisplaySourceAndTargetBranches)
	assert.True(t, prefs.DisplayActionButtons, "absent keys keep defaults")
	assert.Equal(t, "https://jira.example.com", prefs.BaseJiraURL)
	assert.Equal(t, "{MR_JIRA_TICKET_ID}: {MR_TITLE}", prefs.CopyMRInfoFormat)
}

func TestFileProvider_JSONC(t *testing.T) {
	path := write(t, "prefs.jsonc", `{
	// show branches under each merge request
	"display_source_and_target_branches": true,
	"display_action_buttons": false,
	"base_jira_url": "https://jira.example.com/", /* trailing slash is fine */
}`)

	prefs, err := NewFileProvider(path).GetAll(context.Background())

	require.NoError(t, err)
	assert.True(t, prefs.DisplaySourceAndTargetBranches)
	assert.False(t, prefs.DisplayActionButtons)
	assert.Equal(t, "https://jira.example.com/", prefs.BaseJiraURL)
	assert.Equal(t, domain.DefaultCopyMRInfoFormat, prefs.CopyMRInfoFormat)
}

func TestFileProvider_MissingFile(t *testing.T) {
	prefs, err := NewFileProvider(filepath.Join(t.TempDir(), "none.yaml")).GetAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPreferences(), prefs)
}

func TestFileProvider_NoPath(t *testing.T) {
	prefs, err := NewFileProvider("").GetAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPreferences(), prefs)
}

func TestFileProvider_Invalid(t *testing.T) {
	path := write(t, "prefs.yaml", "display_source_and_target_branches: [not, a, bool]")

	_, err := NewFileProvider(path).GetAll(context.Background())

	assert.Error(t, err)
}

func TestFileProvider_UnsupportedExtension(t *testing.T) {
	path := write(t, "prefs.toml", "x = 1")

	_, err := NewFileProvider(path).GetAll(context.Background())

	assert.ErrorContains(t, err, "unsupported")
}
