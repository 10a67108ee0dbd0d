// Package preferences loads the user's enhancer settings.
package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/vilaca/mr-enhancer/internal/domain"
)

// Provider returns the stored preferences. It is called once per run.
type Provider interface {
	GetAll(ctx context.Context) (domain.Preferences, error)
}

// FileProvider reads preferences from a YAML or JSON (with comments) file.
// Keys absent from the file keep their default values.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for path. An empty path yields defaults.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// GetAll reads the file. A missing file is not an error.
func (p *FileProvider) GetAll(ctx context.Context) (domain.Preferences, error) {
	prefs := domain.DefaultPreferences()
	if p.path == "" {
		return prefs, nil
	}

	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return prefs, fmt.Errorf("failed to read preferences: %w", err)
	}

	switch strings.ToLower(filepath.Ext(p.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &prefs)
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), &prefs)
	default:
		return prefs, fmt.Errorf("unsupported preferences format %q", filepath.Ext(p.path))
	}
	if err != nil {
		return domain.DefaultPreferences(), fmt.Errorf("failed to parse preferences %s: %w", p.path, err)
	}

	if prefs.CopyMRInfoFormat == "" {
		prefs.CopyMRInfoFormat = domain.DefaultCopyMRInfoFormat
	}
	return prefs, nil
}

// Static always returns the same preferences.
type Static domain.Preferences

// GetAll returns the preferences.
func (s Static) GetAll(ctx context.Context) (domain.Preferences, error) {
	return domain.Preferences(s), nil
}
