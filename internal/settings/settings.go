// Package settings persists the application settings blob.
package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/techtracker/internal/model"
)

// Key is the blob key the settings are stored under.
const Key = "appSettings"

// Blobs is the storage the settings need.
type Blobs interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Manager loads and saves model.Settings.
type Manager struct {
	blobs  Blobs
	logger *zap.Logger
}

// NewManager creates a Manager. A nil logger discards output.
func NewManager(blobs Blobs, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{blobs: blobs, logger: logger}
}

// Load returns the stored settings. Missing fields keep their defaults and
// unknown enum values fall back to the default. A blob that is not valid JSON
// yields the defaults.
func (m *Manager) Load(ctx context.Context) (model.Settings, error) {
	data, found, err := m.blobs.Load(ctx, Key)
	if err != nil {
		return model.DefaultSettings(), fmt.Errorf("loading settings: %w", err)
	}
	if !found {
		return model.DefaultSettings(), nil
	}

	s := model.DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		m.logger.Warn("ignoring unreadable settings", zap.Error(err))
		return model.DefaultSettings(), nil
	}
	return s.Normalize(), nil
}

// Save normalizes s and writes it.
func (m *Manager) Save(ctx context.Context, s model.Settings) (model.Settings, error) {
	s = s.Normalize()
	data, err := json.Marshal(s)
	if err != nil {
		return s, fmt.Errorf("encoding settings: %w", err)
	}
	if err := m.blobs.Save(ctx, Key, data); err != nil {
		return s, fmt.Errorf("saving settings: %w", err)
	}
	m.logger.Debug("saved settings", zap.String("theme", string(s.Theme)))
	return s, nil
}

// Reset restores and saves the defaults.
func (m *Manager) Reset(ctx context.Context) (model.Settings, error) {
	return m.Save(ctx, model.DefaultSettings())
}

// Set updates one setting by name from its textual value.
func (m *Manager) Set(ctx context.Context, name, value string) (model.Settings, error) {
	s, err := m.Load(ctx)
	if err != nil {
		return s, err
	}
	if err := Apply(&s, name, value); err != nil {
		return s, err
	}
	return m.Save(ctx, s)
}
