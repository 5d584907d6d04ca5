package store

import (
	"errors"
	"fmt"

	"finbook/internal/core"
	"finbook/internal/log"
)

// KeyMonthlyLimit is the protected setting holding the monthly spending
// limit. Zero means no limit.
const KeyMonthlyLimit = "monthly_limit"

// ErrProtectedSetting is returned when deleting a default setting key.
var ErrProtectedSetting = errors.New("cannot delete protected setting")

// defaultSettings is the baseline every load is merged over, so default
// keys are always present even when the file predates them.
func defaultSettings() map[string]any {
	return map[string]any{
		KeyMonthlyLimit: 0.0,
	}
}

// SettingsStore owns the persisted key → value configuration mapping.
type SettingsStore struct {
	path     string
	logger   *log.Logger
	settings map[string]any
}

// NewSettingsStore loads the settings file, applying defaults first and
// loaded values on top. A missing file is created with pure defaults; an
// unreadable or corrupt file is overwritten with defaults (self-healing)
// and the load error is returned for reporting.
func NewSettingsStore(path string, logger *log.Logger) (*SettingsStore, error) {
	s := &SettingsStore{
		path:     path,
		logger:   logger.WithComponent(log.ComponentSettings),
		settings: defaultSettings(),
	}
	if err := ensureFile(path, s.settings); err != nil {
		return s, err
	}
	if err := s.load(); err != nil {
		s.settings = defaultSettings()
		s.logger.Warn("Failed to load settings, resetting to defaults",
			log.FieldFile, path, log.FieldError, err)
		if saveErr := s.save(); saveErr != nil {
			return s, saveErr
		}
		return s, err
	}
	return s, nil
}

func (s *SettingsStore) load() error {
	loaded := map[string]any{}
	if err := readJSON(s.path, &loaded); err != nil {
		return err
	}
	merged := defaultSettings()
	for k, v := range loaded {
		merged[k] = v
	}
	s.settings = merged
	return nil
}

func (s *SettingsStore) save() error {
	return writeJSON(s.path, s.settings)
}

// Get returns the value for key, or fallback when absent.
func (s *SettingsStore) Get(key string, fallback any) any {
	if v, ok := s.settings[key]; ok {
		return v
	}
	return fallback
}

// Set stores the value and persists.
func (s *SettingsStore) Set(key string, value any) error {
	s.settings[key] = value
	if err := s.save(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.logger.Debug("Setting updated", log.FieldSettingKey, key)
	return nil
}

// MonthlyLimit returns the monthly spending limit, 0 when unset or when
// the stored value is not numeric.
func (s *SettingsStore) MonthlyLimit() float64 {
	return coerceFloat(s.settings[KeyMonthlyLimit])
}

// SetMonthlyLimit validates and persists the limit. Negative values are
// rejected before any state changes.
func (s *SettingsStore) SetMonthlyLimit(limit float64) error {
	if limit < 0 {
		return core.ErrNegativeLimit
	}
	return s.Set(KeyMonthlyLimit, limit)
}

// Delete removes a key and persists. Protected default keys cannot be
// deleted; deleting an absent key is a no-op success.
func (s *SettingsStore) Delete(key string) error {
	if _, protected := defaultSettings()[key]; protected {
		return fmt.Errorf("%w: %s", ErrProtectedSetting, key)
	}
	if _, ok := s.settings[key]; !ok {
		return nil
	}
	delete(s.settings, key)
	if err := s.save(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.logger.Debug("Setting deleted", log.FieldSettingKey, key)
	return nil
}

// UpdateMany merges a batch of values into the settings and persists once.
func (s *SettingsStore) UpdateMany(values map[string]any) error {
	for k, v := range values {
		s.settings[k] = v
	}
	if err := s.save(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.logger.Debug("Settings updated", log.FieldCount, len(values))
	return nil
}

// ResetToDefaults discards all keys, restores the baseline and persists.
func (s *SettingsStore) ResetToDefaults() error {
	s.settings = defaultSettings()
	if err := s.save(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.logger.Info("Settings reset to defaults")
	return nil
}

// All returns a copy of the current settings.
func (s *SettingsStore) All() map[string]any {
	out := make(map[string]any, len(s.settings))
	for k, v := range s.settings {
		out[k] = v
	}
	return out
}

// coerceFloat converts the numeric representations that reach the store
// (JSON numbers decode as float64, callers may pass ints) to float64.
func coerceFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
