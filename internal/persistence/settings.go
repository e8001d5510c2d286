package persistence

import (
	"encoding/json"
	"log/slog"
)

const settingsKey = "settings"

// Settings are the player-facing options. Enum fields are normalized to a
// recognized value on load.
type Settings struct {
	AutoSave         bool   `json:"autoSave"`
	AutoSaveInterval int    `json:"autoSaveInterval"` // seconds: 15, 30, 60 or 300
	GridSize         string `json:"gridSize"`         // small, medium, large
	Animations       bool   `json:"animations"`
	SoundEffects     bool   `json:"soundEffects"`
	Notifications    bool   `json:"notifications"`
	Theme            string `json:"theme"`
	Language         string `json:"language"`
}

// DefaultSettings returns the out-of-box configuration.
func DefaultSettings() Settings {
	return Settings{
		AutoSave:         true,
		AutoSaveInterval: 60,
		GridSize:         "medium",
		Animations:       true,
		SoundEffects:     true,
		Notifications:    true,
		Theme:            "dark",
		Language:         "en",
	}
}

// Normalize clamps enum fields to recognized values.
func (s *Settings) Normalize() {
	switch s.AutoSaveInterval {
	case 15, 30, 60, 300:
	default:
		s.AutoSaveInterval = 60
	}
	switch s.GridSize {
	case "small", "medium", "large":
	default:
		s.GridSize = "medium"
	}
	if s.Theme == "" {
		s.Theme = "dark"
	}
	if s.Language == "" {
		s.Language = "en"
	}
}

// LoadSettings reads settings from the store, falling back to defaults on
// absence or corruption.
func LoadSettings(store Store) Settings {
	settings := DefaultSettings()

	data, ok, err := store.Get(settingsKey)
	if err != nil {
		slog.Error("settings read failed", "error", err)
		return settings
	}
	if !ok {
		return settings
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		slog.Warn("settings corrupt, using defaults", "error", err)
		return DefaultSettings()
	}
	settings.Normalize()
	return settings
}

// SaveSettings writes settings to the store. Reports success.
func SaveSettings(store Store, settings Settings) bool {
	settings.Normalize()
	data, err := json.Marshal(settings)
	if err != nil {
		slog.Error("settings marshal failed", "error", err)
		return false
	}
	if err := store.Set(settingsKey, data); err != nil {
		slog.Error("settings write failed", "error", err)
		return false
	}
	return true
}
