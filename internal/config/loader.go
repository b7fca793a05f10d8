package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file name inside the user directory.
const FileName = "settings.yaml"

// Load loads the settings and reports which file they came from.
// Search order: customPath -> ~/.pyoro/settings.yaml -> ./configs/settings.yaml -> embedded default.
// The returned path is empty when the embedded default was used.
func Load(customPath string) (Settings, string, error) {
	// Try custom path first
	if customPath != "" {
		cfg, err := loadFile(customPath)
		if err != nil {
			return cfg, "", err
		}
		return cfg, customPath, nil
	}

	// Try user config directory
	if userCfgPath := UserPath(); userCfgPath != "" {
		if cfg, err := loadFile(userCfgPath); err == nil {
			return cfg, userCfgPath, nil
		}
	}

	// Try local configs directory
	local := filepath.Join("configs", FileName)
	if cfg, err := loadFile(local); err == nil {
		return cfg, local, nil
	}

	// Use embedded default YAML
	cfg, err := parse(defaultSettingsYAML)
	if err != nil {
		return DefaultSettings(), "", nil // Fallback to hardcoded if embed fails
	}
	return cfg, "", nil
}

func loadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultSettings(), fmt.Errorf("config: cannot read %s: %w", path, err)
	}
	cfg, err := parse(data)
	if err != nil {
		return DefaultSettings(), fmt.Errorf("config: cannot parse %s: %w", path, err)
	}
	return cfg, nil
}

// parse decodes YAML over the defaults so missing keys keep their default.
func parse(data []byte) (Settings, error) {
	cfg := DefaultSettings()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes the settings to path, creating its directory.
// An empty path saves to the user directory.
func Save(path string, s Settings) error {
	if path == "" {
		path = UserPath()
		if path == "" {
			return fmt.Errorf("config: no home directory to save settings in")
		}
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: cannot encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: cannot create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: cannot write %s: %w", path, err)
	}
	return nil
}

// UserDir returns ~/.pyoro, or empty if home is unavailable.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pyoro")
}

// UserPath returns the path to the user settings file, or empty if home is unavailable.
func UserPath() string {
	dir := UserDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, FileName)
}
