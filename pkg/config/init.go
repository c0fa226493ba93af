package config

import (
	"fmt"
	"os"
)

// InitConfig writes a sample configuration file at the default location.
// Returns the path written.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	return path, InitConfigToPath(path, force)
}

// InitConfigToPath writes a sample configuration file at path. Unless
// force is set, an existing file is left untouched.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	cfg := GetDefaultConfig()
	if err := SaveConfig(cfg, path); err != nil {
		return err
	}
	return nil
}
