package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration into dir.
func Initialize(dir string, logger *log.Logger) error {
	return InitializeFs(afero.NewOsFs(), dir, logger)
}

// InitializeFs writes the default configuration into dir on fsys. An existing
// configuration is left untouched.
func InitializeFs(fsys afero.Fs, dir string, logger *log.Logger) error {
	logger.Printf("Initializing configuration in %s\n", dir)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return err
	}

	configPath := filepath.Join(dir, ConfigurationName)
	exists, err := afero.Exists(fsys, configPath)
	if err != nil {
		return err
	}
	if exists {
		logger.Printf("- %s already exists, skipping\n", configPath)
		return nil
	}

	logger.Printf("- Writing %s\n", configPath)
	if err := afero.WriteFile(fsys, configPath, defaultConfigData, os.FileMode(0644)); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	return nil
}
