package config

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// DefaultDir is the directory the configuration is read from when none is
// given.
func DefaultDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Load loads the configuration from the directory on the local filesystem.
func Load(path string) (*Configuration, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs loads the configuration from the directory in fsys. Settings missing
// from the file keep their default values. If the file doesn't exist the
// defaults are returned.
func LoadFs(fsys afero.Fs, path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	out := defaultConfig()
	out.configFs = fsys

	configContents, err := afero.ReadFile(fsys, filepath.Join(path, ConfigurationName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return out, nil
	case err != nil:
		return nil, err
	}

	if err := yaml.UnmarshalStrict(configContents, out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
