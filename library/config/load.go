// Package config loads the yaml settings file into the shared configuration.
package config

import (
	"path/filepath"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/amc-site/library/log"
)

// Load loads settings from cfgPath and records its directory as `cfg_dir`,
// relative credential paths are resolved against it.
func Load(cfgPath string) error {
	gconfig.Shared.Set("cfg_dir", filepath.Dir(cfgPath))
	if err := gconfig.Shared.LoadFromFile(cfgPath); err != nil {
		return errors.Wrapf(err, "load configuration %q", cfgPath)
	}

	return nil
}

// LoadFromFile is Load that panics on error.
func LoadFromFile(cfgPath string) {
	if err := Load(cfgPath); err != nil {
		log.Logger.Panic("load configuration",
			zap.Error(err),
			zap.String("config", cfgPath))
	}

	log.Logger.Info("load configuration",
		zap.String("config", cfgPath))
}

// ResolvePath joins a relative path with the configuration directory.
func ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(gconfig.Shared.GetString("cfg_dir"), path)
}
