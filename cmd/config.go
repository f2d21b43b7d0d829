package cmd

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/voicerec/voicerec/pkg/config"
	"github.com/voicerec/voicerec/pkg/logging"
)

// loadConfig reads the configuration file, generating a default one on first
// run and persisting any version migration back to disk.
func loadConfig(fs afero.Fs, cfgFile string, logger *logging.Logger) (*config.Config, error) {
	exists, err := afero.Exists(fs, cfgFile)
	if err != nil {
		return nil, err
	}

	if !exists {
		cfg := config.Default(filepath.Dir(cfgFile))
		if err := cfg.Save(fs, cfgFile); err != nil {
			return nil, err
		}
		logger.Info("generated default configuration", "config-file", cfgFile)
		return cfg, nil
	}

	cfg, migrated, err := config.Load(fs, cfgFile)
	if err != nil {
		return nil, err
	}
	if migrated {
		if err := cfg.Save(fs, cfgFile); err != nil {
			return nil, err
		}
		logger.Info("migrated configuration", "config-file", cfgFile, "version", cfg.Version)
	}
	return cfg, nil
}
