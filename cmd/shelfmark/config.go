// Config loading for the shelfmark CLI. A default config.yaml is written
// to the config directory on first run.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/shelfmark/internal/fetch"
	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDatabasePath   = "zotero.database_path"
	cfgKeyStorageDir     = "zotero.storage_dir"
	cfgKeyLibraryID      = "zotero.library_id"
	cfgKeyConnectorURL   = "connector.url"
	cfgKeyFetchOrder     = "fetch.order"
	cfgKeyFetchTimeout   = "fetch.timeout_seconds"
	cfgKeyUnpaywallEmail = "fetch.unpaywall_email"
	cfgKeyLogLevel       = "log.level"
)

// defaultConfigYAML is written to config.yaml on first run. Every key is
// optional; unset values fall back to auto-detection or defaults.
const defaultConfigYAML = `# Shelfmark configuration

zotero:
  # Path to zotero.sqlite (default: auto-detect per platform)
  # database_path:
  # Attachment storage directory (default: "storage" next to the database)
  # storage_dir:
  # library_id: 1

connector:
  # url: http://127.0.0.1:23119

fetch:
  # Provider order for document acquisition
  # order: [arxiv, open_access, scihub, annas_archive, libgen, publisher]
  # timeout_seconds: 60
  # Contact address sent to the Unpaywall API
  # unpaywall_email:

log:
  # level: warn
`

// loadConfig reads config.yaml from the config directory, creating the
// directory and a default file on first run. A missing config.yaml is
// not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyLibraryID, types.DefaultLibraryID)
	v.SetDefault(cfgKeyConnectorURL, types.DefaultConnectorURL)
	v.SetDefault(cfgKeyFetchTimeout, int(fetch.DefaultTimeout.Seconds()))
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
