// Config loading for the kindling CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys.
	cfgKeyBackend    = "backend"
	cfgKeyDataDir    = "data_dir"
	cfgKeyAddr       = "addr"
	cfgKeyDBHost     = "database.host"
	cfgKeyDBPort     = "database.port"
	cfgKeyDBUser     = "database.user"
	cfgKeyDBPassword = "database.password"
	cfgKeyDBName     = "database.name"
	cfgKeyDBPath     = "database.path"

	// Default backend.
	defaultBackend = types.BackendFile
)

// envKeyReplacer maps nested config keys onto environment variable
// names: database.password becomes KINDLING_DATABASE_PASSWORD.
var envKeyReplacer = strings.NewReplacer(".", "_")

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Kindling configuration

# Storage backend: file, sqlite, or postgres
backend: file

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# HTTP listen address
# addr: :8080

# Relational backend settings (sqlite uses path; postgres uses the rest)
# database:
#   host:
#   port: 5432
#   user: postgres
#   password:
#   name: kindling
#   path:
`

// loadConfig reads config.yaml from the resolved config directory using
// Viper. It creates the config directory and a default config.yaml on
// first run. Database credentials may come from KINDLING_DATABASE_*
// environment variables instead of the file.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyAddr, ":8080")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	// KINDLING_DATABASE_PASSWORD overrides database.password and so on,
	// keeping credentials out of the config file.
	v.SetEnvPrefix("KINDLING")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Missing config.yaml is not an error.
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// buildConfig assembles the typed configuration from viper values and
// the resolved data directory.
func buildConfig(v *viper.Viper, dataDir string) types.Config {
	return types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: dataDir,
		Database: types.DatabaseConfig{
			Host:     v.GetString(cfgKeyDBHost),
			Port:     v.GetInt(cfgKeyDBPort),
			User:     v.GetString(cfgKeyDBUser),
			Password: v.GetString(cfgKeyDBPassword),
			Name:     v.GetString(cfgKeyDBName),
			Path:     v.GetString(cfgKeyDBPath),
		},
	}
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file
// does not exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		// File already exists.
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
