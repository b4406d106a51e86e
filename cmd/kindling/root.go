// Root command for the kindling CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kindling/internal/paths"
	"github.com/mesh-intelligence/kindling/pkg/kindling"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
)

var rootCmd = &cobra.Command{
	Use:          "kindling",
	Short:        "Kindling tracks side-project ideas through experiments to an archive",
	Version:      kindling.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.kindling-data)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}

// resolveConfigDir returns the configuration directory following the
// precedence chain: --config-dir flag > KINDLING_CONFIG_DIR env > default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// resolveDataDir returns the data directory following the precedence
// chain: --data-dir flag > config.yaml data_dir > KINDLING_DATA_DIR env
// > default $(CWD)/.kindling-data.
func resolveDataDir(configValue string) (string, error) {
	return paths.ResolveDataDir(flagDataDir, configValue)
}
