// Version command for the kindling CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kindling/pkg/kindling"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the kindling version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("kindling", kindling.Version)
	},
}
