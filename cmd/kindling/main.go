// Package main provides the kindling CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, types.ErrConfiguration) || errors.Is(err, types.ErrValidation) {
			os.Exit(exitUserError)
		}
		os.Exit(exitSysError)
	}
}
