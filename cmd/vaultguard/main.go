// Package main is the entry point for the VaultGuard auth service.
package main

import (
	"os"

	"github.com/aussiebroadwan/vaultguard/internal/auth/app"
)

// Version information set at build time.
var version = app.BuildVersion

func main() {
	cmd := NewRootCmd()
	cmd.Version = version

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
