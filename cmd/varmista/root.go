package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"

	cfgPath string
	debug   bool

	rootCmd = &cobra.Command{
		Use:   "varmista",
		Short: "Deployment preflight governance",
		Long: `Varmista - Deployment Preflight Governance

Varmista verifies that every external dependency a deployment assumes
exists actually exists, is named canonically, and is configured the way
the deployment needs it - before anything is deployed.

Derive canonical resource names, inspect sizing policy, validate live
accounts, and generate operator checklists.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// The report already told the operator everything on a failed
		// preflight; only unexpected errors need printing here.
		if !errors.Is(err, errPreflightFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`Varmista {{.Version}} - Deployment Preflight Governance
`)
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "varmista.yaml", "Deployment manifest path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	cobra.OnInitialize(func() {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		if debug {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	})
}
