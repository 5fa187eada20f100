package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/varmista/config"
	"github.com/yairfalse/varmista/sizing"
)

var (
	sizingEnv    string
	sizingApp    string
	sizingOutput string
)

// sizingCmd represents the sizing command
var sizingCmd = &cobra.Command{
	Use:   "sizing",
	Short: "Show the sizing profile for an environment",
	Long: `Show the complete sizing profile an environment's class selects,
with the application's overrides applied when --app is given. Unknown
environment names resolve to the minimal non-production profile.`,
	Example: `  varmista sizing --env Production
  varmista sizing --env Development --app TrialFinderV2 -o json`,
	RunE: runSizing,
}

func init() {
	rootCmd.AddCommand(sizingCmd)

	sizingCmd.Flags().StringVarP(&sizingEnv, "env", "e", "", "Environment name")
	sizingCmd.Flags().StringVarP(&sizingApp, "app", "a", "", "Application name from the manifest (applies overrides)")
	sizingCmd.Flags().StringVarP(&sizingOutput, "output", "o", "table", "Output format: table, json")
	_ = sizingCmd.MarkFlagRequired("env")
}

func runSizing(cmd *cobra.Command, args []string) error {
	profile, err := resolveSizingProfile(sizingEnv, sizingApp)
	if err != nil {
		return err
	}

	switch sizingOutput {
	case "json":
		out, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case "table":
		printProfile(profile)
	default:
		return fmt.Errorf("invalid output format: %s (must be one of: table, json)", sizingOutput)
	}
	return nil
}

// resolveSizingProfile prefers the manifest's declared class for the
// environment over the well-known-name table, so an environment declared
// with class prod never falls back to the nonprod profile. The name-table
// fallback remains for environments outside any manifest.
func resolveSizingProfile(envName, appName string) (sizing.Profile, error) {
	if appName != "" {
		_, dctx, err := buildContext(envName, appName)
		if err != nil {
			return sizing.Profile{}, err
		}
		profile := sizing.ForClass(dctx.Environment.Class)
		return sizing.ApplyOverride(profile, dctx.Application.SizingOverride), nil
	}

	if cfg, err := config.Load(cfgPath); err == nil {
		if env, err := cfg.EnvironmentDescriptor(envName); err == nil {
			return sizing.ForClass(env.Class), nil
		}
	}
	return sizing.ForEnvironment(envName), nil
}

func printProfile(p sizing.Profile) {
	fmt.Printf("%-22s %s\n", "instance type", p.InstanceType)
	fmt.Printf("%-22s %d / %d / %d\n", "capacity (min/des/max)", p.MinCapacity, p.DesiredCapacity, p.MaxCapacity)
	fmt.Printf("%-22s %s\n", "db instance class", p.DBInstanceClass)
	fmt.Printf("%-22s %d MB\n", "lambda memory", p.LambdaMemoryMB)
	fmt.Printf("%-22s %d cpu / %d MB\n", "task", p.TaskCPU, p.TaskMemoryMB)
	fmt.Printf("%-22s %s\n", "cache node type", p.CacheNodeType)
	fmt.Printf("%-22s %s\n", "search instance type", p.SearchInstanceType)
	fmt.Printf("%-22s %t\n", "high availability", p.HighAvailability)
	fmt.Printf("%-22s %d days\n", "backup retention", p.BackupRetentionDays)
}
