package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/varmista/naming"
)

var (
	namesEnv     string
	namesApp     string
	namesKind    string
	namesPurpose string
)

// namesCmd represents the names command
var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "Derive canonical resource names",
	Long: `Derive the canonical name for one resource, or list the names of
every resource kind for the deployment, exactly as the validator and the
remediation commands will derive them.`,
	Example: `  varmista names --env Development --app TrialFinderV2
  varmista names --env Production --app TrialFinderV2 --kind iam-role --purpose task-exec`,
	RunE: runNames,
}

func init() {
	rootCmd.AddCommand(namesCmd)

	namesCmd.Flags().StringVarP(&namesEnv, "env", "e", "", "Environment name from the manifest")
	namesCmd.Flags().StringVarP(&namesApp, "app", "a", "", "Application name from the manifest")
	namesCmd.Flags().StringVarP(&namesKind, "kind", "k", "", "Resource kind, e.g. iam-role")
	namesCmd.Flags().StringVarP(&namesPurpose, "purpose", "p", "main", "Resource purpose token")
	_ = namesCmd.MarkFlagRequired("env")
	_ = namesCmd.MarkFlagRequired("app")
}

func runNames(cmd *cobra.Command, args []string) error {
	_, dctx, err := buildContext(namesEnv, namesApp)
	if err != nil {
		return err
	}

	purpose, err := naming.PurposeFromString(namesPurpose)
	if err != nil {
		return err
	}

	if namesKind != "" {
		kind, ok := naming.KindFromString(namesKind)
		if !ok {
			return fmt.Errorf("unknown resource kind %q", namesKind)
		}
		name, err := dctx.Name(kind, purpose)
		if err != nil {
			return err
		}
		fmt.Println(name)
		return nil
	}

	for _, kind := range naming.AllKinds() {
		name, err := dctx.Name(kind, purpose)
		if err != nil {
			// Some kinds cannot hold every purpose within their length limit.
			fmt.Printf("%-20s (unavailable: %v)\n", kind, err)
			continue
		}
		fmt.Printf("%-20s %s\n", kind, name)
	}
	return nil
}
