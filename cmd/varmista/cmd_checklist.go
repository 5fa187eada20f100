package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yairfalse/varmista/checklist"
	"github.com/yairfalse/varmista/requirements"
)

var (
	checklistEnv string
	checklistApp string
	checklistOut string
)

// checklistCmd represents the checklist command
var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Generate the external dependency checklist",
	Long: `Generate a markdown checklist of every external dependency the
deployment requires, with validation criteria and creation commands for
operator review.`,
	Example: `  varmista checklist --env Development --app TrialFinderV2
  varmista checklist --env Production --app TrialFinderV2 --out PREFLIGHT.md`,
	RunE: runChecklist,
}

func init() {
	rootCmd.AddCommand(checklistCmd)

	checklistCmd.Flags().StringVarP(&checklistEnv, "env", "e", "", "Environment name from the manifest")
	checklistCmd.Flags().StringVarP(&checklistApp, "app", "a", "", "Application name from the manifest")
	checklistCmd.Flags().StringVar(&checklistOut, "out", "", "Write to file instead of stdout")
	_ = checklistCmd.MarkFlagRequired("env")
	_ = checklistCmd.MarkFlagRequired("app")
}

func runChecklist(cmd *cobra.Command, args []string) error {
	_, dctx, err := buildContext(checklistEnv, checklistApp)
	if err != nil {
		return err
	}

	doc, err := checklist.Render(requirements.NewECSServiceRegistry(), dctx)
	if err != nil {
		return err
	}

	if checklistOut != "" {
		return os.WriteFile(checklistOut, []byte(doc), 0o644)
	}
	fmt.Print(doc)
	return nil
}
