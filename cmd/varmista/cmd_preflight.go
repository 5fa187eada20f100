package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yairfalse/varmista/config"
	"github.com/yairfalse/varmista/deploy"
	"github.com/yairfalse/varmista/preflight"
	"github.com/yairfalse/varmista/requirements"
	"github.com/yairfalse/varmista/telemetry"
	"github.com/yairfalse/varmista/validator"
)

var (
	preflightEnv string
	preflightApp string
)

// preflightCmd represents the preflight command
var preflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Validate external dependencies before deploying",
	Long: `Validate every external dependency the deployment assumes exists:
identity roles, shared clusters, artifact buckets. All requirements are
checked in one pass so the report is complete, not first-failure.

Exits non-zero when any required dependency is missing or misconfigured.`,
	Example: `  varmista preflight --env Development --app TrialFinderV2
  varmista preflight -c deploy/varmista.yaml --env Production --app TrialFinderV2`,
	RunE:          runPreflight,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// errPreflightFailed signals the non-zero exit without bypassing deferred
// cleanup; exiting directly here would drop the final telemetry flush.
var errPreflightFailed = errors.New("preflight failed")

func init() {
	rootCmd.AddCommand(preflightCmd)

	preflightCmd.Flags().StringVarP(&preflightEnv, "env", "e", "", "Environment name from the manifest")
	preflightCmd.Flags().StringVarP(&preflightApp, "app", "a", "", "Application name from the manifest")
	_ = preflightCmd.MarkFlagRequired("env")
	_ = preflightCmd.MarkFlagRequired("app")
}

func runPreflight(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, dctx, err := buildContext(preflightEnv, preflightApp)
	if err != nil {
		return err
	}

	shutdown, err := telemetry.InitOTEL(ctx, telemetry.Config{
		ServiceName:    "varmista",
		ServiceVersion: version,
		Environment:    dctx.Environment.Name,
		OTELEndpoint:   cfg.Telemetry.OTELEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		_ = shutdown(flushCtx)
	}()

	v, err := validator.New(ctx, dctx.Environment.Region)
	if err != nil {
		return fmt.Errorf("create validator: %w", err)
	}

	// Refuse to validate against the wrong account.
	if err := v.CheckAccount(ctx, dctx); err != nil {
		return err
	}

	var opts []preflight.RunnerOption
	if cfg.Preflight.Workers > 0 {
		opts = append(opts, preflight.WithWorkers(cfg.Preflight.Workers))
	}
	if cfg.Preflight.Timeout > 0 {
		opts = append(opts, preflight.WithTimeout(cfg.Preflight.Timeout))
	}

	runner := preflight.NewRunner(requirements.NewECSServiceRegistry(), v, dctx, opts...)
	results, err := runner.ValidateAll(ctx)
	if err != nil {
		return err
	}

	return reportOutcome(runner, results)
}

// reportOutcome prints the report and folds the pass/fail decision into an
// error return, so every deferred shutdown above runs before the process
// exits with the failure code.
func reportOutcome(runner *preflight.Runner, results map[string]validator.Result) error {
	fmt.Print(runner.FormatReport(results))
	if !preflight.Summarize(results).AllValid {
		return errPreflightFailed
	}
	return nil
}

// buildContext loads the manifest and assembles the deployment context the
// subcommands share.
func buildContext(envName, appName string) (*config.Config, *deploy.Context, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	reg, err := cfg.NamingRegistry()
	if err != nil {
		return nil, nil, err
	}

	env, err := cfg.EnvironmentDescriptor(envName)
	if err != nil {
		return nil, nil, err
	}
	app, err := cfg.ApplicationDescriptor(appName)
	if err != nil {
		return nil, nil, err
	}

	dctx, err := deploy.NewContext(reg, env, app)
	if err != nil {
		return nil, nil, err
	}
	return cfg, dctx, nil
}
