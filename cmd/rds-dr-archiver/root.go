package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/spf13/cobra"

	"github.com/raoulx24/rds-dr-archiver/internal/catalog"
	"github.com/raoulx24/rds-dr-archiver/internal/config"
	"github.com/raoulx24/rds-dr-archiver/internal/logging"
	"github.com/raoulx24/rds-dr-archiver/internal/notify"
	"github.com/raoulx24/rds-dr-archiver/internal/retention"
	"github.com/raoulx24/rds-dr-archiver/internal/waiter"
	"github.com/raoulx24/rds-dr-archiver/internal/workflow"
)

func newRootCommand() *cobra.Command {
	var debugFlag bool
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "rds-dr-archiver",
		Short:         "Cross-account disaster recovery replication for RDS snapshots",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "run in debug mode, do not send sns notifications")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "optional configuration file path")

	rootCmd.AddCommand(newExportCommand(&debugFlag, &configFlag))
	rootCmd.AddCommand(newImportCommand(&debugFlag, &configFlag))

	return rootCmd
}

func newExportCommand(debug *bool, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Recrypt the latest automatic snapshots and share them with the target account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplication(cmd.Context(), config.RoleExport, *configPath, *debug)
		},
	}
}

func newImportCommand(debug *bool, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy snapshots shared with this account into local snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplication(cmd.Context(), config.RoleImport, *configPath, *debug)
		},
	}
}

// runReplication wires one pass: configuration, logger, AWS clients,
// workflow, then the end-of-run count validation.
func runReplication(ctx context.Context, role config.Role, configPath string, debug bool) error {
	cfg, err := config.Load(configPath, role, debug)
	if err != nil {
		return err
	}

	log := logging.New(logging.Options{Level: cfg.LogLevel})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("loading aws config: %w", err)
	}

	cat := catalog.New(rds.NewFromConfig(awsCfg), log)
	wait := waiter.New(cat, cfg.Run, log)
	prune := retention.New(cat, cfg.Run, log)
	notifier := notify.New(cfg, sns.NewFromConfig(awsCfg), log)

	var ready int
	switch role {
	case config.RoleExport:
		exporter := &workflow.Exporter{Catalog: cat, Waiter: wait, Pruner: prune, Config: cfg, Log: log}
		ready, err = exporter.Run(ctx)
	default:
		importer := &workflow.Importer{Catalog: cat, Waiter: wait, Pruner: prune, Config: cfg, Log: log}
		ready, err = importer.Run(ctx)
	}
	if err != nil {
		return err
	}

	return workflow.ValidateRun(ctx, role, ready, cfg.ExpectedSnapshotCount, notifier, log)
}
