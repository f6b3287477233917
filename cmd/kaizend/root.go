package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/goliatone/go-kaizen/config"
	"github.com/goliatone/go-kaizen/pkg/di"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "kaizend",
		Short:         "Kaizen record service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"YAML config file (default: $"+config.FileEnv+")")

	root.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
	)
	return root
}

// bootstrap loads config and builds the container shared by every subcommand.
func bootstrap(ctx context.Context, configPath string) (*di.Container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := di.NewLogger(os.Stderr, cfg.SlogLevel())
	slog.SetDefault(logger)

	return di.NewContainer(ctx, cfg, di.WithLogger(logger))
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the records table or index in the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			container, err := bootstrap(ctx, *configPath)
			if err != nil {
				return err
			}
			defer container.Close(context.Background())

			if err := container.Migrate(ctx); err != nil {
				return err
			}
			container.Logger().Info("migration complete", slog.String("driver", container.Config().Store.Driver))
			return nil
		},
	}
}
