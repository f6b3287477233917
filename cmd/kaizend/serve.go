package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
)

func newServeCmd(configPath *string) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			container, err := bootstrap(ctx, *configPath)
			if err != nil {
				return err
			}
			defer container.Close(context.Background())

			if migrate {
				if err := container.Migrate(ctx); err != nil {
					return err
				}
			}

			cfg := container.Config().HTTP
			srv := &http.Server{
				Addr:         cfg.Addr,
				Handler:      container.Handler().Routes(),
				ReadTimeout:  cfg.ReadTimeout,
				WriteTimeout: cfg.WriteTimeout,
			}

			errc := make(chan error, 1)
			go func() {
				container.Logger().Info("listening", slog.String("addr", cfg.Addr))
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			container.Logger().Info("shutting down")
			shCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shCtx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "create the schema before serving")
	return cmd
}
