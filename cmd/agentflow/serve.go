package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpAdapter "github.com/techwithparamesh/agentflow/pkg/adapters/http"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the editor HTTP API",
		Long:  `Serves the workflow editing API (flows, validation, panels, undo/redo, expression resolution) and Prometheus metrics over HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			addr := e.cfg.HTTP.Addr
			if f := cmd.Flags().Lookup("addr"); f.Changed {
				addr = f.Value.String()
			}

			handler := httpAdapter.NewHandler(e.ws,
				httpAdapter.WithMetrics(e.metrics.Handler()),
				httpAdapter.WithLogger(e.logger),
			)
			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				e.logger.Info("agentflow server listening", "address", addr, "backend", e.cfg.Store.Backend)
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)
			case sig := <-shutdown:
				e.logger.Info("shutting down", "signal", sig.String())

				// Give outstanding requests a deadline for completion.
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					e.logger.Error("graceful shutdown did not complete", "error", err)
					if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("error killing server: %w", err)
					}
				}
				e.logger.Info("agentflow server stopped")
				return nil
			}
		},
	}
	cmd.Flags().String("addr", ":8080", "Address to listen on (overrides http.addr)")
	return cmd
}
