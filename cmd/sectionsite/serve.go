package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sectionsite/internal/app"
)

var serveActivate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if serveActivate || cfg.Store == app.StoreMemory {
			if err := app.Activate(ctx, store, registry); err != nil {
				return err
			}
		} else {
			app.WarnStaleRoutes(ctx, store, registry, logger)
		}

		if cfg.AdminPassword == "" {
			logger.Warn("ADMIN_PASSWORD is empty; admin login is disabled")
		}
		sessions, err := app.NewSessions(cfg.AdminUser, cfg.AdminPassword, cfg.SessionSecret)
		if err != nil {
			return err
		}

		handler, err := app.NewServer(store, registry, sessions, logger)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("sectionsite listening", "addr", srv.Addr, "routes", registry.RouteTable())
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveActivate, "activate", false, "run activation before serving")
}
