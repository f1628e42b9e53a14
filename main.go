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

	"budgetflow/internal/app"
	intconfig "budgetflow/internal/config"
	router "budgetflow/internal/http"
	"budgetflow/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		utils.Logger().WithError(err).Error("budgetflow failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFiles []string
	root := &cobra.Command{
		Use:           "budgetflow",
		Short:         "Budget disbursement request workflow service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load (default .env, .env.local)")

	load := func(ctx context.Context) (*app.App, error) {
		env, err := intconfig.LoadEnv(envFiles...)
		if err != nil {
			return nil, err
		}
		utils.SetLogLevel(env.LogLevel)
		if env.GinMode != "" {
			gin.SetMode(env.GinMode)
		}
		return app.Build(ctx, env)
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return serveHTTP(a)
		},
	}
	root.RunE = serve.RunE

	anomalies := &cobra.Command{
		Use:   "anomalies",
		Short: "Print the anomaly flags for the current data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			admin, err := a.Catalog.User(a.Env.AdminRecipientID)
			if err != nil {
				return err
			}
			flags, err := a.Anomalies().List(cmd.Context(), admin.Actor())
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(flags)
		},
	}

	routes := &cobra.Command{
		Use:   "routes",
		Short: "List the HTTP routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			for _, rt := range router.NewRouter(a.Env, a.Handlers).Routes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-7s %s\n", rt.Method, rt.Path)
			}
			return nil
		},
	}

	root.AddCommand(serve, anomalies, routes)
	return root
}

func serveHTTP(a *app.App) error {
	log := utils.Logger()
	r := router.NewRouter(a.Env, a.Handlers)

	srv := &http.Server{
		Addr:              a.Env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s (store=%s)", a.Env.AppAddr, a.Env.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
