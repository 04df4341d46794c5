package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/druscope/druscope/internal/config"
	"github.com/druscope/druscope/internal/database"
	"github.com/druscope/druscope/internal/filestore"
	"github.com/druscope/druscope/internal/filestore/minio"
	"github.com/druscope/druscope/internal/logger"
	"github.com/druscope/druscope/internal/report"
	"github.com/druscope/druscope/internal/server"
	"github.com/druscope/druscope/internal/settings"

	// Register the database dialects.
	_ "github.com/druscope/druscope/internal/database/mssql"
	_ "github.com/druscope/druscope/internal/database/mysql"
	_ "github.com/druscope/druscope/internal/database/oracle"
	_ "github.com/druscope/druscope/internal/database/postgres"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		settingsPath string
		configPath   string
		listen       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), settingsPath, configPath, listen)
		},
	}

	cmd.Flags().StringVar(&settingsPath, "settings", "", "path to the site's settings.php (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to the YAML config file")
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	_ = cmd.MarkFlagRequired("settings")

	return cmd
}

func runServe(ctx context.Context, settingsPath, configPath, listen string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if listen != "" {
		cfg.Listen = listen
	}

	log := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	dbCfg, err := settings.ParseFile(settingsPath, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, dbCfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	var exporter *report.Exporter
	if cfg.Export.Enabled {
		store, err := minio.New(ctx, &filestore.Config{
			Endpoint:  cfg.Export.Endpoint,
			AccessKey: cfg.Export.AccessKey,
			SecretKey: cfg.Export.SecretKey,
			UseSSL:    cfg.Export.UseSSL,
			Bucket:    cfg.Export.Bucket,
		})
		if err != nil {
			return err
		}
		defer store.Close()
		exporter = report.NewExporter(store, cfg.Export.Bucket, log)
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(db, exporter, log).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
