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
	"gorm.io/gorm"

	"clinic-app-server/internal/audit"
	"clinic-app-server/internal/config"
	"clinic-app-server/internal/lifecycle"
	"clinic-app-server/internal/logger"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/routes"
	"clinic-app-server/internal/store"
)

var envFile string

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(envFile)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(envFile)
			if err != nil {
				return err
			}
			// InitDB migrates on connect.
			if _, err := openDB(cfg); err != nil {
				return err
			}
			log.Info("database schema is up to date")
			return nil
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Mark elapsed scheduled appointments as completed once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(envFile)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			st := store.New(db)

			auditLog := audit.New(st.Logs, newNameResolver(st), log.WithComponent("audit"), cfg.Audit.QueueSize, cfg.Audit.Workers)
			defer auditLog.Close()

			reconciler := lifecycle.NewReconciler(st.Appointments, auditLog, cfg.ReconcileInterval, log.WithComponent("reconciler"))
			n, err := reconciler.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed %d appointment(s)\n", n)
			return nil
		},
	}
}

func runServer(envFile string) error {
	cfg, log, err := bootstrap(envFile)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		log.WithError(err).Error("failed to connect to database")
		return err
	}
	log.WithField("driver", cfg.Database.Driver).Info("connected to database")

	st := store.New(db)
	auditLog := audit.New(st.Logs, newNameResolver(st), log.WithComponent("audit"), cfg.Audit.QueueSize, cfg.Audit.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reconciler := lifecycle.NewReconciler(st.Appointments, auditLog, cfg.ReconcileInterval, log.WithComponent("reconciler"))
	go reconciler.Run(ctx)

	router := routes.NewRouter(cfg, st, auditLog, log.WithComponent("api"))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			auditLog.Close()
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	// Requests are finished, so nothing publishes anymore.
	auditLog.Close()
	log.Info("server stopped")
	return nil
}

func bootstrap(envFile string) (*config.Config, *logger.Logger, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.LoadConfig(files...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return nil, nil, err
	}
	return cfg, logger.New(cfg.LogLevel), nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	return models.InitDB(models.DatabaseConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Debug:  cfg.Environment == "development",
	})
}

// nameResolver serves the activity log's name lookups from the stores.
type nameResolver struct {
	*store.Directory
	appointments *store.AppointmentStore
}

func newNameResolver(st *store.Store) *nameResolver {
	return &nameResolver{Directory: st.Directory, appointments: st.Appointments}
}

func (r *nameResolver) PatientName(ctx context.Context, appointmentID string) (string, error) {
	return r.appointments.PatientName(ctx, appointmentID)
}
