package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/api"
	"github.com/yourname/timesheet/internal/auth"
	"github.com/yourname/timesheet/internal/config"
	"github.com/yourname/timesheet/internal/export"
	"github.com/yourname/timesheet/internal/refresh"
	"github.com/yourname/timesheet/internal/service"
	"github.com/yourname/timesheet/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Time-entry reporting service",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var (
	exportUser     string
	exportMonth    string
	exportAll      bool
	exportLifelogs bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a monthly report and push it to the export sink",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportUser, "user", "", "User ID to report on")
	exportCmd.Flags().StringVar(&exportMonth, "month", "", "Month as YYYYMM")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every member's report")
	exportCmd.Flags().BoolVar(&exportLifelogs, "lifelogs", false, "Include lifelogs in the report")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSink(cfg *config.Config, logger internal.Logger) (export.Sink, error) {
	switch cfg.ExportBackend {
	case "s3":
		return export.NewS3Sink(cfg, logger)
	default:
		return export.NewFileSink(cfg.ExportDir, logger)
	}
}

func newProvider(cfg *config.Config, logger internal.Logger) auth.Provider {
	if cfg.AuthMode == "remote" {
		return auth.NewRemoteProvider(cfg.AuthServiceURL, logger)
	}
	return auth.NewJWTProvider(cfg.JWTSecret, logger)
}

// reportUpdater recomputes today's report for a view owner on each refresh
// sweep. Pushing the rendered report to a UI transport hangs off this
// boundary; the server itself only keeps the data warm and logs the result.
type reportUpdater struct {
	repos  *storage.Repositories
	cfg    *config.Config
	logger internal.Logger
}

func (u *reportUpdater) UpdateView(ctx context.Context, view internal.ActiveView) error {
	settings, err := service.GetSettings(ctx, u.repos, &internal.User{ID: view.UserID}, u.cfg.DefaultLanguage, u.cfg.DefaultCountry)
	if err != nil {
		return err
	}
	scope, err := service.NewRequestScope(ctx, u.repos, &internal.User{ID: view.UserID, Offset: settings.Offset}, u.cfg.DefaultLanguage, u.cfg.DefaultCountry)
	if err != nil {
		return err
	}
	report, _, err := service.DailyReportForUser(ctx, u.repos, scope, scope.Today())
	if err != nil && !errors.Is(err, internal.ErrNotFound) {
		return err
	}
	if report != nil {
		u.logger.Debugf("refreshed view %s for %s: %d work minutes", view.ViewID, view.UserID, report.WorkMinutes)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := storage.NewRepositories(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	defer repos.Close()

	sink, err := newSink(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to init export sink: %w", err)
	}

	app := api.NewApplication(logger, repos, cfg, sink)
	router := api.NewRouter(app, newProvider(cfg, logger))

	refresher := refresh.NewRefresher(repos.ActiveViews,
		&reportUpdater{repos: repos, cfg: cfg, logger: logger},
		logger, cfg.RefreshInterval, cfg.RefreshDeadline, cfg.RefreshConcurrency)
	go refresher.Run(ctx)

	srv := &http.Server{Addr: cfg.Addr, Handler: router}
	go func() {
		logger.Infof("server listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportMonth == "" {
		return errors.New("--month is required")
	}
	if !exportAll && exportUser == "" {
		return errors.New("--user or --all is required")
	}

	cfg := config.Load()
	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	ctx := context.Background()
	repos, err := storage.NewRepositories(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	defer repos.Close()

	sink, err := newSink(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to init export sink: %w", err)
	}

	user := &internal.User{ID: exportUser}
	scope, err := service.NewRequestScope(ctx, repos, user, cfg.DefaultLanguage, cfg.DefaultCountry)
	if err != nil {
		return err
	}

	var filename string
	var report any
	if exportAll {
		filename = "all-members-" + exportMonth + ".json"
		report, err = service.AllMembersMonthlyReport(ctx, repos, scope, exportMonth)
	} else {
		filename = exportUser + "-" + exportMonth + ".json"
		report, err = service.MonthlyReportForUser(ctx, repos, scope, exportMonth, exportLifelogs)
	}
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	url, err := sink.Upload(ctx, filename, payload)
	if err != nil {
		return err
	}
	fmt.Println(url)
	return nil
}
