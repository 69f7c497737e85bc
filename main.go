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

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/vukatravels/site/authenticator"
	"github.com/vukatravels/site/cache"
	"github.com/vukatravels/site/cms"
	"github.com/vukatravels/site/config"
	"github.com/vukatravels/site/controllers"
	"github.com/vukatravels/site/database"
	"github.com/vukatravels/site/logging"
	"github.com/vukatravels/site/mailer"
	"github.com/vukatravels/site/repositories"
	"github.com/vukatravels/site/services"
	"github.com/vukatravels/site/sheets"
)

var (
	app = kingpin.New("site", "VUKA Travels website backend: form submissions, blog content and CMS webhooks.")

	envFile = app.Flag("env-file", "Environment file loaded before reading configuration.").
		Default(".env").Envar("SITE_ENV_FILE").String()

	serveCmd  = app.Command("serve", "Run the HTTP server.").Default()
	exportCmd = app.Command("export", "Regenerate submissions.xls from submissions.csv.")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	kingpin.FatalIfError(config.LoadEnvFile(*envFile), "Unable to load env file")

	cfg, err := config.Load()
	kingpin.FatalIfError(err, "Invalid configuration")

	logger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	kingpin.FatalIfError(err, "Unable to initialize logging")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case serveCmd.FullCommand():
		err = runServe(ctx, cfg, logger)
	case exportCmd.FullCommand():
		err = runExport(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error("Command failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
}

// runExport rebuilds the spreadsheet export without starting the server
func runExport(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	export := services.NewExportService(
		repositories.NewSubmissionLog(cfg.CSVPath()),
		repositories.NewExportRepository(cfg.XLSPath()),
	)
	if err := export.Regenerate(ctx); err != nil {
		return err
	}
	logger.Info("Regenerated export", zap.String("path", export.ExportPath()))
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := database.Open(cfg.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repos := repositories.NewRepositories(db, cfg.CSVPath(), cfg.XLSPath())

	transport, err := mailer.New(ctx, cfg.Mail, logger.Named("mailer"))
	if err != nil {
		return fmt.Errorf("failed to initialize mail transport: %w", err)
	}

	// The spreadsheet mirror is optional; a broken setup only disables it
	sheet, err := sheets.New(ctx, cfg.Sheets)
	if err != nil {
		logger.Warn("Spreadsheet append disabled", zap.Error(err))
		sheet = nil
	}

	contentCache, err := newContentCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer contentCache.Close()

	var source services.ContentSource
	if cfg.CMS.Configured() {
		source = cms.NewClient(cfg.CMS)
	} else {
		logger.Warn("CMS not configured, blog endpoints serve no content")
	}

	srvs := services.NewServices(services.Dependencies{
		Config:    cfg,
		Repos:     repos,
		Transport: transport,
		Sheet:     sheet,
		Cache:     contentCache,
		CMS:       source,
		Logger:    logger,
	})
	ctrl := controllers.NewControllers(srvs, logger)

	var auth authenticator.Provider
	if cfg.OIDC.Enabled() {
		auth, err = authenticator.NewOpenIDProvider(ctx, cfg.OIDC)
		if err != nil {
			logger.Error("Admin login disabled", zap.Error(err))
			auth = nil
		}
	}

	router, err := setupRouter(cfg, ctrl, repos, auth, logger)
	if err != nil {
		return fmt.Errorf("failed to setup router: %w", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("storage", cfg.StorageDir),
			zap.String("mail_transport", transport.Name()),
			zap.String("notify_mode", string(cfg.Notify.FailureMode)),
			zap.Bool("sheets", sheet != nil),
			zap.Bool("admin", auth != nil),
		)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Shutdown did not complete cleanly", zap.Error(err))
	}

	// let background notifications finish before the process exits
	srvs.Submission.Wait()
	return nil
}

func newContentCache(ctx context.Context, cfg config.CacheConfig) (cache.ContentCache, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemoryCache(cfg.TTL), nil
	}
	c, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize content cache: %w", err)
	}
	return c, nil
}
