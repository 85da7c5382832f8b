package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crmrelay/internal/config"
	"crmrelay/internal/constants"
	"crmrelay/internal/database"
	"crmrelay/internal/models"
	"crmrelay/internal/retry"
	"crmrelay/internal/service"
	"crmrelay/internal/tracing"
	"crmrelay/pkg/highlevel"
	"crmrelay/pkg/mailgun"
	"crmrelay/pkg/meta"
	"crmrelay/pkg/twilio"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging (includes sensitive information)")
	configPath = flag.String("config", "config.json", "Path to configuration file")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("crmrelay %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	// Local development convenience; a missing .env is not an error
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting crmrelay")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	configureLogLevel(logger, cfg)

	tracingManager := tracing.NewTracingManager(tracing.TracingConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: cfg.Tracing.ServiceVersion,
		Environment:    cfg.Tracing.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled,
		UseStdout:      cfg.Tracing.UseStdout,
	}, logger)

	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	// Open the database with exponential backoff; SQLite may briefly hold
	// locks when another process (e.g. the migrate tool) just touched it.
	var db *database.Database
	backoff := retry.NewBackoff(retry.BackoffConfig{
		InitialDelay: time.Duration(cfg.Retry.InitialBackoffMs) * time.Millisecond,
		MaxDelay:     time.Duration(cfg.Retry.MaxBackoffMs) * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  constants.DefaultDatabaseRetryAttempts,
		Jitter:       true,
	})

	err = backoff.Retry(ctx, func() error {
		var initErr error
		db, initErr = database.New(cfg.Database.Path)
		if initErr != nil {
			logger.Warnf("Failed to initialize database: %v", initErr)
		}
		return initErr
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database after retries: %w", err)
	}
	defer db.Close()

	crmClient := highlevel.NewClient(highlevel.Config{
		BaseURL:  cfg.CRM.APIBaseURL,
		APIToken: cfg.CRM.APIToken,
		Timeout:  cfg.CRM.Timeout,
	})

	graphClient := meta.NewClientWithLogger(meta.Config{
		BaseURL:     cfg.Meta.GraphBaseURL,
		AccessToken: cfg.Meta.AccessToken,
		PageID:      cfg.Meta.PageID,
		InstagramID: cfg.Meta.InstagramID,
		Timeout:     cfg.Meta.Timeout,
	}, logger)

	mailgunClient := mailgun.NewClient(mailgun.Config{
		BaseURL: cfg.Mailgun.APIBaseURL,
		APIKey:  cfg.Mailgun.APIKey,
		Domain:  cfg.Mailgun.Domain,
		Timeout: cfg.Mailgun.Timeout,
	})

	twilioClient := twilio.NewClient(twilio.Config{
		BaseURL:    cfg.Twilio.APIBaseURL,
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		Timeout:    cfg.Twilio.Timeout,
	})

	emailAdapter := service.NewEmailAdapter(mailgunClient, cfg.Mailgun.FromAddress, logger)
	smsAdapter := service.NewSMSAdapter(twilioClient, cfg.Twilio.FromNumber, logger)
	messengerAdapter := service.NewMessengerAdapter(graphClient, cfg.Meta.PageID, logger)
	instagramAdapter := service.NewInstagramAdapter(graphClient, cfg.Meta.InstagramID, logger)

	hub := service.NewHub()
	defer hub.Close()

	comms := service.NewCommunicationService(emailAdapter, smsAdapter, messengerAdapter, instagramAdapter, db, hub, logger)
	keys := service.NewAPIKeyService(db, logger)
	leads := service.NewLeadService(graphClient, logger)
	crm := service.NewCRMService(crmClient, logger)

	scheduler := service.NewScheduler(comms, cfg.RetentionDays, cfg.Server.CleanupIntervalHours, logger)
	go scheduler.Start(ctx)

	server := NewServer(cfg, logger, comms, keys, leads, crm, hub)
	serverErrCh := make(chan error, constants.ServerErrorChannelSize)
	go func() {
		if err := server.Start(); err != nil {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(constants.DefaultGracefulShutdownSec)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	logger.Info("Server shutdown completed")
	return nil
}

func configureLogLevel(logger *logrus.Logger, cfg *models.Config) {
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.Info("Verbose logging enabled - sensitive information will be logged")
		return
	}

	if cfg.LogLevel == "" {
		logger.SetLevel(logrus.InfoLevel)
		return
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level %q, defaulting to info", cfg.LogLevel)
		logger.SetLevel(logrus.InfoLevel)
		return
	}
	if level > logrus.InfoLevel {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}
