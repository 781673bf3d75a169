// Server runs the storefront account API over HTTP.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	accountrepo "storefront-auth/backend/internal/account/repository"
	"storefront-auth/backend/internal/account/service"
	"storefront-auth/backend/internal/audit"
	auditrepo "storefront-auth/backend/internal/audit/repository"
	"storefront-auth/backend/internal/config"
	"storefront-auth/backend/internal/db"
	"storefront-auth/backend/internal/devotp"
	"storefront-auth/backend/internal/logging"
	"storefront-auth/backend/internal/notify"
	"storefront-auth/backend/internal/security"
	"storefront-auth/backend/internal/server"
	"storefront-auth/backend/internal/server/middleware"
	"storefront-auth/backend/internal/telemetry"
	telemetryotel "storefront-auth/backend/internal/telemetry/otel"
	"storefront-auth/backend/internal/telemetry/producer"
	usertyperepo "storefront-auth/backend/internal/usertype/repository"
	usertypeservice "storefront-auth/backend/internal/usertype/service"
)

const (
	serviceName     = "storefront-auth"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure)
	if err != nil {
		return err
	}
	providers.SetGlobal()

	key, err := signingKey(cfg)
	if err != nil {
		return err
	}
	tokens := security.NewTokenIssuer(key, cfg.JWTIssuer, cfg.JWTAudience, cfg.SessionTTL(), cfg.ResetTokenTTL())
	logger.Info("token signing configured", zap.String("alg", key.Alg()))

	var (
		accounts  service.AccountRepo
		audits    auditrepo.Repository
		userTypes usertypeservice.Repo
		database  *sql.DB
	)
	if cfg.DatabaseURL != "" {
		database, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		accounts = accountrepo.NewPostgresRepository(database)
		audits = auditrepo.NewPostgresRepository(database)
		userTypes = usertyperepo.NewPostgresRepository(database)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory account store")
		accounts = accountrepo.NewMemoryRepository()
		audits = auditrepo.NewMemoryRepository()
		userTypes = usertyperepo.NewMemoryRepository()
	}

	var notifier notify.Notifier = notify.LogNotifier{Logger: logger}
	if cfg.SMTPEnabled() {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}
	var devOTP http.Handler
	if cfg.DevOTPEnabled && !cfg.IsProduction() {
		store := devotp.NewMemoryStore()
		notifier = devotp.NewCaptureNotifier(store, notifier, cfg.OTPTTL())
		devOTP = devotp.NewHandler(store)
		logger.Warn("dev OTP endpoint enabled; codes are readable at GET /dev/otp")
	}

	emitters := []telemetry.EventEmitter{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	kafkaProducer := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
	}
	metrics, err := telemetry.NewMetrics(providers.MeterProvider.Meter(serviceName))
	if err != nil {
		return err
	}

	svc := service.New(accounts, security.NewHasher(cfg.BcryptCost), tokens, notifier, service.Config{
		OTPTTL:        cfg.OTPTTL(),
		ResetTTL:      cfg.ResetTokenTTL(),
		RepoTimeout:   cfg.RepoTimeout(),
		NotifyTimeout: cfg.NotifyTimeout(),
		ResetURLBase:  cfg.ResetURLBase,
	},
		service.WithEvents(telemetry.Combine(emitters...)),
		service.WithMetrics(metrics),
		service.WithTracer(providers.TracerProvider.Tracer(serviceName)),
		service.WithLogger(logger),
	)

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxiesList())
	if err != nil {
		return err
	}

	deps := server.Deps{
		Accounts: svc,
		UserTypes: usertypeservice.New(userTypes,
			usertypeservice.WithRepoTimeout(cfg.RepoTimeout()),
			usertypeservice.WithMetrics(metrics),
			usertypeservice.WithTracer(providers.TracerProvider.Tracer(serviceName)),
			usertypeservice.WithLogger(logger),
		),
		TrustedProxies: proxies,
		Audit:          audit.NewLogger(audits, middleware.ClientIP, logger),
		Activity:       audits,
		DevOTP:         devOTP,
		Tracer:         providers.TracerProvider.Tracer(serviceName + "/http"),
		Logger:         logger,
	}
	if database != nil {
		deps.HealthPinger = database
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
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

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}

	// Let in-flight async emits finish before closing their sinks.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			logger.Warn("kafka producer close", zap.Error(err))
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Warn("otel shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")
	return nil
}

func signingKey(cfg *config.Config) (*security.SigningKey, error) {
	if cfg.HasKeyPair() {
		return security.NewKeyPairKey(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	}
	return security.NewHMACKey(cfg.JWTSecret)
}
