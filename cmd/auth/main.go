package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"authflow/internal/config"
	"authflow/internal/events"
	"authflow/internal/observability/logging"
	"authflow/internal/observability/metrics"
	"authflow/internal/observability/middleware"
	"authflow/internal/service"
	impl "authflow/internal/service/impl"
	"authflow/internal/store"
	"authflow/internal/store/redisotp"
	httpx "authflow/internal/transport/http"

	"github.com/redis/go-redis/v9"
)

const serviceName = "auth"

func main() {
	if err := run(); err != nil {
		slog.Error("auth service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)
	metrics.MustRegister(serviceName)

	logger.Info("starting service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1) DB
	gdb, err := store.OpenPostgres(store.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if cfg.Migrate {
		if err := store.Migrate(ctx, gdb); err != nil {
			return err
		}
	}
	st := store.New(gdb)

	// 2) Reset code backend
	var codes impl.CodeStore
	switch cfg.OTPStore {
	case config.OTPStoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		codes = redisotp.New(rdb, cfg.OTPTTL)
	default:
		codes = st.OTPs()
		go impl.RunCodePurge(ctx, st.OTPs(), cfg.OTPTTL, cfg.OTPPurgeInterval)
	}

	// 3) Services
	pw := impl.NewPasswordServiceArgon2id()

	ts, err := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		TTL:        cfg.SessionTTL,
		SigningKey: []byte(cfg.SigningKey),
	})
	if err != nil {
		return err
	}

	var verifier service.IdentityVerifier = impl.DisabledVerifier{}
	if cfg.GoogleClientID != "" {
		gv, err := impl.NewGoogleVerifier(cfg.GoogleJWKSURL, cfg.GoogleClientID)
		if err != nil {
			return err
		}
		defer gv.Close()
		verifier = gv
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, google sign-in disabled")
	}

	var mailer service.Mailer = impl.LogMailer{Logger: logger}
	if cfg.EmailTransport == config.EmailTransportSMTP {
		mailer = impl.NewSMTPMailer(impl.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
		})
	}
	email := impl.NewEmailService(mailer, cfg.OTPTTL)
	sink := events.LogSink{Logger: logger}

	as := impl.NewAuthServiceImpl(st, pw, ts, verifier, sink)
	rs := impl.NewPasswordResetServiceImpl(st.Users(), codes, pw, email, sink, cfg.OTPTTL)
	rs.ResponseFloor = cfg.ForgotPasswordFloor

	// 4) HTTP
	router := httpx.NewRouter(httpx.RouterConfig{
		Auth:               as,
		Reset:              rs,
		Tokens:             ts,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           middleware.WithRequestAndTrace(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("auth service listening", "addr", srv.Addr, "issuer", cfg.Issuer, "otp_store", cfg.OTPStore)
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

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
